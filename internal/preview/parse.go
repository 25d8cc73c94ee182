package preview

import (
	"strings"

	"quickfolio-backend/internal/domain"
)

// Delimiters of the content record grammar.
//
//	skills     = token *( "," token )
//	experience = line *( "\n" line ), line = primary [ (" at " | " - ") secondary ]
//	projects   = line *( "\n" line ), line = primary [ " - " secondary ]
//
// Tokens and lines are trimmed and empty ones dropped. Nothing here fails.
const (
	skillSeparator = ","
	lineSeparator  = "\n"
	atDelimiter    = " at "
	dashDelimiter  = " - "
)

// Entry is one line of a multi-line field split for display.
type Entry struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary,omitempty"`
	Raw       string `json:"raw"`
}

// ParsedRecord is the display-ready view of a ContentRecord that every
// rendering strategy consumes.
type ParsedRecord struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Profession  string   `json:"profession"`
	About       string   `json:"about"`
	Contact     string   `json:"contact"`
	Skills      []string `json:"skills"`
	Experience  []Entry  `json:"experience"`
	Projects    []Entry  `json:"projects"`
}

// ParseSkills splits a comma separated list, trimming tokens and dropping
// empty ones. Order and duplicates are kept.
func ParseSkills(s string) []string {
	out := []string{}
	for _, tok := range strings.Split(s, skillSeparator) {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// ParseExperience splits one entry per line. A line is split at the first
// " at ", or failing that at the first " - ".
func ParseExperience(s string) []Entry {
	return parseLines(s, atDelimiter, dashDelimiter)
}

// ParseProjects splits one entry per line at the first " - ".
func ParseProjects(s string) []Entry {
	return parseLines(s, dashDelimiter)
}

func parseLines(s string, delimiters ...string) []Entry {
	out := []Entry{}
	for _, line := range strings.Split(s, lineSeparator) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, splitEntry(line, delimiters))
	}
	return out
}

func splitEntry(line string, delimiters []string) Entry {
	for _, d := range delimiters {
		if before, after, found := strings.Cut(line, d); found {
			return Entry{
				Primary:   strings.TrimSpace(before),
				Secondary: strings.TrimSpace(after),
				Raw:       line,
			}
		}
	}
	return Entry{Primary: line, Raw: line}
}

// Parse builds the display view of a record. The record is taken by value
// and never modified.
func Parse(r domain.ContentRecord) ParsedRecord {
	return ParsedRecord{
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
		Profession:  strings.TrimSpace(r.Profession),
		About:       strings.TrimSpace(r.About),
		Contact:     strings.TrimSpace(r.Contact),
		Skills:      ParseSkills(r.Skills),
		Experience:  ParseExperience(r.Experience),
		Projects:    ParseProjects(r.Projects),
	}
}
