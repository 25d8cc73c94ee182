package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	// Hostname with at least one dot, labels 1-63 chars, no leading/trailing hyphen.
	domainRegex = regexp.MustCompile(`(?i)^(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z0-9][a-z0-9-]{0,61}[a-z0-9]$`)

	slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// New returns a validator with the project's custom tags registered.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_domain", ValidDomain)
	_ = v.RegisterValidation("valid_slug", ValidSlug)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("unique_items", UniqueItems)
}

// IsDomain reports whether s looks like a hostname we can attach to a portfolio.
func IsDomain(s string) bool {
	return domainRegex.MatchString(s)
}

func ValidDomain(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return IsDomain(val)
}

func ValidSlug(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return slugRegex.MatchString(val)
}

// NoEmoji rejects emoji and pictographic symbols; used on SEO text that ends
// up in <title> and meta tags.
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

// UniqueItems checks a []string for case-insensitive duplicates.
func UniqueItems(fl validator.FieldLevel) bool {
	field := fl.Field()
	seen := make(map[string]struct{}, field.Len())
	for i := 0; i < field.Len(); i++ {
		key := strings.ToLower(strings.TrimSpace(field.Index(i).String()))
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
	}
	return true
}
