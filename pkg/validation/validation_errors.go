package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to the labels shown in the dashboard.
var FieldLabels = map[string]string{
	// Wizard / content record
	"Name":        "Portfolio name",
	"Description": "Short description",
	"Profession":  "Profession",
	"TemplateID":  "Template",
	"About":       "About",
	"Skills":      "Skills",
	"Experience":  "Experience",
	"Projects":    "Projects",
	"Intent":      "Submit intent",

	// Settings
	"Domain":         "Custom domain",
	"Title":          "Meta title",
	"Keywords":       "Keywords",
	"OGImage":        "Open Graph image",
	"Primary":        "Primary color",
	"Background":     "Background color",
	"Text":           "Text color",
	"Accent":         "Accent color",
	"HeadingFont":    "Heading font",
	"BodyFont":       "Body font",
	"FontSize":       "Font size",
	"LineHeight":     "Line height",
	"Spacing":        "Spacing",
	"BorderRadius":   "Border radius",
	"Format":         "Export format",
	"EventType":      "Event type",
	"TimeOnPageSecs": "Time on page",
}

// FormatValidationErrors converts validator.ValidationErrors to user-facing messages.
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at least %s", label, param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", label, param)
		}
		if e.Kind().String() == "slice" {
			return fmt.Sprintf("%s must have at most %s entries", label, param)
		}
		return fmt.Sprintf("%s must be at most %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(param, " ", ", "))
	case "url":
		return fmt.Sprintf("%s must be a valid URL", label)
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex color such as #3b82f6", label)
	case "valid_domain":
		return fmt.Sprintf("%s is not a valid domain name", label)
	case "valid_slug":
		return fmt.Sprintf("%s may only contain lowercase letters, digits and hyphens", label)
	case "no_emoji":
		return fmt.Sprintf("%s must not contain emoji or symbols", label)
	case "unique_items":
		return fmt.Sprintf("%s must not contain duplicates", label)
	default:
		return fmt.Sprintf("%s is invalid (%s)", label, e.Tag())
	}
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
