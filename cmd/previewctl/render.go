package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"quickfolio-backend/internal/domain"
	"quickfolio-backend/internal/preview"
	"quickfolio-backend/pkg/validation"
)

var renderFlags struct {
	template      string
	format        string
	output        string
	customization string
}

var renderCmd = &cobra.Command{
	Use:   "render [record.json]",
	Short: "Render a content record with a template",
	Long: `Reads a content record (JSON, the same shape the wizard stores) from the
given file or stdin and writes the preview as a standalone HTML page or as the
structured layout document.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderFlags.template, "template", "t", "", "Template id (default: the record's template_id)")
	renderCmd.Flags().StringVarP(&renderFlags.format, "format", "f", "html", "Output format: html or json")
	renderCmd.Flags().StringVarP(&renderFlags.output, "output", "o", "", "Output file (default: stdout)")
	renderCmd.Flags().StringVarP(&renderFlags.customization, "customization", "c", "", "Customization settings JSON file")
}

func runRender(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open record: %w", err)
		}
		defer f.Close()
		in = f
	}

	var record domain.ContentRecord
	if err := json.NewDecoder(in).Decode(&record); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	templateID := record.TemplateID
	if renderFlags.template != "" {
		templateID = renderFlags.template
	}

	settings, err := loadCustomization(renderFlags.customization)
	if err != nil {
		return err
	}

	var body []byte
	switch renderFlags.format {
	case "html":
		body, err = preview.RenderHTML(templateID, record, settings)
	case "json":
		body, err = json.MarshalIndent(preview.Render(templateID, record), "", "  ")
		body = append(body, '\n')
	default:
		return fmt.Errorf("unknown format %q: use html or json", renderFlags.format)
	}
	if err != nil {
		return err
	}

	return writeOutput(cmd.OutOrStdout(), renderFlags.output, body)
}

// loadCustomization reads and validates a settings file; an empty path means
// the defaults.
func loadCustomization(path string) (*domain.CustomizationSettings, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read customization: %w", err)
	}

	var settings domain.CustomizationSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("decode customization: %w", err)
	}
	if err := validation.New().Struct(settings); err != nil {
		return nil, fmt.Errorf("invalid customization: %v", validation.FormatValidationErrors(err))
	}
	return &settings, nil
}

func writeOutput(stdout io.Writer, path string, body []byte) error {
	if path == "" {
		_, err := stdout.Write(body)
		return err
	}
	return os.WriteFile(path, body, 0o644)
}
