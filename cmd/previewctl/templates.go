package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"quickfolio-backend/internal/catalog"
	"quickfolio-backend/internal/domain"
	"quickfolio-backend/internal/generator"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the template catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tFEATURED")
		for _, t := range catalog.Default().List() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", t.ID, t.Name, t.Category, t.Featured)
		}
		return w.Flush()
	},
}

var sampleFlags struct {
	name       string
	profession string
	template   string
}

// sampleCmd prints a filled record to pipe into render.
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print a sample content record for a profession",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !domain.Profession(sampleFlags.profession).IsValid() {
			return fmt.Errorf("unknown profession %q", sampleFlags.profession)
		}
		gen := generator.Content(sampleFlags.profession)
		record := domain.ContentRecord{
			Name:       sampleFlags.name,
			Profession: sampleFlags.profession,
			TemplateID: sampleFlags.template,
			About:      gen.About,
			Skills:     gen.Skills,
			Experience: gen.Experience,
			Projects:   gen.Projects,
			Contact:    "hello@example.com",
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	},
}

func init() {
	sampleCmd.Flags().StringVar(&sampleFlags.name, "name", "Jane Doe", "Portfolio owner name")
	sampleCmd.Flags().StringVarP(&sampleFlags.profession, "profession", "p", "developer", "Profession")
	sampleCmd.Flags().StringVarP(&sampleFlags.template, "template", "t", "minimalist", "Template id")
}
