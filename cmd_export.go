package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"volmap/filter"
	"volmap/models"
	"volmap/render"
)

var exportOpts struct {
	out            string
	organization   string
	about          string
	regions        []string
	counties       []string
	stewardship    bool
	education      bool
	citizenScience bool
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered organizations to a CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable()
		if err != nil {
			return err
		}
		result := filter.Apply(table, exportCriteria())

		f, err := os.Create(exportOpts.out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOpts.out, err)
		}
		defer f.Close()

		w := bufio.NewWriter(f)
		if err := render.WriteCSV(w, result); err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportOpts.out, err)
		}
		log.Info("Exported organizations", zap.String("file", exportOpts.out), zap.Int("rows", result.Len()))
		return nil
	},
}

func init() {
	flags := exportCmd.Flags()
	flags.StringVarP(&exportOpts.out, "out", "o", render.ExportFileName, "output file")
	flags.StringVar(&exportOpts.organization, "organization", "", "case-insensitive search in the organization name")
	flags.StringVar(&exportOpts.about, "about", "", "case-insensitive search in the description")
	flags.StringSliceVar(&exportOpts.regions, "region", nil, "keep these regions (repeatable)")
	flags.StringSliceVar(&exportOpts.counties, "county", nil, "keep these counties (repeatable)")
	flags.BoolVar(&exportOpts.stewardship, "stewardship", false, "only stewardship organizations")
	flags.BoolVar(&exportOpts.education, "education", false, "only education organizations")
	flags.BoolVar(&exportOpts.citizenScience, "citizen-science", false, "only citizen science organizations")
}

func exportCriteria() filter.Criteria {
	return filter.Criteria{
		Text: map[string]string{
			models.ColOrganization: exportOpts.organization,
			models.ColAbout:        exportOpts.about,
		},
		Categories: map[string][]string{
			models.ColRegion: exportOpts.regions,
			models.ColCounty: exportOpts.counties,
		},
		Flags: map[string]bool{
			models.ColStewardship:    exportOpts.stewardship,
			models.ColEducation:      exportOpts.education,
			models.ColCitizenScience: exportOpts.citizenScience,
		},
	}
}
