package render

import (
	"encoding/csv"
	"fmt"
	"io"

	"volmap/models"
)

const (
	ExportFileName    = "filtered_organizations.csv"
	ExportContentType = "text/csv; charset=utf-8"
)

// WriteCSV writes the source header and the raw cells of every row in
// table, so the export has the same columns as the file it came from.
func WriteCSV(w io.Writer, table *models.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Header()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, o := range table.Records() {
		if err := writer.Write(o.Raw); err != nil {
			return fmt.Errorf("failed to write CSV row for '%s': %w", o.Organization, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
