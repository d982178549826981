// Package dataset reads the organization CSV into an immutable models.Table.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"volmap/models"
)

// ErrDataUnavailable is wrapped by every load failure: a missing or
// unreadable file, malformed CSV, or a missing recognized column.
var ErrDataUnavailable = errors.New("organization data unavailable")

// Cells that count as missing, mirroring the usual spreadsheet export markers.
var nullTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {},
	"NULL": {}, "null": {}, "None": {}, "#N/A": {}, "<NA>": {},
}

// Loader reads the source file once and hands out the same table on every
// later call for the lifetime of the process.
type Loader struct {
	path string

	mu    sync.Mutex
	table *models.Table
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

func (l *Loader) Path() string { return l.path }

// Load returns the parsed table, reading the file only on the first
// successful call.
func (l *Loader) Load() (*models.Table, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.table != nil {
		return l.table, nil
	}
	table, err := ReadFile(l.path)
	if err != nil {
		return nil, err
	}
	l.table = table
	return table, nil
}

// ReadFile parses the CSV at path.
func ReadFile(path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	defer f.Close()

	table, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Parse reads a header row followed by data rows.
func Parse(r io.Reader) (*models.Table, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrDataUnavailable)
		}
		return nil, fmt.Errorf("%w: reading header: %v", ErrDataUnavailable, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	var missing []string
	for _, col := range models.RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrDataUnavailable, strings.Join(missing, ", "))
	}

	var records []*models.Organization
	for row := 0; ; row++ {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
		}
		records = append(records, buildRecord(row, index, cells))
	}
	return models.NewTable(header, records), nil
}

func buildRecord(row int, index map[string]int, cells []string) *models.Organization {
	text := func(col string) string {
		v := strings.TrimSpace(cells[index[col]])
		if _, null := nullTokens[v]; null {
			return ""
		}
		return v
	}
	org := &models.Organization{
		Organization:     text(models.ColOrganization),
		About:            text(models.ColAbout),
		Region:           text(models.ColRegion),
		County:           text(models.ColCounty),
		City:             text(models.ColCity),
		OrgURL:           text(models.ColOrgURL),
		VolunteerListing: text(models.ColVolunteerListing),
		Latitude:         parseCoordinate(text(models.ColLatitude), 90),
		Longitude:        parseCoordinate(text(models.ColLongitude), 180),
		Stewardship:      parseFlag(text(models.ColStewardship)),
		Education:        parseFlag(text(models.ColEducation)),
		CitizenScience:   parseFlag(text(models.ColCitizenScience)),
		Raw:              cells,
	}
	org.ID = models.RecordID(row, org.Organization)
	return org
}

// parseCoordinate returns nil unless s is a finite number within
// [-limit, limit]. ParseFloat accepts "inf" and "NaN", which no map can place.
func parseCoordinate(s string, limit float64) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > limit {
		return nil
	}
	return &v
}

// parseFlag only recognizes the literal boolean spellings; anything else is
// treated as missing so that it never satisfies a checkbox filter.
func parseFlag(s string) models.Flag {
	switch strings.TrimSpace(s) {
	case "True", "true", "TRUE":
		return models.FlagTrue
	case "False", "false", "FALSE":
		return models.FlagFalse
	default:
		return models.FlagMissing
	}
}
