// Package filter narrows an organization table down to the rows matching
// the user's search boxes, dropdown selections and focus-area checkboxes.
package filter

import (
	"net/url"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"volmap/models"
)

// Criteria is the set of constraints for one render pass. Keys are column
// names; keys that do not name a known column are ignored.
type Criteria struct {
	Text       map[string]string   `json:"text,omitempty"`
	Categories map[string][]string `json:"categories,omitempty"`
	Flags      map[string]bool     `json:"flags,omitempty"`
}

// Active reports whether any constraint would remove rows.
func (c Criteria) Active() bool {
	for _, f := range models.SearchFields {
		if c.Text[f.Name] != "" {
			return true
		}
	}
	for _, f := range models.CategoryFields {
		if len(c.Categories[f.Name]) > 0 {
			return true
		}
	}
	for _, f := range models.FocusAreas {
		if c.Flags[f.Label] {
			return true
		}
	}
	return false
}

type predicate func(*models.Organization) bool

// Apply returns the rows of table that satisfy every active criterion, in
// table order. With nothing active the input table is returned as is.
func Apply(table *models.Table, c Criteria) *models.Table {
	var preds []predicate

	folder := cases.Fold()
	for _, f := range models.SearchFields {
		pattern := c.Text[f.Name]
		if pattern == "" {
			continue
		}
		needle := folder.String(pattern)
		value := f.Value
		preds = append(preds, func(o *models.Organization) bool {
			v := value(o)
			return v != "" && strings.Contains(folder.String(v), needle)
		})
	}

	for _, f := range models.CategoryFields {
		selected := c.Categories[f.Name]
		if len(selected) == 0 {
			continue
		}
		accepted := make(map[string]struct{}, len(selected))
		for _, v := range selected {
			accepted[v] = struct{}{}
		}
		value := f.Value
		preds = append(preds, func(o *models.Organization) bool {
			v := value(o)
			if v == "" {
				return false
			}
			_, ok := accepted[v]
			return ok
		})
	}

	for _, f := range models.FocusAreas {
		if !c.Flags[f.Label] {
			continue
		}
		value := f.Value
		preds = append(preds, func(o *models.Organization) bool {
			return value(o).IsTrue()
		})
	}

	if len(preds) == 0 {
		return table
	}
	return table.Select(func(o *models.Organization) bool {
		for _, p := range preds {
			if !p(o) {
				return false
			}
		}
		return true
	})
}

// FromQuery builds criteria from request parameters named after the columns,
// e.g. ?Organization=river&Region=North&Region=East&Stewardship=on.
func FromQuery(q url.Values) Criteria {
	c := Criteria{
		Text:       map[string]string{},
		Categories: map[string][]string{},
		Flags:      map[string]bool{},
	}
	for _, f := range models.SearchFields {
		if v := q.Get(f.Name); v != "" {
			c.Text[f.Name] = v
		}
	}
	for _, f := range models.CategoryFields {
		var values []string
		for _, v := range q[f.Name] {
			if v != "" && !slices.Contains(values, v) {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			c.Categories[f.Name] = values
		}
	}
	for _, f := range models.FocusAreas {
		switch strings.ToLower(q.Get(f.Label)) {
		case "on", "true", "1":
			c.Flags[f.Label] = true
		}
	}
	return c
}

// Query encodes c back into request parameters understood by FromQuery.
func (c Criteria) Query() url.Values {
	q := url.Values{}
	for _, f := range models.SearchFields {
		if v := c.Text[f.Name]; v != "" {
			q.Set(f.Name, v)
		}
	}
	for _, f := range models.CategoryFields {
		for _, v := range c.Categories[f.Name] {
			q.Add(f.Name, v)
		}
	}
	for _, f := range models.FocusAreas {
		if c.Flags[f.Label] {
			q.Set(f.Label, "on")
		}
	}
	return q
}

// Option lists the choices for one multi-select column.
type Option struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}

// Options returns the sorted distinct non-null values of every category
// column.
func Options(table *models.Table) []Option {
	records := table.Records()
	opts := make([]Option, 0, len(models.CategoryFields))
	for _, f := range models.CategoryFields {
		seen := map[string]struct{}{}
		values := []string{}
		for _, rec := range records {
			v := f.Value(rec)
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
		sort.Strings(values)
		opts = append(opts, Option{Column: f.Name, Values: values})
	}
	return opts
}
