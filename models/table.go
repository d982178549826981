package models

import "slices"

// Table is the loaded dataset. It is never mutated after construction;
// filtering produces new tables that share the underlying records.
type Table struct {
	header  []string
	records []*Organization
}

func NewTable(header []string, records []*Organization) *Table {
	return &Table{
		header:  slices.Clone(header),
		records: slices.Clone(records),
	}
}

// Header returns the source column names in file order.
func (t *Table) Header() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.header)
}

// Records returns the rows in table order. The slice is a copy; the
// records themselves must be treated as read-only.
func (t *Table) Records() []*Organization {
	if t == nil {
		return nil
	}
	return slices.Clone(t.records)
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

func (t *Table) Empty() bool { return t.Len() == 0 }

// Select returns a table holding the rows for which keep returns true,
// in their original order.
func (t *Table) Select(keep func(*Organization) bool) *Table {
	if t == nil {
		return nil
	}
	out := &Table{header: t.header, records: make([]*Organization, 0, len(t.records))}
	for _, rec := range t.records {
		if keep(rec) {
			out.records = append(out.records, rec)
		}
	}
	return out
}

// Find returns the record with the given ID.
func (t *Table) Find(id string) (*Organization, bool) {
	if t == nil {
		return nil, false
	}
	for _, rec := range t.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return nil, false
}
