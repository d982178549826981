package models

// TextField pairs a column name with an accessor for a string-valued column.
type TextField struct {
	Name  string
	Value func(*Organization) string
}

// FlagField pairs a focus-area label with an accessor for its flag.
type FlagField struct {
	Label string
	Value func(*Organization) Flag
}

// SearchFields are the columns offered as free-text search boxes.
var SearchFields = []TextField{
	{Name: ColOrganization, Value: func(o *Organization) string { return o.Organization }},
	{Name: ColAbout, Value: func(o *Organization) string { return o.About }},
}

// CategoryFields are the columns offered as multi-select dropdowns.
var CategoryFields = []TextField{
	{Name: ColRegion, Value: func(o *Organization) string { return o.Region }},
	{Name: ColCounty, Value: func(o *Organization) string { return o.County }},
}

// FocusAreas lists the flag columns in display order. Card tags and
// checkbox filters are both driven from this list.
var FocusAreas = []FlagField{
	{Label: ColStewardship, Value: func(o *Organization) Flag { return o.Stewardship }},
	{Label: ColEducation, Value: func(o *Organization) Flag { return o.Education }},
	{Label: ColCitizenScience, Value: func(o *Organization) Flag { return o.CitizenScience }},
}

// Tags returns the labels of every focus area that is exactly true on o.
func (o *Organization) Tags() []string {
	var tags []string
	for _, f := range FocusAreas {
		if f.Value(o).IsTrue() {
			tags = append(tags, f.Label)
		}
	}
	return tags
}
