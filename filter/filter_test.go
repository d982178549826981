package filter

import (
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volmap/dataset"
	"volmap/models"
)

const header = "Organization,About,Region,County,City,latitude,longitude,OrgURL,VolunteerListing,Stewardship,Education,Citizen Science\n"

func loadTable(t *testing.T, rows ...string) *models.Table {
	t.Helper()
	table, err := dataset.Parse(strings.NewReader(header + strings.Join(rows, "\n") + "\n"))
	require.NoError(t, err)
	return table
}

func sampleTable(t *testing.T) *models.Table {
	return loadTable(t,
		"River Watch,Stream sampling,North,Oneida,Rhinelander,45.6,-89.4,https://river.example.org,,True,False,True",
		"Lake Friends,Beach cleanups and école visits,East,Door,Sturgeon Bay,44.8,-87.3,https://lake.example.org,,False,True,False",
		"Prairie Crew,,South,Dane,Madison,,,https://prairie.example.org,,True,,",
		"Marsh Keepers,Bird counts,,Dane,Madison,43.0,-89.4,,,,True,True",
		"Forest Hands,Trail work,North,Vilas,Eagle River,46.0,-89.2,,,True,True,False",
	)
}

func names(table *models.Table) []string {
	out := []string{}
	for _, r := range table.Records() {
		out = append(out, r.Organization)
	}
	return out
}

func TestApply_NoCriteriaIsIdentity(t *testing.T) {
	table := sampleTable(t)
	got := Apply(table, Criteria{})
	assert.Same(t, table, got)

	got = Apply(table, Criteria{
		Text:       map[string]string{"Organization": ""},
		Categories: map[string][]string{"Region": {}},
		Flags:      map[string]bool{"Education": false},
	})
	assert.Equal(t, names(table), names(got))
}

func TestApply_Text(t *testing.T) {
	table := sampleTable(t)

	got := Apply(table, Criteria{Text: map[string]string{"Organization": "RIVER"}})
	assert.Equal(t, []string{"River Watch"}, names(got))

	// Null About never matches, even for a pattern every string contains.
	got = Apply(table, Criteria{Text: map[string]string{"About": "o"}})
	assert.NotContains(t, names(got), "Prairie Crew")

	got = Apply(table, Criteria{Text: map[string]string{"About": "ÉCOLE"}})
	assert.Equal(t, []string{"Lake Friends"}, names(got))
}

func TestApply_CategoriesAreOredWithinColumn(t *testing.T) {
	table := sampleTable(t)
	got := Apply(table, Criteria{Categories: map[string][]string{"Region": {"North", "East"}}})
	assert.Equal(t, []string{"River Watch", "Lake Friends", "Forest Hands"}, names(got))

	got = Apply(table, Criteria{Categories: map[string][]string{"Region": {"North"}, "County": {"Vilas"}}})
	assert.Equal(t, []string{"Forest Hands"}, names(got))
}

func TestApply_FlagsRequireExactTrue(t *testing.T) {
	table := sampleTable(t)
	got := Apply(table, Criteria{Flags: map[string]bool{"Education": true}})
	assert.Equal(t, []string{"Lake Friends", "Marsh Keepers", "Forest Hands"}, names(got))

	got = Apply(table, Criteria{Flags: map[string]bool{"Citizen Science": true, "Stewardship": true}})
	assert.Equal(t, []string{"River Watch"}, names(got))
}

func TestApply_Properties(t *testing.T) {
	table := sampleTable(t)
	c1 := Criteria{Flags: map[string]bool{"Stewardship": true}}
	c2 := Criteria{Categories: map[string][]string{"Region": {"North", "South"}}, Text: map[string]string{"About": "work"}}
	union := Criteria{Flags: c1.Flags, Categories: c2.Categories, Text: c2.Text}

	once := Apply(table, union)
	if diff := cmp.Diff(once.Records(), Apply(once, union).Records()); diff != "" {
		t.Errorf("apply is not idempotent (-once +twice):\n%s", diff)
	}
	if diff := cmp.Diff(once.Records(), Apply(Apply(table, c1), c2).Records()); diff != "" {
		t.Errorf("union differs from chained apply (-union +chained):\n%s", diff)
	}

	all := map[*models.Organization]bool{}
	for _, r := range table.Records() {
		all[r] = true
	}
	for _, c := range []Criteria{c1, c2, union} {
		got := Apply(table, c)
		assert.LessOrEqual(t, got.Len(), table.Len())
		for _, r := range got.Records() {
			assert.True(t, all[r], "record %s not from source table", r.Organization)
		}
	}
}

func TestApply_Example(t *testing.T) {
	table := loadTable(t,
		"A,,North,,,44.1,-89.0,https://a.example.org,,True,,",
		"B,,South,,,,,https://b.example.org,,False,,",
	)
	got := Apply(table, Criteria{
		Categories: map[string][]string{"Region": {"North"}},
		Flags:      map[string]bool{"Stewardship": true},
	})
	assert.Equal(t, []string{"A"}, names(got))
}

func TestApply_UnknownRegionIsEmpty(t *testing.T) {
	got := Apply(sampleTable(t), Criteria{Categories: map[string][]string{"Region": {"Atlantis"}}})
	assert.True(t, got.Empty())
	assert.NotEmpty(t, got.Header())
}

func TestFromQuery(t *testing.T) {
	q := url.Values{
		"Organization":    {"river"},
		"About":           {""},
		"Region":          {"North", "East", "North", ""},
		"Stewardship":     {"on"},
		"Education":       {"off"},
		"Citizen Science": {"true"},
		"view":            {"Map View"},
	}
	c := FromQuery(q)
	assert.Equal(t, map[string]string{"Organization": "river"}, c.Text)
	assert.Equal(t, map[string][]string{"Region": {"North", "East"}}, c.Categories)
	assert.Equal(t, map[string]bool{"Stewardship": true, "Citizen Science": true}, c.Flags)
	assert.True(t, c.Active())

	assert.Equal(t, c, FromQuery(c.Query()))
	assert.False(t, FromQuery(url.Values{}).Active())
}

func TestOptions(t *testing.T) {
	opts := Options(sampleTable(t))
	require.Len(t, opts, 2)
	assert.Equal(t, Option{Column: "Region", Values: []string{"East", "North", "South"}}, opts[0])
	assert.Equal(t, Option{Column: "County", Values: []string{"Dane", "Door", "Oneida", "Vilas"}}, opts[1])
}
