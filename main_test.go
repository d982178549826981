package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volmap/models"
)

func TestExportCriteria(t *testing.T) {
	exportOpts.organization = "marsh"
	exportOpts.regions = []string{"South"}
	exportOpts.citizenScience = true
	t.Cleanup(func() {
		exportOpts.organization = ""
		exportOpts.regions = nil
		exportOpts.citizenScience = false
	})

	c := exportCriteria()
	assert.True(t, c.Active())
	assert.Equal(t, "marsh", c.Text[models.ColOrganization])
	assert.Equal(t, []string{"South"}, c.Categories[models.ColRegion])
	assert.True(t, c.Flags[models.ColCitizenScience])
	assert.False(t, c.Flags[models.ColStewardship])
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(filepath.Join("dataset", "testdata", "organizations.csv"))
	require.NoError(t, err)
	src := filepath.Join(dir, "orgs.csv")
	require.NoError(t, os.WriteFile(src, data, 0o644))
	out := filepath.Join(dir, "out.csv")

	t.Setenv("DATA_PATH", src)
	t.Setenv("VOLMAP_CONFIG", "")
	t.Cleanup(func() { exportOpts.regions = nil })

	rootCmd.SetArgs([]string{"export", "--region", "North", "--out", out})
	require.NoError(t, rootCmd.Execute())

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(got), "Prairie Restoration Crew")
	assert.NotContains(t, string(got), "Lakeshore Nature Center")
}

func TestMirrorUnknownTarget(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	_, err := openMirror(ctx, "sqlite")
	assert.ErrorContains(t, err, "unknown mirror target")
}
