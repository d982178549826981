package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"volmap/models"
)

func sampleOrganization() *models.Organization {
	lat, lon := 45.64, -89.41
	return &models.Organization{
		ID:             models.RecordID(0, "Prairie Restoration Crew"),
		Organization:   "Prairie Restoration Crew",
		Region:         "North",
		City:           "Rhinelander",
		Latitude:       &lat,
		Longitude:      &lon,
		OrgURL:         "https://prairie.example.org",
		Stewardship:    models.FlagTrue,
		Education:      models.FlagFalse,
		CitizenScience: models.FlagMissing,
	}
}

func TestNewOrganizationDocument(t *testing.T) {
	synced := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	doc := newOrganizationDocument(sampleOrganization(), synced)

	data, err := bson.Marshal(doc)
	require.NoError(t, err)
	raw := bson.Raw(data)

	assert.Equal(t, "Prairie Restoration Crew", raw.Lookup("organization").StringValue())
	_, err = raw.LookupErr("about")
	assert.Error(t, err, "empty fields are omitted")
	assert.True(t, raw.Lookup("stewardship").Boolean())
	assert.False(t, raw.Lookup("education").Boolean())
	assert.Equal(t, bsontype.Null, raw.Lookup("citizen_science").Type)

	assert.Equal(t, "Point", raw.Lookup("location", "type").StringValue())
	coords, err := raw.Lookup("location", "coordinates").Array().Values()
	require.NoError(t, err)
	require.Len(t, coords, 2)
	assert.InDelta(t, -89.41, coords[0].Double(), 1e-9)
	assert.InDelta(t, 45.64, coords[1].Double(), 1e-9)

	tags, err := raw.Lookup("focus_areas").Array().Values()
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Stewardship", tags[0].StringValue())
}

func TestNewOrganizationDocument_NoLocation(t *testing.T) {
	doc := newOrganizationDocument(&models.Organization{ID: "x"}, time.Now())
	assert.Nil(t, doc.Location)
	assert.Equal(t, []string{}, doc.FocusAreas)
}

func TestOrganizationArgs(t *testing.T) {
	synced := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	args := organizationArgs(sampleOrganization(), synced)
	require.Len(t, args, 14)

	assert.Equal(t, sql.NullString{String: "Prairie Restoration Crew", Valid: true}, args[1])
	assert.Equal(t, sql.NullString{}, args[2])
	assert.Equal(t, sql.NullFloat64{Float64: 45.64, Valid: true}, args[6])
	assert.Equal(t, sql.NullBool{Bool: true, Valid: true}, args[10])
	assert.Equal(t, sql.NullBool{Bool: false, Valid: true}, args[11])
	assert.Equal(t, sql.NullBool{}, args[12])
	assert.Equal(t, synced, args[13])
}

func withFastRetry(t *testing.T) {
	t.Helper()
	saved := connectRetry
	connectRetry = retryPolicy{initialInterval: time.Millisecond, maxInterval: 2 * time.Millisecond, maxRetries: 3}
	t.Cleanup(func() { connectRetry = saved })
}

func TestConnectWithRetry(t *testing.T) {
	withFastRetry(t)
	core, logs := observer.New(zap.WarnLevel)

	calls := 0
	err := connectWithRetry(context.Background(), zap.New(core), "test", func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, logs.Len())
}

func TestConnectWithRetry_GivesUp(t *testing.T) {
	withFastRetry(t)

	calls := 0
	err := connectWithRetry(context.Background(), zap.NewNop(), "test", func() error {
		calls++
		return errors.New("connection refused")
	})
	require.Error(t, err)
	assert.Equal(t, 4, calls)
}
