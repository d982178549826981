package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"volmap/models"
)

const mongoCollection = "organizations"

// MongoMirror keeps one document per organization, keyed by record ID, with
// a GeoJSON location for $near queries.
type MongoMirror struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *zap.Logger
}

type organizationDocument struct {
	ID               string           `bson:"_id"`
	Organization     string           `bson:"organization,omitempty"`
	About            string           `bson:"about,omitempty"`
	Region           string           `bson:"region,omitempty"`
	County           string           `bson:"county,omitempty"`
	City             string           `bson:"city,omitempty"`
	OrgURL           string           `bson:"org_url,omitempty"`
	VolunteerListing string           `bson:"volunteer_listing_url,omitempty"`
	Location         *models.GeoPoint `bson:"location,omitempty"`
	Stewardship      *bool            `bson:"stewardship"`
	Education        *bool            `bson:"education"`
	CitizenScience   *bool            `bson:"citizen_science"`
	FocusAreas       []string         `bson:"focus_areas"`
	SyncedAt         time.Time        `bson:"synced_at"`
}

func newOrganizationDocument(o *models.Organization, syncedAt time.Time) organizationDocument {
	tags := o.Tags()
	if tags == nil {
		tags = []string{}
	}
	return organizationDocument{
		ID:               o.ID,
		Organization:     o.Organization,
		About:            o.About,
		Region:           o.Region,
		County:           o.County,
		City:             o.City,
		OrgURL:           o.OrgURL,
		VolunteerListing: o.VolunteerListing,
		Location:         o.Location(),
		Stewardship:      o.Stewardship.Bool(),
		Education:        o.Education.Bool(),
		CitizenScience:   o.CitizenScience.Bool(),
		FocusAreas:       tags,
		SyncedAt:         syncedAt,
	}
}

func NewMongoMirror(ctx context.Context, uri, database string, logger *zap.Logger) (*MongoMirror, error) {
	var client *mongo.Client
	err := connectWithRetry(ctx, logger, "mongodb", func() error {
		c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return err
		}
		if err := c.Ping(ctx, nil); err != nil {
			_ = c.Disconnect(ctx)
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("MongoDB connection failed: %w", err)
	}
	logger.Info("Connected to MongoDB", zap.String("database", database))

	return &MongoMirror{
		client:     client,
		collection: client.Database(database).Collection(mongoCollection),
		logger:     logger,
	}, nil
}

func (m *MongoMirror) Sync(ctx context.Context, table *models.Table) (int, error) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "region", Value: 1}, {Key: "county", Value: 1}}},
	}
	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return 0, fmt.Errorf("failed to create indexes: %w", err)
	}

	now := time.Now().UTC()
	records := table.Records()
	ids := make([]string, 0, len(records))
	writes := make([]mongo.WriteModel, 0, len(records))
	for _, o := range records {
		ids = append(ids, o.ID)
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": o.ID}).
			SetReplacement(newOrganizationDocument(o, now)).
			SetUpsert(true))
	}

	written := 0
	if len(writes) > 0 {
		res, err := m.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
		if err != nil {
			return 0, fmt.Errorf("failed to write organizations: %w", err)
		}
		written = int(res.UpsertedCount + res.MatchedCount)
	}

	removed, err := m.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": ids}})
	if err != nil {
		return written, fmt.Errorf("failed to prune organizations: %w", err)
	}
	m.logger.Info("Mirrored organizations to MongoDB",
		zap.Int("written", written),
		zap.Int64("removed", removed.DeletedCount),
	)
	return written, nil
}

func (m *MongoMirror) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
