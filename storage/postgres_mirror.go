package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"volmap/models"
)

// PostgresMirror keeps the organizations table in PostgreSQL in step with
// the loaded file.
type PostgresMirror struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresMirror(ctx context.Context, connStr string, logger *zap.Logger) (*PostgresMirror, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := connectWithRetry(ctx, logger, "postgres", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger.Info("Connected to PostgreSQL")
	return &PostgresMirror{db: db, logger: logger}, nil
}

const createOrganizationsTable = `
CREATE TABLE IF NOT EXISTS organizations (
	id                    UUID PRIMARY KEY,
	organization          TEXT,
	about                 TEXT,
	region                TEXT,
	county                TEXT,
	city                  TEXT,
	latitude              DOUBLE PRECISION,
	longitude             DOUBLE PRECISION,
	org_url               TEXT,
	volunteer_listing_url TEXT,
	stewardship           BOOLEAN,
	education             BOOLEAN,
	citizen_science       BOOLEAN,
	synced_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_organizations_region ON organizations (region);
CREATE INDEX IF NOT EXISTS idx_organizations_county ON organizations (county);
`

const upsertOrganization = `
INSERT INTO organizations (id, organization, about, region, county, city, latitude, longitude,
	org_url, volunteer_listing_url, stewardship, education, citizen_science, synced_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (id) DO UPDATE SET
	organization = EXCLUDED.organization,
	about = EXCLUDED.about,
	region = EXCLUDED.region,
	county = EXCLUDED.county,
	city = EXCLUDED.city,
	latitude = EXCLUDED.latitude,
	longitude = EXCLUDED.longitude,
	org_url = EXCLUDED.org_url,
	volunteer_listing_url = EXCLUDED.volunteer_listing_url,
	stewardship = EXCLUDED.stewardship,
	education = EXCLUDED.education,
	citizen_science = EXCLUDED.citizen_science,
	synced_at = EXCLUDED.synced_at
`

// Sync upserts every record and deletes rows no longer in the table, in a
// single transaction.
func (p *PostgresMirror) Sync(ctx context.Context, table *models.Table) (n int, err error) {
	if _, err := p.db.ExecContext(ctx, createOrganizationsTable); err != nil {
		return 0, fmt.Errorf("failed to create table: %w", err)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertOrganization)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	records := table.Records()
	ids := make([]string, 0, len(records))
	for _, o := range records {
		if _, err = stmt.ExecContext(ctx, organizationArgs(o, now)...); err != nil {
			return 0, fmt.Errorf("failed to upsert '%s': %w", o.Organization, err)
		}
		ids = append(ids, o.ID)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM organizations WHERE NOT (id::text = ANY($1))`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to prune organizations: %w", err)
	}
	removed, _ := res.RowsAffected()

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	p.logger.Info("Mirrored organizations to PostgreSQL",
		zap.Int("written", len(records)),
		zap.Int64("removed", removed),
	)
	return len(records), nil
}

func (p *PostgresMirror) Close(ctx context.Context) error {
	return p.db.Close()
}

// organizationArgs returns the upsert parameters for o in column order.
// Missing cells become SQL NULL.
func organizationArgs(o *models.Organization, syncedAt time.Time) []any {
	return []any{
		o.ID,
		nullString(o.Organization),
		nullString(o.About),
		nullString(o.Region),
		nullString(o.County),
		nullString(o.City),
		nullFloat(o.Latitude),
		nullFloat(o.Longitude),
		nullString(o.OrgURL),
		nullString(o.VolunteerListing),
		nullBool(o.Stewardship),
		nullBool(o.Education),
		nullBool(o.CitizenScience),
		syncedAt,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullBool(f models.Flag) sql.NullBool {
	b := f.Bool()
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
