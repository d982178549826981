package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"volmap/filter"
	"volmap/models"
	"volmap/utils/errors"
)

const geoKey = "organizations:geo"

// OrganizationService answers queries against the loaded table. The table
// is injected once at startup and only read afterwards.
type OrganizationService struct {
	table   *models.Table
	byID    map[string]*models.Organization
	options []filter.Option
	logger  *zap.Logger

	// RedisClient backs the nearby search when set; otherwise distances
	// are computed in memory.
	RedisClient *redis.Client
}

type NearbyOrganization struct {
	Organization *models.Organization `json:"organization"`
	DistanceKm   float64              `json:"distance_km"`
}

func NewOrganizationService(table *models.Table, logger *zap.Logger) *OrganizationService {
	byID := make(map[string]*models.Organization, table.Len())
	for _, rec := range table.Records() {
		byID[rec.ID] = rec
	}
	return &OrganizationService{
		table:   table,
		byID:    byID,
		options: filter.Options(table),
		logger:  logger,
	}
}

// NewRedisClient connects to Redis and checks the connection.
func NewRedisClient(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return client, nil
}

func (s *OrganizationService) Table() *models.Table { return s.table }

// Options returns the multi-select choices computed at load time.
func (s *OrganizationService) Options() []filter.Option { return s.options }

// Filter returns the rows matching c.
func (s *OrganizationService) Filter(c filter.Criteria) *models.Table {
	return filter.Apply(s.table, c)
}

func (s *OrganizationService) Get(id string) (*models.Organization, error) {
	rec, ok := s.byID[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return rec, nil
}

// IndexGeo replaces the Redis geo set with every located organization.
func (s *OrganizationService) IndexGeo(ctx context.Context) error {
	if s.RedisClient == nil {
		return nil
	}
	var locations []*redis.GeoLocation
	for _, rec := range s.table.Records() {
		if !rec.HasLocation() {
			continue
		}
		locations = append(locations, &redis.GeoLocation{
			Name:      rec.ID,
			Longitude: *rec.Longitude,
			Latitude:  *rec.Latitude,
		})
	}

	pipe := s.RedisClient.TxPipeline()
	pipe.Del(ctx, geoKey)
	if len(locations) > 0 {
		pipe.GeoAdd(ctx, geoKey, locations...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to index organizations in Redis: %w", err)
	}
	s.logger.Info("Indexed organizations in Redis", zap.Int("count", len(locations)), zap.String("key", geoKey))
	return nil
}

// FindNearby returns organizations matching c within radiusKm of
// (lat, lon), nearest first.
func (s *OrganizationService) FindNearby(ctx context.Context, lat, lon, radiusKm float64, c filter.Criteria) ([]NearbyOrganization, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, errors.ErrInvalidLocation
	}
	if radiusKm <= 0 {
		return nil, errors.ErrInvalidInput
	}

	allowed := map[string]struct{}{}
	for _, rec := range s.Filter(c).Records() {
		allowed[rec.ID] = struct{}{}
	}

	if s.RedisClient != nil {
		return s.findNearbyRedis(ctx, lat, lon, radiusKm, allowed)
	}
	return s.findNearbyMemory(lat, lon, radiusKm, allowed), nil
}

func (s *OrganizationService) findNearbyRedis(ctx context.Context, lat, lon, radiusKm float64, allowed map[string]struct{}) ([]NearbyOrganization, error) {
	geoResults, err := s.RedisClient.GeoRadius(ctx, geoKey, lon, lat, &redis.GeoRadiusQuery{
		Radius:   radiusKm,
		Unit:     "km",
		WithDist: true,
		Sort:     "ASC",
	}).Result()
	if err != nil {
		s.logger.Error("Redis GeoRadius failed", zap.Error(err))
		return nil, errors.Wrap(err, "GEO_INDEX_ERROR", "Nearby search failed", errors.ErrInternal.Status)
	}

	results := []NearbyOrganization{}
	for _, geoResult := range geoResults {
		if _, ok := allowed[geoResult.Name]; !ok {
			continue
		}
		rec, ok := s.byID[geoResult.Name]
		if !ok {
			s.logger.Warn("Geo index references unknown organization", zap.String("id", geoResult.Name))
			continue
		}
		results = append(results, NearbyOrganization{Organization: rec, DistanceKm: geoResult.Dist})
	}
	s.logger.Debug("Nearby search", zap.Int("found", len(results)), zap.Float64("radius_km", radiusKm))
	return results, nil
}

func (s *OrganizationService) findNearbyMemory(lat, lon, radiusKm float64, allowed map[string]struct{}) []NearbyOrganization {
	results := []NearbyOrganization{}
	for _, rec := range s.table.Records() {
		if !rec.HasLocation() {
			continue
		}
		if _, ok := allowed[rec.ID]; !ok {
			continue
		}
		d := haversineKm(lat, lon, *rec.Latitude, *rec.Longitude)
		if d <= radiusKm {
			results = append(results, NearbyOrganization{Organization: rec, DistanceKm: d})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})
	return results
}

const earthRadiusKm = 6372.7976

// haversineKm uses the same earth radius as Redis GEO commands.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
