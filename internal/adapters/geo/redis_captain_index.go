package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/zatekoja/ridemaps/backend/internal/domain/entities"
	"github.com/zatekoja/ridemaps/backend/internal/domain/repositories"
	redisclient "github.com/zatekoja/ridemaps/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/ridemaps/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/ridemaps/backend/pkg/errors"
)

const (
	locationsKey = "captains:locations"
	recordsKey   = "captains:records"

	// redisEarthRadiusKm is the sphere Redis GEO commands measure on.
	redisEarthRadiusKm = 6372.797560856

	// GEOADD limits; latitude is bounded by the Web Mercator projection.
	maxGeoLatitude  = 85.05112878
	maxGeoLongitude = 180.0

	maxUpdateAttempts = 10
)

// RedisCaptainIndex implements CaptainRepository on a Redis GEO set plus a
// hash of JSON records keyed by captain ID.
type RedisCaptainIndex struct {
	client *redis.Client
}

// NewRedisCaptainIndex creates a Redis-backed captain repository
func NewRedisCaptainIndex(client *redisclient.Client) repositories.CaptainRepository {
	return &RedisCaptainIndex{client: client.Client()}
}

// Save stores the record and, when it has a location, indexes it
func (r *RedisCaptainIndex) Save(ctx context.Context, captain *entities.Captain) error {
	if err := validateGeoLocation(captain.Location); err != nil {
		return err
	}
	if captain.ID == "" {
		captain.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if captain.CreatedAt.IsZero() {
		captain.CreatedAt = now
	}
	captain.UpdatedAt = now
	if captain.Status == "" {
		captain.Status = entities.CaptainStatusInactive
	}

	payload, err := json.Marshal(captain)
	if err != nil {
		return apperrors.NewInternalError("failed to encode captain", err)
	}

	pipe := r.client.TxPipeline()
	writeCaptain(ctx, pipe, captain, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Str("captain_id", captain.ID).Msg("failed to save captain")
		return apperrors.NewInternalError("failed to save captain", err)
	}
	return nil
}

// GetByID retrieves a captain by ID
func (r *RedisCaptainIndex) GetByID(ctx context.Context, id string) (*entities.Captain, error) {
	payload, err := r.client.HGet(ctx, recordsKey, id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("captain with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get captain", err)
	}

	var captain entities.Captain
	if err := json.Unmarshal(payload, &captain); err != nil {
		return nil, apperrors.NewInternalError("failed to decode captain", err)
	}
	return &captain, nil
}

// UpdateLocation moves an existing captain. The read and write run under
// WATCH on the record hash so a concurrent Save is never overwritten.
func (r *RedisCaptainIndex) UpdateLocation(ctx context.Context, id string, location entities.Location) error {
	if err := validateGeoLocation(&location); err != nil {
		return err
	}

	update := func(tx *redis.Tx) error {
		payload, err := tx.HGet(ctx, recordsKey, id).Bytes()
		if errors.Is(err, redis.Nil) {
			return apperrors.NewNotFoundError(fmt.Sprintf("captain with id %s not found", id))
		}
		if err != nil {
			return err
		}

		var captain entities.Captain
		if err := json.Unmarshal(payload, &captain); err != nil {
			return apperrors.NewInternalError("failed to decode captain", err)
		}
		captain.Location = &location
		captain.UpdatedAt = time.Now().UTC()

		updated, err := json.Marshal(&captain)
		if err != nil {
			return apperrors.NewInternalError("failed to encode captain", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			writeCaptain(ctx, pipe, &captain, updated)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, update, recordsKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			if _, ok := apperrors.As(err); ok {
				return err
			}
			observability.LoggerFromContext(ctx).Error().Err(err).Str("captain_id", id).Msg("failed to update captain location")
			return apperrors.NewInternalError("failed to update captain location", err)
		}
		return nil
	}

	return apperrors.NewInternalError("failed to update captain location",
		fmt.Errorf("record changed concurrently %d times", maxUpdateAttempts))
}

// FindWithinRadius returns captains inside the cap of radiusKm on the 6371 km sphere.
// The radius is rescaled to Redis's sphere so both describe the same angle.
func (r *RedisCaptainIndex) FindWithinRadius(ctx context.Context, latitude, longitude, radiusKm float64) ([]*entities.Captain, error) {
	ids, err := r.client.GeoSearch(ctx, locationsKey, &redis.GeoSearchQuery{
		Longitude:  longitude,
		Latitude:   latitude,
		Radius:     redisRadiusKm(radiusKm),
		RadiusUnit: "km",
	}).Result()
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).
			Float64("lat", latitude).Float64("lng", longitude).Float64("radius_km", radiusKm).
			Msg("failed to query captains in radius")
		return nil, apperrors.NewInternalError("failed to query captains in radius", err)
	}

	captains := []*entities.Captain{}
	if len(ids) == 0 {
		return captains, nil
	}

	values, err := r.client.HMGet(ctx, recordsKey, ids...).Result()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load captains", err)
	}

	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			// indexed without a record; skip rather than fail the whole query
			observability.LoggerFromContext(ctx).Warn().Str("captain_id", ids[i]).Msg("captain location without record")
			continue
		}
		var captain entities.Captain
		if err := json.Unmarshal([]byte(raw), &captain); err != nil {
			return nil, apperrors.NewInternalError("failed to decode captain", err)
		}
		captains = append(captains, &captain)
	}

	return captains, nil
}

// writeCaptain queues the record write and its index entry on pipe
func writeCaptain(ctx context.Context, pipe redis.Pipeliner, captain *entities.Captain, payload []byte) {
	pipe.HSet(ctx, recordsKey, captain.ID, payload)
	if captain.Location != nil {
		pipe.GeoAdd(ctx, locationsKey, &redis.GeoLocation{
			Name:      captain.ID,
			Longitude: captain.Location.Longitude,
			Latitude:  captain.Location.Latitude,
		})
	} else {
		pipe.ZRem(ctx, locationsKey, captain.ID)
	}
}

// validateGeoLocation rejects positions GEOADD cannot index
func validateGeoLocation(location *entities.Location) error {
	if location == nil {
		return nil
	}
	if math.Abs(location.Latitude) > maxGeoLatitude || math.Abs(location.Longitude) > maxGeoLongitude {
		return apperrors.NewValidationError(fmt.Sprintf(
			"location (%g, %g) is outside the indexable range: latitude within ±%g, longitude within ±%g",
			location.Latitude, location.Longitude, maxGeoLatitude, maxGeoLongitude))
	}
	return nil
}

func redisRadiusKm(radiusKm float64) float64 {
	return radiusKm / repositories.EarthRadiusKm * redisEarthRadiusKm
}
