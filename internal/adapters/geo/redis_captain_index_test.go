package geo

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/zatekoja/ridemaps/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/ridemaps/backend/pkg/errors"
)

func TestRedisRadiusKm_KeepsAngle(t *testing.T) {
	assert.InDelta(t, redisEarthRadiusKm, redisRadiusKm(6371), 1e-9)
	assert.InDelta(t, 0.0, redisRadiusKm(0), 1e-12)
	assert.InDelta(t, 10.0/6371*6372.797560856, redisRadiusKm(10), 1e-9)
}

func TestValidateGeoLocation(t *testing.T) {
	tests := []struct {
		name     string
		location *entities.Location
		valid    bool
	}{
		{"no location", nil, true},
		{"lagos", &entities.Location{Latitude: 6.5244, Longitude: 3.3792}, true},
		{"mercator edge", &entities.Location{Latitude: -85.05112878, Longitude: 180}, true},
		{"north pole", &entities.Location{Latitude: 90, Longitude: 0}, false},
		{"above mercator limit", &entities.Location{Latitude: 85.06, Longitude: 10}, false},
		{"longitude overflow", &entities.Location{Latitude: 0, Longitude: 180.5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateGeoLocation(tt.location)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		})
	}
}

// Out-of-range positions are rejected before any command is sent, so the
// unreachable address is never dialed.
func TestRedisCaptainIndex_RejectsUnindexableLatitude(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { client.Close() })
	index := &RedisCaptainIndex{client: client}
	ctx := context.Background()

	err := index.Save(ctx, &entities.Captain{ID: "polar", Location: &entities.Location{Latitude: 89.9, Longitude: 0}})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	err = index.UpdateLocation(ctx, "polar", entities.Location{Latitude: -86, Longitude: 0})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}
