package services

import (
	"context"

	"github.com/zatekoja/ridemaps/backend/internal/domain/entities"
	"github.com/zatekoja/ridemaps/backend/internal/domain/providers"
	"github.com/zatekoja/ridemaps/backend/internal/domain/repositories"
	"github.com/zatekoja/ridemaps/backend/internal/infrastructure/observability"
)

// MapsService composes the maps provider with the captain store.
// Errors are logged and returned unchanged.
type MapsService struct {
	provider providers.MapsProvider
	captains repositories.CaptainRepository
}

// NewMapsService creates a new maps service
func NewMapsService(provider providers.MapsProvider, captains repositories.CaptainRepository) *MapsService {
	return &MapsService{
		provider: provider,
		captains: captains,
	}
}

// GetCoordinates geocodes an address
func (s *MapsService) GetCoordinates(ctx context.Context, address string) (*providers.Coordinate, error) {
	coords, err := s.provider.GetCoordinates(ctx, address)
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Str("address", address).Msg("getCoordinates failed")
		return nil, err
	}
	return coords, nil
}

// GetDistanceTime returns the route between origin and destination
func (s *MapsService) GetDistanceTime(ctx context.Context, origin, destination string) (*providers.DistanceTimeResult, error) {
	result, err := s.provider.GetDistanceTime(ctx, origin, destination)
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).
			Str("origin", origin).Str("destination", destination).
			Msg("getDistanceTime failed")
		return nil, err
	}
	return result, nil
}

// GetAutocompleteSuggestions returns place descriptions for partial input
func (s *MapsService) GetAutocompleteSuggestions(ctx context.Context, input string) ([]string, error) {
	suggestions, err := s.provider.GetAutocompleteSuggestions(ctx, input)
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Str("input", input).Msg("getAutocompleteSuggestions failed")
		return nil, err
	}
	return suggestions, nil
}

// GetCaptainsInRadius returns captains within radiusKm of (latitude, longitude).
// Inputs are passed to the store as given.
func (s *MapsService) GetCaptainsInRadius(ctx context.Context, latitude, longitude, radiusKm float64) ([]*entities.Captain, error) {
	captains, err := s.captains.FindWithinRadius(ctx, latitude, longitude, radiusKm)
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).
			Float64("lat", latitude).Float64("lng", longitude).Float64("radius_km", radiusKm).
			Msg("getCaptainsInRadius failed")
		return nil, err
	}
	return captains, nil
}

// UpdateCaptainLocation records a captain's current position
func (s *MapsService) UpdateCaptainLocation(ctx context.Context, captainID string, location entities.Location) error {
	if err := s.captains.UpdateLocation(ctx, captainID, location); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Str("captain_id", captainID).Msg("updateCaptainLocation failed")
		return err
	}
	return nil
}
