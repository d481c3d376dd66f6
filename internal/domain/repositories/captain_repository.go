package repositories

import (
	"context"

	"github.com/zatekoja/ridemaps/backend/internal/domain/entities"
)

// EarthRadiusKm is the mean Earth radius used to turn a radius in km into an angle.
const EarthRadiusKm = 6371.0

// CaptainRepository defines the interface for captain data operations
type CaptainRepository interface {
	// Save inserts or replaces a captain record
	Save(ctx context.Context, captain *entities.Captain) error

	// GetByID retrieves a captain by ID
	GetByID(ctx context.Context, id string) (*entities.Captain, error)

	// UpdateLocation sets the captain's current location
	UpdateLocation(ctx context.Context, id string, location entities.Location) error

	// FindWithinRadius returns captains whose location lies inside the spherical
	// cap of radiusKm around (latitude, longitude). Order is store-defined.
	FindWithinRadius(ctx context.Context, latitude, longitude, radiusKm float64) ([]*entities.Captain, error)
}
