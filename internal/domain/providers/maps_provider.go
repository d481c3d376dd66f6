package providers

import (
	"context"
)

// MapsProvider defines the lookups delegated to a third-party mapping API
type MapsProvider interface {
	// GetCoordinates geocodes an address to its first matching location
	GetCoordinates(ctx context.Context, address string) (*Coordinate, error)

	// GetDistanceTime returns travel distance and duration for one origin/destination pair
	GetDistanceTime(ctx context.Context, origin, destination string) (*DistanceTimeResult, error)

	// GetAutocompleteSuggestions returns place descriptions matching partial input
	GetAutocompleteSuggestions(ctx context.Context, input string) ([]string, error)
}

// Coordinate represents geographical coordinates
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// DistanceTimeResult is one distance matrix element, in the provider's field names.
type DistanceTimeResult struct {
	Status            string     `json:"status"`
	Distance          TextValue  `json:"distance"`
	Duration          TextValue  `json:"duration"`
	DurationInTraffic *TextValue `json:"duration_in_traffic,omitempty"`
}

// TextValue pairs a human readable text with its value in metres or seconds.
type TextValue struct {
	Text  string `json:"text"`
	Value int64  `json:"value"`
}
