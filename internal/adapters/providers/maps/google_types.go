package maps

import "github.com/zatekoja/ridemaps/backend/internal/domain/providers"

type googleGeocodeResponse struct {
	Status       string                `json:"status"`
	ErrorMessage string                `json:"error_message,omitempty"`
	Results      []googleGeocodeResult `json:"results"`
}

type googleGeocodeResult struct {
	FormattedAddress string         `json:"formatted_address"`
	Geometry         googleGeometry `json:"geometry"`
}

type googleGeometry struct {
	Location googleLocation `json:"location"`
}

type googleLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type googleDistanceMatrixResponse struct {
	Status               string              `json:"status"`
	ErrorMessage         string              `json:"error_message,omitempty"`
	OriginAddresses      []string            `json:"origin_addresses"`
	DestinationAddresses []string            `json:"destination_addresses"`
	Rows                 []googleDistanceRow `json:"rows"`
}

type googleDistanceRow struct {
	Elements []providers.DistanceTimeResult `json:"elements"`
}

type googleAutocompleteResponse struct {
	Status       string                  `json:"status"`
	ErrorMessage string                  `json:"error_message,omitempty"`
	Predictions  []googlePlacePrediction `json:"predictions"`
}

type googlePlacePrediction struct {
	Description string `json:"description"`
	PlaceID     string `json:"place_id"`
}
