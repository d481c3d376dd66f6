package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zatekoja/ridemaps/backend/internal/domain/providers"
	"github.com/zatekoja/ridemaps/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/ridemaps/backend/pkg/errors"
	"github.com/zatekoja/ridemaps/backend/pkg/retry"
)

const (
	googleMapsBaseURL  = "https://maps.googleapis.com/maps/api"
	defaultHTTPTimeout = 5 * time.Second

	geocodeEndpoint      = "geocode"
	distanceEndpoint     = "distancematrix"
	autocompleteEndpoint = "place/autocomplete"

	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// Options configures a GoogleMapsClient. Zero values fall back to defaults.
type Options struct {
	APIKey  string
	BaseURL string
	// Timeout bounds each attempt; a retried call may take twice as long.
	Timeout time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
	Policy     *retry.Policy
	Metrics    *observability.Metrics
}

// GoogleMapsClient implements MapsProvider against the Google Maps web services.
// It holds no mutable state and is safe for concurrent use.
type GoogleMapsClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	policy     retry.Policy
	metrics    *observability.Metrics
}

// NewGoogleMapsClient creates a client with the default timeout and retry policy.
func NewGoogleMapsClient(apiKey string) *GoogleMapsClient {
	return NewGoogleMapsClientWithOptions(Options{APIKey: apiKey})
}

// NewGoogleMapsClientWithOptions allows overriding base URL, HTTP client and policy (used for tests).
func NewGoogleMapsClientWithOptions(opts Options) *GoogleMapsClient {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = googleMapsBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	policy := retry.TransientPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	return &GoogleMapsClient{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		policy:     policy,
		metrics:    opts.Metrics,
	}
}

// GetCoordinates converts an address to the location of the first geocoding result.
// The address is forwarded as given, empty or not.
func (c *GoogleMapsClient) GetCoordinates(ctx context.Context, address string) (*providers.Coordinate, error) {
	ctx, span := observability.StartSpan(ctx, "maps.GetCoordinates")
	defer span.End()

	var payload googleGeocodeResponse
	err := c.get(ctx, geocodeEndpoint, url.Values{"address": []string{address}}, &payload)
	if err == nil && payload.Status != statusOK {
		err = apperrors.NewLookupErrorWithDetail("Unable to fetch coordinates", payload.Status, payload.ErrorMessage)
	}
	if err == nil && len(payload.Results) == 0 {
		err = apperrors.NewLookupError("Unable to fetch coordinates", statusZeroResults)
	}
	if err != nil {
		c.fail(ctx, span, geocodeEndpoint, err, "Error fetching address coordinates")
		return nil, err
	}

	location := payload.Results[0].Geometry.Location
	c.succeed(ctx, geocodeEndpoint)
	return &providers.Coordinate{
		Latitude:  location.Lat,
		Longitude: location.Lng,
	}, nil
}

// GetDistanceTime returns the distance matrix element for one origin/destination pair.
func (c *GoogleMapsClient) GetDistanceTime(ctx context.Context, origin, destination string) (*providers.DistanceTimeResult, error) {
	ctx, span := observability.StartSpan(ctx, "maps.GetDistanceTime")
	defer span.End()

	if origin == "" || destination == "" {
		err := apperrors.NewValidationError("Origin and destination are required")
		c.fail(ctx, span, distanceEndpoint, err, "Error fetching distance and time")
		return nil, err
	}

	params := url.Values{}
	params.Set("origins", origin)
	params.Set("destinations", destination)

	var payload googleDistanceMatrixResponse
	err := c.get(ctx, distanceEndpoint, params, &payload)
	if err == nil && payload.Status != statusOK {
		err = apperrors.NewLookupErrorWithDetail("Unable to fetch distance and time", payload.Status, payload.ErrorMessage)
	}
	var element *providers.DistanceTimeResult
	if err == nil {
		if len(payload.Rows) == 0 || len(payload.Rows[0].Elements) == 0 {
			err = apperrors.NewNoRouteError("No routes found")
		} else if element = &payload.Rows[0].Elements[0]; element.Status == statusZeroResults {
			err = apperrors.NewNoRouteError("No routes found")
		}
	}
	if err != nil {
		c.fail(ctx, span, distanceEndpoint, err, "Error fetching distance and time")
		return nil, err
	}

	c.succeed(ctx, distanceEndpoint)
	return element, nil
}

// GetAutocompleteSuggestions returns prediction descriptions in provider order, without empty entries.
func (c *GoogleMapsClient) GetAutocompleteSuggestions(ctx context.Context, input string) ([]string, error) {
	ctx, span := observability.StartSpan(ctx, "maps.GetAutocompleteSuggestions")
	defer span.End()

	if input == "" {
		err := apperrors.NewValidationError("Query is required")
		c.fail(ctx, span, autocompleteEndpoint, err, "Error fetching autocomplete suggestions")
		return nil, err
	}

	var payload googleAutocompleteResponse
	err := c.get(ctx, autocompleteEndpoint, url.Values{"input": []string{input}}, &payload)
	if err == nil && payload.Status != statusOK {
		err = apperrors.NewLookupErrorWithDetail("Unable to fetch suggestions", payload.Status, payload.ErrorMessage)
	}
	if err != nil {
		c.fail(ctx, span, autocompleteEndpoint, err, "Error fetching autocomplete suggestions")
		return nil, err
	}

	suggestions := make([]string, 0, len(payload.Predictions))
	for _, prediction := range payload.Predictions {
		if prediction.Description != "" {
			suggestions = append(suggestions, prediction.Description)
		}
	}

	c.succeed(ctx, autocompleteEndpoint)
	return suggestions, nil
}

// get issues GET {baseURL}/{endpoint}/json and decodes the body into out.
// The round trip is repeated under c.policy; the provider status is left to the caller.
func (c *GoogleMapsClient) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	params.Set("key", c.apiKey)
	reqURL := fmt.Sprintf("%s/%s/json?%s", c.baseURL, endpoint, params.Encode())

	err := retry.Apply(ctx, c.policy, func() error {
		return c.roundTrip(ctx, endpoint, reqURL, out)
	}, func(attempt int, err error) {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("endpoint", endpoint).
			Int("attempt", attempt).
			Msg("Network error: retrying request")
		observability.RecordMapsRetry(ctx, c.metrics, endpoint)
	})
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.NewTransportError(fmt.Sprintf("%s request failed", endpoint), err)
}

func (c *GoogleMapsClient) roundTrip(ctx context.Context, endpoint, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to build %s request", endpoint), err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.NewTransportError(fmt.Sprintf("%s request returned status %d", endpoint, resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// a reset mid-body is as transient as one before the headers
		if retry.IsTransient(err) {
			return err
		}
		return apperrors.NewTransportError(fmt.Sprintf("failed to decode %s response", endpoint), err)
	}
	return nil
}

func (c *GoogleMapsClient) fail(ctx context.Context, span trace.Span, endpoint string, err error, msg string) {
	outcome := "error"
	if appErr, ok := apperrors.As(err); ok {
		outcome = strings.ToLower(string(appErr.Type))
		if appErr.Status != "" {
			span.SetAttributes(attribute.String("maps.status", appErr.Status))
		}
	}
	span.RecordError(err)
	observability.LoggerFromContext(ctx).Error().
		Err(err).
		Str("endpoint", endpoint).
		Msg(msg)
	observability.RecordMapsCall(ctx, c.metrics, endpoint, outcome)
}

func (c *GoogleMapsClient) succeed(ctx context.Context, endpoint string) {
	observability.RecordMapsCall(ctx, c.metrics, endpoint, "ok")
}
