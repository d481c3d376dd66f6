package maps

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/zatekoja/ridemaps/backend/pkg/errors"
	"github.com/zatekoja/ridemaps/backend/pkg/retry"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestServer(t *testing.T, calls *int32, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGetCoordinates_ReturnsFirstResultLocation(t *testing.T) {
	var calls int32
	server := newTestServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/json", r.URL.Path)
		assert.Equal(t, "1600 Amphitheatre Parkway", r.URL.Query().Get("address"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{
  "status": "OK",
  "results": [
    {"formatted_address": "1600 Amphitheatre Pkwy", "geometry": {"location": {"lat": 37.4, "lng": -122.08}}},
    {"formatted_address": "elsewhere", "geometry": {"location": {"lat": 1, "lng": 2}}}
  ]
}`))
	})

	client := NewGoogleMapsClientWithOptions(Options{APIKey: "test-key", BaseURL: server.URL})
	coords, err := client.GetCoordinates(context.Background(), "1600 Amphitheatre Parkway")

	require.NoError(t, err)
	assert.Equal(t, 37.4, coords.Latitude)
	assert.Equal(t, -122.08, coords.Longitude)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetCoordinates_ForwardsEmptyAddress(t *testing.T) {
	var calls int32
	server := newTestServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, r.URL.Query().Has("address"))
		assert.Equal(t, "", r.URL.Query().Get("address"))
		_, _ = w.Write([]byte(`{"status": "INVALID_REQUEST", "results": []}`))
	})

	client := NewGoogleMapsClientWithOptions(Options{APIKey: "k", BaseURL: server.URL})
	_, err := client.GetCoordinates(context.Background(), "")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeLookup))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetCoordinates_NonOKStatusIsLookupError(t *testing.T) {
	var calls int32
	server := newTestServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."}`))
	})

	client := NewGoogleMapsClientWithOptions(Options{APIKey: "bad", BaseURL: server.URL})
	_, err := client.GetCoordinates(context.Background(), "Lagos")

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeLookup, appErr.Type)
	assert.Equal(t, "REQUEST_DENIED", appErr.Status)
	assert.Contains(t, err.Error(), "The provided API key is invalid.")
}

func TestGetCoordinates_OKWithoutResultsIsLookupError(t *testing.T) {
	var calls int32
	server := newTestServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "OK", "results": []}`))
	})

	client := NewGoogleMapsClientWithOptions(Options{BaseURL: server.URL})
	_, err := client.GetCoordinates(context.Background(), "nowhere")

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "ZERO_RESULTS", appErr.Status)
}

func TestGetDistanceTime_RequiresOriginAndDestination(t *testing.T) {
	var calls int32
	server := newTestServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "OK"}`))
	})
	client := NewGoogleMapsClientWithOptions(Options{APIKey: "k", BaseURL: server.URL})

	cases := []struct{ origin, destination string }{
		{"", ""},
		{"Lagos", ""},
		{"", "Abuja"},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%q-%q", tc.origin, tc.destination), func(t *testing.T) {
			_, err := client.GetDistanceTime(context.Background(), tc.origin, tc.destination)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		})
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestGetDistanceTime_ReturnsElement(t *testing.T) {
	var calls int32
	server := newTestServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/distancematrix/json", r.URL.Path)
		assert.Equal(t, "Lagos", r.URL.Query().Get("origins"))
		assert.Equal(t, "Ibadan", r.URL.Query().Get("destinations"))
		_, _ = w.Write([]byte(`{
  "status": "OK",
  "origin_addresses": ["Lagos, Nigeria"],
  "destination_addresses": ["Ibadan, Nigeria"],
  "rows": [{"elements": [{
    "status": "OK",
    "distance": {"text": "128 km", "value": 128034},
    "duration": {"text": "2 hours 5 mins", "value": 7512}
  }]}]
}`))
	})

	client := NewGoogleMapsClientWithOptions(Options{APIKey: "k", BaseURL: server.URL})
	result, err := client.GetDistanceTime(context.Background(), "Lagos", "Ibadan")

	require.NoError(t, err)
	assert.Equal(t, "OK", result.Status)
	assert.Equal(t, int64(128034), result.Distance.Value)
	assert.Equal(t, "128 km", result.Distance.Text)
	assert.Equal(t, int64(7512), result.Duration.Value)
	assert.Nil(t, result.DurationInTraffic)
}

func TestGetDistanceTime_ZeroResultsIsNoRoute(t *testing.T) {
	var calls int32
	server := newTestServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "OK", "rows": [{"elements": [{"status": "ZERO_RESULTS"}]}]}`))
	})

	client := NewGoogleMapsClientWithOptions(Options{APIKey: "k", BaseURL: server.URL})
	_, err := client.GetDistanceTime(context.Background(), "Lagos", "London")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNoRoute))
}

func TestGetDistanceTime_NonOKStatusIsLookupError(t *testing.T) {
	var calls int32
	server := newTestServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "OVER_QUERY_LIMIT", "rows": []}`))
	})

	client := NewGoogleMapsClientWithOptions(Options{APIKey: "k", BaseURL: server.URL})
	_, err := client.GetDistanceTime(context.Background(), "Lagos", "Abuja")

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeLookup, appErr.Type)
	assert.Equal(t, "OVER_QUERY_LIMIT", appErr.Status)
	assert.Equal(t, "Unable to fetch distance and time: OVER_QUERY_LIMIT", appErr.Message)
}

func TestGetAutocompleteSuggestions_DropsEmptyAndKeepsOrder(t *testing.T) {
	var calls int32
	server := newTestServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place/autocomplete/json", r.URL.Path)
		assert.Equal(t, "Lek", r.URL.Query().Get("input"))
		_, _ = w.Write([]byte(`{
  "status": "OK",
  "predictions": [
    {"description": "Lekki, Lagos"},
    {"description": ""},
    {"place_id": "no-description"},
    {"description": "Lekki Phase 1"},
    {"description": "Lekki Conservation Centre"}
  ]
}`))
	})

	client := NewGoogleMapsClientWithOptions(Options{APIKey: "k", BaseURL: server.URL})
	suggestions, err := client.GetAutocompleteSuggestions(context.Background(), "Lek")

	require.NoError(t, err)
	assert.Equal(t, []string{"Lekki, Lagos", "Lekki Phase 1", "Lekki Conservation Centre"}, suggestions)
}

func TestGetAutocompleteSuggestions_RequiresInput(t *testing.T) {
	var calls int32
	server := newTestServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {})

	client := NewGoogleMapsClientWithOptions(Options{APIKey: "k", BaseURL: server.URL})
	_, err := client.GetAutocompleteSuggestions(context.Background(), "")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestGetAutocompleteSuggestions_NonOKStatusIsLookupError(t *testing.T) {
	var calls int32
	server := newTestServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "INVALID_REQUEST", "predictions": []}`))
	})

	client := NewGoogleMapsClientWithOptions(Options{APIKey: "k", BaseURL: server.URL})
	_, err := client.GetAutocompleteSuggestions(context.Background(), "x")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeLookup))
}

func TestClient_RetriesConnectionResetOnce(t *testing.T) {
	var calls int32
	httpClient := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, syscall.ECONNRESET
		}
		return jsonResponse(`{"status": "OK", "results": [{"geometry": {"location": {"lat": 6.5244, "lng": 3.3792}}}]}`), nil
	})}

	client := NewGoogleMapsClientWithOptions(Options{APIKey: "k", HTTPClient: httpClient})
	coords, err := client.GetCoordinates(context.Background(), "Lagos")

	require.NoError(t, err)
	assert.Equal(t, 6.5244, coords.Latitude)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_SecondConnectionResetIsTransportError(t *testing.T) {
	var calls int32
	httpClient := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return nil, syscall.ECONNRESET
	})}

	client := NewGoogleMapsClientWithOptions(Options{APIKey: "k", HTTPClient: httpClient})
	_, err := client.GetDistanceTime(context.Background(), "Lagos", "Abuja")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTransport))
	assert.ErrorIs(t, err, syscall.ECONNRESET)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_DoesNotRetryOtherTransportFailures(t *testing.T) {
	var calls int32
	httpClient := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return nil, syscall.ECONNREFUSED
	})}

	client := NewGoogleMapsClientWithOptions(Options{APIKey: "k", HTTPClient: httpClient})
	_, err := client.GetAutocompleteSuggestions(context.Background(), "Lek")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTransport))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_RetriesTimeoutOnce(t *testing.T) {
	var calls int32
	server := newTestServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt32(&calls) == 1 {
			select {
			case <-time.After(500 * time.Millisecond):
			case <-r.Context().Done():
				return
			}
		}
		_, _ = w.Write([]byte(`{"status": "OK", "predictions": [{"description": "Ikeja"}]}`))
	})

	client := NewGoogleMapsClientWithOptions(Options{APIKey: "k", BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	suggestions, err := client.GetAutocompleteSuggestions(context.Background(), "Ike")

	require.NoError(t, err)
	assert.Equal(t, []string{"Ikeja"}, suggestions)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_PersistentTimeoutIsTransportError(t *testing.T) {
	var calls int32
	server := newTestServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
	})

	client := NewGoogleMapsClientWithOptions(Options{APIKey: "k", BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	_, err := client.GetCoordinates(context.Background(), "Lagos")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTransport))
	assert.True(t, retry.IsTimeout(err))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_Non2xxIsTransportErrorWithoutRetry(t *testing.T) {
	var calls int32
	server := newTestServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client := NewGoogleMapsClientWithOptions(Options{APIKey: "k", BaseURL: server.URL})
	_, err := client.GetCoordinates(context.Background(), "Lagos")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTransport))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_CustomPolicy(t *testing.T) {
	var calls int32
	httpClient := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return nil, syscall.ECONNRESET
	})}
	noRetry := retry.Policy{MaxAttempts: 1, Retryable: retry.IsTransient}

	client := NewGoogleMapsClientWithOptions(Options{HTTPClient: httpClient, Policy: &noRetry})
	_, err := client.GetCoordinates(context.Background(), "Lagos")

	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
