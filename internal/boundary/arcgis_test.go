package boundary_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/UnknownOlympus/embellish/internal/boundary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const councilLayerURL = "https://services5.arcgis.com/GfwWNkhOj9bNBqoJ/arcgis/rest/services/" +
	"NYC_City_Council_Districts_Water_Included/FeatureServer/0/query"

const councilResponse = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": 1,
     "geometry": {"type": "Polygon", "coordinates": [[[-74.0,40.74],[-73.97,40.74],[-73.97,40.76],[-74.0,40.76],[-74.0,40.74]]]},
     "properties": {"OBJECTID": 1, "CounDist": 4, "Shape__Area": 12.5}}
  ]
}`

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func respond(status int, body string) func(*http.Request) (*http.Response, error) {
	return func(_ *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(bytes.NewBufferString(body)),
		}, nil
	}
}

func TestArcGISProvider_Fetch(t *testing.T) {
	ctx := t.Context()
	logger := slog.Default()
	defaultRL := rate.NewLimiter(rate.Inf, 0)

	t.Run("successful fetch", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				// Verify request parameters
				assert.Equal(t, http.MethodGet, req.Method)
				assert.Contains(t, req.URL.String(), "NYC_City_Council_Districts_Water_Included")
				assert.Equal(t, "1=1", req.URL.Query().Get("where"))
				assert.Equal(t, "*", req.URL.Query().Get("outFields"))
				assert.Equal(t, "4326", req.URL.Query().Get("outSR"))
				assert.Equal(t, "pgeojson", req.URL.Query().Get("f"))

				return respond(http.StatusOK, councilResponse)(req)
			},
		}

		provider := boundary.NewArcGISProviderWithClient(mockClient, defaultRL, logger)
		boundaries, err := provider.Fetch(ctx, councilLayerURL)

		require.NoError(t, err)
		require.Len(t, boundaries, 1)
		assert.Equal(t, "4", boundaries[0].Attribute("CounDist"))
		assert.Equal(t, "12.5", boundaries[0].Attribute("Shape__Area"))
		assert.NotNil(t, boundaries[0].Geometry)
	})

	t.Run("query parameters override the ones in the source", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "pgeojson", req.URL.Query().Get("f"))
				assert.Equal(t, "1=1", req.URL.Query().Get("where"))
				assert.Equal(t, "x", req.URL.Query().Get("token"))

				return respond(http.StatusOK, councilResponse)(req)
			},
		}

		provider := boundary.NewArcGISProviderWithClient(mockClient, defaultRL, logger)
		_, err := provider.Fetch(ctx, councilLayerURL+"?where=OBJECTID<5&f=json&token=x")

		require.NoError(t, err)
	})

	t.Run("HTTP error status", func(t *testing.T) {
		mockClient := &mockHTTPClient{doFunc: respond(http.StatusServiceUnavailable, "try later")}

		provider := boundary.NewArcGISProviderWithClient(mockClient, defaultRL, logger)
		boundaries, err := provider.Fetch(ctx, councilLayerURL)

		require.Nil(t, boundaries)
		require.ErrorIs(t, err, boundary.ErrUnexpectedStatus)
		assert.Contains(t, err.Error(), "503: try later")
	})

	t.Run("service error envelope", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: respond(http.StatusOK, `{"error":{"code":400,"message":"Invalid query parameters.","details":[]}}`),
		}

		provider := boundary.NewArcGISProviderWithClient(mockClient, defaultRL, logger)
		boundaries, err := provider.Fetch(ctx, councilLayerURL)

		require.Nil(t, boundaries)
		require.ErrorIs(t, err, boundary.ErrServiceError)
		assert.Contains(t, err.Error(), "Invalid query parameters.")
	})

	t.Run("malformed GeoJSON", func(t *testing.T) {
		mockClient := &mockHTTPClient{doFunc: respond(http.StatusOK, `{"type":"FeatureCollection","features":[`)}

		provider := boundary.NewArcGISProviderWithClient(mockClient, defaultRL, logger)
		boundaries, err := provider.Fetch(ctx, councilLayerURL)

		require.Nil(t, boundaries)
		assert.ErrorContains(t, err, "failed to decode GeoJSON")
	})

	t.Run("truncated layer is returned", func(t *testing.T) {
		body := `{"type":"FeatureCollection","properties":{"exceededTransferLimit":true},"features":[]}`
		mockClient := &mockHTTPClient{doFunc: respond(http.StatusOK, body)}

		provider := boundary.NewArcGISProviderWithClient(mockClient, defaultRL, logger)
		boundaries, err := provider.Fetch(ctx, councilLayerURL)

		require.NoError(t, err)
		assert.Empty(t, boundaries)
	})

	t.Run("HTTP client returns error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		}

		provider := boundary.NewArcGISProviderWithClient(mockClient, defaultRL, logger)
		boundaries, err := provider.Fetch(ctx, councilLayerURL)

		require.Nil(t, boundaries)
		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "failed to execute layer request")
	})

	t.Run("invalid source URL", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				t.Fatal("HTTP client should not be called for an invalid URL")
				return nil, nil
			},
		}

		provider := boundary.NewArcGISProviderWithClient(mockClient, defaultRL, logger)
		_, err := provider.Fetch(ctx, "://bad")

		assert.ErrorContains(t, err, "failed to parse layer URL")
	})

	t.Run("rate limit exceeded", func(t *testing.T) {
		rateCtx, cancel := context.WithCancel(context.Background())
		cancel() // cancel immediately
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				t.Fatal("HTTP client should not be called when rate limit blocks")
				return &http.Response{}, nil
			},
		}

		limiter := rate.NewLimiter(rate.Every(time.Second), 1)

		provider := boundary.NewArcGISProviderWithClient(mockClient, limiter, logger)
		boundaries, err := provider.Fetch(rateCtx, councilLayerURL)

		require.Error(t, err)
		assert.Nil(t, boundaries)
		assert.ErrorContains(t, err, "rate limit exceeded")
	})
}

func TestNewArcGISProvider(t *testing.T) {
	provider := boundary.NewArcGISProvider(time.Minute, 2, slog.Default())

	require.NotNil(t, provider)
}
