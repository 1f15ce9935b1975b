package boundary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/UnknownOlympus/embellish/internal/models"
	"golang.org/x/time/rate"
)

// ErrUnexpectedStatus is returned when the feature service answers with a non-200 status.
var ErrUnexpectedStatus = errors.New("feature service returned unexpected status")

// maxErrorBody caps how much of a failed response body ends up in the error message.
const maxErrorBody = 512

// ArcGISProvider loads boundary layers from ArcGIS feature-service query endpoints.
type ArcGISProvider struct {
	client  HTTPClient    // HTTP client for making requests
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter shared by every layer request
}

// NewArcGISProvider creates a provider with its own HTTP client.
// A non-positive rateLimit disables request pacing.
func NewArcGISProvider(timeout time.Duration, rateLimit int, log *slog.Logger) *ArcGISProvider {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(rateLimit), 1)
	}

	return &ArcGISProvider{
		client:  &http.Client{Timeout: timeout},
		log:     log,
		limiter: limiter,
	}
}

// NewArcGISProviderWithClient allows injecting custom HTTP client.
func NewArcGISProviderWithClient(client HTTPClient, limiter *rate.Limiter, log *slog.Logger) *ArcGISProvider {
	return &ArcGISProvider{client: client, log: log, limiter: limiter}
}

// Fetch queries every record of the layer at source with all fields, WGS84
// coordinates and GeoJSON output. The whole layer must fit in a single response;
// when the service flags the result as truncated a warning is logged and the
// partial layer is returned as is.
func (ap *ArcGISProvider) Fetch(ctx context.Context, source string) ([]models.Boundary, error) {
	if err := ap.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layer URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("where", "1=1")
	query.Set("outFields", "*")
	query.Set("outSR", "4326")
	query.Set("f", "pgeojson")
	reqURL.RawQuery = query.Encode()

	ap.log.DebugContext(ctx, "Fetching boundary layer", "url", reqURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := ap.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute layer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		ap.log.ErrorContext(ctx, "Feature service error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, string(body))
	}

	collection, err := DecodeFeatureCollection(resp.Body)
	if err != nil {
		return nil, err
	}

	if collection.Truncated {
		ap.log.WarnContext(ctx, "Feature service truncated the layer, boundaries may be missing",
			"url", source, "received", len(collection.Boundaries))
	}

	return collection.Boundaries, nil
}
