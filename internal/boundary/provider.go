package boundary

import (
	"context"
	"net/http"

	"github.com/UnknownOlympus/embellish/internal/models"
)

// Provider is an interface that defines a method for loading a boundary layer.
// The Fetch method takes a context and a layer source (URL or path) as input,
// and returns the layer's boundaries in source order and an error if any occurs.
type Provider interface {
	Fetch(ctx context.Context, source string) ([]models.Boundary, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
