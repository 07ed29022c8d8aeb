package ports

import (
	"context"
	"net/http"

	"github.com/bft-labs/feedship/internal/domain"
)

// FeedLoader reads the ordered list of feeds for one run.
type FeedLoader interface {
	// Load returns the feeds in file order.
	// Any failure wraps domain.ErrConfig and aborts the run.
	Load(ctx context.Context) ([]domain.Feed, error)
}

// FeedSource downloads and parses one feed.
type FeedSource interface {
	// Fetch reads the feed's source with its parser options.
	// It does not retry.
	Fetch(ctx context.Context, feed domain.Feed) (*domain.Dataset, error)
}

// HTTPClient is what FeedSource adapters need from an HTTP client.
// *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
