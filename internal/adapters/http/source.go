package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/bft-labs/feedship/internal/domain"
	"github.com/bft-labs/feedship/internal/ports"
	"github.com/bft-labs/feedship/internal/tabular"
	"github.com/bft-labs/feedship/pkg/log"
)

// maxErrorBody bounds how much of a failed response is quoted in errors.
const maxErrorBody = 512

// FeedSource implements ports.FeedSource for http(s) URLs, file:// URLs and local paths.
type FeedSource struct {
	client ports.HTTPClient
	logger log.Logger
}

// NewFeedSource creates a feed source using client for remote URLs.
func NewFeedSource(client ports.HTTPClient, logger log.Logger) *FeedSource {
	return &FeedSource{
		client: client,
		logger: logger,
	}
}

// Fetch downloads the feed and parses it with the feed's PARAMS.
func (s *FeedSource) Fetch(ctx context.Context, feed domain.Feed) (*domain.Dataset, error) {
	src, params, err := feed.Source()
	if err != nil {
		return nil, err
	}
	opts, err := tabular.ParseOptions(params)
	if err != nil {
		return nil, err
	}
	if opts.OnBadLines == tabular.BadLinesWarn {
		opts.OnBadLine = func(record, fields, want int) {
			s.logger.Warn("skipping bad line",
				log.Feed(feed.Name),
				log.Int("row", record),
				log.Int("fields", fields),
				log.Int("expected", want))
		}
	}

	body, err := s.open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	raw, err := tabular.Decompress(body, opts.Compression, sourcePath(src))
	if err != nil {
		return nil, err
	}
	defer raw.Close()

	text, err := tabular.Decode(raw, opts.Encoding)
	if err != nil {
		return nil, err
	}

	ds, err := tabular.Read(text, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}
	s.logger.Debug("feed fetched",
		log.Feed(feed.Name),
		log.Int("columns", len(ds.Columns)),
		log.Int("rows", ds.Len()))
	return ds, nil
}

func (s *FeedSource) open(ctx context.Context, src string) (io.ReadCloser, error) {
	u, err := url.Parse(src)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain path (a one-letter scheme is a Windows drive).
		return openFile(src)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return s.get(ctx, src)
	case "file":
		return openFile(u.Path)
	default:
		return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
}

func (s *FeedSource) get(ctx context.Context, src string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain, */*")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return resp.Body, nil
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	return f, nil
}

// sourcePath strips query and fragment so compression can be inferred from the extension.
func sourcePath(src string) string {
	if u, err := url.Parse(src); err == nil && u.Path != "" {
		return u.Path
	}
	return src
}

var _ ports.FeedSource = (*FeedSource)(nil)
