package feedship

import (
	"github.com/bft-labs/feedship/internal/app"
	"github.com/bft-labs/feedship/internal/domain"
	"github.com/bft-labs/feedship/internal/ports"
	"github.com/bft-labs/feedship/internal/schedule"
	"github.com/bft-labs/feedship/pkg/log"
)

// Re-exported types so embedders need only this package.
type (
	// Logger is the logging interface from pkg/log.
	Logger = log.Logger

	// HTTPClient is what the feed fetcher needs; *http.Client satisfies it.
	HTTPClient = ports.HTTPClient

	// CredentialProvider looks up FTPHOST, FTPUSER and FTPPASS.
	CredentialProvider = ports.CredentialProvider

	// TransferDialer opens the per-run upload session.
	TransferDialer = ports.TransferDialer

	// TransferSession uploads staged files.
	TransferSession = ports.TransferSession

	// Clock drives scheduling and report timestamps.
	Clock = schedule.Clock

	// EventHandler receives run progress.
	EventHandler = app.EventHandler

	// BaseEventHandler is a no-op EventHandler to embed.
	BaseEventHandler = app.BaseEventHandler

	// Report is the outcome of one run.
	Report = domain.BatchReport

	// FeedResult is the outcome of one feed.
	FeedResult = domain.FeedResult

	// State is what the runner is currently doing.
	State = app.State
)

// Runner states.
const (
	StateIdle      = app.StateIdle
	StateScheduled = app.StateScheduled
	StateRunning   = app.StateRunning
)

// Errors, for use with errors.Is.
var (
	ErrConfig          = domain.ErrConfig
	ErrTransferConnect = domain.ErrTransferConnect
	ErrFetch           = domain.ErrFetch
	ErrStage           = domain.ErrStage
	ErrUpload          = domain.ErrUpload
	ErrDelete          = domain.ErrDelete
	ErrRunInProgress   = domain.ErrRunInProgress
	ErrInvalidConfig   = domain.ErrInvalidConfig
)

// Option configures optional behavior of a Runner.
type Option func(*options)

type options struct {
	logger       log.Logger
	httpClient   ports.HTTPClient
	credentials  ports.CredentialProvider
	dialer       ports.TransferDialer
	eventHandler app.EventHandler
	clock        schedule.Clock
}

// WithLogger sets the logger. If not provided, nothing is logged.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHTTPClient sets the client used to fetch http(s) feeds.
// If not provided, a client with Config.FetchTimeout is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithCredentials sets where FTP credentials come from.
// If not provided, the environment and Config.EnvFile are used.
func WithCredentials(p CredentialProvider) Option {
	return func(o *options) {
		o.credentials = p
	}
}

// WithDialer replaces the FTPS dialer. Credentials are then the dialer's concern.
func WithDialer(d TransferDialer) Option {
	return func(o *options) {
		o.dialer = d
	}
}

// WithEventHandler sets a handler for run events.
func WithEventHandler(h EventHandler) Option {
	return func(o *options) {
		o.eventHandler = h
	}
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}
