package ports

import "context"

// TransferDialer opens authenticated sessions to the remote file server.
type TransferDialer interface {
	// Dial connects and authenticates. Failures wrap domain.ErrTransferConnect.
	Dial(ctx context.Context) (TransferSession, error)
}

// TransferSession is one connection reused for every upload of a run.
// It is used sequentially and never concurrently.
type TransferSession interface {
	// Upload stores the local file under its base name on the server.
	Upload(ctx context.Context, localPath string) error

	// Close ends the session.
	Close() error
}

// CredentialProvider looks up named configuration values such as FTPHOST.
type CredentialProvider interface {
	// Lookup returns the value and whether it was set.
	Lookup(key string) (string, bool)
}
