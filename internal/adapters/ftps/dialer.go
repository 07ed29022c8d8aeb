package ftps

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/bft-labs/feedship/internal/domain"
	"github.com/bft-labs/feedship/internal/ports"
	"github.com/bft-labs/feedship/pkg/log"
)

// DefaultTimeout bounds dialing and each control-channel exchange.
const DefaultTimeout = 30 * time.Second

// Config holds dialer settings.
type Config struct {
	// Timeout for the connection and control replies.
	Timeout time.Duration

	// InsecureSkipVerify disables server certificate verification.
	InsecureSkipVerify bool
}

// conn is the part of *ftp.ServerConn a session uses.
type conn interface {
	Login(user, password string) error
	Stor(path string, r io.Reader) error
	Quit() error
}

type connectFunc func(addr string, opts ...ftp.DialOption) (conn, error)

func dialFTP(addr string, opts ...ftp.DialOption) (conn, error) {
	sc, err := ftp.Dial(addr, opts...)
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// Dialer implements ports.TransferDialer.
type Dialer struct {
	creds   ports.CredentialProvider
	cfg     Config
	logger  log.Logger
	connect connectFunc
}

// NewDialer creates a dialer that resolves credentials from creds on each Dial.
func NewDialer(creds ports.CredentialProvider, cfg Config, logger log.Logger) *Dialer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Dialer{
		creds:   creds,
		cfg:     cfg,
		logger:  logger,
		connect: dialFTP,
	}
}

// Dial connects with AUTH TLS and logs in. The library requests PBSZ 0 and
// PROT P right after login, so every data transfer is encrypted.
func (d *Dialer) Dial(ctx context.Context) (ports.TransferSession, error) {
	c, err := ResolveCredentials(d.creds)
	if err != nil {
		return nil, err
	}

	tlsConfig := &tls.Config{
		ServerName:         c.ServerName(),
		InsecureSkipVerify: d.cfg.InsecureSkipVerify, //nolint:gosec // opt-in for self-signed servers
		MinVersion:         tls.VersionTLS12,
	}

	addr := c.Addr()
	sc, err := d.connect(addr,
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(d.cfg.Timeout),
		ftp.DialWithExplicitTLS(tlsConfig),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", domain.ErrTransferConnect, addr, err)
	}

	if err := sc.Login(c.User, c.Password); err != nil {
		_ = sc.Quit()
		return nil, fmt.Errorf("%w: login as %s: %v", domain.ErrTransferConnect, c.User, err)
	}

	d.logger.Info("connected to FTP server",
		log.String("addr", addr),
		log.String("user", c.User))
	return &Session{conn: sc, addr: addr, logger: d.logger}, nil
}

// Session is one authenticated FTPS connection.
type Session struct {
	conn   conn
	addr   string
	logger log.Logger
	closed bool
}

// Upload stores the file at localPath under its base name.
func (s *Session) Upload(ctx context.Context, localPath string) error {
	if s.closed {
		return fmt.Errorf("session to %s is closed", s.addr)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	name := filepath.Base(localPath)
	if err := s.conn.Stor(name, f); err != nil {
		return fmt.Errorf("STOR %s: %w", name, err)
	}
	return nil
}

// Close sends QUIT. Calling it twice is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.conn.Quit(); err != nil {
		return fmt.Errorf("quit %s: %w", s.addr, err)
	}
	s.logger.Debug("FTP session closed", log.String("addr", s.addr))
	return nil
}

var (
	_ ports.TransferDialer  = (*Dialer)(nil)
	_ ports.TransferSession = (*Session)(nil)
)
