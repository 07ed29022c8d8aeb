package ftps

import (
	"fmt"
	"net"
	"strings"

	"github.com/bft-labs/feedship/internal/domain"
	"github.com/bft-labs/feedship/internal/ports"
)

// Environment keys holding the transfer credentials.
const (
	EnvHost     = "FTPHOST"
	EnvUser     = "FTPUSER"
	EnvPassword = "FTPPASS"
)

// DefaultPort is used when FTPHOST carries no port.
const DefaultPort = "21"

// Credentials identify the remote account.
type Credentials struct {
	Host     string
	User     string
	Password string
}

// Addr returns host:port, adding DefaultPort when none is given.
func (c Credentials) Addr() string {
	return normalizeAddr(c.Host)
}

// ServerName returns the host without port, for TLS verification.
func (c Credentials) ServerName() string {
	host, _, err := net.SplitHostPort(c.Addr())
	if err != nil {
		return c.Host
	}
	return host
}

// ResolveCredentials reads FTPHOST, FTPUSER and FTPPASS from p.
// A missing or empty value wraps domain.ErrTransferConnect.
func ResolveCredentials(p ports.CredentialProvider) (Credentials, error) {
	var missing []string
	get := func(key string) string {
		v, ok := p.Lookup(key)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			missing = append(missing, key)
		}
		return v
	}

	c := Credentials{
		Host: get(EnvHost),
		User: get(EnvUser),
	}
	// Passwords are taken verbatim.
	if pw, ok := p.Lookup(EnvPassword); ok && pw != "" {
		c.Password = pw
	} else {
		missing = append(missing, EnvPassword)
	}

	if len(missing) > 0 {
		return Credentials{}, fmt.Errorf("%w: missing %s", domain.ErrTransferConnect, strings.Join(missing, ", "))
	}
	return c, nil
}

func normalizeAddr(host string) string {
	host = strings.TrimSpace(host)
	host = strings.TrimPrefix(host, "ftps://")
	host = strings.TrimPrefix(host, "ftp://")
	host = strings.TrimSuffix(host, "/")

	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	// Bare IPv6 literals may come bracketed.
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	return net.JoinHostPort(host, DefaultPort)
}
