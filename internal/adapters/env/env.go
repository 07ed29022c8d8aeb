// Package env resolves named settings such as transfer credentials from the
// process environment and optional dotenv files.
package env

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/bft-labs/feedship/internal/ports"
)

// Provider looks values up in the process environment, falling back to a
// dotenv file. The process environment wins and is never modified.
type Provider struct {
	file map[string]string
}

// NewProvider creates a provider. envFile may be empty; a missing file is an error.
func NewProvider(envFile string) (*Provider, error) {
	p := &Provider{}
	if envFile == "" {
		return p, nil
	}
	vals, err := godotenv.Read(envFile)
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", envFile, err)
	}
	p.file = vals
	return p, nil
}

// Lookup implements ports.CredentialProvider.
func (p *Provider) Lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	v, ok := p.file[key]
	return v, ok
}

// Static is a fixed set of values.
type Static map[string]string

// Lookup implements ports.CredentialProvider.
func (s Static) Lookup(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

var (
	_ ports.CredentialProvider = (*Provider)(nil)
	_ ports.CredentialProvider = Static(nil)
)
