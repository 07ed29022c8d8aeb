package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Keys of a feed definition in the feeds file.
const (
	KeyURL    = "URL"
	KeyParams = "PARAMS"
)

// StagedExt is the extension of staged files; the remote name is Name+StagedExt.
const StagedExt = ".csv"

// Feed is one named entry of the feeds file.
// Definition is kept as decoded; it is only interpreted when the feed is fetched,
// so a broken definition fails that feed alone.
type Feed struct {
	Name       string
	Definition map[string]any
}

// FileName returns the staged and remote file name for the feed.
func (f Feed) FileName() string {
	return f.Name + StagedExt
}

// Source extracts the source URL and parser options from the definition.
func (f Feed) Source() (string, map[string]any, error) {
	if f.Definition == nil {
		return "", nil, fmt.Errorf("feed %q: definition must be an object", f.Name)
	}
	rawURL, ok := f.Definition[KeyURL]
	if !ok {
		return "", nil, fmt.Errorf("feed %q: missing %s", f.Name, KeyURL)
	}
	url, ok := rawURL.(string)
	if !ok || strings.TrimSpace(url) == "" {
		return "", nil, fmt.Errorf("feed %q: %s must be a non-empty string", f.Name, KeyURL)
	}
	rawParams, ok := f.Definition[KeyParams]
	if !ok {
		return "", nil, fmt.Errorf("feed %q: missing %s", f.Name, KeyParams)
	}
	if rawParams == nil {
		return url, map[string]any{}, nil
	}
	params, ok := rawParams.(map[string]any)
	if !ok {
		return "", nil, fmt.Errorf("feed %q: %s must be an object", f.Name, KeyParams)
	}
	return url, params, nil
}

// ValidateName checks that a feed name can be used as a file name stem.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("feed name is empty")
	case name == "." || name == "..":
		return fmt.Errorf("feed name %q is reserved", name)
	case strings.ContainsAny(name, `/\`) || filepath.Base(name) != name:
		return fmt.Errorf("feed name %q must not contain path separators", name)
	}
	return nil
}
