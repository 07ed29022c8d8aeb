package feeds

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bft-labs/feedship/internal/domain"
	"github.com/bft-labs/feedship/internal/ports"
	"github.com/bft-labs/feedship/pkg/log"
)

// DefaultFile is the feeds file looked up in the working directory.
const DefaultFile = "config.json"

// Loader implements ports.FeedLoader for a file on disk.
type Loader struct {
	path   string
	logger log.Logger
}

// NewLoader creates a loader for path.
func NewLoader(path string, logger log.Logger) *Loader {
	if path == "" {
		path = DefaultFile
	}
	return &Loader{path: path, logger: logger}
}

// Path returns the feeds file path.
func (l *Loader) Path() string {
	return l.path
}

// Load reads and decodes the feeds file.
// Every failure wraps domain.ErrConfig.
func (l *Loader) Load(ctx context.Context) ([]domain.Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfig, err)
	}

	doc, err := decode(l.path, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrConfig, l.path, err)
	}

	feeds, err := Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrConfig, l.path, err)
	}

	l.logger.Debug("feeds loaded",
		log.Path(l.path),
		log.Int("feeds", len(feeds)))
	return feeds, nil
}

// object is a decoded mapping that remembers the key order of the file.
type object struct {
	keys   []string
	values map[string]any
}

func (o *object) set(key string, v any) {
	if _, dup := o.values[key]; !dup {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

func newObject() *object {
	return &object{values: make(map[string]any)}
}

func decode(path string, data []byte) (any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAML(data)
	default:
		return decodeJSON(data)
	}
}

// decodeYAML keeps the entries of a top-level sequence in file order.
func decodeYAML(data []byte) (any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, nil
	}
	top := root.Content[0]
	if top.Kind != yaml.SequenceNode {
		var doc any
		if err := top.Decode(&doc); err != nil {
			return nil, err
		}
		return doc, nil
	}

	entries := make([]any, 0, len(top.Content))
	for _, item := range top.Content {
		if item.Kind != yaml.MappingNode {
			var v any
			if err := item.Decode(&v); err != nil {
				return nil, err
			}
			entries = append(entries, v)
			continue
		}
		obj := newObject()
		for i := 0; i+1 < len(item.Content); i += 2 {
			var v any
			if err := item.Content[i+1].Decode(&v); err != nil {
				return nil, err
			}
			obj.set(item.Content[i].Value, v)
		}
		entries = append(entries, obj)
	}
	return entries, nil
}

// decodeJSON keeps the entries of a top-level array in file order.
// Numbers stay json.Number so PARAMS integers are exact.
func decodeJSON(data []byte) (any, error) {
	var raw json.RawMessage
	if err := strictJSON(data, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		var doc any
		if err := strictJSON(raw, &doc); err != nil {
			return nil, err
		}
		return doc, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	entries := make([]any, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '{' {
			obj, err := decodeJSONObject(item)
			if err != nil {
				return nil, err
			}
			entries = append(entries, obj)
			continue
		}
		var v any
		if err := strictJSON(item, &v); err != nil {
			return nil, err
		}
		entries = append(entries, v)
	}
	return entries, nil
}

func decodeJSONObject(data []byte) (*object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	obj := newObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key %v is not a string", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		obj.set(key, v)
	}
	return obj, nil
}

func strictJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after top-level value")
	}
	return nil
}

// Parse turns a decoded document into feeds, preserving list order.
// Keys of an entry decoded from a file keep file order; a plain map has no
// order, so its keys are sorted.
func Parse(doc any) ([]domain.Feed, error) {
	entries, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("top level must be a list, got %s", kind(doc))
	}

	var out []domain.Feed
	for i, entry := range entries {
		var obj *object
		switch e := entry.(type) {
		case *object:
			obj = e
		case map[string]any:
			obj = newObject()
			names := make([]string, 0, len(e))
			for name := range e {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				obj.set(name, e[name])
			}
		default:
			return nil, fmt.Errorf("entry %d must be an object, got %s", i, kind(entry))
		}

		for _, name := range obj.keys {
			def, _ := obj.values[name].(map[string]any)
			out = append(out, domain.Feed{Name: name, Definition: def})
		}
	}
	return out, nil
}

func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any, *object:
		return "object"
	case []any:
		return "list"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		return "number"
	}
}

var _ ports.FeedLoader = (*Loader)(nil)
