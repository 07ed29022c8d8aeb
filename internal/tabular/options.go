package tabular

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"unicode/utf8"
)

// NoHeader is the Header value for files without a header row.
const NoHeader = -1

// Compression selects how the source stream is decompressed.
type Compression string

const (
	CompressionInfer Compression = "infer"
	CompressionGzip  Compression = "gzip"
	CompressionNone  Compression = "none"
)

// BadLines selects what happens to rows with more fields than columns.
type BadLines string

const (
	BadLinesError BadLines = "error"
	BadLinesSkip  BadLines = "skip"
	BadLinesWarn  BadLines = "warn"
)

// ColumnRef addresses a column by name or by position.
type ColumnRef struct {
	Name   string
	Index  int
	ByName bool
}

func (c ColumnRef) String() string {
	if c.ByName {
		return strconv.Quote(c.Name)
	}
	return strconv.Itoa(c.Index)
}

// Options controls how a CSV source is parsed.
type Options struct {
	Sep     rune
	Comment rune

	// Header is the record index holding column names, or NoHeader.
	Header int
	Names  []string

	UseCols []ColumnRef

	// IndexCol names a column that is dropped from the output.
	// NoIndexCol disables pandas' implicit index on rows one field wider than the header.
	IndexCol   *ColumnRef
	NoIndexCol bool

	SkipRows   int
	SkipRowSet map[int]bool
	NRows      int // -1 means all rows
	SkipFooter int

	Encoding    string
	Compression Compression
	OnBadLines  BadLines

	NAValues map[string]bool

	// OnBadLine is called for every skipped row when OnBadLines is BadLinesWarn.
	OnBadLine func(record, fields, want int)
}

// ignoredOptions shape column types and have no effect on text cells.
var ignoredOptions = map[string]bool{
	"dtype":           true,
	"parse_dates":     true,
	"date_format":     true,
	"low_memory":      true,
	"engine":          true,
	"thousands":       true,
	"decimal":         true,
	"true_values":     true,
	"false_values":    true,
	"memory_map":      true,
	"float_precision": true,
}

// defaultNAValues is the pandas default missing-value set.
var defaultNAValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// DefaultOptions returns the options used when a feed has empty PARAMS.
func DefaultOptions() Options {
	return Options{
		Sep:         ',',
		Header:      0,
		NRows:       -1,
		Compression: CompressionInfer,
		OnBadLines:  BadLinesError,
		NAValues:    naSet(defaultNAValues),
	}
}

// ParseOptions converts a feed's PARAMS mapping into Options.
// Unknown option names are rejected.
func ParseOptions(params map[string]any) (Options, error) {
	opts := DefaultOptions()

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headerSet := false
	keepDefaultNA := true
	naFilter := true
	var extraNA []string

	for _, key := range keys {
		v := params[key]
		var err error
		switch key {
		case "sep", "delimiter":
			opts.Sep, err = asSeparator(v)
		case "header":
			headerSet = true
			opts.Header, err = asHeader(v)
		case "names":
			opts.Names, err = asStrings(v)
		case "usecols":
			opts.UseCols, err = asColumnRefs(v)
		case "index_col":
			err = setIndexCol(&opts, v)
		case "skiprows":
			err = setSkipRows(&opts, v)
		case "nrows":
			if v != nil {
				opts.NRows, err = asNonNegative(v)
			}
		case "skipfooter", "skip_footer":
			opts.SkipFooter, err = asNonNegative(v)
		case "comment":
			if v != nil {
				opts.Comment, err = asRune(v)
			}
		case "quotechar":
			var r rune
			if r, err = asRune(v); err == nil && r != '"' {
				err = fmt.Errorf("only '\"' is supported")
			}
		case "encoding":
			if v != nil {
				opts.Encoding, err = asString(v)
			}
		case "compression":
			opts.Compression, err = asCompression(v)
		case "on_bad_lines":
			opts.OnBadLines, err = asBadLines(v)
		case "na_values":
			if v != nil {
				extraNA, err = asStrings(v)
			}
		case "keep_default_na":
			keepDefaultNA, err = asBool(v)
		case "na_filter":
			naFilter, err = asBool(v)
		default:
			if !ignoredOptions[key] {
				return Options{}, fmt.Errorf("unexpected keyword argument %q", key)
			}
		}
		if err != nil {
			return Options{}, fmt.Errorf("option %s: %w", key, err)
		}
	}

	if !headerSet && len(opts.Names) > 0 {
		opts.Header = NoHeader
	}
	if opts.NRows >= 0 && opts.SkipFooter > 0 {
		return Options{}, fmt.Errorf("options nrows and skipfooter cannot be combined")
	}
	if opts.Comment != 0 && opts.Comment == opts.Sep {
		return Options{}, fmt.Errorf("options comment and sep must differ")
	}

	switch {
	case !naFilter:
		opts.NAValues = nil
	case keepDefaultNA:
		opts.NAValues = naSet(append(append([]string{}, defaultNAValues...), extraNA...))
	default:
		opts.NAValues = naSet(extraNA)
	}
	return opts, nil
}

func (o Options) skipRecord(i int) bool {
	if i < o.SkipRows {
		return true
	}
	return o.SkipRowSet[i]
}

func naSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("want a string, got %T", v)
	}
	return s, nil
}

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("want a boolean, got %T", v)
	}
	return b, nil
}

func asRune(v any) (rune, error) {
	s, err := asString(v)
	if err != nil {
		return 0, err
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("want a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func asSeparator(v any) (rune, error) {
	s, err := asString(v)
	if err != nil {
		return 0, err
	}
	if s == `\t` {
		return '\t', nil
	}
	r, err := asRune(s)
	if err != nil {
		return 0, fmt.Errorf("only single-character separators are supported, got %q", s)
	}
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid separator %q", s)
	}
	return r, nil
}

// asInt accepts the number shapes produced by encoding/json and yaml.v3.
func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("want an integer, got %v", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	default:
		return 0, fmt.Errorf("want an integer, got %T", v)
	}
}

func asNonNegative(v any) (int, error) {
	n, err := asInt(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative, got %d", n)
	}
	return n, nil
}

func asHeader(v any) (int, error) {
	switch h := v.(type) {
	case nil:
		return NoHeader, nil
	case string:
		if h == "infer" {
			return 0, nil
		}
		return 0, fmt.Errorf("want an integer, null or \"infer\", got %q", h)
	case []any:
		if len(h) != 1 {
			return 0, fmt.Errorf("multi-row headers are not supported")
		}
		return asNonNegative(h[0])
	default:
		return asNonNegative(v)
	}
}

func asStrings(v any) ([]string, error) {
	switch s := v.(type) {
	case string:
		return []string{s}, nil
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			switch x := item.(type) {
			case string:
				out = append(out, x)
			case nil:
				return nil, fmt.Errorf("null entry in list")
			default:
				out = append(out, fmt.Sprint(x))
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("want a string or list, got %T", v)
	}
}

func asColumnRef(v any) (ColumnRef, error) {
	if s, ok := v.(string); ok {
		return ColumnRef{Name: s, ByName: true}, nil
	}
	n, err := asNonNegative(v)
	if err != nil {
		return ColumnRef{}, err
	}
	return ColumnRef{Index: n}, nil
}

func asColumnRefs(v any) ([]ColumnRef, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		ref, err := asColumnRef(v)
		if err != nil {
			return nil, err
		}
		return []ColumnRef{ref}, nil
	}
	refs := make([]ColumnRef, 0, len(items))
	for _, item := range items {
		ref, err := asColumnRef(item)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func setIndexCol(opts *Options, v any) error {
	switch x := v.(type) {
	case nil:
		return nil
	case bool:
		if x {
			return fmt.Errorf("index_col=true is not valid")
		}
		opts.NoIndexCol = true
		return nil
	default:
		ref, err := asColumnRef(v)
		if err != nil {
			return err
		}
		opts.IndexCol = &ref
		return nil
	}
}

func setSkipRows(opts *Options, v any) error {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		opts.SkipRowSet = make(map[int]bool, len(x))
		for _, item := range x {
			n, err := asNonNegative(item)
			if err != nil {
				return err
			}
			opts.SkipRowSet[n] = true
		}
		return nil
	default:
		n, err := asNonNegative(v)
		if err != nil {
			return err
		}
		opts.SkipRows = n
		return nil
	}
}

func asCompression(v any) (Compression, error) {
	if v == nil {
		return CompressionNone, nil
	}
	s, err := asString(v)
	if err != nil {
		return "", err
	}
	switch Compression(s) {
	case CompressionInfer, CompressionGzip:
		return Compression(s), nil
	case "gz":
		return CompressionGzip, nil
	default:
		return "", fmt.Errorf("unsupported compression %q", s)
	}
}

func asBadLines(v any) (BadLines, error) {
	s, err := asString(v)
	if err != nil {
		return "", err
	}
	switch BadLines(s) {
	case BadLinesError, BadLinesSkip, BadLinesWarn:
		return BadLines(s), nil
	default:
		return "", fmt.Errorf("want error, skip or warn, got %q", s)
	}
}
