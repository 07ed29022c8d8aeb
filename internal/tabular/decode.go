package tabular

import (
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// Decompress wraps r according to the compression option.
// With CompressionInfer, gzip is used when the source name ends in .gz.
func Decompress(r io.Reader, c Compression, sourceName string) (io.ReadCloser, error) {
	useGzip := c == CompressionGzip ||
		(c == CompressionInfer && strings.HasSuffix(strings.ToLower(sourceName), ".gz"))
	if !useGzip {
		return io.NopCloser(r), nil
	}
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	return zr, nil
}

// Decode transcodes r from the named character set into UTF-8.
// An empty name or any UTF-8 alias returns r unchanged.
func Decode(r io.Reader, charset string) (io.Reader, error) {
	name := normalizeCharset(charset)
	if name == "" || name == "utf-8" {
		return r, nil
	}
	enc, err := lookupCharset(name)
	if err != nil {
		return nil, err
	}
	return enc.NewDecoder().Reader(r), nil
}

func lookupCharset(name string) (encoding.Encoding, error) {
	if enc, err := htmlindex.Get(name); err == nil {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
	return enc, nil
}

func normalizeCharset(charset string) string {
	name := strings.ToLower(strings.TrimSpace(charset))
	name = strings.ReplaceAll(name, "_", "-")
	switch name {
	case "utf8", "utf-8-sig", "utf8-sig":
		return "utf-8"
	case "latin-1", "l1":
		return "latin1"
	}
	return name
}
