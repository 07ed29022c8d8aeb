package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bft-labs/feedship/internal/domain"
)

// ErrNoColumns is returned for sources without any column to parse.
var ErrNoColumns = errors.New("no columns to parse from file")

// Read parses CSV from r. Decompression and character decoding are the caller's job.
func Read(r io.Reader, opts Options) (*domain.Dataset, error) {
	records, err := readRecords(r, opts)
	if err != nil {
		return nil, err
	}

	var columns []string
	if opts.Header != NoHeader {
		if opts.Header >= len(records) {
			if len(records) == 0 {
				return nil, ErrNoColumns
			}
			return nil, fmt.Errorf("header row %d not found, source has %d rows", opts.Header, len(records))
		}
		columns = headerNames(records[opts.Header])
		records = records[opts.Header+1:]
	}

	implicitIndex := false
	switch {
	case len(opts.Names) > 0:
		columns = append([]string(nil), opts.Names...)
	case columns == nil:
		if len(records) == 0 || len(records[0]) == 0 {
			return nil, ErrNoColumns
		}
		columns = make([]string, len(records[0]))
		for i := range columns {
			columns[i] = strconv.Itoa(i)
		}
	default:
		// pandas treats a first data row one field wider than the header as
		// carrying an unnamed index column.
		implicitIndex = !opts.NoIndexCol && opts.IndexCol == nil &&
			len(records) > 0 && len(records[0]) == len(columns)+1
	}
	columns = dedupe(columns)

	if opts.SkipFooter > 0 {
		if opts.SkipFooter >= len(records) {
			records = nil
		} else {
			records = records[:len(records)-opts.SkipFooter]
		}
	}
	if opts.NRows >= 0 && len(records) > opts.NRows {
		records = records[:opts.NRows]
	}

	width := len(columns)
	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		if implicitIndex && len(rec) > 0 {
			rec = rec[1:]
		}
		if len(rec) > width {
			switch opts.OnBadLines {
			case BadLinesSkip:
				continue
			case BadLinesWarn:
				if opts.OnBadLine != nil {
					opts.OnBadLine(i, len(rec), width)
				}
				continue
			default:
				return nil, fmt.Errorf("expected %d fields in data row %d, saw %d", width, i, len(rec))
			}
		}
		row := make([]string, width)
		for j, cell := range rec {
			if opts.NAValues[cell] {
				continue
			}
			row[j] = cell
		}
		rows = append(rows, row)
	}

	ds := &domain.Dataset{Columns: columns, Rows: rows}
	if len(opts.UseCols) > 0 {
		if ds, err = selectColumns(ds, opts.UseCols); err != nil {
			return nil, err
		}
	}
	if opts.IndexCol != nil {
		if ds, err = dropColumn(ds, *opts.IndexCol); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func readRecords(r io.Reader, opts Options) ([][]string, error) {
	if opts.Comment != 0 {
		r = stripComments(r, opts.Sep, opts.Comment)
	}
	cr := csv.NewReader(r)
	cr.Comma = opts.Sep
	cr.FieldsPerRecord = -1
	// Stray quotes inside unquoted fields are literal text.
	cr.LazyQuotes = true

	var records [][]string
	for i := 0; ; i++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		if i == 0 && len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
		}
		if opts.skipRecord(i) {
			continue
		}
		records = append(records, rec)
	}
}

func headerNames(rec []string) []string {
	names := make([]string, len(rec))
	for i, name := range rec {
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		names[i] = name
	}
	return names
}

// dedupe renames repeated column names to name.1, name.2, ...
func dedupe(columns []string) []string {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		seen[c] = true
	}
	counts := make(map[string]int, len(columns))
	out := make([]string, len(columns))
	for i, c := range columns {
		n := counts[c]
		counts[c] = n + 1
		if n == 0 {
			out[i] = c
			continue
		}
		name := fmt.Sprintf("%s.%d", c, n)
		for seen[name] {
			n++
			name = fmt.Sprintf("%s.%d", c, n)
		}
		counts[c] = n + 1
		seen[name] = true
		out[i] = name
	}
	return out
}

func resolve(columns []string, ref ColumnRef) (int, error) {
	if !ref.ByName {
		if ref.Index >= len(columns) {
			return 0, fmt.Errorf("column %d out of range, dataset has %d columns", ref.Index, len(columns))
		}
		return ref.Index, nil
	}
	for i, c := range columns {
		if c == ref.Name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not found", ref.Name)
}

// selectColumns keeps the referenced columns in file order.
func selectColumns(ds *domain.Dataset, refs []ColumnRef) (*domain.Dataset, error) {
	keep := make([]bool, len(ds.Columns))
	for _, ref := range refs {
		i, err := resolve(ds.Columns, ref)
		if err != nil {
			return nil, fmt.Errorf("usecols: %w", err)
		}
		keep[i] = true
	}
	return project(ds, keep), nil
}

func dropColumn(ds *domain.Dataset, ref ColumnRef) (*domain.Dataset, error) {
	i, err := resolve(ds.Columns, ref)
	if err != nil {
		return nil, fmt.Errorf("index_col: %w", err)
	}
	keep := make([]bool, len(ds.Columns))
	for j := range keep {
		keep[j] = j != i
	}
	return project(ds, keep), nil
}

func project(ds *domain.Dataset, keep []bool) *domain.Dataset {
	pick := func(src []string) []string {
		dst := make([]string, 0, len(src))
		for i, v := range src {
			if keep[i] {
				dst = append(dst, v)
			}
		}
		return dst
	}
	out := &domain.Dataset{Columns: pick(ds.Columns), Rows: make([][]string, len(ds.Rows))}
	for i, row := range ds.Rows {
		out.Rows[i] = pick(row)
	}
	return out
}
