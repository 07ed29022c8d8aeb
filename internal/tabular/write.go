package tabular

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/bft-labs/feedship/internal/domain"
)

// Write writes ds as comma-separated CSV with a header row and no index column.
// Short rows are padded with empty cells to the column count.
func Write(w io.Writer, ds *domain.Dataset) error {
	cw := csv.NewWriter(w)
	if err := writeRecord(w, cw, ds.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	width := len(ds.Columns)
	for i, row := range ds.Rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		}
		if err := writeRecord(w, cw, row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeRecord writes a record holding one empty field as "" so it does not
// come out as a blank line, which readers skip.
func writeRecord(w io.Writer, cw *csv.Writer, rec []string) error {
	if len(rec) > 1 || (len(rec) == 1 && rec[0] != "") {
		return cw.Write(rec)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\"\"\n")
	return err
}
