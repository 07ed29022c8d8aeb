package domain

// Dataset is an in-memory table: ordered columns and ordered rows of text cells.
// Every row has exactly len(Columns) cells.
type Dataset struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}
