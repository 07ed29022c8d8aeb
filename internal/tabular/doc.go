// Package tabular reads and writes CSV datasets.
//
// Parser options use the keyword names of the pandas read_csv function so
// existing feed files keep working: sep, header, names, usecols, index_col,
// skiprows, nrows, skipfooter, comment, quotechar, encoding, compression,
// on_bad_lines, na_values, keep_default_na and na_filter. Options that only
// shape column types (dtype, parse_dates, ...) are accepted and ignored
// because every cell stays text. Any other option is rejected.
//
// Cells recognised as missing values are written back as empty fields, the
// same way pandas writes NaN.
package tabular
