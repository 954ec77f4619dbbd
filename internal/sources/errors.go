package sources

import "errors"

var (
	// ErrNoTable is returned when the input holds fewer than a header and one
	// data row.
	ErrNoTable = errors.New("no table found")
	// ErrTooLarge is returned when text input exceeds the read limit.
	ErrTooLarge = errors.New("input too large")
	// ErrSheetNotFound is returned when a named worksheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrInvalidWorkbook is returned when a file or upload is not a readable
	// .xlsx archive.
	ErrInvalidWorkbook = errors.New("invalid workbook")
)
