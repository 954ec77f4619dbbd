package sources

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"radarcli/internal/radar"
)

// ReadText reads all of r as text. A positive limit caps the number of bytes
// accepted; longer input fails with ErrTooLarge. A leading byte order mark
// is dropped.
func ReadText(r io.Reader, limit int64) (string, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return "", fmt.Errorf("input exceeds %d bytes: %w", limit, ErrTooLarge)
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}

// IsWorkbook reports whether name has an Excel workbook extension.
func IsWorkbook(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// ReadFile loads a table from path. Workbooks are read from sheet (or the
// first sheet holding a table when sheet is empty); any other file is parsed
// as delimited text.
func ReadFile(path, sheet string) (radar.Table, error) {
	if IsWorkbook(path) {
		return ReadWorkbookFile(path, sheet)
	}

	f, err := os.Open(path)
	if err != nil {
		return radar.Table{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	text, err := ReadText(f, 0)
	if err != nil {
		return radar.Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return ParseText(text)
}

// ParseText parses delimited text, failing with ErrNoTable where
// radar.ParseTable reports no table.
func ParseText(text string) (radar.Table, error) {
	table, ok := radar.ParseTable(text)
	if !ok {
		return radar.Table{}, ErrNoTable
	}
	return table, nil
}
