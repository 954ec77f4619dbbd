package sources

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"radarcli/internal/radar"
)

// ReadWorkbookFile opens an .xlsx file and reads a table from it.
func ReadWorkbookFile(path, sheet string) (radar.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return radar.Table{}, fmt.Errorf("%w: %w", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	return readSheet(f, sheet)
}

// ReadWorkbook reads a table from an .xlsx stream such as an upload.
func ReadWorkbook(r io.Reader, sheet string) (radar.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return radar.Table{}, fmt.Errorf("%w: %w", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	return readSheet(f, sheet)
}

// readSheet picks the worksheet and converts its rows. With no sheet name the
// first sheet holding at least a header and one data row is used.
func readSheet(f *excelize.File, sheet string) (radar.Table, error) {
	if sheet != "" {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			return radar.Table{}, fmt.Errorf("sheet %q: %w", sheet, ErrSheetNotFound)
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return radar.Table{}, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		table, ok := rowsToTable(rows)
		if !ok {
			return radar.Table{}, fmt.Errorf("sheet %q: %w", sheet, ErrNoTable)
		}
		return table, nil
	}

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if table, ok := rowsToTable(rows); ok {
			slog.Debug("found chart data in sheet",
				slog.String("sheet_name", name),
				slog.Int("rows", len(table.Rows)))
			return table, nil
		}
	}
	return radar.Table{}, ErrNoTable
}

// rowsToTable trims cells, drops empty rows and trailing empty cells, and
// requires a header plus one data row.
func rowsToTable(rows [][]string) (radar.Table, bool) {
	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		last := -1
		for i, c := range row {
			cells[i] = strings.TrimSpace(c)
			if cells[i] != "" {
				last = i
			}
		}
		if last < 0 {
			continue
		}
		kept = append(kept, cells[:last+1])
	}
	if len(kept) < 2 {
		return radar.Table{}, false
	}
	return radar.Table{Headers: kept[0], Rows: kept[1:]}, true
}
