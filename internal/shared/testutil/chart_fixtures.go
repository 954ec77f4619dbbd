package testutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Sample datasets shared by chart tests.
const (
	// SampleTSV is two models over two metrics, tab separated.
	SampleTSV = "Model\tA\tB\nX\t10\t90\nY\t20\t10"
	// SampleCSV is SampleTSV with commas.
	SampleCSV = "Model,A,B\nX,10,90\nY,20,10"
	// DegenerateTSV has one dimension where every series reports 5.
	DegenerateTSV = "Model\tSame\nX\t5\nY\t5\nZ\t5"
)

// SampleRows is SampleTSV as worksheet rows.
var SampleRows = [][]string{
	{"Model", "A", "B"},
	{"X", "10", "90"},
	{"Y", "20", "10"},
}

// ChartTestFixtures writes chart input files into a test directory
type ChartTestFixtures struct {
	TestDataDir string
}

// NewChartTestFixtures creates a new fixtures manager
func NewChartTestFixtures(testDataDir string) *ChartTestFixtures {
	return &ChartTestFixtures{
		TestDataDir: testDataDir,
	}
}

// CreateTextFile writes content to name inside the test data directory and
// returns the full path
func (f *ChartTestFixtures) CreateTextFile(name, content string) (string, error) {
	if err := os.MkdirAll(f.TestDataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(f.TestDataDir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

// CreateWorkbook writes an .xlsx file whose sheets hold the given rows.
// Numeric-looking cells are written as numbers so readers see what a
// spreadsheet application would produce.
func (f *ChartTestFixtures) CreateWorkbook(name string, sheets map[string][][]string, order ...string) (string, error) {
	if err := os.MkdirAll(f.TestDataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	wb := excelize.NewFile()
	defer wb.Close()

	if len(order) == 0 {
		for sheet := range sheets {
			order = append(order, sheet)
		}
	}

	for i, sheet := range order {
		if i == 0 {
			if err := wb.SetSheetName("Sheet1", sheet); err != nil {
				return "", fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := wb.NewSheet(sheet); err != nil {
			return "", fmt.Errorf("failed to add sheet %s: %w", sheet, err)
		}

		for r, row := range sheets[sheet] {
			for c, value := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					return "", err
				}
				if err := wb.SetCellValue(sheet, cell, cellValue(value)); err != nil {
					return "", fmt.Errorf("failed to set %s!%s: %w", sheet, cell, err)
				}
			}
		}
	}

	path := filepath.Join(f.TestDataDir, name)
	if err := wb.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return path, nil
}

// CreateCorruptedWorkbook writes a file with an .xlsx name that is not a
// zip archive
func (f *ChartTestFixtures) CreateCorruptedWorkbook(name string) (string, error) {
	return f.CreateTextFile(name, "this is not a workbook")
}

// CleanupTestData removes all test data files
func (f *ChartTestFixtures) CleanupTestData() error {
	return os.RemoveAll(f.TestDataDir)
}

func cellValue(s string) any {
	var v float64
	if _, err := fmt.Sscan(s, &v); err == nil && fmt.Sprint(v) == s {
		return v
	}
	return s
}
