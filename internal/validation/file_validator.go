package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"radarcli/internal/sources"
)

// ErrNoInputs is returned when a directory holds no chart input files.
var ErrNoInputs = errors.New("no chart input files")

// inputExtensions are the file types radarctl picks up from a directory.
var inputExtensions = map[string]bool{
	".csv":  true,
	".tsv":  true,
	".txt":  true,
	".xlsx": true,
	".xlsm": true,
}

// FileValidator checks the files and directories handed to the CLI
type FileValidator struct {
	maxBytes int64
	logger   *slog.Logger
}

// NewFileValidator creates a new file validator. Files larger than maxBytes
// are rejected; zero disables the check.
func NewFileValidator(maxBytes int64, logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// ExpandInputs validates every argument and replaces directories with the
// chart input files they contain, sorted by name. "-" is passed through.
func (v *FileValidator) ExpandInputs(args []string) ([]string, error) {
	inputs := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "-" {
			inputs = append(inputs, arg)
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			v.logger.Error("Input does not exist", slog.String("path", arg))
			return nil, fmt.Errorf("input %s: %w", arg, err)
		}

		if !info.IsDir() {
			if err := v.ValidateFile(arg); err != nil {
				return nil, err
			}
			inputs = append(inputs, arg)
			continue
		}

		files, err := v.ListInputFiles(arg)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, files...)
	}
	return inputs, nil
}

// ListInputFiles returns the chart input files directly inside dir.
// Spreadsheet lock files ("~$name.xlsx") are skipped.
func (v *FileValidator) ListInputFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		v.logger.Error("Failed to read input directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "~$") {
			continue
		}
		if !inputExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		path := filepath.Join(dir, name)
		if err := v.ValidateFile(path); err != nil {
			return nil, err
		}
		files = append(files, path)
	}

	if len(files) == 0 {
		v.logger.Warn("No chart input files found", slog.String("directory", dir))
		return nil, fmt.Errorf("%s: %w", dir, ErrNoInputs)
	}
	sort.Strings(files)

	v.logger.Debug("Input directory expanded",
		slog.String("directory", dir),
		slog.Int("files_found", len(files)))
	return files, nil
}

// ValidateFile checks that path is a readable regular file within the size
// limit
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("input %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if v.maxBytes > 0 && info.Size() > v.maxBytes {
		v.logger.Error("File exceeds size limit",
			slog.String("file", path),
			slog.Int64("size", info.Size()),
			slog.Int64("limit", v.maxBytes))
		return fmt.Errorf("%s: %w", path, sources.ErrTooLarge)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputPath creates the parent directory of path if needed and
// checks that it is writable
func (v *FileValidator) ValidateOutputPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	tmp.Close()
	os.Remove(tmp.Name())
	return nil
}
