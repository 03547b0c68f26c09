// Package validation checks filesystem preconditions for batch workbook
// processing: readable input workbooks, writable output directories.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// WorkbookValidator validates workbook files and directories before a batch
// run touches them.
type WorkbookValidator struct {
	logger *slog.Logger
}

// NewWorkbookValidator creates a validator.
func NewWorkbookValidator(logger *slog.Logger) *WorkbookValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookValidator{logger: logger}
}

// ValidateInputDirectory checks that dir exists and reports how many
// workbooks it holds. An empty directory is not an error here; the caller
// decides whether that is fatal.
func (v *WorkbookValidator) ValidateInputDirectory(dir string) (int, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return 0, fmt.Errorf("input directory %s does not exist", dir)
	}
	if err != nil {
		return 0, fmt.Errorf("stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", dir)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.xls*"))
	if err != nil {
		return 0, fmt.Errorf("scan %s for workbooks: %w", dir, err)
	}
	count := 0
	for _, m := range matches {
		if v.ValidateWorkbookFile(m) == nil {
			count++
		}
	}

	v.logger.Info("input directory validated",
		slog.String("directory", dir),
		slog.Int("workbooks", count))
	return count, nil
}

// ValidateOutputDirectory ensures dir exists and is writable.
func (v *WorkbookValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}

	marker := filepath.Join(dir, ".write_test")
	f, err := os.Create(marker)
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	f.Close()
	os.Remove(marker)
	return nil
}

// ValidateWorkbookFile checks that path is a readable spreadsheet and not an
// Office lock file.
func (v *WorkbookValidator) ValidateWorkbookFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" && ext != ".xls" {
		return fmt.Errorf("file %s is not a workbook (extension %s)", path, ext)
	}
	// "~$" prefixed files are Office lock files left by open documents.
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return fmt.Errorf("file %s is an Office lock file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	f.Close()
	return nil
}
