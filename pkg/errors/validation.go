package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// maxColumnNameLength bounds column names accepted from the dashboard.
const maxColumnNameLength = 128

// ValidateColumnName validates a column name received from a user request.
// It only checks the shape of the name; whether the column exists is decided
// against the table schema by the caller.
//
// Validation rules:
//   - No empty names
//   - No control characters
//   - Maximum length of 128 characters
func ValidateColumnName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeUnknownColumn, "column name cannot be empty")
	}

	if len(name) > maxColumnNameLength {
		return New(ErrCodeUnknownColumn, "column name too long (max %d characters)", maxColumnNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeUnknownColumn, "column name contains invalid control characters")
		}
	}

	return nil
}

// ValidateDataPath validates the dataset path taken from configuration.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - Must name a .csv file
func ValidateDataPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "data path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "data path contains invalid characters")
		}
	}

	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return New(ErrCodeInvalidPath, "data path must point to a .csv file: %q", path)
	}

	return nil
}
