package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Price movement label constants.
const (
	UpValue   = "Up"   // Price rose since 00:00 UTC
	DownValue = "Down" // Price fell since 00:00 UTC
	FlatValue = "Flat" // Price is unchanged
)

// Color variables for console output.
var (
	UpColor   = color.New(color.FgGreen, color.Bold) // UpColor represents a gain.
	DownColor = color.New(color.FgRed, color.Bold)   // DownColor represents a loss.
	FlatColor = color.New(color.FgCyan)              // FlatColor represents no movement.
)

// GetPlainLabel returns a plain text label for the daily percent change.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(changePct float32) string {
	switch {
	case changePct > 0:
		return UpValue
	case changePct < 0:
		return DownValue
	default:
		return FlatValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(changePct float32) string {
	text := GetPlainLabel(changePct)

	switch text {
	case UpValue:
		return UpColor.Sprint(text)
	case DownValue:
		return DownColor.Sprint(text)
	default:
		return FlatColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for feed storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".cryptofeed_cache.db"
	}
	return filepath.Join(homeDir, ".cryptofeed_cache.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the "..." and at least one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
