package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"casegen/pkg/schema"
)

// Format is an artifact format.
type Format string

const (
	FormatText     Format = "txt"
	FormatCSV      Format = "csv"
	FormatMD       Format = "md"
	FormatHTML     Format = "html"
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
)

var formats = []Format{FormatText, FormatCSV, FormatMD, FormatHTML, FormatYAML, FormatJSON}

// Formats returns every supported artifact format.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// ParseFormat maps a format name or file extension to its Format.
func ParseFormat(s string) (Format, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")
	switch s {
	case "text":
		return FormatText, nil
	case "markdown":
		return FormatMD, nil
	case "yml":
		return FormatYAML, nil
	}
	for _, f := range formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want one of %s)", s, FormatList())
}

// FormatList joins the supported format names for messages and help text.
func FormatList() string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// ArtifactName returns the suggested file name, e.g. test-cases-2025-01-31.txt.
// The date is the UTC calendar date of t.
func ArtifactName(format Format, t time.Time) string {
	return fmt.Sprintf("test-cases-%s.%s", t.UTC().Format("2006-01-02"), format)
}

// Render produces the artifact contents for format.
func Render(format Format, suite *schema.TestSuite, generatedAt time.Time) ([]byte, error) {
	switch format {
	case FormatText:
		return []byte(FormatReport(suite, generatedAt)), nil
	case FormatCSV:
		return []byte(ExportCSV(suite)), nil
	case FormatMD:
		return []byte(FormatMarkdown(suite, generatedAt)), nil
	case FormatHTML:
		page, err := RenderHTML(suite, generatedAt)
		if err != nil {
			return nil, err
		}
		return []byte(page), nil
	case FormatYAML:
		return EncodeYAML(suite)
	case FormatJSON:
		return EncodeJSON(suite)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// WriteArtifact renders suite and writes it to dir under ArtifactName. The
// file is written to a temporary name first and renamed into place.
func WriteArtifact(dir string, format Format, suite *schema.TestSuite, generatedAt time.Time) (string, error) {
	content, err := Render(format, suite, generatedAt)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(dir, ArtifactName(format, generatedAt))
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return "", fmt.Errorf("write temp artifact: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath) // Best effort cleanup, ignore error
		return "", fmt.Errorf("rename artifact: %w", err)
	}

	return path, nil
}
