// Package document turns uploaded requirement documents into plain text.
//
// Supported formats:
//   - .docx: Office Open XML (archive/zip, word/document.xml)
//   - .doc:  legacy Word binary, best-effort recovery of printable text runs
//   - .txt, .md: passed through as UTF-8
package document

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// MaxSize is the largest document Decode accepts.
const MaxSize = 32 << 20

// Format is a supported document format.
type Format string

const (
	FormatDocx Format = "docx"
	FormatDoc  Format = "doc"
	FormatText Format = "txt"
	FormatMD   Format = "md"
)

// ErrEmpty is returned for zero-length documents.
var ErrEmpty = errors.New("document is empty")

// UnsupportedFormatError is returned for file extensions Decode cannot read.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %q (supported: %s)", e.Ext, strings.Join(SupportedFormats(), ", "))
}

// Detect returns the document format based on file extension.
func Detect(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".docx":
		return FormatDocx, nil
	case ".doc":
		return FormatDoc, nil
	case ".txt", ".text":
		return FormatText, nil
	case ".md", ".markdown":
		return FormatMD, nil
	default:
		return "", &UnsupportedFormatError{Ext: ext}
	}
}

// Decode returns the raw text of the named document. Paragraphs become
// lines; no other structure is preserved.
func Decode(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if len(data) > MaxSize {
		return "", fmt.Errorf("file too large: %d bytes (max %d)", len(data), MaxSize)
	}

	format, err := Detect(name)
	if err != nil {
		return "", err
	}

	switch format {
	case FormatDocx:
		return decodeDocx(ctx, data)
	case FormatDoc:
		return recoverText(data), nil
	default:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%s: not valid UTF-8", name)
		}
		return string(data), nil
	}
}

// SupportedFormats returns the extensions Decode reads, without dots.
func SupportedFormats() []string {
	return []string{string(FormatDocx), string(FormatDoc), string(FormatText), string(FormatMD)}
}
