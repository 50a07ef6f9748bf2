package export

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnsupported is returned when no system clipboard is available,
// e.g. on a headless Linux host without xclip, xsel or wl-copy.
var ErrClipboardUnsupported = errors.New("clipboard not supported on this system")

// Clipboard receives copied reports.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the operating system clipboard.
type SystemClipboard struct{}

// WriteAll implements Clipboard.
func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnsupported
	}
	return clipboard.WriteAll(text)
}
