package document

import "strings"

// minRunLength is the shortest printable run kept from a binary document.
const minRunLength = 4

// recoverText pulls printable ASCII runs out of a legacy Word binary. Text
// stored as UTF-16LE is handled by skipping the zero high byte. Carriage
// returns, which Word uses as paragraph marks, end a line.
func recoverText(data []byte) string {
	var out strings.Builder
	run := make([]byte, 0, 256)

	flush := func() {
		if len(strings.TrimSpace(string(run))) >= minRunLength {
			out.Write(run)
			out.WriteByte('\n')
		}
		run = run[:0]
	}

	for i := 0; i < len(data); i++ {
		b := data[i]
		if i+1 < len(data) && data[i+1] == 0 && b != 0 {
			i++
		}

		switch {
		case b == '\r' || b == '\n':
			flush()
		case b == '\t' || (b >= 0x20 && b < 0x7f):
			run = append(run, b)
		default:
			flush()
		}
	}
	flush()

	return out.String()
}
