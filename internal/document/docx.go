package document

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBodyPart = "word/document.xml"

// decodeDocx reads the text runs of word/document.xml. w:p ends a line,
// w:tab and w:br/w:cr become a tab and a line break.
func decodeDocx(ctx context.Context, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == docxBodyPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", fmt.Errorf("open docx: missing %s", docxBodyPart)
	}

	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", docxBodyPart, err)
	}
	defer func() { _ = rc.Close() }()

	var sb strings.Builder
	dec := xml.NewDecoder(io.LimitReader(rc, MaxSize))
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", docxBodyPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
				if err := ctx.Err(); err != nil {
					return "", err
				}
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
