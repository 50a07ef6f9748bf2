package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"casegen/pkg/schema"
)

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

const htmlStyle = `body{font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",sans-serif;max-width:960px;margin:2em auto;padding:0 1em;color:#222}
table{border-collapse:collapse}th,td{border:1px solid #ccc;padding:4px 10px}
h2{border-bottom:1px solid #ddd;padding-bottom:4px}`

// RenderHTML renders the Markdown report as a standalone HTML page.
func RenderHTML(suite *schema.TestSuite, generatedAt time.Time) (string, error) {
	var body bytes.Buffer
	if err := markdownRenderer.Convert([]byte(FormatMarkdown(suite, generatedAt)), &body); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>Test Suite Report</title>\n")
	fmt.Fprintf(&page, "<style>%s</style>\n</head>\n<body>\n", htmlStyle)
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}
