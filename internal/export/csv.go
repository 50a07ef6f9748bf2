package export

import (
	"fmt"
	"strings"

	"casegen/pkg/schema"
)

// ByteOrderMark prefixes CSV documents so spreadsheet tools detect UTF-8.
const ByteOrderMark = "\uFEFF"

// CSVHeader is the fixed header row. Expected results are not a column.
const CSVHeader = "Title,Precondition,Steps"

// noPreconditions is written when a case has no preconditions.
const noPreconditions = "None"

// ExportCSV renders one row per categorized case, in fixed category order.
// A case listed in several categories gets one row per category; the ordered
// sequence is not exported. Rows are joined by "\n" with no trailing newline.
func ExportCSV(suite *schema.TestSuite) string {
	rows := make([]string, 0, 1+suite.Len())
	rows = append(rows, CSVHeader)

	for _, c := range schema.Categories() {
		for _, tc := range suite.Cases(c) {
			precondition := noPreconditions
			if len(tc.Preconditions) > 0 {
				precondition = numberedLines(tc.Preconditions)
			}
			rows = append(rows, strings.Join([]string{
				escapeField(tc.Title),
				escapeField(precondition),
				escapeField(numberedLines(tc.Steps)),
			}, ","))
		}
	}

	return ByteOrderMark + strings.Join(rows, "\n")
}

// numberedLines renders items as "1. a\n2. b".
func numberedLines(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	return strings.Join(lines, "\n")
}

// escapeField quotes a field iff it contains a quote, a comma or a line
// break, doubling inner quotes. encoding/csv also quotes fields with a
// leading space, so it cannot be used here.
func escapeField(field string) string {
	if !strings.ContainsAny(field, "\",\n\r") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
