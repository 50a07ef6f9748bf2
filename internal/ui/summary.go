package ui

import (
	"strconv"
	"time"

	"casegen/internal/export"
	"casegen/pkg/schema"
)

// SummaryTable renders the number of cases per category, in rendering
// order, followed by a total row.
func SummaryTable(suite *schema.TestSuite) string {
	counts := suite.Counts()

	rows := make([][]string, 0, len(schema.Categories())+2)
	for _, c := range schema.Categories() {
		rows = append(rows, []string{c.Label(), strconv.Itoa(counts[c])})
	}
	rows = append(rows,
		[]string{"Ordered sequence", strconv.Itoa(len(suite.OrderedSequence))},
		[]string{"Total", strconv.Itoa(suite.Len())},
	)

	return Table([]string{"Category", "Cases"}, rows)
}

// RunSummary renders the header block printed after a successful run.
func RunSummary(runID, file string, requirements int, generatedAt time.Time) string {
	return KeyValues("  ",
		KV("Run", Muted(runID)),
		KV("File", file),
		KV("Requirements", strconv.Itoa(requirements)),
		KV("Generated", generatedAt.Format(export.ReportTimeLayout)),
	)
}
