// Package export renders generated test suites into report, tabular and
// structured documents.
package export

import (
	"fmt"
	"strings"
	"time"

	"casegen/pkg/schema"
)

// ReportTimeLayout formats the report's generation timestamp.
const ReportTimeLayout = "1/2/2006, 3:04:05 PM"

const separatorWidth = 80

var (
	heavyRule = strings.Repeat("=", separatorWidth)
	lightRule = strings.Repeat("-", separatorWidth)
)

// FormatReport renders suite as the plain-text test suite report. Every
// non-empty category gets a section in fixed order, followed by the ordered
// execution sequence, which is always present.
func FormatReport(suite *schema.TestSuite, generatedAt time.Time) string {
	var sb strings.Builder

	sb.WriteString("TEST SUITE REPORT\n")
	fmt.Fprintf(&sb, "Generated: %s\n", generatedAt.Format(ReportTimeLayout))
	sb.WriteString(heavyRule + "\n\n")

	for _, c := range schema.Categories() {
		cases := suite.Cases(c)
		if len(cases) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n%s TEST CASES\n", c.Heading())
		sb.WriteString(lightRule + "\n\n")
		for i := range cases {
			writeCaseBlock(&sb, &cases[i])
		}
	}

	sb.WriteString("\nORDERED EXECUTION SEQUENCE\n")
	sb.WriteString(lightRule + "\n\n")
	for i := range suite.OrderedSequence {
		writeCaseBlock(&sb, &suite.OrderedSequence[i])
	}

	return sb.String()
}

func writeCaseBlock(sb *strings.Builder, tc *schema.TestCase) {
	fmt.Fprintf(sb, "Test Case ID: TC-%d\n", tc.ID)
	fmt.Fprintf(sb, "Type: %s\n", tc.Type)
	fmt.Fprintf(sb, "Title: %s\n\n", tc.Title)

	if len(tc.Preconditions) > 0 {
		sb.WriteString("Preconditions:\n")
		writeIndentedList(sb, tc.Preconditions)
		sb.WriteString("\n")
	}

	sb.WriteString("Test Steps:\n")
	writeIndentedList(sb, tc.Steps)
	sb.WriteString("\n")

	sb.WriteString("Expected Results:\n")
	writeIndentedList(sb, tc.ExpectedResults)
	sb.WriteString("\n")

	sb.WriteString(heavyRule + "\n\n")
}

func writeIndentedList(sb *strings.Builder, items []string) {
	for i, item := range items {
		fmt.Fprintf(sb, "  %d. %s\n", i+1, item)
	}
}
