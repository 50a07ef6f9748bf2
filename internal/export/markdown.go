package export

import (
	"fmt"
	"strings"
	"time"

	"casegen/pkg/schema"
)

// FormatMarkdown renders suite as a GitHub-flavored Markdown document with
// the same sections as the text report.
func FormatMarkdown(suite *schema.TestSuite, generatedAt time.Time) string {
	var sb strings.Builder

	sb.WriteString("# Test Suite Report\n\n")
	fmt.Fprintf(&sb, "_Generated: %s_\n\n", generatedAt.Format(ReportTimeLayout))

	sb.WriteString("| Category | Test cases |\n|---|---:|\n")
	counts := suite.Counts()
	for _, c := range schema.Categories() {
		fmt.Fprintf(&sb, "| %s | %d |\n", c.Label(), counts[c])
	}
	sb.WriteString("\n")

	for _, c := range schema.Categories() {
		cases := suite.Cases(c)
		if len(cases) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "## %s Test Cases\n\n", c.Label())
		for i := range cases {
			writeMarkdownCase(&sb, &cases[i])
		}
	}

	sb.WriteString("## Ordered Execution Sequence\n\n")
	for i, tc := range suite.OrderedSequence {
		fmt.Fprintf(&sb, "%d. **TC-%d** %s\n", i+1, tc.ID, markdownInline(tc.Title))
	}
	if len(suite.OrderedSequence) > 0 {
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeMarkdownCase(sb *strings.Builder, tc *schema.TestCase) {
	fmt.Fprintf(sb, "### TC-%d: %s\n\n", tc.ID, markdownInline(tc.Title))
	fmt.Fprintf(sb, "**Type:** %s\n\n", markdownInline(tc.Type))

	if len(tc.Preconditions) > 0 {
		sb.WriteString("**Preconditions**\n\n")
		for _, p := range tc.Preconditions {
			fmt.Fprintf(sb, "- %s\n", markdownInline(p))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("**Test Steps**\n\n")
	for i, s := range tc.Steps {
		fmt.Fprintf(sb, "%d. %s\n", i+1, markdownInline(s))
	}
	sb.WriteString("\n")

	sb.WriteString("**Expected Results**\n\n")
	for _, r := range tc.ExpectedResults {
		fmt.Fprintf(sb, "- %s\n", markdownInline(r))
	}
	sb.WriteString("\n")
}

var markdownEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"*", "\\*",
	"_", "\\_",
	"`", "\\`",
	"|", "\\|",
	"<", "&lt;",
	">", "&gt;",
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
)

// markdownInline keeps generated text on one line and stops it from being
// read as emphasis, code or raw HTML.
func markdownInline(s string) string {
	return markdownEscaper.Replace(s)
}
