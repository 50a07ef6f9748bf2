package llm

import (
	"fmt"
	"strings"
)

// TestDesignGuide describes the categories the model must cover.
// Used in prompts so every provider classifies cases the same way.
const TestDesignGuide = `
Test Case Categories:

FUNCTIONAL   - verifies the behavior a requirement describes works end to end
BOUNDARY     - exercises limits: minimum/maximum values, lengths, counts, off-by-one
EDGE CASES   - unusual but valid situations: empty input, concurrency, interruptions
EXPLORATORY  - open-ended charters that probe around the requirement
POSITIVE     - valid input and expected usage succeeds
NEGATIVE     - invalid input or misuse is rejected gracefully

A case may belong to more than one category (e.g. functional and positive).
`

// BuildTestSuitePrompt creates a prompt for generating a categorized test
// suite from requirement lines. outputSchema is the JSON schema of the
// expected reply.
func BuildTestSuitePrompt(requirements []string, maxCasesPerRequirement int, outputSchema string) string {
	var sb strings.Builder

	sb.WriteString("Design manual test cases for the following requirements.\n\n")
	sb.WriteString("REQUIREMENTS:\n")
	for i, req := range requirements {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, req))
	}

	sb.WriteString(TestDesignGuide)

	sb.WriteString(fmt.Sprintf(`
RULES:
1. Write at most %d test cases per requirement
2. IDs are positive integers, unique across the whole suite
3. Every case has a short title, at least one step and at least one expected result
4. "categories" lists one or more of: functional, boundary, edgeCases, exploratory, positive, negative
5. "execution_order" lists every case ID exactly once, in the order a tester should run them
6. Preconditions may be empty

`, maxCasesPerRequirement))

	if outputSchema != "" {
		sb.WriteString("JSON SCHEMA OF THE REPLY:\n")
		sb.WriteString(outputSchema)
		sb.WriteString("\n\n")
	}

	sb.WriteString(`Return ONLY valid JSON with this exact structure:
{
  "test_cases": [
    {
      "id": 1,
      "type": "functional|boundary|edge|exploratory|positive|negative",
      "title": "short human-readable label",
      "categories": ["functional", "positive"],
      "preconditions": ["state required before the steps"],
      "steps": ["action the tester performs"],
      "expected_results": ["observable outcome"]
    }
  ],
  "execution_order": [1]
}`)

	return sb.String()
}
