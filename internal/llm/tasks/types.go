package tasks

// Test Suite Generation Task Types

// TestSuiteGenInput is the input for the test suite generation task.
type TestSuiteGenInput struct {
	Requirements           []string `json:"requirements"`
	MaxCasesPerRequirement int      `json:"max_cases_per_requirement,omitempty"`
}

// TestSuiteGenOutput is the output from the test suite generation task.
// Cases carry their categories; the suite's ordered sequence is given by ID.
type TestSuiteGenOutput struct {
	TestCases      []TestCaseJSON `json:"test_cases" jsonschema:"minItems=1"`
	ExecutionOrder []uint64       `json:"execution_order"`
}

// TestCaseJSON represents a generated test case in JSON format.
// This intermediate type lets the model assign several categories to one case.
type TestCaseJSON struct {
	ID              uint64   `json:"id" jsonschema:"minimum=1"`
	Type            string   `json:"type" jsonschema:"minLength=1,maxLength=50"`
	Title           string   `json:"title" jsonschema:"minLength=1,maxLength=300"`
	Categories      []string `json:"categories" jsonschema:"minItems=1"`
	Preconditions   []string `json:"preconditions"`
	Steps           []string `json:"steps" jsonschema:"minItems=1,maxItems=50"`
	ExpectedResults []string `json:"expected_results" jsonschema:"minItems=1"`
}

// DefaultMaxCasesPerRequirement bounds the suite size when the input leaves
// it unset.
const DefaultMaxCasesPerRequirement = 6
