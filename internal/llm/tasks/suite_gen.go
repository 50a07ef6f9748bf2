package tasks

import (
	"context"
	"fmt"
	"strings"

	"casegen/internal/llm"
	"casegen/pkg/schema"
)

// ExecuteTestSuiteGenTask generates a categorized test suite for the given
// requirements and returns the validated model output.
func ExecuteTestSuiteGenTask(
	client *llm.Client,
	ctx context.Context,
	model string,
	input *TestSuiteGenInput,
) (*TestSuiteGenOutput, error) {
	if len(input.Requirements) == 0 {
		return nil, fmt.Errorf("test suite generation task: no requirements")
	}

	maxCases := input.MaxCasesPerRequirement
	if maxCases <= 0 {
		maxCases = DefaultMaxCasesPerRequirement
	}

	outputSchema, err := llm.SchemaFor(&TestSuiteGenOutput{})
	if err != nil {
		return nil, fmt.Errorf("test suite generation task: build schema: %w", err)
	}

	// Build prompt
	prompt := llm.BuildTestSuitePrompt(input.Requirements, maxCases, outputSchema)

	validate := func(output *TestSuiteGenOutput) error {
		if err := ValidateTestSuiteGen(output); err != nil {
			return err
		}
		if limit := maxCases * len(input.Requirements); len(output.TestCases) > limit {
			return fmt.Errorf("test_cases: at most %d cases allowed, got %d", limit, len(output.TestCases))
		}
		return nil
	}

	// Call LLM with retry
	result, err := llm.GenerateStructured[TestSuiteGenOutput](
		client,
		ctx,
		model,
		prompt,
		validate,
	)

	if err != nil {
		return nil, fmt.Errorf("test suite generation task failed: %w", err)
	}

	return result, nil
}

// ValidateTestSuiteGen checks a model reply: unique positive IDs, complete
// cases, known categories and an execution order that lists every case
// exactly once.
func ValidateTestSuiteGen(output *TestSuiteGenOutput) error {
	if len(output.TestCases) == 0 {
		return fmt.Errorf("test_cases: at least one test case is required")
	}
	if len(output.TestCases) > schema.SuiteCasesMax {
		return fmt.Errorf("test_cases: at most %d cases allowed, got %d", schema.SuiteCasesMax, len(output.TestCases))
	}

	ids := make(map[uint64]bool, len(output.TestCases))
	for i, tc := range output.TestCases {
		if tc.ID == 0 {
			return fmt.Errorf("test_cases[%d]: id must be a positive integer", i)
		}
		if ids[tc.ID] {
			return fmt.Errorf("test_cases[%d]: duplicate id %d", i, tc.ID)
		}
		ids[tc.ID] = true

		if len(tc.ExpectedResults) == 0 {
			return fmt.Errorf("test_cases[%d]: at least one expected result is required", i)
		}
		candidate := tc.toTestCase()
		if err := schema.ValidateTestCase(&candidate); err != nil {
			return fmt.Errorf("test_cases[%d]: %w", i, err)
		}

		if len(tc.Categories) == 0 {
			return fmt.Errorf("test_cases[%d]: at least one category is required", i)
		}
		for _, c := range tc.Categories {
			if _, ok := schema.ParseCategory(c); !ok {
				return fmt.Errorf("test_cases[%d]: unknown category '%s'", i, c)
			}
		}
	}

	if len(output.ExecutionOrder) != len(output.TestCases) {
		return fmt.Errorf("execution_order: must list all %d test cases exactly once, got %d entries",
			len(output.TestCases), len(output.ExecutionOrder))
	}
	seen := make(map[uint64]bool, len(output.ExecutionOrder))
	for i, id := range output.ExecutionOrder {
		if !ids[id] {
			return fmt.Errorf("execution_order[%d]: unknown test case id %d", i, id)
		}
		if seen[id] {
			return fmt.Errorf("execution_order[%d]: id %d listed twice", i, id)
		}
		seen[id] = true
	}

	return nil
}

// BuildSuite converts a validated model reply into a TestSuite. A case
// appears once in every category it names and once in OrderedSequence.
func BuildSuite(output *TestSuiteGenOutput) (*schema.TestSuite, error) {
	if err := ValidateTestSuiteGen(output); err != nil {
		return nil, err
	}

	suite := &schema.TestSuite{}
	byID := make(map[uint64]schema.TestCase, len(output.TestCases))

	for _, tcJSON := range output.TestCases {
		tc := tcJSON.toTestCase()
		byID[tc.ID] = tc

		added := make(map[schema.Category]bool, len(tcJSON.Categories))
		for _, name := range tcJSON.Categories {
			c, _ := schema.ParseCategory(name)
			if added[c] {
				continue
			}
			added[c] = true
			suite.Append(c, tc)
		}
	}

	suite.OrderedSequence = make([]schema.TestCase, 0, len(output.ExecutionOrder))
	for _, id := range output.ExecutionOrder {
		suite.OrderedSequence = append(suite.OrderedSequence, byID[id])
	}

	return suite, nil
}

func (tc TestCaseJSON) toTestCase() schema.TestCase {
	return schema.TestCase{
		ID:              tc.ID,
		Type:            strings.TrimSpace(tc.Type),
		Title:           strings.TrimSpace(tc.Title),
		Preconditions:   nonNil(tc.Preconditions),
		Steps:           nonNil(tc.Steps),
		ExpectedResults: nonNil(tc.ExpectedResults),
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
