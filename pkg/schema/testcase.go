package schema

import "encoding/json"

// TestCase is a single generated test case.
type TestCase struct {
	ID              uint64   `json:"id" yaml:"id"`
	Type            string   `json:"type" yaml:"type" jsonschema:"minLength=1,maxLength=50"`
	Title           string   `json:"title" yaml:"title" jsonschema:"minLength=1,maxLength=300"`
	Preconditions   []string `json:"preconditions" yaml:"preconditions"`
	Steps           []string `json:"steps" yaml:"steps" jsonschema:"minItems=1,maxItems=50"`
	ExpectedResults []string `json:"expectedResults" yaml:"expectedResults"`
}

// UnmarshalJSON accepts gateway payloads that label a case with
// "description" instead of "title".
func (tc *TestCase) UnmarshalJSON(data []byte) error {
	type testCaseAlias TestCase
	var temp struct {
		testCaseAlias
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}

	*tc = TestCase(temp.testCaseAlias)
	if tc.Title == "" {
		tc.Title = temp.Description
	}
	return nil
}

// TestSuite is the categorized and ordered collection of generated test cases.
type TestSuite struct {
	Functional      []TestCase `json:"functional" yaml:"functional"`
	Boundary        []TestCase `json:"boundary" yaml:"boundary"`
	EdgeCases       []TestCase `json:"edgeCases" yaml:"edgeCases"`
	Exploratory     []TestCase `json:"exploratory" yaml:"exploratory"`
	Positive        []TestCase `json:"positive" yaml:"positive"`
	Negative        []TestCase `json:"negative" yaml:"negative"`
	OrderedSequence []TestCase `json:"orderedSequence" yaml:"orderedSequence"`
}

// Cases returns the cases of a category. Unknown categories yield nil.
func (s *TestSuite) Cases(c Category) []TestCase {
	switch c {
	case CategoryFunctional:
		return s.Functional
	case CategoryBoundary:
		return s.Boundary
	case CategoryEdgeCases:
		return s.EdgeCases
	case CategoryExploratory:
		return s.Exploratory
	case CategoryPositive:
		return s.Positive
	case CategoryNegative:
		return s.Negative
	}
	return nil
}

// Append adds a case to a category.
func (s *TestSuite) Append(c Category, tc TestCase) {
	switch c {
	case CategoryFunctional:
		s.Functional = append(s.Functional, tc)
	case CategoryBoundary:
		s.Boundary = append(s.Boundary, tc)
	case CategoryEdgeCases:
		s.EdgeCases = append(s.EdgeCases, tc)
	case CategoryExploratory:
		s.Exploratory = append(s.Exploratory, tc)
	case CategoryPositive:
		s.Positive = append(s.Positive, tc)
	case CategoryNegative:
		s.Negative = append(s.Negative, tc)
	}
}

// Len returns the number of categorized cases, counting a case once per
// category it appears in. OrderedSequence is not included.
func (s *TestSuite) Len() int {
	n := 0
	for _, c := range categoryOrder {
		n += len(s.Cases(c))
	}
	return n
}

// Counts returns the size of every category.
func (s *TestSuite) Counts() map[Category]int {
	counts := make(map[Category]int, len(categoryOrder))
	for _, c := range categoryOrder {
		counts[c] = len(s.Cases(c))
	}
	return counts
}
