package schema

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsRequirementLine reports whether an already-trimmed line qualifies as a
// requirement: longer than MinRequirementLength characters and containing at
// least one letter.
func IsRequirementLine(line string) bool {
	if utf8.RuneCountInString(line) <= MinRequirementLength {
		return false
	}
	return strings.IndexFunc(line, unicode.IsLetter) >= 0
}

// ValidateTestCase validates a single test case.
func ValidateTestCase(tc *TestCase) error {
	if strings.TrimSpace(tc.Title) == "" {
		return fmt.Errorf("TC-%d: title is required", tc.ID)
	}
	if len(tc.Title) > TitleMax {
		return fmt.Errorf("TC-%d: title must be at most %d characters", tc.ID, TitleMax)
	}
	if strings.TrimSpace(tc.Type) == "" || len(tc.Type) > TestCaseTypeMax {
		return fmt.Errorf("TC-%d: type must be 1-%d characters", tc.ID, TestCaseTypeMax)
	}
	if len(tc.Steps) == 0 || len(tc.Steps) > StepsMax {
		return fmt.Errorf("TC-%d: must have 1-%d steps", tc.ID, StepsMax)
	}
	return nil
}

// ValidateSuite checks that OrderedSequence holds exactly the union of all
// category members, each exactly once. Categories may share cases.
func ValidateSuite(s *TestSuite) error {
	members := make(map[uint64]bool)
	for _, c := range categoryOrder {
		for _, tc := range s.Cases(c) {
			members[tc.ID] = true
		}
	}

	seen := make(map[uint64]bool, len(s.OrderedSequence))
	for i, tc := range s.OrderedSequence {
		if seen[tc.ID] {
			return fmt.Errorf("orderedSequence[%d]: TC-%d appears more than once", i, tc.ID)
		}
		seen[tc.ID] = true
		if !members[tc.ID] {
			return fmt.Errorf("orderedSequence[%d]: TC-%d is not in any category", i, tc.ID)
		}
	}

	for _, c := range categoryOrder {
		for _, tc := range s.Cases(c) {
			if !seen[tc.ID] {
				return fmt.Errorf("%s: TC-%d is missing from orderedSequence", c, tc.ID)
			}
		}
	}
	return nil
}
