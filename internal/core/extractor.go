package core

import (
	"strings"
	"unicode"

	"casegen/pkg/schema"
)

// ExtractRequirements turns raw document text into at most
// schema.MaxRequirements requirement lines, preserving their order.
func ExtractRequirements(text string) ([]string, error) {
	lines := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\r' || r == '\n'
	})

	requirements := make([]string, 0, schema.MaxRequirements)
	for _, line := range lines {
		line = strings.TrimFunc(line, isTrimmable)
		if line == "" || !schema.IsRequirementLine(line) {
			continue
		}
		requirements = append(requirements, line)
		if len(requirements) == schema.MaxRequirements {
			break
		}
	}

	if len(requirements) == 0 {
		return nil, &EmptyExtractionError{}
	}
	return requirements, nil
}

func isTrimmable(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
