package schema

import "strings"

// Category identifies one of the fixed test-case groupings of a suite.
type Category string

const (
	CategoryFunctional  Category = "functional"
	CategoryBoundary    Category = "boundary"
	CategoryEdgeCases   Category = "edgeCases"
	CategoryExploratory Category = "exploratory"
	CategoryPositive    Category = "positive"
	CategoryNegative    Category = "negative"
)

// categoryOrder is the order in which categories are rendered and exported.
var categoryOrder = []Category{
	CategoryFunctional,
	CategoryBoundary,
	CategoryEdgeCases,
	CategoryExploratory,
	CategoryPositive,
	CategoryNegative,
}

var categoryHeadings = map[Category]string{
	CategoryFunctional:  "FUNCTIONAL",
	CategoryBoundary:    "BOUNDARY",
	CategoryEdgeCases:   "EDGE CASE",
	CategoryExploratory: "EXPLORATORY",
	CategoryPositive:    "POSITIVE",
	CategoryNegative:    "NEGATIVE",
}

// Categories returns every category in rendering order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// ParseCategory maps a category key to its Category. Matching ignores case.
func ParseCategory(s string) (Category, bool) {
	for _, c := range categoryOrder {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Heading returns the upper-case report heading of the category.
func (c Category) Heading() string {
	return categoryHeadings[c]
}

// Label returns a short human-readable name, e.g. "Edge Cases".
func (c Category) Label() string {
	switch c {
	case CategoryEdgeCases:
		return "Edge Cases"
	case "":
		return ""
	}
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Extraction limits.
const (
	MinRequirementLength = 10 // a requirement line must be strictly longer
	MaxRequirements      = 20
)

// ValidationLimits for generated test cases.
const (
	TitleMax          = 300
	StepsMax          = 50
	TestCaseTypeMax   = 50
	SuiteCasesMax     = 500
	RequirementMaxLen = 2000
)
