package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"casegen/pkg/schema"
)

// OfflineModelName is the Genkit name of the local skeleton-suite model.
const OfflineModelName = "casegen/offline"

// RegisterOfflineModel registers a local model that answers a
// TestSuiteGenInput (sent as JSON text) with a deterministic skeleton suite.
// It needs no network access or API key.
func RegisterOfflineModel(ctx context.Context) (ai.Model, error) {
	g := genkit.Init(ctx)

	genkit.DefineModel(
		g,
		OfflineModelName,
		&ai.ModelOptions{
			Label: "Offline skeleton suite",
			Supports: &ai.ModelSupports{
				Multiturn:  false,
				SystemRole: false,
			},
		},
		func(ctx context.Context, req *ai.ModelRequest, cb ai.ModelStreamCallback) (*ai.ModelResponse, error) {
			var input TestSuiteGenInput
			if err := json.Unmarshal([]byte(requestText(req)), &input); err != nil {
				return nil, fmt.Errorf("offline model: decode input: %w", err)
			}

			body, err := json.Marshal(skeletonSuite(input.Requirements))
			if err != nil {
				return nil, fmt.Errorf("offline model: encode output: %w", err)
			}

			return &ai.ModelResponse{
				Request: req,
				Message: &ai.Message{
					Role: ai.RoleModel,
					Content: []*ai.Part{
						ai.NewTextPart(string(body)),
					},
				},
			}, nil
		},
	)

	model := genkit.LookupModel(g, OfflineModelName)
	if model == nil {
		return nil, fmt.Errorf("offline model %s not registered", OfflineModelName)
	}
	return model, nil
}

// ExecuteOfflineSuiteGen runs the test suite generation task against a model
// registered by RegisterOfflineModel.
func ExecuteOfflineSuiteGen(ctx context.Context, model ai.Model, input *TestSuiteGenInput) (*TestSuiteGenOutput, error) {
	if len(input.Requirements) == 0 {
		return nil, fmt.Errorf("offline suite generation: no requirements")
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("offline suite generation: encode input: %w", err)
	}

	resp, err := model.Generate(ctx, &ai.ModelRequest{
		Messages: []*ai.Message{
			{
				Role: ai.RoleUser,
				Content: []*ai.Part{
					ai.NewTextPart(string(body)),
				},
			},
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("offline suite generation: %w", err)
	}
	if resp == nil || resp.Message == nil {
		return nil, fmt.Errorf("offline suite generation: empty response")
	}

	var text strings.Builder
	for _, part := range resp.Message.Content {
		text.WriteString(part.Text)
	}

	var output TestSuiteGenOutput
	if err := json.Unmarshal([]byte(text.String()), &output); err != nil {
		return nil, fmt.Errorf("offline suite generation: decode output: %w", err)
	}
	if err := ValidateTestSuiteGen(&output); err != nil {
		return nil, fmt.Errorf("offline suite generation: %w", err)
	}
	return &output, nil
}

func requestText(req *ai.ModelRequest) string {
	var sb strings.Builder
	for _, msg := range req.Messages {
		if msg == nil {
			continue
		}
		for _, part := range msg.Content {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// skeletonSuite derives a functional/positive and a negative case from every
// requirement, plus a boundary case when the requirement mentions a number.
func skeletonSuite(requirements []string) *TestSuiteGenOutput {
	out := &TestSuiteGenOutput{
		TestCases:      []TestCaseJSON{},
		ExecutionOrder: []uint64{},
	}

	var nextID uint64
	add := func(tc TestCaseJSON) {
		nextID++
		tc.ID = nextID
		tc.Title = clip(tc.Title, schema.TitleMax)
		out.TestCases = append(out.TestCases, tc)
		out.ExecutionOrder = append(out.ExecutionOrder, tc.ID)
	}

	for i, req := range requirements {
		ref := fmt.Sprintf("requirement %d", i+1)

		add(TestCaseJSON{
			Type:          "functional",
			Title:         "Verify " + req,
			Categories:    []string{string(schema.CategoryFunctional), string(schema.CategoryPositive)},
			Preconditions: []string{"System is available", "Test data for " + ref + " is prepared"},
			Steps: []string{
				"Perform the action described by " + ref + " with valid input",
				"Observe the system response",
			},
			ExpectedResults: []string{"The system behaves as stated: " + req},
		})

		add(TestCaseJSON{
			Type:          "negative",
			Title:         "Reject invalid input for " + ref,
			Categories:    []string{string(schema.CategoryNegative)},
			Preconditions: []string{"System is available"},
			Steps: []string{
				"Perform the action described by " + ref + " with invalid or missing input",
				"Observe the system response",
			},
			ExpectedResults: []string{"The input is rejected with a clear message", "No data is changed"},
		})

		if strings.IndexFunc(req, unicode.IsDigit) >= 0 {
			add(TestCaseJSON{
				Type:          "boundary",
				Title:         "Check limits stated in " + ref,
				Categories:    []string{string(schema.CategoryBoundary)},
				Preconditions: []string{},
				Steps: []string{
					"Use the exact limit stated in " + ref,
					"Use one below and one above the limit",
				},
				ExpectedResults: []string{"Values at the limit are accepted", "Values beyond the limit are rejected"},
			})
		}
	}

	return out
}

// clip shortens s to at most max bytes without splitting a rune.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	end := 0
	for i := range s {
		if i > max {
			break
		}
		end = i
	}
	return s[:end]
}
