package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casegen/internal/core"
	"casegen/pkg/schema"
)

func sampleSuite() *schema.TestSuite {
	login := schema.TestCase{ID: 1, Type: "Functional", Title: "Login", Steps: []string{"Open"}, ExpectedResults: []string{"Shown"}}
	logout := schema.TestCase{ID: 2, Type: "Functional", Title: "Logout", Steps: []string{"Click"}, ExpectedResults: []string{"Gone"}}
	bad := schema.TestCase{ID: 3, Type: "Negative", Title: "Bad password", Steps: []string{"Type"}, ExpectedResults: []string{"Rejected"}}
	return &schema.TestSuite{
		Functional:      []schema.TestCase{login, logout},
		Negative:        []schema.TestCase{bad},
		OrderedSequence: []schema.TestCase{login, logout, bad},
	}
}

func TestSummaryTable(t *testing.T) {
	out := SummaryTable(sampleSuite())

	for _, c := range schema.Categories() {
		assert.Contains(t, out, c.Label())
	}
	assert.Contains(t, out, "Ordered sequence")
	assert.Contains(t, out, "Total")

	var functionalRow string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Functional") {
			functionalRow = line
		}
	}
	assert.Contains(t, functionalRow, "2")
}

func TestRunSummary(t *testing.T) {
	at := time.Date(2025, 3, 4, 9, 15, 0, 0, time.UTC)
	out := RunSummary("abc123", "reqs.docx", 4, at)

	assert.Contains(t, out, "Run:")
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, "reqs.docx")
	assert.Contains(t, out, "3/4/2025, 9:15:00 AM")
	assert.Equal(t, 4, strings.Count(out, "\n"))
}

func TestMessages(t *testing.T) {
	assert.Contains(t, SuccessMsg("saved %s", "out.csv"), "saved out.csv")
	assert.Contains(t, WarnMsg("copy failed"), "copy failed")
	assert.Contains(t, ErrorMsg("boom %d", 1), "boom 1")
	assert.Contains(t, InfoMsg("hello"), "hello")
}

func TestProgressObserverTransitions(t *testing.T) {
	var buf bytes.Buffer
	obs := NewProgressObserver(&buf)

	obs.StateChanged(core.StateChange{From: core.StateIdle, To: core.StateFileSelected})
	obs.StateChanged(core.StateChange{From: core.StateFileSelected, To: core.StateExtracting})
	obs.ProgressChanged(10)
	obs.ProgressChanged(100)
	obs.StateChanged(core.StateChange{From: core.StateExtracting, To: core.StateAwaitingGeneration})
	obs.StateChanged(core.StateChange{From: core.StateAwaitingGeneration, To: core.StateResults})

	out := buf.String()
	assert.Equal(t, 100, obs.Percent())
	assert.Contains(t, out, "File accepted")
	assert.Contains(t, out, "Generating test cases")
	assert.Contains(t, out, "Test cases generated")
	assert.Nil(t, obs.bar)
}

func TestProgressObserverError(t *testing.T) {
	var buf bytes.Buffer
	obs := NewProgressObserver(&buf)

	obs.StateChanged(core.StateChange{From: core.StateFileSelected, To: core.StateExtracting})
	obs.ProgressChanged(30)
	obs.StateChanged(core.StateChange{From: core.StateExtracting, To: core.StateError, Message: "No requirements found"})

	assert.Contains(t, buf.String(), "✗ No requirements found")
	assert.Nil(t, obs.bar)

	buf.Reset()
	obs.StateChanged(core.StateChange{From: core.StateError, To: core.StateIdle})
	assert.Contains(t, buf.String(), "Workflow reset")
}

func TestProgressObserverWithController(t *testing.T) {
	var buf bytes.Buffer
	obs := NewProgressObserver(&buf)
	gateway := &core.MockGateway{Suite: sampleSuite()}

	c, err := core.NewController(gateway,
		core.WithObserver(obs),
		core.WithProgressTick(time.Hour),
		core.WithDecoder(func(_ context.Context, _ string, data []byte) (string, error) {
			return string(data), nil
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	text := "The system shall allow users to log in\nUsers must be able to reset passwords"
	require.NoError(t, c.SelectFile("reqs.docx", "", []byte(text)))
	require.NoError(t, c.Generate(context.Background()))

	assert.Equal(t, core.StateResults, c.Snapshot().State)
	assert.Equal(t, 100, obs.Percent())
	assert.Contains(t, buf.String(), "Test cases generated")
	assert.Len(t, gateway.Requirements(), 2)
}

func TestProgressObserverConcurrentPercent(t *testing.T) {
	obs := NewProgressObserver(io.Discard)
	obs.StateChanged(core.StateChange{From: core.StateFileSelected, To: core.StateExtracting})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for p := 1; p <= 100; p++ {
			obs.ProgressChanged(p)
		}
	}()
	go func() {
		defer wg.Done()
		last := 0
		for i := 0; i < 100; i++ {
			p := obs.Percent()
			assert.GreaterOrEqual(t, p, last)
			last = p
		}
	}()
	wg.Wait()

	assert.Equal(t, 100, obs.Percent())
}
