package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"casegen/internal/export"
	"casegen/pkg/schema"
)

const docxMediaType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const exampleText = "As a user I want to log in so I can access my account.\n123\nAs a user I want to reset my password."

// recorder is an Observer that keeps everything it sees.
type recorder struct {
	mu       sync.Mutex
	changes  []StateChange
	progress []int
}

func (r *recorder) StateChanged(change StateChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
}

func (r *recorder) ProgressChanged(percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, percent)
}

func (r *recorder) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, len(r.changes))
	for i, c := range r.changes {
		out[i] = c.To
	}
	return out
}

func (r *recorder) progressValues() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.progress...)
}

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) WriteAll(text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

func textDecoder(text string) DecodeFunc {
	return func(ctx context.Context, name string, data []byte) (string, error) {
		return text, nil
	}
}

func loginSuite() *schema.TestSuite {
	return &schema.TestSuite{
		Functional: []schema.TestCase{{
			ID:              1,
			Type:            "functional",
			Title:           "Log in with valid credentials",
			Preconditions:   []string{},
			Steps:           []string{"Open login page", "Enter credentials", "Submit"},
			ExpectedResults: []string{"User is logged in"},
		}},
	}
}

func newTestController(t *testing.T, gateway Gateway, opts ...Option) (*Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append([]Option{
		WithObserver(rec),
		WithProgressTick(time.Hour),
		WithClock(func() time.Time { return time.Date(2025, 3, 4, 9, 15, 0, 0, time.UTC) }),
		WithClipboard(&fakeClipboard{}),
	}, opts...)

	c, err := NewController(gateway, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, rec
}

func TestControllerEndToEnd(t *testing.T) {
	gateway := &MockGateway{Suite: loginSuite()}
	c, rec := newTestController(t, gateway, WithDecoder(textDecoder(exampleText)))

	require.NoError(t, c.SelectFile("requirements.docx", docxMediaType, []byte("PK")))
	require.NoError(t, c.Generate(context.Background()))

	assert.Equal(t, []State{StateFileSelected, StateExtracting, StateAwaitingGeneration, StateResults}, rec.states())
	assert.Equal(t, []string{
		"As a user I want to log in so I can access my account.",
		"As a user I want to reset my password.",
	}, gateway.Requirements())

	progress := rec.progressValues()
	require.NotEmpty(t, progress)
	assert.Equal(t, 100, progress[len(progress)-1])

	snap := c.Snapshot()
	assert.Equal(t, StateResults, snap.State)
	assert.Equal(t, 100, snap.Progress)
	assert.Empty(t, snap.ErrorMessage)
	assert.Len(t, snap.Requirements, 2)

	report, err := c.Report()
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(report, "Test Case ID: TC-1"))
	assert.Contains(t, report, "Generated: 3/4/2025, 9:15:00 AM")

	path, err := c.SaveArtifact(t.TempDir(), export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "test-cases-2025-03-04.csv", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), export.ByteOrderMark))).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestControllerRejectsInvalidFile(t *testing.T) {
	c, rec := newTestController(t, &MockGateway{})

	err := c.SelectFile("notes.pdf", "application/pdf", []byte("%PDF"))
	var invalid *InvalidFileTypeError
	require.True(t, errors.As(err, &invalid))

	snap := c.Snapshot()
	assert.Equal(t, StateError, snap.State)
	assert.Equal(t, InvalidFileTypeMessage, snap.ErrorMessage)

	require.NoError(t, c.Reset())
	assert.Equal(t, StateIdle, c.Snapshot().State)
	assert.Empty(t, c.Snapshot().ErrorMessage)
	assert.Equal(t, []State{StateError, StateIdle}, rec.states())
}

func TestControllerReplacesSelection(t *testing.T) {
	c, _ := newTestController(t, &MockGateway{})

	require.NoError(t, c.SelectFile("first.doc", "application/msword", []byte("a")))
	require.NoError(t, c.SelectFile("second.DOCX", docxMediaType, []byte("b")))

	snap := c.Snapshot()
	assert.Equal(t, StateFileSelected, snap.State)
	assert.Equal(t, "second.DOCX", snap.FileName)
}

func TestControllerEmptyExtraction(t *testing.T) {
	gateway := &MockGateway{Suite: loginSuite()}
	c, rec := newTestController(t, gateway, WithDecoder(textDecoder("123\nshort\n\n   ")))

	require.NoError(t, c.SelectFile("spec.docx", docxMediaType, []byte("PK")))
	err := c.Generate(context.Background())

	var empty *EmptyExtractionError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, []State{StateFileSelected, StateExtracting, StateError}, rec.states())
	assert.Equal(t, EmptyExtractionMessage, c.Snapshot().ErrorMessage)
	assert.Equal(t, []int{100}, rec.progressValues())
	assert.Zero(t, gateway.Calls())
}

func TestControllerDecodeFailure(t *testing.T) {
	decoder := func(ctx context.Context, name string, data []byte) (string, error) {
		return "", errors.New("zip: not a valid zip file")
	}
	c, rec := newTestController(t, &MockGateway{}, WithDecoder(decoder))

	require.NoError(t, c.SelectFile("spec.docx", docxMediaType, []byte("garbage")))
	err := c.Generate(context.Background())

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "decode spec.docx: zip: not a valid zip file", c.Snapshot().ErrorMessage)
	assert.Equal(t, []State{StateFileSelected, StateExtracting, StateError}, rec.states())
	assert.Empty(t, rec.progressValues())
}

func TestControllerGenerationFailure(t *testing.T) {
	calls := 0
	gateway := GatewayFunc(func(ctx context.Context, requirements []string) (*schema.TestSuite, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("quota exceeded")
		}
		return nil, errors.New("")
	})
	c, rec := newTestController(t, gateway, WithDecoder(textDecoder(exampleText)))

	require.NoError(t, c.SelectFile("spec.docx", docxMediaType, []byte("PK")))
	err := c.Generate(context.Background())

	var failure *GenerationFailure
	require.True(t, errors.As(err, &failure))
	assert.True(t, failure.Retryable())
	assert.Equal(t, "quota exceeded", c.Snapshot().ErrorMessage)
	assert.Equal(t, []State{StateFileSelected, StateExtracting, StateAwaitingGeneration, StateError}, rec.states())

	// the message always belongs to the latest failure
	require.NoError(t, c.Reset())
	require.NoError(t, c.SelectFile("spec.docx", docxMediaType, []byte("PK")))
	require.Error(t, c.Generate(context.Background()))
	assert.Equal(t, GenerationFallbackError, c.Snapshot().ErrorMessage)
}

func TestControllerNoGateway(t *testing.T) {
	c, _ := newTestController(t, nil, WithDecoder(textDecoder(exampleText)))

	require.NoError(t, c.SelectFile("spec.docx", docxMediaType, []byte("PK")))
	err := c.Generate(context.Background())

	assert.ErrorIs(t, err, ErrNoGateway)
	assert.Equal(t, "generation gateway not configured", c.Snapshot().ErrorMessage)
}

func TestControllerNilSuite(t *testing.T) {
	c, _ := newTestController(t, &MockGateway{}, WithDecoder(textDecoder(exampleText)))

	require.NoError(t, c.SelectFile("spec.docx", docxMediaType, []byte("PK")))
	require.Error(t, c.Generate(context.Background()))
	assert.Equal(t, GenerationFallbackError, c.Snapshot().ErrorMessage)
}

func TestControllerIllegalTransitions(t *testing.T) {
	c, rec := newTestController(t, &MockGateway{Suite: loginSuite()}, WithDecoder(textDecoder(exampleText)))

	var transition *TransitionError
	err := c.Generate(context.Background())
	require.True(t, errors.As(err, &transition))
	assert.Equal(t, "generate", transition.Op)
	assert.Equal(t, StateIdle, transition.State)

	_, err = c.CopyReport()
	assert.True(t, errors.As(err, &transition))
	_, err = c.SaveArtifact(t.TempDir(), export.FormatText)
	assert.True(t, errors.As(err, &transition))
	assert.Empty(t, rec.states())

	require.NoError(t, c.SelectFile("spec.docx", docxMediaType, []byte("PK")))
	require.NoError(t, c.Generate(context.Background()))

	err = c.SelectFile("other.docx", docxMediaType, []byte("PK"))
	require.True(t, errors.As(err, &transition))
	assert.Equal(t, StateResults, transition.State)
	assert.Equal(t, StateResults, c.Snapshot().State)

	// "generate new"
	require.NoError(t, c.Reset())
	assert.Equal(t, StateIdle, c.Snapshot().State)
	assert.Nil(t, c.Snapshot().Suite)
}

func TestControllerProgressTicks(t *testing.T) {
	reached90 := make(chan struct{})
	var once sync.Once
	watcher := ObserverFuncs{OnProgress: func(p int) {
		if p == 90 {
			once.Do(func() { close(reached90) })
		}
	}}
	decoder := func(ctx context.Context, name string, data []byte) (string, error) {
		select {
		case <-reached90:
			return exampleText, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	c, rec := newTestController(t, &MockGateway{Suite: loginSuite()},
		WithObserver(watcher),
		WithDecoder(decoder),
		WithProgressTick(time.Millisecond),
	)

	require.NoError(t, c.SelectFile("spec.docx", docxMediaType, []byte("PK")))
	require.NoError(t, c.Generate(context.Background()))

	assert.Equal(t, []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, rec.progressValues())
}

func TestControllerResetDuringExtraction(t *testing.T) {
	decoder := func(ctx context.Context, name string, data []byte) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	gateway := &MockGateway{Suite: loginSuite()}
	c, rec := newTestController(t, gateway, WithDecoder(decoder), WithProgressTick(time.Millisecond))

	require.NoError(t, c.SelectFile("spec.docx", docxMediaType, []byte("PK")))

	done := make(chan error, 1)
	go func() { done <- c.Generate(context.Background()) }()

	require.Eventually(t, func() bool { return c.Snapshot().Progress >= 20 }, 5*time.Second, time.Millisecond)
	require.NoError(t, c.Reset())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrWorkflowReset)
	case <-time.After(5 * time.Second):
		t.Fatal("Generate did not return after Reset")
	}

	seen := len(rec.progressValues())
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, rec.progressValues(), seen, "no progress after reset")
	assert.NotContains(t, rec.progressValues(), 100)

	assert.Equal(t, []State{StateFileSelected, StateExtracting, StateIdle}, rec.states())
	assert.Equal(t, StateIdle, c.Snapshot().State)
	assert.Zero(t, gateway.Calls())
}

func TestControllerResetDuringGeneration(t *testing.T) {
	gateway := &MockGateway{Suite: loginSuite(), Block: make(chan struct{})}
	c, rec := newTestController(t, gateway, WithDecoder(textDecoder(exampleText)))

	require.NoError(t, c.SelectFile("spec.docx", docxMediaType, []byte("PK")))

	done := make(chan error, 1)
	go func() { done <- c.Generate(context.Background()) }()

	require.Eventually(t, func() bool { return gateway.Calls() == 1 }, 5*time.Second, time.Millisecond)
	require.NoError(t, c.Reset())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrWorkflowReset)
	case <-time.After(5 * time.Second):
		t.Fatal("Generate did not return after Reset")
	}

	assert.Equal(t, []State{StateFileSelected, StateExtracting, StateAwaitingGeneration, StateIdle}, rec.states())
	snap := c.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Nil(t, snap.Suite)
}

func TestControllerCopyReport(t *testing.T) {
	cb := &fakeClipboard{}
	c, _ := newTestController(t, &MockGateway{Suite: loginSuite()},
		WithDecoder(textDecoder(exampleText)),
		WithClipboard(cb),
	)

	require.NoError(t, c.SelectFile("spec.docx", docxMediaType, []byte("PK")))
	require.NoError(t, c.Generate(context.Background()))

	copied, err := c.CopyReport()
	require.NoError(t, err)
	assert.True(t, copied)
	assert.True(t, c.Snapshot().Copied)
	assert.True(t, strings.HasPrefix(cb.text, "TEST SUITE REPORT\n"))
}

func TestControllerCopyReportFailure(t *testing.T) {
	var logs bytes.Buffer
	c, rec := newTestController(t, &MockGateway{Suite: loginSuite()},
		WithDecoder(textDecoder(exampleText)),
		WithClipboard(&fakeClipboard{err: errors.New("no display")}),
		WithLogger(NewLoggerTo(&logs, "info")),
	)

	require.NoError(t, c.SelectFile("spec.docx", docxMediaType, []byte("PK")))
	require.NoError(t, c.Generate(context.Background()))
	before := len(rec.states())

	copied, err := c.CopyReport()
	require.NoError(t, err)
	assert.False(t, copied)

	snap := c.Snapshot()
	assert.Equal(t, StateResults, snap.State)
	assert.False(t, snap.Copied)
	assert.Len(t, rec.states(), before)
	assert.Contains(t, logs.String(), "copy to clipboard: no display")
}

func TestControllerSaveArtifactFailure(t *testing.T) {
	c, _ := newTestController(t, &MockGateway{Suite: loginSuite()}, WithDecoder(textDecoder(exampleText)))

	require.NoError(t, c.SelectFile("spec.docx", docxMediaType, []byte("PK")))
	require.NoError(t, c.Generate(context.Background()))

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := c.SaveArtifact(blocker, export.FormatText)
	var failure *ExportFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "txt", failure.Format)
	assert.Equal(t, StateResults, c.Snapshot().State)
}

func TestControllerClose(t *testing.T) {
	c, _ := newTestController(t, &MockGateway{})

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.ErrorIs(t, c.SelectFile("spec.docx", docxMediaType, nil), ErrControllerClosed)
	assert.ErrorIs(t, c.Generate(context.Background()), ErrControllerClosed)
	assert.ErrorIs(t, c.Reset(), ErrControllerClosed)
	_, err := c.CopyReport()
	assert.ErrorIs(t, err, ErrControllerClosed)
	_, err = c.Report()
	assert.ErrorIs(t, err, ErrControllerClosed)
}

func TestControllersAreIndependent(t *testing.T) {
	a, _ := newTestController(t, &MockGateway{})
	b, _ := newTestController(t, &MockGateway{})

	assert.NotEqual(t, a.RunID(), b.RunID())
	assert.True(t, strings.HasPrefix(a.RunID(), "RUN-"))

	require.NoError(t, a.SelectFile("spec.docx", docxMediaType, []byte("PK")))
	assert.Equal(t, StateFileSelected, a.Snapshot().State)
	assert.Equal(t, StateIdle, b.Snapshot().State)
}

func TestControllerSpans(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	gateway := &MockGateway{Err: errors.New("upstream unavailable")}
	c, _ := newTestController(t, gateway,
		WithDecoder(textDecoder(exampleText)),
		WithTracer(tp.Tracer("test")),
	)

	require.NoError(t, c.SelectFile("spec.docx", docxMediaType, []byte("PK")))
	require.Error(t, c.Generate(context.Background()))

	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range spans.Ended() {
		byName[s.Name()] = s
	}
	require.Contains(t, byName, "workflow.generate")
	require.Contains(t, byName, "workflow.extract")
	require.Contains(t, byName, "workflow.gateway")

	root := byName["workflow.generate"]
	assert.Equal(t, root.SpanContext().SpanID(), byName["workflow.extract"].Parent().SpanID())
	assert.Equal(t, root.SpanContext().SpanID(), byName["workflow.gateway"].Parent().SpanID())

	assert.Equal(t, codes.Unset, byName["workflow.extract"].Status().Code)
	assert.Equal(t, codes.Error, byName["workflow.gateway"].Status().Code)
	assert.Equal(t, codes.Error, root.Status().Code)
	assert.Equal(t, "upstream unavailable", root.Status().Description)
}
