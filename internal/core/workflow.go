package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"casegen/internal/document"
	"casegen/internal/export"
	"casegen/pkg/schema"
)

// TracerName names the tracer used for workflow spans.
const TracerName = "casegen/core"

// StateChange describes a single workflow transition.
type StateChange struct {
	RunID   string
	From    State
	To      State
	Message string // error message when To is StateError
	At      time.Time
}

// Observer is notified of every state change and progress report, in order.
// Calls are made while the controller is locked; observers must not call
// back into the controller.
type Observer interface {
	StateChanged(change StateChange)
	ProgressChanged(percent int)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnState    func(StateChange)
	OnProgress func(int)
}

func (o ObserverFuncs) StateChanged(change StateChange) {
	if o.OnState != nil {
		o.OnState(change)
	}
}

func (o ObserverFuncs) ProgressChanged(percent int) {
	if o.OnProgress != nil {
		o.OnProgress(percent)
	}
}

// DecodeFunc turns a selected document into raw text.
type DecodeFunc func(ctx context.Context, name string, data []byte) (string, error)

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(logger Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, o) }
}

// WithProgressTick sets the interval of the synthetic extraction progress.
func WithProgressTick(d time.Duration) Option {
	return func(c *Controller) { c.tick = d }
}

func WithDecoder(decode DecodeFunc) Option {
	return func(c *Controller) { c.decode = decode }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithClipboard(cb export.Clipboard) Option {
	return func(c *Controller) { c.clipboard = cb }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Controller) { c.tracer = tracer }
}

// Controller drives one upload/generation workflow:
//
//	Idle -> FileSelected -> Extracting -> AwaitingGeneration -> Results
//	                                  \-> Error             \-> Error
//
// Reset returns to Idle from any state. A Controller owns its Session; use
// one Controller per workflow instance.
type Controller struct {
	gateway   Gateway
	logger    Logger
	observers []Observer
	tick      time.Duration
	decode    DecodeFunc
	now       func() time.Time
	clipboard export.Clipboard
	tracer    trace.Tracer

	runID string

	mu      sync.Mutex
	session *Session
	epoch   uint64 // incremented by Reset and Close; stale runs compare it
	cancel  context.CancelFunc
	ticker  *progressTicker
	closed  bool
}

// NewController creates an idle controller. A nil gateway is allowed;
// generation then fails with ErrNoGateway.
func NewController(gateway Gateway, opts ...Option) (*Controller, error) {
	runID, err := schema.NewRunID()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}

	c := &Controller{
		gateway:   gateway,
		logger:    NopLogger(),
		tick:      DefaultProgressTick,
		decode:    document.Decode,
		now:       time.Now,
		clipboard: export.SystemClipboard{},
		tracer:    otel.Tracer(TracerName),
		runID:     runID,
		session:   NewSession(runID),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("run_id", runID)

	return c, nil
}

// RunID returns the controller's run ID.
func (c *Controller) RunID() string {
	return c.runID
}

// Snapshot returns a copy of the current session.
func (c *Controller) Snapshot() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Clone()
}

// SelectFile validates and stores the chosen document. It is allowed from
// Idle and FileSelected; a rejected file moves the workflow to Error.
func (c *Controller) SelectFile(name, mediaType string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrControllerClosed
	}
	if s := c.session.State; s != StateIdle && s != StateFileSelected {
		return &TransitionError{Op: "select file", State: s}
	}

	c.logger.Info("File selected", "file", name, "media_type", mediaType, "size", len(data))

	if err := ValidateUpload(name, mediaType); err != nil {
		c.logger.Warn("File rejected", "file", name, "error", err.Error())
		c.failLocked(err)
		return err
	}

	s := c.session
	s.FileName = name
	s.MediaType = mediaType
	s.data = data
	s.Requirements = nil
	s.Suite = nil
	s.Progress = 0
	s.Copied = false
	c.setStateLocked(StateFileSelected, "")
	return nil
}

// Generate extracts requirements from the selected file and sends them to
// the gateway. It blocks until the workflow reaches Results or Error and
// returns the error of the failing stage. If the workflow is reset or closed
// meanwhile, Generate returns ErrWorkflowReset and the late result is
// discarded.
func (c *Controller) Generate(ctx context.Context) (err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	if c.session.State != StateFileSelected {
		state := c.session.State
		c.mu.Unlock()
		return &TransitionError{Op: "generate", State: state}
	}

	epoch := c.epoch
	name, data := c.session.FileName, c.session.data

	ctx, span := c.tracer.Start(ctx, "workflow.generate", trace.WithAttributes(
		attribute.String("casegen.run_id", c.runID),
		attribute.String("casegen.file", name),
	))
	defer func() {
		endSpan(span, err)
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.cancel = cancel

	c.session.Progress = 0
	c.setStateLocked(StateExtracting, "")
	ticker := startProgress(c.tick, func(percent int) {
		c.reportProgress(epoch, percent)
	})
	c.ticker = ticker
	c.mu.Unlock()

	// Stage 1: decode and extract
	requirements, decoded, err := c.extract(runCtx, name, data)
	ticker.Stop()

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return ErrWorkflowReset
	}
	c.ticker = nil
	if decoded {
		c.session.Progress = progressDone
		c.notifyProgressLocked(progressDone)
	}
	if err != nil {
		c.logger.Warn("Extraction failed", "error", err.Error())
		c.failLocked(err)
		c.cancel = nil
		c.mu.Unlock()
		return err
	}
	c.logger.Info("Requirements extracted", "count", len(requirements))
	c.session.Requirements = requirements
	c.setStateLocked(StateAwaitingGeneration, "")
	gateway := c.gateway
	c.mu.Unlock()

	// Stage 2: generation
	suite, genErr := c.callGateway(runCtx, gateway, requirements)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		c.logger.Info("Discarding generation result of a reset run")
		return ErrWorkflowReset
	}
	c.cancel = nil

	if genErr != nil {
		failure := NewGenerationFailure(genErr)
		c.logger.Error("Generation failed", "error", failure.Message)
		c.failLocked(failure)
		return failure
	}

	if err := schema.ValidateSuite(suite); err != nil {
		c.logger.Warn("Generated suite violates ordered sequence invariant", "error", err.Error())
	}

	c.logger.Info("Test suite generated",
		"categorized", suite.Len(),
		"ordered", len(suite.OrderedSequence),
	)
	c.session.Suite = suite
	c.setStateLocked(StateResults, "")
	return nil
}

// extract decodes the document and runs the requirement extractor. decoded
// reports whether the document text was obtained.
func (c *Controller) extract(ctx context.Context, name string, data []byte) (requirements []string, decoded bool, err error) {
	ctx, span := c.tracer.Start(ctx, "workflow.extract")
	defer func() {
		span.SetAttributes(attribute.Int("casegen.requirements", len(requirements)))
		endSpan(span, err)
	}()

	text, err := c.decode(ctx, name, data)
	if err != nil {
		return nil, false, &DecodeError{Name: name, Err: err}
	}

	requirements, err = ExtractRequirements(text)
	return requirements, true, err
}

func (c *Controller) callGateway(ctx context.Context, gateway Gateway, requirements []string) (suite *schema.TestSuite, err error) {
	ctx, span := c.tracer.Start(ctx, "workflow.gateway", trace.WithAttributes(
		attribute.Int("casegen.requirements", len(requirements)),
	))
	defer func() {
		endSpan(span, err)
	}()

	if gateway == nil {
		return nil, ErrNoGateway
	}
	suite, err = gateway.Generate(ctx, requirements)
	if err != nil {
		return nil, err
	}
	if suite == nil {
		return nil, NewGenerationFailure(nil)
	}
	return suite, nil
}

// Reset abandons the current run and returns to Idle. An in-flight
// extraction or generation is cancelled and its result discarded.
func (c *Controller) Reset() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}

	ticker := c.teardownLocked()
	from := c.session.State
	c.session = NewSession(c.runID)
	c.session.State = from
	if from != StateIdle {
		c.setStateLocked(StateIdle, "")
	}
	c.mu.Unlock()

	// The ticker reports under c.mu, so it is stopped after unlocking.
	if ticker != nil {
		ticker.Stop()
	}
	c.logger.Info("Workflow reset", "from", from.String())
	return nil
}

// Close tears down any in-flight run. Every later call returns
// ErrControllerClosed.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	ticker := c.teardownLocked()
	c.closed = true
	c.mu.Unlock()

	if ticker != nil {
		ticker.Stop()
	}
	return nil
}

// teardownLocked invalidates the running generation, if any, and returns its
// ticker for the caller to stop once c.mu is released.
func (c *Controller) teardownLocked() *progressTicker {
	c.epoch++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	ticker := c.ticker
	c.ticker = nil
	return ticker
}

// Report renders the current results as the plain-text report.
func (c *Controller) Report() (string, error) {
	suite, err := c.results("report")
	if err != nil {
		return "", err
	}
	return export.FormatReport(suite, c.now()), nil
}

// CopyReport copies the text report to the clipboard. A clipboard failure is
// logged and reported as false; it never changes the workflow state.
func (c *Controller) CopyReport() (bool, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrControllerClosed
	}
	if c.session.State != StateResults {
		state := c.session.State
		c.mu.Unlock()
		return false, &TransitionError{Op: "copy report", State: state}
	}
	epoch, suite, cb := c.epoch, c.session.Suite, c.clipboard
	c.mu.Unlock()

	err := export.ErrClipboardUnsupported
	if cb != nil {
		err = cb.WriteAll(export.FormatReport(suite, c.now()))
	}
	if err != nil {
		failure := &ClipboardFailure{Err: err}
		c.logger.Warn("Copy to clipboard failed", "error", failure.Error())
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch == epoch && c.session.State == StateResults {
		c.session.Copied = true
	}
	return true, nil
}

// SaveArtifact writes the results in format to dir and returns the file
// path. Failures are logged and returned as *ExportFailure; the workflow
// state is unchanged either way.
func (c *Controller) SaveArtifact(dir string, format export.Format) (string, error) {
	suite, err := c.results("save artifact")
	if err != nil {
		return "", err
	}

	path, err := export.WriteArtifact(dir, format, suite, c.now())
	if err != nil {
		failure := &ExportFailure{Path: dir, Format: string(format), Err: err}
		c.logger.Warn("Saving artifact failed", "error", failure.Error())
		return "", failure
	}

	c.logger.Info("Artifact saved", "path", path, "format", string(format))
	return path, nil
}

func (c *Controller) results(op string) (*schema.TestSuite, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrControllerClosed
	}
	if c.session.State != StateResults {
		return nil, &TransitionError{Op: op, State: c.session.State}
	}
	return c.session.Suite, nil
}

func (c *Controller) reportProgress(epoch uint64, percent int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch || c.session.State != StateExtracting {
		return
	}
	c.session.Progress = percent
	c.notifyProgressLocked(percent)
}

// failLocked records err as the current error and enters Error.
func (c *Controller) failLocked(err error) {
	c.session.Err = err
	c.session.ErrorMessage = err.Error()
	c.setStateLocked(StateError, c.session.ErrorMessage)
}

func (c *Controller) setStateLocked(to State, message string) {
	change := StateChange{
		RunID:   c.session.RunID,
		From:    c.session.State,
		To:      to,
		Message: message,
		At:      c.now(),
	}
	c.session.State = to
	if to != StateError {
		c.session.ErrorMessage = ""
		c.session.Err = nil
	}

	c.logger.Debug("Workflow state changed", "from", change.From.String(), "to", to.String())
	for _, o := range c.observers {
		o.StateChanged(change)
	}
}

func (c *Controller) notifyProgressLocked(percent int) {
	for _, o := range c.observers {
		o.ProgressChanged(percent)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, strings.TrimSpace(err.Error()))
	}
	span.End()
}
