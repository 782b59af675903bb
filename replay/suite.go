package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// DefaultStagger is the fixed start offset between members of a batch
// group. Offsets are fixed, not measured, so generated tests stay
// deterministic.
const DefaultStagger = 20 * time.Millisecond

// ErrSkipped marks a test body that did not run because its predecessor
// failed or was itself skipped. Not an error in the runner's eyes; Run
// translates it to a skip.
var ErrSkipped = errors.New("predecessor failed or was skipped")

// Option configures a Suite.
type Option func(*Suite)

// WithStagger overrides the batch stagger offset.
func WithStagger(d time.Duration) Option {
	return func(s *Suite) { s.stagger = d }
}

// WithLogger attaches a logger. Suites log nothing by default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Suite) { s.logger = logger }
}

// WithTokenGenerator overrides the session token source, for
// deterministic log output in tests.
func WithTokenGenerator(gen TokenGenerator) Option {
	return func(s *Suite) { s.tokens = gen }
}

// Transition describes one generated test: the state it produces, the
// state it builds on, and the step groups replayed between them.
type Transition struct {
	Name   string
	After  string
	Target Document
	Groups []Group
}

// Suite runs the tests generated from one spec file against a single
// shared live document. The document is mutated only by the currently
// running test and reset to the predecessor's target state at the start
// of each test.
type Suite struct {
	t       *testing.T
	host    Host
	cells   map[string]*Cell
	stagger time.Duration
	logger  *slog.Logger
	tokens  TokenGenerator
	session string
}

// NewSuite acquires a fresh live document via factory and initializes
// default selection behavior (caret) for every scope.
func NewSuite(t *testing.T, factory HostFactory, opts ...Option) *Suite {
	t.Helper()

	s := &Suite{
		t:       t,
		cells:   make(map[string]*Cell),
		stagger: DefaultStagger,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		tokens:  UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.session = s.tokens.Generate()
	s.host = factory(t)

	ctx := context.Background()
	for _, scope := range []Scope{ScopeNormal, ScopeInsert} {
		if err := s.host.SetBehavior(ctx, scope, BehaviorCaret); err != nil {
			t.Fatalf("initializing selection behavior for %s: %v", scope, err)
		}
	}

	s.logger.Info("suite started", "session", s.session)
	return s
}

// Close releases the live document. Run it once per suite, deferred.
func (s *Suite) Close() {
	if err := s.host.Close(); err != nil {
		s.t.Errorf("releasing host: %v", err)
	}
	s.logger.Info("suite closed", "session", s.session)
}

// Seed registers an already-resolved document state for a root state.
func (s *Suite) Seed(name string, doc Document) {
	if _, exists := s.cells[name]; exists {
		s.t.Fatalf("duplicate state %q", name)
	}
	cell := NewCell()
	cell.Resolve(doc)
	s.cells[name] = cell
}

// State reports the cell status for a registered state name.
func (s *Suite) State(name string) (CellState, bool) {
	cell, ok := s.cells[name]
	if !ok {
		return CellPending, false
	}
	return cell.State(), true
}

// Run registers and executes the test for one transition under the
// runner name "After > Name". Execute carries the replay semantics; Run
// only translates its outcome for the test runner: ErrSkipped becomes a
// skip, any other error fails the test. Either way the transition's own
// cell has already settled, so dependents skip instead of cascading
// failures.
func (s *Suite) Run(name, after string, target Document, groups ...Group) {
	tr := Transition{Name: name, After: after, Target: target, Groups: groups}
	s.t.Run(fmt.Sprintf("%s > %s", after, name), func(t *testing.T) {
		err := s.Execute(context.Background(), tr)
		switch {
		case errors.Is(err, ErrSkipped):
			t.Skip(err.Error())
		case err != nil:
			t.Fatal(err)
		}
	})
}

// Execute runs one transition body: await the predecessor's cell, skip
// if it did not resolve, otherwise apply its state, replay the step
// groups, and assert the live document equals the target. The
// transition's own cell settles exactly once: Resolved(target) on
// success, Failed on skip or any error.
func (s *Suite) Execute(ctx context.Context, tr Transition) (err error) {
	if _, exists := s.cells[tr.Name]; exists {
		return fmt.Errorf("duplicate state %q", tr.Name)
	}
	cell := NewCell()
	s.cells[tr.Name] = cell
	defer func() {
		if err != nil {
			cell.Fail()
		} else {
			cell.Resolve(tr.Target)
		}
	}()

	prev, ok := s.cells[tr.After]
	if !ok {
		return fmt.Errorf("unknown predecessor %q", tr.After)
	}

	start, state, err := prev.Await(ctx)
	if err != nil {
		return fmt.Errorf("awaiting predecessor %q: %w", tr.After, err)
	}
	if state != CellResolved {
		s.logger.Info("skipping dependent test",
			"session", s.session, "test", tr.Name, "predecessor", tr.After)
		return fmt.Errorf("%w: %q", ErrSkipped, tr.After)
	}

	if err := s.host.Apply(ctx, start); err != nil {
		return fmt.Errorf("applying state of %q: %w", tr.After, err)
	}
	for i, g := range tr.Groups {
		if err := s.runGroup(ctx, g); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}

	got, err := s.host.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}
	if !got.Equal(tr.Target) {
		return fmt.Errorf("document mismatch\n got: %q\nwant: %q", got.Render(), tr.Target.Render())
	}
	return nil
}

// runGroup executes one step group. Single-step groups run inline.
// Multi-step groups fan out, each member starting at its fixed stagger
// offset, and join before returning; the next group never observes a
// partially applied batch.
func (s *Suite) runGroup(ctx context.Context, g Group) error {
	switch len(g.Steps) {
	case 0:
		return nil
	case 1:
		return s.runStep(ctx, g.Steps[0])
	}

	errs := make([]error, len(g.Steps))
	var wg sync.WaitGroup
	for i, step := range g.Steps {
		wg.Add(1)
		go func(i int, step Step) {
			defer wg.Done()
			if delay := time.Duration(i) * s.stagger; delay > 0 {
				timer := time.NewTimer(delay)
				defer timer.Stop()
				select {
				case <-timer.C:
				case <-ctx.Done():
					errs[i] = ctx.Err()
					return
				}
			}
			errs[i] = s.runStep(ctx, step)
		}(i, step)
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (s *Suite) runStep(ctx context.Context, step Step) error {
	s.logger.Debug("step", "session", s.session, "kind", step.Kind.String())
	switch step.Kind {
	case StepConfigure:
		return s.host.SetBehavior(ctx, step.Scope, step.Behavior)
	case StepType:
		return s.host.Type(ctx, step.Text)
	case StepInvoke:
		return s.host.Invoke(ctx, step.Command, step.Args)
	default:
		return fmt.Errorf("unknown step kind %d", step.Kind)
	}
}
