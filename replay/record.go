package replay

import (
	"context"
	"fmt"
	"sync"
)

// Recorder wraps a Host and records every successful command invocation
// and typed text as a step, so recent edits can be replayed. This backs
// the macro-repeat feature: repeat the last edit N times.
type Recorder struct {
	Host

	mu    sync.Mutex
	steps []Step
}

// NewRecorder wraps a host.
func NewRecorder(h Host) *Recorder {
	return &Recorder{Host: h}
}

// Invoke runs the command on the wrapped host and records it on success.
func (r *Recorder) Invoke(ctx context.Context, command, args string) error {
	if err := r.Host.Invoke(ctx, command, args); err != nil {
		return err
	}
	r.record(Invoke(command, args))
	return nil
}

// Type types on the wrapped host and records the text on success.
func (r *Recorder) Type(ctx context.Context, text string) error {
	if err := r.Host.Type(ctx, text); err != nil {
		return err
	}
	r.record(Step{Kind: StepType, Text: text})
	return nil
}

func (r *Recorder) record(step Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, step)
}

// Steps returns a copy of the recorded steps in execution order.
func (r *Recorder) Steps() []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Step, len(r.steps))
	copy(out, r.steps)
	return out
}

// Repeat replays the most recently recorded step n times against the
// wrapped host. Replayed executions are not re-recorded, so repeating is
// idempotent with respect to the recording.
func (r *Recorder) Repeat(ctx context.Context, n int) error {
	r.mu.Lock()
	if len(r.steps) == 0 {
		r.mu.Unlock()
		return fmt.Errorf("nothing recorded")
	}
	last := r.steps[len(r.steps)-1]
	r.mu.Unlock()

	for i := 0; i < n; i++ {
		var err error
		switch last.Kind {
		case StepType:
			err = r.Host.Type(ctx, last.Text)
		default:
			err = r.Host.Invoke(ctx, last.Command, last.Args)
		}
		if err != nil {
			return fmt.Errorf("repeat %d of %d: %w", i+1, n, err)
		}
	}
	return nil
}
