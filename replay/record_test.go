package replay_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mboyd/etch/internal/testutil"
	"github.com/mboyd/etch/replay"
)

func TestRecorderRecordsSuccessfulSteps(t *testing.T) {
	host := testutil.NewHost()
	host.Handle("editor.noop", func(doc replay.Document, _ string) (replay.Document, error) {
		return doc, nil
	})
	rec := replay.NewRecorder(host)
	ctx := context.Background()

	require.NoError(t, rec.Invoke(ctx, "editor.noop", "{}"))
	require.NoError(t, rec.Type(ctx, "a"))

	steps := rec.Steps()
	require.Len(t, steps, 2)
	assert.Equal(t, replay.StepInvoke, steps[0].Kind)
	assert.Equal(t, "editor.noop", steps[0].Command)
	assert.Equal(t, "{}", steps[0].Args)
	assert.Equal(t, replay.StepType, steps[1].Kind)
	assert.Equal(t, "a", steps[1].Text)
}

func TestRecorderSkipsFailedInvocations(t *testing.T) {
	host := testutil.NewHost()
	rec := replay.NewRecorder(host)

	err := rec.Invoke(context.Background(), "no.such.command", "")
	require.Error(t, err)
	assert.Empty(t, rec.Steps())
}

func TestRecorderRepeat(t *testing.T) {
	host := testutil.NewHost()
	rec := replay.NewRecorder(host)
	ctx := context.Background()

	require.NoError(t, rec.Type(ctx, "x"))
	require.NoError(t, rec.Repeat(ctx, 3))

	// Three replays on top of the original keystroke.
	assert.Equal(t, []string{"x", "x", "x", "x"}, host.Typed())
	// Replays are not re-recorded.
	assert.Len(t, rec.Steps(), 1)
}

func TestRecorderRepeatNothingRecorded(t *testing.T) {
	rec := replay.NewRecorder(testutil.NewHost())
	err := rec.Repeat(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing recorded")
}
