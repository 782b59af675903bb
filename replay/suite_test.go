package replay_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mboyd/etch/internal/testutil"
	"github.com/mboyd/etch/replay"
)

func caretDoc(text string) replay.Document {
	n := len(text)
	return replay.Document{
		Text:       text,
		Selections: []replay.Selection{{Anchor: n, Active: n}},
	}
}

func TestSuiteInitializesBehaviors(t *testing.T) {
	host := testutil.NewHost()
	suite := replay.NewSuite(t, host.Acquire)
	defer suite.Close()

	for _, scope := range []replay.Scope{replay.ScopeNormal, replay.ScopeInsert} {
		b, ok := host.Behavior(scope)
		require.True(t, ok, "scope %s not initialized", scope)
		assert.Equal(t, replay.BehaviorCaret, b)
	}
}

func TestSuiteExecuteChain(t *testing.T) {
	host := testutil.NewHost()
	host.Handle("editor.upper", func(doc replay.Document, _ string) (replay.Document, error) {
		doc.Text = "HI"
		return doc, nil
	})

	suite := replay.NewSuite(t, host.Acquire)
	defer suite.Close()

	suite.Seed("root", caretDoc("hi"))

	err := suite.Execute(context.Background(), replay.Transition{
		Name:   "upper",
		After:  "root",
		Target: replay.Document{Text: "HI", Selections: []replay.Selection{{Anchor: 2, Active: 2}}},
		Groups: []replay.Group{replay.Single(replay.Invoke("editor.upper", ""))},
	})
	require.NoError(t, err)

	state, ok := suite.State("upper")
	require.True(t, ok)
	assert.Equal(t, replay.CellResolved, state)

	// The next test in the chain starts from the resolved target, not
	// from whatever the host happens to hold.
	err = suite.Execute(context.Background(), replay.Transition{
		Name:   "typed",
		After:  "upper",
		Target: replay.Document{Text: "HI!", Selections: []replay.Selection{{Anchor: 3, Active: 3}}},
		Groups: []replay.Group{
			{Steps: []replay.Step{
				{Kind: replay.StepInvoke, Command: "editor.upper"},
				replay.TypeChar("!"),
			}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"editor.upper", "editor.upper"}, host.Invoked())
}

func TestSuiteFailureSkipsDependentsTransitively(t *testing.T) {
	host := testutil.NewHost()
	suite := replay.NewSuite(t, host.Acquire)
	defer suite.Close()

	suite.Seed("root", caretDoc("hi"))

	err := suite.Execute(context.Background(), replay.Transition{
		Name:   "broken",
		After:  "root",
		Target: caretDoc("hi"),
		Groups: []replay.Group{replay.Single(replay.Invoke("no.such.command", ""))},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, replay.ErrSkipped, "a real failure is not a skip")

	state, _ := suite.State("broken")
	assert.Equal(t, replay.CellFailed, state)

	// Direct dependent skips.
	err = suite.Execute(context.Background(), replay.Transition{
		Name: "child", After: "broken", Target: caretDoc("hi"),
	})
	assert.ErrorIs(t, err, replay.ErrSkipped)

	// And the skip cascades: the child's cell failed too.
	err = suite.Execute(context.Background(), replay.Transition{
		Name: "grandchild", After: "child", Target: caretDoc("hi"),
	})
	assert.ErrorIs(t, err, replay.ErrSkipped)

	state, _ = suite.State("grandchild")
	assert.Equal(t, replay.CellFailed, state)
}

func TestSuiteExecuteUnknownPredecessor(t *testing.T) {
	host := testutil.NewHost()
	suite := replay.NewSuite(t, host.Acquire)
	defer suite.Close()

	err := suite.Execute(context.Background(), replay.Transition{
		Name: "b", After: "nowhere", Target: caretDoc(""),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown predecessor "nowhere"`)
}

func TestSuiteExecuteDuplicateName(t *testing.T) {
	host := testutil.NewHost()
	suite := replay.NewSuite(t, host.Acquire)
	defer suite.Close()

	suite.Seed("root", caretDoc("hi"))
	err := suite.Execute(context.Background(), replay.Transition{
		Name: "root", After: "root", Target: caretDoc("hi"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate state "root"`)
}

func TestSuiteExecuteTargetMismatch(t *testing.T) {
	host := testutil.NewHost()
	suite := replay.NewSuite(t, host.Acquire)
	defer suite.Close()

	suite.Seed("root", caretDoc("hi"))
	err := suite.Execute(context.Background(), replay.Transition{
		Name:   "wrong",
		After:  "root",
		Target: caretDoc("bye"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document mismatch")

	state, _ := suite.State("wrong")
	assert.Equal(t, replay.CellFailed, state)
}

func TestSuiteBatchStaggerOrdering(t *testing.T) {
	host := testutil.NewHost()
	host.Handle("editor.noop", func(doc replay.Document, _ string) (replay.Document, error) {
		return doc, nil
	})

	suite := replay.NewSuite(t, host.Acquire, replay.WithStagger(30*time.Millisecond))
	defer suite.Close()

	suite.Seed("root", caretDoc("hi"))

	err := suite.Execute(context.Background(), replay.Transition{
		Name:   "burst",
		After:  "root",
		Target: replay.Document{Text: "hixy", Selections: []replay.Selection{{Anchor: 4, Active: 4}}},
		Groups: []replay.Group{
			{Steps: []replay.Step{
				replay.Invoke("editor.noop", ""),
				replay.TypeChar("x"),
				replay.TypeChar("y"),
			}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"invoke:editor.noop", "type:x", "type:y"}, host.Events())
}

func TestSuiteConfigureStep(t *testing.T) {
	host := testutil.NewHost()
	suite := replay.NewSuite(t, host.Acquire)
	defer suite.Close()

	suite.Seed("root", caretDoc(""))
	err := suite.Execute(context.Background(), replay.Transition{
		Name:   "configured",
		After:  "root",
		Target: caretDoc(""),
		Groups: []replay.Group{
			replay.Single(replay.Configure(replay.ScopeInsert, replay.BehaviorCharacter)),
		},
	})
	require.NoError(t, err)

	b, ok := host.Behavior(replay.ScopeInsert)
	require.True(t, ok)
	assert.Equal(t, replay.BehaviorCharacter, b)
}

func TestSuiteRunReportsSubtests(t *testing.T) {
	host := testutil.NewHost()
	host.Handle("editor.noop", func(doc replay.Document, _ string) (replay.Document, error) {
		return doc, nil
	})

	suite := replay.NewSuite(t, host.Acquire, replay.WithTokenGenerator(
		replay.NewFixedGenerator("session-1"),
	))
	defer suite.Close()

	suite.Seed("root", caretDoc("hi"))
	suite.Run("noop", "root", caretDoc("hi"),
		replay.Single(replay.Invoke("editor.noop", "")),
	)

	state, ok := suite.State("noop")
	require.True(t, ok)
	assert.Equal(t, replay.CellResolved, state)
}
