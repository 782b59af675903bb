package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mboyd/etch/replay"
)

func TestHostInvokeScripted(t *testing.T) {
	h := NewHost()
	h.Handle("editor.clear", func(doc replay.Document, args string) (replay.Document, error) {
		assert.Equal(t, "{}", args)
		return replay.Document{}, nil
	})
	ctx := context.Background()

	require.NoError(t, h.Apply(ctx, replay.Document{Text: "hi"}))
	require.NoError(t, h.Invoke(ctx, "editor.clear", "{}"))

	doc, err := h.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.Text)
	assert.Equal(t, []string{"editor.clear"}, h.Invoked())
}

func TestHostInvokeUnknownCommand(t *testing.T) {
	h := NewHost()
	err := h.Invoke(context.Background(), "nope", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "nope"`)
	// The attempt is still logged.
	assert.Equal(t, []string{"nope"}, h.Invoked())
}

func TestHostTypeAtCaret(t *testing.T) {
	h := NewHost()
	ctx := context.Background()
	require.NoError(t, h.Apply(ctx, replay.Document{
		Text:       "helo",
		Selections: []replay.Selection{{Anchor: 3, Active: 3}},
	}))

	require.NoError(t, h.Type(ctx, "l"))

	doc, err := h.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Text)
	assert.Equal(t, []replay.Selection{{Anchor: 4, Active: 4}}, doc.Selections)
}

func TestHostTypeReplacesSelections(t *testing.T) {
	h := NewHost()
	ctx := context.Background()
	require.NoError(t, h.Apply(ctx, replay.Document{
		Text: "aXbYc",
		Selections: []replay.Selection{
			{Anchor: 1, Active: 2},
			{Anchor: 4, Active: 3}, // reversed; same span as {3,4}
		},
	}))

	require.NoError(t, h.Type(ctx, "_"))

	doc, err := h.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a_b_c", doc.Text)
	assert.Equal(t, []replay.Selection{
		{Anchor: 2, Active: 2},
		{Anchor: 4, Active: 4},
	}, doc.Selections)
}

func TestHostTypeWithoutSelectionsAppends(t *testing.T) {
	h := NewHost()
	ctx := context.Background()
	require.NoError(t, h.Apply(ctx, replay.Document{Text: "ab"}))
	require.NoError(t, h.Type(ctx, "c"))

	doc, err := h.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", doc.Text)
}

func TestHostSnapshotIsACopy(t *testing.T) {
	h := NewHost()
	ctx := context.Background()
	require.NoError(t, h.Apply(ctx, replay.Document{
		Text:       "hi",
		Selections: []replay.Selection{{Anchor: 0, Active: 0}},
	}))

	doc, err := h.Snapshot(ctx)
	require.NoError(t, err)
	doc.Selections[0] = replay.Selection{Anchor: 9, Active: 9}

	again, err := h.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, replay.Selection{Anchor: 0, Active: 0}, again.Selections[0])
}

func TestHostEventsOrder(t *testing.T) {
	h := NewHost()
	h.Handle("editor.noop", func(doc replay.Document, _ string) (replay.Document, error) {
		return doc, nil
	})
	ctx := context.Background()

	require.NoError(t, h.Invoke(ctx, "editor.noop", ""))
	require.NoError(t, h.Type(ctx, "a"))
	require.NoError(t, h.Type(ctx, "b"))

	assert.Equal(t, []string{"invoke:editor.noop", "type:a", "type:b"}, h.Events())
	assert.Equal(t, []string{"a", "b"}, h.Typed())
}

func TestHostCloseTwice(t *testing.T) {
	h := NewHost()
	require.NoError(t, h.Close())
	assert.True(t, h.Closed())
	assert.Error(t, h.Close())
}
