// Package testutil provides deterministic helpers for replay tests:
// an in-memory scripted host standing in for a live editor.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/mboyd/etch/replay"
)

// HandlerFunc computes the document produced by one command invocation.
type HandlerFunc func(doc replay.Document, args string) (replay.Document, error)

// Host is an in-memory replay.Host. Commands are scripted with Handle;
// typing inserts text at every selection. All methods are safe for
// concurrent use, since batch groups invoke the host from multiple
// goroutines.
type Host struct {
	mu        sync.Mutex
	doc       replay.Document
	behaviors map[replay.Scope]replay.Behavior
	handlers  map[string]HandlerFunc
	invoked   []string
	typed     []string
	events    []string // "invoke:<cmd>" and "type:<text>" in arrival order
	closed    bool
}

// NewHost returns an empty host with no scripted commands.
func NewHost() *Host {
	return &Host{
		behaviors: make(map[replay.Scope]replay.Behavior),
		handlers:  make(map[string]HandlerFunc),
	}
}

// Acquire is a replay.HostFactory returning this host, so tests can
// inspect it after the suite runs.
func (h *Host) Acquire(testing.TB) replay.Host { return h }

// Handle scripts a command.
func (h *Host) Handle(command string, fn HandlerFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[command] = fn
}

// Apply replaces the document state.
func (h *Host) Apply(_ context.Context, doc replay.Document) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.doc = copyDoc(doc)
	return nil
}

// Snapshot returns the current document state.
func (h *Host) Snapshot(context.Context) (replay.Document, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return copyDoc(h.doc), nil
}

// Invoke runs a scripted command. Unscripted commands fail, matching a
// live editor rejecting an unknown command.
func (h *Host) Invoke(_ context.Context, command, args string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.invoked = append(h.invoked, command)
	h.events = append(h.events, "invoke:"+command)
	fn, ok := h.handlers[command]
	if !ok {
		return fmt.Errorf("unknown command %q", command)
	}
	doc, err := fn(copyDoc(h.doc), args)
	if err != nil {
		return err
	}
	h.doc = doc
	return nil
}

// Type inserts text at every selection, replacing spanned content and
// leaving a caret after each insertion. With no selections the text is
// appended at the end of the document.
func (h *Host) Type(_ context.Context, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.typed = append(h.typed, text)
	h.events = append(h.events, "type:"+text)
	h.doc = insertAtSelections(h.doc, text)
	return nil
}

// SetBehavior records the configured behavior for a scope.
func (h *Host) SetBehavior(_ context.Context, scope replay.Scope, behavior replay.Behavior) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.behaviors[scope] = behavior
	return nil
}

// Close marks the host released.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return fmt.Errorf("host closed twice")
	}
	h.closed = true
	return nil
}

// Invoked returns the commands invoked so far, in order.
func (h *Host) Invoked() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.invoked))
	copy(out, h.invoked)
	return out
}

// Typed returns the text typed so far, in order.
func (h *Host) Typed() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.typed))
	copy(out, h.typed)
	return out
}

// Events returns every invoke and type call in arrival order.
func (h *Host) Events() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.events))
	copy(out, h.events)
	return out
}

// Behavior returns the configured behavior for a scope.
func (h *Host) Behavior(scope replay.Scope) (replay.Behavior, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.behaviors[scope]
	return b, ok
}

// Closed reports whether Close has run.
func (h *Host) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func copyDoc(doc replay.Document) replay.Document {
	sels := make([]replay.Selection, len(doc.Selections))
	copy(sels, doc.Selections)
	return replay.Document{Text: doc.Text, Selections: sels}
}

// insertAtSelections rebuilds the text with the insertion applied at each
// selection in start-offset order, shifting later offsets as it goes.
func insertAtSelections(doc replay.Document, text string) replay.Document {
	if len(doc.Selections) == 0 {
		return replay.Document{Text: doc.Text + text}
	}
	var b strings.Builder
	var sels []replay.Selection
	prev := 0
	for _, s := range doc.Selections {
		b.WriteString(doc.Text[prev:s.Start()])
		b.WriteString(text)
		caret := b.Len()
		sels = append(sels, replay.Selection{Anchor: caret, Active: caret})
		prev = s.End()
	}
	b.WriteString(doc.Text[prev:])
	return replay.Document{Text: b.String(), Selections: sels}
}
