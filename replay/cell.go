package replay

import (
	"context"
	"sync"
)

// CellState is the lifecycle of a document-state cell.
type CellState int

const (
	// CellPending means the owning test has not finished yet.
	CellPending CellState = iota
	// CellResolved means the owning test passed and the cell holds its
	// target document state.
	CellResolved
	// CellFailed means the owning test failed or was skipped; every
	// dependent must skip.
	CellFailed
)

func (s CellState) String() string {
	switch s {
	case CellPending:
		return "pending"
	case CellResolved:
		return "resolved"
	case CellFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Cell is a settle-once, single-writer/multi-reader signal carrying a
// document state. A dependent test's body cannot start until its
// predecessor's cell settles, which makes the declared dependency chain a
// hard ordering barrier regardless of the test runner's own sequencing.
type Cell struct {
	mu    sync.Mutex
	done  chan struct{}
	state CellState
	doc   Document
}

// NewCell returns a pending cell.
func NewCell() *Cell {
	return &Cell{done: make(chan struct{})}
}

// Resolve settles the cell with the owning test's target state.
// Settling twice is a programming error and panics.
func (c *Cell) Resolve(doc Document) {
	c.settle(CellResolved, doc)
}

// Fail settles the cell as failed, cascading a skip to dependents.
func (c *Cell) Fail() {
	c.settle(CellFailed, Document{})
}

func (c *Cell) settle(state CellState, doc Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CellPending {
		panic("replay: cell settled twice")
	}
	c.state = state
	c.doc = doc
	close(c.done)
}

// State returns the current state without blocking.
func (c *Cell) State() CellState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Await blocks until the cell settles or ctx is done. On settle it
// returns the carried document (zero for CellFailed) and the final state.
func (c *Cell) Await(ctx context.Context) (Document, CellState, error) {
	select {
	case <-c.done:
	case <-ctx.Done():
		return Document{}, CellPending, ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc, c.state, nil
}
