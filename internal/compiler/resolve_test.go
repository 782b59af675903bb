package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mboyd/etch/internal/ir"
)

func TestResolveValidChain(t *testing.T) {
	spec := &ir.Spec{
		Initial: []ir.InitialState{{Title: "a"}},
		Transitions: []ir.Transition{
			{Title: "b", ComesAfter: "a"},
			{Title: "c", ComesAfter: "b"},
			{Title: "d", ComesAfter: "a"}, // branch off the root
		},
	}

	resolved, err := Resolve(spec)
	require.NoError(t, err)
	assert.Len(t, resolved.Setups, 1)
	assert.Len(t, resolved.Tests, 3)
}

func TestResolveDuplicateInitialTitle(t *testing.T) {
	spec := &ir.Spec{
		Initial: []ir.InitialState{{Title: "a"}, {Title: "a"}},
	}

	_, err := Resolve(spec)
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, ErrDuplicateTitle, vErr.Code)
	assert.Equal(t, "a", vErr.Title)
}

func TestResolveTransitionShadowsInitial(t *testing.T) {
	// An InitialState and a Transition sharing a title is a fatal
	// duplicate, not last-write-wins.
	spec := &ir.Spec{
		Initial: []ir.InitialState{{Title: "a"}},
		Transitions: []ir.Transition{
			{Title: "a", ComesAfter: "a"},
		},
	}

	_, err := Resolve(spec)
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, ErrDuplicateTitle, vErr.Code)
}

func TestResolveEmptyTitleRejected(t *testing.T) {
	tests := []struct {
		name string
		spec *ir.Spec
	}{
		{"initial state", &ir.Spec{
			Initial: []ir.InitialState{{Title: ""}},
		}},
		{"transition", &ir.Spec{
			Initial:     []ir.InitialState{{Title: "a"}},
			Transitions: []ir.Transition{{Title: "", ComesAfter: "a"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.spec)
			require.Error(t, err)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, ErrEmptyTitle, vErr.Code)
		})
	}
}

func TestResolveUnknownDependency(t *testing.T) {
	spec := &ir.Spec{
		Initial: []ir.InitialState{{Title: "a"}},
		Transitions: []ir.Transition{
			{Title: "C", ComesAfter: "Z"},
		},
	}

	_, err := Resolve(spec)
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, ErrUnknownDependency, vErr.Code)
	assert.Equal(t, "C", vErr.Title)
	assert.Contains(t, vErr.Message, `"C"`)
	assert.Contains(t, vErr.Message, `"Z"`)
}

func TestResolveForwardReferenceRejected(t *testing.T) {
	// "b" references "c", which is only declared afterwards. The
	// declare-before-use pass must reject it regardless of the later
	// declaration; this is the whole cycle defense.
	spec := &ir.Spec{
		Initial: []ir.InitialState{{Title: "a"}},
		Transitions: []ir.Transition{
			{Title: "b", ComesAfter: "c"},
			{Title: "c", ComesAfter: "a"},
		},
	}

	_, err := Resolve(spec)
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, ErrUnknownDependency, vErr.Code)
	assert.Equal(t, "b", vErr.Title)
}

func TestResolveCycleImpossible(t *testing.T) {
	// A two-node cycle requires one edge to be a forward reference,
	// which the single pass already rejects.
	spec := &ir.Spec{
		Transitions: []ir.Transition{
			{Title: "x", ComesAfter: "y"},
			{Title: "y", ComesAfter: "x"},
		},
	}

	_, err := Resolve(spec)
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, ErrUnknownDependency, vErr.Code)
	assert.Equal(t, "x", vErr.Title)
}
