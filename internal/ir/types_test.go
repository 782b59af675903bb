package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseScope(t *testing.T) {
	s, ok := ParseScope("normal")
	assert.True(t, ok)
	assert.Equal(t, ScopeNormal, s)

	s, ok = ParseScope("insert")
	assert.True(t, ok)
	assert.Equal(t, ScopeInsert, s)

	_, ok = ParseScope("visual")
	assert.False(t, ok, "scope enumeration is closed")
}

func TestParseBehavior(t *testing.T) {
	b, ok := ParseBehavior("caret")
	assert.True(t, ok)
	assert.Equal(t, BehaviorCaret, b)

	b, ok = ParseBehavior("character")
	assert.True(t, ok)
	assert.Equal(t, BehaviorCharacter, b)

	_, ok = ParseBehavior("line")
	assert.False(t, ok)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "normal", ScopeNormal.String())
	assert.Equal(t, "insert", ScopeInsert.String())
	assert.Equal(t, "caret", BehaviorCaret.String())
	assert.Equal(t, "character", BehaviorCharacter.String())
	assert.Equal(t, "configure", StepConfigure.String())
	assert.Equal(t, "invoke", StepInvoke.String())
	assert.Equal(t, "type", StepType.String())
}
