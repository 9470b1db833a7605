package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRpcErrorEqual(t *testing.T) {
	a := NewTooFewCycles(100, 50)
	b := NewTooFewCycles(100, 50)
	c := NewTooFewCycles(100, 10)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestRpcErrorEqualDifferentKindsNeverEqual(t *testing.T) {
	a := NewValidationError("bad pubkey")
	b := NewInvalidRpcConfig("bad pubkey")
	assert.False(t, a.Equal(b))
}

func TestRpcErrorEqualNilHandling(t *testing.T) {
	var a, b *RpcError
	assert.True(t, a.Equal(b))

	c := NewValidationError("x")
	assert.False(t, a.Equal(c))
	assert.False(t, c.Equal(nil))
}

func TestRpcErrorMessages(t *testing.T) {
	assert.Contains(t, NewJsonRpcError(-32600, "bad request").Error(), "bad request")
	assert.Contains(t, NewTooFewCycles(10, 1).Error(), "expected 10")
	assert.Contains(t, NewIcError(SysTransient, "timeout").Error(), "SysTransient")
}
