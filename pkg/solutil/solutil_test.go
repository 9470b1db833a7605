package solutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidBase58(t *testing.T) {
	assert.True(t, IsValidBase58("11111111111111111111111111111111", 44))
	assert.False(t, IsValidBase58("", 44))
	assert.False(t, IsValidBase58("not-base58!!", 44))
	assert.False(t, IsValidBase58("1111111111111111111111111111111111111111111111111111", 44)) // too long
}

func TestCombineUniquePreservesFirstSeenOrder(t *testing.T) {
	got := CombineUnique([]int{1, 2, 3}, []int{2, 3, 4}, []int{5})
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
}

func TestCombineUniqueNoArgs(t *testing.T) {
	got := CombineUnique[int]()
	assert.Nil(t, got)
}

func TestBoolToFloat64(t *testing.T) {
	assert.Equal(t, 1.0, BoolToFloat64(true))
	assert.Equal(t, 0.0, BoolToFloat64(false))
}
