package slog

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterAllowShowPattern(t *testing.T) {
	f := filteringCore{filter: Filter{Mode: ShowPattern, Pattern: regexp.MustCompile(`^provider`)}}
	assert.True(t, f.allow("provider resolved"))
	assert.False(t, f.allow("dispatch failed"))
}

func TestFilterAllowHidePattern(t *testing.T) {
	f := filteringCore{filter: Filter{Mode: HidePattern, Pattern: regexp.MustCompile(`^provider`)}}
	assert.False(t, f.allow("provider resolved"))
	assert.True(t, f.allow("dispatch failed"))
}

func TestFilterAllowNilPatternAlwaysAllows(t *testing.T) {
	f := filteringCore{filter: Filter{Mode: ShowPattern, Pattern: nil}}
	assert.True(t, f.allow("anything"))
}

func TestInitNilFilterShowsAll(t *testing.T) {
	Init(nil)
	assert.NotNil(t, Get())
}

func TestInitHideAllYieldsNopLogger(t *testing.T) {
	Init(&Filter{Mode: HideAll})
	assert.NotNil(t, Get())
}

func TestGetInitializesLazily(t *testing.T) {
	mu.Lock()
	instance = nil
	mu.Unlock()
	assert.NotNil(t, Get())
}
