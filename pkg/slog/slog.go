// Package slog owns the process-wide logger used across the gateway.
package slog

import (
	"regexp"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Filter mirrors the install-time logFilter knob: ShowAll|HideAll|ShowPattern|HidePattern.
type Filter struct {
	Mode    FilterMode
	Pattern *regexp.Regexp
}

type FilterMode int

const (
	ShowAll FilterMode = iota
	HideAll
	ShowPattern
	HidePattern
)

var (
	mu       sync.Mutex
	instance *zap.SugaredLogger
)

// Init builds the process-wide logger. Safe to call more than once; the
// last call wins. Passing a nil filter shows everything.
func Init(filter *Filter) {
	mu.Lock()
	defer mu.Unlock()
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	core, err := cfg.Build()
	if err != nil {
		// Fall back to a no-op logger rather than panic: logging must never
		// take down the gateway.
		instance = zap.NewNop().Sugar()
		return
	}
	if filter == nil || filter.Mode == ShowAll {
		instance = core.Sugar()
		return
	}
	if filter.Mode == HideAll {
		instance = zap.NewNop().Sugar()
		return
	}
	wrapped := zap.New(&filteringCore{Core: core.Core(), filter: *filter})
	instance = wrapped.Sugar()
}

// Get returns the process-wide logger, initializing it with defaults
// (ShowAll) on first use.
func Get() *zap.SugaredLogger {
	mu.Lock()
	if instance == nil {
		mu.Unlock()
		Init(nil)
		mu.Lock()
	}
	defer mu.Unlock()
	return instance
}

// filteringCore drops log entries whose message fails the configured
// ShowPattern/HidePattern regex. Built on regexp (RE2) per the deterministic,
// locale-free requirement for anything running inside replicated execution.
type filteringCore struct {
	zapcore.Core
	filter Filter
}

func (f *filteringCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !f.allow(entry.Message) {
		return ce
	}
	return f.Core.Check(entry, ce)
}

func (f *filteringCore) allow(message string) bool {
	if f.filter.Pattern == nil {
		return true
	}
	matched := f.filter.Pattern.MatchString(message)
	switch f.filter.Mode {
	case ShowPattern:
		return matched
	case HidePattern:
		return !matched
	default:
		return true
	}
}

func (f *filteringCore) With(fields []zapcore.Field) zapcore.Core {
	return &filteringCore{Core: f.Core.With(fields), filter: f.filter}
}
