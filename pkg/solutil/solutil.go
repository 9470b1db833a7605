// Package solutil collects small, standalone helpers shared across the
// gateway, mirroring the teacher's habit (cmd/solana-exporter/utils.go) of
// keeping pure, dependency-free functions apart from the stateful client.
package solutil

import "github.com/mr-tron/base58"

// IsValidBase58 reports whether s decodes as base58 and falls within
// [1, maxLen] characters -- the same shape of check as the Pubkey/Signature/
// Hash bounds in §6's bit-precision table. pkg/rpc does not call it; its
// orchestrator validates params with its own helpers.
func IsValidBase58(s string, maxLen int) bool {
	if len(s) == 0 || len(s) > maxLen {
		return false
	}
	_, err := base58.Decode(s)
	return err == nil
}

// CombineUnique combines unique items from multiple slices into one,
// preserving first-seen order.
func CombineUnique[T comparable](args ...[]T) []T {
	seen := make(map[T]struct{})
	var out []T
	for _, arg := range args {
		for _, item := range arg {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

// BoolToFloat64 converts a boolean to either 1.0 or 0.0, for Prometheus
// gauges that represent a boolean state.
func BoolToFloat64(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
