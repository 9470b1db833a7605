// Package rpc implements the multi-provider Solana JSON-RPC fan-out,
// response-normalization, and consensus engine described by the gateway
// specification: resolve providers, build a coarsened request, estimate and
// charge cycles, dispatch in parallel, normalize each response, and reduce
// the set to a single consensus-confirmed result or an inconsistency report.
package rpc

import (
	"fmt"
	"regexp"
	"sort"
)

// Cluster identifies a logical Solana network.
type Cluster int

const (
	Mainnet Cluster = iota
	Devnet
	Testnet
)

func (c Cluster) String() string {
	switch c {
	case Mainnet:
		return "mainnet"
	case Devnet:
		return "devnet"
	case Testnet:
		return "testnet"
	default:
		return fmt.Sprintf("unknown-cluster(%d)", int(c))
	}
}

// SupportedProvider is the closed enumeration of (operator, cluster) pairs
// the registry knows how to resolve. Adding a provider means adding both the
// constant and its static RpcAccess entry in registry.go.
type SupportedProvider int

const (
	AlchemyMainnet SupportedProvider = iota
	AlchemyDevnet
	HeliusMainnet
	HeliusDevnet
	AnkrMainnet
	AnkrDevnet
	PublicNodeMainnet
	PublicNodeDevnet
	PublicNodeTestnet
	SolanaFoundationMainnet
	SolanaFoundationDevnet
	SolanaFoundationTestnet
)

var providerNames = map[SupportedProvider]string{
	AlchemyMainnet:          "AlchemyMainnet",
	AlchemyDevnet:           "AlchemyDevnet",
	HeliusMainnet:           "HeliusMainnet",
	HeliusDevnet:            "HeliusDevnet",
	AnkrMainnet:             "AnkrMainnet",
	AnkrDevnet:              "AnkrDevnet",
	PublicNodeMainnet:       "PublicNodeMainnet",
	PublicNodeDevnet:        "PublicNodeDevnet",
	PublicNodeTestnet:       "PublicNodeTestnet",
	SolanaFoundationMainnet: "SolanaFoundationMainnet",
	SolanaFoundationDevnet:  "SolanaFoundationDevnet",
	SolanaFoundationTestnet: "SolanaFoundationTestnet",
}

func (p SupportedProvider) String() string {
	if name, ok := providerNames[p]; ok {
		return name
	}
	return fmt.Sprintf("unknown-provider(%d)", int(p))
}

// AuthKind distinguishes the two ways a key can be spliced into a URL.
type AuthKind int

const (
	BearerToken AuthKind = iota
	UrlParameter
)

// Auth describes how a stored API key is applied to reach an authenticated provider.
type Auth struct {
	Kind AuthKind
	// URL is used unchanged when Kind == BearerToken; the key is attached as
	// an Authorization header instead.
	URL string
	// URLPattern contains a placeholder such as "{API_KEY}" substituted with
	// the stored key when Kind == UrlParameter.
	URLPattern string
}

// RpcAccess is the static description of how a SupportedProvider is reached.
type RpcAccess struct {
	Authenticated bool
	Auth          Auth    // valid when Authenticated
	PublicURL     string  // fallback (Authenticated, no key) or sole URL (Unauthenticated)
}

// RpcEndpoint is a fully resolved destination for an outcall.
type RpcEndpoint struct {
	URL     string
	Headers map[string]string
}

// OverrideProvider is the install-time regex substitution applied to any
// resolved URL, post-resolution.
type OverrideProvider struct {
	OverrideURL *OverrideURL
}

// OverrideURL pairs a compiled pattern with its replacement text.
type OverrideURL struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// RpcSourceKind distinguishes a registry-resolved provider from a caller-supplied custom endpoint.
type RpcSourceKind int

const (
	SourceProvider RpcSourceKind = iota
	SourceCustom
)

// RpcSource identifies one contacted endpoint, used both to label dispatch
// results and as the tie-break identifier in threshold reduction.
type RpcSource struct {
	Kind     RpcSourceKind
	Provider SupportedProvider // valid when Kind == SourceProvider
	CustomID string            // valid when Kind == SourceCustom (the caller-supplied RpcSourceSpec.Label)
}

// ID returns a stable, comparable identifier used for lexicographic tie-breaks.
func (s RpcSource) ID() string {
	switch s.Kind {
	case SourceProvider:
		return "provider:" + s.Provider.String()
	default:
		return "custom:" + s.CustomID
	}
}

func (s RpcSource) String() string { return s.ID() }

// RpcSourcesKind distinguishes Custom from Default provider selection.
type RpcSourcesKind int

const (
	SourcesCustom RpcSourcesKind = iota
	SourcesDefault
)

// RpcSources selects either an explicit provider/endpoint list or "pick the
// canonical default set for this cluster."
type RpcSources struct {
	Kind    RpcSourcesKind
	Custom  []RpcSourceSpec // valid when Kind == SourcesCustom
	Cluster Cluster         // valid when Kind == SourcesDefault
}

// RpcSourceSpec is one entry of a Custom source list: either a
// SupportedProvider to resolve through the registry, or a raw endpoint.
type RpcSourceSpec struct {
	IsProvider bool
	Provider   SupportedProvider
	Endpoint   RpcEndpoint
	Label      string // used for RpcSource.CustomID when !IsProvider
}

// ConsensusStrategyKind selects the reduction rule.
type ConsensusStrategyKind int

const (
	Equality ConsensusStrategyKind = iota
	Threshold
)

// ConsensusStrategy configures C6's reduction rule. Total is a pointer so
// "unset" (defaults to the number of providers contacted) is distinguishable
// from an explicit small value.
type ConsensusStrategy struct {
	Kind  ConsensusStrategyKind
	Total *uint32 // valid when Kind == Threshold
	Min   uint32  // valid when Kind == Threshold
}

// DefaultEqualityStrategy is the strategy used when a call specifies none.
func DefaultEqualityStrategy() ConsensusStrategy {
	return ConsensusStrategy{Kind: Equality}
}

// Validate enforces the §3 invariants on the strategy itself
// (Threshold.min >= 1; if total is set, min <= total).
func (s ConsensusStrategy) Validate() error {
	if s.Kind != Threshold {
		return nil
	}
	if s.Min < 1 {
		return fmt.Errorf("consensus threshold min must be >= 1, got %d", s.Min)
	}
	if s.Total != nil && s.Min > *s.Total {
		return fmt.Errorf("consensus threshold min (%d) must be <= total (%d)", s.Min, *s.Total)
	}
	return nil
}

// Mode toggles whether the cost estimator's charge step is enforced.
type Mode int

const (
	ModeNormal Mode = iota
	ModeDemo
)

// Cycles is the subnet's resource unit; cost math is integer and exact.
type Cycles uint64

// RpcConfig carries the per-call overrides common to every method.
type RpcConfig struct {
	ResponseSizeEstimate *uint64
	ConsensusStrategy    *ConsensusStrategy
}

// GetSlotRpcConfig adds the getSlot-specific rounding knob.
type GetSlotRpcConfig struct {
	RpcConfig
	RoundingError *uint64 // default 20
}

// GetRecentPrioritizationFeesRpcConfig adds the fee-window coarsening knobs.
type GetRecentPrioritizationFeesRpcConfig struct {
	RpcConfig
	MaxSlotRoundingError *uint64 // default 20
	MaxLength            *uint64 // default 100, range [1,150]
}

func (c GetSlotRpcConfig) roundingError() uint64 {
	if c.RoundingError != nil {
		return *c.RoundingError
	}
	return 20
}

func (c GetRecentPrioritizationFeesRpcConfig) maxSlotRoundingError() uint64 {
	if c.MaxSlotRoundingError != nil {
		return *c.MaxSlotRoundingError
	}
	return 20
}

func (c GetRecentPrioritizationFeesRpcConfig) maxLength() uint64 {
	if c.MaxLength != nil {
		return *c.MaxLength
	}
	return 100
}

// sourcesEqualityProviderCount is the default number of providers contacted
// for Equality strategy against a Default(cluster) source set.
const sourcesEqualityProviderCount = 3

// ResolveProviderCount implements the shared provider-count rule used by
// both the cost estimator (C3) and the reducer's provider-selection (C6), so
// the two components never disagree on how many providers will be contacted.
func ResolveProviderCount(sources RpcSources, strategy ConsensusStrategy, canonicalSetSize int) int {
	if sources.Kind == SourcesCustom {
		return len(sources.Custom)
	}
	switch strategy.Kind {
	case Equality:
		if canonicalSetSize < sourcesEqualityProviderCount {
			return canonicalSetSize
		}
		return sourcesEqualityProviderCount
	case Threshold:
		if strategy.Total != nil {
			return int(*strategy.Total)
		}
		want := int(strategy.Min) + 1
		if want > canonicalSetSize {
			return canonicalSetSize
		}
		return want
	default:
		return canonicalSetSize
	}
}

// SortedSourceIDs is a small helper used by the reducer's tie-break rule.
func SortedSourceIDs(sources []RpcSource) []string {
	ids := make([]string, len(sources))
	for i, s := range sources {
		ids[i] = s.ID()
	}
	sort.Strings(ids)
	return ids
}
