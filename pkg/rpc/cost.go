package rpc

// Per-outcall cost model constants mirroring the host platform's HTTP
// outcall charge function: a fixed base, linear in subnet-node count, linear
// in request bytes, and linear in the max response-byte bound. The exact
// coefficients are a deterministic policy choice (§4.3); what matters for
// the testable properties in §8 is that the function is monotone
// non-decreasing in each of its three variable inputs and a pure function
// of them -- it has no side effects and never touches the network.
const (
	baseCyclesPerCall       Cycles = 3_000_000
	cyclesPerNode           Cycles = 60_000
	cyclesPerRequestByte    Cycles = 400
	cyclesPerResponseByte   Cycles = 800
)

// defaultResponseSizeEstimate gives each method a response-byte bound large
// enough for a typical reply when the caller does not supply one (§4.3).
var defaultResponseSizeEstimate = map[string]uint64{
	MethodGetAccountInfo:              4_000,
	MethodGetBalance:                  500,
	MethodGetBlock:                    200_000,
	MethodGetRecentPrioritizationFees: 8_000,
	MethodGetSignaturesForAddress:     20_000,
	MethodGetSignatureStatuses:        4_000,
	MethodGetSlot:                     300,
	MethodGetTokenAccountBalance:      500,
	MethodGetTransaction:              8_000,
	MethodSendTransaction:             500,
	"jsonRequest":                     8_000,
}

// perOutcallCost implements the host's linear cost function for one outcall.
func perOutcallCost(numNodes uint32, requestBytes uint64, responseBytes uint64) Cycles {
	return baseCyclesPerCall +
		Cycles(numNodes)*cyclesPerNode +
		Cycles(requestBytes)*cyclesPerRequestByte +
		Cycles(responseBytes)*cyclesPerResponseByte
}

// EstimateCost implements C3: cycles required for numProviders identical
// outcalls of requestBytes bytes each, bounded at responseBytes bytes, on a
// numNodes-node subnet. Monotone non-decreasing in every argument (§8
// invariant 6).
func EstimateCost(numNodes uint32, requestBytes uint64, responseBytes uint64, numProviders int) Cycles {
	if numProviders < 0 {
		numProviders = 0
	}
	return perOutcallCost(numNodes, requestBytes, responseBytes) * Cycles(numProviders)
}

// ResponseSizeEstimateFor resolves the effective response-size bound for a
// method: the caller's override if present, else the per-method default.
func ResponseSizeEstimateFor(method string, override *uint64) uint64 {
	if override != nil {
		return *override
	}
	if v, ok := defaultResponseSizeEstimate[method]; ok {
		return v
	}
	return 4_000
}

// EstimateCallCost is the convenience wrapper the *CyclesCost query
// endpoints call: it folds in provider-count resolution via
// ResolveProviderCount, the same rule the orchestrator's resolveSources uses
// to pick the providers it prices with EstimateCost, so the quoted cost and
// the charged cost agree on how many providers are contacted.
func EstimateCallCost(
	method string, req JsonRpcRequest, cfg RpcConfig, sources RpcSources, numNodes uint32, canonicalSetSize int,
) (Cycles, error) {
	body, err := req.Marshal()
	if err != nil {
		return 0, err
	}
	strategy := DefaultEqualityStrategy()
	if cfg.ConsensusStrategy != nil {
		strategy = *cfg.ConsensusStrategy
	}
	if err := strategy.Validate(); err != nil {
		return 0, err
	}
	providerCount := ResolveProviderCount(sources, strategy, canonicalSetSize)
	responseBytes := ResponseSizeEstimateFor(method, cfg.ResponseSizeEstimate)
	return EstimateCost(numNodes, uint64(len(body)), responseBytes, providerCount), nil
}
