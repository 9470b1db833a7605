package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCostMonotoneNonDecreasing(t *testing.T) {
	base := EstimateCost(10, 100, 1000, 3)

	assert.GreaterOrEqual(t, uint64(EstimateCost(20, 100, 1000, 3)), uint64(base), "more subnet nodes never lowers cost")
	assert.GreaterOrEqual(t, uint64(EstimateCost(10, 200, 1000, 3)), uint64(base), "more request bytes never lowers cost")
	assert.GreaterOrEqual(t, uint64(EstimateCost(10, 100, 2000, 3)), uint64(base), "larger response bound never lowers cost")
	assert.GreaterOrEqual(t, uint64(EstimateCost(10, 100, 1000, 5)), uint64(base), "more providers never lowers cost")
}

func TestEstimateCostIsPureAndDeterministic(t *testing.T) {
	a := EstimateCost(34, 256, 4000, 3)
	b := EstimateCost(34, 256, 4000, 3)
	assert.Equal(t, a, b)
}

func TestEstimateCostZeroProvidersIsZero(t *testing.T) {
	assert.Equal(t, Cycles(0), EstimateCost(34, 256, 4000, 0))
}

func TestEstimateCostNegativeProviderCountClampsToZero(t *testing.T) {
	assert.Equal(t, Cycles(0), EstimateCost(34, 256, 4000, -5))
}

func TestResponseSizeEstimateForUsesOverrideThenDefault(t *testing.T) {
	override := uint64(9999)
	assert.Equal(t, uint64(9999), ResponseSizeEstimateFor(MethodGetSlot, &override))
	assert.Equal(t, defaultResponseSizeEstimate[MethodGetSlot], ResponseSizeEstimateFor(MethodGetSlot, nil))
	assert.Equal(t, uint64(4_000), ResponseSizeEstimateFor("unknownMethod", nil))
}

func TestEstimateCallCostAgreesWithProviderCountResolution(t *testing.T) {
	req := BuildGetSlot(GetSlotParams{})
	sources := RpcSources{Kind: SourcesDefault, Cluster: Mainnet}
	cost, err := EstimateCallCost(MethodGetSlot, req, RpcConfig{}, sources, 34, len(CanonicalSet(Mainnet)))
	assert.NoError(t, err)

	body, _ := req.Marshal()
	providerCount := ResolveProviderCount(sources, DefaultEqualityStrategy(), len(CanonicalSet(Mainnet)))
	want := EstimateCost(34, uint64(len(body)), ResponseSizeEstimateFor(MethodGetSlot, nil), providerCount)
	assert.Equal(t, want, cost)
}

func TestEstimateCallCostRejectsInvalidStrategy(t *testing.T) {
	req := BuildGetSlot(GetSlotParams{})
	strategy := ConsensusStrategy{Kind: Threshold, Min: 0}
	cfg := RpcConfig{ConsensusStrategy: &strategy}
	_, err := EstimateCallCost(MethodGetSlot, req, cfg, RpcSources{Kind: SourcesDefault, Cluster: Mainnet}, 34, 5)
	assert.Error(t, err)
}
