package rpc

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSlotServer returns a getSlot response of slot for every request.
func fixedSlotServer(t *testing.T, slot int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":%d}`, slot)
	}))
}

func customSources(servers ...*httptest.Server) RpcSources {
	specs := make([]RpcSourceSpec, len(servers))
	for i, s := range servers {
		specs[i] = RpcSourceSpec{Label: fmt.Sprintf("srv%d", i), Endpoint: RpcEndpoint{URL: s.URL}}
	}
	return RpcSources{Kind: SourcesCustom, Custom: specs}
}

func newTestGateway() *Gateway {
	registry := NewRegistry(NewKeyStore(), nil)
	dispatcher := NewDispatcher(nil)
	return NewGateway(registry, dispatcher, 13, ModeDemo)
}

// TestGetSlotThresholdConsensus exercises the worked example closest to
// spec.md's own scenario 1, but follows s' = s - (s mod roundingError)
// exactly rather than the scenario's prose: flooring 123456, 123460, 123471
// with roundingError 20 yields 123440, 123460, 123460 -- a 2-vote majority on
// 123460, not 123440. See DESIGN.md's note on this discrepancy.
func TestGetSlotThresholdConsensus(t *testing.T) {
	s1 := fixedSlotServer(t, 123456)
	s2 := fixedSlotServer(t, 123460)
	s3 := fixedSlotServer(t, 123471)
	defer s1.Close()
	defer s2.Close()
	defer s3.Close()

	gw := newTestGateway()
	strategy := ConsensusStrategy{Kind: Threshold, Min: 2}
	cfg := GetSlotRpcConfig{RpcConfig: RpcConfig{ConsensusStrategy: &strategy}}

	result, err := gw.GetSlot(context.Background(), GetSlotParams{}, customSources(s1, s2, s3), cfg, 0)
	require.NoError(t, err)
	require.True(t, result.IsConsistent)
	assert.Equal(t, GetSlotResult(123460), result.Value.Value)
}

func TestGetSlotEqualityAllAgree(t *testing.T) {
	s1 := fixedSlotServer(t, 100000)
	s2 := fixedSlotServer(t, 100000)
	s3 := fixedSlotServer(t, 100000)
	defer s1.Close()
	defer s2.Close()
	defer s3.Close()

	gw := newTestGateway()
	result, err := gw.GetSlot(context.Background(), GetSlotParams{}, customSources(s1, s2, s3), GetSlotRpcConfig{}, 0)
	require.NoError(t, err)
	assert.True(t, result.IsConsistent)
	assert.Equal(t, GetSlotResult(100000), result.Value.Value)
}

func TestGetSlotEqualityDisagreementIsInconsistent(t *testing.T) {
	s1 := fixedSlotServer(t, 100000)
	s2 := fixedSlotServer(t, 100020)
	defer s1.Close()
	defer s2.Close()

	gw := newTestGateway()
	result, err := gw.GetSlot(context.Background(), GetSlotParams{}, customSources(s1, s2), GetSlotRpcConfig{}, 0)
	require.NoError(t, err)
	assert.False(t, result.IsConsistent)
	assert.Len(t, result.Details, 2)
}

func TestChargeEnforcedOutsideDemoMode(t *testing.T) {
	server := fixedSlotServer(t, 100000)
	defer server.Close()

	registry := NewRegistry(NewKeyStore(), nil)
	gw := NewGateway(registry, NewDispatcher(nil), 13, ModeNormal)

	_, err := gw.GetSlot(context.Background(), GetSlotParams{}, customSources(server), GetSlotRpcConfig{}, 1)
	require.Error(t, err)
	rpcErr, ok := err.(*RpcError)
	require.True(t, ok)
	assert.Equal(t, KindTooFewCycles, rpcErr.Kind)
}

func TestChargeSkippedInDemoMode(t *testing.T) {
	server := fixedSlotServer(t, 100000)
	defer server.Close()

	gw := newTestGateway()
	_, err := gw.GetSlot(context.Background(), GetSlotParams{}, customSources(server), GetSlotRpcConfig{}, 0)
	assert.NoError(t, err)
}

func TestGetBalanceValidatesPubkey(t *testing.T) {
	gw := newTestGateway()
	_, err := gw.GetBalance(context.Background(), GetBalanceParams{Pubkey: "not-base58!!"}, RpcSources{Kind: SourcesDefault, Cluster: Mainnet}, RpcConfig{}, 0)
	require.Error(t, err)
}

func TestGetSignaturesForAddressRequiresBeforeUnderThresholdConsensus(t *testing.T) {
	gw := newTestGateway()
	strategy := ConsensusStrategy{Kind: Threshold, Min: 2}
	cfg := RpcConfig{ConsensusStrategy: &strategy}
	params := GetSignaturesForAddressParams{Address: Pubkey("11111111111111111111111111111111")}

	_, err := gw.GetSignaturesForAddress(context.Background(), params, RpcSources{Kind: SourcesDefault, Cluster: Mainnet}, cfg, 0)
	require.Error(t, err)
}

func TestGetSignaturesForAddressAllowsMissingBeforeUnderEquality(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":[]}`))
	}))
	defer server.Close()

	gw := newTestGateway()
	params := GetSignaturesForAddressParams{Address: Pubkey("11111111111111111111111111111111")}
	_, err := gw.GetSignaturesForAddress(context.Background(), params, customSources(server), RpcConfig{}, 0)
	assert.NoError(t, err)
}

func TestEstimateOnlyNeverDispatches(t *testing.T) {
	gw := newTestGateway()
	cost, err := gw.GetSlotCyclesCost(GetSlotParams{}, RpcSources{Kind: SourcesDefault, Cluster: Mainnet}, GetSlotRpcConfig{})
	require.NoError(t, err)
	assert.Greater(t, uint64(cost), uint64(0))
}
