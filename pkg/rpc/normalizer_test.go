package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloorSlot(t *testing.T) {
	cases := []struct {
		slot          Slot
		roundingError uint64
		want          Slot
	}{
		{123456, 20, 123440},
		{123460, 20, 123460},
		{123471, 20, 123460},
		{100, 0, 100}, // roundingError 0 disables flooring
		{0, 20, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, floorSlot(c.slot, c.roundingError))
	}
}

func TestNormalizeGetSlotFloors(t *testing.T) {
	raw := RawResult{Body: []byte(`{"jsonrpc":"2.0","id":1,"result":123471}`)}
	got := NormalizeGetSlot(raw, 20)
	require.True(t, got.IsOk())
	assert.Equal(t, GetSlotResult(123460), got.Value)
}

func TestNormalizeGetSlotPropagatesTransportError(t *testing.T) {
	raw := RawResult{Err: NewIcError(SysTransient, "timeout")}
	got := NormalizeGetSlot(raw, 20)
	require.False(t, got.IsOk())
	assert.Equal(t, KindIcError, got.Err.Kind)
}

func TestNormalizeGetSlotPropagatesJsonRpcError(t *testing.T) {
	raw := RawResult{Body: []byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid params"}}`)}
	got := NormalizeGetSlot(raw, 20)
	require.False(t, got.IsOk())
	assert.Equal(t, KindJsonRpcError, got.Err.Kind)
	assert.Equal(t, "invalid params", got.Err.JsonRpcMessage)
}

func TestTrimPrioritizationFees(t *testing.T) {
	fees := []PrioritizationFeeEntry{
		{Slot: 100, PrioritizationFee: 1},
		{Slot: 140, PrioritizationFee: 2},
		{Slot: 180, PrioritizationFee: 3},
		{Slot: 199, PrioritizationFee: 4}, // dropped: 199 > roundedMax
	}
	// maxSlot = 199, maxSlotRoundingError = 20 -> roundedMax = 199 - (199 % 20) = 180.
	got := trimPrioritizationFees(fees, 20, 100)
	require.Len(t, got, 3)
	assert.Equal(t, Slot(100), got[0].Slot)
	assert.Equal(t, Slot(140), got[1].Slot)
	assert.Equal(t, Slot(180), got[2].Slot)
}

func TestTrimPrioritizationFeesKeepsNewestWithinMaxLength(t *testing.T) {
	fees := make([]PrioritizationFeeEntry, 0, 10)
	for i := Slot(0); i < 10; i++ {
		fees = append(fees, PrioritizationFeeEntry{Slot: i * 10, PrioritizationFee: MicroLamport(i)})
	}
	// maxSlot = 90 is a multiple of 10, so nothing is dropped by the rounding step.
	got := trimPrioritizationFees(fees, 10, 3)
	require.Len(t, got, 3)
	assert.Equal(t, []Slot{70, 80, 90}, []Slot{got[0].Slot, got[1].Slot, got[2].Slot})
}

func TestStripConfirmations(t *testing.T) {
	var confirmations uint64 = 5
	statuses := []*SignatureStatus{
		{Slot: 1, Confirmations: &confirmations},
		nil,
	}
	got := stripConfirmations(statuses)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].Confirmations)
	assert.Nil(t, got[1])
}

func TestNormalizeJsonRequestBypassesEnvelope(t *testing.T) {
	raw := RawResult{Body: []byte(`not even json`)}
	got := NormalizeJsonRequest(raw)
	require.True(t, got.IsOk())
	assert.Equal(t, JsonRequestResult("not even json"), got.Value)
}
