package rpc

import (
	"encoding/json"
	"fmt"
	"sort"
)

// envelope is the generic JSON-RPC 2.0 response shape every provider returns.
type envelope struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *envelopeError  `json:"error"`
}

type envelopeError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

// decodeEnvelope implements steps 1-2 of C5 (§4.5): parse the envelope,
// surface a provider-reported JSON-RPC error if present.
func decodeEnvelope(body []byte) (json.RawMessage, *RpcError) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		msg := err.Error()
		return nil, NewInvalidHttpJsonRpcResponse(200, string(body), &msg)
	}
	if env.Error != nil {
		return nil, NewJsonRpcError(env.Error.Code, env.Error.Message)
	}
	return env.Result, nil
}

// normalize runs the shared envelope-parse step then a method-specific
// typed decode, producing the Outcome[T] fed to the reducer. raw.Err, when
// set, is a transport-level failure that short-circuits decoding entirely.
func normalize[T any](raw RawResult, decode func(json.RawMessage) (T, *RpcError)) Outcome[T] {
	if raw.Err != nil {
		return Err[T](raw.Err)
	}
	result, rpcErr := decodeEnvelope(raw.Body)
	if rpcErr != nil {
		return Err[T](rpcErr)
	}
	value, rpcErr := decode(result)
	if rpcErr != nil {
		return Err[T](rpcErr)
	}
	return Ok(value)
}

func decodeTyped[T any](raw json.RawMessage) (T, *RpcError) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, NewValidationError(fmt.Sprintf("decode result: %v", err))
	}
	return v, nil
}

// --- per-method normalizers -------------------------------------------------

func NormalizeGetAccountInfo(raw RawResult) Outcome[GetAccountInfoResult] {
	return normalize(raw, decodeTyped[GetAccountInfoResult])
}

func NormalizeGetBalance(raw RawResult) Outcome[GetBalanceResult] {
	return normalize(raw, decodeTyped[GetBalanceResult])
}

func NormalizeGetBlock(raw RawResult) Outcome[*BlockResult] {
	return normalize(raw, decodeTyped[*BlockResult])
}

// NormalizeGetRecentPrioritizationFees applies the mandatory coarsening
// transform (§4.2, §8 invariant 3) before the value reaches the reducer:
// drop slots newer than the rounded max, sort ascending, keep only the
// maxLength newest survivors.
func NormalizeGetRecentPrioritizationFees(
	raw RawResult, cfg GetRecentPrioritizationFeesRpcConfig,
) Outcome[GetRecentPrioritizationFeesResult] {
	o := normalize(raw, decodeTyped[GetRecentPrioritizationFeesResult])
	if !o.IsOk() {
		return o
	}
	o.Value = trimPrioritizationFees(o.Value, cfg.maxSlotRoundingError(), cfg.maxLength())
	return o
}

func trimPrioritizationFees(
	fees []PrioritizationFeeEntry, maxSlotRoundingError, maxLength uint64,
) []PrioritizationFeeEntry {
	if len(fees) == 0 {
		return fees
	}
	var maxSlot Slot
	for _, f := range fees {
		if f.Slot > maxSlot {
			maxSlot = f.Slot
		}
	}
	roundedMax := floorSlot(maxSlot, maxSlotRoundingError)

	kept := make([]PrioritizationFeeEntry, 0, len(fees))
	for _, f := range fees {
		if f.Slot <= roundedMax {
			kept = append(kept, f)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Slot < kept[j].Slot })

	if uint64(len(kept)) > maxLength {
		kept = kept[uint64(len(kept))-maxLength:]
	}
	return kept
}

func NormalizeGetSignaturesForAddress(raw RawResult) Outcome[GetSignaturesForAddressResult] {
	return normalize(raw, decodeTyped[GetSignaturesForAddressResult])
}

// NormalizeGetSignatureStatuses strips the volatile confirmations field
// before the value reaches the reducer (§4.2, §8 invariant 4).
func NormalizeGetSignatureStatuses(raw RawResult) Outcome[GetSignatureStatusesResult] {
	o := normalize(raw, decodeTyped[GetSignatureStatusesResult])
	if !o.IsOk() {
		return o
	}
	o.Value = stripConfirmations(o.Value)
	return o
}

func stripConfirmations(statuses []*SignatureStatus) []*SignatureStatus {
	for _, s := range statuses {
		if s != nil {
			s.Confirmations = nil
		}
	}
	return statuses
}

// NormalizeGetSlot floors the returned slot to the nearest multiple of
// roundingError (§4.2, §8 invariant 2).
func NormalizeGetSlot(raw RawResult, roundingError uint64) Outcome[GetSlotResult] {
	o := normalize(raw, decodeTyped[GetSlotResult])
	if !o.IsOk() {
		return o
	}
	o.Value = GetSlotResult(floorSlot(Slot(o.Value), roundingError))
	return o
}

// floorSlot implements s' = s - (s mod r).
func floorSlot(s Slot, roundingError uint64) Slot {
	if roundingError == 0 {
		return s
	}
	return s - Slot(uint64(s)%roundingError)
}

func NormalizeGetTokenAccountBalance(raw RawResult) Outcome[GetTokenAccountBalanceResult] {
	return normalize(raw, decodeTyped[GetTokenAccountBalanceResult])
}

func NormalizeGetTransaction(raw RawResult) Outcome[*TransactionResult] {
	return normalize(raw, decodeTyped[*TransactionResult])
}

func NormalizeSendTransaction(raw RawResult) Outcome[SendTransactionResult] {
	return normalize(raw, decodeTyped[SendTransactionResult])
}

// NormalizeJsonRequest skips schema decoding entirely (§4.7): the body is
// returned as text and reduction compares raw strings.
func NormalizeJsonRequest(raw RawResult) Outcome[JsonRequestResult] {
	if raw.Err != nil {
		return Err[JsonRequestResult](raw.Err)
	}
	return Ok(JsonRequestResult(raw.Body))
}
