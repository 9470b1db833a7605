package rpc

import "reflect"

// Canonical equality for every typed result. Normalizer output is already
// canonicalized (sorted slices, volatile fields stripped), so a structural
// deep-equal is sufficient and never compares raw JSON text (§9).

func equalGetAccountInfo(a, b GetAccountInfoResult) bool { return reflect.DeepEqual(a, b) }
func equalGetBalance(a, b GetBalanceResult) bool         { return reflect.DeepEqual(a, b) }
func equalGetBlock(a, b *BlockResult) bool               { return reflect.DeepEqual(a, b) }
func equalGetRecentPrioritizationFees(a, b GetRecentPrioritizationFeesResult) bool {
	return reflect.DeepEqual(a, b)
}
func equalGetSignaturesForAddress(a, b GetSignaturesForAddressResult) bool {
	return reflect.DeepEqual(a, b)
}
func equalGetSignatureStatuses(a, b GetSignatureStatusesResult) bool {
	return reflect.DeepEqual(a, b)
}
func equalGetSlot(a, b GetSlotResult) bool                           { return a == b }
func equalGetTokenAccountBalance(a, b GetTokenAccountBalanceResult) bool { return reflect.DeepEqual(a, b) }
func equalGetTransaction(a, b *TransactionResult) bool               { return reflect.DeepEqual(a, b) }
func equalSendTransaction(a, b SendTransactionResult) bool           { return a == b }
func equalJsonRequest(a, b JsonRequestResult) bool                   { return a == b }
