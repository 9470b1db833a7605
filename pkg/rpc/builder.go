package rpc

import (
	"encoding/json"
	"fmt"
)

const (
	jsonRpcVersion = "2.0"
	fixedRequestID = 1
)

// JsonRpcRequest is the wire envelope every outcall body serializes to
// (§4.2). Optional struct fields use pointer + omitempty so an absent
// optional is elided rather than serialized as null, matching upstream
// expectations.
type JsonRpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	Id      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

const (
	MethodGetAccountInfo              = "getAccountInfo"
	MethodGetBalance                  = "getBalance"
	MethodGetBlock                    = "getBlock"
	MethodGetRecentPrioritizationFees = "getRecentPrioritizationFees"
	MethodGetSignaturesForAddress     = "getSignaturesForAddress"
	MethodGetSignatureStatuses        = "getSignatureStatuses"
	MethodGetSlot                     = "getSlot"
	MethodGetTokenAccountBalance      = "getTokenAccountBalance"
	MethodGetTransaction              = "getTransaction"
	MethodSendTransaction             = "sendTransaction"
)

func newRequest(method string, params []any) JsonRpcRequest {
	return JsonRpcRequest{Jsonrpc: jsonRpcVersion, Id: fixedRequestID, Method: method, Params: params}
}

// Marshal serializes the request body the way every outcall sends it.
func (r JsonRpcRequest) Marshal() ([]byte, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", r.Method, err)
	}
	return body, nil
}

func BuildGetAccountInfo(p GetAccountInfoParams) JsonRpcRequest {
	cfg := p.Config
	if cfg == nil {
		cfg = &GetAccountInfoConfig{}
	}
	if cfg.Encoding == nil {
		encoding := "base64"
		cfg.Encoding = &encoding
	}
	return newRequest(MethodGetAccountInfo, []any{p.Pubkey, cfg})
}

func BuildGetBalance(p GetBalanceParams) JsonRpcRequest {
	if p.Config == nil {
		return newRequest(MethodGetBalance, []any{p.Pubkey})
	}
	return newRequest(MethodGetBalance, []any{p.Pubkey, p.Config})
}

// BuildGetBlock applies the getBlock coarsening default: transactionDetails
// defaults to "none" rather than Solana's own "full" default, because a
// full block response blows the outcall size budget (§4.2).
func BuildGetBlock(p GetBlockParams) JsonRpcRequest {
	cfg := p.Config
	if cfg == nil {
		cfg = &GetBlockConfig{}
	}
	if cfg.TransactionDetails == nil {
		none := "none"
		cfg.TransactionDetails = &none
	}
	if cfg.MaxSupportedTransactionVersion == nil {
		v := uint8(0)
		cfg.MaxSupportedTransactionVersion = &v
	}
	return newRequest(MethodGetBlock, []any{p.Slot, cfg})
}

func BuildGetRecentPrioritizationFees(p GetRecentPrioritizationFeesParams) JsonRpcRequest {
	if len(p.Addresses) == 0 {
		return newRequest(MethodGetRecentPrioritizationFees, []any{})
	}
	return newRequest(MethodGetRecentPrioritizationFees, []any{p.Addresses})
}

func BuildGetSignaturesForAddress(p GetSignaturesForAddressParams) JsonRpcRequest {
	if p.Config == nil {
		return newRequest(MethodGetSignaturesForAddress, []any{p.Address})
	}
	return newRequest(MethodGetSignaturesForAddress, []any{p.Address, p.Config})
}

func BuildGetSignatureStatuses(p GetSignatureStatusesParams) JsonRpcRequest {
	cfg := map[string]any{}
	if p.SearchTransactionHistory != nil {
		cfg["searchTransactionHistory"] = *p.SearchTransactionHistory
	}
	if len(cfg) == 0 {
		return newRequest(MethodGetSignatureStatuses, []any{p.Signatures})
	}
	return newRequest(MethodGetSignatureStatuses, []any{p.Signatures, cfg})
}

// BuildGetSlot always requests the caller-chosen commitment, defaulting to
// finalized (§4.2). The post-response floor to roundingError happens in the
// normalizer, not here -- the builder only shapes the outbound request.
func BuildGetSlot(p GetSlotParams) JsonRpcRequest {
	commitment := CommitmentFinalized
	if p.Commitment != nil {
		commitment = *p.Commitment
	}
	cfg := struct {
		Commitment     Commitment `json:"commitment"`
		MinContextSlot *Slot      `json:"minContextSlot,omitempty"`
	}{Commitment: commitment, MinContextSlot: p.MinContextSlot}
	return newRequest(MethodGetSlot, []any{cfg})
}

func BuildGetTokenAccountBalance(p GetTokenAccountBalanceParams) JsonRpcRequest {
	if p.Commitment == nil {
		return newRequest(MethodGetTokenAccountBalance, []any{p.Pubkey})
	}
	cfg := map[string]any{"commitment": *p.Commitment}
	return newRequest(MethodGetTokenAccountBalance, []any{p.Pubkey, cfg})
}

func BuildGetTransaction(p GetTransactionParams) JsonRpcRequest {
	cfg := p.Config
	if cfg == nil {
		cfg = &GetTransactionConfig{}
	}
	if cfg.Encoding == nil {
		encoding := "json"
		cfg.Encoding = &encoding
	}
	if cfg.MaxSupportedTransactionVersion == nil {
		v := uint8(0)
		cfg.MaxSupportedTransactionVersion = &v
	}
	return newRequest(MethodGetTransaction, []any{p.Signature, cfg})
}

func BuildSendTransaction(p SendTransactionParams) JsonRpcRequest {
	cfg := p.Config
	if cfg == nil {
		cfg = &SendTransactionConfig{}
	}
	if cfg.Encoding == nil {
		encoding := "base64"
		cfg.Encoding = &encoding
	}
	return newRequest(MethodSendTransaction, []any{p.Transaction, cfg})
}
