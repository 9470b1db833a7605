package rpc

import (
	"context"
	"fmt"

	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	"github.com/solgateway/rpc-consensus/pkg/slog"
)

// Gateway is C7, the Orchestrator: it ties the registry, builder, cost
// estimator, dispatcher, normalizer, and reducer together behind one public
// method per typed Solana RPC call.
type Gateway struct {
	Registry       *Registry
	Dispatcher     *Dispatcher
	NumSubnetNodes uint32
	Mode           Mode
	logger         *zap.SugaredLogger
}

func NewGateway(registry *Registry, dispatcher *Dispatcher, numSubnetNodes uint32, mode Mode) *Gateway {
	return &Gateway{
		Registry:       registry,
		Dispatcher:     dispatcher,
		NumSubnetNodes: numSubnetNodes,
		Mode:           mode,
		logger:         slog.Get(),
	}
}

func effectiveStrategy(cfg RpcConfig) ConsensusStrategy {
	if cfg.ConsensusStrategy != nil {
		return *cfg.ConsensusStrategy
	}
	return DefaultEqualityStrategy()
}

// resolveSources implements the provider-selection half of §4.6: Custom
// contacts exactly the given list; Default(cluster) contacts a prefix of
// the canonical set sized by ResolveProviderCount, so C3's cost estimate and
// C6's reduction always agree on how many providers were contacted.
func (g *Gateway) resolveSources(ctx context.Context, sources RpcSources, strategy ConsensusStrategy) ([]RawSource, error) {
	switch sources.Kind {
	case SourcesCustom:
		out := make([]RawSource, 0, len(sources.Custom))
		for _, spec := range sources.Custom {
			if spec.IsProvider {
				ep, err := g.Registry.Resolve(ctx, spec.Provider)
				if err != nil {
					return nil, err
				}
				out = append(out, RawSource{Source: RpcSource{Kind: SourceProvider, Provider: spec.Provider}, Endpoint: ep})
				continue
			}
			out = append(out, RawSource{
				Source:   RpcSource{Kind: SourceCustom, CustomID: spec.Label},
				Endpoint: spec.Endpoint,
			})
		}
		return out, nil

	case SourcesDefault:
		canonical := CanonicalSet(sources.Cluster)
		if len(canonical) == 0 {
			return nil, NewUnsupportedCluster(fmt.Sprintf("no canonical provider set for %v", sources.Cluster))
		}
		count := ResolveProviderCount(sources, strategy, len(canonical))
		chosen := canonical[:count]
		out := make([]RawSource, 0, len(chosen))
		for _, p := range chosen {
			ep, err := g.Registry.Resolve(ctx, p)
			if err != nil {
				return nil, err
			}
			out = append(out, RawSource{Source: RpcSource{Kind: SourceProvider, Provider: p}, Endpoint: ep})
		}
		return out, nil

	default:
		return nil, NewInvalidRpcConfig("unknown RpcSources kind")
	}
}

// charge rejects a call whose attached cycles fall short of the estimated
// cost, before any outcall is made; skipped entirely in Demo mode. It
// compares against the estimate only: no actual per-outcall charge is
// measured or checked after dispatch.
func (g *Gateway) charge(cost, attached Cycles) *RpcError {
	if g.Mode == ModeDemo {
		return nil
	}
	if attached < cost {
		return NewTooFewCycles(cost, attached)
	}
	return nil
}

// call is the one generic pipeline every typed public method funnels
// through (§4.7 steps 2-7), mirroring the teacher's single generic
// getResponse[T] helper wrapped by many small typed methods -- widened here
// with one more type parameter for params and a fan-out/reduce step in
// place of a single round trip.
func call[P any, R any](
	ctx context.Context,
	g *Gateway,
	method string,
	sources RpcSources,
	cfg RpcConfig,
	attachedCycles Cycles,
	params P,
	build func(P) JsonRpcRequest,
	normalizeOne func(RawResult) Outcome[R],
	equal EqualFunc[R],
) (MultiResult[R], error) {
	strategy := effectiveStrategy(cfg)
	if err := strategy.Validate(); err != nil {
		return MultiResult[R]{}, NewValidationError(err.Error())
	}

	rawSources, err := g.resolveSources(ctx, sources, strategy)
	if err != nil {
		return MultiResult[R]{}, err
	}
	if len(rawSources) == 0 {
		return MultiResult[R]{}, NewInvalidRpcConfig("no providers resolved for this call")
	}

	req := build(params)
	body, err := req.Marshal()
	if err != nil {
		return MultiResult[R]{}, err
	}

	responseBytes := ResponseSizeEstimateFor(method, cfg.ResponseSizeEstimate)
	cost := EstimateCost(g.NumSubnetNodes, uint64(len(body)), responseBytes, len(rawSources))
	if rpcErr := g.charge(cost, attachedCycles); rpcErr != nil {
		return MultiResult[R]{}, rpcErr
	}

	g.logger.Debugf("dispatching %s to %d providers (cost=%d cycles)", method, len(rawSources), cost)
	raws := g.Dispatcher.Dispatch(ctx, rawSources, body)

	sourced := make([]SourcedResult[R], len(raws))
	for i, raw := range raws {
		sourced[i] = SourcedResult[R]{Source: raw.From.Source, Result: normalizeOne(raw)}
	}

	return Reduce(sourced, strategy, equal), nil
}

// --- validation helpers (§3 invariants, enforced before any network call) --

func validatePubkey(p Pubkey) error {
	decoded, err := base58.Decode(string(p))
	if err != nil || len(decoded) == 0 || len(string(p)) > 44 {
		return fmt.Errorf("invalid pubkey %q", p)
	}
	return nil
}

func validateSignature(s Signature) error {
	if len(string(s)) > 88 {
		return fmt.Errorf("invalid signature %q: too long", s)
	}
	if _, err := base58.Decode(string(s)); err != nil {
		return fmt.Errorf("invalid signature %q: %w", s, err)
	}
	return nil
}

// --- public typed methods (§6) ----------------------------------------------

func (g *Gateway) GetAccountInfo(
	ctx context.Context, params GetAccountInfoParams, sources RpcSources, cfg RpcConfig, attachedCycles Cycles,
) (MultiResult[GetAccountInfoResult], error) {
	if err := validatePubkey(params.Pubkey); err != nil {
		return MultiResult[GetAccountInfoResult]{}, NewValidationError(err.Error())
	}
	return call(ctx, g, MethodGetAccountInfo, sources, cfg, attachedCycles, params,
		BuildGetAccountInfo, NormalizeGetAccountInfo, equalGetAccountInfo)
}

func (g *Gateway) GetAccountInfoCyclesCost(params GetAccountInfoParams, sources RpcSources, cfg RpcConfig) (Cycles, error) {
	if err := validatePubkey(params.Pubkey); err != nil {
		return 0, NewValidationError(err.Error())
	}
	return g.estimateOnly(MethodGetAccountInfo, BuildGetAccountInfo(params), sources, cfg)
}

func (g *Gateway) GetBalance(
	ctx context.Context, params GetBalanceParams, sources RpcSources, cfg RpcConfig, attachedCycles Cycles,
) (MultiResult[GetBalanceResult], error) {
	if err := validatePubkey(params.Pubkey); err != nil {
		return MultiResult[GetBalanceResult]{}, NewValidationError(err.Error())
	}
	return call(ctx, g, MethodGetBalance, sources, cfg, attachedCycles, params,
		BuildGetBalance, NormalizeGetBalance, equalGetBalance)
}

func (g *Gateway) GetBalanceCyclesCost(params GetBalanceParams, sources RpcSources, cfg RpcConfig) (Cycles, error) {
	if err := validatePubkey(params.Pubkey); err != nil {
		return 0, NewValidationError(err.Error())
	}
	return g.estimateOnly(MethodGetBalance, BuildGetBalance(params), sources, cfg)
}

func (g *Gateway) GetBlock(
	ctx context.Context, params GetBlockParams, sources RpcSources, cfg RpcConfig, attachedCycles Cycles,
) (MultiResult[*BlockResult], error) {
	return call(ctx, g, MethodGetBlock, sources, cfg, attachedCycles, params,
		BuildGetBlock, NormalizeGetBlock, equalGetBlock)
}

func (g *Gateway) GetBlockCyclesCost(params GetBlockParams, sources RpcSources, cfg RpcConfig) (Cycles, error) {
	return g.estimateOnly(MethodGetBlock, BuildGetBlock(params), sources, cfg)
}

func (g *Gateway) GetRecentPrioritizationFees(
	ctx context.Context, params GetRecentPrioritizationFeesParams, sources RpcSources,
	cfg GetRecentPrioritizationFeesRpcConfig, attachedCycles Cycles,
) (MultiResult[GetRecentPrioritizationFeesResult], error) {
	if len(params.Addresses) > 128 {
		return MultiResult[GetRecentPrioritizationFeesResult]{}, NewValidationError(
			fmt.Sprintf("getRecentPrioritizationFees: at most 128 pubkeys, got %d", len(params.Addresses)))
	}
	if ml := cfg.maxLength(); ml < 1 || ml > 150 {
		return MultiResult[GetRecentPrioritizationFeesResult]{}, NewValidationError(
			fmt.Sprintf("getRecentPrioritizationFees: maxLength must be in [1,150], got %d", ml))
	}
	normalizeOne := func(raw RawResult) Outcome[GetRecentPrioritizationFeesResult] {
		return NormalizeGetRecentPrioritizationFees(raw, cfg)
	}
	return call(ctx, g, MethodGetRecentPrioritizationFees, sources, cfg.RpcConfig, attachedCycles, params,
		BuildGetRecentPrioritizationFees, normalizeOne, equalGetRecentPrioritizationFees)
}

func (g *Gateway) GetRecentPrioritizationFeesCyclesCost(
	params GetRecentPrioritizationFeesParams, sources RpcSources, cfg GetRecentPrioritizationFeesRpcConfig,
) (Cycles, error) {
	if len(params.Addresses) > 128 {
		return 0, NewValidationError(fmt.Sprintf("getRecentPrioritizationFees: at most 128 pubkeys, got %d", len(params.Addresses)))
	}
	return g.estimateOnly(MethodGetRecentPrioritizationFees, BuildGetRecentPrioritizationFees(params), sources, cfg.RpcConfig)
}

// GetSignaturesForAddress rejects a missing `before` under any consensus
// strategy requiring min>1, per §9's resolution of the open question:
// without it, the highest confirmed tail drifts between replicas.
func (g *Gateway) GetSignaturesForAddress(
	ctx context.Context, params GetSignaturesForAddressParams, sources RpcSources, cfg RpcConfig, attachedCycles Cycles,
) (MultiResult[GetSignaturesForAddressResult], error) {
	if err := validateSignaturesForAddress(params, effectiveStrategy(cfg)); err != nil {
		return MultiResult[GetSignaturesForAddressResult]{}, err
	}
	return call(ctx, g, MethodGetSignaturesForAddress, sources, cfg, attachedCycles, params,
		BuildGetSignaturesForAddress, NormalizeGetSignaturesForAddress, equalGetSignaturesForAddress)
}

func (g *Gateway) GetSignaturesForAddressCyclesCost(
	params GetSignaturesForAddressParams, sources RpcSources, cfg RpcConfig,
) (Cycles, error) {
	if err := validateSignaturesForAddress(params, effectiveStrategy(cfg)); err != nil {
		return 0, err
	}
	return g.estimateOnly(MethodGetSignaturesForAddress, BuildGetSignaturesForAddress(params), sources, cfg)
}

func validateSignaturesForAddress(params GetSignaturesForAddressParams, strategy ConsensusStrategy) *RpcError {
	if err := validatePubkey(params.Address); err != nil {
		return NewValidationError(err.Error())
	}
	if params.Config != nil && params.Config.Limit != nil {
		if *params.Config.Limit < 1 || *params.Config.Limit > 1000 {
			return NewValidationError(fmt.Sprintf("getSignaturesForAddress: limit must be in [1,1000], got %d", *params.Config.Limit))
		}
	}
	hasBefore := params.Config != nil && params.Config.Before != nil
	requiresConsensus := strategy.Kind == Threshold && strategy.Min > 1
	if !hasBefore && requiresConsensus {
		return NewValidationError("getSignaturesForAddress: `before` must be set under a consensus strategy with min>1")
	}
	return nil
}

func (g *Gateway) GetSignatureStatuses(
	ctx context.Context, params GetSignatureStatusesParams, sources RpcSources, cfg RpcConfig, attachedCycles Cycles,
) (MultiResult[GetSignatureStatusesResult], error) {
	if len(params.Signatures) > 256 {
		return MultiResult[GetSignatureStatusesResult]{}, NewValidationError(
			fmt.Sprintf("getSignatureStatuses: at most 256 signatures, got %d", len(params.Signatures)))
	}
	return call(ctx, g, MethodGetSignatureStatuses, sources, cfg, attachedCycles, params,
		BuildGetSignatureStatuses, NormalizeGetSignatureStatuses, equalGetSignatureStatuses)
}

func (g *Gateway) GetSignatureStatusesCyclesCost(
	params GetSignatureStatusesParams, sources RpcSources, cfg RpcConfig,
) (Cycles, error) {
	if len(params.Signatures) > 256 {
		return 0, NewValidationError(fmt.Sprintf("getSignatureStatuses: at most 256 signatures, got %d", len(params.Signatures)))
	}
	return g.estimateOnly(MethodGetSignatureStatuses, BuildGetSignatureStatuses(params), sources, cfg)
}

func (g *Gateway) GetSlot(
	ctx context.Context, params GetSlotParams, sources RpcSources, cfg GetSlotRpcConfig, attachedCycles Cycles,
) (MultiResult[GetSlotResult], error) {
	normalizeOne := func(raw RawResult) Outcome[GetSlotResult] {
		return NormalizeGetSlot(raw, cfg.roundingError())
	}
	return call(ctx, g, MethodGetSlot, sources, cfg.RpcConfig, attachedCycles, params,
		BuildGetSlot, normalizeOne, equalGetSlot)
}

func (g *Gateway) GetSlotCyclesCost(params GetSlotParams, sources RpcSources, cfg GetSlotRpcConfig) (Cycles, error) {
	return g.estimateOnly(MethodGetSlot, BuildGetSlot(params), sources, cfg.RpcConfig)
}

func (g *Gateway) GetTokenAccountBalance(
	ctx context.Context, params GetTokenAccountBalanceParams, sources RpcSources, cfg RpcConfig, attachedCycles Cycles,
) (MultiResult[GetTokenAccountBalanceResult], error) {
	if err := validatePubkey(params.Pubkey); err != nil {
		return MultiResult[GetTokenAccountBalanceResult]{}, NewValidationError(err.Error())
	}
	return call(ctx, g, MethodGetTokenAccountBalance, sources, cfg, attachedCycles, params,
		BuildGetTokenAccountBalance, NormalizeGetTokenAccountBalance, equalGetTokenAccountBalance)
}

func (g *Gateway) GetTokenAccountBalanceCyclesCost(
	params GetTokenAccountBalanceParams, sources RpcSources, cfg RpcConfig,
) (Cycles, error) {
	if err := validatePubkey(params.Pubkey); err != nil {
		return 0, NewValidationError(err.Error())
	}
	return g.estimateOnly(MethodGetTokenAccountBalance, BuildGetTokenAccountBalance(params), sources, cfg)
}

func (g *Gateway) GetTransaction(
	ctx context.Context, params GetTransactionParams, sources RpcSources, cfg RpcConfig, attachedCycles Cycles,
) (MultiResult[*TransactionResult], error) {
	if err := validateSignature(params.Signature); err != nil {
		return MultiResult[*TransactionResult]{}, NewValidationError(err.Error())
	}
	return call(ctx, g, MethodGetTransaction, sources, cfg, attachedCycles, params,
		BuildGetTransaction, NormalizeGetTransaction, equalGetTransaction)
}

func (g *Gateway) GetTransactionCyclesCost(params GetTransactionParams, sources RpcSources, cfg RpcConfig) (Cycles, error) {
	if err := validateSignature(params.Signature); err != nil {
		return 0, NewValidationError(err.Error())
	}
	return g.estimateOnly(MethodGetTransaction, BuildGetTransaction(params), sources, cfg)
}

func (g *Gateway) SendTransaction(
	ctx context.Context, params SendTransactionParams, sources RpcSources, cfg RpcConfig, attachedCycles Cycles,
) (MultiResult[SendTransactionResult], error) {
	if params.Transaction == "" {
		return MultiResult[SendTransactionResult]{}, NewValidationError("sendTransaction: transaction must not be empty")
	}
	return call(ctx, g, MethodSendTransaction, sources, cfg, attachedCycles, params,
		BuildSendTransaction, NormalizeSendTransaction, equalSendTransaction)
}

func (g *Gateway) SendTransactionCyclesCost(params SendTransactionParams, sources RpcSources, cfg RpcConfig) (Cycles, error) {
	if params.Transaction == "" {
		return 0, NewValidationError("sendTransaction: transaction must not be empty")
	}
	return g.estimateOnly(MethodSendTransaction, BuildSendTransaction(params), sources, cfg)
}

// JsonRequest is the raw escape hatch (§4.7): schema decoding is skipped,
// reduction compares raw response text.
func (g *Gateway) JsonRequest(
	ctx context.Context, params JsonRequestParams, sources RpcSources, cfg RpcConfig, attachedCycles Cycles,
) (MultiResult[JsonRequestResult], error) {
	if params.Payload == "" {
		return MultiResult[JsonRequestResult]{}, NewValidationError("jsonRequest: payload must not be empty")
	}
	return jsonRequestCall(ctx, g, params, sources, cfg, attachedCycles)
}

func (g *Gateway) JsonRequestCyclesCost(params JsonRequestParams, sources RpcSources, cfg RpcConfig) (Cycles, error) {
	if params.Payload == "" {
		return 0, NewValidationError("jsonRequest: payload must not be empty")
	}
	strategy := effectiveStrategy(cfg)
	if err := strategy.Validate(); err != nil {
		return 0, NewValidationError(err.Error())
	}
	canonical := len(CanonicalSet(sources.Cluster))
	if sources.Kind == SourcesCustom {
		canonical = len(sources.Custom)
	}
	providerCount := ResolveProviderCount(sources, strategy, canonical)
	responseBytes := ResponseSizeEstimateFor("jsonRequest", cfg.ResponseSizeEstimate)
	return EstimateCost(g.NumSubnetNodes, uint64(len(params.Payload)), responseBytes, providerCount), nil
}

// jsonRequestCall is call[...] specialized for the raw escape hatch, which
// has no typed request to build -- the caller's payload is the body as-is.
func jsonRequestCall(
	ctx context.Context, g *Gateway, params JsonRequestParams, sources RpcSources, cfg RpcConfig, attachedCycles Cycles,
) (MultiResult[JsonRequestResult], error) {
	strategy := effectiveStrategy(cfg)
	if err := strategy.Validate(); err != nil {
		return MultiResult[JsonRequestResult]{}, NewValidationError(err.Error())
	}

	rawSources, err := g.resolveSources(ctx, sources, strategy)
	if err != nil {
		return MultiResult[JsonRequestResult]{}, err
	}
	if len(rawSources) == 0 {
		return MultiResult[JsonRequestResult]{}, NewInvalidRpcConfig("no providers resolved for this call")
	}

	body := []byte(params.Payload)
	responseBytes := ResponseSizeEstimateFor("jsonRequest", cfg.ResponseSizeEstimate)
	cost := EstimateCost(g.NumSubnetNodes, uint64(len(body)), responseBytes, len(rawSources))
	if rpcErr := g.charge(cost, attachedCycles); rpcErr != nil {
		return MultiResult[JsonRequestResult]{}, rpcErr
	}

	raws := g.Dispatcher.Dispatch(ctx, rawSources, body)
	sourced := make([]SourcedResult[JsonRequestResult], len(raws))
	for i, raw := range raws {
		sourced[i] = SourcedResult[JsonRequestResult]{Source: raw.From.Source, Result: NormalizeJsonRequest(raw)}
	}
	return Reduce(sourced, strategy, equalJsonRequest), nil
}

// estimateOnly implements the read-only, side-effect-free *CyclesCost query
// endpoints (§4.3): pure function of the already-built request and the
// resolved provider count, never touching the network.
func (g *Gateway) estimateOnly(method string, req JsonRpcRequest, sources RpcSources, cfg RpcConfig) (Cycles, error) {
	strategy := effectiveStrategy(cfg)
	if err := strategy.Validate(); err != nil {
		return 0, NewValidationError(err.Error())
	}
	canonical := len(CanonicalSet(sources.Cluster))
	if sources.Kind == SourcesCustom {
		canonical = len(sources.Custom)
	}
	return EstimateCallCost(method, req, cfg, sources, g.NumSubnetNodes, canonical)
}
