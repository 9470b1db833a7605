package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/solgateway/rpc-consensus/pkg/rpc"
	"github.com/solgateway/rpc-consensus/pkg/slog"
)

// gatewayServer is the local HTTP harness standing in for the Candid
// surface (out of scope per spec.md §1). It routes only /rpc/getSlot,
// /rpc/getBalance and /rpc/jsonRequest for typed calls and /rpc/getSlot/cost
// for a cost query, plus the admin endpoints; main adds /metrics. The other
// Gateway methods and *CyclesCost queries have no HTTP route.
type gatewayServer struct {
	gw      *rpc.Gateway
	admin   *rpc.AdminService
	logger  *zap.SugaredLogger
	metrics *gatewayMetrics
}

type gatewayMetrics struct {
	callsTotal      *prometheus.CounterVec
	verdictTotal    *prometheus.CounterVec
	costCyclesQuery prometheus.Histogram
}

func newGatewayMetrics() *gatewayMetrics {
	m := &gatewayMetrics{
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solgateway_rpc_calls_total",
			Help: "Total number of RPC gateway calls, labeled by method.",
		}, []string{"method"}),
		verdictTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solgateway_consensus_verdict_total",
			Help: "Total consensus verdicts, labeled by method and verdict (consistent|inconsistent).",
		}, []string{"method", "verdict"}),
		costCyclesQuery: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "solgateway_cycles_cost",
			Help:    "Distribution of estimated cycle costs per call.",
			Buckets: prometheus.ExponentialBuckets(1_000_000, 2, 16),
		}),
	}
	prometheus.MustRegister(m.callsTotal, m.verdictTotal, m.costCyclesQuery)
	return m
}

func newGatewayServer(gw *rpc.Gateway, admin *rpc.AdminService) *gatewayServer {
	return &gatewayServer{gw: gw, admin: admin, logger: slog.Get(), metrics: newGatewayMetrics()}
}

func (s *gatewayServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/rpc/getSlot", s.handleGetSlot)
	mux.HandleFunc("/rpc/getSlot/cost", s.handleGetSlotCost)
	mux.HandleFunc("/rpc/getBalance", s.handleGetBalance)
	mux.HandleFunc("/rpc/jsonRequest", s.handleJsonRequest)
	mux.HandleFunc("/admin/providers", s.handleGetProviders)
	mux.HandleFunc("/admin/apiKeys", s.handleUpdateApiKeys)
	return mux
}

// rpcCallRequest is the JSON body shape every typed /rpc/{method} endpoint
// accepts: a source selector plus an optional per-call config.
type rpcCallRequest struct {
	Cluster        string  `json:"cluster,omitempty"`
	AttachedCycles uint64  `json:"attachedCycles,omitempty"`
	Pubkey         string  `json:"pubkey,omitempty"`
	Payload        string  `json:"payload,omitempty"`
	RoundingError  *uint64 `json:"roundingError,omitempty"`
}

func clusterFromString(s string) rpc.Cluster {
	switch strings.ToLower(s) {
	case "devnet":
		return rpc.Devnet
	case "testnet":
		return rpc.Testnet
	default:
		return rpc.Mainnet
	}
}

func (s *gatewayServer) handleGetSlot(w http.ResponseWriter, r *http.Request) {
	callID := uuid.NewString()
	var req rpcCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.metrics.callsTotal.WithLabelValues(rpc.MethodGetSlot).Inc()
	s.logger.Debugf("[%s] getSlot cluster=%s", callID, req.Cluster)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sources := rpc.RpcSources{Kind: rpc.SourcesDefault, Cluster: clusterFromString(req.Cluster)}
	cfg := rpc.GetSlotRpcConfig{RoundingError: req.RoundingError}
	result, err := s.gw.GetSlot(ctx, rpc.GetSlotParams{}, sources, cfg, rpc.Cycles(req.AttachedCycles))
	s.writeMultiResult(w, rpc.MethodGetSlot, result, result.IsConsistent, err)
}

func (s *gatewayServer) handleGetSlotCost(w http.ResponseWriter, r *http.Request) {
	cluster := clusterFromString(r.URL.Query().Get("cluster"))
	sources := rpc.RpcSources{Kind: rpc.SourcesDefault, Cluster: cluster}
	cost, err := s.gw.GetSlotCyclesCost(rpc.GetSlotParams{}, sources, rpc.GetSlotRpcConfig{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.metrics.costCyclesQuery.Observe(float64(cost))
	writeJSON(w, map[string]uint64{"cycles": uint64(cost)})
}

func (s *gatewayServer) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	var req rpcCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.metrics.callsTotal.WithLabelValues(rpc.MethodGetBalance).Inc()

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sources := rpc.RpcSources{Kind: rpc.SourcesDefault, Cluster: clusterFromString(req.Cluster)}
	result, err := s.gw.GetBalance(
		ctx, rpc.GetBalanceParams{Pubkey: rpc.Pubkey(req.Pubkey)}, sources, rpc.RpcConfig{}, rpc.Cycles(req.AttachedCycles),
	)
	s.writeMultiResult(w, rpc.MethodGetBalance, result, result.IsConsistent, err)
}

func (s *gatewayServer) handleJsonRequest(w http.ResponseWriter, r *http.Request) {
	var req rpcCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.metrics.callsTotal.WithLabelValues("jsonRequest").Inc()

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sources := rpc.RpcSources{Kind: rpc.SourcesDefault, Cluster: clusterFromString(req.Cluster)}
	result, err := s.gw.JsonRequest(
		ctx, rpc.JsonRequestParams{Payload: req.Payload}, sources, rpc.RpcConfig{}, rpc.Cycles(req.AttachedCycles),
	)
	s.writeMultiResult(w, "jsonRequest", result, result.IsConsistent, err)
}

func (s *gatewayServer) handleGetProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.admin.GetProviders())
}

func (s *gatewayServer) handleUpdateApiKeys(w http.ResponseWriter, r *http.Request) {
	caller := rpc.Principal(r.Header.Get("X-Principal"))
	var updates []rpc.ApiKeyUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.admin.UpdateApiKeys(caller, updates); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// recordVerdict tallies the consensus verdict metric for method; callers
// pass the boolean rather than the generic MultiResult[T] itself, since Go
// has no way to dispatch on T once it has been erased to an HTTP handler.
func (s *gatewayServer) recordVerdict(method string, consistent bool) {
	if consistent {
		s.metrics.verdictTotal.WithLabelValues(method, "consistent").Inc()
		return
	}
	s.metrics.verdictTotal.WithLabelValues(method, "inconsistent").Inc()
}

// writeMultiResult renders a MultiResult[T] (or a call error) as the
// envelope an RPC consumer would receive.
func (s *gatewayServer) writeMultiResult(w http.ResponseWriter, method string, result any, consistent bool, callErr error) {
	if callErr != nil {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]string{"error": callErr.Error()})
		return
	}
	s.recordVerdict(method, consistent)
	writeJSON(w, result)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
