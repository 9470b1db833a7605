package rpc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/solgateway/rpc-consensus/pkg/slog"
)

// RawResult is one endpoint's raw HTTP outcome, handed to the normalizer.
type RawResult struct {
	From   RawSource
	Status int
	Body   []byte
	Err    *RpcError // set instead of Status/Body on transport failure
}

// RawSource pairs a dispatch slot with the RpcSource it was contacted
// through, so the caller can re-attach SourcedResult after normalization.
type RawSource struct {
	Source   RpcSource
	Endpoint RpcEndpoint
}

// Dispatcher issues one HTTP outcall per endpoint in parallel (C4, §4.4).
type Dispatcher struct {
	Client *http.Client

	// defaultTimeout bounds an outcall when the caller's context carries no
	// deadline of its own. Dispatcher never retries (§4.4 forbids it at this
	// layer), so this borrows backoff's exponential policy purely as a
	// deterministic timeout-budget calculator -- MaxElapsedTime, not the
	// retry loop itself.
	defaultTimeout time.Duration
}

func NewDispatcher(client *http.Client) *Dispatcher {
	if client == nil {
		client = &http.Client{}
	}
	return &Dispatcher{Client: client, defaultTimeout: hostTimeoutWindow()}
}

// hostTimeoutWindow derives the single host-enforced timeout window from an
// unused exponential backoff policy's MaxElapsedTime. No NextBackOff call
// ever happens here -- the policy just gives a conventional, documented
// place to configure the window instead of a bare constant.
func hostTimeoutWindow() time.Duration {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	policy.MaxElapsedTime = 10 * time.Second
	return policy.MaxElapsedTime
}

// Dispatch launches all outcalls before awaiting any of them (§9: "never
// await one before launching the next"), then blocks until every slot has
// either a response or a transport error. There is no partial-failure
// short-circuit: every endpoint's outcome, success or failure, is needed to
// classify consistency (§5).
func (d *Dispatcher) Dispatch(ctx context.Context, sources []RawSource, body []byte) []RawResult {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.defaultTimeout)
		defer cancel()
	}

	results := make([]RawResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			results[i] = d.doOne(gctx, src, body)
			return nil
		})
	}
	// g.Wait()'s own error is always nil here since doOne never returns an
	// error to the group -- every outcome, success or failure, is captured
	// per-slot in results instead.
	_ = g.Wait()
	return results
}

func (d *Dispatcher) doOne(ctx context.Context, src RawSource, body []byte) RawResult {
	logger := slog.Get()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, src.Endpoint.URL, bytes.NewReader(body))
	if err != nil {
		return RawResult{From: src, Err: NewIcError(DestinationInvalid, err.Error())}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range src.Endpoint.Headers {
		req.Header.Set(k, v)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		logger.Debugf("outcall to %s failed: %v", src.Source, err)
		return RawResult{From: src, Err: classifyTransportErr(err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return RawResult{From: src, Err: NewIcError(SysTransient, err.Error())}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return RawResult{
			From: src,
			Err:  NewInvalidHttpJsonRpcResponse(resp.StatusCode, string(respBody), nil),
		}
	}

	return RawResult{From: src, Status: resp.StatusCode, Body: respBody}
}

// classifyTransportErr maps a Go transport error onto the host's rejection
// code taxonomy (§4.4). The mapping favors SysTransient for timeouts and
// connection resets (retryable from the caller's point of view, though this
// layer never retries) and DestinationInvalid for clearly malformed targets.
func classifyTransportErr(err error) *RpcError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return NewIcError(SysTransient, err.Error())
		}
		var dnsErr *net.DNSError
		if errors.As(urlErr.Err, &dnsErr) {
			return NewIcError(DestinationInvalid, err.Error())
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewIcError(SysTransient, err.Error())
	}
	if errors.Is(err, context.Canceled) {
		return NewIcError(CanisterReject, err.Error())
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return NewIcError(SysTransient, err.Error())
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewIcError(SysTransient, err.Error())
	}
	return NewIcError(Unknown, err.Error())
}
