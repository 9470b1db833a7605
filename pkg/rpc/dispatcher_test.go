package rpc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchFansOutToEverySource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":42}`))
	}))
	defer server.Close()

	d := NewDispatcher(nil)
	sources := []RawSource{
		{Source: src("a"), Endpoint: RpcEndpoint{URL: server.URL}},
		{Source: src("b"), Endpoint: RpcEndpoint{URL: server.URL}},
		{Source: src("c"), Endpoint: RpcEndpoint{URL: server.URL}},
	}
	results := d.Dispatch(context.Background(), sources, []byte(`{}`))
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Nil(t, r.Err)
		assert.Equal(t, 200, r.Status)
	}
}

func TestDispatchCollectsPerSlotFailuresWithoutShortCircuit(t *testing.T) {
	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":1}`))
	}))
	defer okServer.Close()

	d := NewDispatcher(nil)
	sources := []RawSource{
		{Source: src("good"), Endpoint: RpcEndpoint{URL: okServer.URL}},
		{Source: src("bad"), Endpoint: RpcEndpoint{URL: "http://127.0.0.1:1"}},
	}
	results := d.Dispatch(context.Background(), sources, []byte(`{}`))
	require.Len(t, results, 2)
	assert.Nil(t, results[0].Err)
	assert.NotNil(t, results[1].Err)
}

func TestDispatchClassifiesNonTimeoutHttpError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	d := NewDispatcher(nil)
	results := d.Dispatch(context.Background(), []RawSource{
		{Source: src("err"), Endpoint: RpcEndpoint{URL: server.URL}},
	}, []byte(`{}`))
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Err)
	assert.Equal(t, KindInvalidHttpJsonRpcResponse, results[0].Err.Kind)
}

func TestDispatchHonorsCallerDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
			w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":1}`))
		}
	}))
	defer server.Close()

	d := NewDispatcher(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	results := d.Dispatch(ctx, []RawSource{
		{Source: src("slow"), Endpoint: RpcEndpoint{URL: server.URL}},
	}, []byte(`{}`))
	elapsed := time.Since(start)

	require.Len(t, results, 1)
	require.NotNil(t, results[0].Err)
	assert.Less(t, elapsed, 1*time.Second, "dispatch must respect the caller's context deadline instead of hanging")
}

func TestDispatchAppliesDefaultTimeoutWhenCallerSetsNoDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":1}`))
	}))
	defer server.Close()

	d := NewDispatcher(nil)
	d.defaultTimeout = 2 * time.Second
	require.Greater(t, d.defaultTimeout, time.Duration(0))

	results := d.Dispatch(context.Background(), []RawSource{
		{Source: src("ok"), Endpoint: RpcEndpoint{URL: server.URL}},
	}, []byte(`{}`))
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Err)
}

func TestDispatchSendsHeaders(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":true}`))
	}))
	defer server.Close()

	d := NewDispatcher(&http.Client{Timeout: 5 * time.Second})
	d.Dispatch(context.Background(), []RawSource{
		{Source: src("auth"), Endpoint: RpcEndpoint{URL: server.URL, Headers: map[string]string{"Authorization": "Bearer tok"}}},
	}, []byte(`{}`))
	assert.Equal(t, "Bearer tok", gotAuth)
}
