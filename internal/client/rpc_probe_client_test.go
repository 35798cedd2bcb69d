package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func rpcServer(t *testing.T, body string, status int, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		req, _ := io.ReadAll(r.Body)
		if r.Method != http.MethodPost || !strings.Contains(string(req), "eth_chainId") {
			t.Errorf("unexpected request %s %s", r.Method, req)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProbe(t *testing.T) {
	var okHits, wrongHits, errHits, badHits int32
	ok := rpcServer(t, `{"jsonrpc":"2.0","id":1,"result":"0xaa36a7"}`, http.StatusOK, &okHits)
	wrong := rpcServer(t, `{"jsonrpc":"2.0","id":1,"result":"0x1"}`, http.StatusOK, &wrongHits)
	rpcErr := rpcServer(t, `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"boom"}}`, http.StatusOK, &errHits)
	bad := rpcServer(t, `gateway down`, http.StatusBadGateway, &badHits)

	c := NewRPCProbeClient(11155111, time.Second, time.Minute, zap.NewNop())
	urls := []string{ok.URL, wrong.URL, rpcErr.URL, bad.URL}
	results := c.Probe(context.Background(), urls)

	if len(results) != 4 {
		t.Fatalf("results = %d", len(results))
	}
	for i, r := range results {
		if r.URL != urls[i] {
			t.Fatalf("result %d out of order: %s", i, r.URL)
		}
	}
	if !results[0].Healthy || results[0].ChainID != 11155111 {
		t.Fatalf("ok endpoint: %+v", results[0])
	}
	if results[1].Healthy || results[1].ChainID != 1 || !strings.Contains(results[1].Error, "unexpected chain id") {
		t.Fatalf("wrong chain endpoint: %+v", results[1])
	}
	if results[2].Healthy || !strings.Contains(results[2].Error, "boom") {
		t.Fatalf("rpc error endpoint: %+v", results[2])
	}
	if results[3].Healthy || !strings.Contains(results[3].Error, "502") {
		t.Fatalf("bad status endpoint: %+v", results[3])
	}

	c.Probe(context.Background(), urls)
	if okHits != 1 || wrongHits != 1 || errHits != 1 || badHits != 1 {
		t.Fatalf("results must be cached: %d %d %d %d", okHits, wrongHits, errHits, badHits)
	}
}

func TestProbeCancelled(t *testing.T) {
	c := NewRPCProbeClient(1, time.Second, time.Minute, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := c.Probe(ctx, []string{"http://127.0.0.1:1"})
	if results[0].Healthy || results[0].Error == "" {
		t.Fatalf("expected failure, got %+v", results[0])
	}
}
