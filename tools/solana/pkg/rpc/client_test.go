package rpc

import (
	"compress/gzip"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	solrpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/malbeclabs/anchor-go/tools/solana/pkg/jsonrpc"
	"github.com/stretchr/testify/require"
)

// fakeNode answers JSON-RPC requests from a per-method handler and records
// every request it sees.
type fakeNode struct {
	t        *testing.T
	handlers map[string]func(n int) (any, bool)

	mu      sync.Mutex
	calls   map[string]int
	headers []http.Header
}

func newFakeNode(t *testing.T) *fakeNode {
	return &fakeNode{t: t, handlers: map[string]func(int) (any, bool){}, calls: map[string]int{}}
}

// on registers a handler for method. Returning false drops the connection.
func (f *fakeNode) on(method string, h func(n int) (any, bool)) {
	f.handlers[method] = h
}

func (f *fakeNode) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     any    `json:"id"`
		Method string `json:"method"`
	}
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))

	f.mu.Lock()
	f.calls[req.Method]++
	n := f.calls[req.Method]
	f.headers = append(f.headers, r.Header.Clone())
	f.mu.Unlock()

	h, ok := f.handlers[req.Method]
	require.True(f.t, ok, "unexpected method %s", req.Method)
	result, ok := h(n)
	if !ok {
		conn, _, err := w.(http.Hijacker).Hijack()
		require.NoError(f.t, err)
		_ = conn.Close()
		return
	}

	w.Header().Set("Content-Type", "application/json")
	out := json.NewEncoder(w)
	if r.Header.Get("Accept-Encoding") != "" {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		out = json.NewEncoder(gz)
	}
	require.NoError(f.t, out.Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result}))
}

func fastRetry() *jsonrpc.RetryOptions {
	return &jsonrpc.RetryOptions{MaxAttempts: 3, BaseBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestTools_Solana_RPC_RentExemptionRetriedAfterDroppedConnection(t *testing.T) {
	t.Parallel()

	node := newFakeNode(t)
	node.on("getMinimumBalanceForRentExemption", func(n int) (any, bool) {
		return 3_828_960, n > 1
	})
	srv := httptest.NewServer(node)
	defer srv.Close()

	lamports, err := NewWithRetries(srv.URL, fastRetry()).GetMinimumBalanceForRentExemption(t.Context(), 500, solrpc.CommitmentProcessed)
	require.NoError(t, err)
	require.Equal(t, uint64(3_828_960), lamports)
	require.Equal(t, 2, node.count("getMinimumBalanceForRentExemption"))
}

func TestTools_Solana_RPC_SendTransactionNotRetried(t *testing.T) {
	t.Parallel()

	node := newFakeNode(t)
	node.on("sendTransaction", func(int) (any, bool) { return nil, false })
	srv := httptest.NewServer(node)
	defer srv.Close()

	payer := solana.NewWallet().PrivateKey
	tx, err := solana.NewTransaction(
		[]solana.Instruction{solana.NewInstruction(solana.SystemProgramID, solana.AccountMetaSlice{solana.Meta(payer.PublicKey()).SIGNER().WRITE()}, []byte{2, 0, 0, 0})},
		solana.Hash{9},
		solana.TransactionPayer(payer.PublicKey()),
	)
	require.NoError(t, err)
	_, err = tx.Sign(func(solana.PublicKey) *solana.PrivateKey { return &payer })
	require.NoError(t, err)

	_, err = NewWithRetries(srv.URL, fastRetry()).SendTransactionWithOpts(t.Context(), tx, solrpc.TransactionOpts{})
	require.Error(t, err)
	require.Equal(t, 1, node.count("sendTransaction"))
}

func TestTools_Solana_RPC_HeadersAndGzip(t *testing.T) {
	t.Parallel()

	node := newFakeNode(t)
	node.on("getSlot", func(int) (any, bool) { return 1234, true })
	srv := httptest.NewServer(node)
	defer srv.Close()

	client := New(srv.URL, &Options{
		Headers: map[string]string{"X-Api-Key": "k"},
		Retry:   fastRetry(),
	})
	slot, err := client.GetSlot(t.Context(), solrpc.CommitmentConfirmed)
	require.NoError(t, err)
	require.Equal(t, uint64(1234), slot)

	node.mu.Lock()
	defer node.mu.Unlock()
	require.Len(t, node.headers, 1)
	require.Equal(t, "k", node.headers[0].Get("X-Api-Key"))
	require.Contains(t, node.headers[0].Get("Accept-Encoding"), "gzip")
}

func TestTools_Solana_RPC_TransportDefaults(t *testing.T) {
	t.Parallel()

	tr := newHTTPTransport(0, 0)
	require.Equal(t, defaultTimeout, tr.IdleConnTimeout)
	require.Equal(t, defaultMaxConnsPerHost, tr.MaxConnsPerHost)
	require.Equal(t, defaultMaxConnsPerHost, tr.MaxIdleConnsPerHost)
	require.True(t, tr.ForceAttemptHTTP2)

	tr = newHTTPTransport(time.Second, 32)
	require.Equal(t, time.Second, tr.IdleConnTimeout)
	require.Equal(t, 32, tr.MaxConnsPerHost)

	client := newHTTP(0, 0)
	require.Equal(t, defaultTimeout, client.Timeout)
}
