package rpc

import (
	"net"
	"net/http"
	"time"

	solrpc "github.com/gagliardetto/solana-go/rpc"
	soljsonrpc "github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/klauspost/compress/gzhttp"
	"github.com/malbeclabs/anchor-go/tools/solana/pkg/jsonrpc"
)

const (
	defaultMaxConnsPerHost = 9
	defaultTimeout         = 5 * time.Minute
	defaultKeepAlive       = 180 * time.Second
)

type Options struct {
	// Headers are sent with every request.
	Headers map[string]string

	// Retry configures the retrying JSON-RPC layer. Nil uses its defaults.
	Retry *jsonrpc.RetryOptions

	// Timeout bounds a single HTTP exchange. Zero uses defaultTimeout.
	Timeout time.Duration

	// MaxConnsPerHost caps the pool. Concurrent workloads sharing one client
	// queue on it. Zero uses defaultMaxConnsPerHost.
	MaxConnsPerHost int
}

// New creates a Solana JSON-RPC client with a gzip-capable pooled HTTP
// transport and retrying request behavior. The client is safe for concurrent
// use by multiple goroutines.
func New(rpcEndpoint string, opts *Options) *solrpc.Client {
	if opts == nil {
		opts = &Options{}
	}
	clientOpts := &soljsonrpc.RPCClientOpts{
		HTTPClient:    newHTTP(opts.Timeout, opts.MaxConnsPerHost),
		CustomHeaders: opts.Headers,
	}
	inner := soljsonrpc.NewClientWithOpts(rpcEndpoint, clientOpts)
	return solrpc.NewWithCustomRPCClient(jsonrpc.WithRetry(inner, opts.Retry))
}

// NewWithRetries creates a new Solana JSON RPC client with retrying request behavior.
func NewWithRetries(rpcEndpoint string, retryOpt *jsonrpc.RetryOptions) *solrpc.Client {
	return New(rpcEndpoint, &Options{Retry: retryOpt})
}

func newHTTP(timeout time.Duration, maxConns int) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: gzhttp.Transport(newHTTPTransport(timeout, maxConns)),
	}
}

func newHTTPTransport(timeout time.Duration, maxConns int) *http.Transport {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxConns <= 0 {
		maxConns = defaultMaxConnsPerHost
	}
	return &http.Transport{
		IdleConnTimeout:     timeout,
		MaxConnsPerHost:     maxConns,
		MaxIdleConnsPerHost: maxConns,
		Proxy:               http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: defaultKeepAlive,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}
