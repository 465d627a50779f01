package jsonrpc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

const (
	defaultMaxAttempts = 4
	defaultBaseBackoff = 500 * time.Millisecond
	defaultMaxBackoff  = 5 * time.Second
)

// MethodSendTransaction is never retried by default: a resend after an
// ambiguous transport failure is the caller's decision, not the transport's.
const MethodSendTransaction = "sendTransaction"

type RetryOptions struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration

	// NoRetryMethods are JSON-RPC methods that are attempted exactly once.
	// Nil means []string{MethodSendTransaction}; use an empty non-nil slice to
	// retry every method.
	NoRetryMethods []string

	// Logger, when set, receives a debug line per retry.
	Logger *slog.Logger
}

func WithRetry(inner solanarpc.JSONRPCClient, opt *RetryOptions) solanarpc.JSONRPCClient {
	if opt == nil {
		opt = &RetryOptions{}
	}
	o := *opt
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = defaultBaseBackoff
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = defaultMaxBackoff
	}
	if o.NoRetryMethods == nil {
		o.NoRetryMethods = []string{MethodSendTransaction}
	}
	return &retryingJSONRPCClient{inner: inner, opt: o}
}

type retryingJSONRPCClient struct {
	inner solanarpc.JSONRPCClient
	opt   RetryOptions
}

func (c *retryingJSONRPCClient) CallForInto(ctx context.Context, out any, method string, params []any) error {
	return doRetry(ctx, c.optFor(method), method, func() error {
		return c.inner.CallForInto(ctx, out, method, params)
	})
}

func (c *retryingJSONRPCClient) CallWithCallback(ctx context.Context, method string, params []any, callback func(*http.Request, *http.Response) error) error {
	return doRetry(ctx, c.optFor(method), method, func() error {
		return c.inner.CallWithCallback(ctx, method, params, callback)
	})
}

func (c *retryingJSONRPCClient) CallBatch(ctx context.Context, requests jsonrpc.RPCRequests) (jsonrpc.RPCResponses, error) {
	opt := c.opt
	for _, r := range requests {
		if r != nil && slices.Contains(c.opt.NoRetryMethods, r.Method) {
			opt.MaxAttempts = 1
			break
		}
	}
	return backoff.Retry(ctx, func() (jsonrpc.RPCResponses, error) {
		resp, err := c.inner.CallBatch(ctx, requests)
		if err != nil && !isRetryableJSONRPC(err) {
			return nil, backoff.Permanent(err)
		}
		return resp, err
	}, retryOptions(opt, "batch")...)
}

func (c *retryingJSONRPCClient) optFor(method string) RetryOptions {
	opt := c.opt
	if slices.Contains(opt.NoRetryMethods, method) {
		opt.MaxAttempts = 1
	}
	return opt
}

func doRetry(ctx context.Context, opt RetryOptions, method string, f func() error) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := f()
		if err != nil && !isRetryableJSONRPC(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, retryOptions(opt, method)...)
	return err
}

func retryOptions(opt RetryOptions, method string) []backoff.RetryOption {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = opt.BaseBackoff
	bo.MaxInterval = opt.MaxBackoff
	bo.RandomizationFactor = 0

	opts := []backoff.RetryOption{
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(opt.MaxAttempts)),
	}
	if opt.Logger != nil {
		log := opt.Logger
		opts = append(opts, backoff.WithNotify(func(err error, d time.Duration) {
			log.Debug("--> Retrying JSON-RPC call", "method", method, "backoff", d, "error", err)
		}))
	}
	return opts
}

func isRetryableJSONRPC(err error) bool {
	if err == nil {
		return false
	}

	// Context cancellation is authoritative
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection reset by peer") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "use of closed network connection") {
		return true
	}

	type hasStatusCode interface{ StatusCode() int }
	var sc hasStatusCode
	if errors.As(err, &sc) {
		switch sc.StatusCode() {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	// Provider "busy / retry later" codes.
	type hasCode interface{ Code() int }
	var ce hasCode
	if errors.As(err, &ce) {
		switch ce.Code() {
		case -32005, -32004, -32003:
			return true
		}
	}
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		switch rpcErr.Code {
		case -32005, -32004:
			return true
		}
		return false
	}

	return false
}
