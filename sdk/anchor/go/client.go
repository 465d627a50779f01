package anchor

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/jellydator/ttlcache/v3"
	"github.com/jonboulle/clockwork"
	"github.com/malbeclabs/anchor-go/config"
	"github.com/malbeclabs/anchor-go/tools/solana/pkg/jsonrpc"
	"github.com/malbeclabs/anchor-go/tools/solana/pkg/rpc"
)

const (
	defaultRentCacheTTL          = 5 * time.Minute
	defaultWaitForVisibleTimeout = 30 * time.Second
	defaultConfirmPollInterval   = 250 * time.Millisecond
)

// Client is a connection handle: a cluster, a payer identity and a commitment
// level. The commitment is fixed at construction. A Client is read-only after
// construction and may be shared between goroutines when its signer can be.
type Client struct {
	log        *slog.Logger
	cluster    config.Cluster
	signer     Signer
	commitment solanarpc.CommitmentType
	rpc        RPCClient
	dialWS     WSDialer
	clock      clockwork.Clock
	retry      *jsonrpc.RetryOptions

	rentCacheTTL time.Duration
	rent         *ttlcache.Cache[uint64, uint64]

	waitForVisibleTimeout time.Duration
	confirmPollInterval   time.Duration
	confirmTimeout        time.Duration

	connErr error
}

type ClientOption func(*Client)

func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// WithRPCClient replaces the HTTP JSON-RPC transport.
func WithRPCClient(rpc RPCClient) ClientOption {
	return func(c *Client) {
		c.rpc = rpc
	}
}

// WithWSDialer replaces the websocket transport used by event subscriptions.
func WithWSDialer(dial WSDialer) ClientOption {
	return func(c *Client) {
		c.dialWS = dial
	}
}

func WithClock(clock clockwork.Clock) ClientOption {
	return func(c *Client) {
		c.clock = clock
	}
}

// WithRetryOptions configures the default JSON-RPC transport. It has no effect
// together with WithRPCClient.
func WithRetryOptions(opts *jsonrpc.RetryOptions) ClientOption {
	return func(c *Client) {
		c.retry = opts
	}
}

func WithRentCacheTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.rentCacheTTL = ttl
	}
}

// WithWaitForVisibleTimeout bounds how long a sent transaction may stay
// unknown to the cluster before it is reported as dropped.
func WithWaitForVisibleTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.waitForVisibleTimeout = timeout
	}
}

func WithConfirmPollInterval(interval time.Duration) ClientOption {
	return func(c *Client) {
		c.confirmPollInterval = interval
	}
}

// WithConfirmTimeout bounds the wait for a visible transaction to reach the
// client's commitment. Zero waits until the context is done.
func WithConfirmTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.confirmTimeout = timeout
	}
}

// NewClient creates a connection handle. Endpoint problems are not reported
// here; they surface as ErrConnection from Program.
func NewClient(cluster config.Cluster, signer Signer, commitment solanarpc.CommitmentType, opts ...ClientOption) *Client {
	if commitment == "" {
		commitment = solanarpc.CommitmentProcessed
	}
	c := &Client{
		log:                   slog.Default(),
		cluster:               cluster,
		signer:                signer,
		commitment:            commitment,
		clock:                 clockwork.NewRealClock(),
		rentCacheTTL:          defaultRentCacheTTL,
		waitForVisibleTimeout: defaultWaitForVisibleTimeout,
		confirmPollInterval:   defaultConfirmPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := cluster.Validate(); err != nil {
		c.connErr = fmt.Errorf("%w: %w", ErrConnection, err)
	}
	if c.rpc == nil && c.connErr == nil {
		c.rpc = rpc.NewWithRetries(cluster.RPCURL, c.retry)
	}
	if c.dialWS == nil {
		c.dialWS = DialWS
	}
	c.rent = ttlcache.New(ttlcache.WithTTL[uint64, uint64](c.rentCacheTTL))

	return c
}

// Program returns a handle bound to the program at id.
func (c *Client) Program(id solana.PublicKey) (*Program, error) {
	if c.connErr != nil {
		return nil, c.connErr
	}
	if id.IsZero() {
		return nil, fmt.Errorf("%w: zero program id", ErrConnection)
	}
	if c.signer == nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, ErrNoSigner)
	}
	return &Program{id: id, client: c}, nil
}

func (c *Client) Cluster() config.Cluster {
	return c.cluster
}

func (c *Client) Commitment() solanarpc.CommitmentType {
	return c.commitment
}

func (c *Client) Signer() Signer {
	return c.signer
}

func (c *Client) executor(program solana.PublicKey) *executor {
	return &executor{
		log:                   c.log,
		rpc:                   c.rpc,
		clock:                 c.clock,
		program:               program,
		commitment:            c.commitment,
		waitForVisibleTimeout: c.waitForVisibleTimeout,
		pollInterval:          c.confirmPollInterval,
		confirmTimeout:        c.confirmTimeout,
	}
}
