package anchor_test

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/lmittmann/tint"
	"github.com/malbeclabs/anchor-go/config"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
	"github.com/stretchr/testify/require"
)

var (
	log *slog.Logger
)

// TestMain sets up the test environment with a global logger.
func TestMain(m *testing.M) {
	flag.Parse()
	verbose := false
	if vFlag := flag.Lookup("test.v"); vFlag != nil && vFlag.Value.String() == "true" {
		verbose = true
	}
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	log = slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.RFC3339,
		AddSource:  true,
	}))

	os.Exit(m.Run())
}

var testCluster = config.Cluster{
	Moniker: config.EnvLocalnet,
	RPCURL:  config.LocalnetRPCURL,
	WSURL:   config.LocalnetWSURL,
}

type mockRPCClient struct {
	anchor.RPCClient

	GetLatestBlockhashFunc                func(context.Context, solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error)
	SendTransactionWithOptsFunc           func(context.Context, *solana.Transaction, solanarpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatusesFunc              func(context.Context, bool, ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error)
	GetAccountInfoWithOptsFunc            func(context.Context, solana.PublicKey, *solanarpc.GetAccountInfoOpts) (*solanarpc.GetAccountInfoResult, error)
	GetMinimumBalanceForRentExemptionFunc func(context.Context, uint64, solanarpc.CommitmentType) (uint64, error)
}

func (m *mockRPCClient) GetLatestBlockhash(ctx context.Context, ct solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error) {
	return m.GetLatestBlockhashFunc(ctx, ct)
}

func (m *mockRPCClient) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts solanarpc.TransactionOpts) (solana.Signature, error) {
	return m.SendTransactionWithOptsFunc(ctx, tx, opts)
}

func (m *mockRPCClient) GetSignatureStatuses(ctx context.Context, search bool, sigs ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
	return m.GetSignatureStatusesFunc(ctx, search, sigs...)
}

func (m *mockRPCClient) GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *solanarpc.GetAccountInfoOpts) (*solanarpc.GetAccountInfoResult, error) {
	return m.GetAccountInfoWithOptsFunc(ctx, account, opts)
}

func (m *mockRPCClient) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64, ct solanarpc.CommitmentType) (uint64, error) {
	return m.GetMinimumBalanceForRentExemptionFunc(ctx, size, ct)
}

var testBlockhash = solana.MustHashFromBase58("5NzX7jrPWeTkGsDnVnszdEa7T3Yyr3nSgyc78z3CwjWQ")

// newSendingRPC returns a mock that accepts every transaction, records it, and
// reports status for its first signature.
func newSendingRPC(status solanarpc.ConfirmationStatusType) (*mockRPCClient, func() []*solana.Transaction) {
	var mu sync.Mutex
	var sent []*solana.Transaction
	m := &mockRPCClient{
		GetLatestBlockhashFunc: func(_ context.Context, _ solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error) {
			return &solanarpc.GetLatestBlockhashResult{
				Value: &solanarpc.LatestBlockhashResult{Blockhash: testBlockhash},
			}, nil
		},
		SendTransactionWithOptsFunc: func(_ context.Context, tx *solana.Transaction, _ solanarpc.TransactionOpts) (solana.Signature, error) {
			mu.Lock()
			defer mu.Unlock()
			sent = append(sent, tx)
			return tx.Signatures[0], nil
		},
		GetSignatureStatusesFunc: func(_ context.Context, _ bool, _ ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
			return &solanarpc.GetSignatureStatusesResult{
				Value: []*solanarpc.SignatureStatusesResult{{ConfirmationStatus: status}},
			}, nil
		},
	}
	return m, func() []*solana.Transaction {
		mu.Lock()
		defer mu.Unlock()
		return append([]*solana.Transaction(nil), sent...)
	}
}

func newSharedSigner(t *testing.T) *anchor.SharedSigner {
	t.Helper()
	s, err := anchor.NewSharedSigner(solana.NewWallet().PrivateKey)
	require.NoError(t, err)
	return s
}

func newTestProgram(t *testing.T, rpc anchor.RPCClient, opts ...anchor.ClientOption) *anchor.Program {
	t.Helper()
	opts = append([]anchor.ClientOption{
		anchor.WithLogger(log),
		anchor.WithRPCClient(rpc),
		anchor.WithConfirmPollInterval(time.Millisecond),
	}, opts...)
	client := anchor.NewClient(testCluster, newSharedSigner(t), solanarpc.CommitmentProcessed, opts...)
	program, err := client.Program(solana.NewWallet().PublicKey())
	require.NoError(t, err)
	return program
}

// testCounter mirrors an account with an authority and a count.
type testCounter struct {
	Authority solana.PublicKey
	Count     uint64
}

func (*testCounter) Discriminator() anchor.Discriminator {
	return anchor.AccountDiscriminator("Counter")
}

func (c *testCounter) UnmarshalWithDecoder(dec *bin.Decoder) error {
	if err := dec.Decode(&c.Authority); err != nil {
		return err
	}
	return dec.Decode(&c.Count)
}

func encodeCounter(t *testing.T, c testCounter) []byte {
	t.Helper()
	d := anchor.AccountDiscriminator("Counter")
	return append(d[:], borshEncode(t, c.Authority, c.Count)...)
}

// testEvent mirrors an event with a number and a label.
type testEvent struct {
	Data  uint64
	Label string
}

func (*testEvent) Discriminator() anchor.Discriminator {
	return anchor.EventDiscriminator("MyEvent")
}

func (e *testEvent) UnmarshalWithDecoder(dec *bin.Decoder) error {
	if err := dec.Decode(&e.Data); err != nil {
		return err
	}
	return dec.Decode(&e.Label)
}

func borshEncode(t *testing.T, fields ...any) []byte {
	t.Helper()
	var buf writeBuffer
	enc := bin.NewBorshEncoder(&buf)
	for _, f := range fields {
		require.NoError(t, enc.Encode(f))
	}
	return buf.b
}

type writeBuffer struct{ b []byte }

func (w *writeBuffer) Write(p []byte) (int, error) {
	w.b = append(w.b, p...)
	return len(p), nil
}

// fakeWS is a websocket connection with a single logs subscription fed from
// a channel.
type fakeWS struct {
	notifications chan *anchor.LogNotification

	mu           sync.Mutex
	subscribed   []solana.PublicKey
	commitment   solanarpc.CommitmentType
	unsubscribed int
	closed       int
}

func newFakeWS() *fakeWS {
	return &fakeWS{notifications: make(chan *anchor.LogNotification, 16)}
}

func (f *fakeWS) dialer() anchor.WSDialer {
	return func(context.Context, string) (anchor.WSClient, error) {
		return f, nil
	}
}

func (f *fakeWS) LogsSubscribeMentions(program solana.PublicKey, commitment solanarpc.CommitmentType) (anchor.LogSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed = append(f.subscribed, program)
	f.commitment = commitment
	return f, nil
}

func (f *fakeWS) Recv(ctx context.Context) (*anchor.LogNotification, error) {
	select {
	case n, ok := <-f.notifications:
		if !ok {
			return nil, io.EOF
		}
		return n, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeWS) Unsubscribe() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribed++
}

func (f *fakeWS) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
}
