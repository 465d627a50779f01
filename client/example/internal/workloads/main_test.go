package workloads_test

import (
	"flag"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/lmittmann/tint"
	"github.com/malbeclabs/anchor-go/client/example/internal/localnet"
	"github.com/malbeclabs/anchor-go/client/example/internal/workloads"
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

type testLocalnet struct {
	ledger *localnet.Ledger
	ids    workloads.ProgramIDs
	payer  solana.PrivateKey
}

func newTestLocalnet(t *testing.T, opts ...localnet.Option) *testLocalnet {
	t.Helper()
	ledger := localnet.NewLedger(log, opts...)
	ids := workloads.ProgramIDs{
		Composite: solana.NewWallet().PublicKey(),
		Basic2:    solana.NewWallet().PublicKey(),
		Basic4:    solana.NewWallet().PublicKey(),
		Events:    solana.NewWallet().PublicKey(),
		Optional:  solana.NewWallet().PublicKey(),
	}
	ledger.Deploy(ids.Composite, localnet.Composite{})
	ledger.Deploy(ids.Basic2, localnet.Basic2{})
	ledger.Deploy(ids.Basic4, localnet.Basic4{})
	ledger.Deploy(ids.Events, localnet.Events{})
	ledger.Deploy(ids.Optional, localnet.Optional{})

	payer := solana.NewWallet().PrivateKey
	ledger.Airdrop(payer.PublicKey(), 100*solana.LAMPORTS_PER_SOL)
	return &testLocalnet{ledger: ledger, ids: ids, payer: payer}
}

func (n *testLocalnet) client(signer anchor.Signer, commitment solanarpc.CommitmentType) *anchor.Client {
	cluster := config.Cluster{Moniker: config.EnvLocalnet, RPCURL: config.LocalnetRPCURL, WSURL: config.LocalnetWSURL}
	return anchor.NewClient(cluster, signer, commitment,
		anchor.WithLogger(log),
		anchor.WithRPCClient(n.ledger),
		anchor.WithWSDialer(n.ledger.Dial),
		anchor.WithConfirmPollInterval(time.Millisecond),
	)
}

func (n *testLocalnet) exclusiveClient(t *testing.T, commitment solanarpc.CommitmentType) *anchor.Client {
	t.Helper()
	signer, err := anchor.NewExclusiveSigner(n.payer)
	require.NoError(t, err)
	return n.client(signer, commitment)
}

func (n *testLocalnet) sharedClient(t *testing.T, commitment solanarpc.CommitmentType) *anchor.Client {
	t.Helper()
	signer, err := anchor.NewSharedSigner(n.payer)
	require.NoError(t, err)
	return n.client(signer, commitment)
}
