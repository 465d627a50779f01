package workloads_test

import (
	"context"
	"encoding/hex"
	"sort"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/google/go-cmp/cmp"
	"github.com/malbeclabs/anchor-go/client/example/internal/harness"
	"github.com/malbeclabs/anchor-go/client/example/internal/localnet"
	"github.com/malbeclabs/anchor-go/client/example/internal/workloads"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
	"github.com/malbeclabs/anchor-go/smartcontract/sdk/go/basic2"
	"github.com/malbeclabs/anchor-go/smartcontract/sdk/go/basic4"
	"github.com/malbeclabs/anchor-go/smartcontract/sdk/go/composite"
	"github.com/malbeclabs/anchor-go/smartcontract/sdk/go/events"
	"github.com/malbeclabs/anchor-go/smartcontract/sdk/go/optional"
	"github.com/stretchr/testify/require"
)

const testEventTimeout = 5 * time.Second

// snapshot maps each program to the sorted hex data of the accounts it owns,
// plus the payer balance.
func snapshot(n *testLocalnet) map[string][]string {
	owners := map[string]solana.PublicKey{
		"composite": n.ids.Composite,
		"basic_2":   n.ids.Basic2,
		"basic_4":   n.ids.Basic4,
		"events":    n.ids.Events,
		"optional":  n.ids.Optional,
	}
	out := make(map[string][]string, len(owners)+1)
	for name, owner := range owners {
		var data []string
		for _, acct := range n.ledger.ProgramAccounts(owner) {
			data = append(data, hex.EncodeToString(acct.Data))
		}
		sort.Strings(data)
		out[name] = data
	}
	payer, ok := n.ledger.Account(n.payer.PublicKey())
	if ok {
		out["payer"] = []string{strconv.FormatUint(payer.Lamports, 10)}
	}
	return out
}

func TestWorkloads_Sequential(t *testing.T) {
	t.Parallel()

	n := newTestLocalnet(t)
	client := n.exclusiveClient(t, solanarpc.CommitmentProcessed)

	err := harness.RunSequential(t.Context(), log, client, workloads.All(n.ids, testEventTimeout))
	require.NoError(t, err)

	state := snapshot(n)
	require.Len(t, state["composite"], 2)
	require.Len(t, state["basic_2"], 1)
	require.Len(t, state["basic_4"], 1)
	require.Empty(t, state["events"])
	require.Len(t, state["optional"], 2)

	pda, _, err := basic4.DeriveCounterPDA(n.ids.Basic4)
	require.NoError(t, err)
	acct, ok := n.ledger.Account(pda)
	require.True(t, ok)
	counter, err := anchor.DecodeAccount[basic4.Counter](acct.Data)
	require.NoError(t, err)
	require.Equal(t, n.payer.PublicKey(), counter.Authority)
	require.Equal(t, uint64(1), counter.Count)

	// Every subscription opened by the events workload was released.
	require.Eventually(t, func() bool { return n.ledger.Subscriptions() == 0 }, time.Second, 5*time.Millisecond)
}

func TestWorkloads_Concurrent(t *testing.T) {
	t.Parallel()

	n := newTestLocalnet(t)
	client := n.sharedClient(t, solanarpc.CommitmentProcessed)

	results, err := harness.RunConcurrent(t.Context(), log, client, workloads.All(n.ids, testEventTimeout))
	require.NoError(t, err)
	require.Len(t, results, 5)
	for i, name := range []string{"composite", "basic_2", "basic_4", "events", "optional"} {
		require.Equal(t, name, results[i].Workload)
		require.NoError(t, results[i].Err)
	}
}

func TestWorkloads_SequentialAndConcurrentConverge(t *testing.T) {
	t.Parallel()

	seq := newTestLocalnet(t)
	conc := newTestLocalnet(t)
	// Same payer and program ids so both ledgers can be compared byte for byte.
	conc.payer = seq.payer
	conc.ids = seq.ids
	conc.ledger = localnet.NewLedger(log)
	conc.ledger.Deploy(seq.ids.Composite, localnet.Composite{})
	conc.ledger.Deploy(seq.ids.Basic2, localnet.Basic2{})
	conc.ledger.Deploy(seq.ids.Basic4, localnet.Basic4{})
	conc.ledger.Deploy(seq.ids.Events, localnet.Events{})
	conc.ledger.Deploy(seq.ids.Optional, localnet.Optional{})
	conc.ledger.Airdrop(seq.payer.PublicKey(), 100*solana.LAMPORTS_PER_SOL)

	err := harness.RunSequential(t.Context(), log, seq.exclusiveClient(t, solanarpc.CommitmentProcessed), workloads.All(seq.ids, testEventTimeout))
	require.NoError(t, err)
	_, err = harness.RunConcurrent(t.Context(), log, conc.sharedClient(t, solanarpc.CommitmentProcessed), workloads.All(conc.ids, testEventTimeout))
	require.NoError(t, err)

	if diff := cmp.Diff(snapshot(seq), snapshot(conc)); diff != "" {
		t.Fatalf("final state mismatch (-sequential +concurrent):\n%s", diff)
	}
}

func TestWorkloads_WaitsForFinalized(t *testing.T) {
	t.Parallel()

	n := newTestLocalnet(t, localnet.WithConfirmationStep(1))
	client := n.exclusiveClient(t, solanarpc.CommitmentFinalized)

	err := harness.RunSequential(t.Context(), log, client, workloads.All(n.ids, testEventTimeout))
	require.NoError(t, err)
}

func TestWorkloads_Composite_State(t *testing.T) {
	t.Parallel()

	n := newTestLocalnet(t)
	client := n.exclusiveClient(t, solanarpc.CommitmentProcessed)
	require.NoError(t, workloads.Composite(t.Context(), client, n.ids.Composite))

	var as, bs []uint64
	for _, acct := range n.ledger.ProgramAccounts(n.ids.Composite) {
		require.Len(t, acct.Data, composite.AccountSpace)
		if a, err := anchor.DecodeAccount[composite.DummyA](acct.Data); err == nil {
			as = append(as, a.Data)
			continue
		}
		b, err := anchor.DecodeAccount[composite.DummyB](acct.Data)
		require.NoError(t, err)
		bs = append(bs, b.Data)
	}
	require.Equal(t, []uint64{1234}, as)
	require.Equal(t, []uint64{4321}, bs)
}

func TestWorkloads_Basic2_CounterOwnedByPayer(t *testing.T) {
	t.Parallel()

	n := newTestLocalnet(t)
	client := n.exclusiveClient(t, solanarpc.CommitmentProcessed)
	require.NoError(t, workloads.Basic2(t.Context(), client, n.ids.Basic2))

	accts := n.ledger.ProgramAccounts(n.ids.Basic2)
	require.Len(t, accts, 1)
	for _, acct := range accts {
		counter, err := anchor.DecodeAccount[basic2.Counter](acct.Data)
		require.NoError(t, err)
		require.Equal(t, n.payer.PublicKey(), counter.Authority)
		require.Zero(t, counter.Count)
	}
}

func TestWorkloads_Basic4_SecondRunFails(t *testing.T) {
	t.Parallel()

	n := newTestLocalnet(t)
	client := n.exclusiveClient(t, solanarpc.CommitmentProcessed)
	require.NoError(t, workloads.Basic4(t.Context(), client, n.ids.Basic4))

	// The counter PDA already exists, so initialize is rejected.
	err := workloads.Basic4(t.Context(), client, n.ids.Basic4)
	require.ErrorIs(t, err, anchor.ErrSubmission)
}

func TestWorkloads_Optional_PDAOmitted(t *testing.T) {
	t.Parallel()

	n := newTestLocalnet(t)
	client := n.exclusiveClient(t, solanarpc.CommitmentProcessed)
	require.NoError(t, workloads.Optional(t.Context(), client, n.ids.Optional))

	var values []uint64
	for _, acct := range n.ledger.ProgramAccounts(n.ids.Optional) {
		_, err := anchor.DecodeAccount[optional.DataPDA](acct.Data)
		require.ErrorIs(t, err, anchor.ErrDecode)
		data, err := anchor.DecodeAccount[optional.DataAccount](acct.Data)
		require.NoError(t, err)
		values = append(values, data.Data)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	require.Equal(t, []uint64{0, 20}, values)
}

func TestWorkloads_Events_DeliveredOnce(t *testing.T) {
	t.Parallel()

	n := newTestLocalnet(t)
	client := n.sharedClient(t, solanarpc.CommitmentProcessed)
	program, err := client.Program(n.ids.Events)
	require.NoError(t, err)

	var got atomic.Int32
	unsub, err := anchor.On(t.Context(), program, func(_ anchor.EventContext, ev *events.MyEvent) {
		got.Add(1)
	})
	require.NoError(t, err)
	defer unsub.Unsubscribe()

	require.NoError(t, workloads.Events(testEventTimeout)(t.Context(), client, n.ids.Events))
	require.Eventually(t, func() bool { return got.Load() == 1 }, time.Second, 5*time.Millisecond)

	// test_event emits a different event type, which this handler never sees.
	_, err = program.Request().Args(events.TestEventArgs{}).Send(t.Context())
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, int32(1), got.Load())
}

func TestWorkloads_Events_TimesOutWithoutEvent(t *testing.T) {
	t.Parallel()

	n := newTestLocalnet(t)
	// A program that accepts initialize but emits nothing.
	silent := solana.NewWallet().PublicKey()
	n.ledger.Deploy(silent, localnet.ProgramFunc(func(*localnet.Invocation) error { return nil }))
	client := n.exclusiveClient(t, solanarpc.CommitmentProcessed)

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	err := workloads.Events(50*time.Millisecond)(ctx, client, silent)
	require.ErrorIs(t, err, anchor.ErrEventTimeout)
}

func TestWorkloads_UnknownProgram(t *testing.T) {
	t.Parallel()

	n := newTestLocalnet(t)
	client := n.exclusiveClient(t, solanarpc.CommitmentProcessed)

	err := workloads.Basic2(t.Context(), client, solana.NewWallet().PublicKey())
	require.ErrorIs(t, err, anchor.ErrSubmission)
}
