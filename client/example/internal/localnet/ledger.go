// Package localnet is an in-memory single-node cluster. It serves the subset
// of JSON-RPC and websocket calls the anchor client makes, executes
// transactions against registered Go implementations of the example programs,
// and publishes their logs to subscribers.
package localnet

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
)

const (
	// LamportsPerSignature is the fee charged to the fee payer per signature.
	LamportsPerSignature = 5000

	// Rent parameters of the default cluster configuration.
	lamportsPerByteYear    = 3480
	exemptionThresholdYear = 2
	accountStorageOverhead = 128

	maxRecentBlockhashes = 150
)

// bpfLoaderUpgradeableProgramID owns deployed programs.
var bpfLoaderUpgradeableProgramID = solana.MustPublicKeyFromBase58("BPFLoaderUpgradeab1e11111111111111111111111")

var (
	ErrBlockhashNotFound = errors.New("blockhash not found")
	ErrAlreadyProcessed  = errors.New("this transaction has already been processed")
	ErrInvalidSignature  = errors.New("transaction signature verification failure")
)

// Account is the stored state of one address.
type Account struct {
	Lamports   uint64
	Owner      solana.PublicKey
	Data       []byte
	Executable bool
}

func (a *Account) clone() *Account {
	c := *a
	c.Data = append([]byte(nil), a.Data...)
	return &c
}

type signatureStatus struct {
	slot  uint64
	err   any
	level int
}

var confirmationLevels = []solanarpc.ConfirmationStatusType{
	solanarpc.ConfirmationStatusProcessed,
	solanarpc.ConfirmationStatusConfirmed,
	solanarpc.ConfirmationStatusFinalized,
}

// Ledger is safe for concurrent use. Transactions execute one at a time.
type Ledger struct {
	log *slog.Logger

	mu         sync.Mutex
	slot       uint64
	accounts   map[solana.PublicKey]*Account
	programs   map[solana.PublicKey]Program
	statuses   map[solana.Signature]*signatureStatus
	blockhashs []solana.Hash
	subs       map[*logSubscription]struct{}

	// Each status query advances a signature by this many confirmation
	// levels. Zero reports every transaction as finalized.
	confirmationStep int
}

type Option func(*Ledger)

// WithConfirmationStep makes signatures advance from processed to finalized
// by step levels per status query, so callers waiting for a stronger
// commitment have to poll.
func WithConfirmationStep(step int) Option {
	return func(l *Ledger) {
		l.confirmationStep = step
	}
}

func NewLedger(log *slog.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		log:      log,
		accounts: make(map[solana.PublicKey]*Account),
		programs: make(map[solana.PublicKey]Program),
		statuses: make(map[solana.Signature]*signatureStatus),
		subs:     make(map[*logSubscription]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.programs[solana.SystemProgramID] = systemProgram{}
	return l
}

// Deploy registers program at id.
func (l *Ledger) Deploy(id solana.PublicKey, program Program) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.programs[id] = program
	l.accounts[id] = &Account{Lamports: 1, Owner: bpfLoaderUpgradeableProgramID, Executable: true}
}

// Airdrop credits lamports to key, creating a system account if needed.
func (l *Ledger) Airdrop(key solana.PublicKey, lamports uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.accounts[key]
	if !ok {
		acct = &Account{Owner: solana.SystemProgramID}
		l.accounts[key] = acct
	}
	acct.Lamports += lamports
}

// Account returns a copy of the account at key.
func (l *Ledger) Account(key solana.PublicKey) (*Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.accounts[key]
	if !ok {
		return nil, false
	}
	return acct.clone(), true
}

// ProgramAccounts returns copies of every account owned by owner.
func (l *Ledger) ProgramAccounts(owner solana.PublicKey) map[solana.PublicKey]*Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[solana.PublicKey]*Account)
	for key, acct := range l.accounts {
		if acct.Owner.Equals(owner) {
			out[key] = acct.clone()
		}
	}
	return out
}

func RentExemptMinimum(size uint64) uint64 {
	return (size + accountStorageOverhead) * lamportsPerByteYear * exemptionThresholdYear
}

func (l *Ledger) GetLatestBlockhash(_ context.Context, _ solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.slot++
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], l.slot)
	hash := solana.Hash(sha256.Sum256(seed[:]))
	l.blockhashs = append(l.blockhashs, hash)
	if len(l.blockhashs) > maxRecentBlockhashes {
		l.blockhashs = l.blockhashs[1:]
	}
	return &solanarpc.GetLatestBlockhashResult{
		RPCContext: solanarpc.RPCContext{Context: solanarpc.Context{Slot: l.slot}},
		Value: &solanarpc.LatestBlockhashResult{
			Blockhash:            hash,
			LastValidBlockHeight: l.slot + maxRecentBlockhashes,
		},
	}, nil
}

func (l *Ledger) GetMinimumBalanceForRentExemption(_ context.Context, size uint64, _ solanarpc.CommitmentType) (uint64, error) {
	return RentExemptMinimum(size), nil
}

func (l *Ledger) GetAccountInfoWithOpts(_ context.Context, key solana.PublicKey, _ *solanarpc.GetAccountInfoOpts) (*solanarpc.GetAccountInfoResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.accounts[key]
	if !ok {
		return nil, solanarpc.ErrNotFound
	}
	return &solanarpc.GetAccountInfoResult{
		RPCContext: solanarpc.RPCContext{Context: solanarpc.Context{Slot: l.slot}},
		Value: &solanarpc.Account{
			Lamports:   acct.Lamports,
			Owner:      acct.Owner,
			Data:       solanarpc.DataBytesOrJSONFromBytes(append([]byte(nil), acct.Data...)),
			Executable: acct.Executable,
		},
	}, nil
}

func (l *Ledger) GetSignatureStatuses(_ context.Context, _ bool, sigs ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := &solanarpc.GetSignatureStatusesResult{
		RPCContext: solanarpc.RPCContext{Context: solanarpc.Context{Slot: l.slot}},
		Value:      make([]*solanarpc.SignatureStatusesResult, len(sigs)),
	}
	for i, sig := range sigs {
		st, ok := l.statuses[sig]
		if !ok {
			continue
		}
		level := len(confirmationLevels) - 1
		if l.confirmationStep > 0 {
			level = min(st.level, len(confirmationLevels)-1)
			st.level += l.confirmationStep
		}
		res.Value[i] = &solanarpc.SignatureStatusesResult{
			Slot:               st.slot,
			Err:                st.err,
			ConfirmationStatus: confirmationLevels[level],
		}
	}
	return res, nil
}

// SendTransactionWithOpts verifies and executes tx. With preflight enabled a
// failing transaction is rejected as a simulation failure and leaves no
// trace; with preflight skipped it is recorded with its error and its logs
// are published.
func (l *Ledger) SendTransactionWithOpts(_ context.Context, tx *solana.Transaction, opts solanarpc.TransactionOpts) (solana.Signature, error) {
	if len(tx.Signatures) == 0 {
		return solana.Signature{}, ErrInvalidSignature
	}
	if err := tx.VerifySignatures(); err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	sig := tx.Signatures[0]

	l.mu.Lock()
	if _, ok := l.statuses[sig]; ok {
		l.mu.Unlock()
		return solana.Signature{}, ErrAlreadyProcessed
	}
	if !l.isRecentBlockhash(tx.Message.RecentBlockhash) {
		l.mu.Unlock()
		return solana.Signature{}, ErrBlockhashNotFound
	}

	result := l.execute(tx)
	if result.err != nil && !opts.SkipPreflight {
		l.mu.Unlock()
		l.log.Debug("Rejected transaction in preflight", "sig", sig, "error", result.err)
		return solana.Signature{}, &jsonrpc.RPCError{
			Code:    -32002,
			Message: fmt.Sprintf("Transaction simulation failed: %v", result.err),
			Data:    map[string]any{"logs": result.logs},
		}
	}

	l.slot++
	status := &signatureStatus{slot: l.slot}
	if result.err != nil {
		status.err = result.statusErr()
		if payer, ok := l.accounts[tx.Message.AccountKeys[0]]; ok && payer.Lamports >= result.fee {
			payer.Lamports -= result.fee
		}
	}
	l.statuses[sig] = status
	notification := &anchor.LogNotification{
		Signature: sig,
		Slot:      l.slot,
		Err:       status.err,
		Logs:      result.logs,
	}
	subs := l.subscribersFor(tx.Message.AccountKeys)
	l.mu.Unlock()

	l.log.Debug("Processed transaction", "sig", sig, "slot", notification.Slot, "error", result.err)
	for _, sub := range subs {
		sub.publish(notification)
	}
	return sig, nil
}

func (l *Ledger) isRecentBlockhash(hash solana.Hash) bool {
	for _, h := range l.blockhashs {
		if h == hash {
			return true
		}
	}
	return false
}
