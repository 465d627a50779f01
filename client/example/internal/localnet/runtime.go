package localnet

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
)

const computeUnitLimit = 200_000

var (
	ErrUnknownProgram       = errors.New("attempt to load a program that does not exist")
	ErrNotEnoughAccountKeys = errors.New("insufficient account keys for instruction")
	ErrMissingSignature     = errors.New("missing required signature for instruction")
	ErrReadonlyModified     = errors.New("instruction modified data of a read-only account")
	ErrAccountAlreadyInUse  = errors.New("account already in use")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidSeeds         = errors.New("could not create program address with signer seeds")
)

// Program is the Go implementation of an on-chain program.
type Program interface {
	Process(inv *Invocation) error
}

type ProgramFunc func(inv *Invocation) error

func (f ProgramFunc) Process(inv *Invocation) error { return f(inv) }

// InstructionAccount is one entry of an instruction's account list with the
// privileges the transaction grants it.
type InstructionAccount struct {
	Key        solana.PublicKey
	IsSigner   bool
	IsWritable bool
}

// Invocation is the execution context of one top-level instruction.
type Invocation struct {
	ProgramID solana.PublicKey
	Accounts  []InstructionAccount
	Data      []byte

	tx *txContext
}

// Account returns the i-th instruction account.
func (inv *Invocation) Account(i int) (InstructionAccount, error) {
	if i < 0 || i >= len(inv.Accounts) {
		return InstructionAccount{}, ErrNotEnoughAccountKeys
	}
	return inv.Accounts[i], nil
}

// Load returns a copy of the account at key as seen by this transaction.
func (inv *Invocation) Load(key solana.PublicKey) (*Account, bool) {
	return inv.tx.load(key)
}

// Store replaces the account at key. The transaction must grant write access
// to key.
func (inv *Invocation) Store(key solana.PublicKey, acct *Account) error {
	if !inv.tx.writable[key] {
		return fmt.Errorf("%w: %s", ErrReadonlyModified, key)
	}
	inv.tx.staged[key] = acct.clone()
	return nil
}

// CreateAccount allocates space bytes at key owned by owner, funded with the
// rent-exempt minimum by payer. Both payer and key must sign.
func (inv *Invocation) CreateAccount(payer, key solana.PublicKey, space uint64, owner solana.PublicKey) error {
	return inv.tx.createAccount(payer, key, RentExemptMinimum(space), space, owner, inv.tx.signers[key])
}

// CreatePDA allocates space bytes at the program address derived from seeds,
// owned by the invoking program and funded by payer.
func (inv *Invocation) CreatePDA(payer, key solana.PublicKey, space uint64, seeds ...[]byte) error {
	want, _, err := solana.FindProgramAddress(seeds, inv.ProgramID)
	if err != nil || !want.Equals(key) {
		return fmt.Errorf("%w: %s", ErrInvalidSeeds, key)
	}
	return inv.tx.createAccount(payer, key, RentExemptMinimum(space), space, inv.ProgramID, true)
}

// Log appends a "Program log:" line.
func (inv *Invocation) Log(format string, args ...any) {
	inv.tx.logs = append(inv.tx.logs, "Program log: "+fmt.Sprintf(format, args...))
}

// Emit appends ev as a "Program data:" line.
func (inv *Invocation) Emit(ev anchor.Discriminated) error {
	payload, err := anchor.EncodeWithDiscriminator(ev)
	if err != nil {
		return err
	}
	inv.tx.logs = append(inv.tx.logs, "Program data: "+encodeBase64(payload))
	return nil
}

type txContext struct {
	ledger   *Ledger
	signers  map[solana.PublicKey]bool
	writable map[solana.PublicKey]bool
	staged   map[solana.PublicKey]*Account
	logs     []string
}

func (tx *txContext) load(key solana.PublicKey) (*Account, bool) {
	if acct, ok := tx.staged[key]; ok {
		if acct == nil {
			return nil, false
		}
		return acct.clone(), true
	}
	acct, ok := tx.ledger.accounts[key]
	if !ok {
		return nil, false
	}
	return acct.clone(), true
}

func (tx *txContext) createAccount(payer, key solana.PublicKey, lamports, space uint64, owner solana.PublicKey, keySigned bool) error {
	if !tx.signers[payer] || !keySigned {
		return ErrMissingSignature
	}
	if !tx.writable[payer] || !tx.writable[key] {
		return ErrReadonlyModified
	}
	if existing, ok := tx.load(key); ok && (len(existing.Data) > 0 || !existing.Owner.Equals(solana.SystemProgramID)) {
		return fmt.Errorf("%w: %s", ErrAccountAlreadyInUse, key)
	}
	from, ok := tx.load(payer)
	if !ok || from.Lamports < lamports {
		return fmt.Errorf("%w: %s", ErrInsufficientFunds, payer)
	}
	from.Lamports -= lamports
	tx.staged[payer] = from
	tx.staged[key] = &Account{Lamports: lamports, Owner: owner, Data: make([]byte, space)}
	return nil
}

type executionResult struct {
	logs  []string
	err   error
	index int
	fee   uint64
}

// statusErr renders the failure the way the signature status reports it.
func (r executionResult) statusErr() any {
	return map[string]any{"InstructionError": []any{r.index, r.err.Error()}}
}

// execute runs every instruction of tx against a staged copy of the touched
// accounts and commits the copy, fee included, only if all succeed. A failed
// result carries the fee for the caller to charge. The caller holds l.mu.
func (l *Ledger) execute(tx *solana.Transaction) executionResult {
	msg := tx.Message
	keys := msg.AccountKeys
	numSigners := int(msg.Header.NumRequiredSignatures)
	numReadonlySigned := int(msg.Header.NumReadonlySignedAccounts)
	numReadonlyUnsigned := int(msg.Header.NumReadonlyUnsignedAccounts)

	txc := &txContext{
		ledger:   l,
		signers:  make(map[solana.PublicKey]bool, numSigners),
		writable: make(map[solana.PublicKey]bool, len(keys)),
		staged:   make(map[solana.PublicKey]*Account),
	}
	for i, key := range keys {
		if i < numSigners {
			txc.signers[key] = true
			txc.writable[key] = i < numSigners-numReadonlySigned
		} else {
			txc.writable[key] = i < len(keys)-numReadonlyUnsigned
		}
	}

	feePayer := keys[0]
	fee := uint64(len(tx.Signatures)) * LamportsPerSignature
	payerAcct, ok := l.accounts[feePayer]
	if !ok || payerAcct.Lamports < fee {
		return executionResult{err: fmt.Errorf("%w: fee payer %s", ErrInsufficientFunds, feePayer)}
	}
	charged := payerAcct.clone()
	charged.Lamports -= fee
	txc.staged[feePayer] = charged

	for i, ix := range msg.Instructions {
		if int(ix.ProgramIDIndex) >= len(keys) {
			return l.failed(txc, i, fee, ErrNotEnoughAccountKeys)
		}
		programID := keys[ix.ProgramIDIndex]
		program, ok := l.programs[programID]
		if !ok {
			return l.failed(txc, i, fee, fmt.Errorf("%w: %s", ErrUnknownProgram, programID))
		}

		inv := &Invocation{ProgramID: programID, Data: ix.Data, tx: txc}
		for _, idx := range ix.Accounts {
			if int(idx) >= len(keys) {
				return l.failed(txc, i, fee, ErrNotEnoughAccountKeys)
			}
			key := keys[idx]
			inv.Accounts = append(inv.Accounts, InstructionAccount{
				Key:        key,
				IsSigner:   txc.signers[key],
				IsWritable: txc.writable[key],
			})
		}

		txc.logs = append(txc.logs, fmt.Sprintf("Program %s invoke [1]", programID))
		if err := program.Process(inv); err != nil {
			txc.logs = append(txc.logs, fmt.Sprintf("Program %s failed: %v", programID, err))
			return l.failed(txc, i, fee, err)
		}
		txc.logs = append(txc.logs,
			fmt.Sprintf("Program %s consumed %d of %d compute units", programID, 1000, computeUnitLimit),
			fmt.Sprintf("Program %s success", programID),
		)
	}

	for key, acct := range txc.staged {
		l.accounts[key] = acct
	}
	return executionResult{logs: txc.logs, fee: fee}
}

func (l *Ledger) failed(txc *txContext, index int, fee uint64, err error) executionResult {
	return executionResult{logs: txc.logs, err: err, index: index, fee: fee}
}

func encodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
