package localnet

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
	"github.com/malbeclabs/anchor-go/smartcontract/sdk/go/basic2"
	"github.com/malbeclabs/anchor-go/smartcontract/sdk/go/basic4"
	"github.com/malbeclabs/anchor-go/smartcontract/sdk/go/composite"
	"github.com/malbeclabs/anchor-go/smartcontract/sdk/go/events"
	"github.com/malbeclabs/anchor-go/smartcontract/sdk/go/optional"
)

// Program errors, worded after the framework's error codes.
var (
	ErrInstructionMissing           = errors.New("8 byte instruction identifier not provided")
	ErrInstructionFallbackNotFound  = errors.New("fallback functions are not supported")
	ErrInstructionDidNotDeserialize = errors.New("the program could not deserialize the given instruction")
	ErrConstraintMut                = errors.New("a mut constraint was violated")
	ErrConstraintSigner             = errors.New("a signer constraint was violated")
	ErrConstraintSeeds              = errors.New("a seeds constraint was violated")
	ErrConstraintHasOne             = errors.New("a has one constraint was violated")
	ErrConstraintZero               = errors.New("expected account to be zero-initialized")
	ErrAccountNotInitialized        = errors.New("the program expected this account to be already initialized")
	ErrAccountOwnedByWrongProgram   = errors.New("the given account is owned by a different program than expected")
	ErrAccountDidNotDeserialize     = errors.New("failed to deserialize the account")
	ErrAccountDidNotSerialize       = errors.New("failed to serialize the account")
	ErrInvalidProgramID             = errors.New("program id was not as expected")
	ErrUnauthorized                 = errors.New("unauthorized")
)

func instructionDiscriminator(data []byte) (anchor.Discriminator, error) {
	if len(data) < anchor.DiscriminatorSize {
		return anchor.Discriminator{}, ErrInstructionMissing
	}
	return anchor.Discriminator(data[:anchor.DiscriminatorSize]), nil
}

func decodeArgs(inv *Invocation, d anchor.Discriminator, args any) error {
	if err := anchor.DecodeInstructionData(inv.Data, d, args); err != nil {
		return fmt.Errorf("%w: %w", ErrInstructionDidNotDeserialize, err)
	}
	return nil
}

func requireMut(a InstructionAccount) error {
	if !a.IsWritable {
		return fmt.Errorf("%w: %s", ErrConstraintMut, a.Key)
	}
	return nil
}

func requireSigner(a InstructionAccount) error {
	if !a.IsSigner {
		return fmt.Errorf("%w: %s", ErrConstraintSigner, a.Key)
	}
	return nil
}

func requireSystemProgram(a InstructionAccount) error {
	if !a.Key.Equals(solana.SystemProgramID) {
		return fmt.Errorf("%w: %s", ErrInvalidProgramID, a.Key)
	}
	return nil
}

// accounts resolves the first n instruction accounts.
func accounts(inv *Invocation, n int) ([]InstructionAccount, error) {
	out := make([]InstructionAccount, n)
	for i := range out {
		a, err := inv.Account(i)
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

// loadState decodes the program-owned account at key as T.
func loadState[T any, PT anchor.AccountDecoder[T]](inv *Invocation, key solana.PublicKey) (*T, error) {
	acct, ok := inv.Load(key)
	if !ok || len(acct.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotInitialized, key)
	}
	if !acct.Owner.Equals(inv.ProgramID) {
		return nil, fmt.Errorf("%w: %s", ErrAccountOwnedByWrongProgram, key)
	}
	v, err := anchor.DecodeAccount[T, PT](acct.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAccountDidNotDeserialize, err)
	}
	return v, nil
}

// storeState writes v over the head of the account's existing data.
func storeState(inv *Invocation, key solana.PublicKey, v anchor.Discriminated) error {
	acct, ok := inv.Load(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotInitialized, key)
	}
	data, err := anchor.EncodeWithDiscriminator(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAccountDidNotSerialize, err)
	}
	if len(data) > len(acct.Data) {
		return fmt.Errorf("%w: %d bytes do not fit in %d", ErrAccountDidNotSerialize, len(data), len(acct.Data))
	}
	copy(acct.Data, data)
	return inv.Store(key, acct)
}

// initZeroed initializes a pre-allocated, program-owned account whose
// discriminator is still zero.
func initZeroed(inv *Invocation, a InstructionAccount, v anchor.Discriminated) error {
	if err := requireMut(a); err != nil {
		return err
	}
	acct, ok := inv.Load(a.Key)
	if !ok || len(acct.Data) < anchor.DiscriminatorSize {
		return fmt.Errorf("%w: %s", ErrAccountNotInitialized, a.Key)
	}
	if !acct.Owner.Equals(inv.ProgramID) {
		return fmt.Errorf("%w: %s", ErrAccountOwnedByWrongProgram, a.Key)
	}
	if anchor.Discriminator(acct.Data[:anchor.DiscriminatorSize]) != (anchor.Discriminator{}) {
		return fmt.Errorf("%w: %s", ErrConstraintZero, a.Key)
	}
	return storeState(inv, a.Key, v)
}

// initNew creates a program-owned account at a, which must sign, and
// stores v in it.
func initNew(inv *Invocation, payer, a InstructionAccount, space uint64, v anchor.Discriminated) error {
	if err := requireSigner(payer); err != nil {
		return err
	}
	if err := requireMut(a); err != nil {
		return err
	}
	if err := inv.CreateAccount(payer.Key, a.Key, space, inv.ProgramID); err != nil {
		return err
	}
	return storeState(inv, a.Key, v)
}

// Composite updates two accounts through nested account groups.
type Composite struct{}

func (Composite) Process(inv *Invocation) error {
	d, err := instructionDiscriminator(inv.Data)
	if err != nil {
		return err
	}
	switch d {
	case composite.InitializeDiscriminator:
		accts, err := accounts(inv, 2)
		if err != nil {
			return err
		}
		if err := initZeroed(inv, accts[0], &composite.DummyA{}); err != nil {
			return err
		}
		return initZeroed(inv, accts[1], &composite.DummyB{})

	case composite.CompositeUpdateDiscriminator:
		var args composite.CompositeUpdateArgs
		if err := decodeArgs(inv, d, &args); err != nil {
			return err
		}
		accts, err := accounts(inv, 2)
		if err != nil {
			return err
		}
		for _, a := range accts {
			if err := requireMut(a); err != nil {
				return err
			}
		}
		dummyA, err := loadState[composite.DummyA](inv, accts[0].Key)
		if err != nil {
			return err
		}
		dummyB, err := loadState[composite.DummyB](inv, accts[1].Key)
		if err != nil {
			return err
		}
		dummyA.Data = args.DummyA
		dummyB.Data = args.DummyB
		if err := storeState(inv, accts[0].Key, dummyA); err != nil {
			return err
		}
		return storeState(inv, accts[1].Key, dummyB)
	}
	return ErrInstructionFallbackNotFound
}

// Basic2 keeps counters with an authority, one account per counter.
type Basic2 struct{}

func (Basic2) Process(inv *Invocation) error {
	d, err := instructionDiscriminator(inv.Data)
	if err != nil {
		return err
	}
	switch d {
	case basic2.CreateDiscriminator:
		var args basic2.CreateArgs
		if err := decodeArgs(inv, d, &args); err != nil {
			return err
		}
		accts, err := accounts(inv, 3)
		if err != nil {
			return err
		}
		counter, user, system := accts[0], accts[1], accts[2]
		if err := requireSystemProgram(system); err != nil {
			return err
		}
		if err := requireSigner(counter); err != nil {
			return err
		}
		inv.Log("Instruction: Create")
		return initNew(inv, user, counter, basic2.CounterSpace, &basic2.Counter{Authority: args.Authority})

	case basic2.IncrementDiscriminator:
		accts, err := accounts(inv, 2)
		if err != nil {
			return err
		}
		counter, authority := accts[0], accts[1]
		if err := requireMut(counter); err != nil {
			return err
		}
		if err := requireSigner(authority); err != nil {
			return err
		}
		state, err := loadState[basic2.Counter](inv, counter.Key)
		if err != nil {
			return err
		}
		if !state.Authority.Equals(authority.Key) {
			return ErrConstraintHasOne
		}
		state.Count++
		inv.Log("Instruction: Increment")
		return storeState(inv, counter.Key, state)
	}
	return ErrInstructionFallbackNotFound
}

// Basic4 keeps a single counter at a program derived address.
type Basic4 struct{}

func (Basic4) Process(inv *Invocation) error {
	d, err := instructionDiscriminator(inv.Data)
	if err != nil {
		return err
	}
	pda, _, err := basic4.DeriveCounterPDA(inv.ProgramID)
	if err != nil {
		return err
	}
	switch d {
	case basic4.InitializeDiscriminator:
		accts, err := accounts(inv, 3)
		if err != nil {
			return err
		}
		counter, authority, system := accts[0], accts[1], accts[2]
		if err := requireSystemProgram(system); err != nil {
			return err
		}
		if !counter.Key.Equals(pda) {
			return ErrConstraintSeeds
		}
		if err := requireMut(counter); err != nil {
			return err
		}
		if err := requireSigner(authority); err != nil {
			return err
		}
		if err := inv.CreatePDA(authority.Key, counter.Key, basic4.CounterSpace, []byte(basic4.CounterSeed)); err != nil {
			return err
		}
		inv.Log("Instruction: Initialize")
		return storeState(inv, counter.Key, &basic4.Counter{Authority: authority.Key})

	case basic4.IncrementDiscriminator:
		accts, err := accounts(inv, 2)
		if err != nil {
			return err
		}
		counter, authority := accts[0], accts[1]
		if !counter.Key.Equals(pda) {
			return ErrConstraintSeeds
		}
		if err := requireMut(counter); err != nil {
			return err
		}
		if err := requireSigner(authority); err != nil {
			return err
		}
		state, err := loadState[basic4.Counter](inv, counter.Key)
		if err != nil {
			return err
		}
		if !state.Authority.Equals(authority.Key) {
			return ErrUnauthorized
		}
		state.Count++
		inv.Log("Instruction: Increment")
		return storeState(inv, counter.Key, state)
	}
	return ErrInstructionFallbackNotFound
}

// Events emits an event per instruction and keeps no state.
type Events struct{}

func (Events) Process(inv *Invocation) error {
	d, err := instructionDiscriminator(inv.Data)
	if err != nil {
		return err
	}
	switch d {
	case events.InitializeDiscriminator:
		inv.Log("Instruction: Initialize")
		return inv.Emit(&events.MyEvent{Data: 5, Label: "hello"})
	case events.TestEventDiscriminator:
		inv.Log("Instruction: TestEvent")
		return inv.Emit(&events.MyOtherEvent{Data: 6, Label: "bye"})
	}
	return ErrInstructionFallbackNotFound
}

// Optional initializes a required account and, when supplied, an optional
// data account and an optional PDA. Absent optional accounts are passed as
// the program id.
type Optional struct{}

func (Optional) Process(inv *Invocation) error {
	d, err := instructionDiscriminator(inv.Data)
	if err != nil {
		return err
	}
	if d != optional.InitializeDiscriminator {
		return ErrInstructionFallbackNotFound
	}
	var args optional.InitializeArgs
	if err := decodeArgs(inv, d, &args); err != nil {
		return err
	}
	accts, err := accounts(inv, 5)
	if err != nil {
		return err
	}
	payer, pda, dataAccount, system, required := accts[0], accts[1], accts[2], accts[3], accts[4]
	present := func(a InstructionAccount) bool { return !a.Key.Equals(inv.ProgramID) }

	inv.Log("Instruction: Initialize")
	if err := initZeroed(inv, required, &optional.DataAccount{}); err != nil {
		return err
	}
	if !present(dataAccount) {
		return nil
	}
	if !present(payer) || !present(system) {
		return ErrAccountNotInitialized
	}
	if err := requireSystemProgram(system); err != nil {
		return err
	}

	value := args.Value * 2
	if present(pda) {
		want, _, err := optional.DeriveDataPDA(inv.ProgramID, dataAccount.Key)
		if err != nil {
			return err
		}
		if !pda.Key.Equals(want) {
			return ErrConstraintSeeds
		}
		if err := requireSigner(payer); err != nil {
			return err
		}
		if err := inv.CreatePDA(payer.Key, pda.Key, optional.DataPDASpace, []byte(optional.DataPDASeed), dataAccount.Key.Bytes()); err != nil {
			return err
		}
		if err := storeState(inv, pda.Key, &optional.DataPDA{DataAccount: args.Key}); err != nil {
			return err
		}
		value = args.Value
	}
	return initNew(inv, payer, dataAccount, optional.DataAccountSpace, &optional.DataAccount{Data: value})
}
