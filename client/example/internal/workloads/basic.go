package workloads

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
	"github.com/malbeclabs/anchor-go/smartcontract/sdk/go/basic2"
	"github.com/malbeclabs/anchor-go/smartcontract/sdk/go/basic4"
)

// Basic2 creates a counter owned by the payer.
func Basic2(ctx context.Context, client *anchor.Client, programID solana.PublicKey) error {
	program, err := client.Program(programID)
	if err != nil {
		return err
	}
	counter, err := newKeypair()
	if err != nil {
		return err
	}
	authority := program.Payer()

	_, err = program.Request().
		Signer(counter).
		Accounts(basic2.CreateAccounts{
			Counter:       counter.PublicKey(),
			User:          authority,
			SystemProgram: solana.SystemProgramID,
		}).
		Args(basic2.CreateArgs{Authority: authority}).
		Send(ctx)
	if err != nil {
		return fmt.Errorf("failed to create counter: %w", err)
	}

	state, err := anchor.Account[basic2.Counter](ctx, program, counter.PublicKey())
	if err != nil {
		return err
	}
	return errors.Join(
		expectEqual("counter.authority", state.Authority, authority),
		expectEqual("counter.count", state.Count, 0),
	)
}

// Basic4 initializes the program's counter PDA and increments it once.
func Basic4(ctx context.Context, client *anchor.Client, programID solana.PublicKey) error {
	program, err := client.Program(programID)
	if err != nil {
		return err
	}
	authority := program.Payer()
	counter, _, err := basic4.DeriveCounterPDA(programID)
	if err != nil {
		return fmt.Errorf("failed to derive counter PDA: %w", err)
	}

	_, err = program.Request().
		Accounts(basic4.InitializeAccounts{
			Counter:       counter,
			Authority:     authority,
			SystemProgram: solana.SystemProgramID,
		}).
		Args(basic4.InitializeArgs{}).
		Send(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize counter: %w", err)
	}
	if err := checkCounter(ctx, program, counter, authority, 0); err != nil {
		return err
	}

	_, err = program.Request().
		Accounts(basic4.IncrementAccounts{Counter: counter, Authority: authority}).
		Args(basic4.IncrementArgs{}).
		Send(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment counter: %w", err)
	}
	return checkCounter(ctx, program, counter, authority, 1)
}

func checkCounter(ctx context.Context, program *anchor.Program, address, authority solana.PublicKey, count uint64) error {
	state, err := anchor.Account[basic4.Counter](ctx, program, address)
	if err != nil {
		return err
	}
	return errors.Join(
		expectEqual("counter.authority", state.Authority, authority),
		expectEqual("counter.count", state.Count, count),
	)
}
