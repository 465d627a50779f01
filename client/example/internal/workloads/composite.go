package workloads

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
	"github.com/malbeclabs/anchor-go/smartcontract/sdk/go/composite"
)

// Composite creates two accounts and initializes them in one transaction,
// then updates both through nested account groups.
func Composite(ctx context.Context, client *anchor.Client, programID solana.PublicKey) error {
	program, err := client.Program(programID)
	if err != nil {
		return err
	}

	dummyA, err := newKeypair()
	if err != nil {
		return err
	}
	dummyB, err := newKeypair()
	if err != nil {
		return err
	}
	rent, err := program.RentExemption(ctx, composite.AccountSpace)
	if err != nil {
		return err
	}

	_, err = program.Request().
		Instruction(system.NewCreateAccountInstruction(rent, composite.AccountSpace, program.ID(), program.Payer(), dummyA.PublicKey()).Build()).
		Instruction(system.NewCreateAccountInstruction(rent, composite.AccountSpace, program.ID(), program.Payer(), dummyB.PublicKey()).Build()).
		Signer(dummyA).
		Signer(dummyB).
		Accounts(composite.InitializeAccounts{
			DummyA: dummyA.PublicKey(),
			DummyB: dummyB.PublicKey(),
		}).
		Args(composite.InitializeArgs{}).
		Send(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	if err := checkDummies(ctx, program, dummyA.PublicKey(), dummyB.PublicKey(), 0, 0); err != nil {
		return err
	}

	_, err = program.Request().
		Accounts(composite.CompositeUpdateAccounts{
			Foo: composite.Foo{DummyA: dummyA.PublicKey()},
			Bar: composite.Bar{DummyB: dummyB.PublicKey()},
		}).
		Args(composite.CompositeUpdateArgs{DummyA: 1234, DummyB: 4321}).
		Send(ctx)
	if err != nil {
		return fmt.Errorf("failed to update: %w", err)
	}
	return checkDummies(ctx, program, dummyA.PublicKey(), dummyB.PublicKey(), 1234, 4321)
}

func checkDummies(ctx context.Context, program *anchor.Program, a, b solana.PublicKey, wantA, wantB uint64) error {
	dummyA, err := anchor.Account[composite.DummyA](ctx, program, a)
	if err != nil {
		return err
	}
	dummyB, err := anchor.Account[composite.DummyB](ctx, program, b)
	if err != nil {
		return err
	}
	return errors.Join(
		expectEqual("dummy_a.data", dummyA.Data, wantA),
		expectEqual("dummy_b.data", dummyB.Data, wantB),
	)
}
