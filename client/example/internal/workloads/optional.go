package workloads

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
	"github.com/malbeclabs/anchor-go/smartcontract/sdk/go/optional"
)

// Optional initializes with the data account supplied and the PDA omitted, so
// the PDA must not exist and the data account holds twice the value.
func Optional(ctx context.Context, client *anchor.Client, programID solana.PublicKey) error {
	program, err := client.Program(programID)
	if err != nil {
		return err
	}

	dataAccount, err := newKeypair()
	if err != nil {
		return err
	}
	required, err := newKeypair()
	if err != nil {
		return err
	}
	dataPDA, _, err := optional.DeriveDataPDA(programID, dataAccount.PublicKey())
	if err != nil {
		return fmt.Errorf("failed to derive data PDA: %w", err)
	}
	rent, err := program.RentExemption(ctx, optional.DataAccountSpace)
	if err != nil {
		return err
	}

	const value uint64 = 10
	payer := program.Payer()
	systemProgram := solana.SystemProgramID
	dataAccountKey := dataAccount.PublicKey()
	_, err = program.Request().
		Instruction(system.NewCreateAccountInstruction(rent, optional.DataAccountSpace, programID, payer, required.PublicKey()).Build()).
		Signer(dataAccount).
		Signer(required).
		Accounts(optional.InitializeAccounts{
			ProgramID:       programID,
			Payer:           &payer,
			SystemProgram:   &systemProgram,
			OptionalAccount: &dataAccountKey,
			Required:        required.PublicKey(),
		}).
		Args(optional.InitializeArgs{Value: value, Key: programID}).
		Send(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	requiredState, err := anchor.Account[optional.DataAccount](ctx, program, required.PublicKey())
	if err != nil {
		return err
	}
	if err := expectEqual("required.data", requiredState.Data, 0); err != nil {
		return err
	}

	if _, err := anchor.Account[optional.DataPDA](ctx, program, dataPDA); !errors.Is(err, anchor.ErrNotFound) {
		return fmt.Errorf("%w: optional pda read returned %v, want not found", ErrUnexpectedState, err)
	}

	dataState, err := anchor.Account[optional.DataAccount](ctx, program, dataAccountKey)
	if err != nil {
		return err
	}
	return expectEqual("optional_account.data", dataState.Data, value*2)
}
