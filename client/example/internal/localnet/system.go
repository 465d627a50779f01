package localnet

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// systemProgram supports account creation and transfers.
type systemProgram struct{}

func (systemProgram) Process(inv *Invocation) error {
	metas := make([]*solana.AccountMeta, len(inv.Accounts))
	for i, a := range inv.Accounts {
		metas[i] = &solana.AccountMeta{PublicKey: a.Key, IsSigner: a.IsSigner, IsWritable: a.IsWritable}
	}
	ix, err := system.DecodeInstruction(metas, inv.Data)
	if err != nil {
		return fmt.Errorf("invalid instruction data: %w", err)
	}

	switch impl := ix.Impl.(type) {
	case *system.CreateAccount:
		from, err := inv.Account(0)
		if err != nil {
			return err
		}
		to, err := inv.Account(1)
		if err != nil {
			return err
		}
		return inv.tx.createAccount(from.Key, to.Key, *impl.Lamports, *impl.Space, *impl.Owner, to.IsSigner)
	case *system.Transfer:
		from, err := inv.Account(0)
		if err != nil {
			return err
		}
		to, err := inv.Account(1)
		if err != nil {
			return err
		}
		return transfer(inv, from, to, *impl.Lamports)
	default:
		return fmt.Errorf("unsupported system instruction %T", ix.Impl)
	}
}

func transfer(inv *Invocation, from, to InstructionAccount, lamports uint64) error {
	if !from.IsSigner {
		return ErrMissingSignature
	}
	src, ok := inv.Load(from.Key)
	if !ok || src.Lamports < lamports {
		return fmt.Errorf("%w: %s", ErrInsufficientFunds, from.Key)
	}
	dst, ok := inv.Load(to.Key)
	if !ok {
		dst = &Account{Owner: solana.SystemProgramID}
	}
	src.Lamports -= lamports
	dst.Lamports += lamports
	if err := inv.Store(from.Key, src); err != nil {
		return err
	}
	return inv.Store(to.Key, dst)
}
