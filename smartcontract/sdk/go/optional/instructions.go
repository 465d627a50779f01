package optional

import (
	"github.com/gagliardetto/solana-go"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
)

var InitializeDiscriminator = anchor.InstructionDiscriminator("initialize")

// InitializeAccounts has optional slots. An absent account is passed as the
// program id itself, read-only and unsigned.
type InitializeAccounts struct {
	ProgramID       solana.PublicKey
	Payer           *solana.PublicKey
	OptionalPDA     *solana.PublicKey
	OptionalAccount *solana.PublicKey
	SystemProgram   *solana.PublicKey
	Required        solana.PublicKey
}

func (a InitializeAccounts) AccountMetas() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		a.optional(a.Payer, true, true),
		a.optional(a.OptionalPDA, false, true),
		a.optional(a.OptionalAccount, true, true),
		a.optional(a.SystemProgram, false, false),
		{PublicKey: a.Required, IsWritable: true},
	}
}

func (a InitializeAccounts) optional(key *solana.PublicKey, signer, writable bool) *solana.AccountMeta {
	if key == nil {
		return &solana.AccountMeta{PublicKey: a.ProgramID}
	}
	return &solana.AccountMeta{PublicKey: *key, IsSigner: signer, IsWritable: writable}
}

// InitializeArgs zeroes Required. With OptionalAccount and no OptionalPDA it
// stores Value*2 in OptionalAccount; with both it stores Value and records
// Key in the PDA.
type InitializeArgs struct {
	Value uint64
	Key   solana.PublicKey
}

func (a InitializeArgs) Data() ([]byte, error) {
	return anchor.InstructionData(InitializeDiscriminator, a)
}
