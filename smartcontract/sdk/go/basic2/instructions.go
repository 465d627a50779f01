package basic2

import (
	"github.com/gagliardetto/solana-go"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
)

var (
	CreateDiscriminator    = anchor.InstructionDiscriminator("create")
	IncrementDiscriminator = anchor.InstructionDiscriminator("increment")
)

// CreateAccounts initializes Counter as a new account funded by User. Counter
// must sign.
type CreateAccounts struct {
	Counter       solana.PublicKey
	User          solana.PublicKey
	SystemProgram solana.PublicKey
}

func (a CreateAccounts) AccountMetas() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		{PublicKey: a.Counter, IsSigner: true, IsWritable: true},
		{PublicKey: a.User, IsSigner: true, IsWritable: true},
		{PublicKey: a.SystemProgram},
	}
}

type CreateArgs struct {
	Authority solana.PublicKey
}

func (a CreateArgs) Data() ([]byte, error) {
	return anchor.InstructionData(CreateDiscriminator, a)
}

type IncrementAccounts struct {
	Counter   solana.PublicKey
	Authority solana.PublicKey
}

func (a IncrementAccounts) AccountMetas() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		{PublicKey: a.Counter, IsWritable: true},
		{PublicKey: a.Authority, IsSigner: true},
	}
}

type IncrementArgs struct{}

func (IncrementArgs) Data() ([]byte, error) {
	return anchor.InstructionData(IncrementDiscriminator, nil)
}
