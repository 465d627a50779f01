package basic4

import (
	"github.com/gagliardetto/solana-go"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
)

var (
	InitializeDiscriminator = anchor.InstructionDiscriminator("initialize")
	IncrementDiscriminator  = anchor.InstructionDiscriminator("increment")
)

type InitializeAccounts struct {
	Counter       solana.PublicKey
	Authority     solana.PublicKey
	SystemProgram solana.PublicKey
}

func (a InitializeAccounts) AccountMetas() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		{PublicKey: a.Counter, IsWritable: true},
		{PublicKey: a.Authority, IsSigner: true, IsWritable: true},
		{PublicKey: a.SystemProgram},
	}
}

type InitializeArgs struct{}

func (InitializeArgs) Data() ([]byte, error) {
	return anchor.InstructionData(InitializeDiscriminator, nil)
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
