package composite

import (
	"github.com/gagliardetto/solana-go"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
)

var (
	InitializeDiscriminator      = anchor.InstructionDiscriminator("initialize")
	CompositeUpdateDiscriminator = anchor.InstructionDiscriminator("composite_update")
)

// InitializeAccounts are two freshly created, zeroed accounts owned by the
// program.
type InitializeAccounts struct {
	DummyA solana.PublicKey
	DummyB solana.PublicKey
}

func (a InitializeAccounts) AccountMetas() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		{PublicKey: a.DummyA, IsWritable: true},
		{PublicKey: a.DummyB, IsWritable: true},
	}
}

type InitializeArgs struct{}

func (InitializeArgs) Data() ([]byte, error) {
	return anchor.InstructionData(InitializeDiscriminator, nil)
}

type Foo struct {
	DummyA solana.PublicKey
}

func (f Foo) AccountMetas() []*solana.AccountMeta {
	return []*solana.AccountMeta{{PublicKey: f.DummyA, IsWritable: true}}
}

type Bar struct {
	DummyB solana.PublicKey
}

func (b Bar) AccountMetas() []*solana.AccountMeta {
	return []*solana.AccountMeta{{PublicKey: b.DummyB, IsWritable: true}}
}

// CompositeUpdateAccounts nests two account groups; they flatten in field
// order.
type CompositeUpdateAccounts struct {
	Foo Foo
	Bar Bar
}

func (a CompositeUpdateAccounts) AccountMetas() []*solana.AccountMeta {
	return append(a.Foo.AccountMetas(), a.Bar.AccountMetas()...)
}

type CompositeUpdateArgs struct {
	DummyA uint64
	DummyB uint64
}

func (a CompositeUpdateArgs) Data() ([]byte, error) {
	return anchor.InstructionData(CompositeUpdateDiscriminator, a)
}
