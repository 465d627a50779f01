package basic4

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
)

const CounterSpace = anchor.DiscriminatorSize + 32 + 8

var CounterDiscriminator = anchor.AccountDiscriminator("Counter")

type Counter struct {
	Authority solana.PublicKey
	Count     uint64
}

func (*Counter) Discriminator() anchor.Discriminator { return CounterDiscriminator }

func (c *Counter) UnmarshalWithDecoder(dec *bin.Decoder) error {
	if err := dec.Decode(&c.Authority); err != nil {
		return err
	}
	return dec.Decode(&c.Count)
}

func (c *Counter) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.Encode(c.Authority); err != nil {
		return err
	}
	return enc.Encode(c.Count)
}
