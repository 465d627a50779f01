package basic2

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
)

// CounterSpace is the allocated size of a Counter account, discriminator
// included.
const CounterSpace = anchor.DiscriminatorSize + 40

var CounterDiscriminator = anchor.AccountDiscriminator("Counter")

type Counter struct {
	Authority solana.PublicKey // 32 bytes
	Count     uint64           // 8 bytes LE
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
