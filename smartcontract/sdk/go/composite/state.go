package composite

import (
	bin "github.com/gagliardetto/binary"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
)

// AccountSpace is the size the example client allocates for each dummy
// account.
const AccountSpace = 500

var (
	DummyADiscriminator = anchor.AccountDiscriminator("DummyA")
	DummyBDiscriminator = anchor.AccountDiscriminator("DummyB")
)

type DummyA struct {
	Data uint64
}

func (*DummyA) Discriminator() anchor.Discriminator { return DummyADiscriminator }

func (d *DummyA) UnmarshalWithDecoder(dec *bin.Decoder) error {
	return dec.Decode(&d.Data)
}

func (d *DummyA) MarshalWithEncoder(enc *bin.Encoder) error {
	return enc.Encode(d.Data)
}

type DummyB struct {
	Data uint64
}

func (*DummyB) Discriminator() anchor.Discriminator { return DummyBDiscriminator }

func (d *DummyB) UnmarshalWithDecoder(dec *bin.Decoder) error {
	return dec.Decode(&d.Data)
}

func (d *DummyB) MarshalWithEncoder(enc *bin.Encoder) error {
	return enc.Encode(d.Data)
}
