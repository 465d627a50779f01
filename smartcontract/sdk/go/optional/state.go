package optional

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
)

const (
	DataAccountSpace = anchor.DiscriminatorSize + 8
	DataPDASpace     = anchor.DiscriminatorSize + 32
)

var (
	DataAccountDiscriminator = anchor.AccountDiscriminator("DataAccount")
	DataPDADiscriminator     = anchor.AccountDiscriminator("DataPda")
)

type DataAccount struct {
	Data uint64
}

func (*DataAccount) Discriminator() anchor.Discriminator { return DataAccountDiscriminator }

func (d *DataAccount) UnmarshalWithDecoder(dec *bin.Decoder) error {
	return dec.Decode(&d.Data)
}

func (d *DataAccount) MarshalWithEncoder(enc *bin.Encoder) error {
	return enc.Encode(d.Data)
}

type DataPDA struct {
	DataAccount solana.PublicKey
}

func (*DataPDA) Discriminator() anchor.Discriminator { return DataPDADiscriminator }

func (d *DataPDA) UnmarshalWithDecoder(dec *bin.Decoder) error {
	return dec.Decode(&d.DataAccount)
}

func (d *DataPDA) MarshalWithEncoder(enc *bin.Encoder) error {
	return enc.Encode(d.DataAccount)
}
