package events

import (
	bin "github.com/gagliardetto/binary"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
)

var (
	MyEventDiscriminator      = anchor.EventDiscriminator("MyEvent")
	MyOtherEventDiscriminator = anchor.EventDiscriminator("MyOtherEvent")
)

// MyEvent is emitted by Initialize.
type MyEvent struct {
	Data  uint64
	Label string
}

func (*MyEvent) Discriminator() anchor.Discriminator { return MyEventDiscriminator }

func (e *MyEvent) UnmarshalWithDecoder(dec *bin.Decoder) error {
	if err := dec.Decode(&e.Data); err != nil {
		return err
	}
	return dec.Decode(&e.Label)
}

func (e *MyEvent) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.Encode(e.Data); err != nil {
		return err
	}
	return enc.Encode(e.Label)
}

// MyOtherEvent is emitted by TestEvent.
type MyOtherEvent struct {
	Data  uint64
	Label string
}

func (*MyOtherEvent) Discriminator() anchor.Discriminator { return MyOtherEventDiscriminator }

func (e *MyOtherEvent) UnmarshalWithDecoder(dec *bin.Decoder) error {
	if err := dec.Decode(&e.Data); err != nil {
		return err
	}
	return dec.Decode(&e.Label)
}

func (e *MyOtherEvent) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.Encode(e.Data); err != nil {
		return err
	}
	return enc.Encode(e.Label)
}
