package anchor

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/near/borsh-go"
)

// Discriminated is an account or event type that can be encoded with its
// discriminator prefix.
type Discriminated interface {
	Discriminator() Discriminator
	MarshalWithEncoder(enc *bin.Encoder) error
}

// EncodeWithDiscriminator returns v's discriminator followed by its borsh
// encoding, the layout of account data and event payloads.
func EncodeWithDiscriminator(v Discriminated) ([]byte, error) {
	var buf bytes.Buffer
	d := v.Discriminator()
	buf.Write(d[:])
	if err := v.MarshalWithEncoder(bin.NewBorshEncoder(&buf)); err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	return buf.Bytes(), nil
}

// InstructionData returns the instruction discriminator followed by the borsh
// encoding of args. A nil args encodes no arguments.
func InstructionData(d Discriminator, args any) ([]byte, error) {
	data := append([]byte(nil), d[:]...)
	if args == nil {
		return data, nil
	}
	encoded, err := borsh.Serialize(args)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}
	return append(data, encoded...), nil
}

// DecodeInstructionData checks that data starts with d and decodes the rest
// into args, which must be a pointer. A nil args only checks the
// discriminator.
func DecodeInstructionData(data []byte, d Discriminator, args any) error {
	if len(data) < DiscriminatorSize || !bytes.Equal(data[:DiscriminatorSize], d[:]) {
		return fmt.Errorf("%w: instruction discriminator mismatch", ErrDecode)
	}
	if args == nil {
		return nil
	}
	if err := borsh.Deserialize(args, data[DiscriminatorSize:]); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}
