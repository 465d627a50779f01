package anchor

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

// AccountDecoder is implemented by pointers to account state types.
type AccountDecoder[T any] interface {
	*T
	Discriminator() Discriminator
	UnmarshalWithDecoder(dec *bin.Decoder) error
}

// DecodeAccount decodes account data as T. The data must start with T's
// discriminator and hold at least T's fields; trailing bytes are ignored.
func DecodeAccount[T any, PT AccountDecoder[T]](data []byte) (*T, error) {
	var v T
	if err := decodeDiscriminated(data, PT(&v)); err != nil {
		return nil, err
	}
	return &v, nil
}

// Account fetches the account at address at the client's commitment and
// decodes it as T.
func Account[T any, PT AccountDecoder[T]](ctx context.Context, p *Program, address solana.PublicKey) (*T, error) {
	program := p.id.String()
	data, err := p.fetchAccountData(ctx, address)
	if err != nil {
		result := ResultError
		if errors.Is(err, ErrNotFound) {
			result = ResultNotFound
		}
		AccountReads.WithLabelValues(program, result).Inc()
		return nil, err
	}
	v, err := DecodeAccount[T, PT](data)
	if err != nil {
		AccountReads.WithLabelValues(program, ResultDecode).Inc()
		return nil, fmt.Errorf("account %s: %w", address, err)
	}
	AccountReads.WithLabelValues(program, ResultOK).Inc()
	return v, nil
}

func (p *Program) fetchAccountData(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	c := p.client
	res, err := c.rpc.GetAccountInfoWithOpts(ctx, address, &solanarpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: c.commitment,
	})
	if errors.Is(err, solanarpc.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, address)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", address, err)
	}
	if res == nil || res.Value == nil || res.Value.Data == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, address)
	}
	data := res.Value.Data.GetBinary()
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, address)
	}
	return data, nil
}

type discriminated interface {
	Discriminator() Discriminator
	UnmarshalWithDecoder(dec *bin.Decoder) error
}

func decodeDiscriminated(data []byte, v discriminated) error {
	if len(data) < DiscriminatorSize {
		return fmt.Errorf("%w: data too short: %d bytes", ErrDecode, len(data))
	}
	want := v.Discriminator()
	if !bytes.Equal(data[:DiscriminatorSize], want[:]) {
		return fmt.Errorf("%w: unexpected discriminator %x, want %s", ErrDecode, data[:DiscriminatorSize], want)
	}
	if err := v.UnmarshalWithDecoder(bin.NewBorshDecoder(data[DiscriminatorSize:])); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}
