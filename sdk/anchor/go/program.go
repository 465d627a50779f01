package anchor

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/jellydator/ttlcache/v3"
)

// Program is a handle to one on-chain program, borrowing its Client.
type Program struct {
	id     solana.PublicKey
	client *Client
}

func (p *Program) ID() solana.PublicKey {
	return p.id
}

// Payer is the public key of the client's signer, which pays for and signs
// every request built from this handle.
func (p *Program) Payer() solana.PublicKey {
	return p.client.signer.PublicKey()
}

func (p *Program) RPC() RPCClient {
	return p.client.rpc
}

func (p *Program) Client() *Client {
	return p.client
}

func (p *Program) Request() *RequestBuilder {
	return &RequestBuilder{program: p}
}

// RentExemption returns the minimum balance for an account of size bytes at
// the client's commitment. Results are cached per size.
func (p *Program) RentExemption(ctx context.Context, size uint64) (uint64, error) {
	c := p.client
	if item := c.rent.Get(size); item != nil {
		return item.Value(), nil
	}
	lamports, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, size, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get minimum balance for rent exemption: %w", err)
	}
	c.rent.Set(size, lamports, ttlcache.DefaultTTL)
	return lamports, nil
}
