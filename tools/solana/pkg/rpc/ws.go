package rpc

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go/rpc/ws"
)

// DialWS opens a websocket connection to a Solana pubsub endpoint.
func DialWS(ctx context.Context, wsEndpoint string) (*ws.Client, error) {
	c, err := ws.Connect(ctx, wsEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to websocket endpoint %s: %w", wsEndpoint, err)
	}
	return c, nil
}
