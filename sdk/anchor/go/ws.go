package anchor

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/malbeclabs/anchor-go/tools/solana/pkg/rpc"
)

// DialWS is the default WSDialer, backed by the solana-go websocket client.
func DialWS(ctx context.Context, url string) (WSClient, error) {
	c, err := rpc.DialWS(ctx, url)
	if err != nil {
		return nil, err
	}
	return &wsClient{c: c}, nil
}

type wsClient struct {
	c *ws.Client
}

func (w *wsClient) LogsSubscribeMentions(program solana.PublicKey, commitment solanarpc.CommitmentType) (LogSubscription, error) {
	sub, err := w.c.LogsSubscribeMentions(program, commitment)
	if err != nil {
		return nil, err
	}
	return &wsLogSubscription{sub: sub}, nil
}

func (w *wsClient) Close() {
	w.c.Close()
}

type wsLogSubscription struct {
	sub *ws.LogSubscription
}

func (s *wsLogSubscription) Recv(ctx context.Context) (*LogNotification, error) {
	res, err := s.sub.Recv(ctx)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, errors.New("empty log notification")
	}
	return &LogNotification{
		Signature: res.Value.Signature,
		Slot:      res.Context.Slot,
		Err:       res.Value.Err,
		Logs:      res.Value.Logs,
	}, nil
}

func (s *wsLogSubscription) Unsubscribe() {
	s.sub.Unsubscribe()
}
