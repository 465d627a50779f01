package localnet

import (
	"context"
	"errors"
	"sync"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
)

const subscriptionBuffer = 256

var ErrConnectionClosed = errors.New("websocket connection closed")

// Dial is an anchor.WSDialer connected to the ledger.
func (l *Ledger) Dial(_ context.Context, _ string) (anchor.WSClient, error) {
	return &wsConn{ledger: l}, nil
}

// Subscriptions returns the number of live logs subscriptions.
func (l *Ledger) Subscriptions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}

// subscribersFor returns subscriptions whose program appears in keys. The
// caller holds l.mu.
func (l *Ledger) subscribersFor(keys []solana.PublicKey) []*logSubscription {
	var out []*logSubscription
	for sub := range l.subs {
		for _, key := range keys {
			if key.Equals(sub.program) {
				out = append(out, sub)
				break
			}
		}
	}
	return out
}

type wsConn struct {
	ledger *Ledger

	mu     sync.Mutex
	subs   []*logSubscription
	closed bool
}

func (c *wsConn) LogsSubscribeMentions(program solana.PublicKey, _ solanarpc.CommitmentType) (anchor.LogSubscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrConnectionClosed
	}
	sub := &logSubscription{
		ledger:  c.ledger,
		program: program,
		ch:      make(chan *anchor.LogNotification, subscriptionBuffer),
		done:    make(chan struct{}),
	}
	c.ledger.mu.Lock()
	c.ledger.subs[sub] = struct{}{}
	c.ledger.mu.Unlock()
	c.subs = append(c.subs, sub)
	return sub, nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for _, sub := range c.subs {
		sub.Unsubscribe()
	}
	c.subs = nil
}

type logSubscription struct {
	ledger  *Ledger
	program solana.PublicKey
	ch      chan *anchor.LogNotification
	done    chan struct{}
	once    sync.Once
}

func (s *logSubscription) publish(n *anchor.LogNotification) {
	select {
	case <-s.done:
	case s.ch <- n:
	default:
		s.ledger.log.Warn("Dropped log notification for slow subscriber", "program", s.program, "sig", n.Signature)
	}
}

func (s *logSubscription) Recv(ctx context.Context) (*anchor.LogNotification, error) {
	select {
	case n := <-s.ch:
		return n, nil
	case <-s.done:
		return nil, ErrConnectionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *logSubscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.done)
		s.ledger.mu.Lock()
		delete(s.ledger.subs, s)
		s.ledger.mu.Unlock()
	})
}
