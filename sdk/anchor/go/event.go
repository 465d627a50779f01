package anchor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
)

// EventDecoder is implemented by pointers to event types.
type EventDecoder[E any] interface {
	*E
	Discriminator() Discriminator
	UnmarshalWithDecoder(dec *bin.Decoder) error
}

// EventContext identifies the transaction an event was emitted by.
type EventContext struct {
	Signature solana.Signature
	Slot      uint64
}

// Unsubscriber ends an event subscription.
type Unsubscriber struct {
	log     *slog.Logger
	program solana.PublicKey
	ws      WSClient
	sub     LogSubscription
	cancel  context.CancelFunc
	ctx     context.Context
	live    atomic.Bool
	done    chan struct{}
	once    sync.Once
	closeWS sync.Once
	onClose func()
}

// Unsubscribe ends the subscription and waits for the delivery goroutine to
// exit. No handler invocation starts or is in progress once it returns.
// Calling it again is a no-op. It must not be called from the handler.
func (u *Unsubscriber) Unsubscribe() {
	u.once.Do(func() {
		u.live.Store(false)
		u.cancel()
		u.closeStream()
		<-u.done
		u.log.Debug("Unsubscribed from program events", "program", u.program)
	})
}

func (u *Unsubscriber) closeStream() {
	u.closeWS.Do(func() {
		u.sub.Unsubscribe()
		u.ws.Close()
	})
}

// Done is closed when the delivery goroutine has exited, either through
// Unsubscribe, because ctx was done, or because the stream ended. The
// websocket is closed by then.
func (u *Unsubscriber) Done() <-chan struct{} {
	return u.done
}

// On subscribes to events of type E emitted by the program and calls handler
// for each, in order, from a single delivery goroutine. The subscription
// also ends when ctx is done. Notifications of
// failed transactions and payloads that do not decode as E are dropped.
func On[E any, PE EventDecoder[E]](ctx context.Context, p *Program, handler func(EventContext, *E)) (*Unsubscriber, error) {
	return subscribe[E, PE](ctx, p, handler, nil)
}

// EventChannel subscribes to events of type E and delivers them on a channel
// with the given buffer. The channel is closed when the subscription ends,
// by Unsubscribe, ctx or the stream. Delivery blocks while the buffer is
// full, until the subscription ends.
func EventChannel[E any, PE EventDecoder[E]](ctx context.Context, p *Program, buffer int) (<-chan *E, *Unsubscriber, error) {
	ch := make(chan *E, buffer)
	var u *Unsubscriber
	ready := make(chan struct{})
	handler := func(_ EventContext, ev *E) {
		<-ready
		select {
		case ch <- ev:
		case <-u.ctx.Done():
		}
	}
	u, err := subscribe[E, PE](ctx, p, handler, func() { close(ch) })
	if err != nil {
		return nil, nil, err
	}
	close(ready)
	return ch, u, nil
}

// WaitForEvent receives one event from ch, failing with ErrEventTimeout after
// timeout. A nil clock uses the real clock.
func WaitForEvent[E any](ctx context.Context, ch <-chan *E, timeout time.Duration, clock clockwork.Clock) (*E, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	timer := clock.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ev, ok := <-ch:
		if !ok {
			return nil, ErrSubscriptionClosed
		}
		return ev, nil
	case <-timer.Chan():
		return nil, fmt.Errorf("%w after %s", ErrEventTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func subscribe[E any, PE EventDecoder[E]](ctx context.Context, p *Program, handler func(EventContext, *E), onClose func()) (*Unsubscriber, error) {
	c := p.client
	ws, err := c.dialWS(ctx, c.cluster.WSURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	sub, err := ws.LogsSubscribeMentions(p.id, c.commitment)
	if err != nil {
		ws.Close()
		return nil, fmt.Errorf("%w: failed to subscribe to program logs: %w", ErrConnection, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	u := &Unsubscriber{
		log:     c.log,
		program: p.id,
		ws:      ws,
		sub:     sub,
		ctx:     subCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		onClose: onClose,
	}
	u.live.Store(true)
	c.log.Debug("Subscribed to program events", "program", p.id)

	go u.deliver(func(n *LogNotification) {
		deliverNotification[E, PE](u, n, handler)
	})
	return u, nil
}

func (u *Unsubscriber) deliver(handle func(*LogNotification)) {
	defer func() {
		u.closeStream()
		if u.onClose != nil {
			u.onClose()
		}
		close(u.done)
	}()
	for {
		n, err := u.sub.Recv(u.ctx)
		if err != nil {
			if u.live.Load() && !errors.Is(err, context.Canceled) {
				u.log.Debug("Program event stream ended", "program", u.program, "error", err)
			}
			return
		}
		if !u.live.Load() {
			return
		}
		if n != nil {
			handle(n)
		}
	}
}

func deliverNotification[E any, PE EventDecoder[E]](u *Unsubscriber, n *LogNotification, handler func(EventContext, *E)) {
	program := u.program.String()
	payloads, malformed := programDataPayloads(u.program, n.Logs)
	if malformed > 0 {
		EventsDropped.WithLabelValues(program, DropReasonDecode).Add(float64(malformed))
	}
	if n.Err != nil {
		if len(payloads) > 0 {
			EventsDropped.WithLabelValues(program, DropReasonFailedTx).Add(float64(len(payloads)))
		}
		return
	}

	want := PE(new(E)).Discriminator()
	ectx := EventContext{Signature: n.Signature, Slot: n.Slot}
	for _, raw := range payloads {
		// Other event types of the same program are expected and not counted.
		if len(raw) < DiscriminatorSize || Discriminator(raw[:DiscriminatorSize]) != want {
			continue
		}
		var ev E
		if err := decodeDiscriminated(raw, PE(&ev)); err != nil {
			EventsDropped.WithLabelValues(program, DropReasonDecode).Inc()
			u.log.Debug("Dropped undecodable event", "program", u.program, "sig", n.Signature, "error", err)
			continue
		}
		if !u.live.Load() {
			EventsDropped.WithLabelValues(program, DropReasonUnsubscribe).Inc()
			return
		}
		handler(ectx, &ev)
		EventsDelivered.WithLabelValues(program).Inc()
	}
}
