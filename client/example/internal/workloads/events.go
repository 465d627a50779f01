package workloads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/anchor-go/client/example/internal/harness"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
	"github.com/malbeclabs/anchor-go/smartcontract/sdk/go/events"
)

// Events subscribes to MyEvent, triggers it, and waits up to timeout for the
// event to arrive.
func Events(timeout time.Duration) harness.Func {
	if timeout <= 0 {
		timeout = DefaultEventTimeout
	}
	return func(ctx context.Context, client *anchor.Client, programID solana.PublicKey) error {
		program, err := client.Program(programID)
		if err != nil {
			return err
		}

		ch, unsub, err := anchor.EventChannel[events.MyEvent](ctx, program, 1)
		if err != nil {
			return fmt.Errorf("failed to subscribe: %w", err)
		}
		defer unsub.Unsubscribe()

		if _, err := program.Request().Args(events.InitializeArgs{}).Send(ctx); err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}

		ev, err := anchor.WaitForEvent(ctx, ch, timeout, nil)
		if err != nil {
			return err
		}
		return errors.Join(
			expectEqual("event.data", ev.Data, 5),
			expectEqual("event.label", ev.Label, "hello"),
		)
	}
}
