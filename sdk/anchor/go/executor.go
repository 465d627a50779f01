package anchor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/jonboulle/clockwork"
)

type executor struct {
	log                   *slog.Logger
	rpc                   RPCClient
	clock                 clockwork.Clock
	program               solana.PublicKey
	commitment            solanarpc.CommitmentType
	waitForVisibleTimeout time.Duration
	pollInterval          time.Duration
	confirmTimeout        time.Duration
}

func (e *executor) send(ctx context.Context, tx *solana.Transaction, opts SendOptions) (solana.Signature, error) {
	sig, err := e.rpc.SendTransactionWithOpts(ctx, tx, solanarpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: e.commitment,
		MaxRetries:          opts.MaxRetries,
	})
	if err != nil {
		return solana.Signature{}, &SubmissionError{Err: fmt.Errorf("failed to send transaction: %w", err)}
	}
	e.log.Debug("--> Sent transaction", "sig", sig, "program", e.program)

	if err := e.waitForCommitment(ctx, sig, opts.SkipPreflight); err != nil {
		return sig, &SubmissionError{Signature: sig, Err: err}
	}
	return sig, nil
}

// waitForCommitment polls the signature status until it reaches the
// executor's commitment. A status carrying a transaction error fails
// immediately.
func (e *executor) waitForCommitment(ctx context.Context, sig solana.Signature, skipPreflight bool) error {
	start := e.clock.Now()
	visibleDeadline := start.Add(e.waitForVisibleTimeout)
	var confirmDeadline time.Time
	if e.confirmTimeout > 0 {
		confirmDeadline = start.Add(e.confirmTimeout)
	}

	visible := false
	for {
		resp, err := e.rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return fmt.Errorf("failed to get signature status: %w", err)
		}
		var status *solanarpc.SignatureStatusesResult
		if resp != nil && len(resp.Value) > 0 {
			status = resp.Value[0]
		}
		if status != nil {
			if status.Err != nil {
				return fmt.Errorf("transaction failed: %v", status.Err)
			}
			if !visible {
				visible = true
				e.log.Debug("--> Transaction visible", "sig", sig, "status", status.ConfirmationStatus, "duration", e.clock.Since(start))
			}
			if commitmentReached(status.ConfirmationStatus, e.commitment) {
				e.log.Debug("--> Transaction reached commitment", "sig", sig, "commitment", e.commitment, "duration", e.clock.Since(start))
				return nil
			}
		}

		now := e.clock.Now()
		if !visible && now.After(visibleDeadline) {
			if skipPreflight {
				return errors.New("transaction dropped or rejected before cluster saw it. make sure you have sufficient funds for the transaction")
			}
			return errors.New("transaction dropped or rejected before cluster saw it")
		}
		if !confirmDeadline.IsZero() && now.After(confirmDeadline) {
			return fmt.Errorf("transaction not %s after %s", e.commitment, e.confirmTimeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.clock.After(e.pollInterval):
		}
	}
}

func commitmentReached(status solanarpc.ConfirmationStatusType, want solanarpc.CommitmentType) bool {
	switch want {
	case solanarpc.CommitmentFinalized:
		return status == solanarpc.ConfirmationStatusFinalized
	case solanarpc.CommitmentConfirmed:
		return status == solanarpc.ConfirmationStatusConfirmed || status == solanarpc.ConfirmationStatusFinalized
	default:
		return true
	}
}
