// Package workloads exercises the example programs end to end: each workload
// submits transactions, then reads back and checks the resulting state.
package workloads

import (
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/anchor-go/client/example/internal/harness"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
)

const DefaultEventTimeout = 30 * time.Second

var ErrUnexpectedState = errors.New("unexpected state")

// ProgramIDs are the deployed addresses of the example programs.
type ProgramIDs struct {
	Composite solana.PublicKey
	Basic2    solana.PublicKey
	Basic4    solana.PublicKey
	Events    solana.PublicKey
	Optional  solana.PublicKey
}

// All returns every workload in the order a sequential run executes them.
func All(ids ProgramIDs, eventTimeout time.Duration) []harness.Workload {
	return []harness.Workload{
		{Name: "composite", ProgramID: ids.Composite, Run: Composite},
		{Name: "basic_2", ProgramID: ids.Basic2, Run: Basic2},
		{Name: "basic_4", ProgramID: ids.Basic4, Run: Basic4},
		{Name: "events", ProgramID: ids.Events, Run: Events(eventTimeout)},
		{Name: "optional", ProgramID: ids.Optional, Run: Optional},
	}
}

func expectEqual[T comparable](what string, got, want T) error {
	if got != want {
		return fmt.Errorf("%w: %s is %v, want %v", ErrUnexpectedState, what, got, want)
	}
	return nil
}

// newKeypair returns a fresh signer used only by the calling workload.
func newKeypair() (*anchor.ExclusiveSigner, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return anchor.NewExclusiveSigner(key)
}
