// Package harness runs independent program workloads against one shared
// client, either one after another or concurrently.
package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/gagliardetto/solana-go"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
)

var ErrWorkerFailure = errors.New("worker failure")

// Func exercises one program through client.
type Func func(ctx context.Context, client *anchor.Client, programID solana.PublicKey) error

type Workload struct {
	Name      string
	ProgramID solana.PublicKey
	Run       Func
}

type Result struct {
	Workload string
	Duration time.Duration
	Err      error
}

// WorkerFailure reports the workload that failed a run.
type WorkerFailure struct {
	Workload string
	Err      error
}

func (e *WorkerFailure) Error() string {
	return fmt.Sprintf("%s: workload %s: %v", ErrWorkerFailure, e.Workload, e.Err)
}

func (e *WorkerFailure) Unwrap() []error {
	return []error{ErrWorkerFailure, e.Err}
}

// RunSequential runs workloads in order on the calling goroutine and stops
// at the first failure.
func RunSequential(ctx context.Context, log *slog.Logger, client *anchor.Client, workloads []Workload) error {
	log.Info("Starting sequential run", "workloads", len(workloads))
	for _, w := range workloads {
		res := run(ctx, log, client, w)
		if res.Err != nil {
			return &WorkerFailure{Workload: w.Name, Err: res.Err}
		}
	}
	return nil
}

// RunConcurrent runs every workload on its own worker, sharing client, and
// waits for all of them. A failure does not stop the others. Results are in
// workload order; the error wraps the first failed result in that order.
func RunConcurrent(ctx context.Context, log *slog.Logger, client *anchor.Client, workloads []Workload) ([]Result, error) {
	log.Info("Starting concurrent run", "workloads", len(workloads))
	if len(workloads) == 0 {
		return nil, nil
	}

	pool := pond.NewResultPool[Result](len(workloads))
	defer pool.StopAndWait()

	group := pool.NewGroup()
	for _, w := range workloads {
		group.Submit(func() Result {
			return run(ctx, log, client, w)
		})
	}
	results, err := group.Wait()
	if err != nil {
		// Tasks never return errors; this is a panic inside a workload.
		return results, &WorkerFailure{Workload: "unknown", Err: err}
	}

	for _, res := range results {
		if res.Err != nil {
			return results, &WorkerFailure{Workload: res.Workload, Err: res.Err}
		}
	}
	return results, nil
}

func run(ctx context.Context, log *slog.Logger, client *anchor.Client, w Workload) Result {
	start := time.Now()
	err := w.Run(ctx, client, w.ProgramID)
	res := Result{Workload: w.Name, Duration: time.Since(start), Err: err}
	if err != nil {
		log.Error("Workload failed", "workload", w.Name, "program", w.ProgramID, "duration", res.Duration, "error", err)
	} else {
		log.Info("Workload succeeded", "workload", w.Name, "program", w.ProgramID, "duration", res.Duration)
	}
	return res
}
