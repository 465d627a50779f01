package anchor

import (
	"context"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

// RPCClient is an interface for interacting with the Solana RPC server.
type RPCClient interface {
	GetLatestBlockhash(context.Context, solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(context.Context, *solana.Transaction, solanarpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (out *solanarpc.GetSignatureStatusesResult, err error)
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *solanarpc.GetAccountInfoOpts) (*solanarpc.GetAccountInfoResult, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, commitment solanarpc.CommitmentType) (lamportsNeeded uint64, err error)
}

// LogNotification is one transaction's log output as delivered by a logs
// subscription.
type LogNotification struct {
	Signature solana.Signature
	Slot      uint64
	Err       any
	Logs      []string
}

// LogSubscription is a live logs subscription.
type LogSubscription interface {
	Recv(ctx context.Context) (*LogNotification, error)
	Unsubscribe()
}

// WSClient is a websocket connection able to open logs subscriptions.
type WSClient interface {
	LogsSubscribeMentions(program solana.PublicKey, commitment solanarpc.CommitmentType) (LogSubscription, error)
	Close()
}

// WSDialer opens a websocket connection to url.
type WSDialer func(ctx context.Context, url string) (WSClient, error)
