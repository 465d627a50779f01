package anchor

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrConnection is returned when a client cannot be used to reach a program,
	// for example because an endpoint is malformed.
	ErrConnection = errors.New("connection error")

	// ErrSubmission is returned when a transaction is rejected or never reaches
	// the requested commitment. It is never retried by this package.
	ErrSubmission = errors.New("transaction submission failed")

	// ErrSigning is returned when the signer set of a request does not match
	// the signatures the compiled transaction requires.
	ErrSigning = errors.New("signing error")

	// ErrNotFound is returned when an address holds no account data.
	ErrNotFound = errors.New("account not found")

	// ErrDecode is returned when stored bytes do not match the expected type.
	ErrDecode = errors.New("failed to decode account data")

	ErrNoSigner            = errors.New("no signer configured")
	ErrEventTimeout        = errors.New("timed out waiting for event")
	ErrSubscriptionClosed  = errors.New("subscription closed")
	ErrInvalidKeypair      = errors.New("invalid keypair")
	ErrMissingInstructions = errors.New("request has no instructions")
)

// SubmissionError carries the signature of a transaction that was sent but
// failed or was not confirmed. Signature is zero when the transport rejected
// the transaction outright.
type SubmissionError struct {
	Signature solana.Signature
	Err       error
}

func (e *SubmissionError) Error() string {
	if e.Signature.IsZero() {
		return fmt.Sprintf("%s: %v", ErrSubmission, e.Err)
	}
	return fmt.Sprintf("%s: transaction %s: %v", ErrSubmission, e.Signature, e.Err)
}

func (e *SubmissionError) Unwrap() []error {
	return []error{ErrSubmission, e.Err}
}
