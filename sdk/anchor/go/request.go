package anchor

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Accounts is an instruction's ordered account list.
type Accounts interface {
	AccountMetas() []*solana.AccountMeta
}

// InstructionArgs is the encoded data of a program instruction, including its
// discriminator.
type InstructionArgs interface {
	Data() ([]byte, error)
}

type SendOptions struct {
	SkipPreflight bool
	MaxRetries    *uint
}

// RequestBuilder accumulates instructions and signers for one transaction.
// Methods may be called in any order. Accounts and Args form one program
// instruction that is placed after every instruction added with Instruction.
// A RequestBuilder must not be used from more than one goroutine.
type RequestBuilder struct {
	program      *Program
	instructions []solana.Instruction
	signers      []Signer
	accounts     solana.AccountMetaSlice
	args         InstructionArgs
	options      SendOptions
}

func (r *RequestBuilder) Instruction(ix solana.Instruction) *RequestBuilder {
	r.instructions = append(r.instructions, ix)
	return r
}

// Signer adds a signer in addition to the payer.
func (r *RequestBuilder) Signer(s Signer) *RequestBuilder {
	r.signers = append(r.signers, s)
	return r
}

// Accounts appends to the account list of the program instruction. Repeated
// calls concatenate.
func (r *RequestBuilder) Accounts(a Accounts) *RequestBuilder {
	r.accounts = append(r.accounts, a.AccountMetas()...)
	return r
}

func (r *RequestBuilder) Args(a InstructionArgs) *RequestBuilder {
	r.args = a
	return r
}

func (r *RequestBuilder) Options(opts SendOptions) *RequestBuilder {
	r.options = opts
	return r
}

// Instructions returns the instructions of the transaction in submission
// order. Accounts without Args contribute nothing.
func (r *RequestBuilder) Instructions() ([]solana.Instruction, error) {
	ixs := make([]solana.Instruction, 0, len(r.instructions)+1)
	ixs = append(ixs, r.instructions...)
	if r.args != nil {
		data, err := r.args.Data()
		if err != nil {
			return nil, fmt.Errorf("failed to serialize instruction args: %w", err)
		}
		ixs = append(ixs, &solana.GenericInstruction{
			ProgID:        r.program.id,
			AccountValues: r.accounts,
			DataBytes:     data,
		})
	}
	return ixs, nil
}

// Transaction builds and signs the transaction without sending it.
func (r *RequestBuilder) Transaction(ctx context.Context) (*solana.Transaction, error) {
	ixs, err := r.Instructions()
	if err != nil {
		return nil, err
	}
	if len(ixs) == 0 {
		return nil, ErrMissingInstructions
	}

	c := r.program.client
	blockhashResult, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return nil, &SubmissionError{Err: fmt.Errorf("failed to get latest blockhash: %w", err)}
	}

	tx, err := solana.NewTransaction(
		ixs,
		blockhashResult.Value.Blockhash,
		solana.TransactionPayer(c.signer.PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}
	if tx == nil {
		return nil, errors.New("transaction build failed: nil result")
	}

	if err := signTransaction(tx, append([]Signer{c.signer}, r.signers...)); err != nil {
		return nil, err
	}
	return tx, nil
}

// Send signs and submits the transaction and blocks until it reaches the
// client's commitment.
func (r *RequestBuilder) Send(ctx context.Context) (solana.Signature, error) {
	program := r.program.id.String()
	tx, err := r.Transaction(ctx)
	if err != nil {
		TransactionsFailed.WithLabelValues(program).Inc()
		return solana.Signature{}, err
	}
	sig, err := r.program.client.executor(r.program.id).send(ctx, tx, r.options)
	if err != nil {
		TransactionsFailed.WithLabelValues(program).Inc()
		return sig, err
	}
	TransactionsSent.WithLabelValues(program).Inc()
	return sig, nil
}

// signTransaction signs the compiled message with every key the message
// requires, in message order. A signer the message does not require fails
// with ErrSigning.
func signTransaction(tx *solana.Transaction, signers []Signer) error {
	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	byKey := make(map[solana.PublicKey]Signer, len(signers))
	for _, s := range signers {
		byKey[s.PublicKey()] = s
	}

	numRequired := int(tx.Message.Header.NumRequiredSignatures)
	if numRequired > len(tx.Message.AccountKeys) {
		return fmt.Errorf("%w: message requires %d signatures but has %d keys", ErrSigning, numRequired, len(tx.Message.AccountKeys))
	}
	required := make(map[solana.PublicKey]struct{}, numRequired)
	for _, key := range tx.Message.AccountKeys[:numRequired] {
		required[key] = struct{}{}
	}
	for key := range byKey {
		if _, ok := required[key]; !ok {
			return fmt.Errorf("%w: signer %s is not required by any instruction", ErrSigning, key)
		}
	}

	tx.Signatures = make([]solana.Signature, 0, numRequired)
	for _, key := range tx.Message.AccountKeys[:numRequired] {
		s, ok := byKey[key]
		if !ok {
			return fmt.Errorf("%w: missing signer for %s", ErrSigning, key)
		}
		sig, err := s.Sign(message)
		if err != nil {
			return fmt.Errorf("%w: failed to sign with %s: %w", ErrSigning, key, err)
		}
		tx.Signatures = append(tx.Signatures, sig)
	}
	return nil
}
