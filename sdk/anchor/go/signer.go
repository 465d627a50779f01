package anchor

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Signer is an identity able to authorize transactions.
type Signer interface {
	PublicKey() solana.PublicKey
	Sign(message []byte) (solana.Signature, error)
}

// noCopy makes go vet's copylocks check flag copies of the embedding struct.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// ExclusiveSigner owns its key material and must be used by one goroutine at
// a time. It does no internal synchronization. Use Share to hand the key over
// to concurrent callers.
type ExclusiveSigner struct {
	_ noCopy

	key    solana.PrivateKey
	pubkey solana.PublicKey
}

func NewExclusiveSigner(key solana.PrivateKey) (*ExclusiveSigner, error) {
	if !validKey(key) {
		return nil, ErrInvalidKeypair
	}
	return &ExclusiveSigner{key: key, pubkey: key.PublicKey()}, nil
}

func (s *ExclusiveSigner) PublicKey() solana.PublicKey {
	return s.pubkey
}

func (s *ExclusiveSigner) Sign(message []byte) (solana.Signature, error) {
	if s.key == nil {
		return solana.Signature{}, fmt.Errorf("%w: signer was moved", ErrSigning)
	}
	return s.key.Sign(message)
}

// Share moves the key into a SharedSigner. The exclusive signer is unusable
// afterwards.
func (s *ExclusiveSigner) Share() *SharedSigner {
	shared := &SharedSigner{key: s.key, pubkey: s.pubkey}
	s.key = nil
	return shared
}

// SharedSigner is safe for concurrent use. Its key material is never mutated
// after construction.
type SharedSigner struct {
	key    solana.PrivateKey
	pubkey solana.PublicKey
}

func NewSharedSigner(key solana.PrivateKey) (*SharedSigner, error) {
	if !validKey(key) {
		return nil, ErrInvalidKeypair
	}
	owned := make(solana.PrivateKey, len(key))
	copy(owned, key)
	return &SharedSigner{key: owned, pubkey: owned.PublicKey()}, nil
}

func (s *SharedSigner) PublicKey() solana.PublicKey {
	return s.pubkey
}

func (s *SharedSigner) Sign(message []byte) (solana.Signature, error) {
	return s.key.Sign(message)
}

// LoadKeypair reads a keypair from a solana-keygen JSON file, or, when
// source is not an existing file, decodes it as a base58 secret key. A
// leading "~/" is expanded to the user's home directory.
func LoadKeypair(source string) (solana.PrivateKey, error) {
	path, err := expandHome(source)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err == nil {
		key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read keypair file %s: %w", path, err)
		}
		return key, nil
	}

	raw, err := base58.Decode(strings.TrimSpace(source))
	if err != nil || len(raw) != 64 {
		return nil, fmt.Errorf("%w: %q is neither a keypair file nor a base58 secret key", ErrInvalidKeypair, source)
	}
	key := solana.PrivateKey(raw)
	if !validKey(key) {
		return nil, ErrInvalidKeypair
	}
	return key, nil
}

// validKey reports whether key is a 64-byte ed25519 keypair whose public half
// matches its seed.
func validKey(key solana.PrivateKey) bool {
	if len(key) != ed25519.PrivateKeySize {
		return false
	}
	return bytes.Equal(ed25519.NewKeyFromSeed(key[:ed25519.SeedSize]), key)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
