package anchor_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
	"github.com/stretchr/testify/require"
)

func TestSDK_Anchor_LoadKeypair_KeygenFile(t *testing.T) {
	t.Parallel()

	key := solana.NewWallet().PrivateKey
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	raw, err := json.Marshal(ints)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	got, err := anchor.LoadKeypair(path)
	require.NoError(t, err)
	require.Equal(t, key, got)
}

func TestSDK_Anchor_LoadKeypair_Base58(t *testing.T) {
	t.Parallel()

	key := solana.NewWallet().PrivateKey
	got, err := anchor.LoadKeypair(key.String())
	require.NoError(t, err)
	require.Equal(t, key.PublicKey(), got.PublicKey())
}

func TestSDK_Anchor_LoadKeypair_Invalid(t *testing.T) {
	t.Parallel()

	_, err := anchor.LoadKeypair(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, anchor.ErrInvalidKeypair)

	_, err = anchor.LoadKeypair("not-a-key")
	require.ErrorIs(t, err, anchor.ErrInvalidKeypair)
}

func TestSDK_Anchor_ExclusiveSigner_Share(t *testing.T) {
	t.Parallel()

	key := solana.NewWallet().PrivateKey
	exclusive, err := anchor.NewExclusiveSigner(key)
	require.NoError(t, err)
	require.Equal(t, key.PublicKey(), exclusive.PublicKey())

	msg := []byte("message")
	sig, err := exclusive.Sign(msg)
	require.NoError(t, err)
	require.True(t, sig.Verify(key.PublicKey(), msg))

	shared := exclusive.Share()
	require.Equal(t, key.PublicKey(), shared.PublicKey())

	_, err = exclusive.Sign(msg)
	require.ErrorIs(t, err, anchor.ErrSigning)

	sig, err = shared.Sign(msg)
	require.NoError(t, err)
	require.True(t, sig.Verify(key.PublicKey(), msg))
}

func TestSDK_Anchor_SharedSigner_ConcurrentSign(t *testing.T) {
	t.Parallel()

	signer := newSharedSigner(t)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg := []byte{byte(i)}
			sig, err := signer.Sign(msg)
			if err != nil {
				errs <- err
				return
			}
			if !sig.Verify(signer.PublicKey(), msg) {
				errs <- anchor.ErrSigning
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestSDK_Anchor_NewSigner_InvalidKey(t *testing.T) {
	t.Parallel()

	_, err := anchor.NewSharedSigner(solana.PrivateKey{1, 2, 3})
	require.ErrorIs(t, err, anchor.ErrInvalidKeypair)

	_, err = anchor.NewExclusiveSigner(nil)
	require.ErrorIs(t, err, anchor.ErrInvalidKeypair)
}
