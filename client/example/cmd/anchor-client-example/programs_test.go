package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func TestExampleCLI_ResolveProgramIDs(t *testing.T) {
	t.Parallel()

	keys := make([]solana.PublicKey, 6)
	for i := range keys {
		keys[i] = solana.NewWallet().PublicKey()
	}
	path := filepath.Join(t.TempDir(), "programs.yaml")
	content := "composite: " + keys[0].String() + "\n" +
		"basic_2: " + keys[1].String() + "\n" +
		"basic_4: " + keys[2].String() + "\n" +
		"events: " + keys[3].String() + "\n" +
		"optional: " + keys[4].String() + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Run("file only", func(t *testing.T) {
		t.Parallel()
		ids, err := resolveProgramIDs(path, programsFile{})
		require.NoError(t, err)
		require.Equal(t, keys[0], ids.Composite)
		require.Equal(t, keys[1], ids.Basic2)
		require.Equal(t, keys[2], ids.Basic4)
		require.Equal(t, keys[3], ids.Events)
		require.Equal(t, keys[4], ids.Optional)
	})

	t.Run("flag overrides file", func(t *testing.T) {
		t.Parallel()
		ids, err := resolveProgramIDs(path, programsFile{Events: keys[5].String()})
		require.NoError(t, err)
		require.Equal(t, keys[5], ids.Events)
		require.Equal(t, keys[0], ids.Composite)
	})

	t.Run("flags only", func(t *testing.T) {
		t.Parallel()
		ids, err := resolveProgramIDs("", programsFile{
			Composite: keys[0].String(),
			Basic2:    keys[1].String(),
			Basic4:    keys[2].String(),
			Events:    keys[3].String(),
			Optional:  keys[4].String(),
		})
		require.NoError(t, err)
		require.Equal(t, keys[4], ids.Optional)
	})
}

func TestExampleCLI_ResolveProgramIDs_Errors(t *testing.T) {
	t.Parallel()

	_, err := resolveProgramIDs("", programsFile{Composite: solana.NewWallet().PublicKey().String()})
	require.ErrorIs(t, err, errMissingProgramID)
	require.ErrorContains(t, err, "basic_2")
	require.ErrorContains(t, err, "optional")

	_, err = resolveProgramIDs("", programsFile{
		Composite: "not-a-key",
		Basic2:    solana.NewWallet().PublicKey().String(),
		Basic4:    solana.NewWallet().PublicKey().String(),
		Events:    solana.NewWallet().PublicKey().String(),
		Optional:  solana.NewWallet().PublicKey().String(),
	})
	require.ErrorContains(t, err, "invalid program id for composite")

	_, err = resolveProgramIDs(filepath.Join(t.TempDir(), "missing.yaml"), programsFile{})
	require.ErrorContains(t, err, "failed to read programs file")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("composite: [unterminated"), 0o600))
	_, err = resolveProgramIDs(bad, programsFile{})
	require.ErrorContains(t, err, "failed to parse programs file")
}

func TestExampleCLI_ResolveCluster(t *testing.T) {
	t.Setenv("ANCHOR_RPC_URL", "")
	t.Setenv("ANCHOR_WS_URL", "")

	cluster, err := resolveCluster("localnet", "", "")
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8899", cluster.RPCURL)
	require.Equal(t, "ws://127.0.0.1:8900", cluster.WSURL)

	cluster, err = resolveCluster("devnet", "http://localhost:8899", "")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8899", cluster.RPCURL)
	require.Equal(t, "ws://localhost:8900", cluster.WSURL)

	_, err = resolveCluster("localnet", "", "ws://127.0.0.1:8900")
	require.Error(t, err)

	_, err = resolveCluster("nowhere", "", "")
	require.Error(t, err)
}
