package config

import (
	"fmt"
	"os"
)

const (
	EnvMainnetBeta = "mainnet-beta"
	EnvMainnet     = "mainnet"
	EnvTestnet     = "testnet"
	EnvDevnet      = "devnet"
	EnvLocalnet    = "localnet"

	// EnvVarRPCURL and EnvVarWSURL override the preset endpoints of any environment.
	EnvVarRPCURL = "ANCHOR_RPC_URL"
	EnvVarWSURL  = "ANCHOR_WS_URL"
)

var (
	ErrInvalidEnvironment = fmt.Errorf("invalid environment")
)

// Cluster is the pair of endpoints a client talks to: JSON-RPC over HTTP for
// requests and a websocket for notifications.
type Cluster struct {
	Moniker string
	RPCURL  string
	WSURL   string
}

func (c Cluster) String() string {
	if c.Moniker != "" {
		return c.Moniker
	}
	return c.RPCURL
}

// CustomCluster builds a cluster from explicit endpoints. An empty wsURL is
// derived from rpcURL.
func CustomCluster(rpcURL, wsURL string) (Cluster, error) {
	if wsURL == "" {
		derived, err := DeriveWSURL(rpcURL)
		if err != nil {
			return Cluster{}, err
		}
		wsURL = derived
	}
	return Cluster{RPCURL: rpcURL, WSURL: wsURL}, nil
}

func ClusterForEnv(env string) (*Cluster, error) {
	var cluster *Cluster
	switch env {
	case EnvMainnetBeta, EnvMainnet:
		cluster = &Cluster{
			Moniker: EnvMainnetBeta,
			RPCURL:  MainnetRPCURL,
			WSURL:   MainnetWSURL,
		}
	case EnvTestnet:
		cluster = &Cluster{
			Moniker: EnvTestnet,
			RPCURL:  TestnetRPCURL,
			WSURL:   TestnetWSURL,
		}
	case EnvDevnet:
		cluster = &Cluster{
			Moniker: EnvDevnet,
			RPCURL:  DevnetRPCURL,
			WSURL:   DevnetWSURL,
		}
	case EnvLocalnet:
		cluster = &Cluster{
			Moniker: EnvLocalnet,
			RPCURL:  LocalnetRPCURL,
			WSURL:   LocalnetWSURL,
		}
	default:
		return nil, fmt.Errorf("%w %q, must be one of: %s, %s, %s, %s", ErrInvalidEnvironment, env, EnvMainnetBeta, EnvTestnet, EnvDevnet, EnvLocalnet)
	}

	rpcURL := os.Getenv(EnvVarRPCURL)
	if rpcURL != "" {
		cluster.RPCURL = rpcURL
		wsURL, err := DeriveWSURL(rpcURL)
		if err != nil {
			return nil, fmt.Errorf("failed to derive websocket url from %s: %w", EnvVarRPCURL, err)
		}
		cluster.WSURL = wsURL
	}
	wsURL := os.Getenv(EnvVarWSURL)
	if wsURL != "" {
		cluster.WSURL = wsURL
	}

	return cluster, nil
}
