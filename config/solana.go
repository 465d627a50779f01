package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

var (
	ErrInvalidEndpoint   = fmt.Errorf("invalid endpoint")
	ErrInvalidCommitment = fmt.Errorf("invalid commitment")
)

// DeriveWSURL maps an RPC endpoint to its websocket endpoint: http becomes ws,
// https becomes wss, and an explicit port is bumped by one as the validator
// serves pubsub on the next port.
func DeriveWSURL(rpcURL string) (string, error) {
	u, err := ParseEndpoint(rpcURL, "http", "https")
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if port := u.Port(); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return "", fmt.Errorf("%w: bad port %q", ErrInvalidEndpoint, port)
		}
		u.Host = u.Hostname() + ":" + strconv.Itoa(p+1)
	}
	return u.String(), nil
}

// ParseEndpoint parses raw as an absolute URL with one of the given schemes.
func ParseEndpoint(raw string, schemes ...string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty url", ErrInvalidEndpoint)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidEndpoint, raw)
	}
	for _, s := range schemes {
		if strings.EqualFold(u.Scheme, s) {
			u.Scheme = s
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: scheme %q not one of %s", ErrInvalidEndpoint, u.Scheme, strings.Join(schemes, ", "))
}

// Validate checks that both endpoints are usable.
func (c Cluster) Validate() error {
	if _, err := ParseEndpoint(c.RPCURL, "http", "https"); err != nil {
		return fmt.Errorf("rpc url: %w", err)
	}
	if _, err := ParseEndpoint(c.WSURL, "ws", "wss"); err != nil {
		return fmt.Errorf("ws url: %w", err)
	}
	return nil
}

func ParseCommitment(s string) (solanarpc.CommitmentType, error) {
	switch strings.ToLower(s) {
	case "processed":
		return solanarpc.CommitmentProcessed, nil
	case "confirmed":
		return solanarpc.CommitmentConfirmed, nil
	case "finalized":
		return solanarpc.CommitmentFinalized, nil
	default:
		return "", fmt.Errorf("%w %q, must be one of: processed, confirmed, finalized", ErrInvalidCommitment, s)
	}
}
