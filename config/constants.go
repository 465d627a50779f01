package config

const (
	// Mainnet constants.
	MainnetRPCURL = "https://api.mainnet-beta.solana.com"
	MainnetWSURL  = "wss://api.mainnet-beta.solana.com"

	// Testnet constants.
	TestnetRPCURL = "https://api.testnet.solana.com"
	TestnetWSURL  = "wss://api.testnet.solana.com"

	// Devnet constants.
	DevnetRPCURL = "https://api.devnet.solana.com"
	DevnetWSURL  = "wss://api.devnet.solana.com"

	// Localnet constants, matching solana-test-validator defaults.
	LocalnetRPCURL = "http://127.0.0.1:8899"
	LocalnetWSURL  = "ws://127.0.0.1:8900"
)
