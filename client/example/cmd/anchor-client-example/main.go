package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/malbeclabs/anchor-go/client/example/internal/harness"
	"github.com/malbeclabs/anchor-go/client/example/internal/workloads"
	"github.com/malbeclabs/anchor-go/config"
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	defaultKeypairPath = "~/.config/solana/id.json"
	defaultCommitment  = "processed"
)

var (
	multithreaded bool
	programsPath  string
	programFlags  programsFile
	keypairPath   string
	env           string
	rpcURL        string
	wsURL         string
	commitment    string
	eventTimeout  time.Duration
	metricsAddr   string
	verbose       bool

	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "anchor-client-example",
	Short: "Exercise the example programs through the anchor client",
	Long: `Runs the composite, basic_2, basic_4, events and optional workloads against
deployed example programs, either one after another with an exclusive signer
or all at once sharing one client.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(verbose)

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if err := run(ctx, log); err != nil {
			log.Error("Run failed", "error", err)
			return err
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("anchor-client-example %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func init() {
	bindFlags(rootCmd.Flags())
	rootCmd.AddCommand(versionCmd)
}

func bindFlags(flags *pflag.FlagSet) {
	flags.SortFlags = false
	flags.BoolVar(&multithreaded, "multithreaded", false, "run all workloads concurrently on one shared client")
	flags.StringVar(&programFlags.Composite, "composite-pid", "", "program id of composite")
	flags.StringVar(&programFlags.Basic2, "basic-2-pid", "", "program id of basic_2")
	flags.StringVar(&programFlags.Basic4, "basic-4-pid", "", "program id of basic_4")
	flags.StringVar(&programFlags.Events, "events-pid", "", "program id of events")
	flags.StringVar(&programFlags.Optional, "optional-pid", "", "program id of optional")
	flags.StringVar(&programsPath, "programs", "", "YAML file with program ids; --*-pid flags take precedence")
	flags.StringVar(&keypairPath, "keypair", defaultKeypairPath, "payer keypair file or base58 secret key")
	flags.StringVar(&env, "env", config.EnvLocalnet, "cluster preset (localnet, devnet, testnet, mainnet-beta)")
	flags.StringVar(&rpcURL, "rpc-url", "", "custom RPC url, overrides --env")
	flags.StringVar(&wsURL, "ws-url", "", "custom websocket url, derived from --rpc-url when empty")
	flags.StringVar(&commitment, "commitment", defaultCommitment, "commitment level (processed, confirmed, finalized)")
	flags.DurationVar(&eventTimeout, "event-timeout", workloads.DefaultEventTimeout, "how long the events workload waits for its event")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "address to serve prometheus metrics on, disabled when empty")
	flags.BoolVar(&verbose, "verbose", false, "enable verbose logging")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	cluster, err := resolveCluster(env, rpcURL, wsURL)
	if err != nil {
		return err
	}
	level, err := config.ParseCommitment(commitment)
	if err != nil {
		return err
	}
	ids, err := resolveProgramIDs(programsPath, programFlags)
	if err != nil {
		return err
	}
	key, err := anchor.LoadKeypair(keypairPath)
	if err != nil {
		return fmt.Errorf("example requires a keypair file: %w", err)
	}

	if metricsAddr != "" {
		go serveMetrics(log, metricsAddr)
	}

	log.Info("Starting anchor client example",
		"version", version,
		"cluster", cluster,
		"commitment", level,
		"payer", key.PublicKey(),
		"multithreaded", multithreaded,
	)

	all := workloads.All(ids, eventTimeout)
	if !multithreaded {
		signer, err := anchor.NewExclusiveSigner(key)
		if err != nil {
			return err
		}
		client := anchor.NewClient(cluster, signer, level, anchor.WithLogger(log))
		if err := harness.RunSequential(ctx, log, client, all); err != nil {
			return err
		}
		log.Info("Sequential run succeeded", "workloads", len(all))
		return nil
	}

	signer, err := anchor.NewSharedSigner(key)
	if err != nil {
		return err
	}
	client := anchor.NewClient(cluster, signer, level, anchor.WithLogger(log))
	results, err := harness.RunConcurrent(ctx, log, client, all)
	for _, res := range results {
		log.Info("Workload result", "workload", res.Workload, "duration", res.Duration, "ok", res.Err == nil)
	}
	if err != nil {
		return err
	}
	log.Info("Concurrent run succeeded", "workloads", len(all))
	return nil
}

// resolveCluster prefers explicit endpoints over the env preset.
func resolveCluster(env, rpcURL, wsURL string) (config.Cluster, error) {
	if rpcURL != "" {
		return config.CustomCluster(rpcURL, wsURL)
	}
	if wsURL != "" {
		return config.Cluster{}, errors.New("--ws-url requires --rpc-url")
	}
	cluster, err := config.ClusterForEnv(env)
	if err != nil {
		return config.Cluster{}, err
	}
	return *cluster, nil
}

func serveMetrics(log *slog.Logger, addr string) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("Failed to start prometheus metrics server listener", "error", err)
		return
	}
	log.Info("Prometheus metrics server listening", "address", listener.Addr().String())
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.Serve(listener, mux); err != nil {
		log.Error("Failed to start prometheus metrics server", "error", err)
	}
}

func newLogger(verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.RFC3339,
	}))
}
