package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/eugenenazirov/gameconfig-bootstrap/internal/application"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/config"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gameconfig-bootstrap: %v\n", err)
		os.Exit(1)
	}
}

// run executes one bootstrap. Any returned error is fatal for the process.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	kingpinApp := kingpin.New("gameconfig-bootstrap", "Creates the singleton game config account of the ai_health_anchor program if it does not exist")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	envFile := kingpinApp.Flag("env-file", "Dotenv file loaded before anything else; never overrides variables already set").String()
	configDir := kingpinApp.Flag("config-dir", "Directory holding <environment>.yaml deployment configs").String()
	cluster := kingpinApp.Flag("cluster", "Target environment (localhost, devnet, mainnet); overrides ANCHOR_CLUSTER, SOLANA_CLUSTER and ENV").String()
	programID := kingpinApp.Flag("program-id", "Address of the deployed program").String()
	walletPath := kingpinApp.Flag("wallet", "Keypair file of the live signer").String()
	rpcURL := kingpinApp.Flag("rpc-url", "RPC endpoint overriding the deployment config").String()
	commitment := kingpinApp.Flag("commitment", "Commitment the initialization must reach (processed, confirmed, finalized)").String()
	pollInterval := kingpinApp.Flag("poll-interval", "Interval between signature status polls").Duration()
	rateLimitRPS := kingpinApp.Flag("rate-limit-rps", "RPC requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurst := kingpinApp.Flag("rate-limit-burst", "Burst capacity for the RPC rate limiter").Default("-1").Int()
	logFormat := kingpinApp.Flag("log-format", "Log format (json, console, auto)").String()
	simulate := kingpinApp.Flag("simulate", "Run against an in-memory ledger instead of the cluster").Bool()
	jsonOutput := kingpinApp.Flag("json", "Print the final status as JSON on stdout").Bool()

	if _, err := kingpinApp.Parse(args); err != nil {
		return err
	}

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	overrides := &config.CLIOverrides{
		ConfigFile:   *configFile,
		ConfigDir:    configDir,
		Cluster:      cluster,
		ProgramID:    programID,
		Wallet:       walletPath,
		RPCURL:       rpcURL,
		Commitment:   commitment,
		PollInterval: pollInterval,
		LogFormat:    logFormat,
		Simulate:     *simulate,
	}

	if *rateLimitRPS >= 0 {
		overrides.RateLimitRPS = rateLimitRPS
	}

	if *rateLimitBurst >= 0 {
		overrides.RateLimitBurst = rateLimitBurst
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", zap.Error(err))
		return err
	}

	status, err := app.Run(ctx)
	if err != nil {
		logger.Error("bootstrap failed", zap.Error(err))
		return err
	}

	if *jsonOutput {
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(status); err != nil {
			return fmt.Errorf("write status: %w", err)
		}
	}
	return nil
}
