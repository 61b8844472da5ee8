package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eugenenazirov/gameconfig-bootstrap/internal/bootstrap"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/config"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/deployment"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/environment"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/gameconfig"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/ledger"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/wallet"
)

// App encapsulates the dependencies of one bootstrap run.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	resolver *environment.Resolver
	registry deployment.Registry
	dir      string
	verifier *wallet.Verifier
	reporter bootstrap.Reporter
	client   ledger.Client
	runID    string
}

// Option configures an App.
type Option func(*App)

// WithLedger replaces the ledger the App would otherwise build from the
// configuration.
func WithLedger(client ledger.Client) Option {
	return func(a *App) {
		a.client = client
	}
}

// WithLookup replaces the process environment lookup used to resolve the
// target environment.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(a *App) {
		a.resolver.Lookup = lookup
	}
}

// WithRegistry replaces the file-backed deployment config registry.
func WithRegistry(registry deployment.Registry) Option {
	return func(a *App) {
		a.registry = registry
	}
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	dir, err := resolveConfigDir(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}

	app := &App{
		cfg:      cfg,
		logger:   logger,
		resolver: environment.NewResolver(cfg.Cluster),
		registry: deployment.FileRegistry(dir),
		dir:      dir,
		verifier: wallet.NewVerifier(logger),
		reporter: bootstrap.NewLogReporter(logger),
		runID:    runID,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app, nil
}

// RunID returns the correlation id attached to every log entry of this run.
func (a *App) RunID() string {
	return a.runID
}

// Run resolves the target environment, validates its deployment config and
// creates the game config if it does not exist yet.
func (a *App) Run(ctx context.Context) (bootstrap.Status, error) {
	env := a.resolver.Resolve()
	logger := a.logger.With(zap.Stringer("environment", env))
	if !env.Known() {
		logger.Warn("unknown environment name, expecting a matching deployment config")
	}

	loader := deployment.NewLoader(a.registry, logger, deployment.WithConfigDir(a.dir))
	deployCfg, err := loader.Load(env)
	if err != nil {
		return bootstrap.Status{}, err
	}

	signer, err := wallet.LoadSigner(a.cfg.Wallet)
	if err != nil {
		return bootstrap.Status{}, fmt.Errorf("load signer: %w", err)
	}
	a.verifier.Verify(deployCfg.DeployerWalletPath, signer.PublicKey())

	if a.cfg.RPCURL != "" {
		deployCfg.RPCURL = a.cfg.RPCURL
	}
	if deployCfg.RPCURL == "" {
		deployCfg.RPCURL = defaultRPCURL(env)
	}
	a.reporter.Resolved(deployCfg, a.cfg.ProgramID, signer.PublicKey())

	client := a.client
	if client == nil {
		client = a.buildLedger(deployCfg.RPCURL, logger)
	}

	orchestrator := bootstrap.New(client,
		bootstrap.WithReporter(a.reporter),
		bootstrap.WithCommitment(a.cfg.Commitment),
	)
	status, err := orchestrator.Run(ctx, bootstrap.Params{
		Environment: env,
		ProgramID:   a.cfg.ProgramID,
		Signer:      signer,
		USDTMint:    deployCfg.USDTMint,
		HANMint:     deployCfg.HANMint,
	})
	if err != nil {
		return status, err
	}

	logger.Info("bootstrap finished",
		zap.String("outcome", string(status.Outcome)),
		zap.Stringer("game_config", status.Address),
	)
	return status, nil
}

func (a *App) buildLedger(endpoint string, logger *zap.Logger) ledger.Client {
	if a.cfg.Simulate {
		logger.Warn("simulation mode, no transaction leaves this process")
		mem := ledger.NewMemory()
		mem.Register(a.cfg.ProgramID, gameconfig.Simulate)
		return mem
	}
	return ledger.NewRPCClient(endpoint,
		ledger.WithRateLimit(a.cfg.RateLimitRPS, a.cfg.RateLimitBurst),
		ledger.WithCommitment(a.cfg.Commitment),
		ledger.WithPollInterval(a.cfg.PollInterval),
		ledger.WithLogger(logger),
	)
}

func defaultRPCURL(env environment.Environment) string {
	switch env {
	case environment.Mainnet:
		return rpc.MainNetBeta_RPC
	case environment.Devnet:
		return rpc.DevNet_RPC
	default:
		return rpc.LocalNet_RPC
	}
}

// resolveConfigDir locates a relative config dir by walking up from the
// working directory. A dir that cannot be found is returned unchanged so
// the loader reports the missing files.
func resolveConfigDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return dir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for current := cwd; ; {
		candidate := filepath.Join(current, dir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return dir, nil
}
