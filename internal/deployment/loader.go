package deployment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/eugenenazirov/gameconfig-bootstrap/internal/environment"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/wallet"
)

// Config is the validated deployment config for one environment.
type Config struct {
	Environment        environment.Environment
	RPCURL             string
	USDTMint           solana.PublicKey
	HANMint            solana.PublicKey
	DeployerWalletPath string
	RoundNumber        uint64
	// Cluster is the Solana cluster label, empty for localhost.
	Cluster string
}

// Loader resolves deployment configs from an explicit registry.
type Loader struct {
	registry Registry
	dir      string
	logger   *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithConfigDir sets the directory named in "not found" hints for
// environments that have no registered source.
func WithConfigDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.dir = dir
	}
}

// NewLoader creates a Loader over registry.
func NewLoader(registry Registry, logger *zap.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loader{
		registry: registry,
		dir:      ".env",
		logger:   logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and validates the config registered for env. It performs no
// network access.
func (l *Loader) Load(env environment.Environment) (Config, error) {
	source, ok := l.registry[env]
	if !ok {
		return Config{}, fmt.Errorf("%w: no source registered for environment %q; create %s with rpc_url, usdt_mint, han_mint, deployer_wallet_path and round_number",
			ErrConfigNotFound, env, expectedFile(l.dir, env))
	}

	doc, err := source.Read()
	if err != nil {
		if isNotExist(err) {
			return Config{}, fmt.Errorf("%w: %s does not exist; create it with the %s environment settings",
				ErrConfigNotFound, source.Name(), env)
		}
		if errors.Is(err, ErrConfigInvalid) {
			return Config{}, err
		}
		return Config{}, fmt.Errorf("%w: read %s: %v", ErrConfigInvalid, source.Name(), err)
	}

	return l.validate(env, source.Name(), doc)
}

func (l *Loader) validate(env environment.Environment, name string, doc Document) (Config, error) {
	var missing []string
	if strings.TrimSpace(doc.USDTMint) == "" {
		missing = append(missing, "usdt_mint")
	}
	if strings.TrimSpace(doc.HANMint) == "" {
		missing = append(missing, "han_mint")
	}
	if strings.TrimSpace(doc.DeployerWalletPath) == "" {
		missing = append(missing, "deployer_wallet_path")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s is missing %s", ErrConfigIncomplete, name, strings.Join(missing, ", "))
	}

	usdtMint, err := solana.PublicKeyFromBase58(strings.TrimSpace(doc.USDTMint))
	if err != nil {
		return Config{}, fmt.Errorf("%w: usdt_mint in %s: %v", ErrConfigInvalid, name, err)
	}
	hanMint, err := solana.PublicKeyFromBase58(strings.TrimSpace(doc.HANMint))
	if err != nil {
		return Config{}, fmt.Errorf("%w: han_mint in %s: %v", ErrConfigInvalid, name, err)
	}

	walletPath, err := wallet.ExpandPath(strings.TrimSpace(doc.DeployerWalletPath))
	if err != nil {
		return Config{}, fmt.Errorf("%w: deployer_wallet_path in %s: %v", ErrConfigInvalid, name, err)
	}
	if _, err := os.Stat(walletPath); errors.Is(err, fs.ErrNotExist) {
		l.logger.Warn("deployer wallet file does not exist",
			zap.String("path", walletPath),
			zap.String("hint", "check deployer_wallet_path or the provider wallet configuration"),
		)
	}

	return Config{
		Environment:        env,
		RPCURL:             strings.TrimSpace(doc.RPCURL),
		USDTMint:           usdtMint,
		HANMint:            hanMint,
		DeployerWalletPath: walletPath,
		RoundNumber:        doc.RoundNumber,
		Cluster:            env.Cluster(),
	}, nil
}
