package bootstrap

import (
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/eugenenazirov/gameconfig-bootstrap/internal/deployment"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/gameconfig"
)

// Reporter receives progress at fixed points of a bootstrap run.
type Reporter interface {
	Resolved(cfg deployment.Config, programID, authority solana.PublicKey)
	// Probed is called after the existence probe; existing is nil when the account is absent.
	Probed(address solana.PublicKey, existing *gameconfig.Account)
	Submitting(address solana.PublicKey, accounts gameconfig.InitializeConfigAccounts)
	Submitted(signature solana.Signature)
	Verified(address solana.PublicKey, account gameconfig.Account)
}

// NopReporter discards all progress.
type NopReporter struct{}

func (NopReporter) Resolved(deployment.Config, solana.PublicKey, solana.PublicKey) {}
func (NopReporter) Probed(solana.PublicKey, *gameconfig.Account) {}
func (NopReporter) Submitting(solana.PublicKey, gameconfig.InitializeConfigAccounts) {}
func (NopReporter) Submitted(solana.Signature) {}
func (NopReporter) Verified(solana.PublicKey, gameconfig.Account) {}

// LogReporter writes progress as structured log entries.
type LogReporter struct {
	logger *zap.Logger
}

// NewLogReporter creates a Reporter backed by logger.
func NewLogReporter(logger *zap.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Resolved(cfg deployment.Config, programID, authority solana.PublicKey) {
	r.logger.Info("deployment resolved",
		zap.Stringer("environment", cfg.Environment),
		zap.String("cluster", cfg.Cluster),
		zap.String("rpc_url", cfg.RPCURL),
		zap.Stringer("usdt_mint", cfg.USDTMint),
		zap.Stringer("han_mint", cfg.HANMint),
		zap.String("wallet_path", cfg.DeployerWalletPath),
		zap.Uint64("round_number", cfg.RoundNumber),
		zap.Stringer("program_id", programID),
		zap.Stringer("authority", authority),
	)
}

func (r *LogReporter) Probed(address solana.PublicKey, existing *gameconfig.Account) {
	if existing == nil {
		r.logger.Info("game config does not exist, starting initialization",
			zap.Stringer("game_config", address),
		)
		return
	}
	r.logger.Info("game config already exists, skipping initialization",
		zap.Stringer("game_config", address),
		zap.Uint64("round_number", existing.RoundNumber),
		zap.Stringer("state", existing.State),
	)
}

func (r *LogReporter) Submitting(address solana.PublicKey, accounts gameconfig.InitializeConfigAccounts) {
	r.logger.Info("initializing game config",
		zap.Stringer("game_config", address),
		zap.Stringer("authority", accounts.Authority),
		zap.Stringer("usdt_mint", accounts.USDTMint),
		zap.Stringer("han_mint", accounts.HANMint),
	)
}

func (r *LogReporter) Submitted(signature solana.Signature) {
	r.logger.Info("initialization transaction confirmed", zap.Stringer("signature", signature))
}

func (r *LogReporter) Verified(address solana.PublicKey, account gameconfig.Account) {
	r.logger.Info("game config after initialization",
		zap.Stringer("game_config", address),
		zap.Uint64("round_number", account.RoundNumber),
		zap.Stringer("state", account.State),
		zap.Stringer("authority", account.Authority),
		zap.Stringer("usdt_mint", account.USDTMintKey),
		zap.Stringer("han_mint", account.HANMintKey),
	)
}
