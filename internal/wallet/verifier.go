package wallet

import (
	"errors"
	"io/fs"
	"os"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Result describes the outcome of a wallet check.
type Result string

const (
	Matched    Result = "matched"
	Missing    Result = "missing"
	Unreadable Result = "unreadable"
	Malformed  Result = "malformed"
	Mismatch   Result = "mismatch"
)

// Verifier compares the configured deployer wallet with the live signer.
// It only warns; the live signer is always the one used for signing.
type Verifier struct {
	logger *zap.Logger
}

// NewVerifier creates a Verifier that reports through logger.
func NewVerifier(logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{logger: logger}
}

// Verify checks the keypair at walletPath against live. It never fails.
func (v *Verifier) Verify(walletPath string, live solana.PublicKey) Result {
	if walletPath == "" {
		v.logger.Warn("deployer wallet path is empty, skipping wallet check")
		return Missing
	}

	if _, err := os.Stat(walletPath); errors.Is(err, fs.ErrNotExist) {
		v.logger.Warn("deployer wallet file does not exist, skipping wallet check",
			zap.String("path", walletPath),
		)
		return Missing
	}

	key, err := LoadSigner(walletPath)
	switch {
	case errors.Is(err, ErrMalformedKey):
		v.logger.Warn("deployer wallet file holds a malformed key",
			zap.String("path", walletPath),
			zap.Error(err),
		)
		return Malformed
	case err != nil:
		v.logger.Warn("failed to read deployer wallet file",
			zap.String("path", walletPath),
			zap.Error(err),
		)
		return Unreadable
	}

	configured := key.PublicKey()
	if !configured.Equals(live) {
		v.logger.Warn("live signer does not match the configured deployer wallet",
			zap.Stringer("config_wallet", configured),
			zap.Stringer("current_wallet", live),
			zap.String("hint", "check that the provider wallet and deployer_wallet_path point at the same keypair"),
		)
		return Mismatch
	}

	v.logger.Debug("deployer wallet matches live signer", zap.Stringer("wallet", live))
	return Matched
}
