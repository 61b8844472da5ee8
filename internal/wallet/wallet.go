package wallet

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrMalformedKey is returned when a keypair file does not hold a 64-byte ed25519 secret key.
	ErrMalformedKey = errors.New("keypair file must contain a 64-byte secret key")
)

// ExpandPath replaces a leading "~" with the user's home directory and
// returns the absolute form of path.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}

// LoadSigner reads a Solana CLI keypair file (a JSON array of secret key bytes).
func LoadSigner(path string) (solana.PrivateKey, error) {
	resolved, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("read keypair %s: %w", resolved, err)
	}

	var secret []byte
	if err := json.Unmarshal(data, &secret); err != nil {
		return nil, fmt.Errorf("decode keypair %s: %w: %v", resolved, ErrMalformedKey, err)
	}
	if len(secret) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("decode keypair %s: %w", resolved, ErrMalformedKey)
	}
	return solana.PrivateKey(secret), nil
}
