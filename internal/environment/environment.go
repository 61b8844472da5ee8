package environment

import (
	"os"
	"strings"
)

// Environment identifies a deployment target. Canonical values are Local,
// Devnet and Mainnet; Resolve may also return an unrecognised value verbatim.
type Environment string

const (
	Local   Environment = "localhost"
	Devnet  Environment = "devnet"
	Mainnet Environment = "mainnet"
)

// DefaultSignals lists the environment variables consulted by Resolve, in order.
var DefaultSignals = []string{"ANCHOR_CLUSTER", "SOLANA_CLUSTER", "ENV"}

var aliases = map[string]Environment{
	"localnet":     Local,
	"localhost":    Local,
	"devnet":       Devnet,
	"dev":          Devnet,
	"mainnet":      Mainnet,
	"mainnet-beta": Mainnet,
}

// All returns the canonical environments.
func All() []Environment {
	return []Environment{Local, Devnet, Mainnet}
}

// Normalize maps a known alias (case-insensitive) to its canonical
// environment. Unknown values are returned unchanged.
func Normalize(raw string) Environment {
	if env, ok := aliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return env
	}
	return Environment(raw)
}

func (e Environment) String() string {
	return string(e)
}

// Known reports whether e is one of the canonical environments.
func (e Environment) Known() bool {
	switch e {
	case Local, Devnet, Mainnet:
		return true
	}
	return false
}

// Cluster returns the Solana cluster label for e, or "" when the
// environment has none (localhost and unknown values).
func (e Environment) Cluster() string {
	switch e {
	case Mainnet:
		return "mainnet-beta"
	case Devnet:
		return "devnet"
	default:
		return ""
	}
}

// Resolver picks the target environment from external signals.
type Resolver struct {
	// Override is consulted before any signal (for example a --cluster flag).
	Override string
	Signals  []string
	Lookup   func(string) (string, bool)
}

// NewResolver returns a Resolver reading DefaultSignals from the process environment.
func NewResolver(override string) *Resolver {
	return &Resolver{
		Override: override,
		Signals:  DefaultSignals,
		Lookup:   os.LookupEnv,
	}
}

// Resolve returns the first non-blank signal, normalised, or Local when none is set.
func (r *Resolver) Resolve() Environment {
	if strings.TrimSpace(r.Override) != "" {
		return Normalize(r.Override)
	}

	lookup := r.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, name := range r.Signals {
		value, ok := lookup(name)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		return Normalize(value)
	}
	return Local
}
