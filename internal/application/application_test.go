package application

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eugenenazirov/gameconfig-bootstrap/internal/bootstrap"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/config"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/deployment"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/environment"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/gameconfig"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/ledger"
)

const (
	testProgramID = "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS"
	testUSDTMint  = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
	testHANMint   = "So11111111111111111111111111111111111111112"
)

type fixture struct {
	cfg      config.Config
	signer   solana.PrivateKey
	registry deployment.Registry
	mem      *ledger.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	signer, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	walletPath := writeKeypair(t, signer)
	programID := solana.MustPublicKeyFromBase58(testProgramID)

	mem := ledger.NewMemory()
	mem.Register(programID, gameconfig.Simulate)

	return &fixture{
		cfg: config.Config{
			ConfigDir:    t.TempDir(),
			ProgramID:    programID,
			Wallet:       walletPath,
			Commitment:   rpc.CommitmentConfirmed,
			PollInterval: 1,
			LogFormat:    "json",
		},
		signer: signer,
		registry: deployment.Registry{
			environment.Local: deployment.StaticSource{Label: "localhost", Doc: deployment.Document{
				RPCURL:             "http://127.0.0.1:8899",
				USDTMint:           testUSDTMint,
				HANMint:            testHANMint,
				DeployerWalletPath: walletPath,
				RoundNumber:        1,
			}},
		},
		mem: mem,
	}
}

func (f *fixture) app(t *testing.T, logger *zap.Logger, signals map[string]string) *App {
	t.Helper()

	app, err := New(f.cfg, logger,
		WithRegistry(f.registry),
		WithLedger(f.mem),
		WithLookup(func(key string) (string, bool) {
			value, ok := signals[key]
			return value, ok
		}),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return app
}

func writeKeypair(t *testing.T, key solana.PrivateKey) string {
	t.Helper()

	values := make([]int, len(key))
	for i, b := range key {
		values[i] = int(b)
	}
	data, err := json.Marshal(values)
	if err != nil {
		t.Fatalf("marshal keypair: %v", err)
	}
	path := filepath.Join(t.TempDir(), "id.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write keypair: %v", err)
	}
	return path
}

func TestRunCreatesThenSkips(t *testing.T) {
	f := newFixture(t)
	app := f.app(t, zaptest.NewLogger(t), nil)

	first, err := app.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run returned error: %v", err)
	}
	if first.Outcome != bootstrap.OutcomeCreated || first.Environment != environment.Local {
		t.Fatalf("unexpected first status: %+v", first)
	}
	if !first.Account.Authority.Equals(f.signer.PublicKey()) {
		t.Fatalf("expected authority %s, got %s", f.signer.PublicKey(), first.Account.Authority)
	}

	second, err := app.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}
	if second.Outcome != bootstrap.OutcomeAlreadyInitialized {
		t.Fatalf("expected second run to skip, got %q", second.Outcome)
	}
	if n := len(f.mem.Submissions()); n != 1 {
		t.Fatalf("expected one submission, got %d", n)
	}
}

func TestRunAttachesRunID(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zapcore.InfoLevel)
	app := f.app(t, zap.New(core), nil)

	if _, err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	entries := logs.FilterMessage("bootstrap finished").All()
	if len(entries) != 1 {
		t.Fatalf("expected one completion entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["run_id"]; got != app.RunID() {
		t.Fatalf("expected run_id %q, got %v", app.RunID(), got)
	}
}

func TestRunUnregisteredEnvironmentFailsBeforeLedger(t *testing.T) {
	f := newFixture(t)
	app := f.app(t, zaptest.NewLogger(t), map[string]string{"ANCHOR_CLUSTER": "devnet"})

	_, err := app.Run(context.Background())
	if !errors.Is(err, deployment.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
	if n := len(f.mem.Submissions()); n != 0 {
		t.Fatalf("expected no submission, got %d", n)
	}
}

func TestRunMissingSignerIsFatal(t *testing.T) {
	f := newFixture(t)
	f.cfg.Wallet = filepath.Join(t.TempDir(), "missing.json")
	app := f.app(t, zaptest.NewLogger(t), nil)

	_, err := app.Run(context.Background())
	if err == nil {
		t.Fatalf("expected error for missing signer")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist cause, got %v", err)
	}
}

func TestRunWalletMismatchOnlyWarns(t *testing.T) {
	f := newFixture(t)
	other, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	doc := f.registry[environment.Local].(deployment.StaticSource)
	doc.Doc.DeployerWalletPath = writeKeypair(t, other)
	f.registry[environment.Local] = doc

	core, logs := observer.New(zapcore.WarnLevel)
	status, err := f.app(t, zap.New(core), nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !status.Account.Authority.Equals(f.signer.PublicKey()) {
		t.Fatalf("live signer must stay the authority, got %s", status.Account.Authority)
	}
	if logs.Len() == 0 {
		t.Fatalf("expected a wallet mismatch warning")
	}
}

func TestRunSimulateBuildsMemoryLedger(t *testing.T) {
	f := newFixture(t)
	f.cfg.Simulate = true

	app, err := New(f.cfg, zaptest.NewLogger(t),
		WithRegistry(f.registry),
		WithLookup(func(string) (string, bool) { return "", false }),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	status, err := app.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if status.Outcome != bootstrap.OutcomeCreated {
		t.Fatalf("expected simulated creation, got %q", status.Outcome)
	}
}

func TestDefaultRPCURL(t *testing.T) {
	if got := defaultRPCURL(environment.Mainnet); got != rpc.MainNetBeta_RPC {
		t.Fatalf("unexpected mainnet url %s", got)
	}
	if got := defaultRPCURL(environment.Devnet); got != rpc.DevNet_RPC {
		t.Fatalf("unexpected devnet url %s", got)
	}
	if got := defaultRPCURL(environment.Local); got != rpc.LocalNet_RPC {
		t.Fatalf("unexpected localhost url %s", got)
	}
}

func TestResolveConfigDirWalksUp(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".env"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Chdir(nested)

	got, err := resolveConfigDir(".env")
	if err != nil {
		t.Fatalf("resolveConfigDir returned error: %v", err)
	}
	want, _ := filepath.EvalSymlinks(filepath.Join(root, ".env"))
	if resolved, _ := filepath.EvalSymlinks(got); resolved != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestResolveConfigDirUnknownTarget(t *testing.T) {
	t.Chdir(t.TempDir())

	got, err := resolveConfigDir("definitely-not-a-real-dir")
	if err != nil {
		t.Fatalf("resolveConfigDir returned error: %v", err)
	}
	if got != "definitely-not-a-real-dir" {
		t.Fatalf("expected unresolved dir to pass through, got %s", got)
	}
}
