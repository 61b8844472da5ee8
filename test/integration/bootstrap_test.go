package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eugenenazirov/gameconfig-bootstrap/internal/application"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/bootstrap"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/config"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/deployment"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/environment"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/gameconfig"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/ledger"
)

const (
	programID = "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS"
	usdtMint  = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
	hanMint   = "So11111111111111111111111111111111111111112"
)

// countingLedger records how often the pipeline reached the ledger.
type countingLedger struct {
	*ledger.Memory

	mu      sync.Mutex
	fetches int
	submits int
}

func (c *countingLedger) FetchAccount(ctx context.Context, address solana.PublicKey) (ledger.Account, error) {
	c.mu.Lock()
	c.fetches++
	c.mu.Unlock()
	return c.Memory.FetchAccount(ctx, address)
}

func (c *countingLedger) Submit(ctx context.Context, ix solana.Instruction, signer solana.PrivateKey, commitment rpc.CommitmentType) (solana.Signature, error) {
	c.mu.Lock()
	c.submits++
	c.mu.Unlock()
	return c.Memory.Submit(ctx, ix, signer, commitment)
}

type deployer struct {
	signer solana.PrivateKey
	wallet string
	dir    string
}

func newDeployer(t *testing.T) deployer {
	t.Helper()

	signer, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	dir := t.TempDir()
	values := make([]int, len(signer))
	for i, b := range signer {
		values[i] = int(b)
	}
	data, err := json.Marshal(values)
	if err != nil {
		t.Fatalf("marshal keypair: %v", err)
	}
	walletPath := filepath.Join(dir, "id.json")
	if err := os.WriteFile(walletPath, data, 0o600); err != nil {
		t.Fatalf("write keypair: %v", err)
	}
	return deployer{signer: signer, wallet: walletPath, dir: dir}
}

func (d deployer) writeConfig(t *testing.T, env environment.Environment, walletPath string) {
	t.Helper()
	d.writeDocument(t, env, fmt.Sprintf("rpc_url: http://127.0.0.1:8899\nusdt_mint: %s\nhan_mint: %s\ndeployer_wallet_path: %s\nround_number: 1\n",
		usdtMint, hanMint, walletPath))
}

func (d deployer) writeDocument(t *testing.T, env environment.Environment, body string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(d.dir, env.String()+".yaml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write deployment config: %v", err)
	}
}

func newLedger() *countingLedger {
	mem := ledger.NewMemory()
	mem.Register(solana.MustPublicKeyFromBase58(programID), gameconfig.Simulate)
	return &countingLedger{Memory: mem}
}

func runApp(t *testing.T, d deployer, client ledger.Client, cluster string, logger *zap.Logger) (bootstrap.Status, error) {
	t.Helper()

	cfg := config.Config{
		ConfigDir:    d.dir,
		Cluster:      cluster,
		ProgramID:    solana.MustPublicKeyFromBase58(programID),
		Wallet:       d.wallet,
		Commitment:   rpc.CommitmentConfirmed,
		PollInterval: 1,
	}
	app, err := application.New(cfg, logger,
		application.WithLedger(client),
		application.WithLookup(func(string) (string, bool) { return "", false }),
	)
	if err != nil {
		t.Fatalf("application.New returned error: %v", err)
	}
	return app.Run(context.Background())
}

// Scenario A: devnet, valid config whose deployer wallet file is absent.
func TestFreshDevnetCreatesConfig(t *testing.T) {
	d := newDeployer(t)
	d.writeConfig(t, environment.Devnet, filepath.Join(d.dir, "absent.json"))
	client := newLedger()

	core, logs := observer.New(zapcore.WarnLevel)
	status, err := runApp(t, d, client, "devnet", zap.New(core))
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if logs.FilterMessage("deployer wallet file does not exist, skipping wallet check").Len() != 1 {
		t.Fatalf("expected a missing wallet warning, got %v", logs.All())
	}
	if status.Outcome != bootstrap.OutcomeCreated || status.Environment != environment.Devnet {
		t.Fatalf("unexpected status: %+v", status)
	}
	expected, _, err := gameconfig.DeriveAddress(solana.MustPublicKeyFromBase58(programID))
	if err != nil {
		t.Fatalf("derive address: %v", err)
	}
	if !status.Address.Equals(expected) {
		t.Fatalf("expected address %s, got %s", expected, status.Address)
	}
	if status.Account.RoundNumber != 1 || status.Account.State != gameconfig.StateNotStarted {
		t.Fatalf("unexpected initial state: %+v", status.Account)
	}
	if !status.Account.Authority.Equals(d.signer.PublicKey()) {
		t.Fatalf("expected authority %s, got %s", d.signer.PublicKey(), status.Account.Authority)
	}
	if status.Account.USDTMintKey.String() != usdtMint || status.Account.HANMintKey.String() != hanMint {
		t.Fatalf("unexpected mints: %+v", status.Account)
	}
	if client.submits != 1 || client.fetches != 2 {
		t.Fatalf("expected one submit and two fetches, got %d and %d", client.submits, client.fetches)
	}
}

// Scenario B: an existing, already active config is left untouched.
func TestExistingConfigIsSkipped(t *testing.T) {
	d := newDeployer(t)
	d.writeConfig(t, environment.Local, d.wallet)
	client := newLedger()

	address, _, err := gameconfig.DeriveAddress(solana.MustPublicKeyFromBase58(programID))
	if err != nil {
		t.Fatalf("derive address: %v", err)
	}
	existing := gameconfig.Account{RoundNumber: 3, State: gameconfig.StateActive, Authority: d.signer.PublicKey()}
	data, err := existing.Encode()
	if err != nil {
		t.Fatalf("encode account: %v", err)
	}
	client.Put(ledger.Account{Address: address, Owner: solana.MustPublicKeyFromBase58(programID), Data: data})

	status, err := runApp(t, d, client, "", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if status.Outcome != bootstrap.OutcomeAlreadyInitialized {
		t.Fatalf("expected %q, got %q", bootstrap.OutcomeAlreadyInitialized, status.Outcome)
	}
	if status.Account.RoundNumber != 3 || status.Account.State != gameconfig.StateActive {
		t.Fatalf("existing account was modified or misreported: %+v", status.Account)
	}
	if client.submits != 0 {
		t.Fatalf("expected no submission, got %d", client.submits)
	}
}

// Scenario C: a config without han_mint fails before any ledger access.
func TestIncompleteConfigFailsOffline(t *testing.T) {
	d := newDeployer(t)
	d.writeDocument(t, environment.Devnet, fmt.Sprintf("rpc_url: https://api.devnet.solana.com\nusdt_mint: %s\ndeployer_wallet_path: %s\nround_number: 1\n",
		usdtMint, d.wallet))
	client := newLedger()

	_, err := runApp(t, d, client, "dev", zaptest.NewLogger(t))
	if !errors.Is(err, deployment.ErrConfigIncomplete) {
		t.Fatalf("expected ErrConfigIncomplete, got %v", err)
	}
	if !strings.Contains(err.Error(), "han_mint") {
		t.Fatalf("expected error to name han_mint, got %v", err)
	}
	if client.fetches != 0 || client.submits != 0 {
		t.Fatalf("expected no ledger access, got %d fetches and %d submits", client.fetches, client.submits)
	}
}

func TestMissingMainnetConfigFailsOffline(t *testing.T) {
	d := newDeployer(t)
	client := newLedger()

	_, err := runApp(t, d, client, "mainnet-beta", zaptest.NewLogger(t))
	if !errors.Is(err, deployment.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
	if client.fetches != 0 || client.submits != 0 {
		t.Fatalf("expected no ledger access, got %d fetches and %d submits", client.fetches, client.submits)
	}
}

func TestConcurrentDeployersCreateOnce(t *testing.T) {
	const deployers = 6
	client := newLedger()

	signers := make([]solana.PrivateKey, deployers)
	for i := range signers {
		signers[i] = newDeployer(t).signer
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		skipped int
		lost    int
	)
	start := make(chan struct{})
	for _, signer := range signers {
		wg.Add(1)
		go func(signer solana.PrivateKey) {
			defer wg.Done()
			<-start

			status, err := bootstrap.New(client).Run(context.Background(), bootstrap.Params{
				Environment: environment.Local,
				ProgramID:   solana.MustPublicKeyFromBase58(programID),
				Signer:      signer,
				USDTMint:    solana.MustPublicKeyFromBase58(usdtMint),
				HANMint:     solana.MustPublicKeyFromBase58(hanMint),
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && status.Outcome == bootstrap.OutcomeCreated:
				created++
			case err == nil && status.Outcome == bootstrap.OutcomeAlreadyInitialized:
				skipped++
			case errors.Is(err, bootstrap.ErrTransactionSubmission) && errors.Is(err, ledger.ErrAccountInUse):
				lost++
			default:
				t.Errorf("unexpected result: %+v, %v", status, err)
			}
		}(signer)
	}
	close(start)
	wg.Wait()

	if created != 1 {
		t.Fatalf("expected exactly one creation, got %d (skipped %d, lost %d)", created, skipped, lost)
	}
	if created+skipped+lost != deployers {
		t.Fatalf("missing results: created %d, skipped %d, lost %d", created, skipped, lost)
	}
	if n := len(client.Submissions()); n != 1 {
		t.Fatalf("expected one accepted transaction, got %d", n)
	}
}
