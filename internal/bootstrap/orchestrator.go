package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/eugenenazirov/gameconfig-bootstrap/internal/environment"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/gameconfig"
	"github.com/eugenenazirov/gameconfig-bootstrap/internal/ledger"
)

// Outcome is the terminal state of a successful run.
type Outcome string

const (
	OutcomeAlreadyInitialized Outcome = "already_initialized"
	OutcomeCreated            Outcome = "created"
)

// Params are the inputs of one bootstrap run.
type Params struct {
	Environment environment.Environment
	ProgramID   solana.PublicKey
	// Signer is the live signer. It pays for, signs, and becomes the
	// authority of the game config.
	Signer   solana.PrivateKey
	USDTMint solana.PublicKey
	HANMint  solana.PublicKey
}

// Status describes the game config after a run.
type Status struct {
	Outcome     Outcome                 `json:"outcome"`
	Environment environment.Environment `json:"environment"`
	Address     solana.PublicKey        `json:"game_config"`
	Bump        uint8                   `json:"bump"`
	// Signature is zero when no transaction was submitted.
	Signature solana.Signature   `json:"signature"`
	Account   gameconfig.Account `json:"account"`
}

// Orchestrator runs the probe → submit → verify protocol that creates the
// game config at most once.
type Orchestrator struct {
	client     ledger.Client
	reporter   Reporter
	commitment rpc.CommitmentType
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithReporter sets the progress reporter.
func WithReporter(reporter Reporter) Option {
	return func(o *Orchestrator) {
		if reporter != nil {
			o.reporter = reporter
		}
	}
}

// WithCommitment sets the commitment the initialize transaction must reach.
func WithCommitment(commitment rpc.CommitmentType) Option {
	return func(o *Orchestrator) {
		o.commitment = commitment
	}
}

// New creates an Orchestrator driving client.
func New(client ledger.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:     client,
		reporter:   NopReporter{},
		commitment: rpc.CommitmentConfirmed,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run creates the game config if it does not exist. An existing account
// is a successful no-op. The probe and the submission are not atomic:
// when another run creates the account in between, the ledger rejects
// this submission and Run returns ErrTransactionSubmission.
func (o *Orchestrator) Run(ctx context.Context, p Params) (Status, error) {
	address, bump, err := gameconfig.DeriveAddress(p.ProgramID)
	if err != nil {
		return Status{}, fmt.Errorf("derive game config address: %w", err)
	}
	status := Status{Environment: p.Environment, Address: address, Bump: bump}

	existing, err := o.fetch(ctx, p.ProgramID, address)
	switch {
	case err == nil:
		o.reporter.Probed(address, &existing)
		status.Outcome = OutcomeAlreadyInitialized
		status.Account = existing
		return status, nil
	case errors.Is(err, ledger.ErrAccountNotFound):
		o.reporter.Probed(address, nil)
	default:
		return Status{}, fmt.Errorf("%w: %w", ErrProbeFailed, err)
	}

	accounts := gameconfig.InitializeConfigAccounts{
		Authority:  p.Signer.PublicKey(),
		GameConfig: address,
		USDTMint:   p.USDTMint,
		HANMint:    p.HANMint,
	}
	o.reporter.Submitting(address, accounts)
	ix := gameconfig.NewInitializeConfigInstruction(p.ProgramID, accounts)
	sig, err := o.client.Submit(ctx, ix, p.Signer, o.commitment)
	if err != nil {
		return Status{}, fmt.Errorf("%w: %w", ErrTransactionSubmission, err)
	}
	o.reporter.Submitted(sig)
	status.Signature = sig

	address, bump, err = gameconfig.DeriveAddress(p.ProgramID)
	if err != nil {
		return status, fmt.Errorf("%w: derive game config address: %w", ErrPostVerification, err)
	}
	created, err := o.fetch(ctx, p.ProgramID, address)
	if err != nil {
		return status, fmt.Errorf("%w: %w", ErrPostVerification, err)
	}
	o.reporter.Verified(address, created)

	status.Outcome = OutcomeCreated
	status.Address = address
	status.Bump = bump
	status.Account = created
	return status, nil
}

func (o *Orchestrator) fetch(ctx context.Context, programID, address solana.PublicKey) (gameconfig.Account, error) {
	raw, err := o.client.FetchAccount(ctx, address)
	if err != nil {
		return gameconfig.Account{}, err
	}
	if !raw.Owner.Equals(programID) {
		return gameconfig.Account{}, fmt.Errorf("%w: %s is owned by %s", ErrUnexpectedOwner, address, raw.Owner)
	}
	return gameconfig.Decode(raw.Data)
}
