package ledger

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var (
	// ErrAccountNotFound reports that no account exists at the requested address.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountInUse is returned when a create targets an address that already holds an account.
	ErrAccountInUse = errors.New("account already in use")
	// ErrTransactionFailed is returned when the ledger executed a transaction and it failed.
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrBlockhashExpired is returned when a transaction was not confirmed before its blockhash expired.
	ErrBlockhashExpired = errors.New("blockhash expired before confirmation")
)

// Account is a raw ledger account.
type Account struct {
	Address  solana.PublicKey
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
}

// Client is the ledger surface the bootstrap consumes.
type Client interface {
	// FetchAccount returns the account at address or an error wrapping
	// ErrAccountNotFound when none exists. Any other error means the state
	// of the account is unknown.
	FetchAccount(ctx context.Context, address solana.PublicKey) (Account, error)
	// Submit signs ix with signer, sends it and blocks until the ledger
	// reports the commitment tier.
	Submit(ctx context.Context, ix solana.Instruction, signer solana.PrivateKey, commitment rpc.CommitmentType) (solana.Signature, error)
}

// ParseCommitment validates a commitment name.
func ParseCommitment(name string) (rpc.CommitmentType, bool) {
	switch c := rpc.CommitmentType(name); c {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
		return c, true
	}
	return "", false
}

func commitmentRank(name string) int {
	switch name {
	case string(rpc.CommitmentProcessed):
		return 1
	case string(rpc.CommitmentConfirmed):
		return 2
	case string(rpc.CommitmentFinalized):
		return 3
	default:
		return 0
	}
}

// reached reports whether a signature status satisfies the wanted commitment.
func reached(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	got := commitmentRank(string(status))
	return got > 0 && got >= commitmentRank(string(want))
}
