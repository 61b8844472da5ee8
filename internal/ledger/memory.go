package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Processor executes an instruction signed by signer and returns the
// account it creates.
type Processor func(ix solana.Instruction, signer solana.PublicKey) (solana.PublicKey, []byte, error)

// Memory is an in-process ledger. Account creation is atomic: of two
// submissions targeting the same address exactly one succeeds.
type Memory struct {
	mu         sync.RWMutex
	accounts   map[solana.PublicKey]Account
	processors map[solana.PublicKey]Processor
	submitted  []solana.Signature
}

// NewMemory creates an empty ledger.
func NewMemory() *Memory {
	return &Memory{
		accounts:   make(map[solana.PublicKey]Account),
		processors: make(map[solana.PublicKey]Processor),
	}
}

// Register installs the processor that executes instructions for programID.
func (m *Memory) Register(programID solana.PublicKey, processor Processor) {
	m.mu.Lock()
	m.processors[programID] = processor
	m.mu.Unlock()
}

// Put stores an account, replacing any existing one.
func (m *Memory) Put(account Account) {
	m.mu.Lock()
	m.accounts[account.Address] = cloneAccount(account)
	m.mu.Unlock()
}

// Submissions returns the signatures of all accepted transactions.
func (m *Memory) Submissions() []solana.Signature {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]solana.Signature, len(m.submitted))
	copy(out, m.submitted)
	return out
}

// FetchAccount implements Client.
func (m *Memory) FetchAccount(ctx context.Context, address solana.PublicKey) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[address]
	if !ok {
		return Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}
	return cloneAccount(account), nil
}

// Submit implements Client. The commitment is reached immediately.
func (m *Memory) Submit(ctx context.Context, ix solana.Instruction, signer solana.PrivateKey, _ rpc.CommitmentType) (solana.Signature, error) {
	if err := ctx.Err(); err != nil {
		return solana.Signature{}, err
	}

	payer := signer.PublicKey()
	tx, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{}, solana.TransactionPayer(payer))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}
	sigs, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer) {
			return &signer
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}
	if len(sigs) == 0 {
		return solana.Signature{}, errors.New("sign transaction: no signatures")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	processor, ok := m.processors[ix.ProgramID()]
	if !ok {
		return solana.Signature{}, fmt.Errorf("%w: program %s is not deployed", ErrTransactionFailed, ix.ProgramID())
	}
	address, data, err := processor(ix, payer)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	if _, exists := m.accounts[address]; exists {
		return solana.Signature{}, fmt.Errorf("%w: %w: %s", ErrTransactionFailed, ErrAccountInUse, address)
	}

	m.accounts[address] = Account{
		Address: address,
		Owner:   ix.ProgramID(),
		Data:    append([]byte(nil), data...),
	}
	m.submitted = append(m.submitted, sigs[0])
	return sigs[0], nil
}

func cloneAccount(a Account) Account {
	a.Data = append([]byte(nil), a.Data...)
	return a
}
