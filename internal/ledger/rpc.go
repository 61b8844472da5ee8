package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

const defaultPollInterval = 500 * time.Millisecond

// rpcAPI is the subset of *rpc.Client used by RPCClient.
type rpcAPI interface {
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetBlockHeight(ctx context.Context, commitment rpc.CommitmentType) (uint64, error)
}

// RPCClient implements Client over Solana JSON-RPC.
type RPCClient struct {
	api          rpcAPI
	limiter      rateLimiter
	commitment   rpc.CommitmentType
	pollInterval time.Duration
	logger       *zap.Logger
}

// RPCOption configures an RPCClient.
type RPCOption func(*RPCClient)

// WithRateLimit throttles RPC calls to rps requests per second. 0 disables throttling.
func WithRateLimit(rps float64, burst int) RPCOption {
	return func(c *RPCClient) {
		c.limiter = newTokenBucketLimiter(rps, burst)
	}
}

// WithCommitment sets the commitment used for reads and preflight.
func WithCommitment(commitment rpc.CommitmentType) RPCOption {
	return func(c *RPCClient) {
		c.commitment = commitment
	}
}

// WithPollInterval sets how often signature status is polled while waiting for confirmation.
func WithPollInterval(interval time.Duration) RPCOption {
	return func(c *RPCClient) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// WithLogger sets the logger used for confirmation progress.
func WithLogger(logger *zap.Logger) RPCOption {
	return func(c *RPCClient) {
		c.logger = logger
	}
}

func withAPI(api rpcAPI) RPCOption {
	return func(c *RPCClient) {
		c.api = api
	}
}

// NewRPCClient creates a client for the JSON-RPC endpoint.
func NewRPCClient(endpoint string, opts ...RPCOption) *RPCClient {
	c := &RPCClient{
		commitment:   rpc.CommitmentConfirmed,
		pollInterval: defaultPollInterval,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.api == nil {
		c.api = rpc.New(endpoint)
	}
	return c
}

func (c *RPCClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// FetchAccount implements Client.
func (c *RPCClient) FetchAccount(ctx context.Context, address solana.PublicKey) (Account, error) {
	if err := c.wait(ctx); err != nil {
		return Account{}, err
	}

	out, err := c.api.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: c.commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}
	if err != nil {
		return Account{}, fmt.Errorf("get account info %s: %w", address, err)
	}
	if out == nil || out.Value == nil {
		return Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}

	var data []byte
	if out.Value.Data != nil {
		data = out.Value.Data.GetBinary()
	}
	return Account{
		Address:  address,
		Owner:    out.Value.Owner,
		Lamports: out.Value.Lamports,
		Data:     data,
	}, nil
}

// Submit implements Client. It sends the transaction once and never retries.
func (c *RPCClient) Submit(ctx context.Context, ix solana.Instruction, signer solana.PrivateKey, commitment rpc.CommitmentType) (solana.Signature, error) {
	if err := c.wait(ctx); err != nil {
		return solana.Signature{}, err
	}
	latest, err := c.api.GetLatestBlockhash(ctx, commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("get latest blockhash: %w", err)
	}
	if latest == nil || latest.Value == nil {
		return solana.Signature{}, errors.New("get latest blockhash: empty response")
	}

	payer := signer.PublicKey()
	tx, err := solana.NewTransaction([]solana.Instruction{ix}, latest.Value.Blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer) {
			return &signer
		}
		return nil
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}

	if err := c.wait(ctx); err != nil {
		return solana.Signature{}, err
	}
	sig, err := c.api.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: commitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}

	c.logger.Debug("transaction sent, awaiting confirmation",
		zap.Stringer("signature", sig),
		zap.String("commitment", string(commitment)),
	)
	if err := c.awaitCommitment(ctx, sig, latest.Value.LastValidBlockHeight, commitment); err != nil {
		return sig, err
	}
	return sig, nil
}

func (c *RPCClient) awaitCommitment(ctx context.Context, sig solana.Signature, lastValidHeight uint64, commitment rpc.CommitmentType) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		if err := c.wait(ctx); err != nil {
			return err
		}
		out, err := c.api.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			return fmt.Errorf("get signature status %s: %w", sig, err)
		}

		if out != nil && len(out.Value) > 0 && out.Value[0] != nil {
			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("%w: %s: %v", ErrTransactionFailed, sig, status.Err)
			}
			if reached(status.ConfirmationStatus, commitment) {
				return nil
			}
		} else {
			if err := c.wait(ctx); err != nil {
				return err
			}
			height, err := c.api.GetBlockHeight(ctx, commitment)
			if err != nil {
				return fmt.Errorf("get block height: %w", err)
			}
			if height > lastValidHeight {
				return fmt.Errorf("%w: %s", ErrBlockhashExpired, sig)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
