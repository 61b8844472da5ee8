package gameconfig

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ErrUnsupportedInstruction is returned by Simulate for anything but a
// well-formed initialize_config.
var ErrUnsupportedInstruction = errors.New("unsupported game config instruction")

// Simulate executes initialize_config off-chain and returns the address and
// data of the account it creates. Creation conflicts are the caller's concern.
func Simulate(ix solana.Instruction, signer solana.PublicKey) (solana.PublicKey, []byte, error) {
	data, err := ix.Data()
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("read instruction data: %w", err)
	}
	if !bytes.Equal(data, initializeConfigDiscriminator[:]) {
		return solana.PublicKey{}, nil, fmt.Errorf("%w: unknown discriminator", ErrUnsupportedInstruction)
	}

	metas := ix.Accounts()
	if len(metas) != 6 {
		return solana.PublicKey{}, nil, fmt.Errorf("%w: expected 6 accounts, got %d", ErrUnsupportedInstruction, len(metas))
	}
	authority := metas[0]
	if !authority.IsSigner || !authority.PublicKey.Equals(signer) {
		return solana.PublicKey{}, nil, fmt.Errorf("%w: authority %s did not sign", ErrUnsupportedInstruction, authority.PublicKey)
	}

	address, bump, err := DeriveAddress(ix.ProgramID())
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	if !metas[1].PublicKey.Equals(address) {
		return solana.PublicKey{}, nil, fmt.Errorf("%w: game config account %s is not the PDA %s", ErrUnsupportedInstruction, metas[1].PublicKey, address)
	}

	account := Account{
		RoundNumber:     1,
		State:           StateNotStarted,
		CurrentKeyPrice: InitialKeyPrice,
		Authority:       authority.PublicKey,
		Bump:            bump,
		USDTMintKey:     metas[2].PublicKey,
		HANMintKey:      metas[3].PublicKey,
	}
	encoded, err := account.Encode()
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	return address, encoded, nil
}
