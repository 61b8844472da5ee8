package gameconfig

import "github.com/gagliardetto/solana-go"

// InitializeConfigAccounts lists the accounts of the initialize_config instruction.
type InitializeConfigAccounts struct {
	Authority  solana.PublicKey
	GameConfig solana.PublicKey
	USDTMint   solana.PublicKey
	HANMint    solana.PublicKey
}

// NewInitializeConfigInstruction builds initialize_config for programID.
// The token and system programs are fixed references required by the
// program's account list.
func NewInitializeConfigInstruction(programID solana.PublicKey, accounts InitializeConfigAccounts) solana.Instruction {
	metas := solana.AccountMetaSlice{
		solana.Meta(accounts.Authority).WRITE().SIGNER(),
		solana.Meta(accounts.GameConfig).WRITE(),
		solana.Meta(accounts.USDTMint),
		solana.Meta(accounts.HANMint),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SystemProgramID),
	}

	data := make([]byte, discriminatorSize)
	copy(data, initializeConfigDiscriminator[:])

	return solana.NewInstruction(programID, metas, data)
}
