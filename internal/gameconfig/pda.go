package gameconfig

import "github.com/gagliardetto/solana-go"

// DeriveAddress returns the game config PDA and its bump for programID.
func DeriveAddress(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(SeedGameConfig)}, programID)
}
