package gameconfig

import "crypto/sha256"

// SeedGameConfig is the PDA seed of the singleton game config account.
const SeedGameConfig = "game_config"

// InitialKeyPrice is the key price a freshly initialised round starts at (0.1 USDT).
const InitialKeyPrice uint64 = 100_000

const discriminatorSize = 8

var (
	accountDiscriminator          = anchorDiscriminator("account", "GameConfig")
	initializeConfigDiscriminator = anchorDiscriminator("global", "initialize_config")
)

// anchorDiscriminator returns the first eight bytes of sha256("<namespace>:<name>").
func anchorDiscriminator(namespace, name string) [discriminatorSize]byte {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	var out [discriminatorSize]byte
	copy(out[:], sum[:discriminatorSize])
	return out
}
