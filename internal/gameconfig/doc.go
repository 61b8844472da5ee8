// Package gameconfig describes the on-chain side of the bootstrap: the
// game_config PDA, the GameConfig account layout and the initialize_config
// instruction of the Anchor program.
package gameconfig
