// Package bootstrap creates the singleton game config account exactly once.
//
// A run probes the game_config PDA, submits initialize_config only when the
// probe reports the account as absent, and reads the account back after the
// transaction is confirmed. Only an explicit "not found" from the ledger
// counts as absent; every other probe failure aborts the run. Submissions
// are never retried.
package bootstrap
