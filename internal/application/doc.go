// Package application wires the bootstrap pipeline together: environment
// resolution, deployment config loading, signer loading and verification,
// ledger construction (RPC or in-memory simulation) and the orchestrator.
// It keeps the main package focused on CLI parsing and process exit codes.
package application
