// Package deployment loads the per-environment deployment config (RPC
// endpoint, token mints, deployer wallet, round number) from an explicit
// environment-to-source registry and validates it before anything touches
// the network.
package deployment
