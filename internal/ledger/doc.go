// Package ledger abstracts the Solana ledger operations the bootstrap needs:
// reading an account with an explicit "not found" outcome, and submitting a
// single-instruction transaction that blocks until a commitment tier is
// reached. RPCClient talks JSON-RPC; Memory is an in-process ledger with
// atomic create-if-absent semantics for simulation and tests.
package ledger
