// Package wallet loads Solana CLI keypair files and cross-checks the
// deployer wallet named in a deployment config against the signer that will
// actually pay for and sign the bootstrap transaction.
package wallet
