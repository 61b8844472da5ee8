// Package environment resolves which deployment target (localhost, devnet,
// mainnet) a bootstrap run addresses. Resolution is permissive: aliases are
// normalised, unknown names pass through and an unset environment means
// localhost.
package environment
