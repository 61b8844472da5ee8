package bootstrap

import "errors"

var (
	// ErrProbeFailed is returned when the existence probe fails for any
	// reason other than the account being absent.
	ErrProbeFailed = errors.New("game config existence probe failed")
	// ErrTransactionSubmission is returned when the initialize transaction
	// could not be submitted or confirmed.
	ErrTransactionSubmission = errors.New("initialize transaction submission failed")
	// ErrPostVerification is returned when the ledger accepted the
	// initialize transaction but the created account cannot be read back.
	ErrPostVerification = errors.New("game config post-initialization verification failed")
	// ErrUnexpectedOwner is returned when the account at the PDA is not owned by the program.
	ErrUnexpectedOwner = errors.New("game config account has an unexpected owner")
)
