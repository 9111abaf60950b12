package services

import "errors"

// Expected domain outcomes, reported verbatim to the gateway with no retry.
// Store failures are returned as-is and surface as a generic retryable error.
var (
	ErrAlreadyMember      = errors.New("already registered to a team")
	ErrNotAMember         = errors.New("not registered to a team")
	ErrCaptainCannotLeave = errors.New("captains cannot leave their own team")
	ErrNotACaptain        = errors.New("only the team captain may do this")
	ErrUnknownToken       = errors.New("no team matches that token")
	ErrUnknownPuzzle      = errors.New("unknown puzzle")
	ErrQuotaExhausted     = errors.New("no guesses remaining")
)
