package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors with the right
// code and user-facing message.
//
// These represent factual states about stored rows, not validation failures:
// - ErrNotFound: entity does not exist in the store
// - ErrConflict: uniqueness violated (duplicate email, second profile)
// - ErrInvalidState: row is not in the status a compare-and-set expected
//
// For input validation use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
)
