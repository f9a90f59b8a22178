package sentinel

import "errors"

// Sentinel errors for storage facts. Consent and audit stores return these
// (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: no record is stored under the key
//   - ErrInvalidState: record is in the wrong lifecycle state for the operation
//   - ErrUnavailable: backing store (redis, postgres, kafka) cannot be reached
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
