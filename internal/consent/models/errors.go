package models

import "errors"

// Reason tags why a consent check failed.
type Reason string

const (
	ReasonMinorRequiresGuardian Reason = "minor_requires_guardian"
	ReasonConsentWithdrawn      Reason = "consent_withdrawn"
	ReasonConsentNotProvided    Reason = "consent_not_provided"
	ReasonScopeMissing          Reason = "scope_missing"
	ReasonConsentExpired        Reason = "consent_expired"
	ReasonUnknownScope          Reason = "unknown_scope"
)

// ValidationError is the only error family the consent validator returns.
// Compare with errors.Is against the Err* values, or extract the Reason with
// errors.As.
type ValidationError struct {
	Reason Reason
	detail string
}

func (e *ValidationError) Error() string { return e.detail }

// Is matches any ValidationError with the same Reason.
func (e *ValidationError) Is(target error) bool {
	var other *ValidationError
	if errors.As(target, &other) {
		return other.Reason == e.Reason
	}
	return false
}

var (
	ErrMinorRequiresGuardian = &ValidationError{Reason: ReasonMinorRequiresGuardian, detail: "Minor requires guardian consent"}
	ErrConsentWithdrawn      = &ValidationError{Reason: ReasonConsentWithdrawn, detail: "Consent has been withdrawn"}
	ErrConsentNotProvided    = &ValidationError{Reason: ReasonConsentNotProvided, detail: "Consent has not been provided"}
	ErrScopeMissing          = &ValidationError{Reason: ReasonScopeMissing, detail: "Required consent scope missing"}
	ErrConsentExpired        = &ValidationError{Reason: ReasonConsentExpired, detail: "Consent expired; re-consent required"}
	ErrUnknownScope          = &ValidationError{Reason: ReasonUnknownScope, detail: "Unknown consent scope requested"}
)

// ErrAnonymized is returned when a lifecycle operation targets an erased record.
var ErrAnonymized = errors.New("consent record is anonymized")

// ReasonOf extracts the failure reason, or "" when err is not a ValidationError.
func ReasonOf(err error) Reason {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return ""
}
