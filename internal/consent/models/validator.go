package models

import "time"

const (
	// ReconsentWindow is the maximum age of the last consent confirmation.
	ReconsentWindow = 90 * 24 * time.Hour
	// MinimumConsentAge is the youngest age allowed to consent without a guardian.
	MinimumConsentAge = 16
)

// Validate checks record against the required scopes at now.
// Rule order is fixed and the first failure wins:
//  0. required scopes must belong to the global set (precondition)
//  1. minors need a guardian
//  2. withdrawal is sticky
//  3. consent must have been given
//  4. every required scope must be granted
//  5. the last confirmation must be inside the reconsent window
//
// Pure: the record is never modified.
func Validate(record *Record, required []Scope, now time.Time) error {
	for _, s := range required {
		if !s.IsValid() {
			return ErrUnknownScope
		}
	}
	if record == nil {
		return ErrConsentNotProvided
	}

	if record.AgeYears < MinimumConsentAge {
		return ErrMinorRequiresGuardian
	}
	if record.WithdrawnAt != nil {
		return ErrConsentWithdrawn
	}
	if record.ConsentedAt == nil {
		return ErrConsentNotProvided
	}
	if !record.GrantedScopes.Contains(required) {
		return ErrScopeMissing
	}

	last := *record.ConsentedAt
	if record.LastReconsentAt != nil {
		last = *record.LastReconsentAt
	}
	if now.Sub(last) > ReconsentWindow {
		return ErrConsentExpired
	}
	return nil
}
