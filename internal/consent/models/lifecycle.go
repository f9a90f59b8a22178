package models

import "time"

// Grant unions scopes into the record and refreshes the reconsent clock.
// ConsentedAt is set only on the first grant; a grant after withdrawal clears
// the withdrawal. Granting already-held scopes changes nothing but timestamps.
func Grant(record *Record, scopes []Scope, at time.Time) error {
	if record.IsAnonymized() {
		return ErrAnonymized
	}
	for _, s := range scopes {
		if !s.IsValid() {
			return ErrUnknownScope
		}
	}

	if record.GrantedScopes == nil {
		record.GrantedScopes = ScopeSet{}
	}
	for _, s := range scopes {
		record.GrantedScopes[s] = struct{}{}
	}
	if record.ConsentedAt == nil {
		record.ConsentedAt = &at
	}
	reconsent := at
	record.LastReconsentAt = &reconsent
	record.WithdrawnAt = nil
	return nil
}

// Withdraw marks the record withdrawn at at. Scopes and metadata are kept.
func Withdraw(record *Record, at time.Time) {
	record.WithdrawnAt = &at
}

// WithdrawAndAnonymize is the right-to-erasure path: it withdraws, replaces the
// subject identifier with AnonymizedSubjectID, and empties metadata. It is the
// only function that touches identity fields. Repeated calls keep the first
// withdrawal timestamp and leave the record unchanged.
func WithdrawAndAnonymize(record *Record, at time.Time) {
	if record.WithdrawnAt == nil {
		Withdraw(record, at)
	}
	record.SubjectID = AnonymizedSubjectID
	record.Metadata = map[string]string{}
}
