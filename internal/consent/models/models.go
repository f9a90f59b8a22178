package models

import (
	"encoding/json"
	"slices"
	"time"
)

// Scope labels a category of permitted data use. Scope binding lets a subject
// allow collection without allowing, say, third-party sharing.
type Scope string

const (
	ScopeDataCollection    Scope = "data_collection"
	ScopeAIProcessing      Scope = "ai_processing"
	ScopeThirdPartySharing Scope = "third_party_sharing"
)

// AllScopes is the fixed global scope set, in canonical order.
var AllScopes = []Scope{ScopeDataCollection, ScopeAIProcessing, ScopeThirdPartySharing}

// IsValid reports whether s belongs to the global scope set.
func (s Scope) IsValid() bool {
	return slices.Contains(AllScopes, s)
}

// ParseScopes converts raw strings into scopes, failing on the first value
// outside the global set.
func ParseScopes(raw []string) ([]Scope, error) {
	scopes := make([]Scope, 0, len(raw))
	for _, r := range raw {
		s := Scope(r)
		if !s.IsValid() {
			return nil, ErrUnknownScope
		}
		scopes = append(scopes, s)
	}
	return scopes, nil
}

// ScopeSet is a set of granted scopes. It serializes as a sorted array.
type ScopeSet map[Scope]struct{}

// NewScopeSet builds a set from scopes.
func NewScopeSet(scopes ...Scope) ScopeSet {
	set := make(ScopeSet, len(scopes))
	for _, s := range scopes {
		set[s] = struct{}{}
	}
	return set
}

func (s ScopeSet) Has(scope Scope) bool {
	_, ok := s[scope]
	return ok
}

// Contains reports whether every scope in required is in the set.
func (s ScopeSet) Contains(required []Scope) bool {
	for _, r := range required {
		if !s.Has(r) {
			return false
		}
	}
	return true
}

// Sorted returns the members in lexical order.
func (s ScopeSet) Sorted() []Scope {
	out := make([]Scope, 0, len(s))
	for scope := range s {
		out = append(out, scope)
	}
	slices.Sort(out)
	return out
}

func (s ScopeSet) clone() ScopeSet {
	out := make(ScopeSet, len(s))
	for scope := range s {
		out[scope] = struct{}{}
	}
	return out
}

func (s ScopeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON rejects members outside the known scope set with ErrUnknownScope.
func (s *ScopeSet) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	scopes, err := ParseScopes(raw)
	if err != nil {
		return err
	}
	*s = NewScopeSet(scopes...)
	return nil
}

// DefaultConsentVersion tags records created without an explicit version.
const DefaultConsentVersion = "v1"

// AnonymizedSubjectID replaces the subject identifier on erasure.
const AnonymizedSubjectID = "ANONYMIZED"

// Record is one subject's consent state. It is mutated in place by Grant,
// Withdraw, and WithdrawAndAnonymize; callers sharing a Record across
// goroutines must serialize those calls.
type Record struct {
	SubjectID       string            `json:"subject_id"`
	AgeYears        int               `json:"age_years"`
	GrantedScopes   ScopeSet          `json:"granted_scopes"`
	ConsentedAt     *time.Time        `json:"consented_at"`
	WithdrawnAt     *time.Time        `json:"withdrawn_at"`
	LastReconsentAt *time.Time        `json:"last_reconsent_at"`
	ConsentVersion  string            `json:"consent_version"`
	Metadata        map[string]string `json:"metadata"`
}

// NewRecord returns an empty, not-yet-consented record.
func NewRecord(subjectID string, ageYears int) *Record {
	return &Record{
		SubjectID:      subjectID,
		AgeYears:       ageYears,
		GrantedScopes:  ScopeSet{},
		ConsentVersion: DefaultConsentVersion,
		Metadata:       map[string]string{},
	}
}

// IsWithdrawn reports whether a withdrawal timestamp is set.
func (r *Record) IsWithdrawn() bool { return r.WithdrawnAt != nil }

// IsAnonymized reports whether the record went through erasure.
func (r *Record) IsAnonymized() bool { return r.SubjectID == AnonymizedSubjectID }

// Clone returns a deep copy. Stores hand out clones so no two owners share
// mutable state.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.GrantedScopes = r.GrantedScopes.clone()
	out.ConsentedAt = cloneTime(r.ConsentedAt)
	out.WithdrawnAt = cloneTime(r.WithdrawnAt)
	out.LastReconsentAt = cloneTime(r.LastReconsentAt)
	out.Metadata = make(map[string]string, len(r.Metadata))
	for k, v := range r.Metadata {
		out.Metadata[k] = v
	}
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
