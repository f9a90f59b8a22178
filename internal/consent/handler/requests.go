package handler

// GrantRequest is the body of POST /api/consent/{subjectID}/grant.
type GrantRequest struct {
	AgeYears       *int              `json:"age_years,omitempty"`
	Scopes         []string          `json:"scopes"`
	ConsentVersion string            `json:"consent_version,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// ValidateResponse reports a consent check. Reason is the machine tag of the
// first failing rule.
type ValidateResponse struct {
	Valid   bool   `json:"valid"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}
