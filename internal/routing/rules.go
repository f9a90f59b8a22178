package routing

import "strings"

// RedFlags are checked in this order; the order is the order of Decision.Flags.
var RedFlags = []string{"bleeding", "unconscious", "seizure", "unresponsive", "severe"}

// GeneralSymptoms route to general triage when no red flag matches.
var GeneralSymptoms = []string{"pain", "fever", "cough", "weakness"}

const (
	ReasonEmergency   = "Emergency red-flag detected"
	ReasonGeneral     = "General symptoms"
	ReasonNoKeywords  = "No clinical keywords"
	reasonConsentFail = "Consent invalid: "
)

// Route classifies msg by case-insensitive substring match. Tokens embedded in
// longer words match too ("painting" contains "pain").
func Route(msg Message) Decision {
	text := strings.ToLower(msg.Text)

	flags := []string{}
	for _, flag := range RedFlags {
		if strings.Contains(text, flag) {
			flags = append(flags, flag)
		}
	}
	if len(flags) > 0 {
		return Decision{Outcome: OutcomeEscalateImmediately, Reason: ReasonEmergency, Flags: flags}
	}

	for _, symptom := range GeneralSymptoms {
		if strings.Contains(text, symptom) {
			return Decision{Outcome: OutcomeRouteGeneral, Reason: ReasonGeneral, Flags: []string{}}
		}
	}
	return Decision{Outcome: OutcomeNonClinical, Reason: ReasonNoKeywords, Flags: []string{}}
}
