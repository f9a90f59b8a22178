package routing

import (
	"time"

	"naijacare/internal/consent/models"
)

// RoutingScopes must all be granted before a message is classified.
var RoutingScopes = []models.Scope{models.ScopeDataCollection, models.ScopeAIProcessing}

// RouteWithConsent validates record against RoutingScopes at now. Invalid
// consent degrades to NON_CLINICAL with the failure in the reason; it never
// escalates and never fails. A nil record counts as consent not provided.
func RouteWithConsent(msg Message, record *models.Record, now time.Time) Decision {
	decision, _ := Evaluate(msg, record, now)
	return decision
}

// Evaluate is RouteWithConsent that also returns the consent failure, if any,
// so callers can count denials by reason.
func Evaluate(msg Message, record *models.Record, now time.Time) (Decision, error) {
	if err := models.Validate(record, RoutingScopes, now); err != nil {
		return Decision{
			Outcome: OutcomeNonClinical,
			Reason:  reasonConsentFail + err.Error(),
			Flags:   []string{},
		}, err
	}
	return Route(msg), nil
}
