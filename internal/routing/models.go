// Package routing classifies inbound clinic messages by keyword and gates the
// classification on the sender's consent.
//
// The keyword lists are a prototype simulation. They are not clinical guidance.
package routing

import (
	"errors"
	"strings"
	"time"
)

// Outcome is one of three mutually exclusive routing results.
type Outcome string

const (
	OutcomeEscalateImmediately Outcome = "ESCALATE_IMMEDIATELY"
	OutcomeRouteGeneral        Outcome = "ROUTE_GENERAL"
	OutcomeNonClinical         Outcome = "NON_CLINICAL"
)

// Decision is the result of routing one message. Flags lists every matching
// red-flag token in red-flag list order and is empty unless escalating.
type Decision struct {
	Outcome Outcome  `json:"decision"`
	Reason  string   `json:"reason"`
	Flags   []string `json:"flags"`
}

// IsEmergency reports whether the decision escalates.
func (d Decision) IsEmergency() bool {
	return d.Outcome == OutcomeEscalateImmediately
}

// Message is an inbound message. It is never persisted verbatim.
type Message struct {
	Sender    string     `json:"sender"`
	Text      string     `json:"text"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// ErrMissingSender rejects a message without a sender identifier.
var ErrMissingSender = errors.New("message sender is required")

// Validate checks the boundary preconditions. Empty text is allowed.
func (m Message) Validate() error {
	if strings.TrimSpace(m.Sender) == "" {
		return ErrMissingSender
	}
	return nil
}
