package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		outcome Outcome
		reason  string
		flags   []string
	}{
		{"single red flag", "Patient unconscious after fall", OutcomeEscalateImmediately, ReasonEmergency, []string{"unconscious"}},
		{"every red flag in list order", "Patient unconscious and BLEEDING", OutcomeEscalateImmediately, ReasonEmergency, []string{"bleeding", "unconscious"}},
		{"all red flags", "severe seizure, unresponsive, bleeding, unconscious", OutcomeEscalateImmediately, ReasonEmergency, RedFlags},
		{"red flag beats general", "severe pain", OutcomeEscalateImmediately, ReasonEmergency, []string{"severe"}},
		{"general symptoms", "Patient has fever and weakness", OutcomeRouteGeneral, ReasonGeneral, []string{}},
		{"cough", "dry COUGH for days", OutcomeRouteGeneral, ReasonGeneral, []string{}},
		{"no keywords", "Hello, testing system", OutcomeNonClinical, ReasonNoKeywords, []string{}},
		{"empty text", "", OutcomeNonClinical, ReasonNoKeywords, []string{}},
		{"substring match preserved", "painting the clinic", OutcomeRouteGeneral, ReasonGeneral, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Route(Message{Sender: "clinic_001", Text: tt.text})
			assert.Equal(t, tt.outcome, d.Outcome)
			assert.Equal(t, tt.reason, d.Reason)
			require.NotNil(t, d.Flags)
			assert.Equal(t, tt.flags, d.Flags)
			assert.Equal(t, tt.outcome == OutcomeEscalateImmediately, d.IsEmergency())
		})
	}
}

func TestMessageValidate(t *testing.T) {
	assert.NoError(t, Message{Sender: "clinic_001"}.Validate())
	assert.ErrorIs(t, Message{Sender: "  ", Text: "bleeding"}.Validate(), ErrMissingSender)
}
