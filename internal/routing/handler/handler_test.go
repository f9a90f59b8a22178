package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"naijacare/internal/routing"
	"naijacare/internal/routing/handler/mocks"
	dErrors "naijacare/pkg/domain-errors"
	audit "naijacare/pkg/platform/audit"
)

//go:generate mockgen -source=handler.go -destination=mocks/routing-mocks.go -package=mocks Service
type RoutingHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestRoutingHandlerSuite(t *testing.T) {
	suite.Run(t, new(RoutingHandlerSuite))
}

func (s *RoutingHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *RoutingHandlerSuite) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RoutingHandlerSuite) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func (s *RoutingHandlerSuite) TestRoute() {
	s.Run("escalation", func() {
		ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
		s.service.EXPECT().Route(gomock.Any(), routing.Message{
			Sender:    "clinic_001",
			Text:      "Patient unconscious after fall",
			Timestamp: &ts,
		}).Return(routing.Decision{
			Outcome: routing.OutcomeEscalateImmediately,
			Reason:  routing.ReasonEmergency,
			Flags:   []string{"unconscious"},
		}, nil)

		w := s.post("/api/route", `{"sender":"clinic_001","text":"Patient unconscious after fall","timestamp":"2025-06-01T10:00:00Z"}`)
		s.Equal(http.StatusOK, w.Code)
		s.JSONEq(`{
			"decision":"ESCALATE_IMMEDIATELY",
			"reason":"Emergency red-flag detected",
			"flags":["unconscious"],
			"disclaimer":"Prototype keyword matching; not clinical decision support"
		}`, w.Body.String())
	})

	s.Run("empty flags render as array", func() {
		s.service.EXPECT().Route(gomock.Any(), gomock.Any()).Return(routing.Decision{
			Outcome: routing.OutcomeNonClinical,
			Reason:  routing.ReasonNoKeywords,
		}, nil)

		w := s.post("/api/route", `{"sender":"clinic_001","text":"hello"}`)
		var resp map[string]any
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal([]any{}, resp["flags"])
	})

	s.Run("missing sender", func() {
		s.service.EXPECT().Route(gomock.Any(), gomock.Any()).
			Return(routing.Decision{}, dErrors.Wrap(routing.ErrMissingSender, dErrors.CodeBadRequest, "sender is required"))

		w := s.post("/api/route", `{"text":"bleeding"}`)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("malformed body", func() {
		w := s.post("/api/route", `{"sender":`)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("internal failure hides detail", func() {
		s.service.EXPECT().Route(gomock.Any(), gomock.Any()).
			Return(routing.Decision{}, dErrors.Wrap(errors.New("pq: connection refused"), dErrors.CodeInternal, "failed to record audit entry"))

		w := s.post("/api/route", `{"sender":"clinic_001","text":"pain"}`)
		s.Equal(http.StatusInternalServerError, w.Code)
		s.NotContains(w.Body.String(), "pq:")
	})
}

func (s *RoutingHandlerSuite) TestAudit() {
	entry := audit.Entry{
		ID:               uuid.New(),
		SubjectIDHash:    "b1e5c7b0c3a4f2d9",
		Decision:         "ESCALATE_IMMEDIATELY",
		Timestamp:        time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		MessageLength:    30,
		HasEmergencyFlag: true,
	}
	s.service.EXPECT().AuditEntries(gomock.Any()).Return([]audit.Entry{entry}, nil)

	w := s.get("/api/audit")
	s.Equal(http.StatusOK, w.Code)
	var resp []map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().Len(resp, 1)
	s.Equal("b1e5c7b0c3a4f2d9", resp[0]["clinic_id_hash"])
	s.Equal(true, resp[0]["has_emergency_flag"])
	s.Equal(float64(30), resp[0]["message_length"])
}

func (s *RoutingHandlerSuite) TestStats() {
	s.service.EXPECT().Stats(gomock.Any()).Return(audit.Stats{
		TotalMessages:  3,
		Decisions:      map[string]int{"ESCALATE_IMMEDIATELY": 1, "NON_CLINICAL": 2},
		EmergencyCount: 1,
	}, nil)

	w := s.get("/api/stats")
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"total_messages":3,"decisions":{"ESCALATE_IMMEDIATELY":1,"NON_CLINICAL":2},"emergency_count":1}`, w.Body.String())

	s.service.EXPECT().Stats(gomock.Any()).Return(audit.Stats{}, dErrors.New(dErrors.CodeInternal, "failed to compute stats"))
	s.Equal(http.StatusInternalServerError, s.get("/api/stats").Code)
}
