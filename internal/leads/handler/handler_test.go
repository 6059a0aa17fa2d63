package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"telemarketing_backend/internal/leads/repository"
	"telemarketing_backend/internal/leads/service"
	"telemarketing_backend/internal/leads/transport"
	"telemarketing_backend/platform/httpkit"
	"telemarketing_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type stubRepo struct {
	lead    repository.Lead
	stats   repository.Stats
	created repository.CreateCallLogParams
	callIDs []*uuid.UUID
}

func (s *stubRepo) GetByID(_ context.Context, id, companyID uuid.UUID) (repository.Lead, error) {
	if id != s.lead.ID || companyID != s.lead.CompanyID {
		return repository.Lead{}, repository.ErrNotFound
	}
	return s.lead, nil
}

func (s *stubRepo) List(context.Context, repository.ListParams) ([]repository.Lead, int, error) {
	return nil, 0, nil
}

func (s *stubRepo) UpdateStatus(ctx context.Context, id, companyID uuid.UUID, status string) (repository.Lead, error) {
	lead, err := s.GetByID(ctx, id, companyID)
	lead.Status = status
	return lead, err
}

func (s *stubRepo) CreateCallLog(ctx context.Context, params repository.CreateCallLogParams) (repository.CallLog, string, error) {
	if _, err := s.GetByID(ctx, params.LeadID, params.CompanyID); err != nil {
		return repository.CallLog{}, "", err
	}
	s.created = params
	return repository.CallLog{ID: uuid.New(), LeadID: params.LeadID, UserID: params.UserID, Outcome: params.Outcome}, "contacted", nil
}

func (s *stubRepo) ListCallLogs(_ context.Context, params repository.CallLogListParams) ([]repository.CallLog, int, error) {
	s.callIDs = append(s.callIDs, params.LeadID)
	return nil, 0, nil
}

func (s *stubRepo) Stats(context.Context, uuid.UUID, time.Time) (repository.Stats, error) {
	return s.stats, nil
}

func newEngine(repo *stubRepo, userID uuid.UUID, tenantID *uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rg := r.Group("/leads", func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, userID)
		if tenantID != nil {
			c.Set(httpkit.ContextTenantIDKey, *tenantID)
		}
	})
	New(service.New(repo), validator.New()).RegisterRoutes(rg)
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestStatsRouteIsNotALeadID(t *testing.T) {
	tenant := uuid.New()
	repo := &stubRepo{stats: repository.Stats{TotalLeads: 4, ConvertedLeads: 1}}
	r := newEngine(repo, uuid.New(), &tenant)

	rec := serve(r, http.MethodGet, "/leads/stats", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp transport.LeadStatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalLeads != 4 || resp.ConversionRate != 25 {
		t.Fatalf("unexpected stats %+v", resp)
	}
}

func TestStatsRequiresCompany(t *testing.T) {
	r := newEngine(&stubRepo{}, uuid.New(), nil)

	if rec := serve(r, http.MethodGet, "/leads/stats", ""); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without company, got %d", rec.Code)
	}
}

func TestLogCallCreatesEntry(t *testing.T) {
	tenant := uuid.New()
	user := uuid.New()
	lead := repository.Lead{ID: uuid.New(), CompanyID: tenant, Status: "new"}
	repo := &stubRepo{lead: lead}
	r := newEngine(repo, user, &tenant)

	rec := serve(r, http.MethodPost, "/leads/"+lead.ID.String()+"/calls", `{"outcome":"success","durationSeconds":42}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if repo.created.UserID != user || repo.created.DurationSeconds != 42 || !repo.created.MarkContacted {
		t.Fatalf("unexpected create params %+v", repo.created)
	}
	var resp transport.CallLogResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.LeadStatus != transport.LeadStatusContacted {
		t.Fatalf("expected contacted lead status, got %q", resp.LeadStatus)
	}
}

func TestLogCallRejectsUnknownOutcome(t *testing.T) {
	tenant := uuid.New()
	r := newEngine(&stubRepo{}, uuid.New(), &tenant)

	rec := serve(r, http.MethodPost, "/leads/"+uuid.NewString()+"/calls", `{"outcome":"hung_up"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLogCallUnknownLeadIsNotFound(t *testing.T) {
	tenant := uuid.New()
	r := newEngine(&stubRepo{}, uuid.New(), &tenant)

	rec := serve(r, http.MethodPost, "/leads/"+uuid.NewString()+"/calls", `{"outcome":"busy"}`)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCallHistoryRoutes(t *testing.T) {
	tenant := uuid.New()
	repo := &stubRepo{}
	r := newEngine(repo, uuid.New(), &tenant)
	leadID := uuid.New()

	if rec := serve(r, http.MethodGet, "/leads/calls?period=week", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for company history, got %d", rec.Code)
	}
	if rec := serve(r, http.MethodGet, "/leads/"+leadID.String()+"/calls", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for lead history, got %d", rec.Code)
	}
	if rec := serve(r, http.MethodGet, "/leads/calls?period=year", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown period, got %d", rec.Code)
	}

	if len(repo.callIDs) != 2 || repo.callIDs[0] != nil || repo.callIDs[1] == nil || *repo.callIDs[1] != leadID {
		t.Fatalf("unexpected lead filters %v", repo.callIDs)
	}
}
