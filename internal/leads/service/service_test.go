package service

import (
	"context"
	"testing"
	"time"

	"telemarketing_backend/internal/leads/repository"
	"telemarketing_backend/internal/leads/transport"
	"telemarketing_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeRepo struct {
	leads      []repository.Lead
	total      int
	lastParams repository.ListParams
	updated    string

	created    repository.CreateCallLogParams
	calls      []repository.CallLog
	callParams repository.CallLogListParams
	stats      repository.Stats
	statsSince time.Time
}

func (f *fakeRepo) GetByID(_ context.Context, id, companyID uuid.UUID) (repository.Lead, error) {
	for _, lead := range f.leads {
		if lead.ID == id && lead.CompanyID == companyID {
			return lead, nil
		}
	}
	return repository.Lead{}, repository.ErrNotFound
}

func (f *fakeRepo) List(_ context.Context, params repository.ListParams) ([]repository.Lead, int, error) {
	f.lastParams = params
	return f.leads, f.total, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id, companyID uuid.UUID, status string) (repository.Lead, error) {
	lead, err := f.GetByID(ctx, id, companyID)
	if err != nil {
		return repository.Lead{}, err
	}
	f.updated = status
	lead.Status = status
	return lead, nil
}

func (f *fakeRepo) CreateCallLog(ctx context.Context, params repository.CreateCallLogParams) (repository.CallLog, string, error) {
	lead, err := f.GetByID(ctx, params.LeadID, params.CompanyID)
	if err != nil {
		return repository.CallLog{}, "", err
	}
	f.created = params
	status := lead.Status
	if params.MarkContacted && status == "new" {
		status = "contacted"
	}
	return repository.CallLog{
		ID:              uuid.New(),
		CompanyID:       params.CompanyID,
		LeadID:          params.LeadID,
		UserID:          params.UserID,
		Outcome:         params.Outcome,
		CallTime:        params.CallTime,
		DurationSeconds: params.DurationSeconds,
		Notes:           params.Notes,
	}, status, nil
}

func (f *fakeRepo) ListCallLogs(_ context.Context, params repository.CallLogListParams) ([]repository.CallLog, int, error) {
	f.callParams = params
	return f.calls, len(f.calls), nil
}

func (f *fakeRepo) Stats(_ context.Context, _ uuid.UUID, since time.Time) (repository.Stats, error) {
	f.statsSince = since
	return f.stats, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestListAppliesPagingDefaults(t *testing.T) {
	repo := &fakeRepo{total: 45}
	svc := New(repo)
	tenant := uuid.New()

	resp, err := svc.List(context.Background(), tenant, transport.ListLeadsRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Page != 1 || resp.PageSize != defaultPageSize || resp.TotalPages != 3 {
		t.Fatalf("unexpected paging %+v", resp)
	}
	if repo.lastParams.CompanyID != tenant || repo.lastParams.Limit != 20 || repo.lastParams.Offset != 0 {
		t.Fatalf("unexpected params %+v", repo.lastParams)
	}
}

func TestListClampsPageSize(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo)

	resp, err := svc.List(context.Background(), uuid.New(), transport.ListLeadsRequest{Page: 3, PageSize: 500})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.PageSize != maxPageSize || repo.lastParams.Offset != 200 {
		t.Fatalf("expected clamp to %d with offset 200, got %d / %d", maxPageSize, resp.PageSize, repo.lastParams.Offset)
	}
}

func TestListPassesFilters(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo)
	importID := uuid.New()

	_, err := svc.List(context.Background(), uuid.New(), transport.ListLeadsRequest{
		Status:   transport.LeadStatusContacted,
		Search:   "  Acme ",
		ImportID: importID.String(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastParams.Status == nil || *repo.lastParams.Status != "contacted" {
		t.Fatalf("expected status filter, got %v", repo.lastParams.Status)
	}
	if repo.lastParams.ImportID == nil || *repo.lastParams.ImportID != importID {
		t.Fatalf("expected import filter, got %v", repo.lastParams.ImportID)
	}
	if repo.lastParams.Search != "Acme" || repo.lastParams.PhoneDigits != "" {
		t.Fatalf("unexpected search params %+v", repo.lastParams)
	}
}

func TestListSearchesPhoneDigits(t *testing.T) {
	tests := []struct {
		search string
		want   string
	}{
		{search: "010 1234 5678", want: "01012345678"},
		{search: "+82 10-1234-5678", want: "01012345678"},
		{search: "5678", want: "5678"},
		{search: "567", want: ""},
		{search: "김민수", want: ""},
	}

	for _, tt := range tests {
		repo := &fakeRepo{}
		if _, err := New(repo).List(context.Background(), uuid.New(), transport.ListLeadsRequest{Search: tt.search}); err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.search, err)
		}
		if repo.lastParams.PhoneDigits != tt.want {
			t.Fatalf("%q: expected digits %q, got %q", tt.search, tt.want, repo.lastParams.PhoneDigits)
		}
	}
}

func TestListRejectsMalformedImportID(t *testing.T) {
	_, err := New(&fakeRepo{}).List(context.Background(), uuid.New(), transport.ListLeadsRequest{ImportID: "nope"})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestUpdateStatusMapsNotFound(t *testing.T) {
	_, err := New(&fakeRepo{}).UpdateStatus(context.Background(), uuid.New(), uuid.New(),
		transport.UpdateLeadStatusRequest{Status: transport.LeadStatusLost})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateStatusIsTenantScoped(t *testing.T) {
	tenant := uuid.New()
	lead := repository.Lead{ID: uuid.New(), CompanyID: tenant, Status: "new", CreatedAt: time.Now()}
	repo := &fakeRepo{leads: []repository.Lead{lead}}
	svc := New(repo)

	if _, err := svc.UpdateStatus(context.Background(), uuid.New(), lead.ID,
		transport.UpdateLeadStatusRequest{Status: transport.LeadStatusQualified}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected other tenant to get not found, got %v", err)
	}

	resp, err := svc.UpdateStatus(context.Background(), tenant, lead.ID,
		transport.UpdateLeadStatusRequest{Status: transport.LeadStatusQualified})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != transport.LeadStatusQualified || repo.updated != "qualified" {
		t.Fatalf("expected qualified, got %s", resp.Status)
	}
}

func TestLeadResponseFormatsPhone(t *testing.T) {
	resp := toLeadResponse(repository.Lead{Phone: "010-1234-5678"})
	if resp.PhoneE164 != "+821012345678" {
		t.Fatalf("expected E.164 phone, got %q", resp.PhoneE164)
	}

	resp = toLeadResponse(repository.Lead{Phone: "내선 없음"})
	if resp.PhoneE164 != "" {
		t.Fatalf("expected no E.164 for unparsable phone, got %q", resp.PhoneE164)
	}
}

func TestLogCallMarksNewLeadContacted(t *testing.T) {
	tenant := uuid.New()
	user := uuid.New()
	lead := repository.Lead{ID: uuid.New(), CompanyID: tenant, Status: "new"}
	repo := &fakeRepo{leads: []repository.Lead{lead}}
	now := time.Date(2024, 5, 2, 14, 0, 0, 0, time.UTC)
	svc := New(repo)
	svc.now = fixedClock(now)

	resp, err := svc.LogCall(context.Background(), tenant, user, lead.ID, transport.CreateCallLogRequest{
		Outcome:         transport.CallOutcomeSuccess,
		DurationSeconds: 95,
		Notes:           "  관심 있음 - 자료 발송  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.LeadStatus != transport.LeadStatusContacted {
		t.Fatalf("expected lead to become contacted, got %q", resp.LeadStatus)
	}
	if !repo.created.MarkContacted || repo.created.UserID != user || !repo.created.CallTime.Equal(now) {
		t.Fatalf("unexpected create params %+v", repo.created)
	}
	if repo.created.Notes == nil || *repo.created.Notes != "관심 있음 - 자료 발송" {
		t.Fatalf("expected trimmed notes, got %v", repo.created.Notes)
	}
}

func TestLogCallUnansweredKeepsStatus(t *testing.T) {
	tenant := uuid.New()
	lead := repository.Lead{ID: uuid.New(), CompanyID: tenant, Status: "new"}
	repo := &fakeRepo{leads: []repository.Lead{lead}}

	resp, err := New(repo).LogCall(context.Background(), tenant, uuid.New(), lead.ID,
		transport.CreateCallLogRequest{Outcome: transport.CallOutcomeNoAnswer})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.LeadStatus != transport.LeadStatusNew || repo.created.MarkContacted {
		t.Fatalf("expected no status change, got %q", resp.LeadStatus)
	}
	if repo.created.Notes != nil {
		t.Fatalf("expected empty notes to stay null, got %v", *repo.created.Notes)
	}
}

func TestLogCallRejectsFutureCallTime(t *testing.T) {
	now := time.Date(2024, 5, 2, 14, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	svc := New(&fakeRepo{})
	svc.now = fixedClock(now)

	_, err := svc.LogCall(context.Background(), uuid.New(), uuid.New(), uuid.New(),
		transport.CreateCallLogRequest{Outcome: transport.CallOutcomeBusy, CallTime: &later})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLogCallForOtherTenantsLeadIsNotFound(t *testing.T) {
	lead := repository.Lead{ID: uuid.New(), CompanyID: uuid.New(), Status: "new"}

	_, err := New(&fakeRepo{leads: []repository.Lead{lead}}).LogCall(context.Background(), uuid.New(), uuid.New(), lead.ID,
		transport.CreateCallLogRequest{Outcome: transport.CallOutcomeSuccess})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListCallsAppliesPeriodAndOutcome(t *testing.T) {
	now := time.Date(2024, 5, 2, 14, 30, 0, 0, time.UTC)
	company := "Acme"
	repo := &fakeRepo{calls: []repository.CallLog{{
		ID: uuid.New(), Outcome: "callback", LeadContactName: "김민수", LeadCompanyName: &company, LeadPhone: "010-1234-5678",
	}}}
	svc := New(repo)
	svc.now = fixedClock(now)
	leadID := uuid.New()

	resp, err := svc.ListCalls(context.Background(), uuid.New(), &leadID, transport.ListCallLogsRequest{
		Period:  transport.CallPeriodToday,
		Outcome: transport.CallOutcomeCallback,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.callParams.Since == nil || !repo.callParams.Since.Equal(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected today to start at midnight, got %v", repo.callParams.Since)
	}
	if repo.callParams.Outcome == nil || *repo.callParams.Outcome != "callback" || repo.callParams.LeadID == nil {
		t.Fatalf("unexpected params %+v", repo.callParams)
	}
	if len(resp.Items) != 1 || resp.Items[0].Lead == nil || resp.Items[0].Lead.ContactName != "김민수" {
		t.Fatalf("expected lead summary on history items, got %+v", resp.Items)
	}
	if resp.Total != 1 || resp.TotalPages != 1 {
		t.Fatalf("unexpected paging %+v", resp)
	}
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2024, 5, 2, 14, 30, 0, 0, time.UTC)

	if got := periodStart(now, transport.CallPeriodWeek); !got.Equal(now.AddDate(0, 0, -7)) {
		t.Fatalf("unexpected week start %v", got)
	}
	if got := periodStart(now, transport.CallPeriodMonth); !got.Equal(now.AddDate(0, 0, -30)) {
		t.Fatalf("unexpected month start %v", got)
	}
}

func TestStatsComputesRates(t *testing.T) {
	now := time.Date(2024, 5, 2, 9, 15, 0, 0, time.UTC)
	repo := &fakeRepo{stats: repository.Stats{
		TotalLeads:             8,
		NewLeads:               3,
		ConvertedLeads:         1,
		TotalCalls:             3,
		SuccessfulCalls:        1,
		AvgCallDurationSeconds: 62.3333,
	}}
	svc := New(repo)
	svc.now = fixedClock(now)

	resp, err := svc.Stats(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.statsSince.Equal(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected stats since midnight, got %v", repo.statsSince)
	}
	if resp.CallSuccessRate != 33.3 || resp.ConversionRate != 12.5 || resp.AvgCallDurationSeconds != 62.3 {
		t.Fatalf("unexpected rates %+v", resp)
	}
	if resp.TotalLeads != 8 || resp.NewLeads != 3 {
		t.Fatalf("unexpected counts %+v", resp)
	}
}

func TestStatsWithoutCallsHasZeroRates(t *testing.T) {
	resp, err := New(&fakeRepo{}).Stats(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.CallSuccessRate != 0 || resp.ConversionRate != 0 {
		t.Fatalf("expected zero rates, got %+v", resp)
	}
}
