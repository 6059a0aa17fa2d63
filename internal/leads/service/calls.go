package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"telemarketing_backend/internal/leads/repository"
	"telemarketing_backend/internal/leads/transport"
	"telemarketing_backend/platform/apperr"

	"github.com/google/uuid"
)

// Calls may be logged slightly ahead of the server clock.
const maxCallClockSkew = time.Minute

// LogCall records a call made by userID to one of the tenant's leads. A call
// that reached someone moves a new lead to contacted.
func (s *Service) LogCall(ctx context.Context, tenantID, userID, leadID uuid.UUID, req transport.CreateCallLogRequest) (transport.CallLogResponse, error) {
	now := s.now()
	callTime := now
	if req.CallTime != nil {
		callTime = *req.CallTime
	}
	if callTime.After(now.Add(maxCallClockSkew)) {
		return transport.CallLogResponse{}, apperr.Validation("call time is in the future")
	}

	params := repository.CreateCallLogParams{
		CompanyID:       tenantID,
		LeadID:          leadID,
		UserID:          userID,
		Outcome:         string(req.Outcome),
		CallTime:        callTime,
		DurationSeconds: req.DurationSeconds,
		MarkContacted:   req.Outcome.Reached(),
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		params.Notes = &notes
	}

	call, status, err := s.repo.CreateCallLog(ctx, params)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.CallLogResponse{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return transport.CallLogResponse{}, err
	}

	resp := toCallLogResponse(call)
	resp.LeadStatus = transport.LeadStatus(status)
	return resp, nil
}

// ListCalls returns the tenant's call history, or one lead's when leadID is set.
func (s *Service) ListCalls(ctx context.Context, tenantID uuid.UUID, leadID *uuid.UUID, req transport.ListCallLogsRequest) (transport.CallLogListResponse, error) {
	page, pageSize := normalizePaging(req.Page, req.PageSize)

	params := repository.CallLogListParams{
		CompanyID: tenantID,
		LeadID:    leadID,
		Limit:     pageSize,
		Offset:    (page - 1) * pageSize,
	}
	if req.Outcome != "" {
		outcome := string(req.Outcome)
		params.Outcome = &outcome
	}
	if req.Period != "" {
		since := periodStart(s.now(), req.Period)
		params.Since = &since
	}

	calls, total, err := s.repo.ListCallLogs(ctx, params)
	if err != nil {
		return transport.CallLogListResponse{}, err
	}

	items := make([]transport.CallLogResponse, len(calls))
	for i, call := range calls {
		items[i] = toCallLogResponse(call)
		items[i].Lead = &transport.CallLeadSummary{
			ContactName: call.LeadContactName,
			CompanyName: call.LeadCompanyName,
			Phone:       call.LeadPhone,
		}
	}

	return transport.CallLogListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// Stats returns the tenant's lead pipeline and call counters. Today starts at
// midnight server time.
func (s *Service) Stats(ctx context.Context, tenantID uuid.UUID) (transport.LeadStatsResponse, error) {
	stats, err := s.repo.Stats(ctx, tenantID, periodStart(s.now(), transport.CallPeriodToday))
	if err != nil {
		return transport.LeadStatsResponse{}, err
	}

	return transport.LeadStatsResponse{
		TotalLeads:             stats.TotalLeads,
		NewLeads:               stats.NewLeads,
		ContactedLeads:         stats.ContactedLeads,
		QualifiedLeads:         stats.QualifiedLeads,
		ConvertedLeads:         stats.ConvertedLeads,
		LostLeads:              stats.LostLeads,
		TotalCalls:             stats.TotalCalls,
		SuccessfulCalls:        stats.SuccessfulCalls,
		TodayCalls:             stats.TodayCalls,
		PendingCallbacks:       stats.PendingCallbacks,
		AvgCallDurationSeconds: math.Round(stats.AvgCallDurationSeconds*10) / 10,
		CallSuccessRate:        percent(stats.SuccessfulCalls, stats.TotalCalls),
		ConversionRate:         percent(stats.ConvertedLeads, stats.TotalLeads),
	}, nil
}

func periodStart(now time.Time, period transport.CallPeriod) time.Time {
	switch period {
	case transport.CallPeriodWeek:
		return now.AddDate(0, 0, -7)
	case transport.CallPeriodMonth:
		return now.AddDate(0, 0, -30)
	default:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	}
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}

func toCallLogResponse(call repository.CallLog) transport.CallLogResponse {
	return transport.CallLogResponse{
		ID:              call.ID,
		LeadID:          call.LeadID,
		UserID:          call.UserID,
		Outcome:         transport.CallOutcome(call.Outcome),
		CallTime:        call.CallTime,
		DurationSeconds: call.DurationSeconds,
		Notes:           call.Notes,
		CreatedAt:       call.CreatedAt,
	}
}
