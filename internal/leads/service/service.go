// Package service holds the lead list, status, call log and stats use cases.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"telemarketing_backend/internal/leads/repository"
	"telemarketing_backend/internal/leads/transport"
	"telemarketing_backend/platform/apperr"
	"telemarketing_backend/platform/phone"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	// Shorter digit runs match too much to be worth a second search term.
	minPhoneDigits = 4
)

// Repository is the lead storage the service needs.
type Repository interface {
	GetByID(ctx context.Context, id, companyID uuid.UUID) (repository.Lead, error)
	List(ctx context.Context, params repository.ListParams) ([]repository.Lead, int, error)
	UpdateStatus(ctx context.Context, id, companyID uuid.UUID, status string) (repository.Lead, error)
	CreateCallLog(ctx context.Context, params repository.CreateCallLogParams) (repository.CallLog, string, error)
	ListCallLogs(ctx context.Context, params repository.CallLogListParams) ([]repository.CallLog, int, error)
	Stats(ctx context.Context, companyID uuid.UUID, since time.Time) (repository.Stats, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func New(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns one page of the tenant's leads, newest first.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	page, pageSize := normalizePaging(req.Page, req.PageSize)

	params := repository.ListParams{
		CompanyID: tenantID,
		Search:    strings.TrimSpace(req.Search),
		Limit:     pageSize,
		Offset:    (page - 1) * pageSize,
	}
	if req.Status != "" {
		status := string(req.Status)
		params.Status = &status
	}
	if req.ImportID != "" {
		importID, err := uuid.Parse(req.ImportID)
		if err != nil {
			return transport.LeadListResponse{}, apperr.BadRequest("invalid import id")
		}
		params.ImportID = &importID
	}
	if digits := searchDigits(params.Search); len(digits) >= minPhoneDigits {
		params.PhoneDigits = digits
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		items[i] = toLeadResponse(lead)
	}

	totalPages := (total + pageSize - 1) / pageSize
	return transport.LeadListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id, tenantID)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.LeadResponse{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return toLeadResponse(lead), nil
}

func (s *Service) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, req transport.UpdateLeadStatusRequest) (transport.LeadResponse, error) {
	lead, err := s.repo.UpdateStatus(ctx, id, tenantID, string(req.Status))
	if errors.Is(err, repository.ErrNotFound) {
		return transport.LeadResponse{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return toLeadResponse(lead), nil
}

// searchDigits returns the digits of a search term that looks like a phone
// number, so "010 1234 5678" finds a lead stored as "010-1234-5678".
// "+82 10-1234-5678" is brought back to its national form first.
func searchDigits(search string) string {
	if search == "" {
		return ""
	}
	for _, r := range search {
		if !strings.ContainsRune("0123456789+-() .", r) {
			return ""
		}
	}
	if national := phone.NationalDigits(search); national != "" {
		return national
	}
	return phone.Digits(search)
}

func normalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func toLeadResponse(lead repository.Lead) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:            lead.ID,
		ContactName:   lead.ContactName,
		Phone:         lead.Phone,
		Email:         lead.Email,
		CompanyName:   lead.CompanyName,
		Status:        transport.LeadStatus(lead.Status),
		PriorityLevel: lead.PriorityLevel,
		Notes:         lead.Notes,
		ImportID:      lead.ImportID,
		CreatedAt:     lead.CreatedAt,
		UpdatedAt:     lead.UpdatedAt,
	}
	if lead.Phone != "" {
		if e164 := phone.NormalizeE164(lead.Phone); strings.HasPrefix(e164, "+") {
			resp.PhoneE164 = e164
		}
	}
	return resp
}
