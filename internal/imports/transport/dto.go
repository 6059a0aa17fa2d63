package transport

import (
	"time"

	"github.com/google/uuid"
)

// LeadRow is one canonical lead as shown in a preview table.
type LeadRow struct {
	CompanyName string `json:"companyName"`
	Department  string `json:"department"`
	Position    string `json:"position"`
	ContactName string `json:"contactName"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
}

// PreviewResponse describes the pending import of the caller.
type PreviewResponse struct {
	ImportID   uuid.UUID `json:"importId"`
	FileName   string    `json:"fileName"`
	Strategy   string    `json:"strategy"`
	DataStart  int       `json:"dataStart"`
	RowsRead   int       `json:"rowsRead"`
	TotalCount int       `json:"totalCount"`
	Preview    []LeadRow `json:"preview"`
	Leads      []LeadRow `json:"leads,omitempty"`
	Archived   bool      `json:"archived"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type PreviewQuery struct {
	Full bool `form:"full"`
}

type CommitResponse struct {
	ImportID      uuid.UUID `json:"importId"`
	InsertedCount int       `json:"insertedCount"`
}

type ListImportsRequest struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type ImportResponse struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"userId"`
	FileName      string    `json:"fileName"`
	Strategy      string    `json:"strategy"`
	DataStart     int       `json:"dataStart"`
	InsertedCount int       `json:"insertedCount"`
	Archived      bool      `json:"archived"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ImportListResponse struct {
	Items    []ImportResponse `json:"items"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

type ArchiveURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
