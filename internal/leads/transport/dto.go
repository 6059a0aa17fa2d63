package transport

import (
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

// Request DTOs
type ListLeadsRequest struct {
	Status   LeadStatus `form:"status" validate:"omitempty,oneof=new contacted qualified converted lost"`
	Search   string     `form:"search" validate:"omitempty,max=100"`
	ImportID string     `form:"importId" validate:"omitempty,uuid"`
	Page     int        `form:"page" validate:"omitempty,min=1"`
	PageSize int        `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type UpdateLeadStatusRequest struct {
	Status LeadStatus `json:"status" validate:"required,oneof=new contacted qualified converted lost"`
}

// Response DTOs
type LeadResponse struct {
	ID            uuid.UUID  `json:"id"`
	ContactName   string     `json:"contactName"`
	Phone         string     `json:"phone"`
	PhoneE164     string     `json:"phoneE164,omitempty"`
	Email         *string    `json:"email,omitempty"`
	CompanyName   *string    `json:"companyName,omitempty"`
	Status        LeadStatus `json:"status"`
	PriorityLevel int        `json:"priorityLevel"`
	Notes         *string    `json:"notes,omitempty"`
	ImportID      *uuid.UUID `json:"importId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type CallOutcome string

const (
	CallOutcomeSuccess       CallOutcome = "success"
	CallOutcomeNoAnswer      CallOutcome = "no_answer"
	CallOutcomeBusy          CallOutcome = "busy"
	CallOutcomeCallback      CallOutcome = "callback"
	CallOutcomeNotInterested CallOutcome = "not_interested"
	CallOutcomeWrongNumber   CallOutcome = "wrong_number"
)

// Reached reports whether the outcome means someone answered the call.
func (o CallOutcome) Reached() bool {
	switch o {
	case CallOutcomeSuccess, CallOutcomeCallback, CallOutcomeNotInterested:
		return true
	}
	return false
}

type CallPeriod string

const (
	CallPeriodToday CallPeriod = "today"
	CallPeriodWeek  CallPeriod = "week"
	CallPeriodMonth CallPeriod = "month"
)

type CreateCallLogRequest struct {
	Outcome         CallOutcome `json:"outcome" validate:"required,oneof=success no_answer busy callback not_interested wrong_number"`
	CallTime        *time.Time  `json:"callTime"`
	DurationSeconds int         `json:"durationSeconds" validate:"min=0,max=86400"`
	Notes           string      `json:"notes" validate:"omitempty,max=2000"`
}

type ListCallLogsRequest struct {
	Period   CallPeriod  `form:"period" validate:"omitempty,oneof=today week month"`
	Outcome  CallOutcome `form:"outcome" validate:"omitempty,oneof=success no_answer busy callback not_interested wrong_number"`
	Page     int         `form:"page" validate:"omitempty,min=1"`
	PageSize int         `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type CallLeadSummary struct {
	ContactName string  `json:"contactName"`
	CompanyName *string `json:"companyName,omitempty"`
	Phone       string  `json:"phone"`
}

type CallLogResponse struct {
	ID              uuid.UUID        `json:"id"`
	LeadID          uuid.UUID        `json:"leadId"`
	UserID          uuid.UUID        `json:"userId"`
	Outcome         CallOutcome      `json:"outcome"`
	CallTime        time.Time        `json:"callTime"`
	DurationSeconds int              `json:"durationSeconds"`
	Notes           *string          `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	Lead            *CallLeadSummary `json:"lead,omitempty"`
	LeadStatus      LeadStatus       `json:"leadStatus,omitempty"`
}

type CallLogListResponse struct {
	Items      []CallLogResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

type LeadStatsResponse struct {
	TotalLeads     int `json:"totalLeads"`
	NewLeads       int `json:"newLeads"`
	ContactedLeads int `json:"contactedLeads"`
	QualifiedLeads int `json:"qualifiedLeads"`
	ConvertedLeads int `json:"convertedLeads"`
	LostLeads      int `json:"lostLeads"`

	TotalCalls             int     `json:"totalCalls"`
	SuccessfulCalls        int     `json:"successfulCalls"`
	TodayCalls             int     `json:"todayCalls"`
	PendingCallbacks       int     `json:"pendingCallbacks"`
	AvgCallDurationSeconds float64 `json:"avgCallDurationSeconds"`
	// Percentages rounded to one decimal.
	CallSuccessRate float64 `json:"callSuccessRate"`
	ConversionRate  float64 `json:"conversionRate"`
}
