// Package events holds the lead import domain events and typed subscriptions
// on top of platform/events.
package events

import (
	"telemarketing_backend/platform/events"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

var NewBaseEvent = events.NewBaseEvent

// LeadsImported is published after a confirmed import batch was written.
type LeadsImported struct {
	BaseEvent
	ImportID      uuid.UUID `json:"importId"`
	TenantID      uuid.UUID `json:"tenantId"`
	UserID        uuid.UUID `json:"userId"`
	FileName      string    `json:"fileName"`
	InsertedCount int       `json:"insertedCount"`
}

func (e LeadsImported) EventName() string { return "imports.leads.imported" }

// LeadImportPreviewed is published when an upload produced a preview.
type LeadImportPreviewed struct {
	BaseEvent
	ImportID  uuid.UUID `json:"importId"`
	TenantID  uuid.UUID `json:"tenantId"`
	UserID    uuid.UUID `json:"userId"`
	FileName  string    `json:"fileName"`
	Strategy  string    `json:"strategy"`
	LeadCount int       `json:"leadCount"`
}

func (e LeadImportPreviewed) EventName() string { return "imports.leads.previewed" }
