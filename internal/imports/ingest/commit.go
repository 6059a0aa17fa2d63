package ingest

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

const (
	// StatusNew is the pipeline state every imported lead starts in.
	StatusNew = "new"
	// DefaultPriority is the mid-range priority given to imported leads.
	DefaultPriority = 5
)

// PersistableLead is a CanonicalLead in storage shape.
type PersistableLead struct {
	CompanyID     uuid.UUID
	ContactName   string
	Phone         string
	Email         *string
	CompanyName   *string
	Status        string
	PriorityLevel int
	Notes         *string
}

// Project converts lead for storage under tenant. Department, position and
// address are folded into the notes as labeled lines ahead of the raw notes.
func Project(lead CanonicalLead, tenant uuid.UUID) PersistableLead {
	return PersistableLead{
		CompanyID:     tenant,
		ContactName:   firstNonEmpty(lead.ContactName, UnconfirmedContact),
		Phone:         lead.Phone,
		Email:         nullable(lead.Email),
		CompanyName:   nullable(lead.CompanyName),
		Status:        StatusNew,
		PriorityLevel: DefaultPriority,
		Notes:         nullable(strings.TrimSpace(synthesizeNotes(lead))),
	}
}

func synthesizeNotes(lead CanonicalLead) string {
	var b strings.Builder
	if lead.Department != "" {
		b.WriteString("부서: " + lead.Department + "\n")
	}
	if lead.Position != "" {
		b.WriteString("직급: " + lead.Position + "\n")
	}
	if lead.Address != "" {
		b.WriteString("주소: " + lead.Address + "\n")
	}
	b.WriteString(lead.Notes)
	return b.String()
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// LeadWriter stores a batch of leads in one all-or-nothing write and returns
// how many were written.
type LeadWriter interface {
	WriteLeads(ctx context.Context, leads []PersistableLead) (int, error)
}

// Commit projects leads under tenant and hands them to w as a single batch.
// An empty batch is rejected with ErrEmptyBatch before w is called.
func Commit(ctx context.Context, w LeadWriter, tenant uuid.UUID, leads []CanonicalLead) (int, error) {
	if len(leads) == 0 {
		return 0, ErrEmptyBatch
	}

	batch := make([]PersistableLead, len(leads))
	for i, lead := range leads {
		batch[i] = Project(lead, tenant)
	}
	return w.WriteLeads(ctx, batch)
}
