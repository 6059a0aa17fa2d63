// Package session keeps the one pending import preview per user and the busy
// lock that stops two uploads or commits from overlapping.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"telemarketing_backend/internal/imports/ingest"

	"github.com/google/uuid"
)

var (
	// ErrNotFound means the user has no pending preview.
	ErrNotFound = errors.New("no pending import preview")
	// ErrBusy means an upload or commit is already running for the user.
	ErrBusy = errors.New("import already in progress")
)

// Key scopes a preview to one user acting for one company.
type Key struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.TenantID, k.UserID)
}

// Preview is a parsed upload awaiting confirmation.
type Preview struct {
	ImportID   uuid.UUID              `json:"importId"`
	TenantID   uuid.UUID              `json:"tenantId"`
	UserID     uuid.UUID              `json:"userId"`
	FileName   string                 `json:"fileName"`
	Strategy   string                 `json:"strategy"`
	DataStart  int                    `json:"dataStart"`
	RowsRead   int                    `json:"rowsRead"`
	ArchiveKey string                 `json:"archiveKey,omitempty"`
	Leads      []ingest.CanonicalLead `json:"leads"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// Key returns the scope the preview is stored under.
func (p *Preview) Key() Key {
	return Key{TenantID: p.TenantID, UserID: p.UserID}
}

// Store persists previews and hands out busy locks.
type Store interface {
	// Save replaces any earlier preview under the same key.
	Save(ctx context.Context, preview *Preview, ttl time.Duration) error
	// Load returns ErrNotFound when nothing is pending or it expired.
	Load(ctx context.Context, key Key) (*Preview, error)
	Delete(ctx context.Context, key Key) error
	// Acquire takes the busy lock or returns ErrBusy. The returned release
	// func frees only the lock it acquired.
	Acquire(ctx context.Context, key Key, ttl time.Duration) (release func(), err error)
}
