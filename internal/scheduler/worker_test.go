package scheduler

import (
	"context"
	"errors"
	"testing"

	"telemarketing_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type fakeImports struct {
	committed map[uuid.UUID]bool
	err       error
}

func (f fakeImports) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return f.committed[id], f.err
}

type fakeArchives struct {
	deleted []string
}

func (f *fakeArchives) DeleteObject(_ context.Context, bucket, key string) error {
	f.deleted = append(f.deleted, bucket+"/"+key)
	return nil
}

func expireTask(t *testing.T, importID uuid.UUID) *asynq.Task {
	t.Helper()
	task, err := NewImportArchiveExpireTask(ImportArchiveExpirePayload{
		ImportID:   importID.String(),
		TenantID:   uuid.NewString(),
		Bucket:     "lead-imports",
		ArchiveKey: "tenant/import/leads_abcd.xlsx",
	})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	return task
}

func TestArchiveExpiryDeletesUncommittedUpload(t *testing.T) {
	archives := &fakeArchives{}
	w := newWorker(fakeImports{}, archives, logger.Discard())

	if err := w.handleImportArchiveExpire(context.Background(), expireTask(t, uuid.New())); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(archives.deleted) != 1 || archives.deleted[0] != "lead-imports/tenant/import/leads_abcd.xlsx" {
		t.Fatalf("unexpected deletions %v", archives.deleted)
	}
}

func TestArchiveExpiryKeepsCommittedUpload(t *testing.T) {
	id := uuid.New()
	archives := &fakeArchives{}
	w := newWorker(fakeImports{committed: map[uuid.UUID]bool{id: true}}, archives, logger.Discard())

	if err := w.handleImportArchiveExpire(context.Background(), expireTask(t, id)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(archives.deleted) != 0 {
		t.Fatalf("committed archive must be kept, deleted %v", archives.deleted)
	}
}

func TestArchiveExpiryRetriesLookupFailure(t *testing.T) {
	lookupErr := errors.New("connection refused")
	w := newWorker(fakeImports{err: lookupErr}, &fakeArchives{}, logger.Discard())

	err := w.handleImportArchiveExpire(context.Background(), expireTask(t, uuid.New()))
	if !errors.Is(err, lookupErr) {
		t.Fatalf("expected lookup error to be returned for retry, got %v", err)
	}
}

func TestArchiveExpirySkipsMalformedPayload(t *testing.T) {
	w := newWorker(fakeImports{}, &fakeArchives{}, logger.Discard())

	err := w.handleImportArchiveExpire(context.Background(), asynq.NewTask(TaskImportArchiveExpire, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}
