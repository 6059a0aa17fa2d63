package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"telemarketing_backend/internal/adapters/storage"
	"telemarketing_backend/internal/events"
	"telemarketing_backend/internal/imports/ingest"
	"telemarketing_backend/internal/imports/repository"
	"telemarketing_backend/internal/imports/session"
	"telemarketing_backend/internal/imports/transport"
	"telemarketing_backend/internal/scheduler"
	"telemarketing_backend/platform/apperr"
	"telemarketing_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const leadsCSV = "회사명,담당자명,연락처,부서\nAcme,김민수,010-1234-5678,영업부\nBeta,이영희,02-555-1234,\n"

type fakeRepo struct {
	mu       sync.Mutex
	writeErr error
	writes   int
	records  []repository.Import
	leads    []ingest.PersistableLead
}

type fakeWriter struct {
	repo   *fakeRepo
	record repository.Import
}

func (w fakeWriter) WriteLeads(_ context.Context, leads []ingest.PersistableLead) (int, error) {
	w.repo.mu.Lock()
	defer w.repo.mu.Unlock()
	w.repo.writes++
	if w.repo.writeErr != nil {
		return 0, w.repo.writeErr
	}
	w.record.InsertedCount = len(leads)
	w.repo.records = append(w.repo.records, w.record)
	w.repo.leads = append(w.repo.leads, leads...)
	return len(leads), nil
}

func (r *fakeRepo) ForImport(record repository.Import) ingest.LeadWriter {
	return fakeWriter{repo: r, record: record}
}

func (r *fakeRepo) Get(_ context.Context, id, companyID uuid.UUID) (repository.Import, error) {
	for _, rec := range r.records {
		if rec.ID == id && rec.CompanyID == companyID {
			return rec, nil
		}
	}
	return repository.Import{}, repository.ErrNotFound
}

func (r *fakeRepo) List(_ context.Context, companyID uuid.UUID, limit, offset int) ([]repository.Import, error) {
	out := make([]repository.Import, 0)
	for _, rec := range r.records {
		if rec.CompanyID == companyID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeArchive struct {
	uploaded []string
	deleted  []string
	failPut  bool
}

func (a *fakeArchive) UploadFile(_ context.Context, bucket, folder, fileName, _ string, _ io.Reader, _ int64) (string, error) {
	if a.failPut {
		return "", errors.New("minio down")
	}
	key := folder + "/" + fileName
	a.uploaded = append(a.uploaded, key)
	return key, nil
}

func (a *fakeArchive) GenerateDownloadURL(_ context.Context, bucket, fileKey string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "https://files/" + bucket + "/" + fileKey, FileKey: fileKey}, nil
}

func (a *fakeArchive) DeleteObject(_ context.Context, bucket, fileKey string) error {
	a.deleted = append(a.deleted, fileKey)
	return nil
}

type fakeExpiry struct {
	scheduled []scheduler.ImportArchiveExpirePayload
	after     time.Duration
}

func (f *fakeExpiry) ScheduleArchiveExpiry(_ context.Context, payload scheduler.ImportArchiveExpirePayload, after time.Duration) error {
	f.scheduled = append(f.scheduled, payload)
	f.after = after
	return nil
}

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	store    *session.MemoryStore
	archive  *fakeArchive
	expiry   *fakeExpiry
	bus      *events.InMemoryBus
	actor    session.Key
	imported chan events.LeadsImported
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:     &fakeRepo{},
		store:    session.NewMemoryStore(),
		archive:  &fakeArchive{},
		expiry:   &fakeExpiry{},
		bus:      events.NewInMemoryBus(logger.Discard()),
		actor:    session.Key{TenantID: uuid.New(), UserID: uuid.New()},
		imported: make(chan events.LeadsImported, 1),
	}
	events.OnLeadsImported(f.bus, func(_ context.Context, e events.LeadsImported) error {
		f.imported <- e
		return nil
	})
	f.svc = New(Options{
		Engine:      ingest.NewEngine(nil),
		Repo:        f.repo,
		Sessions:    f.store,
		Archive:     f.archive,
		Bucket:      "lead-imports",
		Expiry:      f.expiry,
		Bus:         f.bus,
		PreviewTTL:  30 * time.Minute,
		MaxFileSize: 1 << 20,
		Log:         logger.Discard(),
	})
	return f
}

func (f *fixture) upload(t *testing.T, body string) transport.PreviewResponse {
	t.Helper()
	resp, err := f.svc.Upload(context.Background(), f.actor, Upload{FileName: "leads.csv", ContentType: "text/csv", Data: []byte(body)})
	require.NoError(t, err)
	return resp
}

func TestUploadBuildsPreviewAndArchives(t *testing.T) {
	f := newFixture(t)

	resp := f.upload(t, leadsCSV)

	assert.Equal(t, 2, resp.TotalCount)
	assert.Len(t, resp.Preview, 2)
	assert.Empty(t, resp.Leads)
	assert.Equal(t, "header", resp.Strategy)
	assert.True(t, resp.Archived)
	require.Len(t, f.archive.uploaded, 1)
	require.Len(t, f.expiry.scheduled, 1)
	assert.Equal(t, resp.ImportID.String(), f.expiry.scheduled[0].ImportID)
	assert.Equal(t, 35*time.Minute, f.expiry.after)
}

func TestUploadKeepsFullSetBeyondPreviewHead(t *testing.T) {
	f := newFixture(t)
	body := "업체명,전화번호\n"
	for i := 0; i < 25; i++ {
		body += "Acme,010-1234-5678\n"
	}

	resp := f.upload(t, body)
	assert.Equal(t, 25, resp.TotalCount)
	assert.Len(t, resp.Preview, ingest.PreviewSize)

	full, err := f.svc.Preview(context.Background(), f.actor, true)
	require.NoError(t, err)
	assert.Len(t, full.Leads, 25)

	committed, err := f.svc.Commit(context.Background(), f.actor)
	require.NoError(t, err)
	assert.Equal(t, 25, committed.InsertedCount)
}

func TestUploadErrorsAreDistinct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, f.actor, Upload{FileName: "leads.xlsx", Data: []byte("garbage")})
	assert.Equal(t, apperr.KindBadRequest, apperr.GetKind(err))
	assert.EqualError(t, err, msgInvalidFile)

	_, err = f.svc.Upload(ctx, f.actor, Upload{FileName: "leads.csv", Data: []byte("고객 명단\n\n,\n")})
	assert.Equal(t, apperr.KindValidation, apperr.GetKind(err))
	assert.EqualError(t, err, msgNoData)

	_, err = f.svc.Upload(ctx, f.actor, Upload{FileName: "leads.csv", Data: make([]byte, 2<<20)})
	assert.Equal(t, apperr.KindTooLarge, apperr.GetKind(err))

	_, err = f.svc.Upload(ctx, f.actor, Upload{FileName: "cat.png", ContentType: "image/png", Data: []byte("x")})
	assert.Equal(t, apperr.KindBadRequest, apperr.GetKind(err))
}

func TestNewUploadDiscardsPreviousPreview(t *testing.T) {
	f := newFixture(t)
	f.upload(t, leadsCSV)

	_, err := f.svc.Upload(context.Background(), f.actor, Upload{FileName: "leads.xlsx", Data: []byte("garbage")})
	require.Error(t, err)

	_, err = f.svc.Preview(context.Background(), f.actor, false)
	assert.Equal(t, apperr.KindNotFound, apperr.GetKind(err))
}

func TestCommitWritesBatchClearsPreviewAndPublishes(t *testing.T) {
	f := newFixture(t)
	preview := f.upload(t, leadsCSV)

	resp, err := f.svc.Commit(context.Background(), f.actor)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.InsertedCount)
	assert.Equal(t, preview.ImportID, resp.ImportID)

	require.Len(t, f.repo.leads, 2)
	first := f.repo.leads[0]
	assert.Equal(t, f.actor.TenantID, first.CompanyID)
	require.NotNil(t, first.Notes)
	assert.Equal(t, "부서: 영업부", *first.Notes)
	require.Len(t, f.repo.records, 1)
	assert.NotNil(t, f.repo.records[0].ArchiveKey)

	_, err = f.svc.Preview(context.Background(), f.actor, false)
	assert.Equal(t, apperr.KindNotFound, apperr.GetKind(err))

	select {
	case e := <-f.imported:
		assert.Equal(t, 2, e.InsertedCount)
		assert.Equal(t, f.actor.TenantID, e.TenantID)
	case <-time.After(time.Second):
		t.Fatal("expected LeadsImported event")
	}
}

func TestCommitFailureKeepsPreviewAndSurfacesStoreMessage(t *testing.T) {
	f := newFixture(t)
	f.upload(t, leadsCSV)
	f.repo.writeErr = &pgconn.PgError{Code: "23514", Message: `new row for relation "leads" violates check constraint "leads_status_check"`}

	_, err := f.svc.Commit(context.Background(), f.actor)
	require.Error(t, err)
	assert.EqualError(t, err, `new row for relation "leads" violates check constraint "leads_status_check"`)
	assert.Equal(t, apperr.KindInternal, apperr.GetKind(err))

	_, err = f.svc.Preview(context.Background(), f.actor, false)
	require.NoError(t, err, "preview must survive a failed commit")

	f.repo.writeErr = nil
	resp, err := f.svc.Commit(context.Background(), f.actor)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.InsertedCount)
	assert.Equal(t, 2, f.repo.writes)
}

func TestCommitWithoutPreview(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Commit(context.Background(), f.actor)

	assert.Equal(t, apperr.KindNotFound, apperr.GetKind(err))
	assert.Zero(t, f.repo.writes)
}

func TestCommitRejectedWhileBusy(t *testing.T) {
	f := newFixture(t)
	f.upload(t, leadsCSV)

	release, err := f.store.Acquire(context.Background(), f.actor, time.Minute)
	require.NoError(t, err)
	defer release()

	_, err = f.svc.Commit(context.Background(), f.actor)
	assert.Equal(t, apperr.KindConflict, apperr.GetKind(err))
	assert.Zero(t, f.repo.writes)
}

func TestCommitOfEmptyPreviewNeverReachesStore(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Save(context.Background(), &session.Preview{
		ImportID: uuid.New(),
		TenantID: f.actor.TenantID,
		UserID:   f.actor.UserID,
	}, time.Minute))

	_, err := f.svc.Commit(context.Background(), f.actor)

	assert.Equal(t, apperr.KindValidation, apperr.GetKind(err))
	assert.Zero(t, f.repo.writes)
}

func TestClearRemovesPreviewAndArchive(t *testing.T) {
	f := newFixture(t)
	f.upload(t, leadsCSV)

	require.NoError(t, f.svc.Clear(context.Background(), f.actor))
	require.NoError(t, f.svc.Clear(context.Background(), f.actor), "clearing twice is fine")

	_, err := f.svc.Preview(context.Background(), f.actor, false)
	assert.Equal(t, apperr.KindNotFound, apperr.GetKind(err))
	assert.Equal(t, f.archive.uploaded, f.archive.deleted)
}

func TestUploadSurvivesArchiveFailure(t *testing.T) {
	f := newFixture(t)
	f.archive.failPut = true

	resp := f.upload(t, leadsCSV)

	assert.False(t, resp.Archived)
	assert.Empty(t, f.expiry.scheduled)
}

func TestArchiveURLForCommittedImport(t *testing.T) {
	f := newFixture(t)
	f.upload(t, leadsCSV)
	committed, err := f.svc.Commit(context.Background(), f.actor)
	require.NoError(t, err)

	url, err := f.svc.ArchiveURL(context.Background(), f.actor.TenantID, committed.ImportID)
	require.NoError(t, err)
	assert.Contains(t, url.URL, committed.ImportID.String())

	_, err = f.svc.ArchiveURL(context.Background(), uuid.New(), committed.ImportID)
	assert.Equal(t, apperr.KindNotFound, apperr.GetKind(err), "imports are tenant scoped")
}

func TestListImportsPaging(t *testing.T) {
	f := newFixture(t)
	f.upload(t, leadsCSV)
	_, err := f.svc.Commit(context.Background(), f.actor)
	require.NoError(t, err)

	list, err := f.svc.ListImports(context.Background(), f.actor.TenantID, transport.ListImportsRequest{PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, maxPageSize, list.PageSize)
}
