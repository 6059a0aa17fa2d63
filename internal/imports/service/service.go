// Package service runs lead imports for the HTTP layer: upload to preview,
// then commit or clear, one pending preview per user.
package service

import (
	"bytes"
	"context"
	"errors"
	"io"
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
	"telemarketing_backend/platform/sanitize"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	busyLockTTL = 2 * time.Minute
	// archiveGrace keeps archives a little past preview expiry so a commit
	// racing the expiry still finds its file.
	archiveGrace = 5 * time.Minute

	defaultPageSize = 20
	maxPageSize     = 100

	msgInvalidFile   = "invalid file"
	msgNoData        = "no data found"
	msgBusy          = "import already in progress"
	msgNoPreview     = "no pending import preview"
	msgNothingToSave = "nothing to import"
	msgImportMissing = "import not found"
	msgNoArchive     = "no archived file for this import"
)

// Repository is the storage the service needs.
type Repository interface {
	ForImport(record repository.Import) ingest.LeadWriter
	Get(ctx context.Context, id, companyID uuid.UUID) (repository.Import, error)
	List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]repository.Import, error)
}

// Archive is the object storage for original uploads.
type Archive interface {
	UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)
	GenerateDownloadURL(ctx context.Context, bucket, fileKey string) (*storage.PresignedURL, error)
	DeleteObject(ctx context.Context, bucket, fileKey string) error
}

// Upload is one received spreadsheet.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Options configures a Service. Archive and Expiry are optional.
type Options struct {
	Engine      *ingest.Engine
	Repo        Repository
	Sessions    session.Store
	Archive     Archive
	Bucket      string
	Expiry      scheduler.ArchiveExpiryScheduler
	Bus         events.Bus
	PreviewTTL  time.Duration
	MaxFileSize int64
	Log         *logger.Logger
}

type Service struct {
	engine      *ingest.Engine
	repo        Repository
	sessions    session.Store
	archive     Archive
	bucket      string
	expiry      scheduler.ArchiveExpiryScheduler
	bus         events.Bus
	previewTTL  time.Duration
	maxFileSize int64
	log         *logger.Logger
	now         func() time.Time
}

func New(opts Options) *Service {
	return &Service{
		engine:      opts.Engine,
		repo:        opts.Repo,
		sessions:    opts.Sessions,
		archive:     opts.Archive,
		bucket:      opts.Bucket,
		expiry:      opts.Expiry,
		bus:         opts.Bus,
		previewTTL:  opts.PreviewTTL,
		maxFileSize: opts.MaxFileSize,
		log:         opts.Log,
		now:         time.Now,
	}
}

// Upload parses a spreadsheet into the caller's pending preview. Any earlier
// preview of the caller is discarded first, whether or not this one parses.
func (s *Service) Upload(ctx context.Context, actor session.Key, upload Upload) (transport.PreviewResponse, error) {
	if err := storage.ValidateFileSize(int64(len(upload.Data)), s.maxFileSize); err != nil {
		if len(upload.Data) == 0 {
			return transport.PreviewResponse{}, apperr.BadRequest(msgInvalidFile)
		}
		return transport.PreviewResponse{}, apperr.TooLarge(err.Error())
	}
	if upload.ContentType != "" {
		if err := storage.ValidateContentType(upload.ContentType); err != nil {
			return transport.PreviewResponse{}, apperr.BadRequest(err.Error())
		}
	}

	release, err := s.acquire(ctx, actor)
	if err != nil {
		return transport.PreviewResponse{}, err
	}
	defer release()

	if err := s.sessions.Delete(ctx, actor); err != nil {
		return transport.PreviewResponse{}, err
	}

	fileName := sanitize.FileName(upload.FileName)
	log := s.log.WithContext(ctx)

	result, err := s.engine.Parse(upload.Data, fileName)
	if err != nil {
		log.ImportEvent("rejected", fileName, "error", err)
		return transport.PreviewResponse{}, mapParseError(err)
	}

	preview := &session.Preview{
		ImportID:  uuid.New(),
		TenantID:  actor.TenantID,
		UserID:    actor.UserID,
		FileName:  fileName,
		Strategy:  result.Strategy,
		DataStart: result.DataStart,
		RowsRead:  result.RowsRead,
		Leads:     result.Leads,
		CreatedAt: s.now().UTC(),
	}
	preview.ArchiveKey = s.archiveUpload(ctx, preview, upload)

	if err := s.sessions.Save(ctx, preview, s.previewTTL); err != nil {
		return transport.PreviewResponse{}, err
	}

	log.ImportEvent("previewed", fileName,
		"import_id", preview.ImportID.String(),
		"strategy", result.Strategy,
		"data_start", result.DataStart,
		"leads", len(result.Leads),
	)
	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadImportPreviewed{
			BaseEvent: events.NewBaseEvent(),
			ImportID:  preview.ImportID,
			TenantID:  actor.TenantID,
			UserID:    actor.UserID,
			FileName:  fileName,
			Strategy:  result.Strategy,
			LeadCount: len(result.Leads),
		})
	}

	return s.toPreviewResponse(preview, false), nil
}

// Preview returns the caller's pending preview. full adds every lead, not just the head.
func (s *Service) Preview(ctx context.Context, actor session.Key, full bool) (transport.PreviewResponse, error) {
	preview, err := s.load(ctx, actor)
	if err != nil {
		return transport.PreviewResponse{}, err
	}
	return s.toPreviewResponse(preview, full), nil
}

// Commit writes every lead of the pending preview in one batch. On failure the
// preview is kept for a retry and the store's message is returned unchanged.
func (s *Service) Commit(ctx context.Context, actor session.Key) (transport.CommitResponse, error) {
	release, err := s.acquire(ctx, actor)
	if err != nil {
		return transport.CommitResponse{}, err
	}
	defer release()

	preview, err := s.load(ctx, actor)
	if err != nil {
		return transport.CommitResponse{}, err
	}

	record := repository.Import{
		ID:        preview.ImportID,
		CompanyID: actor.TenantID,
		UserID:    actor.UserID,
		FileName:  preview.FileName,
		Strategy:  preview.Strategy,
		DataStart: preview.DataStart,
	}
	if preview.ArchiveKey != "" {
		key := preview.ArchiveKey
		record.ArchiveKey = &key
	}

	log := s.log.WithContext(ctx)

	// A commit is not cancelled by the client going away.
	inserted, err := ingest.Commit(context.WithoutCancel(ctx), s.repo.ForImport(record), actor.TenantID, preview.Leads)
	if err != nil {
		if errors.Is(err, ingest.ErrEmptyBatch) {
			return transport.CommitResponse{}, apperr.Validation(msgNothingToSave)
		}
		log.ImportEvent("commit_failed", preview.FileName, "import_id", preview.ImportID.String(), "error", err)
		return transport.CommitResponse{}, apperr.Wrap(apperr.KindInternal, storeMessage(err), err)
	}

	if err := s.sessions.Delete(ctx, actor); err != nil {
		log.Warn("failed to clear committed preview", "error", err, "import_id", preview.ImportID.String())
	}

	log.ImportEvent("committed", preview.FileName, "import_id", preview.ImportID.String(), "inserted", inserted)
	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadsImported{
			BaseEvent:     events.NewBaseEvent(),
			ImportID:      preview.ImportID,
			TenantID:      actor.TenantID,
			UserID:        actor.UserID,
			FileName:      preview.FileName,
			InsertedCount: inserted,
		})
	}

	return transport.CommitResponse{ImportID: preview.ImportID, InsertedCount: inserted}, nil
}

// Clear discards the caller's pending preview and its archived upload.
func (s *Service) Clear(ctx context.Context, actor session.Key) error {
	preview, err := s.sessions.Load(ctx, actor)
	if errors.Is(err, session.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.sessions.Delete(ctx, actor); err != nil {
		return err
	}
	if preview.ArchiveKey != "" && s.archive != nil {
		if err := s.archive.DeleteObject(ctx, s.bucket, preview.ArchiveKey); err != nil {
			s.log.WithContext(ctx).Warn("failed to delete cleared archive", "error", err, "key", preview.ArchiveKey)
		}
	}
	s.log.WithContext(ctx).ImportEvent("cleared", preview.FileName, "import_id", preview.ImportID.String())
	return nil
}

// ListImports returns the committed imports of tenant, newest first.
func (s *Service) ListImports(ctx context.Context, tenant uuid.UUID, req transport.ListImportsRequest) (transport.ImportListResponse, error) {
	page, pageSize := normalizePaging(req.Page, req.PageSize)

	items, err := s.repo.List(ctx, tenant, pageSize, (page-1)*pageSize)
	if err != nil {
		return transport.ImportListResponse{}, err
	}

	out := make([]transport.ImportResponse, len(items))
	for i, item := range items {
		out[i] = toImportResponse(item)
	}
	return transport.ImportListResponse{Items: out, Page: page, PageSize: pageSize}, nil
}

// ArchiveURL returns a download link for the original file of a committed import.
func (s *Service) ArchiveURL(ctx context.Context, tenant, importID uuid.UUID) (transport.ArchiveURLResponse, error) {
	item, err := s.repo.Get(ctx, importID, tenant)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.ArchiveURLResponse{}, apperr.NotFound(msgImportMissing)
	}
	if err != nil {
		return transport.ArchiveURLResponse{}, err
	}
	if item.ArchiveKey == nil || s.archive == nil {
		return transport.ArchiveURLResponse{}, apperr.NotFound(msgNoArchive)
	}

	url, err := s.archive.GenerateDownloadURL(ctx, s.bucket, *item.ArchiveKey)
	if err != nil {
		return transport.ArchiveURLResponse{}, err
	}
	return transport.ArchiveURLResponse{URL: url.URL, ExpiresAt: url.ExpiresAt}, nil
}

func (s *Service) acquire(ctx context.Context, actor session.Key) (func(), error) {
	release, err := s.sessions.Acquire(ctx, actor, busyLockTTL)
	if errors.Is(err, session.ErrBusy) {
		return nil, apperr.Conflict(msgBusy)
	}
	if err != nil {
		return nil, err
	}
	return release, nil
}

func (s *Service) load(ctx context.Context, actor session.Key) (*session.Preview, error) {
	preview, err := s.sessions.Load(ctx, actor)
	if errors.Is(err, session.ErrNotFound) {
		return nil, apperr.NotFound(msgNoPreview)
	}
	return preview, err
}

// archiveUpload stores the original file and schedules its removal should the
// preview never be committed. Archiving is best effort; "" means not archived.
func (s *Service) archiveUpload(ctx context.Context, preview *session.Preview, upload Upload) string {
	if s.archive == nil {
		return ""
	}
	log := s.log.WithContext(ctx)

	folder := preview.TenantID.String() + "/" + preview.ImportID.String()
	key, err := s.archive.UploadFile(ctx, s.bucket, folder, preview.FileName, upload.ContentType,
		bytes.NewReader(upload.Data), int64(len(upload.Data)))
	if err != nil {
		log.Warn("failed to archive lead import upload", "error", err, "file", preview.FileName)
		return ""
	}

	if s.expiry != nil {
		payload := scheduler.ImportArchiveExpirePayload{
			ImportID:   preview.ImportID.String(),
			TenantID:   preview.TenantID.String(),
			Bucket:     s.bucket,
			ArchiveKey: key,
		}
		if err := s.expiry.ScheduleArchiveExpiry(ctx, payload, s.previewTTL+archiveGrace); err != nil {
			log.Warn("failed to schedule archive expiry", "error", err, "key", key)
		}
	}
	return key
}

func (s *Service) toPreviewResponse(preview *session.Preview, full bool) transport.PreviewResponse {
	resp := transport.PreviewResponse{
		ImportID:   preview.ImportID,
		FileName:   preview.FileName,
		Strategy:   preview.Strategy,
		DataStart:  preview.DataStart,
		RowsRead:   preview.RowsRead,
		TotalCount: len(preview.Leads),
		Preview:    toLeadRows(ingest.Head(preview.Leads, ingest.PreviewSize)),
		Archived:   preview.ArchiveKey != "",
		CreatedAt:  preview.CreatedAt,
		ExpiresAt:  preview.CreatedAt.Add(s.previewTTL),
	}
	if full {
		resp.Leads = toLeadRows(preview.Leads)
	}
	return resp
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, ingest.ErrNoData):
		return apperr.Wrap(apperr.KindValidation, msgNoData, err)
	default:
		return apperr.Wrap(apperr.KindBadRequest, msgInvalidFile, err)
	}
}

// storeMessage is the message the database gave, without driver decoration.
func storeMessage(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Message
	}
	return err.Error()
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

func toLeadRows(leads []ingest.CanonicalLead) []transport.LeadRow {
	rows := make([]transport.LeadRow, len(leads))
	for i, lead := range leads {
		rows[i] = transport.LeadRow{
			CompanyName: lead.CompanyName,
			Department:  lead.Department,
			Position:    lead.Position,
			ContactName: lead.ContactName,
			Phone:       lead.Phone,
			Email:       lead.Email,
			Address:     lead.Address,
			Notes:       lead.Notes,
		}
	}
	return rows
}

func toImportResponse(item repository.Import) transport.ImportResponse {
	return transport.ImportResponse{
		ID:            item.ID,
		UserID:        item.UserID,
		FileName:      item.FileName,
		Strategy:      item.Strategy,
		DataStart:     item.DataStart,
		InsertedCount: item.InsertedCount,
		Archived:      item.ArchiveKey != nil,
		CreatedAt:     item.CreatedAt,
	}
}
