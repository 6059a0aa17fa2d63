package repository

import (
	"context"
	"errors"
	"time"

	"telemarketing_backend/internal/imports/ingest"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead import not found")

const insertImportQuery = `
	INSERT INTO lead_imports (
		id, company_id, user_id, file_name, strategy, data_start, inserted_count, archive_key
	) VALUES ($1, $2, $3, $4, $5, $6, 0, $7)
`

const insertLeadQuery = `
	INSERT INTO leads (
		company_id, contact_name, phone, email, company_name, status, priority_level, notes, import_id
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id
`

const finishImportQuery = `
	UPDATE lead_imports SET inserted_count = $2 WHERE id = $1
`

const getImportQuery = `
	SELECT id, company_id, user_id, file_name, strategy, data_start, inserted_count, archive_key, created_at
	FROM lead_imports
	WHERE id = $1 AND company_id = $2
`

const listImportsQuery = `
	SELECT id, company_id, user_id, file_name, strategy, data_start, inserted_count, archive_key, created_at
	FROM lead_imports
	WHERE company_id = $1
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3
`

const importExistsQuery = `SELECT EXISTS (SELECT 1 FROM lead_imports WHERE id = $1)`

// Import is the audit row written with every committed batch.
type Import struct {
	ID            uuid.UUID
	CompanyID     uuid.UUID
	UserID        uuid.UUID
	FileName      string
	Strategy      string
	DataStart     int
	InsertedCount int
	ArchiveKey    *string
	CreatedAt     time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ForImport returns a writer that stores a batch of leads together with the
// audit row for record, in one transaction.
func (r *Repository) ForImport(record Import) ingest.LeadWriter {
	return &importWriter{pool: r.pool, record: record}
}

type importWriter struct {
	pool   *pgxpool.Pool
	record Import
}

// WriteLeads inserts every lead or none. The count is the number of rows the
// database returned.
func (w *importWriter) WriteLeads(ctx context.Context, leads []ingest.PersistableLead) (int, error) {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rec := w.record
	if _, err := tx.Exec(ctx, insertImportQuery,
		rec.ID, rec.CompanyID, rec.UserID, rec.FileName, rec.Strategy, rec.DataStart, rec.ArchiveKey,
	); err != nil {
		return 0, err
	}

	batch := &pgx.Batch{}
	for _, lead := range leads {
		batch.Queue(insertLeadQuery,
			lead.CompanyID, lead.ContactName, lead.Phone, lead.Email, lead.CompanyName,
			lead.Status, lead.PriorityLevel, lead.Notes, rec.ID,
		)
	}

	inserted, err := drainInsertBatch(tx.SendBatch(ctx, batch), len(leads))
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, finishImportQuery, rec.ID, inserted); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return inserted, nil
}

func drainInsertBatch(results pgx.BatchResults, n int) (int, error) {
	inserted := 0
	for i := 0; i < n; i++ {
		var id uuid.UUID
		if err := results.QueryRow().Scan(&id); err != nil {
			_ = results.Close()
			return 0, err
		}
		inserted++
	}
	if err := results.Close(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// Get returns one import of company.
func (r *Repository) Get(ctx context.Context, id, companyID uuid.UUID) (Import, error) {
	item, err := scanImport(r.pool.QueryRow(ctx, getImportQuery, id, companyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Import{}, ErrNotFound
	}
	return item, err
}

// List returns the newest imports of company first.
func (r *Repository) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]Import, error) {
	rows, err := r.pool.Query(ctx, listImportsQuery, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Import, 0)
	for rows.Next() {
		item, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// Exists reports whether an import with id was committed, for any company.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, importExistsQuery, id).Scan(&exists)
	return exists, err
}

func scanImport(row pgx.Row) (Import, error) {
	var item Import
	err := row.Scan(
		&item.ID, &item.CompanyID, &item.UserID, &item.FileName, &item.Strategy,
		&item.DataStart, &item.InsertedCount, &item.ArchiveKey, &item.CreatedAt,
	)
	return item, err
}
