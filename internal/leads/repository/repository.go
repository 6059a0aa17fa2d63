package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID            uuid.UUID
	CompanyID     uuid.UUID
	ContactName   string
	Phone         string
	Email         *string
	CompanyName   *string
	Status        string
	PriorityLevel int
	Notes         *string
	ImportID      *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ListParams filters a tenant's leads. CompanyID is mandatory.
type ListParams struct {
	CompanyID uuid.UUID
	Status    *string
	ImportID  *uuid.UUID
	// Search matches name, company, email and raw phone text.
	Search string
	// PhoneDigits additionally matches the phone with separators removed.
	PhoneDigits string
	Limit       int
	Offset      int
}

const leadColumns = `l.id, l.company_id, l.contact_name, l.phone, l.email, l.company_name,
	l.status, l.priority_level, l.notes, l.import_id, l.created_at, l.updated_at`

func (r *Repository) GetByID(ctx context.Context, id, companyID uuid.UUID) (Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads l WHERE l.id = $1 AND l.company_id = $2`
	lead, err := scanLead(r.pool.QueryRow(ctx, query, id, companyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	whereClause, args, argIdx := buildLeadListWhere(params)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM leads l WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM leads l
		WHERE %s
		ORDER BY l.created_at DESC, l.id
		LIMIT $%d OFFSET $%d
	`, leadColumns, whereClause, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return leads, total, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id, companyID uuid.UUID, status string) (Lead, error) {
	query := `UPDATE leads l SET status = $3, updated_at = now()
		WHERE l.id = $1 AND l.company_id = $2
		RETURNING ` + leadColumns
	lead, err := scanLead(r.pool.QueryRow(ctx, query, id, companyID, status))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func buildLeadListWhere(params ListParams) (string, []interface{}, int) {
	// Company ID is always the first filter (mandatory for tenant isolation)
	whereClauses := []string{"l.company_id = $1"}
	args := []interface{}{params.CompanyID}
	argIdx := 2

	if params.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.ImportID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.import_id = $%d", argIdx))
		args = append(args, *params.ImportID)
		argIdx++
	}
	if params.Search != "" {
		searchClause := fmt.Sprintf(
			"l.contact_name ILIKE $%d OR l.company_name ILIKE $%d OR l.email ILIKE $%d OR l.phone ILIKE $%d",
			argIdx, argIdx, argIdx, argIdx,
		)
		args = append(args, "%"+params.Search+"%")
		argIdx++
		if params.PhoneDigits != "" {
			searchClause += fmt.Sprintf(" OR regexp_replace(l.phone, '[^0-9]', '', 'g') LIKE $%d", argIdx)
			args = append(args, "%"+params.PhoneDigits+"%")
			argIdx++
		}
		whereClauses = append(whereClauses, "("+searchClause+")")
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.CompanyID, &lead.ContactName, &lead.Phone, &lead.Email, &lead.CompanyName,
		&lead.Status, &lead.PriorityLevel, &lead.Notes, &lead.ImportID, &lead.CreatedAt, &lead.UpdatedAt,
	)
	return lead, err
}
