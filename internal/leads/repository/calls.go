package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const statusContacted = "contacted"

// CallLog is one recorded call. The Lead* fields are filled by listings only.
type CallLog struct {
	ID              uuid.UUID
	CompanyID       uuid.UUID
	LeadID          uuid.UUID
	UserID          uuid.UUID
	Outcome         string
	CallTime        time.Time
	DurationSeconds int
	Notes           *string
	CreatedAt       time.Time

	LeadContactName string
	LeadCompanyName *string
	LeadPhone       string
}

type CreateCallLogParams struct {
	CompanyID       uuid.UUID
	LeadID          uuid.UUID
	UserID          uuid.UUID
	Outcome         string
	CallTime        time.Time
	DurationSeconds int
	Notes           *string
	// MarkContacted moves a lead that is still new to contacted.
	MarkContacted bool
}

// CallLogListParams filters a tenant's call history. CompanyID is mandatory.
type CallLogListParams struct {
	CompanyID uuid.UUID
	LeadID    *uuid.UUID
	Outcome   *string
	Since     *time.Time
	Limit     int
	Offset    int
}

const callLogColumns = `c.id, c.company_id, c.lead_id, c.user_id, c.outcome, c.call_time,
	c.duration_seconds, c.notes, c.created_at`

// CreateCallLog records a call against a lead of the company and returns the
// lead's status after the call.
func (r *Repository) CreateCallLog(ctx context.Context, params CreateCallLogParams) (CallLog, string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return CallLog{}, "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status string
	err = tx.QueryRow(ctx,
		`SELECT status FROM leads WHERE id = $1 AND company_id = $2 FOR UPDATE`,
		params.LeadID, params.CompanyID,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return CallLog{}, "", ErrNotFound
	}
	if err != nil {
		return CallLog{}, "", err
	}

	query := `INSERT INTO call_logs (company_id, lead_id, user_id, outcome, call_time, duration_seconds, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, company_id, lead_id, user_id, outcome, call_time, duration_seconds, notes, created_at`
	var call CallLog
	err = tx.QueryRow(ctx, query,
		params.CompanyID, params.LeadID, params.UserID, params.Outcome,
		params.CallTime, params.DurationSeconds, params.Notes,
	).Scan(
		&call.ID, &call.CompanyID, &call.LeadID, &call.UserID, &call.Outcome, &call.CallTime,
		&call.DurationSeconds, &call.Notes, &call.CreatedAt,
	)
	if err != nil {
		return CallLog{}, "", err
	}

	if params.MarkContacted && status == "new" {
		if _, err := tx.Exec(ctx,
			`UPDATE leads SET status = $2, updated_at = now() WHERE id = $1`,
			params.LeadID, statusContacted,
		); err != nil {
			return CallLog{}, "", err
		}
		status = statusContacted
	}

	if err := tx.Commit(ctx); err != nil {
		return CallLog{}, "", err
	}
	return call, status, nil
}

// ListCallLogs returns one page of call history, newest call first, with the
// called lead's name and phone.
func (r *Repository) ListCallLogs(ctx context.Context, params CallLogListParams) ([]CallLog, int, error) {
	whereClause, args, argIdx := buildCallLogListWhere(params)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM call_logs c WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s, l.contact_name, l.company_name, l.phone
		FROM call_logs c
		JOIN leads l ON l.id = c.lead_id
		WHERE %s
		ORDER BY c.call_time DESC, c.id
		LIMIT $%d OFFSET $%d
	`, callLogColumns, whereClause, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	logs := make([]CallLog, 0)
	for rows.Next() {
		var call CallLog
		if err := rows.Scan(
			&call.ID, &call.CompanyID, &call.LeadID, &call.UserID, &call.Outcome, &call.CallTime,
			&call.DurationSeconds, &call.Notes, &call.CreatedAt,
			&call.LeadContactName, &call.LeadCompanyName, &call.LeadPhone,
		); err != nil {
			return nil, 0, err
		}
		logs = append(logs, call)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return logs, total, nil
}

func buildCallLogListWhere(params CallLogListParams) (string, []interface{}, int) {
	whereClauses := []string{"c.company_id = $1"}
	args := []interface{}{params.CompanyID}
	argIdx := 2

	if params.LeadID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("c.lead_id = $%d", argIdx))
		args = append(args, *params.LeadID)
		argIdx++
	}
	if params.Outcome != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("c.outcome = $%d", argIdx))
		args = append(args, *params.Outcome)
		argIdx++
	}
	if params.Since != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("c.call_time >= $%d", argIdx))
		args = append(args, *params.Since)
		argIdx++
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}
