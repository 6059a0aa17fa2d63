package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Stats are a company's pipeline and call counters.
type Stats struct {
	TotalLeads     int
	NewLeads       int
	ContactedLeads int
	QualifiedLeads int
	ConvertedLeads int
	LostLeads      int

	TotalCalls             int
	SuccessfulCalls        int
	TodayCalls             int
	PendingCallbacks       int
	AvgCallDurationSeconds float64
}

const leadStatsQuery = `
	SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE l.status = 'new'),
		COUNT(*) FILTER (WHERE l.status = 'contacted'),
		COUNT(*) FILTER (WHERE l.status = 'qualified'),
		COUNT(*) FILTER (WHERE l.status = 'converted'),
		COUNT(*) FILTER (WHERE l.status = 'lost')
	FROM leads l
	WHERE l.company_id = $1`

// Pending callbacks are open leads whose latest call ended in a callback request.
const callStatsQuery = `
	SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE c.outcome = 'success'),
		COUNT(*) FILTER (WHERE c.call_time >= $2),
		COALESCE(AVG(c.duration_seconds), 0)::float8,
		(
			SELECT COUNT(*) FROM (
				SELECT DISTINCT ON (cl.lead_id) cl.outcome, ld.status
				FROM call_logs cl
				JOIN leads ld ON ld.id = cl.lead_id
				WHERE cl.company_id = $1
				ORDER BY cl.lead_id, cl.call_time DESC, cl.id
			) latest
			WHERE latest.outcome = 'callback' AND latest.status NOT IN ('converted', 'lost')
		)
	FROM call_logs c
	WHERE c.company_id = $1`

// Stats counts the company's leads by status and its calls. Calls at or after
// since count as today's.
func (r *Repository) Stats(ctx context.Context, companyID uuid.UUID, since time.Time) (Stats, error) {
	var stats Stats
	if err := r.pool.QueryRow(ctx, leadStatsQuery, companyID).Scan(
		&stats.TotalLeads, &stats.NewLeads, &stats.ContactedLeads,
		&stats.QualifiedLeads, &stats.ConvertedLeads, &stats.LostLeads,
	); err != nil {
		return Stats{}, err
	}

	if err := r.pool.QueryRow(ctx, callStatsQuery, companyID, since).Scan(
		&stats.TotalCalls, &stats.SuccessfulCalls, &stats.TodayCalls,
		&stats.AvgCallDurationSeconds, &stats.PendingCallbacks,
	); err != nil {
		return Stats{}, err
	}
	return stats, nil
}
