// Package audit records login activity (login, logout, upstream expiry) in
// PostgreSQL. Attendance data itself is never persisted here.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Event kinds recorded in the audit trail.
const (
	EventLogin   = "login"
	EventLogout  = "logout"
	EventExpired = "expired"
)

// Entry is one row of the login audit trail.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	RegisterNo string    `json:"register_no"`
	Event      string    `json:"event"`
	ClientIP   string    `json:"client_ip"`
	UserAgent  string    `json:"user_agent"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Repository handles the login_audit table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an audit repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert writes one audit entry.
func (r *Repository) Insert(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO login_audit (id, register_no, event, client_ip, user_agent, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.RegisterNo, e.Event, e.ClientIP, e.UserAgent, e.OccurredAt)
	return err
}

// ListRecent returns the most recent audit entries for a student.
func (r *Repository) ListRecent(ctx context.Context, registerNo string, limit int) ([]Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, register_no, event, client_ip, user_agent, occurred_at
		 FROM login_audit WHERE register_no = $1 ORDER BY occurred_at DESC LIMIT $2`,
		registerNo, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.RegisterNo, &e.Event, &e.ClientIP, &e.UserAgent, &e.OccurredAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// DeleteOlderThan removes entries past the retention window. Returns rows removed.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM login_audit WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
