package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IAmASonOfGod/medcare-booking-platform/internal/schedule"
)

// Querier is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository stores appointments in Postgres.
type Repository struct {
	db Querier
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithQuerier allows injecting mocks for tests.
func NewRepositoryWithQuerier(db Querier) *Repository {
	return &Repository{db: db}
}

// uniqueViolation is the Postgres error code raised by the partial unique
// index on (practice_id, schedule).
const uniqueViolation = "23505"

// Create inserts a new appointment row. Two requests racing for the same
// slot both pass validation; the database index rejects the loser and the
// error surfaces as ErrSlotTaken.
func (r *Repository) Create(ctx context.Context, appt *Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	if appt.Status == "" {
		appt.Status = schedule.StatusScheduled
	}

	query := `
		INSERT INTO appointments (id, practice_id, patient_name, patient_email, patient_phone, schedule, status, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		appt.ID,
		appt.PracticeID,
		appt.PatientName,
		appt.PatientEmail,
		appt.PatientPhone,
		appt.Schedule,
		appt.Status,
		appt.Reason,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrSlotTaken
		}
		return fmt.Errorf("appointments: insert failed: %w", err)
	}
	return nil
}

// GetByID fetches an appointment scoped to the practice.
func (r *Repository) GetByID(ctx context.Context, practiceID, id string) (*Appointment, error) {
	query := `
		SELECT id, practice_id, patient_name, patient_email, patient_phone, schedule, status, reason, created_at, updated_at
		FROM appointments
		WHERE id = $1 AND practice_id = $2
	`
	var appt Appointment
	err := r.db.QueryRow(ctx, query, id, practiceID).Scan(
		&appt.ID,
		&appt.PracticeID,
		&appt.PatientName,
		&appt.PatientEmail,
		&appt.PatientPhone,
		&appt.Schedule,
		&appt.Status,
		&appt.Reason,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return &appt, nil
}

// ListHeldStarts returns the start times of every slot-holding appointment
// for the practice within [dayStart, dayEnd).
func (r *Repository) ListHeldStarts(ctx context.Context, practiceID string, dayStart, dayEnd time.Time) ([]time.Time, error) {
	query := `
		SELECT schedule
		FROM appointments
		WHERE practice_id = $1 AND schedule >= $2 AND schedule < $3 AND status = ANY($4)
		ORDER BY schedule
	`
	rows, err := r.db.Query(ctx, query, practiceID, dayStart, dayEnd, schedule.HeldStatuses())
	if err != nil {
		return nil, fmt.Errorf("appointments: list held starts: %w", err)
	}
	defer rows.Close()

	var starts []time.Time
	for rows.Next() {
		var start time.Time
		if err := rows.Scan(&start); err != nil {
			return nil, fmt.Errorf("appointments: scan held start: %w", err)
		}
		starts = append(starts, start)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list held starts: %w", err)
	}
	return starts, nil
}

// ListForDay returns every appointment for the practice within
// [dayStart, dayEnd), regardless of status.
func (r *Repository) ListForDay(ctx context.Context, practiceID string, dayStart, dayEnd time.Time) ([]Appointment, error) {
	query := `
		SELECT id, practice_id, patient_name, patient_email, patient_phone, schedule, status, reason, created_at, updated_at
		FROM appointments
		WHERE practice_id = $1 AND schedule >= $2 AND schedule < $3
		ORDER BY schedule
	`
	rows, err := r.db.Query(ctx, query, practiceID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("appointments: list for day: %w", err)
	}
	defer rows.Close()

	var appts []Appointment
	for rows.Next() {
		var appt Appointment
		if err := rows.Scan(
			&appt.ID,
			&appt.PracticeID,
			&appt.PatientName,
			&appt.PatientEmail,
			&appt.PatientPhone,
			&appt.Schedule,
			&appt.Status,
			&appt.Reason,
			&appt.CreatedAt,
			&appt.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("appointments: scan row: %w", err)
		}
		appts = append(appts, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list for day: %w", err)
	}
	return appts, nil
}

// CountConsumed returns how many capacity-consuming appointments the
// practice has within [dayStart, dayEnd).
func (r *Repository) CountConsumed(ctx context.Context, practiceID string, dayStart, dayEnd time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM appointments
		WHERE practice_id = $1 AND schedule >= $2 AND schedule < $3 AND status = ANY($4)
	`
	var count int
	err := r.db.QueryRow(ctx, query, practiceID, dayStart, dayEnd, schedule.ConsumedStatuses()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("appointments: count consumed: %w", err)
	}
	return count, nil
}

// UpdateStatus transitions an appointment to the given status.
func (r *Repository) UpdateStatus(ctx context.Context, practiceID, id, status string) error {
	query := `
		UPDATE appointments
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND practice_id = $2
	`
	tag, err := r.db.Exec(ctx, query, id, practiceID, status)
	if err != nil {
		return fmt.Errorf("appointments: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
