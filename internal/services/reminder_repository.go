package services

import (
	"context"
	"database/sql"
	"time"

	"ms-reminders/internal/engine"
	"ms-reminders/internal/models"
)

// ReminderRepository is the engine's read/query interface into the record
// store, plus the two writes the engine is allowed to make (delivery log
// append, custom-reminder completion). It satisfies engine.EventStore.
type ReminderRepository struct {
	DB *sql.DB
}

func NewReminderRepository(db *sql.DB) *ReminderRepository {
	return &ReminderRepository{DB: db}
}

// DueCandidates returns all enabled, not-yet-completed reminder events.
// Window filtering is left to the trigger evaluator; the query only pushes
// down the cheap terminal-state exclusions.
func (r *ReminderRepository) DueCandidates(ctx context.Context) ([]models.ReminderEvent, error) {
	query := `
        SELECT id, owner_id, kind, related_id, to_char(scheduled_date, 'YYYY-MM-DD'),
               scheduled_time, timezone, notify_enabled, notify_email, title, notes,
               completed, created_at
        FROM reminder_events
        WHERE notify_enabled = TRUE AND completed = FALSE
        ORDER BY scheduled_date, scheduled_time
    `

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, &engine.StoreError{Op: "fetch candidates", Err: err}
	}
	defer rows.Close()

	var events []models.ReminderEvent
	for rows.Next() {
		var e models.ReminderEvent
		err := rows.Scan(
			&e.ID,
			&e.OwnerID,
			&e.Kind,
			&e.RelatedID,
			&e.ScheduledDate,
			&e.ScheduledTime,
			&e.Timezone,
			&e.NotifyEnabled,
			&e.NotifyEmail,
			&e.Title,
			&e.Notes,
			&e.Completed,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, &engine.StoreError{Op: "scan candidate", Err: err}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &engine.StoreError{Op: "iterate candidates", Err: err}
	}

	return events, nil
}

// GetByID returns a single reminder event, or nil when no such row exists.
func (r *ReminderRepository) GetByID(ctx context.Context, id string) (*models.ReminderEvent, error) {
	query := `
        SELECT id, owner_id, kind, related_id, to_char(scheduled_date, 'YYYY-MM-DD'),
               scheduled_time, timezone, notify_enabled, notify_email, title, notes,
               completed, created_at
        FROM reminder_events
        WHERE id = $1
    `

	var e models.ReminderEvent
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID,
		&e.OwnerID,
		&e.Kind,
		&e.RelatedID,
		&e.ScheduledDate,
		&e.ScheduledTime,
		&e.Timezone,
		&e.NotifyEnabled,
		&e.NotifyEmail,
		&e.Title,
		&e.Notes,
		&e.Completed,
		&e.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, &engine.StoreError{Op: "get reminder", Err: err}
	}

	return &e, nil
}

// DeliveredWithin reports whether a delivery-log row exists for the given
// origin and kind with fired_at at or after since. This is the dedup guard's
// only data source.
func (r *ReminderRepository) DeliveredWithin(ctx context.Context, originID string, kind models.ReminderKind, since time.Time) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM delivery_log
            WHERE origin_id = $1 AND kind = $2 AND fired_at >= $3
        )
    `

	var delivered bool
	err := r.DB.QueryRowContext(ctx, query, originID, kind, since).Scan(&delivered)
	if err != nil {
		return false, &engine.StoreError{Op: "dedup check", Err: err}
	}

	return delivered, nil
}

// AppendDelivery writes one delivery-log row. The table is append-only;
// there is no update path.
func (r *ReminderRepository) AppendDelivery(ctx context.Context, rec models.DeliveryRecord) error {
	query := `
        INSERT INTO delivery_log (origin_id, kind, notify_email, fired_at, completed)
        VALUES ($1, $2, $3, $4, $5)
    `

	_, err := r.DB.ExecContext(ctx, query, rec.OriginID, rec.Kind, rec.NotifyEmail, rec.FiredAt, rec.Completed)
	if err != nil {
		return &engine.StoreError{Op: "append delivery", Err: err}
	}

	return nil
}

// MarkCompleted flips the completed flag on a custom reminder. The engine
// never writes anything else to reminder_events.
func (r *ReminderRepository) MarkCompleted(ctx context.Context, eventID string) error {
	query := `UPDATE reminder_events SET completed = TRUE WHERE id = $1`

	_, err := r.DB.ExecContext(ctx, query, eventID)
	if err != nil {
		return &engine.StoreError{Op: "mark completed", Err: err}
	}

	return nil
}
