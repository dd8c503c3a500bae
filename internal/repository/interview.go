package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nexus-hr/interview-coordinator/pkg/model"
)

const interviewColumns = `
	id, candidate_name, candidate_email, position, status, outcome,
	interview_type, scheduled_time, duration, platform, meeting_link,
	meeting_ref, google_form_link, notes, version, created_at, updated_at`

func scanInterview(row pgx.Row) (*model.InterviewRecord, error) {
	var rec model.InterviewRecord
	err := row.Scan(
		&rec.ID, &rec.CandidateName, &rec.CandidateEmail, &rec.Position, &rec.Status, &rec.Outcome,
		&rec.InterviewType, &rec.ScheduledTime, &rec.Duration, &rec.Platform, &rec.MeetingLink,
		&rec.MeetingRef, &rec.GoogleFormLink, &rec.Notes, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateInterview inserts the record together with its opening history
// entries so a failure leaves nothing behind.
func (r *Repository) CreateInterview(ctx context.Context, rec *model.InterviewRecord, history []model.StageHistoryEntry) error {
	return r.execTx(ctx, func(tx pgx.Tx) error {
		const q = `
INSERT INTO interviews (
	id, candidate_name, candidate_email, position, status, outcome,
	interview_type, scheduled_time, duration, platform, meeting_link,
	meeting_ref, google_form_link, notes, version, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
`
		_, err := tx.Exec(ctx, q,
			rec.ID, rec.CandidateName, rec.CandidateEmail, rec.Position, rec.Status, rec.Outcome,
			rec.InterviewType, rec.ScheduledTime, rec.Duration, rec.Platform, rec.MeetingLink,
			rec.MeetingRef, rec.GoogleFormLink, rec.Notes, rec.Version, rec.CreatedAt, rec.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert interview: %w", err)
		}

		for _, entry := range history {
			if err := appendHistoryTx(ctx, tx, rec.ID, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) GetInterview(ctx context.Context, id uuid.UUID) (*model.InterviewRecord, error) {
	q := `SELECT` + interviewColumns + ` FROM interviews WHERE id = $1`
	rec, err := scanInterview(r.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &model.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("get interview: %w", err)
	}
	return rec, nil
}

func (r *Repository) ListInterviews(ctx context.Context, query model.ListInterviewQuery) ([]model.InterviewRecord, int, error) {
	args := []interface{}{}
	where := ""
	if query.Status != nil {
		where = " WHERE status = $1"
		args = append(args, *query.Status)
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(1) FROM interviews"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count interviews: %w", err)
	}

	limit := query.PageSize
	if limit < 1 {
		limit = 20
	}
	page := query.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	q := `SELECT` + interviewColumns + ` FROM interviews` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query interviews: %w", err)
	}
	defer rows.Close()

	out := make([]model.InterviewRecord, 0, limit)
	for rows.Next() {
		rec, err := scanInterview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan interview row: %w", err)
		}
		out = append(out, *rec)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("rows error: %w", rows.Err())
	}
	return out, total, nil
}

// UpdateInterview writes the mutated record and appends the transition's
// history entry in one transaction. The version check makes concurrent
// writers lose loudly instead of silently (last-write-wins is gone).
func (r *Repository) UpdateInterview(ctx context.Context, rec *model.InterviewRecord, entry model.StageHistoryEntry) error {
	return r.execTx(ctx, func(tx pgx.Tx) error {
		const q = `
UPDATE interviews SET
	status = $1, outcome = $2, interview_type = $3, scheduled_time = $4,
	duration = $5, platform = $6, meeting_link = $7, meeting_ref = $8,
	notes = $9, version = version + 1, updated_at = now()
WHERE id = $10 AND version = $11
`
		tag, err := tx.Exec(ctx, q,
			rec.Status, rec.Outcome, rec.InterviewType, rec.ScheduledTime,
			rec.Duration, rec.Platform, rec.MeetingLink, rec.MeetingRef,
			rec.Notes, rec.ID, rec.Version,
		)
		if err != nil {
			return fmt.Errorf("update interview: %w", err)
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM interviews WHERE id = $1)`, rec.ID).Scan(&exists); err != nil {
				return fmt.Errorf("check interview exists: %w", err)
			}
			if !exists {
				return &model.NotFoundError{ID: rec.ID}
			}
			return &model.ConflictError{ID: rec.ID}
		}

		return appendHistoryTx(ctx, tx, rec.ID, entry)
	})
}

// DeleteInterview hard-deletes the record and its history log.
func (r *Repository) DeleteInterview(ctx context.Context, id uuid.UUID) error {
	return r.execTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM interview_stage_history WHERE interview_id = $1`, id); err != nil {
			return fmt.Errorf("delete stage history: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM interviews WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete interview: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return &model.NotFoundError{ID: id}
		}
		return nil
	})
}

func appendHistoryTx(ctx context.Context, tx pgx.Tx, interviewID uuid.UUID, entry model.StageHistoryEntry) error {
	const q = `
INSERT INTO interview_stage_history (interview_id, stage, timestamp, details)
VALUES ($1, $2, $3, $4)
`
	if _, err := tx.Exec(ctx, q, interviewID, entry.Stage, entry.Timestamp, entry.Details); err != nil {
		return fmt.Errorf("append stage history: %w", err)
	}
	return nil
}

func (r *Repository) ListHistory(ctx context.Context, id uuid.UUID) ([]model.StageHistoryEntry, error) {
	const q = `
SELECT id, interview_id, stage, timestamp, details
FROM interview_stage_history
WHERE interview_id = $1
ORDER BY timestamp ASC, id ASC
`
	rows, err := r.db.Query(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("query stage history: %w", err)
	}
	defer rows.Close()

	var out []model.StageHistoryEntry
	for rows.Next() {
		var e model.StageHistoryEntry
		if err := rows.Scan(&e.ID, &e.InterviewID, &e.Stage, &e.Timestamp, &e.Details); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		out = append(out, e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}
	return out, nil
}
