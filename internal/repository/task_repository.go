package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"callpilot/internal/models"
)

type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new call task repository
func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, campaign_id, contact_id, call_subject, first_message, priority, call_status, scheduled_at, created_at, updated_at`

// CreateBatch persists the call tasks materialized from a campaign's audience
func (r *taskRepository) CreateBatch(ctx context.Context, tasks []*models.CallTask) error {
	if len(tasks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO call_tasks (id, campaign_id, contact_id, call_subject, first_message, priority, call_status, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, task := range tasks {
		if task.ID == "" {
			task.ID = uuid.NewString()
		}
		if task.CallStatus == "" {
			task.CallStatus = models.CallStatusPending
		}

		err := stmt.QueryRowContext(
			ctx,
			task.ID,
			task.CampaignID,
			task.ContactID,
			task.CallSubject,
			task.FirstMessage,
			task.Priority,
			task.CallStatus,
			task.ScheduledAt,
		).Scan(&task.CreatedAt, &task.UpdatedAt)

		if err != nil {
			return fmt.Errorf("failed to create call task: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a call task by ID
func (r *taskRepository) GetByID(ctx context.Context, id string) (*models.CallTask, error) {
	query := `SELECT ` + taskColumns + ` FROM call_tasks WHERE id = $1`

	task := &models.CallTask{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.CampaignID,
		&task.ContactID,
		&task.CallSubject,
		&task.FirstMessage,
		&task.Priority,
		&task.CallStatus,
		&task.ScheduledAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get call task: %w", err)
	}

	return task, nil
}

// ListByCampaign retrieves a campaign's tasks in dispatch order: priority
// first, then scheduled time, then id so the order is deterministic.
func (r *taskRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*models.CallTask, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM call_tasks
		WHERE campaign_id = $1
		ORDER BY
			CASE priority
				WHEN 'Urgent' THEN 0
				WHEN 'High' THEN 1
				WHEN 'Medium' THEN 2
				WHEN 'Low' THEN 3
				ELSE 4
			END ASC,
			scheduled_at ASC,
			id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list call tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.CallTask{}
	for rows.Next() {
		task := &models.CallTask{}
		err := rows.Scan(
			&task.ID,
			&task.CampaignID,
			&task.ContactID,
			&task.CallSubject,
			&task.FirstMessage,
			&task.Priority,
			&task.CallStatus,
			&task.ScheduledAt,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan call task: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

// UpdateManyStatus rewrites every matching task's status in one conditional
// bulk UPDATE. An empty filter matches all of the campaign's tasks. Zero
// affected rows is a valid outcome, and re-running the same update is a no-op
// because the filter no longer matches.
func (r *taskRepository) UpdateManyStatus(ctx context.Context, campaignID string, from []models.CallStatus, to models.CallStatus) (int64, error) {
	query := strings.Builder{}
	query.WriteString(`
		UPDATE call_tasks
		SET call_status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE campaign_id = $2
	`)

	args := []interface{}{to, campaignID}
	if len(from) > 0 {
		placeholders := make([]string, len(from))
		for i, status := range from {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, status)
		}
		query.WriteString(" AND call_status IN (" + strings.Join(placeholders, ", ") + ")")
	}

	result, err := r.db.ExecContext(ctx, query.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update call tasks: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

// MarkDispatched moves a task from Scheduled to Completed after a successful
// dispatch. The call_status guard makes the write lose quietly to a
// concurrent pause or abort that already moved the task elsewhere.
func (r *taskRepository) MarkDispatched(ctx context.Context, taskID string) (bool, error) {
	query := `
		UPDATE call_tasks
		SET call_status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND call_status = $3
	`

	result, err := r.db.ExecContext(ctx, query, models.CallStatusCompleted, taskID, models.CallStatusScheduled)
	if err != nil {
		return false, fmt.Errorf("failed to mark task dispatched: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// CountIncomplete counts a campaign's tasks, total and not yet Completed
func (r *taskRepository) CountIncomplete(ctx context.Context, campaignID string) (total int, incomplete int, err error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE call_status <> $2)
		FROM call_tasks
		WHERE campaign_id = $1
	`

	err = r.db.QueryRowContext(ctx, query, campaignID, models.CallStatusCompleted).Scan(&total, &incomplete)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count incomplete tasks: %w", err)
	}

	return total, incomplete, nil
}
