package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"callpilot/internal/models"
)

type campaignRepository struct {
	db *sql.DB
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *sql.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

// Create creates a new campaign
func (r *campaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	if campaign.ID == "" {
		campaign.ID = uuid.NewString()
	}
	if campaign.Status == "" {
		campaign.Status = models.CampaignStatusPending
	}

	query := `
		INSERT INTO campaigns (id, user_id, name, description, status, start_date, end_date, scheduled_at, country_code, budget)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		campaign.ID,
		campaign.UserID,
		campaign.Name,
		campaign.Description,
		campaign.Status,
		campaign.StartDate,
		campaign.EndDate,
		campaign.ScheduledAt,
		campaign.CountryCode,
		campaign.Budget,
	).Scan(&campaign.CreatedAt, &campaign.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	return nil
}

// GetByID retrieves a campaign by ID
func (r *campaignRepository) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	query := `
		SELECT id, user_id, name, description, status, start_date, end_date, scheduled_at, country_code, budget, created_at, updated_at
		FROM campaigns
		WHERE id = $1
	`

	campaign := &models.Campaign{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&campaign.ID,
		&campaign.UserID,
		&campaign.Name,
		&campaign.Description,
		&campaign.Status,
		&campaign.StartDate,
		&campaign.EndDate,
		&campaign.ScheduledAt,
		&campaign.CountryCode,
		&campaign.Budget,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	return campaign, nil
}

// GetWithStats retrieves a campaign with per-status task counts
func (r *campaignRepository) GetWithStats(ctx context.Context, id string) (*models.CampaignWithStats, error) {
	campaign, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	statsQuery := `
		SELECT
			COUNT(*) as total,
			COUNT(*) FILTER (WHERE call_status = 'Pending') as pending,
			COUNT(*) FILTER (WHERE call_status = 'Scheduled') as scheduled,
			COUNT(*) FILTER (WHERE call_status = 'Active') as active,
			COUNT(*) FILTER (WHERE call_status = 'Paused') as paused,
			COUNT(*) FILTER (WHERE call_status = 'Completed') as completed,
			COUNT(*) FILTER (WHERE call_status = 'Aborted') as aborted
		FROM call_tasks
		WHERE campaign_id = $1
	`

	stats := models.CampaignStats{}
	err = r.db.QueryRowContext(ctx, statsQuery, id).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.Scheduled,
		&stats.Active,
		&stats.Paused,
		&stats.Completed,
		&stats.Aborted,
	)

	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get campaign stats: %w", err)
	}

	return &models.CampaignWithStats{
		Campaign: *campaign,
		Stats:    stats,
	}, nil
}

// ListByStatus retrieves all campaigns with the given status
func (r *campaignRepository) ListByStatus(ctx context.Context, status models.CampaignStatus) ([]*models.Campaign, error) {
	query := `
		SELECT id, user_id, name, description, status, start_date, end_date, scheduled_at, country_code, budget, created_at, updated_at
		FROM campaigns
		WHERE status = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []*models.Campaign{}
	for rows.Next() {
		campaign := &models.Campaign{}
		err := rows.Scan(
			&campaign.ID,
			&campaign.UserID,
			&campaign.Name,
			&campaign.Description,
			&campaign.Status,
			&campaign.StartDate,
			&campaign.EndDate,
			&campaign.ScheduledAt,
			&campaign.CountryCode,
			&campaign.Budget,
			&campaign.CreatedAt,
			&campaign.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}

	return campaigns, nil
}

// UpdateStatusFrom conditionally moves a campaign from one status to another.
// Zero affected rows means the campaign was concurrently moved elsewhere (or
// does not exist); callers decide whether that is a conflict.
func (r *campaignRepository) UpdateStatusFrom(ctx context.Context, id string, from, to models.CampaignStatus) (int64, error) {
	query := `
		UPDATE campaigns
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND status = $3
	`

	result, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return 0, fmt.Errorf("failed to update campaign status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

// Delete deletes a campaign and its call tasks. Tasks go first since there is
// no cross-table transaction guarantee the campaign row can rely on.
func (r *campaignRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM call_tasks WHERE campaign_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete campaign tasks: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
