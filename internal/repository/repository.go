package repository

import (
	"context"
	"database/sql"

	"callpilot/internal/models"
)

// CampaignRepository defines campaign data access operations.
// Status writes are conditional: UpdateStatusFrom only applies when the row
// still carries the expected source status and reports how many rows matched,
// which is the optimistic-concurrency guard for operator commands.
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	GetWithStats(ctx context.Context, id string) (*models.CampaignWithStats, error)
	ListByStatus(ctx context.Context, status models.CampaignStatus) ([]*models.Campaign, error)
	UpdateStatusFrom(ctx context.Context, id string, from, to models.CampaignStatus) (int64, error)
	Delete(ctx context.Context, id string) error
}

// TaskRepository defines call task data access operations.
// UpdateManyStatus is the bulk task-status rewrite paired with a campaign
// transition; MarkDispatched is the per-task conditional write used by the
// dispatch loop.
type TaskRepository interface {
	CreateBatch(ctx context.Context, tasks []*models.CallTask) error
	GetByID(ctx context.Context, id string) (*models.CallTask, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]*models.CallTask, error)
	UpdateManyStatus(ctx context.Context, campaignID string, from []models.CallStatus, to models.CallStatus) (int64, error)
	MarkDispatched(ctx context.Context, taskID string) (bool, error)
	CountIncomplete(ctx context.Context, campaignID string) (total int, incomplete int, err error)
}

// ContactRepository defines contact data access operations
type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
	GetByID(ctx context.Context, id string) (*models.Contact, error)
}

// DB is a wrapper around *sql.DB to allow passing in transaction
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
