package models

import "time"

// CampaignStatus represents valid campaign statuses
type CampaignStatus string

const (
	CampaignStatusPending   CampaignStatus = "Pending"
	CampaignStatusScheduled CampaignStatus = "Scheduled"
	CampaignStatusActive    CampaignStatus = "Active"
	CampaignStatusResumed   CampaignStatus = "Resumed"
	CampaignStatusPaused    CampaignStatus = "Paused"
	CampaignStatusAborted   CampaignStatus = "Aborted"
	CampaignStatusCompleted CampaignStatus = "Completed"
)

// CampaignStatuses lists every valid campaign status.
var CampaignStatuses = []CampaignStatus{
	CampaignStatusPending,
	CampaignStatusScheduled,
	CampaignStatusActive,
	CampaignStatusResumed,
	CampaignStatusPaused,
	CampaignStatusAborted,
	CampaignStatusCompleted,
}

// Campaign represents an outbound-call campaign in the system
type Campaign struct {
	ID          string         `json:"id" db:"id"`
	UserID      string         `json:"user_id" db:"user_id"`
	Name        string         `json:"name" db:"name"`
	Description string         `json:"description" db:"description"`
	Status      CampaignStatus `json:"status" db:"status"`
	StartDate   *time.Time     `json:"start_date,omitempty" db:"start_date"`
	EndDate     *time.Time     `json:"end_date,omitempty" db:"end_date"`
	ScheduledAt *time.Time     `json:"scheduled_at,omitempty" db:"scheduled_at"`
	CountryCode string         `json:"country_code" db:"country_code"`
	Budget      float64        `json:"budget" db:"budget"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether no further commands may move the campaign.
func (s CampaignStatus) IsTerminal() bool {
	return s == CampaignStatusCompleted
}

// IsValid checks that the status belongs to the campaign vocabulary.
func (s CampaignStatus) IsValid() bool {
	for _, known := range CampaignStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// CampaignStats represents per-status call task counts for a campaign
type CampaignStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Scheduled int `json:"scheduled"`
	Active    int `json:"active"`
	Paused    int `json:"paused"`
	Completed int `json:"completed"`
	Aborted   int `json:"aborted"`
}

// CampaignWithStats represents a campaign with its task statistics and the
// commands an operator may issue from its current status
type CampaignWithStats struct {
	Campaign
	Stats           CampaignStats `json:"stats"`
	AllowedCommands []Command     `json:"allowed_commands"`
}
