package models

import "time"

// CallStatus represents valid call task statuses.
// The vocabulary is task-local: it has no Resumed member, a resumed
// campaign's tasks go back to Scheduled.
type CallStatus string

const (
	CallStatusPending   CallStatus = "Pending"
	CallStatusScheduled CallStatus = "Scheduled"
	CallStatusActive    CallStatus = "Active"
	CallStatusPaused    CallStatus = "Paused"
	CallStatusCompleted CallStatus = "Completed"
	CallStatusAborted   CallStatus = "Aborted"
)

// TaskPriority represents how urgently a call task should be dispatched
type TaskPriority string

const (
	TaskPriorityUrgent TaskPriority = "Urgent"
	TaskPriorityHigh   TaskPriority = "High"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityLow    TaskPriority = "Low"
)

// Rank maps a priority to its dispatch order; lower dispatches first.
// Unknown priorities sort last.
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityUrgent:
		return 0
	case TaskPriorityHigh:
		return 1
	case TaskPriorityMedium:
		return 2
	case TaskPriorityLow:
		return 3
	default:
		return 4
	}
}

// CallTask represents one scheduled call to one contact
type CallTask struct {
	ID           string       `json:"id" db:"id"`
	CampaignID   string       `json:"campaign_id" db:"campaign_id"`
	ContactID    string       `json:"contact_id" db:"contact_id"`
	CallSubject  string       `json:"call_subject" db:"call_subject"`
	FirstMessage *string      `json:"first_message,omitempty" db:"first_message"`
	Priority     TaskPriority `json:"priority" db:"priority"`
	CallStatus   CallStatus   `json:"call_status" db:"call_status"`
	ScheduledAt  time.Time    `json:"scheduled_at" db:"scheduled_at"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// IsFinal reports whether the task can still be rewritten by a campaign
// transition or the dispatch loop.
func (s CallStatus) IsFinal() bool {
	return s == CallStatusCompleted || s == CallStatusAborted
}
