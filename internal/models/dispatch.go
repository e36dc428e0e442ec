package models

import "time"

// Command represents an operator command against a campaign
type Command string

const (
	CommandLaunch Command = "launch"
	CommandPause  Command = "pause"
	CommandResume Command = "resume"
	CommandAbort  Command = "abort"
)

// ParseCommand validates a raw command string
func ParseCommand(raw string) (Command, bool) {
	switch Command(raw) {
	case CommandLaunch, CommandPause, CommandResume, CommandAbort:
		return Command(raw), true
	}
	return "", false
}

// DispatchErrorKind classifies why a single dispatch attempt failed
type DispatchErrorKind string

const (
	// DispatchErrorContactInvalid covers a missing contact or a phone
	// number that cannot be normalized.
	DispatchErrorContactInvalid DispatchErrorKind = "contact_invalid"
	// DispatchErrorDialer covers dialer rejection or unreachability.
	DispatchErrorDialer DispatchErrorKind = "dialer_error"
)

// DispatchOutcome is the per-task result of one dispatch attempt.
// It is ephemeral: aggregated into a BatchSummary, never persisted.
type DispatchOutcome struct {
	TaskID    string            `json:"task_id"`
	Succeeded bool              `json:"succeeded"`
	ErrorKind DispatchErrorKind `json:"error_kind,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// BatchSummary aggregates one dispatch loop run over a campaign's tasks
type BatchSummary struct {
	Attempted int               `json:"attempted"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Failures  []DispatchOutcome `json:"failures,omitempty"`
}
