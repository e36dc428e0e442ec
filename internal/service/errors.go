package service

import (
	"fmt"

	"callpilot/internal/models"
)

// InvalidTransitionError reports a command that is not legal from the
// campaign's current status. Surfaced to the operator verbatim, never retried.
type InvalidTransitionError struct {
	From    models.CampaignStatus
	Command models.Command
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a campaign in status %s", e.Command, e.From)
}

// ConcurrencyConflictError reports that the optimistic campaign-status write
// found the status already changed by a concurrent command.
type ConcurrencyConflictError struct {
	CampaignID string
	Expected   models.CampaignStatus
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("campaign %s is no longer in status %s; re-fetch and retry", e.CampaignID, e.Expected)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// ValidationError represents a validation error
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// FormatError reports a phone number that cannot be normalized to E.164
type FormatError struct {
	Raw    string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("cannot normalize phone number %q: %s", e.Raw, e.Reason)
}
