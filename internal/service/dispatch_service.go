package service

import (
	"context"
	"database/sql"
	"log"
	"time"

	"callpilot/internal/dialer"
	"callpilot/internal/models"
	"callpilot/internal/repository"
)

// DispatchService walks a launched campaign's call tasks and places one call
// per task, isolating per-task failures so one bad contact never halts the
// batch.
type DispatchService struct {
	taskRepo     repository.TaskRepository
	contactRepo  repository.ContactRepository
	campaignRepo repository.CampaignRepository
	dialer       dialer.Dialer
	phones       *PhoneResolver
	callbackURL  string
	// statusCheckEvery controls how often the loop re-reads the campaign
	// status so a concurrent pause or abort stops the batch early.
	statusCheckEvery int
}

// NewDispatchService creates a new dispatch service
func NewDispatchService(
	taskRepo repository.TaskRepository,
	contactRepo repository.ContactRepository,
	campaignRepo repository.CampaignRepository,
	d dialer.Dialer,
	phones *PhoneResolver,
	callbackURL string,
	statusCheckEvery int,
) *DispatchService {
	if statusCheckEvery < 1 {
		statusCheckEvery = 10
	}
	return &DispatchService{
		taskRepo:         taskRepo,
		contactRepo:      contactRepo,
		campaignRepo:     campaignRepo,
		dialer:           d,
		phones:           phones,
		callbackURL:      callbackURL,
		statusCheckEvery: statusCheckEvery,
	}
}

// Run dispatches every Scheduled task of the campaign in priority order and
// returns the batch summary. Tasks are attempted exactly once per run; a
// failed task is recorded and the loop moves on.
func (s *DispatchService) Run(ctx context.Context, campaign *models.Campaign) (*models.BatchSummary, error) {
	tasks, err := s.taskRepo.ListByCampaign(ctx, campaign.ID)
	if err != nil {
		return nil, err
	}

	summary := &models.BatchSummary{}
	for _, task := range tasks {
		if task.CallStatus != models.CallStatusScheduled {
			continue
		}

		if summary.Attempted > 0 && summary.Attempted%s.statusCheckEvery == 0 && !s.stillDispatchable(ctx, campaign.ID) {
			log.Printf("campaign %s left the dispatchable state, stopping batch after %d attempts", campaign.ID, summary.Attempted)
			break
		}

		outcome := s.dispatchOne(ctx, campaign, task)
		summary.Attempted++
		if outcome.Succeeded {
			summary.Succeeded++
		} else {
			summary.Failed++
			summary.Failures = append(summary.Failures, outcome)
		}
	}

	return summary, nil
}

// dispatchOne attempts a single task and reports its outcome. All failure
// paths return a recorded outcome rather than an error: the batch continues.
func (s *DispatchService) dispatchOne(ctx context.Context, campaign *models.Campaign, task *models.CallTask) models.DispatchOutcome {
	contact, err := s.contactRepo.GetByID(ctx, task.ContactID)
	if err != nil {
		if err == sql.ErrNoRows {
			return failure(task.ID, models.DispatchErrorContactInvalid, "contact not found")
		}
		return failure(task.ID, models.DispatchErrorContactInvalid, "failed to load contact: "+err.Error())
	}
	if contact.Phone == "" {
		return failure(task.ID, models.DispatchErrorContactInvalid, "contact has no phone number")
	}

	phone, err := s.phones.Normalize(contact.Phone, campaign.CountryCode)
	if err != nil {
		return failure(task.ID, models.DispatchErrorContactInvalid, err.Error())
	}

	req := dialer.RequestForTask(task, contact, phone, s.callbackURL)
	ack, err := s.dialer.PlaceCall(ctx, req)
	if err != nil {
		log.Printf("dialer failed for task %s: %v", task.ID, err)
		return failure(task.ID, models.DispatchErrorDialer, err.Error())
	}

	// Completed here means "dispatch attempted"; the call's real outcome
	// arrives later over the vendor webhook. The conditional write loses
	// quietly when a concurrent pause or abort already moved the task.
	moved, err := s.taskRepo.MarkDispatched(ctx, task.ID)
	if err != nil {
		log.Printf("failed to record dispatch for task %s (provider call %s): %v", task.ID, ack.ProviderID, err)
		return failure(task.ID, models.DispatchErrorDialer, "dispatched but status write failed: "+err.Error())
	}
	if !moved {
		log.Printf("task %s was moved by a concurrent transition, leaving status as-is", task.ID)
	}

	return models.DispatchOutcome{
		TaskID:    task.ID,
		Succeeded: true,
		Timestamp: time.Now().UTC(),
	}
}

// stillDispatchable re-reads the campaign and reports whether the batch may
// keep going. Read failures keep the batch running; the per-task conditional
// writes remain the correctness mechanism.
func (s *DispatchService) stillDispatchable(ctx context.Context, campaignID string) bool {
	campaign, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		log.Printf("failed to re-check campaign %s status: %v", campaignID, err)
		return true
	}
	return campaign.Status == models.CampaignStatusScheduled
}

func failure(taskID string, kind models.DispatchErrorKind, reason string) models.DispatchOutcome {
	return models.DispatchOutcome{
		TaskID:    taskID,
		Succeeded: false,
		ErrorKind: kind,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
}
