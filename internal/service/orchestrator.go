package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"callpilot/internal/models"
	"callpilot/internal/notify"
	"callpilot/internal/repository"
)

// CommandResult is what an operator command returns: the transition that was
// applied plus, for launch, the dispatch batch summary.
type CommandResult struct {
	CampaignID   string                `json:"campaign_id"`
	Command      models.Command        `json:"command"`
	Status       models.CampaignStatus `json:"status"`
	TasksUpdated int64                 `json:"tasks_updated"`
	Batch        *models.BatchSummary  `json:"batch,omitempty"`
}

// Orchestrator is the single entry point for operator commands against a
// campaign. It applies the state machine, persists the campaign status under
// an optimistic guard, rewrites the matching tasks in bulk, and for launch
// runs the dispatch loop.
type Orchestrator struct {
	campaignRepo repository.CampaignRepository
	taskRepo     repository.TaskRepository
	machine      *StateMachine
	dispatch     *DispatchService
	notifier     notify.Sender
}

// NewOrchestrator creates a new campaign orchestrator
func NewOrchestrator(
	campaignRepo repository.CampaignRepository,
	taskRepo repository.TaskRepository,
	machine *StateMachine,
	dispatch *DispatchService,
	notifier notify.Sender,
) *Orchestrator {
	if notifier == nil {
		notifier = notify.NopSender{}
	}
	return &Orchestrator{
		campaignRepo: campaignRepo,
		taskRepo:     taskRepo,
		machine:      machine,
		dispatch:     dispatch,
		notifier:     notifier,
	}
}

// Execute runs one operator command against one campaign.
//
// Write order is fixed: the campaign row first (source of truth for what
// should happen), then the bulk task rewrite. There is no transaction
// spanning both tables; the task rewrite is idempotent, so a failure after
// the campaign write is surfaced and safe to re-run.
func (o *Orchestrator) Execute(ctx context.Context, campaignID string, cmd models.Command) (*CommandResult, error) {
	campaign, err := o.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &NotFoundError{Resource: "campaign", ID: campaignID}
		}
		return nil, err
	}

	transition, err := o.machine.Apply(campaign.Status, cmd)
	if err != nil {
		return nil, err
	}

	affected, err := o.campaignRepo.UpdateStatusFrom(ctx, campaign.ID, campaign.Status, transition.To)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Another command won the race since our read.
		return nil, &ConcurrencyConflictError{CampaignID: campaign.ID, Expected: campaign.Status}
	}

	tasksUpdated, err := o.taskRepo.UpdateManyStatus(ctx, campaign.ID, transition.TaskFilter, transition.TaskTarget)
	if err != nil {
		return nil, fmt.Errorf("campaign %s moved to %s but task rewrite failed (re-run %s to reconcile): %w",
			campaign.ID, transition.To, cmd, err)
	}

	result := &CommandResult{
		CampaignID:   campaign.ID,
		Command:      cmd,
		Status:       transition.To,
		TasksUpdated: tasksUpdated,
	}

	if cmd == models.CommandLaunch {
		launched := *campaign
		launched.Status = transition.To

		summary, err := o.dispatch.Run(ctx, &launched)
		if err != nil {
			return nil, fmt.Errorf("campaign %s launched but dispatch failed: %w", campaign.ID, err)
		}
		result.Batch = summary

		o.notifier.NotifyCampaignBatchResult(notify.BatchNotification{
			UserID:       campaign.UserID,
			CampaignID:   campaign.ID,
			CampaignName: campaign.Name,
			Summary:      *summary,
		})

		log.Printf("campaign %s launched: attempted=%d succeeded=%d failed=%d",
			campaign.ID, summary.Attempted, summary.Succeeded, summary.Failed)
	}

	return result, nil
}

// GetCampaign returns a campaign with task statistics and the commands an
// operator may issue from its current status
func (o *Orchestrator) GetCampaign(ctx context.Context, campaignID string) (*models.CampaignWithStats, error) {
	campaign, err := o.campaignRepo.GetWithStats(ctx, campaignID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &NotFoundError{Resource: "campaign", ID: campaignID}
		}
		return nil, err
	}

	campaign.AllowedCommands = o.machine.AllowedCommands(campaign.Status)
	return campaign, nil
}
