package service

import (
	"context"
	"log"

	"callpilot/internal/models"
	"callpilot/internal/repository"
)

// CompletionSweeper closes out Scheduled campaigns whose every call task has
// been dispatched. Run periodically by the background worker.
type CompletionSweeper struct {
	campaignRepo repository.CampaignRepository
	taskRepo     repository.TaskRepository
}

// NewCompletionSweeper creates a new completion sweeper
func NewCompletionSweeper(campaignRepo repository.CampaignRepository, taskRepo repository.TaskRepository) *CompletionSweeper {
	return &CompletionSweeper{
		campaignRepo: campaignRepo,
		taskRepo:     taskRepo,
	}
}

// Sweep moves every Scheduled campaign with all tasks Completed to Completed
// and returns how many campaigns it closed. Campaigns without tasks are
// skipped. The status write keeps the optimistic guard, so a sweep racing an
// operator command loses cleanly.
func (s *CompletionSweeper) Sweep(ctx context.Context) (int, error) {
	campaigns, err := s.campaignRepo.ListByStatus(ctx, models.CampaignStatusScheduled)
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, campaign := range campaigns {
		total, incomplete, err := s.taskRepo.CountIncomplete(ctx, campaign.ID)
		if err != nil {
			log.Printf("failed to count tasks for campaign %s: %v", campaign.ID, err)
			continue
		}
		if total == 0 || incomplete > 0 {
			continue
		}

		affected, err := s.campaignRepo.UpdateStatusFrom(ctx, campaign.ID, models.CampaignStatusScheduled, models.CampaignStatusCompleted)
		if err != nil {
			log.Printf("failed to complete campaign %s: %v", campaign.ID, err)
			continue
		}
		if affected > 0 {
			log.Printf("campaign %s completed: all call tasks dispatched", campaign.ID)
			completed++
		}
	}

	return completed, nil
}
