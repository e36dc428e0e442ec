package service_test

import (
	"context"
	"errors"
	"testing"

	"callpilot/internal/models"
	"callpilot/internal/service"
)

func newOrchestrator(campaignRepo *mockCampaignRepo, taskRepo *mockTaskRepo, contactRepo *mockContactRepo, d *mockDialer, notifier *mockNotifier) *service.Orchestrator {
	dispatch := newDispatchService(taskRepo, contactRepo, campaignRepo, d, 10)
	return service.NewOrchestrator(campaignRepo, taskRepo, service.NewStateMachine(), dispatch, notifier)
}

func TestExecute_Launch(t *testing.T) {
	campaignRepo := newMockCampaignRepo()
	campaignRepo.GetByIDFunc = func(ctx context.Context, id string) (*models.Campaign, error) {
		return testCampaign(models.CampaignStatusPending), nil
	}
	var gotFrom, gotTo models.CampaignStatus
	campaignRepo.UpdateStatusFromFunc = func(ctx context.Context, id string, from, to models.CampaignStatus) (int64, error) {
		gotFrom, gotTo = from, to
		return 1, nil
	}

	taskRepo := newMockTaskRepo()
	var rewriteFilter []models.CallStatus
	var rewriteTarget models.CallStatus
	taskRepo.UpdateManyStatusFunc = func(ctx context.Context, campaignID string, from []models.CallStatus, to models.CallStatus) (int64, error) {
		rewriteFilter, rewriteTarget = from, to
		return 2, nil
	}
	taskRepo.ListByCampaignFunc = func(ctx context.Context, campaignID string) ([]*models.CallTask, error) {
		// ListByCampaign returns priority order; High before Low.
		return []*models.CallTask{
			scheduledTask("task-1", "contact-1", models.TaskPriorityHigh),
			scheduledTask("task-2", "contact-2", models.TaskPriorityLow),
		}, nil
	}
	contactRepo := &mockContactRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Contact, error) {
			if id == "contact-1" {
				return &models.Contact{ID: id, FirstName: "Ada", Phone: "5551234567"}, nil
			}
			return &models.Contact{ID: id, FirstName: "Grace", Phone: "5559876543"}, nil
		},
	}
	d := &mockDialer{}
	notifier := &mockNotifier{}

	orch := newOrchestrator(campaignRepo, taskRepo, contactRepo, d, notifier)
	result, err := orch.Execute(context.Background(), "camp-1", models.CommandLaunch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotFrom != models.CampaignStatusPending || gotTo != models.CampaignStatusScheduled {
		t.Errorf("expected campaign write Pending->Scheduled, got %s->%s", gotFrom, gotTo)
	}
	if rewriteFilter != nil {
		t.Errorf("expected launch to rewrite all tasks, got filter %v", rewriteFilter)
	}
	if rewriteTarget != models.CallStatusScheduled {
		t.Errorf("expected tasks rewritten to Scheduled, got %s", rewriteTarget)
	}

	if result.Status != models.CampaignStatusScheduled || result.TasksUpdated != 2 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Batch == nil {
		t.Fatal("expected launch to carry a batch summary")
	}
	if result.Batch.Attempted != 2 || result.Batch.Succeeded != 2 || result.Batch.Failed != 0 {
		t.Errorf("expected attempted=2 succeeded=2 failed=0, got %+v", result.Batch)
	}

	// Priority order: the high task dials first.
	if len(d.Placed) != 2 || d.Placed[0].PhoneNumber != "+15551234567" {
		t.Errorf("expected the high-priority task dialed first, got %v", d.Placed)
	}

	if len(notifier.Sent) != 1 {
		t.Fatalf("expected 1 batch notification, got %d", len(notifier.Sent))
	}
	n := notifier.Sent[0]
	if n.CampaignID != "camp-1" || n.UserID != "user-1" || n.Summary.Succeeded != 2 {
		t.Errorf("unexpected notification: %+v", n)
	}
}

func TestExecute_InvalidTransition(t *testing.T) {
	campaignRepo := newMockCampaignRepo()
	campaignRepo.GetByIDFunc = func(ctx context.Context, id string) (*models.Campaign, error) {
		return testCampaign(models.CampaignStatusCompleted), nil
	}
	taskRepo := newMockTaskRepo()

	orch := newOrchestrator(campaignRepo, taskRepo, &mockContactRepo{}, &mockDialer{}, &mockNotifier{})
	_, err := orch.Execute(context.Background(), "camp-1", models.CommandLaunch)

	if _, ok := err.(*service.InvalidTransitionError); !ok {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	// Nothing was written.
	if campaignRepo.Calls["UpdateStatusFrom"] != 0 {
		t.Error("campaign status must not be written on an invalid transition")
	}
	if taskRepo.Calls["UpdateManyStatus"] != 0 {
		t.Error("tasks must not be rewritten on an invalid transition")
	}
}

func TestExecute_CampaignNotFound(t *testing.T) {
	campaignRepo := newMockCampaignRepo() // GetByID defaults to sql.ErrNoRows

	orch := newOrchestrator(campaignRepo, newMockTaskRepo(), &mockContactRepo{}, &mockDialer{}, &mockNotifier{})
	_, err := orch.Execute(context.Background(), "missing", models.CommandLaunch)

	notFound, ok := err.(*service.NotFoundError)
	if !ok {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Resource != "campaign" || notFound.ID != "missing" {
		t.Errorf("unexpected error context: %+v", notFound)
	}
}

func TestExecute_ConcurrencyConflict(t *testing.T) {
	campaignRepo := newMockCampaignRepo()
	campaignRepo.GetByIDFunc = func(ctx context.Context, id string) (*models.Campaign, error) {
		return testCampaign(models.CampaignStatusPending), nil
	}
	campaignRepo.UpdateStatusFromFunc = func(ctx context.Context, id string, from, to models.CampaignStatus) (int64, error) {
		return 0, nil // another command won the race
	}
	taskRepo := newMockTaskRepo()

	orch := newOrchestrator(campaignRepo, taskRepo, &mockContactRepo{}, &mockDialer{}, &mockNotifier{})
	_, err := orch.Execute(context.Background(), "camp-1", models.CommandLaunch)

	conflict, ok := err.(*service.ConcurrencyConflictError)
	if !ok {
		t.Fatalf("expected ConcurrencyConflictError, got %v", err)
	}
	if conflict.Expected != models.CampaignStatusPending {
		t.Errorf("expected conflict on Pending, got %s", conflict.Expected)
	}
	if taskRepo.Calls["UpdateManyStatus"] != 0 {
		t.Error("tasks must not be rewritten after a lost status race")
	}
}

func TestExecute_PausePassesFilterThrough(t *testing.T) {
	campaignRepo := newMockCampaignRepo()
	campaignRepo.GetByIDFunc = func(ctx context.Context, id string) (*models.Campaign, error) {
		return testCampaign(models.CampaignStatusActive), nil
	}

	taskRepo := newMockTaskRepo()
	var rewriteFilter []models.CallStatus
	var rewriteTarget models.CallStatus
	taskRepo.UpdateManyStatusFunc = func(ctx context.Context, campaignID string, from []models.CallStatus, to models.CallStatus) (int64, error) {
		rewriteFilter, rewriteTarget = from, to
		return 3, nil
	}
	d := &mockDialer{}
	notifier := &mockNotifier{}

	orch := newOrchestrator(campaignRepo, taskRepo, &mockContactRepo{}, d, notifier)
	result, err := orch.Execute(context.Background(), "camp-1", models.CommandPause)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != models.CampaignStatusPaused || result.TasksUpdated != 3 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Batch != nil {
		t.Error("pause must not run the dispatch loop")
	}
	if len(rewriteFilter) != 2 || rewriteFilter[0] != models.CallStatusScheduled || rewriteFilter[1] != models.CallStatusActive {
		t.Errorf("unexpected task filter: %v", rewriteFilter)
	}
	if rewriteTarget != models.CallStatusPaused {
		t.Errorf("expected tasks paused, got %s", rewriteTarget)
	}
	if len(d.Placed) != 0 {
		t.Error("pause must not place calls")
	}
	if len(notifier.Sent) != 0 {
		t.Error("pause must not notify")
	}
}

func TestExecute_TaskRewriteFailureSurfacesAfterCampaignWrite(t *testing.T) {
	campaignRepo := newMockCampaignRepo()
	campaignRepo.GetByIDFunc = func(ctx context.Context, id string) (*models.Campaign, error) {
		return testCampaign(models.CampaignStatusActive), nil
	}
	taskRepo := newMockTaskRepo()
	taskRepo.UpdateManyStatusFunc = func(ctx context.Context, campaignID string, from []models.CallStatus, to models.CallStatus) (int64, error) {
		return 0, errors.New("connection reset")
	}

	orch := newOrchestrator(campaignRepo, taskRepo, &mockContactRepo{}, &mockDialer{}, &mockNotifier{})
	_, err := orch.Execute(context.Background(), "camp-1", models.CommandPause)
	if err == nil {
		t.Fatal("expected error when the task rewrite fails")
	}
	if campaignRepo.Calls["UpdateStatusFrom"] != 1 {
		t.Error("campaign write happens before the task rewrite")
	}
}

func TestGetCampaign(t *testing.T) {
	campaignRepo := newMockCampaignRepo()
	campaignRepo.GetWithStatsFunc = func(ctx context.Context, id string) (*models.CampaignWithStats, error) {
		return &models.CampaignWithStats{
			Campaign: *testCampaign(models.CampaignStatusPaused),
			Stats:    models.CampaignStats{Total: 5, Paused: 5},
		}, nil
	}

	orch := newOrchestrator(campaignRepo, newMockTaskRepo(), &mockContactRepo{}, &mockDialer{}, &mockNotifier{})
	campaign, err := orch.GetCampaign(context.Background(), "camp-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []models.Command{models.CommandResume, models.CommandAbort}
	if len(campaign.AllowedCommands) != len(want) {
		t.Fatalf("expected commands %v, got %v", want, campaign.AllowedCommands)
	}
	for i := range want {
		if campaign.AllowedCommands[i] != want[i] {
			t.Errorf("expected commands %v, got %v", want, campaign.AllowedCommands)
			break
		}
	}
}

func TestGetCampaign_NotFound(t *testing.T) {
	orch := newOrchestrator(newMockCampaignRepo(), newMockTaskRepo(), &mockContactRepo{}, &mockDialer{}, &mockNotifier{})
	_, err := orch.GetCampaign(context.Background(), "missing")
	if _, ok := err.(*service.NotFoundError); !ok {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
