package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"callpilot/internal/handler"
	"callpilot/internal/models"
	"callpilot/internal/service"
)

// mockCommander mocks the orchestrator slice the HTTP layer depends on
type mockCommander struct {
	ExecuteFunc     func(ctx context.Context, campaignID string, cmd models.Command) (*service.CommandResult, error)
	GetCampaignFunc func(ctx context.Context, campaignID string) (*models.CampaignWithStats, error)
}

func (m *mockCommander) Execute(ctx context.Context, campaignID string, cmd models.Command) (*service.CommandResult, error) {
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, campaignID, cmd)
	}
	return nil, errors.New("not stubbed")
}

func (m *mockCommander) GetCampaign(ctx context.Context, campaignID string) (*models.CampaignWithStats, error) {
	if m.GetCampaignFunc != nil {
		return m.GetCampaignFunc(ctx, campaignID)
	}
	return nil, errors.New("not stubbed")
}

func setupRouter(commander handler.CampaignCommander) *mux.Router {
	router := mux.NewRouter()
	handler.NewCampaignHandler(commander).Register(router)
	return router
}

func assertStatus(t *testing.T, resp *httptest.ResponseRecorder, want int) {
	t.Helper()
	if resp.Code != want {
		t.Errorf("expected status %d, got %d (body: %s)", want, resp.Code, resp.Body.String())
	}
}

func assertErrorCode(t *testing.T, resp *httptest.ResponseRecorder, want string) {
	t.Helper()
	var errResp handler.ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	if errResp.Error.Code != want {
		t.Errorf("expected error code %s, got %s", want, errResp.Error.Code)
	}
}

func TestCommand_Launch(t *testing.T) {
	commander := &mockCommander{
		ExecuteFunc: func(ctx context.Context, campaignID string, cmd models.Command) (*service.CommandResult, error) {
			if campaignID != "camp-1" || cmd != models.CommandLaunch {
				t.Errorf("unexpected call: id=%s cmd=%s", campaignID, cmd)
			}
			return &service.CommandResult{
				CampaignID:   campaignID,
				Command:      cmd,
				Status:       models.CampaignStatusScheduled,
				TasksUpdated: 3,
				Batch:        &models.BatchSummary{Attempted: 3, Succeeded: 2, Failed: 1},
			}, nil
		},
	}
	router := setupRouter(commander)

	req := httptest.NewRequest("POST", "/campaigns/camp-1/launch", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assertStatus(t, resp, http.StatusOK)

	var result service.CommandResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if result.Status != models.CampaignStatusScheduled || result.TasksUpdated != 3 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Batch == nil || result.Batch.Attempted != 3 {
		t.Errorf("expected batch summary in response, got %+v", result.Batch)
	}
}

func TestCommand_UnknownCommand(t *testing.T) {
	executed := false
	commander := &mockCommander{
		ExecuteFunc: func(ctx context.Context, campaignID string, cmd models.Command) (*service.CommandResult, error) {
			executed = true
			return nil, nil
		},
	}
	router := setupRouter(commander)

	req := httptest.NewRequest("POST", "/campaigns/camp-1/restart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assertStatus(t, resp, http.StatusBadRequest)
	assertErrorCode(t, resp, "VALIDATION_ERROR")
	if executed {
		t.Error("unknown commands must be rejected before reaching the orchestrator")
	}
}

func TestCommand_InvalidTransition(t *testing.T) {
	commander := &mockCommander{
		ExecuteFunc: func(ctx context.Context, campaignID string, cmd models.Command) (*service.CommandResult, error) {
			return nil, &service.InvalidTransitionError{
				From:    models.CampaignStatusCompleted,
				Command: cmd,
			}
		},
	}
	router := setupRouter(commander)

	req := httptest.NewRequest("POST", "/campaigns/camp-1/launch", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assertStatus(t, resp, http.StatusBadRequest)
	assertErrorCode(t, resp, "INVALID_TRANSITION")
}

func TestCommand_ConcurrencyConflict(t *testing.T) {
	commander := &mockCommander{
		ExecuteFunc: func(ctx context.Context, campaignID string, cmd models.Command) (*service.CommandResult, error) {
			return nil, &service.ConcurrencyConflictError{
				CampaignID: campaignID,
				Expected:   models.CampaignStatusPending,
			}
		},
	}
	router := setupRouter(commander)

	req := httptest.NewRequest("POST", "/campaigns/camp-1/launch", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assertStatus(t, resp, http.StatusConflict)
	assertErrorCode(t, resp, "CONFLICT")
}

func TestCommand_CampaignNotFound(t *testing.T) {
	commander := &mockCommander{
		ExecuteFunc: func(ctx context.Context, campaignID string, cmd models.Command) (*service.CommandResult, error) {
			return nil, &service.NotFoundError{Resource: "campaign", ID: campaignID}
		},
	}
	router := setupRouter(commander)

	req := httptest.NewRequest("POST", "/campaigns/missing/abort", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assertStatus(t, resp, http.StatusNotFound)
	assertErrorCode(t, resp, "RESOURCE_NOT_FOUND")
}

func TestCommand_UnexpectedErrorIsOpaque(t *testing.T) {
	commander := &mockCommander{
		ExecuteFunc: func(ctx context.Context, campaignID string, cmd models.Command) (*service.CommandResult, error) {
			return nil, errors.New("pq: connection refused")
		},
	}
	router := setupRouter(commander)

	req := httptest.NewRequest("POST", "/campaigns/camp-1/pause", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assertStatus(t, resp, http.StatusInternalServerError)
	assertErrorCode(t, resp, "INTERNAL_ERROR")

	// Database details stay out of the response body.
	if body := resp.Body.String(); strings.Contains(body, "pq:") || strings.Contains(body, "connection") {
		t.Errorf("internal error leaked into response: %s", body)
	}
}

func TestGet(t *testing.T) {
	commander := &mockCommander{
		GetCampaignFunc: func(ctx context.Context, campaignID string) (*models.CampaignWithStats, error) {
			return &models.CampaignWithStats{
				Campaign: models.Campaign{
					ID:     campaignID,
					Name:   "Q3 Renewals",
					Status: models.CampaignStatusPaused,
				},
				Stats:           models.CampaignStats{Total: 4, Paused: 4},
				AllowedCommands: []models.Command{models.CommandResume, models.CommandAbort},
			}, nil
		},
	}
	router := setupRouter(commander)

	req := httptest.NewRequest("GET", "/campaigns/camp-1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assertStatus(t, resp, http.StatusOK)

	var campaign models.CampaignWithStats
	if err := json.Unmarshal(resp.Body.Bytes(), &campaign); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if campaign.Status != models.CampaignStatusPaused || campaign.Stats.Total != 4 {
		t.Errorf("unexpected campaign: %+v", campaign)
	}
	if len(campaign.AllowedCommands) != 2 {
		t.Errorf("expected 2 allowed commands, got %v", campaign.AllowedCommands)
	}
}

func TestGet_NotFound(t *testing.T) {
	commander := &mockCommander{
		GetCampaignFunc: func(ctx context.Context, campaignID string) (*models.CampaignWithStats, error) {
			return nil, &service.NotFoundError{Resource: "campaign", ID: campaignID}
		},
	}
	router := setupRouter(commander)

	req := httptest.NewRequest("GET", "/campaigns/missing", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assertStatus(t, resp, http.StatusNotFound)
	assertErrorCode(t, resp, "RESOURCE_NOT_FOUND")
}
