package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"callpilot/internal/models"
	"callpilot/internal/service"
)

// CampaignCommander is the slice of the orchestrator the HTTP layer needs
type CampaignCommander interface {
	Execute(ctx context.Context, campaignID string, cmd models.Command) (*service.CommandResult, error)
	GetCampaign(ctx context.Context, campaignID string) (*models.CampaignWithStats, error)
}

// CampaignHandler handles HTTP requests for campaign lifecycle operations
type CampaignHandler struct {
	orchestrator CampaignCommander
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(orchestrator CampaignCommander) *CampaignHandler {
	return &CampaignHandler{orchestrator: orchestrator}
}

// Register wires the campaign routes onto the router
func (h *CampaignHandler) Register(router *mux.Router) {
	router.HandleFunc("/campaigns/{id}", h.Get).Methods("GET")
	router.HandleFunc("/campaigns/{id}/{command}", h.Command).Methods("POST")
}

// Command handles POST /campaigns/{id}/{command} - runs an operator command
// (launch, pause, resume, abort) against a campaign
func (h *CampaignHandler) Command(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	id := vars["id"]
	if id == "" {
		WriteValidationError(w, "campaign ID is required")
		return
	}

	cmd, ok := models.ParseCommand(vars["command"])
	if !ok {
		WriteValidationError(w, "invalid command: must be one of launch, pause, resume, abort")
		return
	}

	result, err := h.orchestrator.Execute(r.Context(), id, cmd)
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteOK(w, result)
}

// Get handles GET /campaigns/{id} - returns a campaign with task statistics
// and the commands currently allowed against it
func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	id := vars["id"]
	if id == "" {
		WriteValidationError(w, "campaign ID is required")
		return
	}

	campaign, err := h.orchestrator.GetCampaign(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteOK(w, campaign)
}
