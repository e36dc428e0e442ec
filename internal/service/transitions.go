package service

import "callpilot/internal/models"

// Transition is the computed effect of applying an operator command: the new
// campaign status plus the matching bulk task rewrite. A nil TaskFilter
// matches every task of the campaign.
type Transition struct {
	To         models.CampaignStatus
	TaskFilter []models.CallStatus
	TaskTarget models.CallStatus
}

// transitionRule pairs a command's allowed source statuses with its effect
type transitionRule struct {
	sources    []models.CampaignStatus
	to         models.CampaignStatus
	taskFilter []models.CallStatus
	taskTarget models.CallStatus
}

// transitionTable is the single source of truth for legal campaign
// transitions and their paired task rewrites.
//
// Two asymmetries are intentional, matching observed product behavior:
// resume moves the campaign to Resumed but its tasks back to Scheduled, and
// abort's task filter excludes Aborted so a repeated abort touches no rows.
var transitionTable = map[models.Command]transitionRule{
	models.CommandLaunch: {
		sources:    []models.CampaignStatus{models.CampaignStatusPending},
		to:         models.CampaignStatusScheduled,
		taskFilter: nil, // all tasks
		taskTarget: models.CallStatusScheduled,
	},
	models.CommandPause: {
		sources: []models.CampaignStatus{
			models.CampaignStatusScheduled,
			models.CampaignStatusActive,
			models.CampaignStatusResumed,
		},
		to: models.CampaignStatusPaused,
		taskFilter: []models.CallStatus{
			models.CallStatusScheduled,
			models.CallStatusActive,
		},
		taskTarget: models.CallStatusPaused,
	},
	models.CommandResume: {
		sources:    []models.CampaignStatus{models.CampaignStatusPaused},
		to:         models.CampaignStatusResumed,
		taskFilter: []models.CallStatus{models.CallStatusPaused},
		taskTarget: models.CallStatusScheduled,
	},
	models.CommandAbort: {
		sources: []models.CampaignStatus{
			models.CampaignStatusPending,
			models.CampaignStatusScheduled,
			models.CampaignStatusActive,
			models.CampaignStatusResumed,
			models.CampaignStatusPaused,
			models.CampaignStatusAborted,
		},
		to: models.CampaignStatusAborted,
		taskFilter: []models.CallStatus{
			models.CallStatusPending,
			models.CallStatusScheduled,
			models.CallStatusActive,
			models.CallStatusPaused,
		},
		taskTarget: models.CallStatusAborted,
	},
}

// StateMachine validates and computes campaign status transitions. It is
// pure: persisting the new status, conditioned on the campaign still being in
// the expected source status, is the caller's job.
type StateMachine struct{}

// NewStateMachine creates a new campaign state machine
func NewStateMachine() *StateMachine {
	return &StateMachine{}
}

// Apply decides whether cmd is legal from the current status and returns the
// transition to carry out. Completed is terminal: no command leaves it.
func (m *StateMachine) Apply(current models.CampaignStatus, cmd models.Command) (Transition, error) {
	rule, ok := transitionTable[cmd]
	if !ok {
		return Transition{}, &InvalidTransitionError{From: current, Command: cmd}
	}

	for _, source := range rule.sources {
		if current == source {
			return Transition{
				To:         rule.to,
				TaskFilter: rule.taskFilter,
				TaskTarget: rule.taskTarget,
			}, nil
		}
	}

	return Transition{}, &InvalidTransitionError{From: current, Command: cmd}
}

// AllowedCommands returns the commands an operator may issue from the given
// status. Presentation layers derive their buttons from this instead of
// keeping their own status table.
func (m *StateMachine) AllowedCommands(current models.CampaignStatus) []models.Command {
	commands := []models.Command{}
	for _, cmd := range []models.Command{
		models.CommandLaunch,
		models.CommandPause,
		models.CommandResume,
		models.CommandAbort,
	} {
		for _, source := range transitionTable[cmd].sources {
			if current == source {
				commands = append(commands, cmd)
				break
			}
		}
	}
	return commands
}
