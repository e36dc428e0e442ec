package dialer

import (
	"context"

	"callpilot/internal/models"
)

// CallRequest carries everything the voice vendor needs to start one
// outbound call. PhoneNumber must already be E.164.
type CallRequest struct {
	ContactName  string
	PhoneNumber  string
	Reason       string
	FirstMessage string
	VoiceID      string
	CallbackURL  string
}

// CallAck acknowledges that a call was initiated. The call's eventual
// outcome arrives later over the vendor's webhook, outside this core.
type CallAck struct {
	ProviderID string
}

// Dialer abstracts the telephony/voice-AI vendor that places calls
type Dialer interface {
	PlaceCall(ctx context.Context, req CallRequest) (*CallAck, error)
}

// RequestForTask builds the vendor call request for one task and its contact
func RequestForTask(task *models.CallTask, contact *models.Contact, phone, callbackURL string) CallRequest {
	firstMessage := "Calling " + contact.FirstName + " for " + task.CallSubject
	if task.FirstMessage != nil && *task.FirstMessage != "" {
		firstMessage = *task.FirstMessage
	}

	return CallRequest{
		ContactName:  contact.FullName(),
		PhoneNumber:  phone,
		Reason:       task.CallSubject,
		FirstMessage: firstMessage,
		CallbackURL:  callbackURL,
	}
}
