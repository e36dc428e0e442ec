package dialer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"callpilot/internal/config"
)

// defaultVoiceID is used when a call request carries no voice override
const defaultVoiceID = "9c6NBxIEEDowC6QfhIaO"

// VapiDialer places calls through a Vapi-style voice-AI API: one POST per
// call, bearer auth, synchronous acknowledgment of initiation only.
type VapiDialer struct {
	baseURL      string
	apiKey       string
	callerNumber string
	httpClient   *http.Client
}

// NewVapiDialer creates a dialer against the configured vendor endpoint
func NewVapiDialer(cfg config.DialerConfig) *VapiDialer {
	return &VapiDialer{
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		callerNumber: cfg.CallerNumber,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
	}
}

// callPayload is the vendor wire format for starting a call
type callPayload struct {
	Customer struct {
		Number string `json:"number"`
		Name   string `json:"name"`
	} `json:"customer"`
	PhoneNumber struct {
		Number string `json:"number"`
	} `json:"phoneNumber"`
	AssistantOverrides struct {
		FirstMessage string `json:"firstMessage"`
		Voice        struct {
			VoiceID         string  `json:"voiceId"`
			Provider        string  `json:"provider"`
			Stability       float64 `json:"stability"`
			SimilarityBoost float64 `json:"similarityBoost"`
		} `json:"voice"`
		Metadata struct {
			Reason      string `json:"reason"`
			CallbackURL string `json:"callbackUrl,omitempty"`
		} `json:"metadata"`
	} `json:"assistantOverrides"`
}

// callResponse is the vendor acknowledgment payload
type callResponse struct {
	ID string `json:"id"`
}

// PlaceCall asks the vendor to initiate one outbound call
func (d *VapiDialer) PlaceCall(ctx context.Context, req CallRequest) (*CallAck, error) {
	payload := callPayload{}
	payload.Customer.Number = req.PhoneNumber
	payload.Customer.Name = req.ContactName
	payload.PhoneNumber.Number = d.callerNumber
	payload.AssistantOverrides.FirstMessage = req.FirstMessage
	payload.AssistantOverrides.Voice.Provider = "11labs"
	payload.AssistantOverrides.Voice.Stability = 0.30
	payload.AssistantOverrides.Voice.SimilarityBoost = 0.75
	payload.AssistantOverrides.Voice.VoiceID = req.VoiceID
	if payload.AssistantOverrides.Voice.VoiceID == "" {
		payload.AssistantOverrides.Voice.VoiceID = defaultVoiceID
	}
	payload.AssistantOverrides.Metadata.Reason = req.Reason
	payload.AssistantOverrides.Metadata.CallbackURL = req.CallbackURL

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal call payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/call", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build call request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+d.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("dialer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("dialer rejected call: status %d: %s", resp.StatusCode, string(detail))
	}

	var ack callResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return nil, fmt.Errorf("failed to decode dialer acknowledgment: %w", err)
	}

	return &CallAck{ProviderID: ack.ID}, nil
}

// interface check
var _ Dialer = (*VapiDialer)(nil)
