package notify

import (
	"log"

	"callpilot/internal/models"
	"callpilot/internal/queue"
)

// QueueName is where campaign batch results are published for delivery
const QueueName = "campaign_notifications"

// BatchNotification is the payload sent to the notification channel after a
// dispatch batch finishes
type BatchNotification struct {
	UserID       string              `json:"user_id"`
	CampaignID   string              `json:"campaign_id"`
	CampaignName string              `json:"campaign_name"`
	Summary      models.BatchSummary `json:"summary"`
}

// Sender delivers campaign batch results to the campaign owner.
// Fire-and-forget: implementations log failures instead of propagating them.
type Sender interface {
	NotifyCampaignBatchResult(n BatchNotification)
}

// QueueSender publishes batch notifications to RabbitMQ for the delivery
// worker to pick up
type QueueSender struct {
	publisher *queue.Publisher
}

// NewQueueSender creates a queue-backed notification sender
func NewQueueSender(publisher *queue.Publisher) *QueueSender {
	return &QueueSender{publisher: publisher}
}

// NotifyCampaignBatchResult publishes the notification. Publish failures are
// logged and dropped: notification delivery never fails an operator command.
func (s *QueueSender) NotifyCampaignBatchResult(n BatchNotification) {
	if err := s.publisher.Publish(n); err != nil {
		log.Printf("Warning: failed to publish batch notification for campaign %s: %v", n.CampaignID, err)
	}
}

// NopSender discards notifications; used when no queue is configured
type NopSender struct{}

// NotifyCampaignBatchResult does nothing
func (NopSender) NotifyCampaignBatchResult(BatchNotification) {}
