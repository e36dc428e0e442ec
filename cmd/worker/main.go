package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"callpilot/internal/config"
	"callpilot/internal/notify"
	"callpilot/internal/queue"
	"callpilot/internal/repository"
	"callpilot/internal/service"
)

func main() {
	// Load .env file (ignore error in production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.GetDatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Connected to database")

	campaignRepo := repository.NewCampaignRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	sweeper := service.NewCompletionSweeper(campaignRepo, taskRepo)

	conn, err := queue.NewConnection(cfg.GetRabbitMQURL())
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer conn.Close()

	consumer, err := queue.NewConsumer(conn, notify.QueueName, handleBatchNotification)
	if err != nil {
		log.Fatalf("Failed to create consumer: %v", err)
	}

	if err := consumer.Start(); err != nil {
		log.Fatalf("Failed to start consumer: %v", err)
	}
	log.Printf("Worker started, consuming from queue: %s", notify.QueueName)

	// Periodically close out campaigns whose tasks have all been dispatched
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	go runSweepLoop(sweepCtx, sweeper, cfg.Worker.SweepInterval)

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	cancelSweep()
	if err := consumer.Stop(); err != nil {
		log.Printf("Error stopping consumer: %v", err)
	}

	log.Println("Worker stopped")
}

// runSweepLoop runs the completion sweep on a fixed interval until ctx is
// cancelled
func runSweepLoop(ctx context.Context, sweeper *service.CompletionSweeper, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Completion sweep running every %v", interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			completed, err := sweeper.Sweep(ctx)
			if err != nil {
				log.Printf("Completion sweep failed: %v", err)
				continue
			}
			if completed > 0 {
				log.Printf("Completion sweep closed %d campaign(s)", completed)
			}
		}
	}
}

// handleBatchNotification delivers one batch result to the campaign owner.
// Delivery here is a log line; email/SMS senders hang off this same payload
// outside the orchestration core.
func handleBatchNotification(body []byte) error {
	var n notify.BatchNotification
	if err := json.Unmarshal(body, &n); err != nil {
		return fmt.Errorf("failed to unmarshal batch notification: %w", err)
	}

	log.Printf("Campaign %q (%s) batch finished for user %s: attempted=%d succeeded=%d failed=%d",
		n.CampaignName, n.CampaignID, n.UserID,
		n.Summary.Attempted, n.Summary.Succeeded, n.Summary.Failed)

	for _, f := range n.Summary.Failures {
		log.Printf("  task %s failed (%s): %s", f.TaskID, f.ErrorKind, f.Reason)
	}

	return nil
}
