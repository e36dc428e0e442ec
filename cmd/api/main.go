package main

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"callpilot/internal/config"
	"callpilot/internal/dialer"
	"callpilot/internal/handler"
	"callpilot/internal/middleware"
	"callpilot/internal/notify"
	"callpilot/internal/queue"
	"callpilot/internal/repository"
	"callpilot/internal/service"
)

const version = "1.0.0"

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

	// Repositories
	campaignRepo := repository.NewCampaignRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	contactRepo := repository.NewContactRepository(db)

	// Notification sender: queue-backed when RabbitMQ is reachable, dropped
	// otherwise. Notifications are fire-and-forget, they never block commands.
	var notifier notify.Sender = notify.NopSender{}
	conn, err := queue.NewConnection(cfg.GetRabbitMQURL())
	if err != nil {
		log.Printf("Warning: RabbitMQ unavailable, batch notifications disabled: %v", err)
	} else {
		defer conn.Close()
		publisher, err := queue.NewPublisher(conn, notify.QueueName)
		if err != nil {
			log.Printf("Warning: failed to create notification publisher: %v", err)
		} else {
			notifier = notify.NewQueueSender(publisher)
		}
	}

	// Services
	machine := service.NewStateMachine()
	phones := service.NewPhoneResolver()
	voiceDialer := dialer.NewVapiDialer(cfg.Dialer)
	dispatchSvc := service.NewDispatchService(
		taskRepo,
		contactRepo,
		campaignRepo,
		voiceDialer,
		phones,
		cfg.Dialer.CallbackURL,
		cfg.Worker.StatusCheckEvery,
	)
	orchestrator := service.NewOrchestrator(campaignRepo, taskRepo, machine, dispatchSvc, notifier)
	healthChecker := service.NewHealthChecker(db, cfg.GetRabbitMQURL(), version)

	// Router
	router := mux.NewRouter()
	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)

	handler.NewCampaignHandler(orchestrator).Register(router)
	router.HandleFunc("/health", handler.NewHealthHandler(healthChecker).HandleHealth).Methods("GET")

	port := ":" + cfg.Server.Port
	log.Printf("API server starting on port %s (env: %s)", port, cfg.Env)

	if err := http.ListenAndServe(port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
