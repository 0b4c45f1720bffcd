package main

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsscheduler "github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gorilla/mux"

	"ms-reminders/internal/auth"
	"ms-reminders/internal/config"
	"ms-reminders/internal/engine"
	"ms-reminders/internal/eventbridge"
	"ms-reminders/internal/handlers"
	"ms-reminders/internal/kafka"
	"ms-reminders/internal/services"
	"ms-reminders/internal/trigger"
)

// Main application loop
func main() {
	cfg := config.Load()

	// Load AWS configuration with credentials from environment variables
	awsOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}

	// Add credentials if they are provided
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		log.Println("Using AWS credentials from environment variables")
		awsOptions = append(awsOptions, awsconfig.WithCredentialsProvider(
			aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     cfg.AWSAccessKeyID,
					SecretAccessKey: cfg.AWSSecretAccessKey,
				}, nil
			}),
		))
	} else {
		log.Println("No AWS credentials provided in environment variables, falling back to default credentials")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsOptions...)
	if err != nil {
		log.Fatalf("unable to load AWS SDK config, %v", err)
	}
	sqsClient := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.AWSEndpoint != "" {
			log.Printf("Using LocalStack endpoint for AWS services: %s", cfg.AWSEndpoint)
			o.BaseEndpoint = &cfg.AWSEndpoint
		}
	})
	schedulerClient := awsscheduler.NewFromConfig(awsCfg)
	log.Println("AWS clients initialized")

	// Initialize database service
	dbConfig := services.DatabaseConfig{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		DBName:   cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	}
	dbService, err := services.NewDatabaseService(dbConfig)
	if err != nil {
		log.Fatalf("Failed to initialize database service: %v", err)
	}
	defer dbService.Close()

	if err := dbService.RunMigrations(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize email service
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.FromEmail, cfg.FromName)

	// Initialize the dispatch engine
	repository := services.NewReminderRepository(dbService.DB)
	resolver := engine.NewTimeResolver(cfg.DefaultTimezone)
	eng := engine.NewEngine(repository, emailService, resolver, cfg)

	// Wire the Kafka delivery audit publisher if a broker is configured
	deliveryPublisher := kafka.NewDeliveryPublisher(cfg)
	if deliveryPublisher.Enabled() {
		log.Printf("Publishing delivery audit records to topic %s at %s", cfg.KafkaDeliveryTopic, cfg.KafkaURL)
		eng.Audit = deliveryPublisher
		defer deliveryPublisher.Close()
	} else {
		log.Println("Kafka URL not configured, skipping delivery audit publisher setup")
	}

	// Wire the EventBridge prewarmer if the scheduler role and trigger queue are configured
	if cfg.SchedulerRoleARN != "" && cfg.SQSTriggerQueueARN != "" {
		log.Printf("Prewarming one-shot schedules into group %s", cfg.SchedulerGroupName)
		eng.Prewarmer = eventbridge.NewService(cfg, schedulerClient)
	} else {
		log.Println("Scheduler role or trigger queue ARN not configured, skipping prewarm setup")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the trigger queue processor in a separate goroutine if the queue URL is configured
	if cfg.SQSTriggerQueueURL != "" {
		log.Printf("Starting trigger processor for queue: %s", cfg.SQSTriggerQueueURL)
		triggerProcessor := trigger.NewProcessor(sqsClient, cfg, eng)
		var triggerWg sync.WaitGroup
		triggerWg.Add(1)
		go func() {
			defer triggerWg.Done()
			if err := triggerProcessor.ProcessMessages(ctx); err != nil {
				log.Printf("Error processing trigger messages: %v", err)
			}
		}()
		// We don't wait for triggerWg.Wait() so other processing can continue
	} else {
		log.Println("Trigger queue URL not configured, skipping trigger processor setup")
	}

	// Start the scan loop
	go eng.Start(ctx)

	// Set up the HTTP server for probes and the manual trigger API
	setupHTTPServer(cfg, eng, dbService)
}

// setupHTTPServer configures and starts the HTTP server
func setupHTTPServer(cfg config.Config, eng *engine.Engine, dbService *services.DatabaseService) {
	router := mux.NewRouter()

	// Apply CORS middleware to all routes
	router.Use(auth.CORSMiddleware(cfg))

	// Engine API routes with authentication; the manual scan trigger is admin-only
	engineHandler := handlers.NewEngineHandler(eng, cfg)
	apiRouter := router.PathPrefix("/api/reminders/engine/v1").Subrouter()
	apiRouter.Use(auth.AuthMiddleware)
	apiRouter.Use(auth.AdminMiddleware)
	apiRouter.HandleFunc("/run", engineHandler.RunScan).Methods("POST")

	// Create health handler for health check endpoints
	healthHandler := handlers.NewHealthHandler(dbService)

	// Healthcheck endpoints (no authentication required)
	router.HandleFunc("/api/reminders/health", healthHandler.HandleHealth).Methods("GET")

	// K8s probe endpoints
	router.HandleFunc("/healthz", healthHandler.HandleHealth).Methods("GET")
	router.HandleFunc("/readyz", healthHandler.HandleReadiness).Methods("GET")
	router.HandleFunc("/livez", healthHandler.HandleLiveness).Methods("GET")

	serverAddr := cfg.ServerHost + ":" + cfg.ServerPort
	log.Printf("Starting HTTP server on %s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	log.Fatal(server.ListenAndServe())
}
