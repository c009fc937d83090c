package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/prospec-crm/internal/infra/database"
	"github.com/xavierca1/prospec-crm/internal/infra/http/handlers"
	"github.com/xavierca1/prospec-crm/internal/infra/http/middleware"
	"github.com/xavierca1/prospec-crm/internal/infra/integration/apify"
	"github.com/xavierca1/prospec-crm/internal/infra/integration/apollo"
	"github.com/xavierca1/prospec-crm/internal/infra/integration/resend"
	"github.com/xavierca1/prospec-crm/internal/infra/integration/unipile"
	"github.com/xavierca1/prospec-crm/internal/infra/mail"
	"github.com/xavierca1/prospec-crm/internal/infra/queue"
	"github.com/xavierca1/prospec-crm/internal/infra/worker"
	"github.com/xavierca1/prospec-crm/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		os.Getenv("RABBITMQ_USER"), os.Getenv("RABBITMQ_PASS"),
		os.Getenv("RABBITMQ_HOST"), os.Getenv("RABBITMQ_PORT"),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	callbackBaseURL := os.Getenv("CALLBACK_BASE_URL")

	// 1. Repositórios
	contactRepo := database.NewContactRepository(db)
	creditRepo := database.NewCreditRepository(db)
	campaignRepo := database.NewCampaignRepository(db)
	recipientRepo := database.NewCampaignRecipientRepository(db)
	blocklistRepo := database.NewBlocklistRepository(db)
	eventRepo := database.NewEventRepository(db)
	integrationRepo := database.NewIntegrationRepository(db)

	// 2. Clientes externos e adapters
	apifyClient := apify.NewClient(
		os.Getenv("APIFY_TOKEN"), os.Getenv("APIFY_URL"), os.Getenv("APIFY_ACTOR_ID"),
	)
	apolloClient := apollo.NewClient(os.Getenv("APOLLO_API_KEY"), os.Getenv("APOLLO_URL"))
	resendClient := resend.NewClient(os.Getenv("RESEND_API_KEY"), os.Getenv("RESEND_URL"))
	unipileClient := unipile.NewClient(os.Getenv("UNIPILE_TOKEN"), os.Getenv("UNIPILE_URL"))
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)

	mailPort, _ := strconv.Atoi(os.Getenv("MAIL_PORT"))
	if mailPort == 0 {
		mailPort = 587
	}
	mailSender := mail.NewEmailSender(
		os.Getenv("MAIL_HOST"), mailPort, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
		os.Getenv("ALERT_FROM"), os.Getenv("ALERT_TO"),
	)

	// 3. UseCases
	enrichUC := usecase.NewEnrichContactUseCase(contactRepo, creditRepo, apifyClient, apolloClient, callbackBaseURL)
	enrichUC.Alerts = mailSender
	batchUC := usecase.NewBatchEnrichUseCase(contactRepo, creditRepo, enrichUC)
	createContactUC := usecase.NewCreateContactUseCase(contactRepo, producer)
	sendCampaignUC := usecase.NewSendCampaignUseCase(campaignRepo, recipientRepo, producer)

	profileScrapeUC := usecase.NewCompleteProfileScrapeUseCase(contactRepo, apifyClient, enrichUC)
	phoneMatchUC := usecase.NewCompletePhoneMatchUseCase(contactRepo, creditRepo)
	phoneMatchUC.Alerts = mailSender
	messagingUC := usecase.NewIngestMessagingEventUseCase(integrationRepo, contactRepo, recipientRepo, campaignRepo, eventRepo)
	emailUC := usecase.NewIngestEmailEventUseCase(recipientRepo, campaignRepo, blocklistRepo, eventRepo)
	integrationUC := usecase.NewUpdateIntegrationStatusUseCase(integrationRepo)

	// 4. Workers (consumidores da fila + sweep de travados)
	dispatchWorker := queue.NewDispatchWorker(rabbitMQ.Ch, unipileClient, resendClient, recipientRepo, campaignRepo, blocklistRepo)
	go dispatchWorker.Start(queue.DispatchQueue)

	scrapeWorker := queue.NewScrapeWorker(rabbitMQ.Ch, apifyClient, contactRepo, callbackBaseURL)
	go scrapeWorker.Start(queue.ScrapeQueue)

	staleWorker := worker.NewStaleEnrichmentWorker(contactRepo, mailSender)
	go staleWorker.Start(context.Background())

	// 5. Handlers
	enrichmentHandler := handlers.NewEnrichmentHandler(enrichUC, batchUC)
	contactHandler := handlers.NewContactHandler(createContactUC, contactRepo)
	campaignHandler := handlers.NewCampaignHandler(sendCampaignUC, campaignRepo, recipientRepo, contactRepo)
	webhookHandler := handlers.NewWebhookHandler(profileScrapeUC, phoneMatchUC, messagingUC, emailUC, integrationUC)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	r.Post("/contacts", contactHandler.Handle)
	r.Get("/contacts/{id}", contactHandler.GetHandler)

	r.Post("/enrichments", enrichmentHandler.Handle)
	r.Post("/enrichments/batch", enrichmentHandler.HandleBatch)

	r.Post("/campaigns", campaignHandler.CreateHandler)
	r.Post("/campaigns/{id}/send", campaignHandler.SendHandler)
	r.Get("/campaigns/{id}", campaignHandler.GetHandler)

	r.Post("/webhooks/apify", webhookHandler.HandleApify)
	r.Post("/webhooks/apollo", webhookHandler.HandleApollo)
	r.Post("/webhooks/messaging", webhookHandler.HandleMessaging)
	r.Post("/webhooks/email", webhookHandler.HandleEmail)
	r.Post("/webhooks/accounts", webhookHandler.HandleAccountStatus)

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		port = ":" + p
	}
	log.Printf("🔥 Server ProspecCRM rodando na porta %s", port)
	http.ListenAndServe(port, r)
}
