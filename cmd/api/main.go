package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rabbitmq/amqp091-go"

	"github.com/karimsalah/crm-insights/internal/config"
	"github.com/karimsalah/crm-insights/internal/infra/http/handlers"
	"github.com/karimsalah/crm-insights/internal/infra/http/middleware"
	"github.com/karimsalah/crm-insights/internal/infra/mail"
	"github.com/karimsalah/crm-insights/internal/infra/queue"
	"github.com/karimsalah/crm-insights/internal/infra/storage"
	"github.com/karimsalah/crm-insights/internal/infra/worker"
	"github.com/karimsalah/crm-insights/internal/usecase"
)

func main() {
	godotenv.Load()
	log := config.GetLogger()

	// 1. Store backend
	store := buildStore()

	// 2. Change notifications (optional broker)
	var notifier usecase.ChangeNotifier = queue.NoopNotifier{}
	var rabbitConn *amqp091.Connection
	var rabbitCh *amqp091.Channel
	if host := os.Getenv("RABBITMQ_HOST"); host != "" {
		rabbitMQ, err := queue.NewRabbitMQ(
			envOr("RABBITMQ_USER", "guest"),
			envOr("RABBITMQ_PASS", "guest"),
			host,
			envOr("RABBITMQ_PORT", "5672"),
		)
		if err != nil {
			log.Fatalf("rabbitmq: %v", err)
		}
		defer rabbitMQ.Conn.Close()
		defer rabbitMQ.Ch.Close()

		rabbitConn = rabbitMQ.Conn
		rabbitCh = rabbitMQ.Ch
		notifier = queue.NewNotifier(rabbitMQ.Conn, rabbitMQ.Ch)
		log.Info("✅ RabbitMQ connected")
	}

	// 3. Core services
	reader := &usecase.LeadReader{Store: store}
	threshold := intEnv("DELAY_THRESHOLD_DAYS", usecase.DefaultDelayThresholdDays)

	stageConfig := &usecase.StageConfig{Store: store, Key: storage.KeyStages, Notifier: notifier}
	statusConfig := &usecase.StageConfig{Store: store, Key: storage.KeyStatuses, Notifier: notifier}

	// 4. Delay scan worker (+ optional digest mail)
	scanWorker := worker.NewDelayScanWorker(reader, threshold)
	if mailHost := os.Getenv("MAIL_HOST"); mailHost != "" && os.Getenv("DIGEST_TO") != "" {
		sender := mail.NewEmailSender(
			mailHost,
			intEnv("MAIL_PORT", 587),
			os.Getenv("MAIL_USER"),
			os.Getenv("MAIL_PASS"),
			envOr("MAIL_FROM", "no-reply@crm-insights.local"),
		)
		scanWorker = scanWorker.WithDigest(sender, os.Getenv("DIGEST_TO"))
	}
	go scanWorker.Start(context.Background())

	// 5. Re-compute on change notifications from other writers
	if rabbitCh != nil {
		changeWorker := queue.NewWorker(rabbitCh, scanWorker.Refresh)
		go changeWorker.Start(queue.QueueName)
	}

	// 6. Handlers
	leadsHandler := handlers.NewLeadsHandler(reader, store, notifier)
	analyticsHandler := handlers.NewAnalyticsHandler(reader, store)
	delayHandler := handlers.NewDelayHandler(reader, store, threshold)
	stagesHandler := handlers.NewConfigHandler(stageConfig, reader, "stages")
	statusesHandler := handlers.NewConfigHandler(statusConfig, reader, "statuses")
	searchHandler := handlers.NewSearchHandler(store)
	healthHandler := handlers.NewHealthHandler(store, rabbitConn)

	// 7. Router
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/leads", leadsHandler.List)
		r.Put("/leads", leadsHandler.Replace)
		r.Get("/leads/stats", leadsHandler.Stats)
		r.Get("/leads/delayed", delayHandler.List)

		r.Get("/analytics/aggregate", analyticsHandler.Aggregate)
		r.Get("/analytics/pivot", analyticsHandler.Pivot)

		r.Get("/config/stages", stagesHandler.List)
		r.Post("/config/stages", stagesHandler.Add)
		r.Delete("/config/stages/{name}", stagesHandler.Remove)

		r.Get("/config/statuses", statusesHandler.List)
		r.Post("/config/statuses", statusesHandler.Add)
		r.Delete("/config/statuses/{name}", statusesHandler.Remove)

		r.Get("/search", searchHandler.Get)
		r.Put("/search", searchHandler.Put)
		r.Delete("/search", searchHandler.Clear)
	})

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := envOr("PORT", "8080")
	log.Infof("🚀 crm-insights API listening on :%s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}

// buildStore picks the key-value backend from the environment. With
// nothing configured it falls back to the in-process store, so the API
// serves (empty) results out of the box.
func buildStore() storage.Store {
	log := config.GetLogger()

	switch os.Getenv("STORE_BACKEND") {
	case "postgres":
		db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		store, err := storage.NewPostgresStore(db)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		log.Info("✅ Postgres store ready")
		return store
	case "redis", "":
		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			break
		}
		store, err := storage.NewRedisStore(addr)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		log.Info("✅ Redis store ready")
		return store
	}

	log.Warn("no store backend configured; using in-memory store")
	return storage.NewMemoryStore()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
