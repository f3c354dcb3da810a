package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"qr-admin-service/internal/auth"
	"qr-admin-service/internal/config"
	"qr-admin-service/internal/database/migrations"
	"qr-admin-service/internal/fields"
	"qr-admin-service/internal/ghl"
	ghlapi "qr-admin-service/internal/ghl/api"
	"qr-admin-service/internal/kafka"
	"qr-admin-service/internal/logger"
	"qr-admin-service/internal/orders"
	orderapi "qr-admin-service/internal/orders/api"
	orderdb "qr-admin-service/internal/orders/db"
	"qr-admin-service/internal/posts"
	"qr-admin-service/internal/sse"
	syncjob "qr-admin-service/internal/sync"
	syncapi "qr-admin-service/internal/sync/api"
	"qr-admin-service/internal/tickets"
	ticketapi "qr-admin-service/internal/tickets/api"
	ticketdb "qr-admin-service/internal/tickets/db"
	"qr-admin-service/internal/tickets/qr"
	"qr-admin-service/internal/users"
	"qr-admin-service/internal/webhook"
)

func verifyConnections(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*bun.DB, *redis.Client) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Database.Username, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.PingContext(ctx)
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	logger.Info("DATABASE", "✅ PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	logger.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting QR Admin Service initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	logger.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, logger)
	defer bunDB.Close()
	defer redisClient.Close()

	migrator := migrations.NewRunner(bunDB, migrations.DefaultOptions(), logger)
	if err := migrator.RunMigrations(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}
	defer migrator.Close()

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		logger.Info("KAFKA", "Kafka producer initialized successfully")

		requiredTopics := []string{
			cfg.Kafka.Topics.OrderSynced,
			cfg.Kafka.Topics.TicketValidated,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics, logger); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			logger.Info("KAFKA", "Required topics ensured successfully")
		}
	} else {
		logger.Warn("KAFKA", "Kafka disabled, sync events will not be published")
	}

	qrGen := qr.NewQRGenerator(cfg.Auth.QRSecretKey)
	ghlClient := ghl.NewClient(cfg.GHL, logger)
	typeCache := ghl.NewTypeCache(redisClient, ghlClient, logger)
	statusStore := syncjob.NewStatusStore(redisClient)
	broadcaster := sse.NewBroadcaster()

	orderStore := &orderdb.DB{Bun: bunDB}
	ticketStore := &ticketdb.DB{Bun: bunDB}
	fieldStore := &fields.DB{Bun: bunDB}
	postStore := &posts.DB{Bun: bunDB}

	// jobCtx outlives requests; shutdown cancels it to stop a running sync.
	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()

	var publisher syncjob.Publisher
	var ticketPublisher tickets.Publisher
	if producer != nil {
		publisher = producer
		ticketPublisher = producer
	}

	job := &syncjob.Job{
		GHL:         ghlClient,
		Orders:      orderStore,
		Tickets:     ticketStore,
		Status:      statusStore,
		Broadcaster: broadcaster,
		QR:          qrGen,
		Kafka:       publisher,
		Logger:      logger,

		OrderListPath:    cfg.Sync.OrderListPath,
		DelaySeconds:     cfg.Sync.DelaySeconds,
		LockTTL:          cfg.Sync.LockTTL,
		OrderSyncedTopic: cfg.Kafka.Topics.OrderSynced,
	}

	// A restart during the cooldown picks the countdown back up from the
	// persisted deadline.
	countdown := &syncjob.Countdown{
		Status:      statusStore,
		Broadcaster: broadcaster,
		Logger:      logger,
	}
	if err := countdown.Resume(jobCtx); err != nil {
		logger.Warn("SYNC", fmt.Sprintf("Failed to resume delay countdown: %v", err))
	}

	orderService := orders.NewOrderService(orderStore)
	ticketService := tickets.NewTicketService(ticketStore, qrGen, ticketPublisher, cfg.Kafka.Topics.TicketValidated)
	providerClient := auth.NewProviderClient(cfg.Auth.AdminBaseURL, cfg.Auth.AdminToken,
		&http.Client{Timeout: 10 * time.Second}, logger)

	authHandler := &auth.Handler{Logger: logger}
	orderHandler := orderapi.NewHandler(orderService, logger)
	ticketHandler := ticketapi.NewHandler(ticketService, logger)
	syncHandler := syncapi.NewHandler(job, statusStore, logger, jobCtx)
	sseHandler := sse.NewHandler(broadcaster, logger)
	ghlHandler := ghlapi.NewHandler(ghlClient, typeCache, logger)
	fieldHandler := fields.NewHandler(fieldStore, logger)
	postHandler := posts.NewHandler(postStore, logger)
	userHandler := users.NewHandler(providerClient, logger)
	webhookHandler := webhook.NewHandler(job, fieldStore, ticketStore, ghlClient, qrGen,
		cfg.GHL.WebhookSecret, logger)

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	r.Use(logger.RequestLogger())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Public Routes ---
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/ghl/webhook-qr", webhookHandler.HandleOrderWebhook)
	logger.Info("ROUTER", "Public endpoints registered: /healthz, /metrics, /api/ghl/webhook-qr")

	// --- Protected Routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Auth.OIDCIssuer))
		logger.Info("AUTH", "OIDC middleware applied to protected API routes")

		r.Route("/api", func(r chi.Router) {
			r.Get("/auth/me", authHandler.Me)

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", postHandler.ListPosts)
				r.Get("/{id}", postHandler.GetPost)

				r.Group(func(r chi.Router) {
					r.Use(auth.RequireAdmin)
					r.Post("/", postHandler.CreatePost)
					r.Put("/{id}", postHandler.UpdatePost)
					r.Delete("/{id}", postHandler.DeletePost)
				})
			})
			logger.Info("ROUTER", "Post routes registered under /api/posts")

			r.Route("/qrapp", func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				r.Get("/orders", orderHandler.ListOrders)
				r.Get("/orders/{orderId}", orderHandler.GetOrder)
				r.Get("/tickets/{orderId}", ticketHandler.ListTicketsByOrder)
				r.Put("/tickets/status/{id}", ticketHandler.UpdateTicketStatus)
				r.Post("/tickets/validate", ticketHandler.ValidateScanned)
				r.Get("/sync-status", syncHandler.GetSyncStatus)
				r.Get("/events", sseHandler.StreamEvents)

				r.Group(func(r chi.Router) {
					r.Use(auth.RequireSuperadmin)
					r.Post("/sync-status", syncHandler.UpdateSyncStatus)
				})
			})
			logger.Info("ROUTER", "Order and ticket routes registered under /api/qrapp")

			r.Route("/ghl", func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				r.Get("/orders/sync", syncHandler.TriggerSync)
				r.Get("/price", ghlHandler.ListTicketTypes)
				r.Get("/price/{id}", ghlHandler.GetPrice)
				r.Put("/contacts/{id}", ghlHandler.UpdateContactField)
			})
			logger.Info("ROUTER", "GHL routes registered under /api/ghl")

			r.Route("/fields", func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				r.Get("/", fieldHandler.ListBindings)
				r.Post("/", fieldHandler.CreateBinding)
				r.Put("/{id}", fieldHandler.UpdateBindingStatus)
			})
			logger.Info("ROUTER", "Field binding routes registered under /api/fields")

			r.Route("/superadmin", func(r chi.Router) {
				r.Use(auth.RequireSuperadmin)
				r.Post("/create-user", userHandler.CreateUser)
				r.Put("/update-user/{id}", userHandler.UpdateUser)
				r.Delete("/delete-user/{id}", userHandler.DeleteUser)
			})
			logger.Info("ROUTER", "User management routes registered under /api/superadmin")
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 QR Admin Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	cancelJobs()

	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ QR Admin Service shutdown complete")
	}
}
