package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"sellerflow/internal/audit"
	"sellerflow/internal/contact"
	contacthandler "sellerflow/internal/contact/handler"
	"sellerflow/internal/identity"
	identityhandler "sellerflow/internal/identity/handler"
	jwttoken "sellerflow/internal/jwt_token"
	"sellerflow/internal/onboarding/autosave"
	onboardinghandler "sellerflow/internal/onboarding/handler"
	onboardingservice "sellerflow/internal/onboarding/service"
	onboardingstore "sellerflow/internal/onboarding/store"
	"sellerflow/internal/platform/config"
	"sellerflow/internal/platform/httpserver"
	"sellerflow/internal/platform/logger"
	"sellerflow/internal/platform/metrics"
	platformredis "sellerflow/internal/platform/redis"
	"sellerflow/internal/profile"
	httptransport "sellerflow/internal/transport/http"
	id "sellerflow/pkg/domain"
)

// main wires dependencies and supervises the long-running pieces: the HTTP
// server, the autosave flusher, and the audit pipeline. Business logic lives
// in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage. Postgres when a DSN is set, Redis when a URL is set, in-memory
	// otherwise. Draft and profile stores always come from the same backend.
	var (
		draftStore   onboardingstore.DraftStore
		profileStore profile.Store
		codeStore    contact.CodeStore
	)
	switch {
	case cfg.Postgres.DSN != "":
		db, err := sql.Open("pgx", cfg.Postgres.DSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("postgres ping failed", "error", err)
			os.Exit(1)
		}
		draftStore = onboardingstore.NewPostgres(db)
		profileStore = profile.NewPostgres(db)
		codeStore = contact.NewInMemoryCodeStore()
		log.Info("using postgres storage")
	case cfg.Redis.URL != "":
		rdb, err := platformredis.New(cfg.Redis)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		draftStore = onboardingstore.NewRedis(rdb.Client)
		profileStore = profile.NewInMemory()
		codeStore = contact.NewRedisCodeStore(rdb.Client)
		log.Info("using redis storage")
	default:
		draftStore = onboardingstore.NewInMemory()
		profileStore = profile.NewInMemory()
		codeStore = contact.NewInMemoryCodeStore()
		log.Info("using in-memory storage")
	}

	// Redis OTP storage alongside postgres when both are configured.
	if cfg.Postgres.DSN != "" && cfg.Redis.URL != "" {
		rdb, err := platformredis.New(cfg.Redis)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		codeStore = contact.NewRedisCodeStore(rdb.Client)
	}

	m := metrics.New()

	// Audit pipeline: Kafka when brokers are configured, otherwise an
	// in-process channel drained by a worker.
	var (
		publisher   audit.Publisher
		auditWorker *audit.Worker
	)
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := audit.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("failed to create kafka audit publisher", "error", err)
			os.Exit(1)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = kp.Close(closeCtx)
		}()
		publisher = kp
		log.Info("audit events publishing to kafka", "topic", cfg.Kafka.Topic)
	} else {
		cp := audit.NewChannelPublisher(256, log)
		publisher = cp
		auditWorker = audit.NewWorker(audit.NewInMemoryStore(), cp.Events())
	}

	flusher := autosave.New(draftStore, cfg.Onboarding.AutosaveDebounce,
		autosave.WithLogger(log),
		autosave.WithAuditPublisher(publisher),
		autosave.WithOnFlush(func(userID id.UserID) {
			m.DraftsSaved.Inc()
		}),
	)

	checker := contact.NewChecker(profileStore)

	wizardOpts := []onboardingservice.Option{
		onboardingservice.WithLogger(log),
		onboardingservice.WithMetrics(m),
		onboardingservice.WithAuditPublisher(publisher),
	}
	if cfg.Onboarding.GatingRelaxed {
		wizardOpts = append(wizardOpts, onboardingservice.WithRelaxedGating())
		log.Warn("step gating is relaxed; do not run this in production")
	}
	wizard, err := onboardingservice.New(draftStore, flusher, profileStore, checker, wizardOpts...)
	if err != nil {
		log.Error("failed to build onboarding service", "error", err)
		os.Exit(1)
	}

	contactSvc, err := contact.New(wizard, codeStore, contact.NewLogSender(log),
		cfg.Contact.ResendCooldown, cfg.Contact.CodeTTL,
		contact.WithLogger(log),
		contact.WithMetrics(m),
		contact.WithAuditPublisher(publisher),
	)
	if err != nil {
		log.Error("failed to build contact service", "error", err)
		os.Exit(1)
	}

	// Provider selection is the deployment seam for a real verification
	// backend; only the mock adapter ships today.
	var idProvider identity.Provider
	switch cfg.Identity.Provider {
	case "mock":
		idProvider = identity.NewMockProvider(3)
	default:
		log.Error("unknown identity provider", "provider", cfg.Identity.Provider)
		os.Exit(1)
	}

	identitySvc, err := identity.New(idProvider, wizard,
		cfg.Identity.PollInterval, cfg.Identity.PollMaxAttempts, cfg.Identity.QRTemplate,
		identity.WithLogger(log),
		identity.WithMetrics(m),
		identity.WithAuditPublisher(publisher),
	)
	if err != nil {
		log.Error("failed to build identity service", "error", err)
		os.Exit(1)
	}
	defer identitySvc.Shutdown()

	jwtSvc := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	router := httptransport.NewRouter(
		httptransport.RouterConfig{
			Logger:    log,
			Metrics:   m,
			Validator: jwtSvc,
		},
		onboardinghandler.New(wizard, log),
		contacthandler.New(contactSvc, log),
		identityhandler.New(identitySvc, log),
	)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting sellerflow", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return flusher.Run(gctx)
	})
	if auditWorker != nil {
		g.Go(func() error {
			return auditWorker.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	log.Info("sellerflow stopped")
}
