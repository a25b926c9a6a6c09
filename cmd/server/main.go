package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	emailPkg "compreg/internal/adapters/email"
	web "compreg/internal/adapters/http"
	"compreg/internal/adapters/http/middleware"
	"compreg/internal/adapters/http/perf"
	"compreg/internal/adapters/payment"
	"compreg/internal/adapters/storage"
	accountStore "compreg/internal/adapters/storage/account"
	competitionStore "compreg/internal/adapters/storage/competition"
	outboxStore "compreg/internal/adapters/storage/outbox"
	registrationStore "compreg/internal/adapters/storage/registration"
	"compreg/internal/adapters/token"
	"compreg/internal/application/orchestrators"
	"compreg/internal/config"
	"compreg/internal/domain/outbox"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logLevel := slog.LevelDebug
	if cfg.IsProduction() {
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Open the database with WAL mode, foreign keys, and busy timeout
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize schema: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, float64(cfg.SlowQueryMs))

	acctStore := accountStore.NewSQLiteStore(timedDB)
	compStore := competitionStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:      acctStore,
		CompetitionStore:  compStore,
		RegistrationStore: registrationStore.NewSQLiteStore(timedDB),
		OutboxStore:       outboxStore.NewSQLiteStore(timedDB),
	}

	// Seed the initial admin on first boot
	if err := orchestrators.ExecuteSeedAdmin(context.Background(),
		orchestrators.SeedAdminInput{Email: cfg.AdminEmail, Password: cfg.AdminPassword},
		orchestrators.SeedAdminDeps{AccountStore: acctStore, GenerateID: generateID, Now: time.Now},
	); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Seed demo competitions in development only
	if !cfg.IsProduction() {
		if err := orchestrators.ExecuteSeedCompetitions(context.Background(), compStore,
			orchestrators.CreateCompetitionDeps{CompetitionStore: compStore, GenerateID: generateID, Now: time.Now},
		); err != nil {
			log.Fatalf("failed to seed competitions: %v", err)
		}
	}

	// Configure email sender
	var sender emailPkg.Sender
	if cfg.ResendAPIKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			log.Println("WARNING: COMPREG_RESEND_API_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set COMPREG_RESEND_API_KEY for real delivery)")
		}
	}

	// Outbox worker retries queued emails until delivery succeeds
	processor := orchestrators.NewOutboxProcessor(stores.OutboxStore, map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeEmail: &orchestrators.EmailExecutor{Sender: sender},
	})
	outboxStopCh := make(chan struct{})
	orchestrators.StartBackgroundWorker(processor, 1*time.Minute, outboxStopCh)
	defer close(outboxStopCh)

	// Bearer tokens for API clients. Without a configured secret, tokens
	// don't survive a restart (browser sessions are unaffected).
	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		if cfg.IsProduction() {
			log.Fatal("COMPREG_JWT_SECRET is required in production")
		}
		jwtSecret = randomSecret()
		log.Println("WARNING: using random JWT secret (tokens won't survive restart). Set COMPREG_JWT_SECRET for production.")
	}
	tokens := token.NewIssuer(jwtSecret, 24*time.Hour)

	provider := payment.NewStubProvider(cfg.WebhookSecret, cfg.BaseURL)

	mux := web.NewMux(web.Options{
		Stores:          stores,
		Collector:       collector,
		Tokens:          tokens,
		PaymentProvider: provider,
		Processor:       processor,
		CSRFKey:         cfg.CSRFKey,
		Production:      cfg.IsProduction(),
		SlowRequestMs:   middleware.DefaultSlowRequestMs,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Compreg %s starting on %s (env=%s)", version, cfg.Addr, cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

func generateID() string {
	return uuid.New().String()
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("failed to generate secret: %v", err)
	}
	return hex.EncodeToString(buf)
}
