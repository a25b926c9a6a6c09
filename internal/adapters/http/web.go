package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"time"

	"compreg/internal/adapters/http/middleware"
	"compreg/internal/adapters/http/perf"
	"compreg/internal/adapters/payment"
	accountStore "compreg/internal/adapters/storage/account"
	competitionStore "compreg/internal/adapters/storage/competition"
	outboxStore "compreg/internal/adapters/storage/outbox"
	registrationStore "compreg/internal/adapters/storage/registration"
	"compreg/internal/adapters/token"
	"compreg/internal/application/orchestrators"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore      accountStore.Store
	CompetitionStore  competitionStore.Store
	RegistrationStore registrationStore.Store
	OutboxStore       outboxStore.Store
}

// Options configures the HTTP layer.
type Options struct {
	Stores          *Stores
	Collector       *perf.Collector
	Tokens          *token.Issuer
	PaymentProvider payment.Provider
	Processor       *orchestrators.OutboxProcessor
	CSRFKey         string // hex-encoded, 32 bytes; empty generates a dev key
	Production      bool
	SlowRequestMs   int
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Global token issuer (set by NewMux)
var tokens *token.Issuer

// Global payment provider (set by NewMux)
var paymentProvider payment.Provider

// Global outbox processor for admin retry endpoints (set by NewMux)
var outboxProcessor *orchestrators.OutboxProcessor

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// loadCSRFKey decodes the configured CSRF secret (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is
// generated per startup.
func loadCSRFKey(keyHex string, production bool) []byte {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("COMPREG_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if production {
		log.Fatal("COMPREG_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set COMPREG_CSRF_KEY for production.")
	return key
}

// NewMux wires HTTP handlers for the app.
func NewMux(opts Options) http.Handler {
	stores = opts.Stores
	perfCollector = opts.Collector
	tokens = opts.Tokens
	paymentProvider = opts.PaymentProvider
	outboxProcessor = opts.Processor
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = opts.Production

	mux := http.NewServeMux()
	registerRoutes(mux)

	csrfKey := loadCSRFKey(opts.CSRFKey, opts.Production)

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> Auth -> CSRF -> SecurityHeaders -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey, opts.Production),
		middleware.Auth(sessions, opts.Tokens),
		middleware.RateLimit(limiter),
		middleware.Timing(opts.Collector, opts.SlowRequestMs),
	)
}
