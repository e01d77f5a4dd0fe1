/**
 * @description
 * This is the main entry point for the finance API. It is responsible for
 * initializing all components of the service, including configuration, the
 * database connection pool, the Redis-backed rate limit and cache stores,
 * the identity provider client, the RabbitMQ producer, repositories, the
 * HTTP router, and graceful shutdown. It wires everything together and
 * starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/joho/godotenv: Optional .env loading for local development.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/redis/go-redis/v9: Redis client for counters and the cache.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages.
 * - pkg/identity, pkg/rabbitmq: External service clients.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/fintrackr/finance-api/internal/api"
	"github.com/fintrackr/finance-api/internal/app"
	"github.com/fintrackr/finance-api/internal/config"
	"github.com/fintrackr/finance-api/internal/store"
	"github.com/fintrackr/finance-api/pkg/identity"
	rmrabbit "github.com/fintrackr/finance-api/pkg/rabbitmq"
)

const serviceVersion = "1.0.0"

func main() {
	// Load .env in development; environment variables win either way.
	if err := godotenv.Load(); err == nil {
		log.Println("level=info component=bootstrap msg=\"loaded .env file\"")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}

	log.Printf("level=info component=bootstrap msg=\"starting finance-api\" port=%s env=%s", cfg.ServerPort, cfg.Environment)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}

	poolConfig.MaxConns = 50
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	if err := ensureSchema(dbpool); err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"schema bootstrap failed\" err=%v", err)
	}

	// Redis backs the rate limiter and the response cache. When it is not
	// configured or unreachable, both fall back to in-memory stores.
	var rateLimitStore app.RateLimitStore
	var cacheStore app.CacheStore
	if redisClient := connectRedis(cfg.RedisURL); redisClient != nil {
		defer redisClient.Close()
		rateLimitStore = app.NewRedisRateLimitStore(redisClient, cfg.RedisRateLimitPrefix)
		cacheStore = app.NewRedisCacheStore(redisClient, "fintrackr:cache")
	} else {
		log.Println("level=warn component=bootstrap msg=\"redis unavailable; using in-memory rate limit and cache stores\"")
		rateLimitStore = app.NewMemoryRateLimitStore()
		cacheStore = app.NewMemoryCacheStore()
	}

	// RabbitMQ producer for user lifecycle events. Optional.
	var producer rmrabbit.Publisher
	if strings.TrimSpace(cfg.RabbitMQURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"rabbitmq url missing; user events disabled\" env=RABBITMQ_URL")
		producer = &rmrabbit.EventProducerFallback{}
	} else if p, err := rmrabbit.NewEventProducer(cfg.RabbitMQURL); err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
		producer = &rmrabbit.EventProducerFallback{}
	} else {
		defer p.Close()
		log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
		producer = p
	}

	identityClient := identity.NewClient(cfg.IdentityAPIBaseURL, cfg.IdentityAPIKey, cfg.IdentityJWKSURL)

	handlers := api.NewHandlers(api.HandlersConfig{
		Users:        store.NewPostgresUserRepository(dbpool),
		Transactions: store.NewPostgresTransactionRepository(dbpool),
		Categories:   store.NewPostgresCategoryRepository(dbpool),
		Goals:        store.NewPostgresSavingsGoalRepository(dbpool),
		Debts:        store.NewPostgresDebtRecordRepository(dbpool),
		Sessions:     identityClient,
		Events:       producer,
		CookieName:   cfg.SessionCookieName,
		CookieSecret: cfg.SessionCookieSecret,
		SecureCookie: cfg.IsProduction(),
		SessionTTL:   24 * time.Hour,
	})

	router := api.NewRouter(api.RouterConfig{
		Handlers: handlers,
		Session: api.SessionConfig{
			CookieName:   cfg.SessionCookieName,
			CookieSecret: cfg.SessionCookieSecret,
			Verifier:     identityClient,
		},
		Limiter:        api.NewRateLimiter(rateLimitStore, cfg.RateLimitWindow()),
		GeneralMax:     cfg.RateLimitGeneralMax,
		AuthMax:        cfg.RateLimitAuthMax,
		WriteMax:       cfg.RateLimitWriteMax,
		Cache:          api.NewResponseCache(cacheStore, cfg.CacheTTL()),
		FrontendOrigin: cfg.FrontendOrigin,
		Version:        serviceVersion,
	})

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server failed\" err=%v", err)
		}
	}()

	// Block until a termination signal arrives, then drain in-flight requests.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("level=info component=http msg=\"shutting down\"")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("level=error component=http msg=\"graceful shutdown failed\" err=%v", err)
	}
	log.Println("level=info component=http msg=\"server stopped\"")
}

func connectRedis(redisURL string) *redis.Client {
	if strings.TrimSpace(redisURL) == "" {
		return nil
	}
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("level=warn component=bootstrap msg=\"redis url parse failed\" err=%v", err)
		return nil
	}
	client := redis.NewClient(options)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("level=warn component=bootstrap msg=\"redis ping failed\" err=%v", err)
		client.Close()
		return nil
	}
	log.Println("level=info component=bootstrap msg=\"redis connected\"")
	return client
}

// ensureSchema creates the tables on first boot. Idempotent.
func ensureSchema(dbpool *pgxpool.Pool) error {
	_, err := dbpool.Exec(context.Background(), `
        CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY,
            subject_id TEXT NOT NULL UNIQUE,
            email TEXT NOT NULL,
            name TEXT,
            avatar_url TEXT,
            phone_number TEXT,
            first_name TEXT,
            last_name TEXT,
            currency TEXT NOT NULL DEFAULT 'INR',
            locale TEXT NOT NULL DEFAULT 'en-IN',
            timezone TEXT NOT NULL DEFAULT 'Asia/Kolkata',
            provider TEXT NOT NULL DEFAULT 'google',
            role TEXT NOT NULL DEFAULT 'user',
            account_status TEXT NOT NULL DEFAULT 'active',
            notifications JSONB NOT NULL DEFAULT '{}'::jsonb,
            security JSONB NOT NULL DEFAULT '{}'::jsonb,
            privacy JSONB NOT NULL DEFAULT '{}'::jsonb,
            last_login TIMESTAMPTZ,
            last_active TIMESTAMPTZ,
            login_count INT NOT NULL DEFAULT 0,
            deleted BOOLEAN NOT NULL DEFAULT FALSE,
            deleted_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS categories (
            id UUID PRIMARY KEY,
            user_id TEXT NOT NULL,
            name TEXT NOT NULL,
            type TEXT NOT NULL,
            icon TEXT,
            color TEXT,
            is_default BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE (user_id, name, type)
        );
        CREATE TABLE IF NOT EXISTS transactions (
            id UUID PRIMARY KEY,
            user_id TEXT NOT NULL,
            date TIMESTAMPTZ NOT NULL,
            type TEXT NOT NULL,
            category_id UUID,
            description TEXT,
            amount DOUBLE PRECISION NOT NULL CHECK (amount >= 0),
            payment_method TEXT NOT NULL DEFAULT 'other',
            recurring BOOLEAN NOT NULL DEFAULT FALSE,
            recurring_interval TEXT,
            need_or_want TEXT NOT NULL DEFAULT 'n/a',
            notes TEXT,
            running_balance DOUBLE PRECISION,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions (user_id, date DESC);
        CREATE TABLE IF NOT EXISTS savings_goals (
            id UUID PRIMARY KEY,
            user_id TEXT NOT NULL,
            name TEXT NOT NULL,
            target_amount DOUBLE PRECISION NOT NULL,
            current_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
            deadline TIMESTAMPTZ,
            category TEXT,
            goal_type TEXT NOT NULL DEFAULT 'minor goal',
            status TEXT NOT NULL DEFAULT 'active',
            notes TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS debt_records (
            id UUID PRIMARY KEY,
            user_id TEXT NOT NULL,
            contact_name TEXT NOT NULL,
            contact_email TEXT,
            contact_phone TEXT,
            amount DOUBLE PRECISION NOT NULL,
            direction TEXT NOT NULL,
            description TEXT,
            start_date TIMESTAMPTZ NOT NULL,
            due_date TIMESTAMPTZ,
            status TEXT NOT NULL DEFAULT 'pending',
            amount_paid DOUBLE PRECISION NOT NULL DEFAULT 0,
            notes TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
    `)
	return err
}
