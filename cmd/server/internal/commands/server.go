package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/medmatch/internal/auth"
	"github.com/wolfeidau/medmatch/internal/blob"
	httpmiddleware "github.com/wolfeidau/medmatch/internal/http"
	"github.com/wolfeidau/medmatch/internal/logger"
	"github.com/wolfeidau/medmatch/internal/server"
	"github.com/wolfeidau/medmatch/internal/store"
	memorystore "github.com/wolfeidau/medmatch/internal/store/memory"
	postgresstore "github.com/wolfeidau/medmatch/internal/store/postgres"
	"github.com/wolfeidau/medmatch/internal/telemetry"
)

type ServerCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"MEDMATCH_LISTEN"`
	Cert   string `help:"path to TLS cert file" default:"" env:"MEDMATCH_TLS_CERT"`
	Key    string `help:"path to TLS key file" default:"" env:"MEDMATCH_TLS_KEY"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"http://localhost:5173" env:"MEDMATCH_CORS_ORIGINS"`

	// Token verification configuration
	Issuer   string `help:"token issuer URL" env:"MEDMATCH_AUTH_ISSUER"`
	Audience string `help:"expected token audience" env:"MEDMATCH_AUTH_AUDIENCE"`
	JWKSURL  string `help:"JWKS endpoint, defaults to <issuer>/.well-known/jwks.json" default:"" env:"MEDMATCH_AUTH_JWKS_URL"`

	// Operational modes
	Tracing bool `help:"enable tracing" default:"false" env:"MEDMATCH_TRACING"`

	// Storage configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"MEDMATCH_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
	BlobDir       string             `help:"directory for uploaded document content" default:"./data/blobs" env:"MEDMATCH_BLOB_DIR"`
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"MEDMATCH_POSTGRES_AUTO_MIGRATE"`
}

func (c *ServerCmd) Validate() error {
	if c.Issuer == "" {
		return errors.New("token issuer is required (--issuer or MEDMATCH_AUTH_ISSUER)")
	}
	if c.Audience == "" {
		return errors.New("token audience is required (--audience or MEDMATCH_AUTH_AUDIENCE)")
	}
	if c.StoreType == "postgres" && c.PostgresStore.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	// Setup telemetry if enabled
	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, "medmatch-server", globals.Version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	stores, cleanup, err := c.buildStores(ctx, log)
	if err != nil {
		return err
	}
	defer cleanup()

	blobs, err := blob.NewFilesystemStore(c.BlobDir)
	if err != nil {
		return fmt.Errorf("failed to create blob store: %w", err)
	}

	srv := server.New(server.Config{
		Accounts:     stores.accounts,
		Profiles:     stores.profiles,
		Clinics:      stores.clinics,
		Positions:    stores.positions,
		Applications: stores.applications,
		Documents:    stores.documents,
		Blobs:        blobs,
	})

	// Credential verification against the issuer's JWKS
	jwksURL := c.JWKSURL
	if jwksURL == "" {
		jwksURL = strings.TrimSuffix(c.Issuer, "/") + "/.well-known/jwks.json"
	}
	keys := auth.NewKeySet(jwksURL, auth.NewCachingHTTPClient())
	verifier := auth.NewVerifier(c.Issuer, c.Audience, keys)
	resolver := auth.NewResolver(stores.accounts)
	authMiddleware := auth.Middleware(verifier, resolver)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/api/", withCORS(c.CORSOrigins, authMiddleware(srv.Routes())))

	handler := logger.Requests(log)(httpmiddleware.ClientIPMiddleware()(mux))

	log.Info().Str("addr", c.Listen).Str("issuer", c.Issuer).Str("store", c.StoreType).Msg("Listening")

	httpServer := configureHTTPServer(c.Listen, handler)
	if c.Cert != "" && c.Key != "" {
		return httpServer.ListenAndServeTLS(c.Cert, c.Key)
	}
	return httpServer.ListenAndServe()
}

type storeSet struct {
	accounts     store.AccountStore
	profiles     store.ProfileStore
	clinics      store.ClinicStore
	positions    store.PositionStore
	applications store.ApplicationStore
	documents    store.DocumentStore
}

func (c *ServerCmd) buildStores(ctx context.Context, log zerolog.Logger) (*storeSet, func(), error) {
	switch c.StoreType {
	case "postgres":
		pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{
			ConnString:      c.PostgresStore.ConnString,
			MaxConns:        c.PostgresStore.MaxConns,
			MinConns:        c.PostgresStore.MinConns,
			MaxConnLifetime: c.PostgresStore.MaxConnLifetime,
			MaxConnIdleTime: c.PostgresStore.MaxConnIdleTime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
		}

		if c.PostgresStore.AutoMigrate {
			if err := postgresstore.RunMigrations(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info().Msg("Database migrations completed")
		}

		log.Info().Msg("Using PostgreSQL stores with shared connection pool")
		return &storeSet{
			accounts:     postgresstore.NewAccountStore(pool),
			profiles:     postgresstore.NewProfileStore(pool),
			clinics:      postgresstore.NewClinicStore(pool),
			positions:    postgresstore.NewPositionStore(pool),
			applications: postgresstore.NewApplicationStore(pool),
			documents:    postgresstore.NewDocumentStore(pool),
		}, pool.Close, nil

	default:
		positions := memorystore.NewPositionStore()
		applications := memorystore.NewApplicationStore(positions)

		log.Info().Msg("Using in-memory stores")
		return &storeSet{
			accounts:     memorystore.NewAccountStore(),
			profiles:     memorystore.NewProfileStore(),
			clinics:      memorystore.NewClinicStore(),
			positions:    positions,
			applications: applications,
			documents:    memorystore.NewDocumentStore(applications),
		}, func() {}, nil
	}
}
