// Package app selects a backend from the configuration and wires the
// client services on top of it.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"booknest/internal/auth"
	"booknest/internal/book"
	"booknest/internal/config"
	"booknest/internal/platform/docstore"
	"booknest/internal/platform/identity"
	"booknest/internal/platform/openlibrary"
	"booknest/internal/profile"
	"booknest/internal/session"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Backend holds the remote handles. Close releases them.
type Backend struct {
	Store    docstore.Store
	Provider identity.Provider
	Cache    session.Cache
	Metadata *openlibrary.Client

	closers []func()
}

func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// Services are the client-side components shared by every screen.
type Services struct {
	Auth     *auth.Service
	Books    *book.Service
	Profiles *profile.Service
	Sessions *session.Store
}

// Open connects the backend named by cfg.Backend.
func Open(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*Backend, error) {
	b := &Backend{
		Cache: session.NewFileCache(cfg.CachePath),
		Metadata: openlibrary.NewClient(openlibrary.Config{
			BaseURL:    cfg.OpenLibrary.BaseURL,
			UserAgent:  cfg.OpenLibrary.UserAgent,
			RPS:        cfg.OpenLibrary.RPS,
			MaxRetries: 2,
			Timeout:    cfg.OpenLibrary.Timeout,
		}),
	}

	switch cfg.Backend {
	case config.BackendFirebase:
		provider := identity.NewToolkitProvider(identity.ToolkitConfig{
			BaseURL:    cfg.Firebase.AuthURL,
			APIKey:     cfg.Firebase.APIKey,
			RPS:        cfg.Firebase.RPS,
			MaxRetries: cfg.Firebase.MaxRetries,
			Timeout:    cfg.Firebase.Timeout,
		})
		b.Provider = provider
		b.Store = docstore.NewFirestoreStore(docstore.FirestoreConfig{
			BaseURL:    cfg.Firebase.FirestoreURL,
			APIKey:     cfg.Firebase.APIKey,
			ProjectID:  cfg.Firebase.ProjectID,
			DatabaseID: cfg.Firebase.DatabaseID,
			RPS:        cfg.Firebase.RPS,
			MaxRetries: cfg.Firebase.MaxRetries,
			Timeout:    cfg.Firebase.Timeout,
		}, provider.Token)
		log.WithField("project", cfg.Firebase.ProjectID).Info("using firebase backend")

	case config.BackendPostgres:
		pool, err := openPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		b.Store = docstore.NewPostgresStore(pool, cfg.Postgres.Timeout)
		accounts := identity.NewPostgresAccounts(pool, cfg.Postgres.Timeout)
		b.Provider = identity.NewLocalProvider(accounts, cfg.Local.JWTSecret, cfg.Local.TokenTTL)
		log.WithField("dsn", redactDSN(cfg.Postgres.DSN)).Info("using postgres backend")

	case config.BackendMemory:
		secret := cfg.Local.JWTSecret
		if secret == "" {
			secret = uuid.NewString()
		}
		b.Store = docstore.NewMemoryStore()
		b.Provider = identity.NewLocalProvider(identity.NewMemoryAccounts(), secret, cfg.Local.TokenTTL)
		log.Info("using in-memory backend; data is lost on exit")

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	return b, nil
}

// Wire builds the services over b.
func Wire(b *Backend, log logrus.FieldLogger) *Services {
	profiles := profile.NewService(profile.NewDocumentRepo(b.Store))
	return &Services{
		Auth:     auth.NewService(b.Provider, profiles, b.Cache, log),
		Books:    book.NewService(book.NewDocumentRepo(b.Store, log), b.Metadata),
		Profiles: profiles,
		Sessions: session.NewStore(b.Provider, b.Cache, log),
	}
}

func openPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot ping database (%s): %w", redactDSN(dsn), err)
	}
	return pool, nil
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
