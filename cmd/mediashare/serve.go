package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joestump/mediashare/internal/api"
	"github.com/joestump/mediashare/internal/auth"
	"github.com/joestump/mediashare/internal/config"
	"github.com/joestump/mediashare/internal/content"
	"github.com/joestump/mediashare/internal/db"
	"github.com/joestump/mediashare/internal/handler"
	"github.com/joestump/mediashare/internal/metrics"
	"github.com/joestump/mediashare/internal/store"
)

const (
	gaugeRefreshInterval = time.Minute
	revocationPurgeEvery = time.Hour
	shutdownGrace        = 15 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sessionManager := auth.NewSessionManager(database, cfg.DB.Driver, cfg.SessionLifetime, !cfg.InsecureCookies)

			userStore := store.NewUserStore(database)
			tagStore := store.NewTagStore(database)
			postStore := store.NewPostStore(database, tagStore)
			commentStore := store.NewCommentStore(database)
			statsStore := store.NewStatsStore(database)
			revocations := auth.NewSQLRevocationStore(database)
			issuer := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Lifetime)

			resolver := auth.NewResolver(issuer, revocations, sessionManager, userStore)

			var oidcHandlers *auth.Handlers
			if cfg.OIDCEnabled() {
				provider, err := auth.NewProvider(ctx, cfg)
				if err != nil {
					return err
				}
				oidcHandlers = auth.NewHandlers(provider, sessionManager, userStore, cfg.IsAdminEmail, !cfg.InsecureCookies)
			}

			router := handler.NewRouter(handler.Deps{
				RequestTimeout: cfg.HTTP.RequestTimeout,
				Sessions:       sessionManager,
				OIDC:           oidcHandlers,
				DB:             database,
				API: api.Deps{
					Auth:         auth.NewMiddleware(resolver),
					Sessions:     sessionManager,
					Issuer:       issuer,
					Revocations:  revocations,
					Users:        userStore,
					Tags:         tagStore,
					Stats:        statsStore,
					Posts:        content.NewPostService(postStore, commentStore),
					Comments:     content.NewCommentService(postStore, commentStore),
					IsAdminEmail: cfg.IsAdminEmail,
				},
			})

			go metrics.RefreshGauges(ctx, statsStore, gaugeRefreshInterval)
			go runRevocationPurger(ctx, revocations, revocationPurgeEvery)

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Printf("listening on %s", cfg.HTTP.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Println("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

// runRevocationPurger deletes expired revocation entries every interval
// until ctx is cancelled.
func runRevocationPurger(ctx context.Context, rs auth.RevocationStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := rs.PurgeExpired(ctx, now)
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("revocations: purge: %v", err)
				}
				continue
			}
			if n > 0 {
				log.Printf("revocations: purged %d expired entries", n)
			}
		}
	}
}
