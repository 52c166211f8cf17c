// Package server assembles the application: it opens the configured store,
// builds the services and runs the HTTP API and the gRPC health endpoint
// until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/auth"
	"github.com/dmitrijs2005/profilekeeper/internal/server/config"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/profilekeeper/internal/server/services"
	"github.com/dmitrijs2005/profilekeeper/internal/server/storage"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/profilekeeper/internal/server/grpc"
	hs "github.com/dmitrijs2005/profilekeeper/internal/server/http"
)

const closeTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	repos  repomanager.RepositoryManager
	http   *hs.HTTPServer
	grpc   *gs.HealthServer
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	repos, err := repomanager.Open(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, repos)
	if err != nil {
		_ = repos.Close(context.Background())
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, repos repomanager.RepositoryManager) (*App, error) {
	if err := repos.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	tokens, err := auth.NewTokenService([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("token service init error: %w", err)
	}

	hasher, err := auth.NewPasswordHasher(c.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("password hasher init error: %w", err)
	}

	files, err := storage.NewFileStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("file store init error: %w", err)
	}

	opts := hs.RouterOptions{MaxUploadBytes: c.MaxUploadBytes}
	if local, ok := files.(*storage.LocalStore); ok {
		opts.UploadsDir = local.Dir()
	}

	handler := hs.NewHandler(
		services.NewAccountService(repos.Accounts(), hasher, tokens, files, c.StoreTimeout, logger),
		services.NewChatProfileService(repos.ChatProfiles(), files, c.StoreTimeout, logger),
		repos,
		logger,
	)

	return &App{
		config: c,
		logger: logger,
		repos:  repos,
		http:   hs.NewHTTPServer(hs.NewRouter(handler, tokens, logger, opts), logger),
		grpc:   gs.NewHealthServer(c.EndpointAddrGRPC, repos, 0, c.StoreTimeout, logger),
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
}

// Run serves until ctx is cancelled, a shutdown signal arrives or either
// server fails, then closes the store.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := app.initSignalHandler(ctx)
	defer stop()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageBackend, "uploads", app.config.UploadBackend)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.http.Run(gctx, app.config.EndpointAddrHTTP)
	})
	g.Go(func() error {
		return app.grpc.Run(gctx)
	})

	runErr := g.Wait()
	if runErr != nil {
		app.logger.Error(ctx, "server stopped with error", "error", runErr)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := app.repos.Close(closeCtx); err != nil {
		app.logger.Error(ctx, "store close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
	return runErr
}
