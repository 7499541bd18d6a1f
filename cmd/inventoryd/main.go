package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scoopworks/inventory-api/internal/app"
	"github.com/scoopworks/inventory-api/internal/auth"
	"github.com/scoopworks/inventory-api/internal/inventory"
	"github.com/scoopworks/inventory-api/internal/permission"
	"github.com/scoopworks/inventory-api/internal/platform/db"
	"github.com/scoopworks/inventory-api/internal/rbac"
	"github.com/scoopworks/inventory-api/internal/roles"
	"github.com/scoopworks/inventory-api/internal/users"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	conn, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		logger.Error("open sqlite", slog.Any("error", err))
		os.Exit(1)
	}
	defer conn.Close()

	if err := db.EnsureSchema(ctx, conn); err != nil {
		logger.Error("ensure schema", slog.Any("error", err))
		os.Exit(1)
	}

	vocab := permission.DefaultVocabulary()
	resolver := permission.NewResolver(vocab)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := users.NewRepository(conn)
	userService := users.NewService(userRepo, vocab)
	authService := auth.NewService(userRepo)
	authHandler := auth.NewHandler(logger, authService, userService, userRepo, tokens, resolver, cfg.CookieName)

	roleRepo := roles.NewRepository(conn)
	roleService := roles.NewService(roleRepo, vocab)
	rolesHandler := roles.NewHandler(logger, roleService, userRepo)

	inventoryRepo := inventory.NewRepository(conn)
	inventoryService := inventory.NewService(inventoryRepo)
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	guards := rbac.Middleware{
		Logger:     logger,
		Tokens:     tokens,
		CookieName: cfg.CookieName,
		Users:      userRepo,
		Resolver:   resolver,
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthHandler:      authHandler,
		RolesHandler:     rolesHandler,
		InventoryHandler: inventoryHandler,
		Guards:           guards,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
