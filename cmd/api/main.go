package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"vendaflow/api"
	"vendaflow/auth"
	"vendaflow/condominium"
	"vendaflow/config"
	"vendaflow/contact"
	"vendaflow/db"
	"vendaflow/migrations"
	"vendaflow/property"
	"vendaflow/sale"
	"vendaflow/storage"
	"vendaflow/team"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = cfg.ConnectionString()
	}

	if err := migrations.Up(dsn); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := storage.NewDiskStore(cfg.Storage.Dir, cfg.Storage.BaseURL)

	var (
		authService        = auth.NewService(auth.NewRepository(pool), cfg.Auth.JWTSecret)
		saleService        = sale.NewService(pool, sale.NewRepository(pool), store)
		propertyService    = property.NewService(property.NewRepository(pool))
		condominiumService = condominium.NewService(condominium.NewRepository(pool))
		teamService        = team.NewService(team.NewRepository(pool))
		contactService     = contact.NewService(contact.NewRepository(pool))
	)

	router := api.New(api.Handlers{
		Auth:         api.NewAuthHandler(authService),
		Sale:         api.NewSaleHandler(saleService),
		Property:     api.NewPropertyHandler(propertyService),
		Condominium:  api.NewCondominiumHandler(condominiumService),
		Team:         api.NewTeamHandler(teamService),
		Contact:      api.NewContactHandler(contactService),
		Simulation:   api.NewSimulationHandler(),
		Verifier:     authService,
		UploadsDir:   cfg.Storage.Dir,
		UploadsRoute: cfg.Storage.BaseURL,
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "addr", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}
	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
