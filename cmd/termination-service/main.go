package main

import (
	"fmt"
	"os"

	"github.com/nurpe/termination-service/internal/auth"
	"github.com/nurpe/termination-service/internal/config"
	"github.com/nurpe/termination-service/internal/db"
	"github.com/nurpe/termination-service/internal/excel"
	httphandler "github.com/nurpe/termination-service/internal/http"
	"github.com/nurpe/termination-service/internal/http/middleware"
	"github.com/nurpe/termination-service/internal/logger"
	"github.com/nurpe/termination-service/internal/pdf"
	"github.com/nurpe/termination-service/internal/repository"
	"github.com/nurpe/termination-service/internal/repository/memory"
	"github.com/nurpe/termination-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	var store repository.TerminationStore
	switch cfg.DB.Driver {
	case config.StoreDriverMemory:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		store = memory.NewTerminationStore()
	default:
		database, err := db.New(cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect database")
		}
		store = repository.NewTerminationRepository(database)
	}

	pdfGenerator, err := pdf.NewGenerator(cfg.PDF.FontPath, cfg.PDF.BoldFontPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}

	terminationService, err := service.NewTerminationService(
		store,
		excel.NewGenerator(),
		pdfGenerator,
		cfg,
		log,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init termination service")
	}

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(terminationService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.CORSAllowedOrigins, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting termination service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
