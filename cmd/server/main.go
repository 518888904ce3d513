package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quantumglobal/requisition/internal/ai"
	"github.com/quantumglobal/requisition/internal/api"
	"github.com/quantumglobal/requisition/internal/config"
	"github.com/quantumglobal/requisition/internal/export"
	"github.com/quantumglobal/requisition/internal/models"
	"github.com/quantumglobal/requisition/internal/notification"
	"github.com/quantumglobal/requisition/internal/repository"
	"github.com/quantumglobal/requisition/internal/workflow"
	"github.com/quantumglobal/requisition/pkg/database"
	"github.com/quantumglobal/requisition/pkg/utils"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

func main() {
	// Load a local .env if present before reading configuration
	_ = gotenv.Load()

	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Purchase Requisition Service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Create the data directory for the database file
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create data directory", zap.Error(err))
		}
	}

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repository
	repo := repository.NewRequisitionRepository(db.DB, logger)
	if err := repo.Init(context.Background()); err != nil {
		logger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	// Initialize workflow engine
	engine := workflow.NewEngine(logger)

	// Initialize form renderers
	letterhead := export.DefaultLetterhead()
	if cfg.Export.CompanyName != "" {
		letterhead.CompanyName = cfg.Export.CompanyName
	}
	if cfg.Export.DocNo != "" {
		letterhead.DocNo = cfg.Export.DocNo
	}
	if cfg.Export.Revision != "" {
		letterhead.Revision = cfg.Export.Revision
	}
	excelFiller := export.NewExcelFiller(letterhead, logger)
	pdfWriter := export.NewPDFWriter(letterhead, logger)

	// Initialize AI autofill when configured
	var (
		autofill api.AutofillProvider
		quotes   api.QuoteProvider
	)
	if cfg.OpenAI.Enabled() {
		autofill = ai.NewAutofill(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Temperature, logger)
		quotes = ai.NewQuoteReader(cfg.OpenAI.APIKey, cfg.OpenAI.VisionModel, logger)
		logger.Info("Autofill enabled",
			zap.String("model", cfg.OpenAI.Model),
			zap.String("vision_model", cfg.OpenAI.VisionModel))
	} else {
		logger.Info("Autofill disabled, no API key configured")
	}

	// Initialize notifications when configured
	var notifier notification.Notifier = notification.Nop{}
	if cfg.Lark.Enabled() {
		contacts := make(map[models.Role]string, len(cfg.Lark.Contacts))
		for name, openID := range cfg.Lark.Contacts {
			role, err := models.ParseRole(name)
			if err != nil {
				logger.Fatal("Invalid role in lark.contacts", zap.String("role", name))
			}
			contacts[role] = openID
		}
		notifier = notification.NewLarkNotifier(notification.Config{
			AppID:     cfg.Lark.AppID,
			AppSecret: cfg.Lark.AppSecret,
			Contacts:  contacts,
		}, logger)
		logger.Info("Lark notifications enabled", zap.Int("contacts", len(contacts)))
	}

	// Set Gin mode based on logger level
	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize HTTP router
	handler := api.NewHandler(repo, engine, excelFiller, pdfWriter, autofill, quotes, notifier, logger)
	router := api.NewRouter(handler, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
