package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/plantdocs/formflow/internal/application/port"
	"github.com/plantdocs/formflow/internal/application/service"
	"github.com/plantdocs/formflow/internal/config"
	"github.com/plantdocs/formflow/internal/domain/authz"
	"github.com/plantdocs/formflow/internal/export"
	"github.com/plantdocs/formflow/internal/infrastructure/audit"
	"github.com/plantdocs/formflow/internal/infrastructure/notify"
	"github.com/plantdocs/formflow/internal/infrastructure/persistence/repository"
	httpadapter "github.com/plantdocs/formflow/internal/interfaces/http"
	"github.com/plantdocs/formflow/pkg/database"
	"github.com/plantdocs/formflow/pkg/utils"
)

func main() {
	// Local development credentials live in .env; absence is fine
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

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

	logger.Info("Starting form workflow service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

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

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Persistence and emitters
	submissionRepo := repository.NewSubmissionRepository(db, logger)
	auditRecorder := audit.NewRecorder(db, logger)

	var notifier port.Notifier
	if cfg.Lark.Enabled {
		notifier = notify.NewLarkNotifier(notify.LarkConfig{
			AppID:     cfg.Lark.AppID,
			AppSecret: cfg.Lark.AppSecret,
			ChatIDs:   cfg.Lark.ChatIDs,
		}, logger)
	} else {
		notifier = notify.NewNoopNotifier(logger)
	}

	// Workflow engine
	resolver := authz.NewResolver(authz.Policy{
		AllowSelfApproval: cfg.Workflow.AllowSelfApproval,
	})
	engine := service.NewWorkflowEngine(
		submissionRepo,
		resolver,
		auditRecorder,
		notifier,
		utils.NewSugarAdapter(logger),
	)

	// Exporters
	excelExporter := export.NewExcelExporter(logger)
	pdfExporter := export.NewPDFExporter(export.DefaultPDFOptions(), logger)

	// HTTP server
	server := httpadapter.NewServer(
		httpadapter.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		engine,
		auditRecorder,
		excelExporter,
		pdfExporter,
		utils.NewSugarAdapter(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
