package bootstrap

import (
	"context"
	"fmt"

	"github.com/locvowork/idpel_checker/internal/config"
	"github.com/locvowork/idpel_checker/internal/domain"
	"github.com/locvowork/idpel_checker/internal/logger"
	"github.com/locvowork/idpel_checker/internal/reader"
	"github.com/locvowork/idpel_checker/internal/repository"
	"github.com/locvowork/idpel_checker/internal/service"
	"github.com/locvowork/idpel_checker/pkg/xlsxreport"
)

type App struct {
	Checker   *service.CheckService
	Builder   *service.ReportBuilder
	History   domain.HistoryRepository
	OutputDir string
}

func NewApp() *App {
	return &App{}
}

// Initialize loads configuration, sets up logging and wires the services.
func (a *App) Initialize(ctx context.Context, envFiles ...string) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(envFiles...); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	// Initialize logging
	logger.InitLogging(cfg.LOG_FILE_PATH, cfg.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	theme := xlsxreport.DefaultTheme()
	if cfg.REPORT_THEME_PATH != "" {
		loaded, err := xlsxreport.LoadTheme(cfg.REPORT_THEME_PATH)
		if err != nil {
			return fmt.Errorf("failed to load report theme: %w", err)
		}
		theme = loaded
		logger.InfoLog(ctx, "Report theme loaded from %s", cfg.REPORT_THEME_PATH)
	}

	// Initialize dependencies
	snapshotReader := reader.NewWorkbookReader(cfg.KEY_FIELD)
	engine := service.NewDiffEngine(cfg.KEY_FIELD)
	a.Builder = service.NewReportBuilder(xlsxreport.NewStyledRenderer(theme))
	a.History = repository.NewHistoryRepository(cfg.HISTORY_FILE_PATH, cfg.HISTORY_LIMIT)
	a.Checker = service.NewCheckService(snapshotReader, engine, a.Builder, a.History, service.CheckServiceConfig{
		Targets:     cfg.TARGET_SHEETS,
		ReadTimeout: cfg.READ_TIMEOUT,
	})
	a.OutputDir = cfg.OUTPUT_DIR

	logger.InfoLog(ctx, "Checker ready: key field %s, targets %v", engine.KeyField(), cfg.TARGET_SHEETS)
	return nil
}
