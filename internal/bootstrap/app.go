package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/locvowork/excel_exporter/internal/config"
	"github.com/locvowork/excel_exporter/internal/database"
	"github.com/locvowork/excel_exporter/internal/handler"
	"github.com/locvowork/excel_exporter/internal/logger"
	"github.com/locvowork/excel_exporter/internal/service"
	"github.com/locvowork/excel_exporter/pkg/excelexport"
	"github.com/locvowork/excel_exporter/pkg/googlecloud"
	"github.com/locvowork/excel_exporter/pkg/rowsource"
)

type App struct {
	Echo *echo.Echo
	DB   *sql.DB
	GCP  *googlecloud.Client
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}

	// Initialize logging
	if err := logger.InitLogging(config.DefaultEnvConfig.LOG_FILE_PATH, config.DefaultEnvConfig.LOG_LEVEL); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	catalog, err := loadCatalog(ctx, config.DefaultEnvConfig.REPORTS_FILE)
	if err != nil {
		return err
	}

	sources, err := a.openSources(ctx)
	if err != nil {
		return err
	}

	opts := []excelexport.Option{
		excelexport.WithDateLayout(config.DefaultEnvConfig.DATE_LAYOUT),
		excelexport.WithLogger(logger.Logger()),
	}
	reportSvc := service.NewReportService(catalog, sources,
		service.WithExportOptions(opts...),
		service.WithSourceRetry(config.DefaultEnvConfig.SOURCE_RETRIES, config.DefaultEnvConfig.SOURCE_RETRY_BACKOFF),
	)
	exportHandler := handler.NewExportHandler(reportSvc, opts...)

	a.RegisterMiddlewares()
	a.RegisterRoutes(exportHandler)
	return nil
}

func loadCatalog(ctx context.Context, path string) (*config.ReportCatalog, error) {
	catalog, err := config.LoadReports(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.WarnLog(ctx, "report catalogue %s not found, serving no reports", path)
		return &config.ReportCatalog{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}
	logger.InfoLog(ctx, "Loaded %d reports from %s", len(catalog.Reports), path)
	return catalog, nil
}

// openSources connects the row sources that have configuration.
func (a *App) openSources(ctx context.Context) (map[string]rowsource.Source, error) {
	env := config.DefaultEnvConfig
	sources := make(map[string]rowsource.Source)

	if env.DB_HOST != "" {
		db, err := database.NewPostgresDB(ctx, database.Config{
			Host:            env.DB_HOST,
			Port:            env.DB_PORT,
			User:            env.DB_USER,
			Password:        env.DB_PASSWORD,
			DBName:          env.DB_NAME,
			SSLMode:         env.DB_SSL_MODE,
			MaxOpenConns:    env.DB_MAX_OPEN_CONNS,
			MaxIdleConns:    env.DB_MAX_IDLE_CONNS,
			ConnMaxLifetime: env.DB_CONN_MAX_LIFETIME,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.DB = db
		sources[config.SourcePostgres] = rowsource.NewSQL(db)
	}

	if env.GCP_PROJECT_ID != "" {
		gcpClient, err := googlecloud.NewClient(ctx, env.GCP_PROJECT_ID)
		if err != nil {
			// Datastore reports fail individually rather than taking the server down.
			logger.ErrorLog(ctx, "failed to initialize GCP client: %v", err)
		} else {
			a.GCP = gcpClient
			sources[config.SourceDatastore] = rowsource.NewDatastore(gcpClient)
		}
	}

	if env.ELASTIC_URL != "" {
		es, err := rowsource.NewElastic(env.ELASTIC_URL)
		if err != nil {
			logger.ErrorLog(ctx, "failed to initialize elasticsearch client: %v", err)
		} else {
			sources[config.SourceElastic] = es
		}
	}

	for name := range sources {
		logger.InfoLog(ctx, "row source %s enabled", name)
	}
	return sources, nil
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes(exportHandler *handler.ExportHandler) {
	exportGroup := a.Echo.Group("/export")
	exportGroup.GET("/sample", exportHandler.SampleHandler)
	exportGroup.POST("", exportHandler.InferHandler)

	reportGroup := a.Echo.Group("/reports")
	reportGroup.GET("", exportHandler.ListReportsHandler)
	reportGroup.GET("/:id/export", exportHandler.ReportHandler)
}

func (a *App) Run() error {
	defer a.Close()
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}

func (a *App) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.GCP != nil {
		_ = a.GCP.Close()
	}
}
