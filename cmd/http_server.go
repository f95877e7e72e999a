package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/application"
	applicationPostgres "github.com/frahmantamala/hr-attendance/internal/application/postgres"
	"github.com/frahmantamala/hr-attendance/internal/attendance"
	attendancePostgres "github.com/frahmantamala/hr-attendance/internal/attendance/postgres"
	"github.com/frahmantamala/hr-attendance/internal/auth"
	authPostgres "github.com/frahmantamala/hr-attendance/internal/auth/postgres"
	"github.com/frahmantamala/hr-attendance/internal/core/events"
	"github.com/frahmantamala/hr-attendance/internal/notification"
	notificationPostgres "github.com/frahmantamala/hr-attendance/internal/notification/postgres"
	"github.com/frahmantamala/hr-attendance/internal/organization"
	organizationPostgres "github.com/frahmantamala/hr-attendance/internal/organization/postgres"
	"github.com/frahmantamala/hr-attendance/internal/transport/rest"
	"github.com/frahmantamala/hr-attendance/internal/user"
	userPostgres "github.com/frahmantamala/hr-attendance/internal/user/postgres"
	"github.com/frahmantamala/hr-attendance/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	Handlers rest.Handlers
	Authz    *auth.Authorization
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers, deps.Authz, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := internal.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	log := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	eventBus := events.NewEventBus(log)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewAuthRepository(gormDB), tokenGen, config.Security.BCryptCost)
	userService := user.NewService(userPostgres.NewUserRepository(gormDB), log, config.Security.BCryptCost)
	organizationService := organization.NewService(organizationPostgres.NewOrganizationRepository(gormDB), log)
	applicationService := application.NewService(applicationPostgres.NewApplicationRepository(gormDB), eventBus, log, nil)
	attendanceService := attendance.NewService(attendancePostgres.NewAttendanceRepository(gormDB), log, nil)
	notificationService := notification.NewService(notificationPostgres.NewNotificationRepository(gormDB), log)

	notification.NewEventHandler(notificationService, log).RegisterEventHandlers(eventBus)

	handlers := rest.Handlers{
		Auth:         auth.NewHandler(authService),
		User:         user.NewHandler(userService),
		Organization: organization.NewHandler(organizationService),
		Application:  application.NewHandler(applicationService),
		Attendance:   attendance.NewHandler(attendanceService),
		Notification: notification.NewHandler(notificationService),
	}

	return &Dependencies{
		Config:   config,
		Logger:   log,
		DB:       db,
		GormDB:   gormDB,
		Router:   chi.NewRouter(),
		Handlers: handlers,
		Authz:    auth.NewAuthorization(log),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
