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

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sisedoc/document-tracking/internal"
	"github.com/sisedoc/document-tracking/internal/attachment"
	attachmentPostgres "github.com/sisedoc/document-tracking/internal/attachment/postgres"
	"github.com/sisedoc/document-tracking/internal/auth"
	authPostgres "github.com/sisedoc/document-tracking/internal/auth/postgres"
	"github.com/sisedoc/document-tracking/internal/core/events"
	"github.com/sisedoc/document-tracking/internal/department"
	departmentPostgres "github.com/sisedoc/document-tracking/internal/department/postgres"
	"github.com/sisedoc/document-tracking/internal/document"
	documentPostgres "github.com/sisedoc/document-tracking/internal/document/postgres"
	"github.com/sisedoc/document-tracking/internal/mailer"
	"github.com/sisedoc/document-tracking/internal/notification"
	notificationPostgres "github.com/sisedoc/document-tracking/internal/notification/postgres"
	"github.com/sisedoc/document-tracking/internal/stats"
	statsPostgres "github.com/sisedoc/document-tracking/internal/stats/postgres"
	"github.com/sisedoc/document-tracking/internal/transport"
	"github.com/sisedoc/document-tracking/internal/transport/rest"
	"github.com/sisedoc/document-tracking/internal/user"
	userPostgres "github.com/sisedoc/document-tracking/internal/user/postgres"
	"github.com/sisedoc/document-tracking/pkg/logger"
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
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Router *chi.Mux
	Hub    *notification.Hub
	Mailer *mailer.Client
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if deps.Mailer != nil {
			deps.Mailer.Shutdown()
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	eventBus := events.NewEventBus(lg)

	hub := notification.NewHub(lg)
	go hub.Run()

	var mailClient *mailer.Client
	if config.Mailer.APIURL != "" {
		mailClient = mailer.NewClient(mailer.Config{
			APIURL:       config.Mailer.APIURL,
			APIKey:       config.Mailer.APIKey,
			FromAddress:  config.Mailer.FromAddress,
			SendTimeout:  config.Mailer.SendTimeout,
			MaxWorkers:   config.Mailer.MaxWorkers,
			JobQueueSize: config.Mailer.JobQueueSize,
		}, lg)
	}

	baseHandler := transport.NewBaseHandler(lg)

	// auth
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(gormDB), tokenGen, config.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)
	rbac := auth.NewRoleAuthorization(lg)

	// departments
	departmentService := department.NewService(departmentPostgres.NewDepartmentRepository(gormDB), lg)
	departmentHandler := department.NewHandler(baseHandler, departmentService)

	// documents
	documentService := document.NewService(documentPostgres.NewDocumentRepository(gormDB), eventBus, lg)
	documentHandler := document.NewHandler(baseHandler, documentService)

	// attachments
	blobStorage := attachment.NewDiskStorage(config.Storage.BasePath, config.Storage.Bucket)
	attachmentService := attachment.NewService(
		attachmentPostgres.NewAttachmentRepository(gormDB),
		blobStorage,
		documentRefGetter{documents: documentService},
		eventBus,
		lg,
	)
	attachmentHandler := attachment.NewHandler(baseHandler, attachmentService)

	// notifications
	notificationService := notification.NewService(
		notificationPostgres.NewNotificationRepository(gormDB), hub, lg)
	notificationService.SubscribeToEvents(eventBus)
	notificationHandler := notification.NewHandler(baseHandler, notificationService, hub)

	// stats
	statsService := stats.NewService(statsPostgres.NewStatsRepository(db), lg)
	statsHandler := stats.NewHandler(baseHandler, statsService)

	// users
	var credentialsMailer user.CredentialsMailer
	if mailClient != nil {
		credentialsMailer = mailClient
	}
	userService := user.NewService(
		userPostgres.NewUserRepository(gormDB),
		credentialsMailer,
		eventBus,
		config.Security.BCryptCost,
		lg,
	)
	userHandler := user.NewHandler(baseHandler, userService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, rest.Handlers{
		Auth:         authHandler,
		RBAC:         rbac,
		User:         userHandler,
		Department:   departmentHandler,
		Document:     documentHandler,
		Attachment:   attachmentHandler,
		Notification: notificationHandler,
		Stats:        statsHandler,
	}, config.Server.AllowedOrigins, lg)

	return &Dependencies{
		Config: config,
		DB:     db,
		Gorm:   gormDB,
		Router: router,
		Hub:    hub,
		Mailer: mailClient,
		Logger: lg,
	}, nil
}

// documentRefGetter lets the attachment service look up documents without
// importing the document package's full surface.
type documentRefGetter struct {
	documents *document.Service
}

func (g documentRefGetter) GetByID(id int64) (*attachment.DocumentRef, error) {
	doc, err := g.documents.GetByID(id)
	if err != nil {
		return nil, err
	}
	return &attachment.DocumentRef{
		ID:                  doc.ID,
		DocumentCode:        doc.DocumentCode,
		CurrentDepartmentID: doc.CurrentDepartmentID,
	}, nil
}

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

// initGorm reuses the already-open pgx connection pool.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
}
