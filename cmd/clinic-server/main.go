package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Supun-Chathuranga/care-connect-pro/internal/config"
	"github.com/Supun-Chathuranga/care-connect-pro/internal/domain/identity"
	"github.com/Supun-Chathuranga/care-connect-pro/internal/domain/scheduling"
	"github.com/Supun-Chathuranga/care-connect-pro/internal/platform/auth"
	"github.com/Supun-Chathuranga/care-connect-pro/internal/platform/db"
	"github.com/Supun-Chathuranga/care-connect-pro/internal/platform/middleware"
	"github.com/Supun-Chathuranga/care-connect-pro/internal/platform/notification"
	"github.com/Supun-Chathuranga/care-connect-pro/internal/platform/reminder"
)

// DoctorDirectoryAdapter adapts the identity service to the scheduling
// domain's DoctorDirectory, avoiding a direct import between the two domains.
type DoctorDirectoryAdapter struct {
	svc *identity.Service
}

func (a *DoctorDirectoryAdapter) Exists(ctx context.Context, doctorID uuid.UUID) (bool, error) {
	return a.svc.DoctorExists(ctx, doctorID)
}

// ContactDirectoryAdapter adapts the identity service to the notification
// platform's Directory.
type ContactDirectoryAdapter struct {
	svc *identity.Service
}

func (a *ContactDirectoryAdapter) PatientContact(ctx context.Context, patientID uuid.UUID) (*notification.Contact, error) {
	p, err := a.svc.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	contact := &notification.Contact{Name: p.Name, Email: p.Email}
	if p.Phone != nil {
		contact.Phone = *p.Phone
	}
	return contact, nil
}

func (a *ContactDirectoryAdapter) DoctorName(ctx context.Context, doctorID uuid.UUID) (string, error) {
	d, err := a.svc.GetDoctor(ctx, doctorID)
	if err != nil {
		return "", err
	}
	return d.Name, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic appointment booking API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the booking API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	if cfg.IsDev() {
		logger.Warn().Msg("running in development mode, all requests get admin access")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "Idempotency-Key"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.JWTIssuer,
			Audience:   cfg.JWTAudience,
			SigningKey: []byte(cfg.JWTSigningKey),
		}))
	}

	apiV1 := e.Group("/api/v1")

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// Identity domain
	doctorRepo := identity.NewDoctorRepoPG(pool)
	patientRepo := identity.NewPatientRepoPG(pool)
	identitySvc := identity.NewService(doctorRepo, patientRepo, logger)
	identityHandler := identity.NewHandler(identitySvc)
	identityHandler.RegisterRoutes(apiV1)

	// Notifications
	tpl := notification.NewTemplateEngine()
	var sms notification.SMSSender = notification.LogOnlySender{}
	if cfg.SMSGatewayURL != "" {
		sms = notification.NewGatewayClient(cfg.SMSGatewayURL, cfg.SMSGatewayAPIKey, cfg.SMSSenderName, logger)
	}
	manager := notification.NewManager(notification.LogOnlySender{}, sms, tpl, logger)
	notifyCtx, stopNotify := context.WithCancel(context.Background())
	defer stopNotify()
	go manager.Run(notifyCtx)

	contacts := &ContactDirectoryAdapter{svc: identitySvc}
	notifier := notification.NewBookingNotifier(manager, contacts, logger)

	notificationHandler := notification.NewHandler(manager)
	adminGroup := apiV1.Group("", auth.RequireRole("admin"))
	notificationHandler.RegisterRoutes(adminGroup)

	// Scheduling domain
	sessionRepo := scheduling.NewSessionRepoPG(pool)
	apptRepo := scheduling.NewAppointmentRepoPG(pool)
	schedSvc := scheduling.NewService(sessionRepo, apptRepo, &DoctorDirectoryAdapter{svc: identitySvc}, notifier, logger)
	schedHandler := scheduling.NewHandler(schedSvc)
	schedHandler.RegisterRoutes(apiV1)

	// Daily reminder job
	reminderJob := reminder.NewJob(apptRepo, identitySvc, manager, contacts, logger)
	if err := reminderJob.Start(cfg.ReminderSchedule); err != nil {
		logger.Fatal().Err(err).Msg("failed to schedule reminder job")
	}
	defer reminderJob.Stop()

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
