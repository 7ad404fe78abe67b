package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carefind/carefind/internal/config"
	"github.com/carefind/carefind/internal/domain/booking"
	"github.com/carefind/carefind/internal/domain/directory"
	"github.com/carefind/carefind/internal/domain/patients"
	"github.com/carefind/carefind/internal/domain/reviews"
	"github.com/carefind/carefind/internal/platform/apperr"
	"github.com/carefind/carefind/internal/platform/db"
	"github.com/carefind/carefind/internal/platform/metrics"
	"github.com/carefind/carefind/internal/platform/middleware"
	"github.com/carefind/carefind/pkg/pagination"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "carefind-server",
		Short: "Provider directory and booking API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
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
			if dir == "" {
				dir = cfg.MigrationsDir
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
	upCmd.Flags().String("dir", "", "Path to migrations directory (default from MIGRATIONS_DIR)")
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
			if dir == "" {
				dir = cfg.MigrationsDir
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
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
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
	statusCmd.Flags().String("dir", "", "Path to migrations directory (default from MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample providers into an empty directory",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
			svc := directory.NewService(directory.NewRepoPG(pool), logger)

			var existing int
			_, existing, err = svc.Search(ctx, directory.SearchCriteria{}, pagination.Params{Page: 1, Limit: 1})
			if err != nil {
				return err
			}
			if existing > 0 {
				fmt.Printf("Directory already holds %d provider(s); nothing to do.\n", existing)
				return nil
			}

			for _, in := range sampleProviders() {
				if _, err := svc.Create(ctx, in); err != nil {
					return fmt.Errorf("seeding %q: %w", in.Name, err)
				}
			}
			fmt.Printf("Seeded %d provider(s).\n", len(sampleProviders()))
			return nil
		},
	}
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeoutDuration()))
	e.Use(middleware.HTTPMetrics(m))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "Idempotency-Key"},
	}))
	if cfg.AuthSecret != "" {
		e.Use(middleware.BearerClaims(cfg.AuthSecret))
	}

	apiV1 := e.Group("/api/v1")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Services
	providerSvc := directory.NewService(directory.NewRepoPG(pool), logger)
	patientSvc := patients.NewService(patients.NewRepoPG(pool), logger)
	txRunner := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return apperr.FromStore(db.WithTx(ctx, pool, fn))
	}
	bookingSvc := booking.NewService(booking.NewRepoPG(pool), providerSvc, patientSvc, txRunner, m, logger)
	reviewSvc := reviews.NewService(reviews.NewRepoPG(pool), providerSvc, patientSvc, m, logger)

	// Routes
	directory.NewHandler(providerSvc).RegisterRoutes(apiV1)
	patients.NewHandler(patientSvc).RegisterRoutes(apiV1)
	booking.NewHandler(bookingSvc).RegisterRoutes(apiV1)
	reviews.NewHandler(reviewSvc).RegisterRoutes(apiV1)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

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

func strPtr(s string) *string { return &s }

func sampleProviders() []directory.Input {
	return []directory.Input{
		{
			Name: "Dr. Sarah Chen", Specialty: "Cardiology", Location: "Boston, MA", Price: 250,
			Experience: strPtr("15 years"), Availability: strPtr("Available today"),
			About:            strPtr("Board-certified cardiologist focusing on preventive care and heart health."),
			Education:        strPtr("Harvard Medical School"),
			Languages:        []string{"English", "Mandarin"},
			AcceptsInsurance: true, Gender: strPtr("female"),
			Specializations: []string{"Preventive Cardiology", "Echocardiography"},
		},
		{
			Name: "Dr. Marcus Webb", Specialty: "Dermatology", Location: "New York, NY", Price: 180,
			Experience: strPtr("9 years"), Availability: strPtr("Next available: tomorrow"),
			About:            strPtr("Dermatologist treating both medical and cosmetic skin conditions."),
			Education:        strPtr("Columbia University"),
			Languages:        []string{"English"},
			AcceptsInsurance: true, Gender: strPtr("male"),
			Specializations: []string{"Medical Dermatology", "Skin Cancer Screening"},
		},
		{
			Name: "Dr. Ana Reyes", Specialty: "Pediatrics", Location: "Austin, TX", Price: 120,
			Experience: strPtr("12 years"), Availability: strPtr("Available today"),
			About:            strPtr("Pediatrician caring for newborns through adolescents."),
			Education:        strPtr("Baylor College of Medicine"),
			Languages:        []string{"English", "Spanish"},
			AcceptsInsurance: true, Gender: strPtr("female"),
			Specializations: []string{"Newborn Care", "Adolescent Medicine"},
		},
		{
			Name: "Dr. James Okafor", Specialty: "Orthopedics", Location: "Chicago, IL", Price: 300,
			Experience: strPtr("20 years"), Availability: strPtr("Next available: Monday"),
			About:            strPtr("Orthopedic surgeon specializing in sports injuries and joint replacement."),
			Education:        strPtr("Northwestern University"),
			Languages:        []string{"English", "Igbo"},
			AcceptsInsurance: false, Gender: strPtr("male"),
			Specializations: []string{"Sports Medicine", "Joint Replacement"},
		},
		{
			Name: "Dr. Leila Haddad", Specialty: "Psychiatry", Location: "Seattle, WA", Price: 200,
			Experience: strPtr("8 years"), Availability: strPtr("Available today"),
			About:            strPtr("Psychiatrist offering medication management and talk therapy, in person and by video."),
			Education:        strPtr("University of Washington"),
			Languages:        []string{"English", "Arabic", "French"},
			AcceptsInsurance: true, Gender: strPtr("female"),
			Specializations: []string{"Anxiety Disorders", "Telepsychiatry"},
		},
	}
}
