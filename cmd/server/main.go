package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"salon-booking-api/internal/config"
	"salon-booking-api/internal/handler"
	"salon-booking-api/internal/identity"
	"salon-booking-api/internal/middleware"
	"salon-booking-api/internal/scheduling"
	"salon-booking-api/internal/store"
	"salon-booking-api/internal/ws"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "salon-booking-api",
		Short: "Appointment booking API server",
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	pcfg.MaxConns = cfg.DBMaxConns

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			ctx := context.Background()
			pool, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			log.Info().Msg("connected to postgres")

			st := store.New(pool)
			hub := ws.NewHub(log.With().Str("component", "ws").Logger())
			go hub.Run()

			svc := scheduling.NewService(st,
				log.With().Str("component", "scheduling").Logger(),
				scheduling.WithNotifier(ws.NewHubNotifier(hub)),
			)
			resolver := identity.NewResolver(st)
			h := handler.New(st, svc, resolver, hub, cfg.JWTSecret, log)

			e := echo.New()
			e.HideBanner = true
			e.Use(echomw.Recover())
			e.Use(requestLogger(log))
			e.Use(echomw.CORS())

			rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
			h.RegisterRoutes(e, rl)
			e.GET("/healthz", func(c echo.Context) error {
				if err := pool.Ping(c.Request().Context()); err != nil {
					return c.NoContent(http.StatusServiceUnavailable)
				}
				return c.NoContent(http.StatusOK)
			})

			go func() {
				log.Info().Str("port", cfg.Port).Msg("http listening")
				if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("http server")
				}
			}()

			ch := make(chan os.Signal, 1)
			signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
			<-ch
			log.Info().Msg("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			ctx := context.Background()
			pool, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			files, err := filepath.Glob(filepath.Join(cfg.MigrationsDir, "*.sql"))
			if err != nil {
				return err
			}
			sort.Strings(files)
			for _, f := range files {
				sql, err := os.ReadFile(f)
				if err != nil {
					return err
				}
				if _, err := pool.Exec(ctx, string(sql)); err != nil {
					return err
				}
				log.Info().Str("file", f).Msg("migration applied")
			}
			return nil
		},
	}
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Msg("request")
			return nil
		},
	})
}
