package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"anoa.com/campushub/internal/bootstrap"
	"anoa.com/campushub/internal/config"
	"anoa.com/campushub/internal/server"
	"anoa.com/campushub/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var port string
	var skipSeed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server.

The server migrates the schema, seeds the sample course catalog when it is
empty, then serves until SIGINT or SIGTERM.

Examples:
  # Start with configuration from the environment
  campushub serve

  # Start on another port with console logs
  campushub serve --port 9090 --log-format console`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			return runServer(cmd.Context(), cfg, !skipSeed)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (default: $PORT or 8080)")
	cmd.Flags().BoolVar(&skipSeed, "skip-seed", false, "do not seed the sample course catalog")
	return cmd
}

func runServer(parent context.Context, cfg *config.Config, seed bool) error {
	logger := config.NewLogger(cfg.Logging)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := bootstrap.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if seed {
		if err := bootstrap.SeedCourses(db); err != nil {
			return fmt.Errorf("failed to seed courses: %w", err)
		}
	}

	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		// sessions and login throttling degrade to stateless without redis
		logger.Warn().Err(err).Msg("redis unavailable, continuing without it")
		redisClient = nil
	}

	srv, err := server.NewServer(ctx, cfg, logger, db, redisClient)
	if err != nil {
		return err
	}

	logger.Info().Str("env", cfg.AppEnv).Str("blob_backend", cfg.BlobBackend).Msg("starting campushub")
	return srv.Run(ctx, ":"+cfg.Port)
}
