package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cppla/inkwell/config"
	"github.com/cppla/inkwell/routes"
	"github.com/cppla/inkwell/store"
	"github.com/cppla/inkwell/utils"
)

func main() {
	var configPath string
	var migrateFirst bool

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath, migrateFirst)
		},
	}
	serveCmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply schema migration before serving")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the user and article tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(configPath)
		},
	}

	rootCmd := &cobra.Command{
		Use:          "inkwell",
		Short:        "Users and articles over HTTP",
		SilenceUsage: true,
		RunE:         serveCmd.RunE,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to the JSON config file")
	rootCmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply schema migration before serving")
	rootCmd.AddCommand(serveCmd, migrateCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func bootstrap(configPath string) (config.AppConfig, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg)
	if err != nil {
		return cfg, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

func migrate(configPath string) error {
	cfg, logger, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := config.OpenDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer config.CloseDatabase(db)

	if err := config.Migrate(db); err != nil {
		return err
	}
	logger.Info("schema migrated", zap.String("driver", cfg.DBDriver), zap.String("database", cfg.DBName))
	return nil
}

func serve(ctx context.Context, configPath string, migrateFirst bool) error {
	cfg, logger, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := config.OpenDatabase(cfg, logger)
	if err != nil {
		return err
	}
	if migrateFirst {
		if err := config.Migrate(db); err != nil {
			_ = config.CloseDatabase(db)
			return err
		}
	}

	opts := store.Options{
		Hasher: utils.NewPasswordHasher(cfg.PasswordHashing),
		Logger: logger.Named("store"),
	}
	rdb, err := utils.NewRedis(cfg)
	if err != nil {
		logger.Warn("redis ping failed, cache calls will miss until it recovers", zap.Error(err))
	}
	if rdb != nil {
		opts.Cache = store.NewRedisCache(rdb, time.Duration(cfg.CacheTTLSeconds)*time.Second, logger.Named("cache"))
	}

	r := routes.SetupRouter(cfg, store.New(db, opts), logger, nil)

	srv := utils.NewServer(":"+cfg.AppPort, r, logger)
	srv.OnShutdown(func() error { return config.CloseDatabase(db) })
	if rdb != nil {
		srv.OnShutdown(rdb.Close)
	}

	logger.Info("Starting server (graceful)", zap.String("port", cfg.AppPort), zap.String("driver", cfg.DBDriver))
	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
