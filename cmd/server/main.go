package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/good-yellow-bee/alerthub/internal/alerts"
	"github.com/good-yellow-bee/alerthub/internal/api"
	"github.com/good-yellow-bee/alerthub/internal/api/health"
	"github.com/good-yellow-bee/alerthub/internal/audience"
	"github.com/good-yellow-bee/alerthub/internal/metrics"
	"github.com/good-yellow-bee/alerthub/internal/models"
	"github.com/good-yellow-bee/alerthub/internal/notifier"
	"github.com/good-yellow-bee/alerthub/internal/reminder"
	"github.com/good-yellow-bee/alerthub/internal/storage"
	"github.com/good-yellow-bee/alerthub/pkg/config"
)

var (
	configFile string
	httpAddr   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "alerthub-server",
	Short: "AlertHub Server - Alert broadcasting and acknowledgement service",
	Long: `AlertHub Server manages organization, team, and user scoped alerts,
re-delivers reminders on a fixed cadence, and tracks per-user
read, unread, and snooze state.`,
	RunE: runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("alerthub-server %s\n", config.Version)
		fmt.Printf("  commit: %s\n", config.Commit)
		fmt.Printf("  built:  %s\n", config.BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().StringVarP(&httpAddr, "address", "a", "", "HTTP listen address")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*Config, error) {
	if configFile != "" {
		return LoadConfig(configFile)
	}
	return DefaultConfig(), nil
}

func openStorage(cfg *Config) (*storage.SQLiteStorage, error) {
	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	store := storage.NewSQLiteStorage(cfg.Database.Path)
	if err := store.Open(); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return store, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override with CLI flags
	if httpAddr != "" {
		cfg.Server.Address = httpAddr
	}
	cfg.Verbose = verbose

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	log.Printf("database initialized at %s", cfg.Database.Path)

	// Delivery pipeline
	dispatcher := notifier.NewDispatcher()
	dispatcher.Register(models.DeliveryInApp, notifier.NewInAppChannel(store.Deliveries()))
	defer dispatcher.Close()

	resolver := audience.NewResolver(store)
	service := alerts.NewService(store)

	var policy reminder.Policy = reminder.AlwaysRemind{}
	if cfg.Reminders.Policy == "suppress_read" {
		policy = reminder.SuppressRead{}
	}
	engine := reminder.NewEngine(store, dispatcher, resolver, policy, cfg.Reminders.Interval)

	apiServer, err := api.New(&api.Config{
		Address: cfg.Server.Address,
		Verbose: cfg.Verbose,
	}, store, service, engine)
	if err != nil {
		return fmt.Errorf("create api server: %w", err)
	}
	apiServer.RegisterHealthChecker(health.NewSQLiteChecker(store.DB()))

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("received signal %v, shutting down...", sig)
		cancel()
	}()

	log.Printf("starting alerthub-server %s", config.Version)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return apiServer.Run(gctx)
	})

	if cfg.Reminders.Enabled {
		engine.Start(gctx)
		g.Go(func() error {
			<-gctx.Done()
			engine.Stop()
			return nil
		})
	}

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics.Address)
		g.Go(func() error {
			if err := metricsServer.Start(); err != nil {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return metricsServer.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run server: %w", err)
	}

	log.Printf("server stopped")
	return nil
}
