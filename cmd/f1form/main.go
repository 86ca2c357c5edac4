package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/f1-form/internal/config"
	"github.com/yourusername/f1-form/internal/datasource"
	applog "github.com/yourusername/f1-form/internal/logger"
	"github.com/yourusername/f1-form/internal/repository"
	"github.com/yourusername/f1-form/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	cfg        *config.Config
	logger     *logrus.Logger
	repos      *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	rootCmd.AddCommand(fetchCmd, featuresCmd, trainCmd, pipelineCmd, predictCmd, serveCmd, scheduleCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "f1form",
	Short: "Predict Formula 1 race winners from recent form",
	Long: `f1form fetches historical race results, derives rolling form features,
trains a gradient-boosted winner classifier and serves ranked win probabilities.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger = applog.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		repos = repository.NewRepositories(cfg)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("f1form %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(ctx context.Context) error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := config.LoadSecrets(ctx, loaded); err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := config.Validate(loaded); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func newSource() (datasource.DataSource, error) {
	return datasource.NewFromConfig(cfg.Upstream, logger)
}

func newPipeline(withSource bool) (*service.Pipeline, error) {
	if !withSource {
		return service.NewPipeline(cfg, repos, nil, logger), nil
	}
	src, err := newSource()
	if err != nil {
		return nil, err
	}
	return service.NewPipeline(cfg, repos, src, logger), nil
}
