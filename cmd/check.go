package cmd

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/fedjobs/internal/config"
	"github.com/spigell/fedjobs/internal/logger"
)

const checkTimeout = 30 * time.Second

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify USAJOBS credentials and connectivity",
	Run: func(_ *cobra.Command, _ []string) {
		check()
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func check() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	cfg, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store, err := config.Load(cfg.ConfigDir, logger)
	if err != nil {
		logger.Fatal("loading configuration", zap.Error(err), zap.String("config_dir", cfg.ConfigDir))
	}

	api := store.API()
	logger.Info("using USAJOBS settings",
		zap.String("base_url", api.API.BaseURL),
		zap.Duration("request_timeout", api.Timeout()),
		zap.Int("max_retries", api.MaxRetries),
		zap.Float64("cache_ttl", api.CacheTTL),
	)

	client, err := newListingSource(cfg, api, logger)
	if err != nil {
		logger.Fatal("checking credentials", zap.Error(err),
			zap.String("hint", "set USAJOBS_API_KEY and USAJOBS_EMAIL in the environment or the env file"),
		)
	}

	total, err := client.Ping(ctx)
	if err != nil {
		logger.Fatal("connecting to USAJOBS", zap.Error(err))
	}

	logger.Info("USAJOBS connection is working", zap.Int("probe_listings", total))
}
