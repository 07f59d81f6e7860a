// Package main implements the esdata command: the HTTP API server plus offline mapping tools.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esdata/internal/config"
	"github.com/kailas-cloud/esdata/internal/db/elastic"
	logpkg "github.com/kailas-cloud/esdata/internal/logger"
	"github.com/kailas-cloud/esdata/internal/mapping"
	"github.com/kailas-cloud/esdata/internal/metrics"
	"github.com/kailas-cloud/esdata/internal/version"
)

var (
	// env selects config/<env>.yaml
	env string
	// schemaPaths overrides schemas.paths from the config file
	schemaPaths []string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "esdata",
		Short: "Elasticsearch entity mapping server and tools",
		Long: `esdata maps entity schemas onto Elasticsearch indices and serves
document and search operations over HTTP.

Configuration is read from config/<env>.yaml, where env comes from --env
or the ENV variable.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version.Version, version.Commit, version.Date),
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&env, "env", config.GetEnv(), "configuration environment (local, dev, prod)")
	root.PersistentFlags().StringSliceVar(&schemaPaths, "schema", nil, "schema file, repeatable (default: schemas.paths from config)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newMappingCmd())
	root.AddCommand(newEnsureCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "esdata %s\ncommit: %s\nbuilt:  %s\n",
				version.Version, version.Commit, version.Date)
		},
	}
}

// loadConfig reads the config for the selected environment and builds its logger.
func loadConfig() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

// newMappingContext registers every schema found in paths.
func newMappingContext(paths []string, logger *zap.Logger) (*mapping.Context, error) {
	mc := mapping.NewContext(
		mapping.WithLogger(logger),
		mapping.WithObserver(metrics.EntityObserver{}),
	)
	if len(paths) == 0 {
		return mc, nil
	}
	schemas, err := mapping.LoadSchemaFiles(paths...)
	if err != nil {
		return nil, fmt.Errorf("load schemas: %w", err)
	}
	if err := mc.RegisterAll(schemas); err != nil {
		return nil, fmt.Errorf("register schemas: %w", err)
	}
	return mc, nil
}

// resolveSchemaPaths prefers --schema over the config file.
func resolveSchemaPaths(cfg config.Config) []string {
	if len(schemaPaths) > 0 {
		return schemaPaths
	}
	return cfg.Schemas.Paths
}

// openStore connects to the cluster and waits until it answers.
func openStore(cfg config.Config, logger *zap.Logger) (*elastic.Store, error) {
	es := cfg.Elasticsearch
	store, err := elastic.NewStore(elastic.Config{
		Addresses:          es.Addresses,
		CloudID:            es.CloudID,
		Username:           es.Username,
		Password:           es.Password,
		APIKey:             es.APIKey,
		MaxRetries:         es.MaxRetries,
		InsecureSkipVerify: es.InsecureSkipVerify,
	},
		elastic.WithLatency(metrics.ElasticsearchRequestDuration),
		elastic.WithRefresh(es.Refresh),
	)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch store: %w", err)
	}

	timeout := time.Duration(es.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(context.Background(), timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("elasticsearch not ready: %w", err)
	}
	logger.Info("Connected to Elasticsearch", zap.Strings("addresses", es.Addresses))
	return store, nil
}
