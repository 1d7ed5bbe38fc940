package investorlens

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeus1292/investorlens/pkg/config"
	"github.com/zeus1292/investorlens/pkg/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the InvestorLens HTTP server",
	Long: `Start the InvestorLens HTTP server to provide REST API access to the
search core.

The server provides endpoints for:
- Searching with natural-language queries
- Listing personas and their factor weights
- Browsing the company directory
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")

	serverCmd.Flags().String("db-driver", "memory", "Database driver (memory, neo4j)")
	serverCmd.Flags().String("db-uri", "", "Neo4j URI")
	serverCmd.Flags().String("db-username", "", "Neo4j username")
	serverCmd.Flags().String("db-password", "", "Neo4j password")
	serverCmd.Flags().String("db-database", "", "Neo4j database name")
	serverCmd.Flags().String("dataset", "", "Company dataset YAML for the memory driver")

	serverCmd.Flags().String("snapshot-path", "", "Local snapshot directory for offline serving")
	serverCmd.Flags().String("telemetry-parquet-path", "", "Directory for search event and error telemetry")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	overrideConfigWithFlags(cmd, cfg)

	if err := validateServerConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := buildClient(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize search core: %w", err)
	}
	defer client.Close(ctx)

	srv := server.New(cfg, client)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("server listening", "host", cfg.Server.Host, "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Info("shutting down", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		log.Info("server stopped")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	if cmd.Flags().Changed("db-driver") {
		cfg.Database.Driver, _ = cmd.Flags().GetString("db-driver")
	}
	if cmd.Flags().Changed("db-uri") {
		cfg.Database.URI, _ = cmd.Flags().GetString("db-uri")
		cfg.Database.Driver = "neo4j"
	}
	if cmd.Flags().Changed("db-username") {
		cfg.Database.Username, _ = cmd.Flags().GetString("db-username")
	}
	if cmd.Flags().Changed("db-password") {
		cfg.Database.Password, _ = cmd.Flags().GetString("db-password")
	}
	if cmd.Flags().Changed("db-database") {
		cfg.Database.Database, _ = cmd.Flags().GetString("db-database")
	}
	if cmd.Flags().Changed("dataset") {
		cfg.Database.DatasetPath, _ = cmd.Flags().GetString("dataset")
	}

	if cmd.Flags().Changed("snapshot-path") {
		cfg.Snapshot.Path, _ = cmd.Flags().GetString("snapshot-path")
		cfg.Snapshot.Enabled = true
	}
	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
		cfg.Telemetry.Enabled = true
	}
}

func validateServerConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}
	if cfg.Database.Driver == "neo4j" && cfg.Database.URI == "" {
		return fmt.Errorf("database URI is required for the neo4j driver")
	}
	if cfg.Database.Driver == "memory" && cfg.Database.DatasetPath == "" && !cfg.Snapshot.Enabled {
		return fmt.Errorf("dataset path is required for the memory driver")
	}
	return nil
}
