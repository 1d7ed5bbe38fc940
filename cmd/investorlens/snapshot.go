package investorlens

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeus1292/investorlens/pkg/config"
	"github.com/zeus1292/investorlens/pkg/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save the current graph to a local snapshot",
	Long: `Copy the full company graph into a local snapshot directory. A saved
snapshot lets the server and search commands run without the graph
database, via snapshot.enabled or SNAPSHOT_PATH.`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().String("path", "", "Snapshot directory (defaults to snapshot.path from config)")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("path") {
		cfg.Snapshot.Path, _ = cmd.Flags().GetString("path")
	}
	if cfg.Snapshot.Path == "" {
		return fmt.Errorf("no snapshot path configured")
	}

	log, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	// Snapshot from the live backend, never from a previous snapshot.
	snapshotCfg := *cfg
	snapshotCfg.Snapshot.Enabled = false
	client, err := buildClient(ctx, &snapshotCfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize search core: %w", err)
	}
	defer client.Close(ctx)

	store, err := snapshot.Open(cfg.Snapshot.Path, log)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := client.SaveSnapshot(ctx, store); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	fmt.Printf("Snapshot saved to %s\n", cfg.Snapshot.Path)
	return nil
}
