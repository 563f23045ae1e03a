package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/deviprasad97/swiftFetch/internal/config"
	"github.com/deviprasad97/swiftFetch/internal/utils"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the orchestrator until interrupted",
	Long: `run starts the reconciliation loop: persisted tasks are re-validated
against the engine, progress is polled continuously, and state is saved as it
changes. Stops cleanly on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(config.GetAppDir(), 0755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}

		// One orchestrator per state dir. A second instance would race the
		// store and double-drive the engine.
		lock := flock.New(config.GetLockPath())
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire instance lock: %w", err)
		}
		if !locked {
			return fmt.Errorf("swiftfetch is already running (lock held at %s)", config.GetLockPath())
		}
		defer lock.Unlock()

		mgr, st, err := newManager()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if limit := mustSettings().Transfer.GlobalSpeedLimit; limit > 0 {
			if err := mgr.SetGlobalSpeedLimit(ctx, limit); err != nil {
				utils.Debug("run: apply global speed limit: %v", err)
			}
		}

		mgr.ReconcileStartup(ctx)
		mgr.Start(ctx)
		fmt.Println("swiftfetch running; press Ctrl-C to stop")

		<-ctx.Done()
		fmt.Println("shutting down...")
		mgr.Stop()

		if err := st.BackupSnapshot(); err != nil {
			utils.Debug("run: final backup snapshot: %v", err)
		}
		return nil
	},
}

func mustSettings() *config.Settings {
	settings, err := config.LoadSettings()
	if err != nil {
		return config.DefaultSettings()
	}
	return settings
}

func init() {
	rootCmd.AddCommand(runCmd)
}
