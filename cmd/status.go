package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show engine-wide transfer statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, st, err := newManager()
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := mgr.GlobalStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("query engine: %w", err)
		}

		active, queued, completed := mgr.Views()
		fmt.Printf("Engine: %s down, %s up\n",
			formatSpeed(stats.DownloadSpeed), formatSpeed(stats.UploadSpeed))
		fmt.Printf("Remote: %d active, %d waiting, %d stopped\n",
			stats.NumActive, stats.NumWaiting, stats.NumStopped)
		fmt.Printf("Local:  %d active, %d queued, %d completed\n",
			len(active), len(queued), len(completed))
		return nil
	},
}

var limitCmd = &cobra.Command{
	Use:   "limit BYTES_PER_SEC",
	Short: "Set the engine-wide download speed cap (0 removes it)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || limit < 0 {
			return fmt.Errorf("invalid limit %q", args[0])
		}

		mgr, st, err := newManager()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := mgr.SetGlobalSpeedLimit(cmd.Context(), limit); err != nil {
			return fmt.Errorf("set limit: %w", err)
		}
		if limit == 0 {
			fmt.Println("Global speed limit removed")
		} else {
			fmt.Printf("Global speed limit set to %s\n", formatSpeed(limit))
		}
		return nil
	},
}

var shutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Ask the engine process to exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, st, err := newManager()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := mgr.ShutdownEngine(cmd.Context()); err != nil {
			return fmt.Errorf("shutdown engine: %w", err)
		}
		fmt.Println("Engine shutdown requested")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, limitCmd, shutdownCmd)
}
