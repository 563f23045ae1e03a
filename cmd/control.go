package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pauseCmd = &cobra.Command{
	Use:   "pause ID",
	Short: "Pause a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, st, err := newManager()
		if err != nil {
			return err
		}
		defer st.Close()

		id, err := resolveTaskID(mgr, args[0])
		if err != nil {
			return err
		}
		if err := mgr.Pause(cmd.Context(), id); err != nil {
			return fmt.Errorf("pause %s: %w", shortID(id), err)
		}
		fmt.Printf("Paused: %s\n", shortID(id))
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume ID",
	Short: "Resume a paused task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, st, err := newManager()
		if err != nil {
			return err
		}
		defer st.Close()

		id, err := resolveTaskID(mgr, args[0])
		if err != nil {
			return err
		}
		if err := mgr.Resume(cmd.Context(), id); err != nil {
			return fmt.Errorf("resume %s: %w", shortID(id), err)
		}
		fmt.Printf("Resumed: %s\n", shortID(id))
		return nil
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel ID",
	Short: "Cancel a task and forget it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, st, err := newManager()
		if err != nil {
			return err
		}
		defer st.Close()

		id, err := resolveTaskID(mgr, args[0])
		if err != nil {
			return err
		}
		if err := mgr.Cancel(cmd.Context(), id); err != nil {
			return fmt.Errorf("cancel %s: %w", shortID(id), err)
		}
		fmt.Printf("Cancelled: %s\n", shortID(id))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pauseCmd, resumeCmd, cancelCmd)
}
