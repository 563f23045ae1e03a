package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/deviprasad97/swiftFetch/internal/task"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks with progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		mgr, st, err := newManager()
		if err != nil {
			return err
		}
		defer st.Close()

		tasks := mgr.Tasks()
		if len(tasks) == 0 {
			fmt.Println("No tasks.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tPROGRESS\tSIZE\tSPEED\tETA\tFILE")
		for _, t := range tasks {
			if !all && t.Status == task.StatusCompleted {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%.1f%%\t%s\t%s\t%s\t%s\n",
				shortID(t.ID),
				statusLabel(t.Status),
				t.Progress()*100,
				formatSize(t.TotalSize),
				formatSpeed(t.Speed),
				formatETA(t.ETA),
				t.Filename,
			)
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().BoolP("all", "a", false, "include completed tasks")
	rootCmd.AddCommand(listCmd)
}
