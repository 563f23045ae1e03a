package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deviprasad97/swiftFetch/internal/task"
)

var addCmd = &cobra.Command{
	Use:   "add URL...",
	Short: "Submit one or more downloads to the engine",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		out, _ := cmd.Flags().GetString("out")
		segments, _ := cmd.Flags().GetInt("segments")
		limit, _ := cmd.Flags().GetInt64("limit")
		referer, _ := cmd.Flags().GetString("referer")

		if out != "" && len(args) > 1 {
			return fmt.Errorf("--out only applies to a single URL")
		}

		mgr, st, err := newManager()
		if err != nil {
			return err
		}
		defer st.Close()

		for _, url := range args {
			t, err := mgr.Add(cmd.Context(), task.AddRequest{
				URL:        url,
				Filename:   out,
				Dir:        dir,
				Segments:   segments,
				SpeedLimit: limit,
				Referer:    referer,
			})
			if err != nil {
				return fmt.Errorf("add %s: %w", url, err)
			}
			fmt.Printf("Added: %s [%s]\n", t.Filename, shortID(t.ID))
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringP("dir", "d", "", "destination directory (default: configured download dir)")
	addCmd.Flags().StringP("out", "o", "", "destination filename (single URL only)")
	addCmd.Flags().IntP("segments", "s", 0, "segment count (default: configured)")
	addCmd.Flags().Int64P("limit", "l", 0, "per-task speed limit in bytes/second (0 = unlimited)")
	addCmd.Flags().String("referer", "", "Referer header forwarded to the engine")
	rootCmd.AddCommand(addCmd)
}
