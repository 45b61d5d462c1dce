package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cfaprep/cfaprep/internal/progress"
	"github.com/cfaprep/cfaprep/internal/screens/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print mastery, mistakes and recent tests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d := &deps{}
		defer d.Close()
		if err := openLogger(d); err != nil {
			return err
		}
		if err := openService(ctx, d); err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("history")
		dash, err := progress.LoadDashboard(ctx, d.service, limit)
		if err != nil {
			return fmt.Errorf("load statistics: %w", err)
		}
		width, _ := cmd.Flags().GetInt("width")
		fmt.Fprintln(cmd.OutOrStdout(), stats.Render(dash, width))
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("history", stats.HistoryLimit, "Number of recent tests to show")
	statsCmd.Flags().Int("width", 80, "Output width")
}
