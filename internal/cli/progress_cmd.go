package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-progress-api/internal/dto"
)

func newBlocksCmd(app *App) *cobra.Command {
	var courseID uint

	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "List the progress blocks of a course",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Progress.ListBlocks(commandContext(cmd), courseID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().UintVar(&courseID, "course", 0, "Course ID")
	_ = cmd.MarkFlagRequired("course")

	return cmd
}

func newSummaryCmd(app *App) *cobra.Command {
	var req dto.ProgressSummaryRequest

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Compute the progress summary of a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Progress.GetSummary(commandContext(cmd), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().UintVar(&req.BlockID, "block", 0, "Block instance ID")
	cmd.Flags().UintVar(&req.CourseID, "course", 0, "Course ID")
	cmd.Flags().UintVar(&req.UserID, "user", 0, "User ID")
	_ = cmd.MarkFlagRequired("block")
	_ = cmd.MarkFlagRequired("course")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newOverviewCmd(app *App) *cobra.Command {
	var req dto.ProgressOverviewRequest

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Print the progress of every student in a block",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Progress.GetOverview(commandContext(cmd), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(result.Rows) == 0 {
				fmt.Fprintf(out, "No rows (%s).\n", result.Outcome)
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "USER\tNAME\tPROGRESS")
			for _, row := range result.Rows {
				fmt.Fprintf(w, "%d\t%s %s\t%d%%\n", row.UserID, row.FirstName, row.LastName, row.Progress)
			}
			return w.Flush()
		},
	}

	cmd.Flags().UintVar(&req.BlockID, "block", 0, "Block instance ID")
	cmd.Flags().UintVar(&req.CourseID, "course", 0, "Course ID")
	cmd.Flags().UintVar(&req.ViewerID, "viewer", 0, "User ID whose capabilities apply")
	cmd.Flags().StringVar(&req.Sort, "sort", "", "Sort keys, e.g. \"progress desc,name\"")
	_ = cmd.MarkFlagRequired("block")
	_ = cmd.MarkFlagRequired("course")
	_ = cmd.MarkFlagRequired("viewer")

	return cmd
}

func newRemapCmd(app *App) *cobra.Command {
	var blockID uint
	var pairs []string

	cmd := &cobra.Command{
		Use:   "remap",
		Short: "Move monitored instance settings to new instance IDs",
		Long: "Rewrites a block's per-instance settings after activities were restored\n" +
			"with new IDs. Each --map takes <type><old id>=<new id>, e.g. quiz12=40.",
		RunE: func(cmd *cobra.Command, args []string) error {
			mapping, err := parseMapping(pairs)
			if err != nil {
				return err
			}

			result, err := app.Progress.RemapInstances(commandContext(cmd), dto.ProgressRemapRequest{BlockID: blockID, Mapping: mapping})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Moved %d instance(s) in block %d\n", result.Moved, result.BlockID)
			return nil
		},
	}

	cmd.Flags().UintVar(&blockID, "block", 0, "Block instance ID")
	cmd.Flags().StringArrayVar(&pairs, "map", nil, "Instance mapping <type><old id>=<new id> (repeatable)")
	_ = cmd.MarkFlagRequired("block")
	_ = cmd.MarkFlagRequired("map")

	return cmd
}
