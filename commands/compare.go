package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/confsum/confsum/export"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <file1> <file2>",
		Short: "Compare two exported summary files",
		Long: `Compare shows a unified diff and per-section change statistics between
two exported summary markdown files.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmp, err := export.CompareFiles(args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cmp.Identical {
				fmt.Fprintln(out, "Files are identical.")
				return nil
			}

			fmt.Fprintf(out, "Lines: %d -> %d (%+d)\n",
				cmp.Stats.OldLineCount, cmp.Stats.NewLineCount, cmp.Stats.LineDifference)
			fmt.Fprintf(out, "Sections: %d changed, %d added, %d removed\n",
				cmp.Stats.ChangedSections, cmp.Stats.AddedSections, cmp.Stats.RemovedSections)

			for _, change := range cmp.Stats.SectionChanges {
				fmt.Fprintf(out, "  %s: %d -> %d lines (%d differing)\n",
					change.Section, change.OldLineCount, change.NewLineCount, change.DiffLines)
			}

			fmt.Fprintf(out, "\n%s", cmp.UnifiedDiff)
			return nil
		},
	}
}
