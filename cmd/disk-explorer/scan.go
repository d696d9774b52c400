package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fpang/disk-explorer/internal/cli"
	"github.com/fpang/disk-explorer/internal/filehandler"
)

// Scan flags
var (
	agingDaysFlag      int
	agingModeFlag      string
	searchFilter       filehandler.Filter
	modifiedBeforeFlag string
)

// scanRoot resolves the optional directory argument, prompting when absent.
func scanRoot(cmd *cobra.Command, args []string) (string, error) {
	var p string
	if len(args) == 1 {
		p = args[0]
	} else {
		p = cli.PromptForPath(cmd.InOrStdin(), cmd.ErrOrStderr(), "Directory")
	}
	return cli.ResolvePath(p, true)
}

var insightsCmd = &cobra.Command{
	Use:   "insights [dir]",
	Short: "Summarize disk usage below a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := scanRoot(cmd, args)
		if err != nil {
			return err
		}
		ins, err := filehandler.GetInsights(cmd.Context(), root)
		if err != nil {
			return err
		}
		return cli.PrintJSON(cmd.OutOrStdout(), ins)
	},
}

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates [dir]",
	Short: "Group files with identical content",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := scanRoot(cmd, args)
		if err != nil {
			return err
		}
		groups, err := filehandler.FindDuplicates(cmd.Context(), root)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		var wasted int64
		for _, g := range groups {
			wasted += g.Wasted()
			fmt.Fprintf(out, "%s  %d copies of %s\n", g.Hash, len(g.Files), cli.FormatBytes(g.Size))
			for _, f := range g.Files {
				fmt.Fprintf(out, "    %s\n", f.Path)
			}
		}
		fmt.Fprintf(out, "%d groups, %s reclaimable\n", len(groups), cli.FormatBytes(wasted))
		return nil
	},
}

var agingCmd = &cobra.Command{
	Use:   "aging [dir]",
	Short: "List files not modified or accessed for a number of days",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := scanRoot(cmd, args)
		if err != nil {
			return err
		}
		files, err := filehandler.FindAging(cmd.Context(), root, agingDaysFlag, filehandler.AgeMode(agingModeFlag))
		if err != nil {
			return err
		}
		return cli.PrintJSON(cmd.OutOrStdout(), files)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [dir]",
	Short: "Find files by size, type and age",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := scanRoot(cmd, args)
		if err != nil {
			return err
		}

		filter := searchFilter
		if modifiedBeforeFlag != "" {
			t, err := time.ParseInLocation("2006-01-02", modifiedBeforeFlag, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --modified-before %q, want YYYY-MM-DD: %w", modifiedBeforeFlag, err)
			}
			filter.ModifiedBefore = t
		}

		files, err := filehandler.Search(cmd.Context(), root, filter)
		if err != nil {
			return err
		}
		return cli.PrintJSON(cmd.OutOrStdout(), files)
	},
}

func init() {
	agingCmd.Flags().IntVar(&agingDaysFlag, "days", 365, "Age threshold in days")
	agingCmd.Flags().StringVar(&agingModeFlag, "mode", string(filehandler.AgeModified), "Timestamp to compare: modified or accessed")

	f := searchCmd.Flags()
	f.Int64Var(&searchFilter.MinSize, "min-size", 0, "Minimum size in bytes")
	f.Int64Var(&searchFilter.MaxSize, "max-size", 0, "Maximum size in bytes")
	f.StringSliceVar(&searchFilter.Types, "type", nil, "Extension to include, e.g. .jpg (repeatable)")
	f.StringVar(&modifiedBeforeFlag, "modified-before", "", "Only files last modified before this date (YYYY-MM-DD)")
	f.IntVar(&searchFilter.TopN, "top", 0, "Keep only the N largest matches")
	f.BoolVar(&searchFilter.DuplicatesOnly, "duplicates", false, "Keep only matches that have an identical copy")
}
