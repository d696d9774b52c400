package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/disk-explorer/internal/cli"
	"github.com/fpang/disk-explorer/internal/filehandler"
	"github.com/fpang/disk-explorer/internal/opener"
	"github.com/fpang/disk-explorer/internal/thumbnail"
	"github.com/fpang/disk-explorer/internal/volumes"
)

var usageFlag bool

var thumbnailCmd = &cobra.Command{
	Use:   "thumbnail <path>",
	Short: "Print the thumbnail of an image as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, err := thumbnail.NewGenerator(cfg.Thumbnail.Generator())
		if err != nil {
			return err
		}

		res, err := gen.Generate(args[0])
		if err != nil {
			if stage, ok := thumbnail.StageOf(err); ok {
				return fmt.Errorf("%s stage: %w", stage, err)
			}
			return err
		}
		return cli.PrintJSON(cmd.OutOrStdout(), res)
	},
}

var volumesCmd = &cobra.Command{
	Use:   "volumes",
	Short: "List mounted volume roots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lister, err := volumes.New(cfg.Volumes.Source)
		if err != nil {
			return err
		}
		roots, err := lister.List(cmd.Context())
		if err != nil {
			return err
		}

		if !usageFlag {
			for _, root := range roots {
				fmt.Fprintln(cmd.OutOrStdout(), root)
			}
			return nil
		}

		usage, err := volumes.UsageAll(cmd.Context(), roots)
		if err != nil {
			return err
		}
		for _, u := range usage {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s free of %s (%.1f%% used)\n",
				u.Path, cli.FormatBytes(int64(u.Free)), cli.FormatBytes(int64(u.Total)), u.UsedPercent)
		}
		return nil
	},
}

var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Open a file or folder with its default application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return opener.New().Open(args[0])
	},
}

var revealCmd = &cobra.Command{
	Use:   "reveal <path>",
	Short: "Open the folder that contains a path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return opener.New().OpenContainingFolder(args[0])
	},
}

var infoCmd = &cobra.Command{
	Use:   "info [path]",
	Short: "Describe a file as JSON (prompts for a path when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var p string
		if len(args) == 1 {
			p = args[0]
		} else {
			p = cli.PromptForPath(cmd.InOrStdin(), cmd.ErrOrStderr(), "Path")
		}

		absPath, err := cli.ResolvePath(p, false)
		if err != nil {
			return err
		}
		info, err := filehandler.Describe(absPath)
		if err != nil {
			return err
		}
		log.Debug().Str("path", absPath).Str("size", cli.FormatBytes(info.Size)).Msg("Described file")
		return cli.PrintJSON(cmd.OutOrStdout(), info)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "disk-explorer %s (commit %s, built %s)\n", version, commitHash, buildTime)
		return nil
	},
}

func init() {
	volumesCmd.Flags().BoolVar(&usageFlag, "usage", false, "Show free and total space per volume")
}
