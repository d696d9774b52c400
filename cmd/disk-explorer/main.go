package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/disk-explorer/internal/config"
	"github.com/fpang/disk-explorer/internal/logging"
	"github.com/fpang/disk-explorer/internal/thumbnail"
	"github.com/fpang/disk-explorer/internal/volumes"
)

// CLI flags
var (
	configFlag  string
	envFileFlag string
)

// cfg is resolved once per invocation before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "disk-explorer",
	Short: "Local backend for a desktop file explorer",
	Long: `Disk Explorer serves the local API behind a desktop file explorer: volume
discovery, directory browsing, image thumbnails as data URIs, and opening files
or their folders with the operating system.

Settings come from defaults, --config (YAML), a .env file, DISK_EXPLORER_*
environment variables and flags, in increasing order of precedence.

Examples:
  disk-explorer serve --port 9090
  disk-explorer thumbnail ~/Pictures/cat.jpg
  disk-explorer volumes --usage
  DISK_EXPLORER_THUMBNAIL_WIDTH=160 disk-explorer serve`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFlag, "config", "", "YAML config file")
	pf.StringVar(&envFileFlag, "env-file", "", "dotenv file (default: "+config.DefaultEnvFile+" if present)")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.Bool("log-json", false, "Write logs as JSON lines")
	pf.Int("width", thumbnail.DefaultWidth, "Thumbnail width in pixels")
	pf.Int("quality", thumbnail.DefaultQuality, "Thumbnail JPEG quality (1-100)")
	pf.String("filter", string(thumbnail.DefaultFilter), "Resampling filter: lanczos3, catmullrom, mitchell")
	pf.String("volume-source", volumes.SourcePlatform, "Volume discovery: platform or partitions")

	rootCmd.AddCommand(serveCmd, thumbnailCmd, volumesCmd, openCmd, revealCmd, infoCmd,
		insightsCmd, duplicatesCmd, agingCmd, searchCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(config.Options{
		ConfigFile: configFlag,
		EnvFile:    envFileFlag,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		logging.Init("info", false)
		return err
	}
	cfg = c
	logging.Init(cfg.LogLevel, cfg.LogJSON)
	return nil
}
