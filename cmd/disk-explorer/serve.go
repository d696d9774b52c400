package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fpang/disk-explorer/internal/api"
	"github.com/fpang/disk-explorer/internal/logging"
	"github.com/fpang/disk-explorer/internal/opener"
	"github.com/fpang/disk-explorer/internal/picker"
	"github.com/fpang/disk-explorer/internal/thumbnail"
	"github.com/fpang/disk-explorer/internal/volumes"
)

const shutdownTimeout = 10 * time.Second

var noPickerFlag bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("host", "127.0.0.1", "Address to bind")
	f.Int("port", 8080, "Port to listen on")
	f.Int("max-concurrent-thumbnails", 4, "Thumbnails generated in parallel")
	f.StringSlice("allowed-origin", nil, "Extra CORS origin (repeatable); localhost is always allowed")
	f.StringSlice("allowed-host", nil, "Extra Host header name to accept (repeatable); loopback names are always accepted")
	f.Bool("gzip", true, "Compress responses")
	f.BoolVar(&noPickerFlag, "no-picker", false, "Disable native file dialogs (/api/pick)")
}

func runServe(cmd *cobra.Command, args []string) error {
	start := time.Now()

	gen, err := thumbnail.NewGenerator(cfg.Thumbnail.Generator())
	if err != nil {
		return err
	}
	lister, err := volumes.New(cfg.Volumes.Source)
	if err != nil {
		return err
	}
	var pk picker.Picker
	if !noPickerFlag {
		pk = picker.Zenity{}
	}

	handler := api.NewHandler(api.Options{
		Thumbnails:              gen,
		Volumes:                 lister,
		Opener:                  opener.New(),
		Picker:                  pk,
		MaxConcurrentThumbnails: cfg.Server.MaxConcurrentThumbnails,
		AllowedOrigins:          cfg.Server.AllowedOrigins,
		Host:                    cfg.Server.Host,
		AllowedHosts:            cfg.Server.AllowedHosts,
		Gzip:                    cfg.Server.Gzip,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
	}

	thumbCfg := gen.Config()
	logging.NewStartupLogger("disk-explorer").
		Version(version).
		CommitHash(commitHash).
		Addr(ln.Addr().String()).
		Feature("picker", pk != nil).
		Feature("gzip", cfg.Server.Gzip).
		Config("thumbnail.width", strconv.Itoa(thumbCfg.Width)).
		Config("thumbnail.quality", strconv.Itoa(thumbCfg.Quality)).
		Config("thumbnail.filter", string(thumbCfg.Filter)).
		Config("server.maxConcurrentThumbnails", strconv.Itoa(cfg.Server.MaxConcurrentThumbnails)).
		Config("server.allowedOrigins", strings.Join(cfg.Server.AllowedOrigins, ",")).
		Config("server.allowedHosts", strings.Join(cfg.Server.AllowedHosts, ",")).
		Config("volumes.source", cfg.Volumes.Source).
		InitDuration(time.Since(start)).
		Log()

	fmt.Fprintf(cmd.OutOrStdout(), "\n  Disk Explorer API: http://%s\n\n", ln.Addr())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
