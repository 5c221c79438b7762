package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"quranreel/auth"
	"quranreel/compose"
	"quranreel/config"
	"quranreel/credentials"
	"quranreel/encoder"
	"quranreel/fetch"
	"quranreel/history"
	"quranreel/job"
	"quranreel/logger"
	"quranreel/routes"
)

const (
	scratchSweepInterval = time.Hour
	historyCleanInterval = 24 * time.Hour
	jobRetention         = time.Hour
	shutdownTimeout      = 30 * time.Second
)

func main() {
	root := &cobra.Command{
		Use:          "quranreel",
		Short:        "Trim recitation clips and compose verse videos over HTTP",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context())
			},
		},
		tokenCmd(),
		probeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin bearer token signed with REEL_ADMIN_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.AdminSecret == "" {
				return errors.New("REEL_ADMIN_SECRET is not set")
			}
			sub, _ := cmd.Flags().GetString("sub")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			token, err := auth.Sign([]byte(cfg.AdminSecret), sub, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("sub", "admin", "Token subject")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

func probeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Report which ffmpeg binary would be used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			bin := encoder.Resolve(cfg.FFmpegEnv)
			st := bin.Stat()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "env:        %q\n", st.Env)
			fmt.Fprintf(out, "resolved:   %s\n", st.Resolved)
			fmt.Fprintf(out, "exists:     %t\n", st.Exists)
			fmt.Fprintf(out, "executable: %t\n", st.Executable)

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			version, err := bin.Probe(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "version:    %s\n", version)
			return nil
		},
	}
}

func serve(parent context.Context) error {
	cfg := config.Load()

	if err := logger.Init(cfg.LogFile, true); err != nil {
		return err
	}
	defer logger.Close()
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	logger.Info("Starting quranreel server initialization")

	bin := encoder.Resolve(cfg.FFmpegEnv)
	cfg.FFmpegBin = bin.Path
	probeCtx, cancelProbe := context.WithTimeout(parent, 10*time.Second)
	if version, err := bin.Probe(probeCtx); err != nil {
		logger.Warnf("Encoder unavailable, trim and export will fail until it is installed: %v", err)
	} else {
		logger.Infof("Using %s (%s)", bin.Path, version)
	}
	cancelProbe()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	logger.Debug("Initializing history database")
	hist, err := history.Open(cfg.HistoryDBPath())
	if err != nil {
		return err
	}
	defer hist.Close()

	logger.Debug("Initializing credentials database")
	creds, err := credentials.OpenDB(cfg.CredentialsDBPath())
	if err != nil {
		return err
	}
	defer creds.Close()

	renderer, err := compose.NewRenderer(cfg.FontBold, cfg.FontRegular)
	if err != nil {
		return err
	}

	registry := job.NewRegistry(jobRetention)
	deps := &job.Deps{
		Runner:        encoder.NewRunner(bin, cfg.MaxEncodes),
		Renderer:      renderer,
		Fetcher:       fetch.New(cfg.AudioAllowedHosts, cfg.AudioTimeout),
		Registry:      registry,
		History:       hist,
		ScratchRoot:   cfg.ScratchDir,
		TailDuration:  cfg.TailDuration,
		MaxDimension:  cfg.MaxDimension,
		RenderWorkers: cfg.RenderWorkers,
	}
	if cfg.ArchiveBackend != "" {
		archiver, err := job.NewArchiver(cfg.ArchiveBackend, cfg.ArchiveCredentials, cfg.ArchivePrefix, creds)
		if err != nil {
			logger.Errorf("Archiving disabled: %v", err)
		} else {
			deps.Archiver = archiver
			logger.Infof("Archiving finished videos to %s", cfg.ArchiveBackend)
		}
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweep := func() {
		if _, err := job.SweepScratch(cfg.ScratchDir, cfg.ScratchMaxAge, registry.Active); err != nil {
			logger.Errorf("Failed to sweep scratch directory: %v", err)
		}
		if n := registry.Prune(); n > 0 {
			logger.Debugf("Pruned %d finished jobs", n)
		}
	}
	sweep()
	job.StartCleanupRoutine(ctx, scratchSweepInterval, sweep)
	job.StartCleanupRoutine(ctx, historyCleanInterval, func() {
		logger.Debugf("Cleaning up history records older than %v", cfg.HistoryMaxAge)
		if n, err := hist.CleanupOldRecords(cfg.HistoryMaxAge); err != nil {
			logger.Errorf("Failed to cleanup old history records: %v", err)
		} else {
			logger.Infof("Removed %d old history records", n)
		}
	})

	server := &routes.Server{Deps: deps, Config: cfg, Creds: creds}
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("quranreel server starting on %s", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down, waiting for in-flight jobs")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
		return err
	}
	logger.Info("Server stopped")
	return nil
}
