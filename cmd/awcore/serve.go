package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agentwrangler/awcore/internal/agent"
	"github.com/agentwrangler/awcore/internal/config"
	"github.com/agentwrangler/awcore/internal/httpapi"
	"github.com/agentwrangler/awcore/internal/orchestrator"
	"github.com/agentwrangler/awcore/internal/sandbox"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the orchestrator HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	watcher, err := config.NewWatcher(configPath)
	if err != nil {
		return err
	}
	defer watcher.Close()

	cfg := watcher.Current()
	if listenAddr != "" {
		cfg.Server.Listen = listenAddr
	}
	if tmpDir != "" {
		cfg.Sandbox.TmpDir = tmpDir
	}

	logger := log.New(os.Stderr, "awcore: ", log.LstdFlags)

	str := sandbox.NewRunner(sandbox.Config{
		TemplateDir: cfg.Sandbox.TemplateDir,
		TmpDir:      cfg.Sandbox.TmpDir,
		TestCommand: cfg.Sandbox.TestCommand,
		TestTimeout: cfg.Sandbox.TestTimeout,
	})
	gw := agent.New(cfg.Agent.Timeout)
	orch := orchestrator.New(gw, str, cfg.Sandbox.Parallelism)
	api := httpapi.NewServer(orch, cfg.Agent, logger)

	srv := &http.Server{
		Addr:    cfg.Server.Listen,
		Handler: api.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s", cfg.Server.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	summary := color.New(color.FgGreen).SprintFunc()
	if err != nil {
		summary = color.New(color.FgRed).SprintFunc()
	}
	os.Stderr.WriteString(summary("awcore: shut down\n"))
	return err
}
