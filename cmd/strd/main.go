// Command strd exposes the Sandboxed Test Runner's /testrun contract
// as a standalone HTTP service, useful for integration-testing the
// Agent Gateway and Orchestrator against a real subprocess sandbox
// without running the full awcore server.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/agentwrangler/awcore/internal/config"
	"github.com/agentwrangler/awcore/internal/sandbox"
)

func main() {
	var (
		listen      = flag.String("listen", ":8081", "address to bind the HTTP server to")
		templateDir = flag.String("template-dir", "", "target project template directory")
		policyPath  = flag.String("config", "", "path to the YAML policy file")
	)
	flag.Parse()

	cfg, err := config.Load(*policyPath)
	if err != nil {
		log.Fatalf("strd: loading config: %v", err)
	}
	if *templateDir != "" {
		cfg.Sandbox.TemplateDir = *templateDir
	}

	logger := log.New(os.Stderr, "strd: ", log.LstdFlags)

	runner := sandbox.NewRunner(sandbox.Config{
		TemplateDir: cfg.Sandbox.TemplateDir,
		TmpDir:      cfg.Sandbox.TmpDir,
		TestCommand: cfg.Sandbox.TestCommand,
		TestTimeout: cfg.Sandbox.TestTimeout,
	})

	srv := &http.Server{
		Addr:    *listen,
		Handler: sandbox.Handler(runner),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s", *listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Fatalf("strd: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("strd: shutdown error: %v", err)
	}
	os.Stderr.WriteString(color.GreenString("strd: shut down\n"))
}
