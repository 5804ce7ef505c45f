package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/myway/internal/api"
	"github.com/sadopc/myway/internal/client"
	"github.com/sadopc/myway/internal/config"
	"github.com/sadopc/myway/internal/demo"
	"github.com/sadopc/myway/internal/files"
	"github.com/sadopc/myway/internal/logging"
	"github.com/sadopc/myway/internal/service"
	"github.com/sadopc/myway/internal/store"
	"github.com/sadopc/myway/internal/tui"
)

func main() {
	args := os.Args[1:]
	serve := len(args) > 0 && args[0] == "serve"
	if serve {
		args = args[1:]
	}

	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if serve {
		err = runServer(cfg)
	} else {
		err = runTUI(cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func openService(cfg *config.Config, log logging.Logger) (*service.Service, func(), error) {
	s, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	blobs, err := files.New(cfg.UploadDir)
	if err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("open upload dir: %w", err)
	}
	svc := service.New(s, blobs, service.WithLogger(log.With("component", "service")))
	return svc, func() { s.Close() }, nil
}

func runServer(cfg *config.Config) error {
	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := openLogFile(cfg.LogFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	log, err := logging.New(out, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	ctx := context.Background()

	svc, closeStore, err := openService(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	apiServer := api.NewServer(svc, log.With("component", "api"), api.WithDemo(demo.New()))
	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      apiServer.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server listening", "addr", cfg.ListenAddr, "db", cfg.DBPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-sigChan:
	}

	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info(ctx, "server stopped")
	return nil
}

func runTUI(cfg *config.Config) error {
	// stdout belongs to the UI.
	logPath := cfg.LogFile
	if logPath == "" {
		logPath = filepath.Join(filepath.Dir(cfg.DBPath), "myway.log")
	}
	f, err := openLogFile(logPath)
	if err != nil {
		return err
	}
	defer f.Close()
	log, err := logging.New(f, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	var backend tui.Backend
	if cfg.ServerURL != "" {
		c := client.New(cfg.ServerURL)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Health(ctx); err != nil {
			return fmt.Errorf("reach %s: %w", cfg.ServerURL, err)
		}
		log.Info(ctx, "using remote server", "url", cfg.ServerURL)
		backend = c
	} else {
		svc, closeStore, err := openService(cfg, log)
		if err != nil {
			return err
		}
		defer closeStore()
		backend = svc
	}

	app := tui.NewApp(backend, tui.WithLogger(log.With("component", "tui")))
	defer app.Close()
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
