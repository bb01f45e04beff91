package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"figaroflows/internal/config"
	"figaroflows/internal/logging"
	"figaroflows/internal/providers/figaro"
	"figaroflows/internal/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	addr := flag.String("addr", cfg.Server.Addr, "listen address")
	imports := flag.String("imports", cfg.Data.ImportsPath(), "path to the FIGARO imports TSV")
	exports := flag.String("exports", cfg.Data.ExportsPath(), "path to the FIGARO exports TSV")
	flag.Parse()

	logger := logging.New(cfg.Logging, os.Stdout).With(slog.String("component", "server"))

	if err := serve(logger, cfg.Server, *addr, *imports, *exports); err != nil {
		logger.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func serve(logger *slog.Logger, serverCfg config.ServerConfig, addr, importsPath, exportsPath string) error {
	provider, err := figaro.New(figaro.Config{ImportsPath: importsPath, ExportsPath: exportsPath}, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      web.NewHandler(provider, logger).Router(),
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
