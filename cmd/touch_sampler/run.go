package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/frudas24/touchsampler/internal/app"
	"github.com/frudas24/touchsampler/internal/config"
	"github.com/frudas24/touchsampler/internal/logging"
)

// run wires the application and blocks until shutdown.
func run(f flags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if f.actions != "" {
		cfg.ActionsPath = f.actions
	}
	if f.device != "" {
		cfg.Device = f.device
	}
	if f.source != "" {
		cfg.Source = f.source
	}
	if f.debug {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return err
	}
	log := logger.WithField("component", "main")
	logStartup(log, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg, logger)
	if err := a.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := a.Stop(); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()

	mux := http.NewServeMux()
	a.RegisterRoutes(mux)
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("interrupt received, shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// logStartup prints startup checks and connection info.
func logStartup(log logrus.FieldLogger, cfg config.Config) {
	log.Info("touch sampler starting")
	envPath := filepath.Join(cfg.DataDir, ".env")
	if fileExists(envPath) {
		log.Infof("env check: ok (%s)", envPath)
	} else {
		log.Debugf("env check: missing (%s)", envPath)
	}
	if fileExists(cfg.ActionsPath) {
		log.Infof("actions check: ok (%s)", cfg.ActionsPath)
	} else {
		log.Warnf("actions check: missing (%s)", cfg.ActionsPath)
	}
	log.Infof("source: %s", cfg.Source)
	if cfg.Source == config.SourceADB {
		logToolStatus(log, "adb", cfg.ADBPath)
	}
	logListenStatus(log, cfg.ListenAddr)
}

// logToolStatus reports whether an external binary is discoverable.
func logToolStatus(log logrus.FieldLogger, name, path string) {
	if filepath.IsAbs(path) {
		info, err := os.Stat(path)
		switch {
		case err == nil && !info.IsDir():
			log.Infof("%s check: ok (%s)", name, path)
		case err != nil:
			log.Warnf("%s check: missing (%v)", name, err)
		default:
			log.Warnf("%s check: missing (path is a directory)", name)
		}
		return
	}
	found, err := exec.LookPath(path)
	switch {
	case err == nil:
		log.Infof("%s check: ok (%s)", name, found)
	case errors.Is(err, exec.ErrDot):
		log.Warnf("%s check: found relative to current dir; use absolute path", name)
	default:
		log.Warnf("%s check: missing (%v)", name, err)
	}
}

// logListenStatus reports the listen address and a local URL helper.
func logListenStatus(log logrus.FieldLogger, addr string) {
	log.Infof("listen addr: %s", addr)
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	log.Infof("state url: http://%s/api/state", net.JoinHostPort(host, port))
}

// fileExists reports whether a path exists and is a file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
