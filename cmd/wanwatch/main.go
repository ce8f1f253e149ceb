package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wanwatch/internal/api"
	"wanwatch/internal/config"
	"wanwatch/internal/logger"
	"wanwatch/internal/monitor"
	"wanwatch/internal/notify"
	"wanwatch/internal/notify/template"
	"wanwatch/internal/reconciler"
	"wanwatch/internal/source"
	"wanwatch/internal/state"
	"wanwatch/internal/version"

	"go.uber.org/zap"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	// Show version if requested
	if *showVersion {
		fmt.Println(version.GetInfo().String())
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(&cfg.Log, config.AppName,
		zap.String("instance_id", cfg.Monitor.InstanceID))
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("Exiting", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting DNS checker",
		zap.String("hostname", cfg.Hostname),
		zap.String("version", version.GetInfo().Short()),
		zap.String("dns_provider", cfg.DNS.Provider),
		zap.String("state_backend", cfg.State.Backend))

	// Alert state
	store, err := state.New(ctx, &cfg.State, log.Named("state"))
	if err != nil {
		return fmt.Errorf("failed to initialize state store: %w", err)
	}
	if c, ok := store.(io.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				log.Warn("Failed to close state store", zap.Error(err))
			}
		}()
	}

	// Notifier
	notifyLog := log.Named("notify")
	loader, err := template.NewLoader(map[template.Name]string{
		template.Mismatch:  cfg.Templates.Mismatch,
		template.Recovered: cfg.Templates.Recovered,
	}, notifyLog)
	if err != nil {
		return fmt.Errorf("failed to load message templates: %w", err)
	}
	telegram, err := notify.NewTelegramNotifier(&cfg.Telegram, notifyLog)
	if err != nil {
		return fmt.Errorf("failed to initialize telegram notifier: %w", err)
	}
	notifier := notify.NewNotifier(cfg.Hostname, telegram, loader, notifyLog)

	// Sources
	sourceLog := log.Named("source")
	router := source.NewRouterSource(&cfg.Router, sourceLog)
	dns, err := source.NewDNS(cfg, sourceLog)
	if err != nil {
		return fmt.Errorf("failed to initialize dns source: %w", err)
	}

	rec := reconciler.New(store, notifier, log.Named("reconciler"))
	mon := monitor.NewMonitor(monitor.Config{
		Hostname:        cfg.Hostname,
		InstanceID:      cfg.Monitor.InstanceID,
		Interval:        cfg.Monitor.Interval,
		MilestoneCycles: cfg.Monitor.MilestoneCycles,
	}, router, dns, rec, log.Named("monitor"))

	// Optional status server
	var srv *api.Server
	if cfg.API.Enabled {
		apiLog := log.Named("api")
		srv = api.NewServer(cfg.API.Listen, api.NewRouter(mon, cfg.Log.Level == "debug", apiLog), apiLog)
		if err := srv.Start(); err != nil {
			return err
		}
	}

	err = mon.Run(ctx)
	log.Info("Received shutdown signal, stopping")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("Failed to stop status server", zap.Error(err))
		}
	}

	if err != nil {
		return err
	}
	log.Info("Shutdown complete")
	return nil
}
