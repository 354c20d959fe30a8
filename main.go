package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/nxv4l2/cmd"
	"github.com/smazurov/nxv4l2/internal/api"
	"github.com/smazurov/nxv4l2/internal/config"
	"github.com/smazurov/nxv4l2/internal/devices"
	"github.com/smazurov/nxv4l2/internal/events"
	"github.com/smazurov/nxv4l2/internal/logging"
	"github.com/smazurov/nxv4l2/internal/metrics"
	"github.com/smazurov/nxv4l2/internal/metrics/exporters"
	"github.com/smazurov/nxv4l2/internal/monitoring"
	"github.com/smazurov/nxv4l2/internal/nats"
	"github.com/smazurov/nxv4l2/internal/systemd"
)

// service is everything the serve command runs.
type service struct {
	opts      *config.Options
	logger    *slog.Logger
	eventBus  *events.Bus
	registry  *devices.Registry
	server    *api.Server
	natsSrv   *nats.Server
	bridge    *nats.Bridge
	responder *nats.Responder
	hotplug   *monitoring.HotplugWatcher
	watcher   *config.Watcher[config.Options]
	notifier  *systemd.Notifier
	cancel    context.CancelFunc
}

func newService(opts *config.Options, logger *slog.Logger) (*service, error) {
	regOpts, err := cmd.RegistryOptions(opts)
	if err != nil {
		return nil, err
	}

	eventBus := events.New()
	notifier := systemd.NewNotifier(logger)
	regOpts = append(regOpts,
		devices.WithObserver(events.NewDeviceObserver(eventBus)),
		devices.WithObserver(notifier),
	)
	if opts.MetricsEnabled {
		regOpts = append(regOpts, devices.WithObserver(metrics.Observer{}))
	}

	s := &service{
		opts:     opts,
		logger:   logger,
		eventBus: eventBus,
		registry: devices.NewRegistry(regOpts...),
		notifier: notifier,
	}

	apiOpts := &api.Options{
		Registry:     s.registry,
		EventBus:     eventBus,
		AuthUsername: opts.AuthUsername,
		AuthPassword: opts.AuthPassword,
	}
	if opts.MetricsEnabled {
		apiOpts.PrometheusHandler = exporters.HTTPHandler()
	}
	s.server = api.NewServer(apiOpts)

	if opts.DevicesHotplug {
		s.hotplug = monitoring.NewHotplugWatcher(s.registry, eventBus, opts.DevicesDevDir, logging.GetLogger("hotplug"))
	}

	if _, statErr := os.Stat(opts.Config); statErr == nil {
		s.watcher = config.NewConfigWatcher(opts.Config, opts.Reload, logging.GetLogger("config"),
			config.WithErrorHandler[config.Options](func(err error) {
				logger.Warn("Ignoring invalid config change", "error", err)
			}))
		s.watcher.OnReload(s.reload)
	}

	return s, nil
}

// reload applies a changed config file: logging levels and the device
// source take effect at once. Listener and NATS settings need a restart.
func (s *service) reload(o config.Options) {
	logging.Initialize(o.Logging())

	regOpts, err := cmd.RegistryOptions(&o)
	if err != nil {
		s.logger.Warn("Keeping device settings", "error", err)
		return
	}
	s.registry.Reconfigure(regOpts...)
	s.logger.Info("Configuration reloaded", "config", o.Config)
}

// startNATS runs the embedded server unless an external URL is
// configured, then attaches the event bridge and lookup responder.
func (s *service) startNATS() error {
	natsLogger := logging.GetLogger("nats")
	url := s.opts.NATSServerURL
	if url == "" {
		s.natsSrv = nats.NewServer(nats.ServerOptions{Port: s.opts.NATSPort, Logger: natsLogger})
		if err := s.natsSrv.Start(); err != nil {
			return err
		}
		url = s.natsSrv.ClientURL()
	}

	s.bridge = nats.NewBridge(url, s.eventBus, natsLogger)
	if err := s.bridge.Start(); err != nil {
		s.logger.Warn("Failed to start NATS bridge", "error", err)
	}
	s.responder = nats.NewResponder(url, s.registry, natsLogger)
	if err := s.responder.Start(); err != nil {
		s.logger.Warn("Failed to start NATS responder", "error", err)
	}
	return nil
}

// start brings up the optional components and then blocks serving HTTP.
func (s *service) start() error {
	if s.opts.NATSEnabled {
		if err := s.startNATS(); err != nil {
			return err
		}
	}

	if s.hotplug != nil {
		if err := s.hotplug.Start(); err != nil {
			s.logger.Warn("Hotplug monitoring unavailable", "error", err)
		}
	}
	if s.watcher != nil {
		if err := s.watcher.Start(); err != nil {
			s.logger.Warn("Failed to watch config file", "error", err)
		}
	}

	if err := s.registry.Scan(context.Background()); err != nil {
		s.logger.Warn("Initial device scan failed", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.notifier.RunWatchdog(ctx)
	s.notifier.Ready()

	s.logger.Info("Starting HTTP server", "port", s.opts.Port)
	if err := s.server.Start(s.opts.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *service) stop() {
	s.logger.Info("Shutting down server")
	s.notifier.Stopping()
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Stop(ctx); err != nil {
		s.logger.Error("Error stopping HTTP server", "error", err)
	}

	if s.watcher != nil {
		_ = s.watcher.Stop()
	}
	if s.hotplug != nil {
		s.hotplug.Stop()
	}
	if s.responder != nil {
		s.responder.Stop()
	}
	if s.bridge != nil {
		s.bridge.Stop()
	}
	if s.natsSrv != nil {
		s.natsSrv.Stop()
	}
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *config.Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}
		logging.Initialize(opts.Logging())
		logger := logging.GetLogger("main")

		var svc *service
		hooks.OnStart(func() {
			var err error
			if svc, err = newService(opts, logger); err != nil {
				logger.Error("Invalid configuration", "error", err)
				os.Exit(1)
			}
			if err := svc.start(); err != nil {
				logger.Error("Failed to start", "error", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			if svc != nil {
				svc.stop()
			}
		})
	})

	root := cli.Root()
	root.Use = "nxv4l2"
	root.Short = "Nexell V4L2 device discovery service"
	root.AddCommand(
		cmd.CreateListCmd(),
		cmd.CreateResolveCmd(),
		cmd.CreatePathCmd(),
		cmd.CreateReverseCmd(),
	)

	cli.Run()
}
