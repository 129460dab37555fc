package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/smazurov/audionode/cmd"
	"github.com/smazurov/audionode/internal/bridge"
	"github.com/smazurov/audionode/internal/config"
	"github.com/smazurov/audionode/internal/events"
	"github.com/smazurov/audionode/internal/logging"
	"github.com/smazurov/audionode/internal/metrics"
	"github.com/smazurov/audionode/internal/notify"
	"github.com/smazurov/audionode/internal/state"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"audionode.toml"`

	// Notification settings
	NotifyTimeout   int    `help:"Notification timeout in milliseconds" default:"2000" toml:"notifications.timeout" env:"NOTIFY_TIMEOUT"`
	Ignore          string `help:"Comma-separated entry names to never notify about" env:"IGNORE"`
	NoPinCorrection bool   `help:"Disable the pinned-volume display heuristic" default:"false" toml:"notifications.no_pin_correction" env:"NO_PIN_CORRECTION"`

	// Bridge settings
	ChannelCapacity int `help:"Action channel capacity" default:"8" toml:"bridge.channel_capacity" env:"CHANNEL_CAPACITY"`

	// Metrics settings
	MetricsAddr string `help:"Serve Prometheus metrics on this address (empty disables)" toml:"metrics.addr" env:"METRICS_ADDR"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingBridge  string `help:"Bridge logging level" default:"info" toml:"logging.bridge" env:"LOGGING_BRIDGE"`
	LoggingState   string `help:"Reconciler logging level" default:"info" toml:"logging.state" env:"LOGGING_STATE"`
	LoggingNotify  string `help:"Notifications logging level" default:"info" toml:"logging.notify" env:"LOGGING_NOTIFY"`
	LoggingMetrics string `help:"Metrics logging level" default:"info" toml:"logging.metrics" env:"LOGGING_METRICS"`
}

// timeoutNotifier applies the configured expiry to every request before
// handing it to the D-Bus service.
type timeoutNotifier struct {
	svc     *notify.Service
	timeout time.Duration
}

func (n timeoutNotifier) Show(req notify.Request) (notify.Handle, error) {
	req.Timeout = n.timeout
	return n.svc.Show(req)
}

func (n timeoutNotifier) Update(handle notify.Handle, req notify.Request) (notify.Handle, error) {
	req.Timeout = n.timeout
	return n.svc.Update(handle, req)
}

func (n timeoutNotifier) Close(handle notify.Handle) error {
	return n.svc.Close(handle)
}

// splitIgnore parses the comma-separated --ignore flag.
func splitIgnore(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			logging.GetLogger("main").Warn("Failed to load config", "error", loadErr)
		}

		// Initialize logging system
		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"bridge":  opts.LoggingBridge,
				"state":   opts.LoggingState,
				"notify":  opts.LoggingNotify,
				"metrics": opts.LoggingMetrics,
			},
		})

		logger := logging.GetLogger("main")

		// CLI list wins over the TOML array; the watcher below keeps the
		// TOML side fresh while running.
		ignoreNames := splitIgnore(opts.Ignore)
		if ignoreNames == nil {
			if fromFile, ignoreErr := config.LoadIgnoreList(opts.Config); ignoreErr == nil {
				ignoreNames = fromFile
			} else {
				logger.Warn("Failed to load ignore list", "error", ignoreErr)
			}
		}
		ignoreSet := bridge.NewIgnoreSet(ignoreNames)
		eventBus := events.New()

		var exporter *metrics.Exporter
		if opts.MetricsAddr != "" {
			exporter = metrics.NewExporter()
			exporter.Attach(eventBus)
		}

		supervisor := bridge.NewSupervisor(bridge.Config{
			ChannelCapacity: opts.ChannelCapacity,
			Ignore:          ignoreSet,
			Logger:          logging.GetLogger("bridge"),
		})

		// Hot-reload the ignore list when the config file changes. Other
		// options need a restart. The watcher variable is fixed here;
		// OnStart and OnStop only call its synchronized methods.
		var watcher *config.IgnoreWatcher
		if opts.Config != "" {
			if _, statErr := os.Stat(opts.Config); statErr == nil {
				watcher = config.NewIgnoreWatcher(
					opts.Config,
					ignoreSet.Replace,
					logging.GetLogger("config"),
				)
			}
		}

		ctx, cancel := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			service, err := notify.NewService()
			if err != nil {
				logger.Error("Failed to connect to notification service", "error", err)
				cancel()
				os.Exit(1)
			}
			defer service.Shutdown()

			reconciler := state.New(state.Config{
				Notifier: timeoutNotifier{
					svc:     service,
					timeout: time.Duration(opts.NotifyTimeout) * time.Millisecond,
				},
				Bus:           eventBus,
				PinCorrection: !opts.NoPinCorrection,
				Logger:        logging.GetLogger("state"),
			})

			if err := supervisor.Start(ctx); err != nil {
				logger.Error("Failed to start event loop", "error", err)
				cancel()
				os.Exit(1)
			}

			if watcher != nil {
				// Stop is safe after a failed Start, so a reload that
				// never came up needs no further handling here.
				if watchErr := watcher.Start(); watchErr != nil {
					logger.Warn("Config watcher failed to start", "error", watchErr)
				}
			}
			if exporter != nil {
				exporter.Serve(opts.MetricsAddr)
			}

			if _, notifyErr := daemon.SdNotify(false, daemon.SdNotifyReady); notifyErr != nil {
				logger.Debug("sd_notify not available", "error", notifyErr)
			}

			// Blocks until the Shutdown action has been applied.
			reconciler.Run(supervisor.Actions())
		})

		hooks.OnStop(func() {
			if _, notifyErr := daemon.SdNotify(false, daemon.SdNotifyStopping); notifyErr != nil {
				logger.Debug("sd_notify not available", "error", notifyErr)
			}

			cancel()
			<-supervisor.Done()

			if watcher != nil {
				if stopErr := watcher.Stop(); stopErr != nil {
					logger.Warn("Error stopping config watcher", "error", stopErr)
				}
			}
			if exporter != nil {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer shutdownCancel()
				if shutdownErr := exporter.Shutdown(shutdownCtx); shutdownErr != nil {
					logger.Warn("Error stopping metrics server", "error", shutdownErr)
				}
			}
			logger.Info("Shutdown complete")
		})
	})

	cli.Root().AddCommand(cmd.CreateMonitorCmd())
	cli.Root().AddCommand(cmd.CreateVersionCmd())

	// Run the CLI
	cli.Run()
}
