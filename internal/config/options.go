package config

import "github.com/smazurov/nxv4l2/internal/logging"

// Options is the flat service configuration. Each field maps to a CLI
// flag, a TOML key (toml tag) and an environment variable (env tag,
// prefixed with EnvPrefix).
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings; empty disables basic auth
	AuthUsername string `help:"Basic auth username" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Device discovery
	DevicesSysfsRoot        string `help:"sysfs mount point" default:"/sys" toml:"devices.sysfs_root" env:"DEVICES_SYSFS_ROOT"`
	DevicesDevDir           string `help:"Directory holding device nodes" default:"/dev" toml:"devices.dev_dir" env:"DEVICES_DEV_DIR"`
	DevicesProbePixelFormat string `help:"FourCC passed to frame size probing (empty for none)" default:"" toml:"devices.probe_pixel_format" env:"DEVICES_PROBE_PIXEL_FORMAT"`
	DevicesHotplug          bool   `help:"Rescan on video4linux hotplug events" default:"true" toml:"devices.hotplug" env:"DEVICES_HOTPLUG"`

	// Messaging
	NATSEnabled   bool   `help:"Enable NATS messaging" default:"false" toml:"nats.enabled" env:"NATS_ENABLED"`
	NATSPort      int    `help:"Embedded NATS server port" default:"4222" toml:"nats.port" env:"NATS_PORT"`
	NATSServerURL string `help:"External NATS server (skips the embedded one)" default:"" toml:"nats.url" env:"NATS_URL"`

	// Metrics
	MetricsEnabled bool `help:"Expose Prometheus metrics" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingDevices string `help:"Devices logging level" default:"info" toml:"logging.devices" env:"LOGGING_DEVICES"`
	LoggingAPI     string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingNATS    string `help:"NATS logging level" default:"info" toml:"logging.nats" env:"LOGGING_NATS"`
	LoggingHotplug string `help:"Hotplug logging level" default:"info" toml:"logging.hotplug" env:"LOGGING_HOTPLUG"`
}

// Logging returns the logging configuration carried by the options.
func (o *Options) Logging() logging.Config {
	return logging.Config{
		Level:  o.LoggingLevel,
		Format: o.LoggingFormat,
		Modules: map[string]string{
			"devices": o.LoggingDevices,
			"api":     o.LoggingAPI,
			"nats":    o.LoggingNATS,
			"hotplug": o.LoggingHotplug,
		},
	}
}

// Reload re-applies the file and environment on top of o and returns the
// result. CLI values are not re-applied; a file change overrides them.
func (o Options) Reload(path string) (Options, error) {
	o.Config = path
	err := LoadConfig(&o, nil)
	return o, err
}
