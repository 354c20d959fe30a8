// Package logging provides slog loggers with per-module levels.
//
// Call Initialize once at startup, then fetch a logger per module:
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "text",
//		Modules: map[string]string{"devices": "debug"},
//	})
//
//	logger := logging.GetLogger("devices")
//	logger.Info("Device scan completed", "devices", n)
//
// Records go to stdout when it is attached and to the systemd journal when
// journald is running, tagged with SYSLOG_IDENTIFIER=nxv4l2:
//
//	journalctl -t nxv4l2 MODULE=devices
//
// Module levels are LevelVars, so loggers fetched before Initialize, and
// levels changed later with SetLevel, take effect without re-fetching.
package logging
