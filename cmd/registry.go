// Package cmd holds the nxv4l2 subcommands.
package cmd

import (
	"fmt"
	"os"

	"github.com/smazurov/nxv4l2/internal/config"
	"github.com/smazurov/nxv4l2/internal/devices"
)

// RegistryOptions translates the device settings of opts into registry
// options.
func RegistryOptions(opts *config.Options) ([]devices.Option, error) {
	pixelFormat, err := devices.ParseFourCC(opts.DevicesProbePixelFormat)
	if err != nil {
		return nil, fmt.Errorf("devices.probe_pixel_format: %w", err)
	}
	return []devices.Option{
		devices.WithSysfs(os.DirFS(opts.DevicesSysfsRoot)),
		devices.WithDevDir(opts.DevicesDevDir),
		devices.WithFrameOpener(devices.NewFrameOpener(pixelFormat)),
	}, nil
}

func newRegistry(opts *config.Options) (*devices.Registry, error) {
	regOpts, err := RegistryOptions(opts)
	if err != nil {
		return nil, err
	}
	return devices.NewRegistry(regOpts...), nil
}

// fail prints err and exits, the way every subcommand reports errors.
func fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
