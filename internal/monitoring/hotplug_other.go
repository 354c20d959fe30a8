//go:build !linux

package monitoring

import "errors"

// Start fails: uevents are a Linux facility.
func (w *HotplugWatcher) Start() error {
	return errors.New("hotplug monitoring requires linux")
}
