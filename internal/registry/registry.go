package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wufe/govee-control/internal/govee"
)

// DeviceNotFoundError is returned when a name is not registered.
type DeviceNotFoundError struct {
	Name      string
	Available []string
}

func (e *DeviceNotFoundError) Error() string {
	return fmt.Sprintf("device %q not found, available devices: %s", e.Name, strings.Join(e.Available, ", "))
}

// Registry maps friendly names to device definitions. It is immutable once built.
type Registry struct {
	devices map[string]govee.Device
	names   []string
}

func New(devices map[string]govee.Device) (*Registry, error) {
	if len(devices) == 0 {
		return nil, fmt.Errorf("error building registry: no devices")
	}

	r := &Registry{
		devices: make(map[string]govee.Device, len(devices)),
		names:   make([]string, 0, len(devices)),
	}
	for name, device := range devices {
		if name == "" {
			return nil, fmt.Errorf("error building registry: device %q has an empty name", device.DeviceName)
		}
		if err := device.Check(); err != nil {
			return nil, fmt.Errorf("error building registry entry %s: %w", name, err)
		}
		r.devices[name] = device
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)

	return r, nil
}

func (r *Registry) Lookup(name string) (govee.Device, error) {
	device, ok := r.devices[name]
	if !ok {
		return govee.Device{}, &DeviceNotFoundError{Name: name, Available: r.Names()}
	}
	return device, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

func (r *Registry) Len() int {
	return len(r.names)
}
