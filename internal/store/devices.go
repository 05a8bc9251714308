package store

import "github.com/wufe/govee-control/internal/govee"

// LoadDevices reads an optional devices file keyed by friendly name.
// It returns a nil map when the file does not exist.
func LoadDevices(path string) (map[string]govee.Device, error) {
	if path == "" {
		return nil, nil
	}

	var devices map[string]govee.Device
	found, err := readJSON(path, &devices)
	if err != nil || !found {
		return nil, err
	}
	return devices, nil
}
