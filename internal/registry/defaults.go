package registry

import "github.com/wufe/govee-control/internal/govee"

func powerSwitch() govee.Capability {
	return govee.Capability{
		Type:     govee.CapabilityPowerSwitch,
		Instance: govee.DefaultInstance,
		Parameters: govee.Parameters{
			DataType: govee.DataTypeEnum,
			Options: []govee.Option{
				{Name: "on", Value: true},
				{Name: "off", Value: false},
			},
		},
	}
}

func brightness() govee.Capability {
	return govee.Capability{
		Type:     govee.CapabilityBrightness,
		Instance: govee.DefaultInstance,
		Parameters: govee.Parameters{
			DataType: govee.DataTypeInteger,
			Range:    &govee.Range{Min: 0, Max: 100, Precision: 1},
		},
	}
}

func colorTemperature(minK, maxK float64) govee.Capability {
	return govee.Capability{
		Type:     govee.CapabilityColorTemperature,
		Instance: govee.DefaultInstance,
		Parameters: govee.Parameters{
			DataType: govee.DataTypeInteger,
			Range:    &govee.Range{Min: minK, Max: maxK, Precision: 100},
			Unit:     "kelvin",
		},
	}
}

func colorRGB() govee.Capability {
	return govee.Capability{
		Type:     govee.CapabilityColorRGB,
		Instance: govee.DefaultInstance,
		Parameters: govee.Parameters{
			DataType: govee.DataTypeInteger,
			Range:    &govee.Range{Min: 0, Max: 0xFFFFFF, Precision: 1},
		},
	}
}

func bulb(id, name string) govee.Device {
	return govee.Device{
		Device:     id,
		SKU:        "H6008",
		DeviceName: name,
		Capabilities: []govee.Capability{
			powerSwitch(),
			brightness(),
			colorTemperature(2700, 6500),
			colorRGB(),
		},
	}
}

// DefaultDevices returns the built-in device definitions.
func DefaultDevices() map[string]govee.Device {
	return map[string]govee.Device{
		"rgbicFloorLamp": {
			Device:     "47:0F:C7:33:36:31:67:51",
			SKU:        "H6072",
			DeviceName: "RGBICWW Floor Lamp",
			Capabilities: []govee.Capability{
				powerSwitch(),
				brightness(),
				colorTemperature(2000, 9000),
				colorRGB(),
			},
		},
		"cylinderFloorLamp": {
			Device:     "10:32:D3:21:C5:C6:7A:63",
			SKU:        "H6078",
			DeviceName: "Cylinder Floor Lamp",
			Capabilities: []govee.Capability{
				powerSwitch(),
				brightness(),
				colorTemperature(2200, 6500),
			},
		},
		"deskBulb": bulb("DA:CA:D0:C9:07:E5:7D:1C", "Desk Bulb"),
		"ceiling1": bulb("5B:E7:D0:C9:07:D5:B6:D2", "Ceiling 1"),
		"ceiling2": bulb("F2:17:D0:C9:07:D6:00:92", "Ceiling 2"),
	}
}

// Default builds the registry from the built-in definitions.
func Default() *Registry {
	r, err := New(DefaultDevices())
	if err != nil {
		panic(err)
	}
	return r
}
