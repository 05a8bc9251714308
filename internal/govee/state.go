package govee

import (
	"math"

	"github.com/wufe/govee-control/internal/color"
)

// DeviceState is the raw state reported for one device.
type DeviceState struct {
	Device       string
	SKU          string
	Capabilities []CapabilityState
}

// StateSnapshot is the flat view of the known capabilities. Nil fields mean
// the device did not report that capability.
type StateSnapshot struct {
	Power      bool    `json:"power"`
	Brightness *int    `json:"brightness,omitempty"`
	ColorTemp  *int    `json:"colorTemp,omitempty"`
	Color      *string `json:"color,omitempty"`
	Online     *bool   `json:"online,omitempty"`
}

// Value returns the reported value of a (type, instance) pair.
func (s *DeviceState) Value(capabilityType, instance string) (any, bool) {
	for _, capability := range s.Capabilities {
		if capability.Type == capabilityType && capability.Instance == instance {
			return capability.State.Value, capability.State.Value != nil
		}
	}
	return nil, false
}

func (s *DeviceState) Snapshot() StateSnapshot {
	var snapshot StateSnapshot

	if v, ok := s.Value(TypeOnOff, InstancePowerSwitch); ok {
		n, isNumber := toFloat(v)
		b, isBool := v.(bool)
		snapshot.Power = (isNumber && n == 1) || (isBool && b)
	}
	if n, ok := s.intValue(TypeRange, InstanceBrightness); ok {
		snapshot.Brightness = &n
	}
	if n, ok := s.intValue(TypeColorSetting, InstanceColorTemperatureK); ok {
		snapshot.ColorTemp = &n
	}
	if n, ok := s.intValue(TypeColorSetting, InstanceColorRGB); ok {
		snapshot.Color = decodeColor(n)
	}
	if v, ok := s.Value(TypeOnline, InstanceOnline); ok {
		if b, isBool := v.(bool); isBool {
			snapshot.Online = &b
		}
	}

	return snapshot
}

func (s *DeviceState) intValue(capabilityType, instance string) (int, bool) {
	v, ok := s.Value(capabilityType, instance)
	if !ok {
		return 0, false
	}
	n, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	return int(math.Round(n)), true
}

// decodeColor treats a packed 0 as white, following the device convention
// that 0 means "no color set".
func decodeColor(packed int) *string {
	hex := color.White.Hex()
	if packed != 0 {
		c, err := color.Unpack(packed)
		if err != nil {
			return nil
		}
		hex = c.Hex()
	}
	return &hex
}
