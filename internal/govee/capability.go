package govee

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCapability = errors.New("invalid capability")
	ErrOutOfRange        = errors.New("value out of range")
)

// CapabilityKey identifies a capability on a device.
type CapabilityKey struct {
	Type     CapabilityType
	Instance string
}

func (k CapabilityKey) String() string {
	return fmt.Sprintf("%s.%s", k.Type, k.Instance)
}

func (c Capability) Key() CapabilityKey {
	return CapabilityKey{Type: c.Type, Instance: c.Instance}
}

func (d Device) Capability(capabilityType CapabilityType, instance string) (Capability, bool) {
	for _, capability := range d.Capabilities {
		if capability.Type == capabilityType && capability.Instance == instance {
			return capability, true
		}
	}
	return Capability{}, false
}

func (d Device) CapabilityTable() map[CapabilityKey]Capability {
	table := make(map[CapabilityKey]Capability, len(d.Capabilities))
	for _, capability := range d.Capabilities {
		table[capability.Key()] = capability
	}
	return table
}

// Check enforces the registry invariants: identity fields are set, there is
// at least one capability and every capability has a type and an instance.
func (d Device) Check() error {
	if d.Device == "" || d.SKU == "" || d.DeviceName == "" {
		return fmt.Errorf("device %q is missing required fields", d.DeviceName)
	}
	if len(d.Capabilities) == 0 {
		return fmt.Errorf("device %q has no capabilities", d.DeviceName)
	}
	for _, capability := range d.Capabilities {
		if capability.Type == "" || capability.Instance == "" {
			return fmt.Errorf("device %q has a capability without type or instance", d.DeviceName)
		}
	}
	return nil
}

// Validate checks value against the named capability of the device.
func Validate(device Device, capabilityType CapabilityType, instance string, value any) error {
	capability, ok := device.Capability(capabilityType, instance)
	if !ok {
		return fmt.Errorf("%w: %s does not support %s.%s", ErrInvalidCapability, device.DeviceName, capabilityType, instance)
	}

	params := capability.Parameters
	switch {
	case params.Range != nil:
		n, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("%w: %v is not numeric for %s", ErrOutOfRange, value, capabilityType)
		}
		if n < params.Range.Min || n > params.Range.Max {
			return fmt.Errorf("%w: %s must be between %g and %g%s for %s",
				ErrOutOfRange, capabilityType, params.Range.Min, params.Range.Max, unitSuffix(params.Unit), device.DeviceName)
		}
	case len(params.Options) > 0:
		for _, option := range params.Options {
			if sameValue(option.Value, value) {
				return nil
			}
		}
		return fmt.Errorf("%w: %v is not an option of %s", ErrOutOfRange, value, capabilityType)
	}
	return nil
}

func unitSuffix(unit string) string {
	if unit == "kelvin" {
		return "K"
	}
	return ""
}

func sameValue(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}
