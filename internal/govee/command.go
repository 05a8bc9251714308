package govee

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/wufe/govee-control/internal/color"
)

// Provider capability types used on the control and state endpoints.
const (
	TypeOnOff        = "devices.capabilities.on_off"
	TypeRange        = "devices.capabilities.range"
	TypeColorSetting = "devices.capabilities.color_setting"
	TypeOnline       = "devices.capabilities.online"
)

const (
	InstancePowerSwitch       = "powerSwitch"
	InstanceBrightness        = "brightness"
	InstanceColorRGB          = "colorRgb"
	InstanceColorTemperatureK = "colorTemperatureK"
	InstanceOnline            = "online"
)

// ControlCommand is a single control action in the provider's terms.
type ControlCommand struct {
	Type     string
	Instance string
	Value    any
}

func (c ControlCommand) String() string {
	return fmt.Sprintf("%s/%s=%v", c.Type, c.Instance, c.Value)
}

func PowerCommand(on bool) ControlCommand {
	value := 0
	if on {
		value = 1
	}
	return ControlCommand{Type: TypeOnOff, Instance: InstancePowerSwitch, Value: value}
}

func BrightnessCommand(level int) ControlCommand {
	return ControlCommand{Type: TypeRange, Instance: InstanceBrightness, Value: level}
}

func ColorCommand(c color.RGB) ControlCommand {
	return ControlCommand{Type: TypeColorSetting, Instance: InstanceColorRGB, Value: c.Pack()}
}

func ColorTemperatureCommand(kelvin int) ControlCommand {
	return ControlCommand{Type: TypeColorSetting, Instance: InstanceColorTemperatureK, Value: kelvin}
}

// WirePair maps a registry capability type to the provider's (type, instance) pair.
func WirePair(capabilityType CapabilityType) (string, string, bool) {
	switch capabilityType {
	case CapabilityPowerSwitch:
		return TypeOnOff, InstancePowerSwitch, true
	case CapabilityBrightness:
		return TypeRange, InstanceBrightness, true
	case CapabilityColorRGB:
		return TypeColorSetting, InstanceColorRGB, true
	case CapabilityColorTemperature:
		return TypeColorSetting, InstanceColorTemperatureK, true
	default:
		return "", "", false
	}
}

// Encoder builds request envelopes. The zero value uses random v4 UUIDs.
type Encoder struct {
	NewRequestID func() string
}

func (e Encoder) requestID() string {
	if e.NewRequestID != nil {
		return e.NewRequestID()
	}
	return uuid.NewString()
}

func (e Encoder) Control(device, sku string, cmd ControlCommand) ControlRequest {
	return ControlRequest{
		RequestID: e.requestID(),
		Payload: ControlPayload{
			SKU:    sku,
			Device: device,
			Capability: ControlCapability{
				Type:     cmd.Type,
				Instance: cmd.Instance,
				Value:    cmd.Value,
			},
		},
	}
}

func (e Encoder) State(device, sku string) StateRequest {
	return StateRequest{
		RequestID: e.requestID(),
		Payload: StatePayload{
			Device: device,
			SKU:    sku,
		},
	}
}
