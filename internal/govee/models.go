package govee

// Capability types as declared in the device registry.
type CapabilityType string

const (
	CapabilityPowerSwitch      CapabilityType = "powerSwitch"
	CapabilityBrightness       CapabilityType = "brightness"
	CapabilityColorTemperature CapabilityType = "colorTemperature"
	CapabilityColorRGB         CapabilityType = "colorRgb"
)

// DefaultInstance is the instance label used by every registry capability.
const DefaultInstance = "1"

type DataType string

const (
	DataTypeInteger DataType = "INTEGER"
	DataTypeEnum    DataType = "ENUM"
	DataTypeString  DataType = "STRING"
)

type Device struct {
	Device       string       `json:"device"`
	SKU          string       `json:"sku"`
	DeviceName   string       `json:"deviceName"`
	Capabilities []Capability `json:"capabilities"`
}

type Capability struct {
	Type       CapabilityType `json:"type"`
	Instance   string         `json:"instance"`
	Parameters Parameters     `json:"parameters"`
}

type Parameters struct {
	DataType DataType `json:"dataType"`
	Range    *Range   `json:"range,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Options  []Option `json:"options,omitempty"`
}

type Range struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Precision float64 `json:"precision"`
}

type Option struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Wire models for the cloud API.

type ControlRequest struct {
	RequestID string         `json:"requestId"`
	Payload   ControlPayload `json:"payload"`
}

type ControlPayload struct {
	SKU        string            `json:"sku"`
	Device     string            `json:"device"`
	Capability ControlCapability `json:"capability"`
}

type ControlCapability struct {
	Type     string `json:"type"`
	Instance string `json:"instance"`
	Value    any    `json:"value"`
}

type StateRequest struct {
	RequestID string       `json:"requestId"`
	Payload   StatePayload `json:"payload"`
}

type StatePayload struct {
	Device string `json:"device"`
	SKU    string `json:"sku"`
}

type devicesResponse struct {
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Data    *[]Device `json:"data"`
}

type stateResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Payload *struct {
		SKU          string            `json:"sku"`
		Device       string            `json:"device"`
		Capabilities []CapabilityState `json:"capabilities"`
	} `json:"payload"`
}

type controlResponse struct {
	RequestID string `json:"requestId"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
}

// CapabilityState is one entry of a device state response.
type CapabilityState struct {
	Type     string `json:"type"`
	Instance string `json:"instance"`
	State    struct {
		Value any `json:"value"`
	} `json:"state"`
}
