package control

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/wufe/govee-control/internal/color"
	"github.com/wufe/govee-control/internal/govee"
	"github.com/wufe/govee-control/internal/registry"
	"github.com/wufe/govee-control/internal/store"
)

const (
	minBrightness = 1
	maxBrightness = 100

	defaultStateWorkers = 4
)

// DeviceAPI is the subset of the cloud client used by the service.
type DeviceAPI interface {
	SendControl(ctx context.Context, device, sku string, cmd govee.ControlCommand) error
	GetDeviceState(ctx context.Context, device, sku string) (*govee.DeviceState, error)
	ListDevices(ctx context.Context) ([]govee.Device, error)
}

var _ DeviceAPI = (*govee.Client)(nil)

type ColorRecorder interface {
	SetCurrentColor(device, hex string) error
}

var _ ColorRecorder = (*store.ColorStore)(nil)

// StateStore keeps the saved snapshots between runs.
type StateStore interface {
	Save(states map[string]govee.StateSnapshot) error
	Load() (map[string]govee.StateSnapshot, error)
}

var _ StateStore = (*store.StateFile)(nil)

// WorkStep is one device of the work mode batch.
type WorkStep struct {
	Device     string
	Brightness int
	ColorTemp  int
}

func DefaultWorkMode() []WorkStep {
	return []WorkStep{
		{Device: "deskBulb", Brightness: 100, ColorTemp: 5000},
		{Device: "ceiling1", Brightness: 80, ColorTemp: 4500},
		{Device: "ceiling2", Brightness: 80, ColorTemp: 4500},
	}
}

// CapabilityInfo describes a capability for introspection.
type CapabilityInfo struct {
	Instance   string           `json:"instance"`
	Parameters govee.Parameters `json:"parameters"`
}

type Service struct {
	api          DeviceAPI
	devices      *registry.Registry
	colors       ColorRecorder
	states       StateStore
	workMode     []WorkStep
	stateWorkers int
}

type Option func(*Service)

func WithColorStore(colors ColorRecorder) Option {
	return func(s *Service) {
		s.colors = colors
	}
}

func WithStateStore(states StateStore) Option {
	return func(s *Service) {
		s.states = states
	}
}

func WithWorkMode(steps []WorkStep) Option {
	return func(s *Service) {
		s.workMode = steps
	}
}

// WithStateWorkers bounds the number of parallel state requests. 1 fetches
// devices one at a time.
func WithStateWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.stateWorkers = n
		}
	}
}

func NewService(api DeviceAPI, devices *registry.Registry, opts ...Option) *Service {
	s := &Service{
		api:          api,
		devices:      devices,
		workMode:     DefaultWorkMode(),
		stateWorkers: defaultStateWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Devices() *registry.Registry {
	return s.devices
}

func (s *Service) TurnOn(ctx context.Context, name string) error {
	return s.setPower(ctx, name, true)
}

func (s *Service) TurnOff(ctx context.Context, name string) error {
	return s.setPower(ctx, name, false)
}

func (s *Service) setPower(ctx context.Context, name string, on bool) error {
	device, err := s.devices.Lookup(name)
	if err != nil {
		return err
	}
	if err := govee.Validate(device, govee.CapabilityPowerSwitch, govee.DefaultInstance, on); err != nil {
		return err
	}
	return s.api.SendControl(ctx, device.Device, device.SKU, govee.PowerCommand(on))
}

// SetBrightness sends a brightness level in [1,100]. Level 0 is rejected,
// turning a device off goes through TurnOff.
func (s *Service) SetBrightness(ctx context.Context, name string, level int) error {
	device, err := s.devices.Lookup(name)
	if err != nil {
		return err
	}
	if level < minBrightness || level > maxBrightness {
		return fmt.Errorf("%w: brightness must be between %d and %d, got %d", govee.ErrOutOfRange, minBrightness, maxBrightness, level)
	}
	if err := govee.Validate(device, govee.CapabilityBrightness, govee.DefaultInstance, level); err != nil {
		return err
	}
	return s.api.SendControl(ctx, device.Device, device.SKU, govee.BrightnessCommand(level))
}

// SetColor sends a "#rrggbb" color and records it as the device's current
// color once the device accepted it.
func (s *Service) SetColor(ctx context.Context, name, hex string) error {
	device, err := s.devices.Lookup(name)
	if err != nil {
		return err
	}
	rgb, err := color.ParseHex(hex)
	if err != nil {
		return err
	}
	if err := govee.Validate(device, govee.CapabilityColorRGB, govee.DefaultInstance, rgb.Pack()); err != nil {
		return err
	}
	if err := s.api.SendControl(ctx, device.Device, device.SKU, govee.ColorCommand(rgb)); err != nil {
		return err
	}

	if s.colors != nil {
		if err := s.colors.SetCurrentColor(name, rgb.Hex()); err != nil {
			log.Warn().Err(err).Str("device", name).Msg("Color applied but could not be saved")
		}
	}
	return nil
}

// SetColorTemperature checks kelvin against the device's own range.
func (s *Service) SetColorTemperature(ctx context.Context, name string, kelvin int) error {
	device, err := s.devices.Lookup(name)
	if err != nil {
		return err
	}
	if err := govee.Validate(device, govee.CapabilityColorTemperature, govee.DefaultInstance, kelvin); err != nil {
		return err
	}
	return s.api.SendControl(ctx, device.Device, device.SKU, govee.ColorTemperatureCommand(kelvin))
}

// WorkMode runs the work mode batch one device at a time. The first failing
// step stops the batch, earlier devices keep their new settings.
func (s *Service) WorkMode(ctx context.Context) error {
	for _, step := range s.workMode {
		log.Debug().
			Str("device", step.Device).
			Int("brightness", step.Brightness).
			Int("colorTemp", step.ColorTemp).
			Msg("Applying work mode")

		if err := s.TurnOn(ctx, step.Device); err != nil {
			return fmt.Errorf("error turning on %s for work mode: %w", step.Device, err)
		}
		if err := s.SetBrightness(ctx, step.Device, step.Brightness); err != nil {
			return fmt.Errorf("error setting brightness of %s for work mode: %w", step.Device, err)
		}
		if err := s.SetColorTemperature(ctx, step.Device, step.ColorTemp); err != nil {
			return fmt.Errorf("error setting color temperature of %s for work mode: %w", step.Device, err)
		}
	}
	return nil
}

// Capabilities returns the device capabilities keyed by "type.instance".
func (s *Service) Capabilities(name string) (map[string]CapabilityInfo, error) {
	device, err := s.devices.Lookup(name)
	if err != nil {
		return nil, err
	}

	capabilities := make(map[string]CapabilityInfo, len(device.Capabilities))
	for key, capability := range device.CapabilityTable() {
		capabilities[key.String()] = CapabilityInfo{
			Instance:   capability.Instance,
			Parameters: capability.Parameters,
		}
	}
	return capabilities, nil
}

func (s *Service) DeviceState(ctx context.Context, name string) (govee.StateSnapshot, error) {
	device, err := s.devices.Lookup(name)
	if err != nil {
		return govee.StateSnapshot{}, err
	}
	state, err := s.api.GetDeviceState(ctx, device.Device, device.SKU)
	if err != nil {
		return govee.StateSnapshot{}, err
	}
	return state.Snapshot(), nil
}

// CurrentStates fetches the state of every registered device. A failing
// device is logged and left out of the map; the failures are returned
// joined together with the snapshots that did succeed.
func (s *Service) CurrentStates(ctx context.Context) (map[string]govee.StateSnapshot, error) {
	names := s.devices.Names()
	errs := make([]error, len(names))

	var mu sync.Mutex
	states := make(map[string]govee.StateSnapshot, len(names))

	var g errgroup.Group
	g.SetLimit(s.stateWorkers)

	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			snapshot, err := s.DeviceState(ctx, name)
			if err != nil {
				log.Err(err).Str("device", name).Msg("Error getting device state")
				errs[i] = fmt.Errorf("%s: %w", name, err)
				return nil
			}

			mu.Lock()
			states[name] = snapshot
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return states, errors.Join(errs...)
}

// SaveCurrentStates fetches every device and merges the snapshots into the
// saved file, so a device that cannot be reached keeps its previous entry.
// Nothing is written when no device answers; the fetch errors are returned.
// A partial fetch only logs the failures.
func (s *Service) SaveCurrentStates(ctx context.Context) (map[string]govee.StateSnapshot, error) {
	if s.states == nil {
		return nil, errors.New("no state file configured")
	}

	states, err := s.CurrentStates(ctx)
	if err != nil {
		if len(states) == 0 {
			return nil, fmt.Errorf("error getting device states: %w", err)
		}
		log.Warn().Msgf("Saving states of %d/%d devices", len(states), s.devices.Len())
	}

	merged, loadErr := s.states.Load()
	if loadErr != nil {
		log.Warn().Err(loadErr).Msg("Saved states are unreadable, replacing them")
		merged = map[string]govee.StateSnapshot{}
	}
	for name, snapshot := range states {
		merged[name] = snapshot
	}

	if err := s.states.Save(merged); err != nil {
		return states, fmt.Errorf("error saving device states: %w", err)
	}
	return states, nil
}

// RestoreStates re-applies the saved snapshots in name order and returns the
// names of the restored devices. A powered-off device is only turned off.
// Otherwise the device is turned on, then gets its color temperature, or its
// color when no temperature was reported, then its brightness. Devices
// missing from the registry are skipped; the first command error stops the
// restore.
func (s *Service) RestoreStates(ctx context.Context) ([]string, error) {
	if s.states == nil {
		return nil, errors.New("no state file configured")
	}

	saved, err := s.states.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading saved states: %w", err)
	}
	if len(saved) == 0 {
		return nil, errors.New("no saved states to restore")
	}

	names := make([]string, 0, len(saved))
	for name := range saved {
		names = append(names, name)
	}
	sort.Strings(names)

	restored := make([]string, 0, len(names))
	for _, name := range names {
		if _, err := s.devices.Lookup(name); err != nil {
			log.Warn().Msgf("Saved device %q is not registered, skipping", name)
			continue
		}
		if err := s.restoreDevice(ctx, name, saved[name]); err != nil {
			return restored, fmt.Errorf("error restoring %s: %w", name, err)
		}
		restored = append(restored, name)
		log.Info().Msgf("Restored device %q", name)
	}
	return restored, nil
}

func (s *Service) restoreDevice(ctx context.Context, name string, snapshot govee.StateSnapshot) error {
	if !snapshot.Power {
		return s.TurnOff(ctx, name)
	}
	if err := s.TurnOn(ctx, name); err != nil {
		return err
	}

	device, _ := s.devices.Lookup(name)
	_, hasTemperature := device.Capability(govee.CapabilityColorTemperature, govee.DefaultInstance)
	_, hasColor := device.Capability(govee.CapabilityColorRGB, govee.DefaultInstance)

	switch {
	case hasTemperature && snapshot.ColorTemp != nil && *snapshot.ColorTemp > 0:
		if err := s.SetColorTemperature(ctx, name, *snapshot.ColorTemp); err != nil {
			return err
		}
	case hasColor && snapshot.Color != nil:
		if err := s.SetColor(ctx, name, *snapshot.Color); err != nil {
			return err
		}
	}

	if snapshot.Brightness != nil && *snapshot.Brightness >= minBrightness {
		return s.SetBrightness(ctx, name, *snapshot.Brightness)
	}
	return nil
}

// ApplyPreset applies each device's settings in name order: color, then
// brightness, then temperature. Devices missing from the registry are
// skipped; the first command error stops the preset.
func (s *Service) ApplyPreset(ctx context.Context, presetName string, preset store.Preset) error {
	for _, name := range preset.Devices() {
		if _, err := s.devices.Lookup(name); err != nil {
			log.Warn().Msgf("Device %q not found in preset %q", name, presetName)
			continue
		}

		settings := preset[name]
		if settings.Color != "" {
			if err := s.SetColor(ctx, name, settings.Color); err != nil {
				return fmt.Errorf("error applying preset %s to %s: %w", presetName, name, err)
			}
		}
		if settings.Brightness != nil {
			if err := s.SetBrightness(ctx, name, *settings.Brightness); err != nil {
				return fmt.Errorf("error applying preset %s to %s: %w", presetName, name, err)
			}
		}
		if settings.Temperature != nil {
			if err := s.SetColorTemperature(ctx, name, *settings.Temperature); err != nil {
				return fmt.Errorf("error applying preset %s to %s: %w", presetName, name, err)
			}
		}

		log.Info().Msgf("Applied preset settings to device %q", name)
	}
	return nil
}

// RemoteDevices lists the devices known to the cloud account.
func (s *Service) RemoteDevices(ctx context.Context) ([]govee.Device, error) {
	return s.api.ListDevices(ctx)
}

// Expectation is the state a device should report after a batch. Nil fields
// are not checked.
type Expectation struct {
	Power      *bool
	Brightness *int
	ColorTemp  *int
	Color      *string
}

// Mismatch is a field whose reported value differs from the expected one.
type Mismatch struct {
	Field string
	Want  string
	Got   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: expected %s, got %s", m.Field, m.Want, m.Got)
}

// WorkModeExpectations returns what each work mode device should report.
func (s *Service) WorkModeExpectations() map[string]Expectation {
	on := true
	expectations := make(map[string]Expectation, len(s.workMode))
	for _, step := range s.workMode {
		brightness, colorTemp := step.Brightness, step.ColorTemp
		expectations[step.Device] = Expectation{Power: &on, Brightness: &brightness, ColorTemp: &colorTemp}
	}
	return expectations
}

// PresetExpectations returns what each registered preset device should report.
func (s *Service) PresetExpectations(preset store.Preset) map[string]Expectation {
	expectations := make(map[string]Expectation, len(preset))
	for name, settings := range preset {
		if _, err := s.devices.Lookup(name); err != nil {
			continue
		}
		var expectation Expectation
		if settings.Color != "" {
			if rgb, err := color.ParseHex(settings.Color); err == nil {
				hex := rgb.Hex()
				expectation.Color = &hex
			}
		}
		expectation.Brightness = settings.Brightness
		expectation.ColorTemp = settings.Temperature
		expectations[name] = expectation
	}
	return expectations
}

// Verify reads the device state back and reports the fields that differ from
// want. A field the device does not report counts as a mismatch.
func (s *Service) Verify(ctx context.Context, name string, want Expectation) ([]Mismatch, error) {
	got, err := s.DeviceState(ctx, name)
	if err != nil {
		return nil, err
	}

	var mismatches []Mismatch
	if want.Power != nil && *want.Power != got.Power {
		mismatches = append(mismatches, Mismatch{Field: "power", Want: fmt.Sprint(*want.Power), Got: fmt.Sprint(got.Power)})
	}
	if m, ok := compareInt("brightness", want.Brightness, got.Brightness); !ok {
		mismatches = append(mismatches, m)
	}
	if m, ok := compareInt("colorTemp", want.ColorTemp, got.ColorTemp); !ok {
		mismatches = append(mismatches, m)
	}
	if want.Color != nil && (got.Color == nil || *got.Color != *want.Color) {
		mismatches = append(mismatches, Mismatch{Field: "color", Want: *want.Color, Got: reported(got.Color)})
	}
	return mismatches, nil
}

func compareInt(field string, want, got *int) (Mismatch, bool) {
	if want == nil || (got != nil && *got == *want) {
		return Mismatch{}, true
	}
	value := "not reported"
	if got != nil {
		value = strconv.Itoa(*got)
	}
	return Mismatch{Field: field, Want: strconv.Itoa(*want), Got: value}, false
}

func reported(value *string) string {
	if value == nil {
		return "not reported"
	}
	return *value
}
