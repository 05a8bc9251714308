package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wufe/govee-control/internal/govee"
	"github.com/wufe/govee-control/internal/registry"
	"github.com/wufe/govee-control/internal/store"
)

type fakeGovee struct {
	mu       sync.Mutex
	controls []govee.ControlRequest
	states   int
	failing  map[string]bool
}

func (f *fakeGovee) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("Govee-API-Key"))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/router/api/v1/device/control":
			var req govee.ControlRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			f.mu.Lock()
			f.controls = append(f.controls, req)
			failing := f.failing[req.Payload.Device]
			f.mu.Unlock()

			if failing {
				_, _ = io.WriteString(w, `{"requestId":"`+req.RequestID+`","code":400,"message":"device offline"}`)
				return
			}
			_, _ = io.WriteString(w, `{"requestId":"`+req.RequestID+`","code":200,"message":"success"}`)
		case "/router/api/v1/device/state":
			var req govee.StateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			f.mu.Lock()
			f.states++
			failing := f.failing[req.Payload.Device]
			f.mu.Unlock()

			if failing {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = io.WriteString(w, `{"requestId":"`+req.RequestID+`","code":200,"msg":"success","payload":{
				"sku":"`+req.Payload.SKU+`","device":"`+req.Payload.Device+`",
				"capabilities":[
					{"type":"devices.capabilities.on_off","instance":"powerSwitch","state":{"value":1}},
					{"type":"devices.capabilities.range","instance":"brightness","state":{"value":75}},
					{"type":"devices.capabilities.color_setting","instance":"colorRgb","state":{"value":0}}
				]}}`)
		case "/router/api/v1/user/devices":
			_, _ = io.WriteString(w, `{"code":200,"message":"success","data":[
				{"sku":"H6008","device":"DA:CA:D0:C9:07:E5:7D:1C","deviceName":"Desk Bulb","capabilities":[
					{"type":"devices.capabilities.on_off","instance":"powerSwitch","parameters":{"dataType":"ENUM"}}
				]}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func (f *fakeGovee) sent() []govee.ControlRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]govee.ControlRequest(nil), f.controls...)
}

type testEnv struct {
	dir  string
	fake *fakeGovee
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	fake := &fakeGovee{failing: map[string]bool{}}
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	t.Setenv("GOVEE_API_KEY", "test-key")
	t.Setenv("GOVEE_BASE_URL", server.URL)
	t.Setenv("GOVEE_FILES_DEVICES", filepath.Join(dir, "devices.json"))
	t.Setenv("GOVEE_FILES_COLORS", filepath.Join(dir, "colors.json"))
	t.Setenv("GOVEE_FILES_PRESETS", filepath.Join(dir, "presets.json"))
	t.Setenv("GOVEE_FILES_STATES", filepath.Join(dir, "saved-states.json"))

	return &testEnv{dir: dir, fake: fake}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestMissingAPIKeyFailsFast(t *testing.T) {
	env := setupEnv(t)
	t.Setenv("GOVEE_API_KEY", "")

	_, err := execute(t, "control", "deskBulb", "-o", "on")

	var configErr *store.ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.ErrorIs(t, err, errMissingAPIKey)
	assert.Empty(t, env.fake.sent())
}

func TestListCommand(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "Available devices:")
	assert.Contains(t, out, "deskBulb (Desk Bulb)")
	assert.Contains(t, out, "cylinderFloorLamp (Cylinder Floor Lamp)")
}

func TestControlBrightness(t *testing.T) {
	env := setupEnv(t)

	out, err := execute(t, "control", "deskBulb", "-o", "brightness", "-v", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "Set deskBulb brightness to 50")

	sent := env.fake.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "DA:CA:D0:C9:07:E5:7D:1C", sent[0].Payload.Device)
	assert.Equal(t, "devices.capabilities.range", sent[0].Payload.Capability.Type)
	assert.EqualValues(t, 50, sent[0].Payload.Capability.Value)
}

func TestControlRejectsBeforeNetwork(t *testing.T) {
	env := setupEnv(t)

	_, err := execute(t, "control", "deskBulb", "-o", "brightness", "-v", "0")
	assert.ErrorIs(t, err, govee.ErrOutOfRange)

	_, err = execute(t, "c", "cylinderFloorLamp", "-o", "temperature", "-v", "7000")
	assert.ErrorIs(t, err, govee.ErrOutOfRange)

	_, err = execute(t, "control", "deskBulb", "-o", "brightness")
	assert.Error(t, err)

	_, err = execute(t, "control", "nonexistent", "-o", "on")
	var notFound *registry.DeviceNotFoundError
	assert.ErrorAs(t, err, &notFound)

	assert.Empty(t, env.fake.sent())
}

func TestControlUnknownOperationPrintsHelp(t *testing.T) {
	env := setupEnv(t)

	out, err := execute(t, "control", "deskBulb", "-o", "dance")
	require.NoError(t, err)
	assert.Contains(t, out, "Available operations:")
	assert.Contains(t, out, "save-states")
	assert.Empty(t, env.fake.sent())
}

func TestControlColorPersistsCurrentColor(t *testing.T) {
	env := setupEnv(t)

	_, err := execute(t, "control", "ceiling1", "-o", "color", "-v", "#00FF80")
	require.NoError(t, err)

	sent := env.fake.sent()
	require.Len(t, sent, 1)
	assert.EqualValues(t, 0x00ff80, sent[0].Payload.Capability.Value)

	colors := store.NewColorStore(filepath.Join(env.dir, "colors.json"))
	require.NoError(t, colors.Load())
	hex, ok := colors.CurrentColor("ceiling1")
	require.True(t, ok)
	assert.Equal(t, "#00ff80", hex)
}

func TestControlEmbeddedFailure(t *testing.T) {
	env := setupEnv(t)
	env.fake.failing["DA:CA:D0:C9:07:E5:7D:1C"] = true

	_, err := execute(t, "control", "deskBulb", "-o", "off")

	var apiErr *govee.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "device offline", apiErr.Message)
}

func TestControlWorkMode(t *testing.T) {
	env := setupEnv(t)

	out, err := execute(t, "control", "deskBulb", "-o", "work")
	require.NoError(t, err)
	assert.Contains(t, out, "Work mode activated")
	assert.Len(t, env.fake.sent(), 9)
}

func TestControlSaveStates(t *testing.T) {
	env := setupEnv(t)
	env.fake.failing["F2:17:D0:C9:07:D6:00:92"] = true

	out, err := execute(t, "control", "deskBulb", "-o", "save-states")
	require.NoError(t, err)
	assert.Contains(t, out, "4/5")

	states, err := store.NewStateFile(filepath.Join(env.dir, "saved-states.json")).Load()
	require.NoError(t, err)
	assert.Len(t, states, 4)
	assert.NotContains(t, states, "ceiling2")
	require.NotNil(t, states["deskBulb"].Color)
	assert.Equal(t, "#ffffff", *states["deskBulb"].Color)
	assert.Equal(t, 75, *states["deskBulb"].Brightness)
}

func TestControlSaveStatesAllFailing(t *testing.T) {
	env := setupEnv(t)
	for _, id := range []string{
		"DA:CA:D0:C9:07:E5:7D:1C", "5B:E7:D0:C9:07:D5:B6:D2", "F2:17:D0:C9:07:D6:00:92",
		"47:0F:C7:33:36:31:67:51", "10:32:D3:21:C5:C6:7A:63",
	} {
		env.fake.failing[id] = true
	}
	path := filepath.Join(env.dir, "saved-states.json")
	previous := []byte(`{"deskBulb":{"power":true,"brightness":40}}`)
	require.NoError(t, os.WriteFile(path, previous, 0o644))

	_, err := execute(t, "control", "deskBulb", "-o", "save-states")
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, previous, data)
}

func TestControlRestore(t *testing.T) {
	env := setupEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(env.dir, "saved-states.json"), []byte(`{
		"deskBulb": {"power": true, "brightness": 40, "colorTemp": 3000},
		"ceiling2": {"power": false}
	}`), 0o644))

	out, err := execute(t, "control", "deskBulb", "-o", "restore")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored saved settings of 2 devices")

	sent := env.fake.sent()
	require.Len(t, sent, 4)
	assert.Equal(t, "F2:17:D0:C9:07:D6:00:92", sent[0].Payload.Device)
	assert.EqualValues(t, 0, sent[0].Payload.Capability.Value)
	assert.Equal(t, "colorTemperatureK", sent[2].Payload.Capability.Instance)
	assert.EqualValues(t, 40, sent[3].Payload.Capability.Value)
}

func TestControlRestoreRejectsInvalidSavedValues(t *testing.T) {
	env := setupEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(env.dir, "saved-states.json"), []byte(`{
		"cylinderFloorLamp": {"power": true, "colorTemp": 9000}
	}`), 0o644))

	_, err := execute(t, "control", "deskBulb", "-o", "restore")
	assert.ErrorIs(t, err, govee.ErrOutOfRange)
	assert.Len(t, env.fake.sent(), 1)
}

func TestPresetVerify(t *testing.T) {
	env := setupEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(env.dir, "presets.json"), []byte(`{
		"dim": {"deskBulb": {"brightness": 75}},
		"orange": {"deskBulb": {"color": "#ff8c00"}}
	}`), 0o644))

	out, err := execute(t, "preset", "dim", "--verify")
	require.NoError(t, err)
	assert.Contains(t, out, "Verified deskBulb")

	out, err = execute(t, "preset", "orange", "--verify")
	require.NoError(t, err)
	assert.Contains(t, out, "might not have been applied correctly")
	assert.Contains(t, out, "color: expected #ff8c00, got #ffffff")
}

func TestControlWorkModeVerify(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "control", "deskBulb", "-o", "work", "--verify")
	require.NoError(t, err)
	assert.Contains(t, out, "brightness: expected 100, got 75")
	assert.Contains(t, out, "colorTemp: expected 5000, got not reported")
}

func TestPresetCommand(t *testing.T) {
	env := setupEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(env.dir, "presets.json"), []byte(`{
		"evening": {
			"deskBulb": {"color": "#ff8c00", "brightness": 40},
			"garage": {"brightness": 10}
		}
	}`), 0o644))

	out, err := execute(t, "preset")
	require.NoError(t, err)
	assert.Contains(t, out, "Available presets:")
	assert.Contains(t, out, "evening")

	out, err = execute(t, "p", "missing")
	require.NoError(t, err)
	assert.Contains(t, out, "evening")
	assert.Empty(t, env.fake.sent())

	out, err = execute(t, "preset", "evening")
	require.NoError(t, err)
	assert.Contains(t, out, `Successfully applied preset "evening"`)

	sent := env.fake.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "colorRgb", sent[0].Payload.Capability.Instance)
	assert.Equal(t, "brightness", sent[1].Payload.Capability.Instance)
}

func TestStateCommand(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "state", "deskBulb")
	require.NoError(t, err)
	assert.Contains(t, out, "power: on")
	assert.Contains(t, out, "brightness: 75")
	assert.Contains(t, out, "color temperature: not reported")
	assert.Contains(t, out, "#ffffff")
}

func TestCapabilitiesCommand(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "capabilities", "cylinderFloorLamp")
	require.NoError(t, err)
	assert.Contains(t, out, "colorTemperature.1: INTEGER 2200-6500 kelvin")
	assert.Contains(t, out, "powerSwitch.1: ENUM [on=true, off=false]")
	assert.NotContains(t, out, "colorRgb")
}

func TestDevicesCommand(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "devices")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 devices:")
	assert.Contains(t, out, "Desk Bulb (H6008)")
}

func TestDevicesFileReplacesRegistry(t *testing.T) {
	env := setupEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(env.dir, "devices.json"), []byte(`{
		"hallway": {
			"device": "AA:BB:CC", "sku": "H6008", "deviceName": "Hallway",
			"capabilities": [{"type": "powerSwitch", "instance": "1", "parameters": {"dataType": "ENUM",
				"options": [{"name": "on", "value": true}, {"name": "off", "value": false}]}}]
		}
	}`), 0o644))

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "hallway (Hallway)")
	assert.NotContains(t, out, "deskBulb")

	_, err = execute(t, "control", "hallway", "-o", "on")
	require.NoError(t, err)
	sent := env.fake.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "AA:BB:CC", sent[0].Payload.Device)
}
