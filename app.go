package main

import (
	"github.com/rs/zerolog/log"

	"github.com/wufe/govee-control/internal/control"
	"github.com/wufe/govee-control/internal/govee"
	"github.com/wufe/govee-control/internal/registry"
	"github.com/wufe/govee-control/internal/store"
)

// app holds everything a command needs, built once per invocation.
type app struct {
	config  Configuration
	client  *govee.Client
	devices *registry.Registry
	colors  *store.ColorStore
	states  *store.StateFile
	presets store.Presets
	service *control.Service
}

// newApp wires the configured files and client. Unreadable configuration
// files are reported and replaced by their defaults.
func newApp(config Configuration) *app {
	a := &app{config: config}

	a.devices = loadRegistry(config.Files.Devices)

	a.colors = store.NewColorStore(config.Files.Colors)
	if err := a.colors.Load(); err != nil {
		log.Warn().Err(err).Msg("Using default colors")
	}

	presets, err := store.LoadPresets(config.Files.Presets)
	if err != nil {
		log.Warn().Err(err).Msg("No presets available")
	}
	a.presets = presets

	a.states = store.NewStateFile(config.Files.States)

	a.client = govee.NewClient(config.APIKey,
		govee.WithBaseURL(config.BaseURL),
		govee.WithTimeout(config.Timeout),
		govee.WithRetry(config.RetryAttempts, config.RetryDelay),
	)

	a.service = control.NewService(a.client, a.devices,
		control.WithColorStore(a.colors),
		control.WithStateStore(a.states),
		control.WithStateWorkers(config.StateWorkers),
	)

	return a
}

func loadRegistry(path string) *registry.Registry {
	devices, err := store.LoadDevices(path)
	if err != nil {
		log.Warn().Err(err).Msg("Using built-in devices")
		return registry.Default()
	}
	if len(devices) == 0 {
		return registry.Default()
	}

	r, err := registry.New(devices)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Invalid devices file, using built-in devices")
		return registry.Default()
	}
	log.Debug().Str("path", path).Int("devices", r.Len()).Msg("Loaded devices file")
	return r
}
