package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wufe/govee-control/internal/control"
	"github.com/wufe/govee-control/internal/govee"
)

const appVersion = "1.0.0"

const (
	operationOn          = "on"
	operationOff         = "off"
	operationBrightness  = "brightness"
	operationColor       = "color"
	operationTemperature = "temperature"
	operationWork        = "work"
	operationSaveStates  = "save-states"
	operationRestore     = "restore"
)

type operationHelp struct {
	name        string
	description string
}

var operations = []operationHelp{
	{operationOn, "Turn device on"},
	{operationOff, "Turn device off"},
	{operationBrightness, "Set brightness (1-100)"},
	{operationColor, "Set color (#rrggbb)"},
	{operationTemperature, "Set color temperature (in Kelvin)"},
	{operationWork, "Activate work mode"},
	{operationSaveStates, "Save current light settings"},
	{operationRestore, "Restore saved light settings"},
}

type cli struct {
	configFile string
	verbose    bool
	app        *app
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "govee",
		Short:         "Control Govee lights through the Govee cloud API",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVar(&c.configFile, "config", "", "configuration file (default ./govee.yaml or ~/.config/govee/govee.yaml)")
	root.PersistentFlags().BoolVar(&c.verbose, "verbose", false, "enable debug logging")

	root.AddCommand(
		c.newInteractiveCommand(),
		c.newListCommand(),
		c.newControlCommand(),
		c.newPresetCommand(),
		c.newDevicesCommand(),
		c.newStateCommand(),
		c.newCapabilitiesCommand(),
	)

	return root
}

func (c *cli) setup() error {
	configuration, err := NewConfiguration(c.configFile)
	if err != nil {
		return err
	}

	level := configuration.Level()
	if c.verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Debug().Msgf("Configuration: %s", configuration.Dump())

	c.app = newApp(configuration)
	return nil
}

func (c *cli) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"l", "ls"},
		Short:   "List all available devices",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			printTitle(out, "Available devices:")
			for _, name := range c.app.devices.Names() {
				device, _ := c.app.devices.Lookup(name)
				printItem(out, "%s (%s)", name, device.DeviceName)
			}
			return nil
		},
	}
}

func (c *cli) newControlCommand() *cobra.Command {
	var operation, value string
	var verify bool

	cmd := &cobra.Command{
		Use:     "control <device>",
		Aliases: []string{"c"},
		Short:   "Control a specific device",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if _, err := c.app.devices.Lookup(name); err != nil {
				return err
			}
			if err := c.runOperation(cmd.Context(), cmd.OutOrStdout(), name, operation, value); err != nil {
				return err
			}
			if verify && operation == operationWork {
				c.verify(cmd.Context(), cmd.OutOrStdout(), c.app.service.WorkModeExpectations())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "read the device states back after work mode and report differences")
	cmd.Flags().StringVarP(&operation, "operation", "o", "", "operation to perform ("+operationNames()+")")
	cmd.Flags().StringVarP(&value, "value", "v", "", "value for the operation (brightness level, #rrggbb color or Kelvin)")

	return cmd
}

func operationNames() string {
	names := make([]string, 0, len(operations))
	for _, op := range operations {
		names = append(names, op.name)
	}
	return strings.Join(names, "/")
}

func printOperations(out io.Writer) {
	printTitle(out, "Available operations:")
	for _, op := range operations {
		printItem(out, "%s: %s", op.name, op.description)
	}
}

func (c *cli) runOperation(ctx context.Context, out io.Writer, name, operation, value string) error {
	service := c.app.service

	switch operation {
	case operationOn:
		if err := service.TurnOn(ctx, name); err != nil {
			return err
		}
		printSuccess(out, "Turned on %s", name)
	case operationOff:
		if err := service.TurnOff(ctx, name); err != nil {
			return err
		}
		printSuccess(out, "Turned off %s", name)
	case operationBrightness:
		level, err := parseValue(value, "brightness value is required (1-100)")
		if err != nil {
			return err
		}
		if err := service.SetBrightness(ctx, name, level); err != nil {
			return err
		}
		printSuccess(out, "Set %s brightness to %d", name, level)
	case operationColor:
		if value == "" {
			return errors.New("color value is required (#rrggbb)")
		}
		if err := service.SetColor(ctx, name, value); err != nil {
			return err
		}
		printSuccess(out, "Set %s color to %s", name, strings.ToLower(value))
	case operationTemperature:
		kelvin, err := parseValue(value, "color temperature value is required (in Kelvin)")
		if err != nil {
			return err
		}
		if err := service.SetColorTemperature(ctx, name, kelvin); err != nil {
			return err
		}
		printSuccess(out, "Set %s color temperature to %dK", name, kelvin)
	case operationWork:
		if err := service.WorkMode(ctx); err != nil {
			return err
		}
		printSuccess(out, "Work mode activated")
	case operationSaveStates:
		return c.saveStates(ctx, out)
	case operationRestore:
		restored, err := service.RestoreStates(ctx)
		if err != nil {
			return err
		}
		printSuccess(out, "Restored saved settings of %d devices", len(restored))
	default:
		printOperations(out)
	}
	return nil
}

func parseValue(value, missing string) (int, error) {
	if value == "" {
		return 0, errors.New(missing)
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", value, err)
	}
	return n, nil
}

func (c *cli) saveStates(ctx context.Context, out io.Writer) error {
	states, err := c.app.service.SaveCurrentStates(ctx)
	if err != nil {
		return err
	}
	total := c.app.devices.Len()
	if len(states) < total {
		printWarning(out, "Saved states of %d/%d devices to %s", len(states), total, c.app.states.Path())
		return nil
	}
	printSuccess(out, "Saved states of %d devices to %s", len(states), c.app.states.Path())
	return nil
}

// verify reads back each expected device and prints the differences. Failures
// are reported as warnings only.
func (c *cli) verify(ctx context.Context, out io.Writer, expectations map[string]control.Expectation) {
	names := make([]string, 0, len(expectations))
	for name := range expectations {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		mismatches, err := c.app.service.Verify(ctx, name, expectations[name])
		if err != nil {
			printWarning(out, "Could not verify %s: %s", name, err)
			continue
		}
		if len(mismatches) == 0 {
			printSuccess(out, "Verified %s", name)
			continue
		}
		printWarning(out, "Some settings of %s might not have been applied correctly", name)
		for _, mismatch := range mismatches {
			printItem(out, "%s", mismatch)
		}
	}
}

func (c *cli) newPresetCommand() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:     "preset [name]",
		Aliases: []string{"p"},
		Short:   "Apply a preset configuration to one or more devices",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			var name string
			if len(args) == 1 {
				name = args[0]
			}
			preset, ok := c.app.presets[name]
			if !ok {
				if name != "" {
					printWarning(out, "Preset %q not found", name)
				}
				printTitle(out, "Available presets:")
				for _, presetName := range c.app.presets.Names() {
					printItem(out, "%s", presetName)
				}
				return nil
			}

			if err := c.app.service.ApplyPreset(cmd.Context(), name, preset); err != nil {
				return err
			}
			printSuccess(out, "Successfully applied preset %q", name)
			if verify {
				c.verify(cmd.Context(), out, c.app.service.PresetExpectations(preset))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "read the device states back after applying and report differences")
	return cmd
}

func (c *cli) newDevicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List the devices registered on the Govee account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := c.app.service.RemoteDevices(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printTitle(out, fmt.Sprintf("Found %d devices:", len(devices)))
			for _, device := range devices {
				printItem(out, "%s (%s) %s", device.DeviceName, device.SKU, device.Device)
				for _, capability := range device.Capabilities {
					fmt.Fprintf(out, "      %s/%s\n", capability.Type, capability.Instance)
				}
			}

			if remaining, ok := c.app.client.RateLimitRemaining(); ok {
				log.Debug().Int64("remaining", remaining).Msg("Remaining API requests")
			}
			return nil
		},
	}
}

func (c *cli) newStateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "state <device>",
		Short: "Show the current state of a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := c.app.service.DeviceState(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), args[0], snapshot)
			return nil
		},
	}
}

func printSnapshot(out io.Writer, name string, snapshot govee.StateSnapshot) {
	const unknown = "not reported"

	printTitle(out, name)

	power := "off"
	if snapshot.Power {
		power = "on"
	}
	printItem(out, "power: %s", power)

	brightness := unknown
	if snapshot.Brightness != nil {
		brightness = strconv.Itoa(*snapshot.Brightness)
	}
	printItem(out, "brightness: %s", brightness)

	temperature := unknown
	if snapshot.ColorTemp != nil {
		temperature = strconv.Itoa(*snapshot.ColorTemp) + "K"
	}
	printItem(out, "color temperature: %s", temperature)

	if snapshot.Color != nil {
		printItem(out, "color: %s %s", colorSwatch(*snapshot.Color), *snapshot.Color)
	} else {
		printItem(out, "color: %s", unknown)
	}

	if snapshot.Online != nil {
		printItem(out, "online: %t", *snapshot.Online)
	}
}

func (c *cli) newCapabilitiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities <device>",
		Short: "Show the capabilities declared for a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			capabilities, err := c.app.service.Capabilities(args[0])
			if err != nil {
				return err
			}
			printCapabilities(cmd.OutOrStdout(), args[0], capabilities)
			return nil
		},
	}
}

func printCapabilities(out io.Writer, name string, capabilities map[string]control.CapabilityInfo) {
	keys := make([]string, 0, len(capabilities))
	for key := range capabilities {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	printTitle(out, name)
	for _, key := range keys {
		params := capabilities[key].Parameters
		switch {
		case params.Range != nil:
			unit := ""
			if params.Unit != "" {
				unit = " " + params.Unit
			}
			printItem(out, "%s: %s %g-%g%s (step %g)", key, params.DataType, params.Range.Min, params.Range.Max, unit, params.Range.Precision)
		case len(params.Options) > 0:
			options := make([]string, 0, len(params.Options))
			for _, option := range params.Options {
				options = append(options, fmt.Sprintf("%s=%v", option.Name, option.Value))
			}
			printItem(out, "%s: %s [%s]", key, params.DataType, strings.Join(options, ", "))
		default:
			printItem(out, "%s: %s", key, params.DataType)
		}
	}
}
