package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wufe/govee-control/internal/color"
	"github.com/wufe/govee-control/internal/govee"
	"github.com/wufe/govee-control/internal/picker"
	"github.com/wufe/govee-control/internal/prompt"
)

const defaultBrightness = "100"

const (
	saveStatesChoice    = "SAVE_STATES"
	restoreStatesChoice = "RESTORE_STATES"

	colorMenuInteractive = "interactive"
	colorMenuList        = "list"
	colorMenuHex         = "hex"
	colorMenuExit        = "exit"
	colorMenuBack        = "back"
)

var operationChoices = []prompt.Choice{
	{Label: "Turn On", Value: operationOn},
	{Label: "Turn Off", Value: operationOff},
	{Label: "Set Brightness", Value: operationBrightness},
	{Label: "Set Color", Value: operationColor},
	{Label: "Set Color Temperature", Value: operationTemperature},
	{Label: "Work Mode", Value: operationWork},
	{Label: "Save Current Light Settings", Value: operationSaveStates},
	{Label: "Restore Saved Light Settings", Value: operationRestore},
}

func (c *cli) newInteractiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"i"},
		Short:   "Interactive mode to control devices",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInteractive(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

// runInteractive loops until the user declines another operation or
// cancels a prompt.
func (c *cli) runInteractive(ctx context.Context, out io.Writer) error {
	for {
		deviceChoices := make([]prompt.Choice, 0, c.app.devices.Len()+2)
		for _, name := range c.app.devices.Names() {
			device, _ := c.app.devices.Lookup(name)
			deviceChoices = append(deviceChoices, prompt.Choice{
				Label: fmt.Sprintf("%s (%s)", name, device.DeviceName),
				Value: name,
			})
		}
		deviceChoices = append(deviceChoices,
			prompt.Choice{Label: "Save all light states", Value: saveStatesChoice},
			prompt.Choice{Label: "Restore saved light states", Value: restoreStatesChoice},
		)

		selected, ok, err := prompt.Select("Select a device or action:", deviceChoices)
		if err != nil || !ok {
			return err
		}

		var run func() error
		switch selected.Value {
		case saveStatesChoice:
			run = func() error { return c.saveStates(ctx, out) }
		case restoreStatesChoice:
			run = func() error { return c.runOperation(ctx, out, "", operationRestore, "") }
		default:
			operation, ok, err := prompt.Select("Select an operation:", operationChoices)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			name := selected.Value
			run = func() error { return c.runInteractiveOperation(ctx, out, name, operation.Value) }
		}

		if err := c.runWithRetry(out, run); err != nil {
			return err
		}

		again, ok, err := prompt.Confirm("Would you like to perform another operation?", true)
		if err != nil || !ok || !again {
			return err
		}
	}
}

// runWithRetry reports a failed operation and offers to run it again. Only
// prompt failures are returned.
func (c *cli) runWithRetry(out io.Writer, run func() error) error {
	for {
		err := run()
		if err == nil {
			return nil
		}
		printError(out, err)

		retry, ok, promptErr := prompt.Confirm("Retry?", false)
		if promptErr != nil {
			return promptErr
		}
		if !ok || !retry {
			return nil
		}
	}
}

func (c *cli) runInteractiveOperation(ctx context.Context, out io.Writer, name, operation string) error {
	switch operation {
	case operationBrightness:
		value, ok, err := prompt.Input("Enter brightness level (1-100):", defaultBrightness, validateOptional(validateNumber(1, 100)))
		if err != nil || !ok {
			return err
		}
		if value == "" {
			value = defaultBrightness
		}
		return c.runOperation(ctx, out, name, operation, value)
	case operationTemperature:
		title := "Enter color temperature in Kelvin:"
		if minK, maxK, ok := c.temperatureRange(name); ok {
			title = fmt.Sprintf("Enter color temperature in Kelvin (%d-%d):", minK, maxK)
		}
		value, ok, err := prompt.Input(title, "4000", validateNumber(0, 0))
		if err != nil || !ok {
			return err
		}
		return c.runOperation(ctx, out, name, operation, value)
	case operationColor:
		hex, err := c.chooseColor(name)
		if err != nil {
			return err
		}
		if hex == "" {
			printWarning(out, "Keeping the current color of %s", name)
			return nil
		}
		return c.runOperation(ctx, out, name, operation, hex)
	default:
		return c.runOperation(ctx, out, name, operation, "")
	}
}

func (c *cli) temperatureRange(name string) (int, int, bool) {
	device, err := c.app.devices.Lookup(name)
	if err != nil {
		return 0, 0, false
	}
	capability, ok := device.Capability(govee.CapabilityColorTemperature, govee.DefaultInstance)
	if !ok || capability.Parameters.Range == nil {
		return 0, 0, false
	}
	return int(capability.Parameters.Range.Min), int(capability.Parameters.Range.Max), true
}

// chooseColor shows the color menu until a color is picked. An empty result
// means the device color must stay as it is.
func (c *cli) chooseColor(name string) (string, error) {
	menu := []prompt.Choice{
		{Label: "Interactive Color Picker", Value: colorMenuInteractive},
		{Label: "Choose from List", Value: colorMenuList},
		{Label: "Enter Hex Code", Value: colorMenuHex},
		{Label: "Exit", Value: colorMenuExit},
	}

	for {
		selection, ok, err := prompt.Select("How would you like to select a color?", menu)
		if err != nil {
			return "", err
		}
		if !ok || selection.Value == colorMenuExit {
			return "", nil
		}

		var hex string
		switch selection.Value {
		case colorMenuInteractive:
			hex, err = picker.Run(fmt.Sprintf("Choose a color for %s (esc to go back)", name))
		case colorMenuList:
			hex, err = c.chooseFromList(name)
		case colorMenuHex:
			hex, _, err = prompt.Input("Enter hex color (e.g. #FF0000) or leave empty to go back:", "#ff0000", validateHex)
		}
		if err != nil {
			return "", err
		}
		if hex != "" {
			return hex, nil
		}
	}
}

func (c *cli) chooseFromList(name string) (string, error) {
	var choices []prompt.Choice
	if current, ok := c.app.colors.CurrentColor(name); ok {
		choices = append(choices, prompt.Choice{
			Label: fmt.Sprintf("Current: %s %s", colorSwatch(current), current),
			Value: current,
		})
	}
	for _, favorite := range c.app.colors.FavoriteColors() {
		choices = append(choices, prompt.Choice{
			Label: fmt.Sprintf("%s %s (%s)", colorSwatch(favorite.Hex), favorite.Name, favorite.Hex),
			Value: favorite.Hex,
		})
	}
	choices = append(choices, prompt.Choice{Label: "Go Back", Value: colorMenuBack})

	choice, ok, err := prompt.Select(fmt.Sprintf("Choose a color for %s:", name), choices)
	if err != nil || !ok || choice.Value == colorMenuBack {
		return "", err
	}
	return choice.Value, nil
}

// validateNumber accepts integers in [minValue,maxValue]; an empty range
// (maxValue < minValue or both zero) only checks the number.
func validateNumber(minValue, maxValue int) func(string) error {
	return func(input string) error {
		n, err := strconv.Atoi(input)
		if err != nil {
			return errors.New("please enter a valid number")
		}
		if maxValue > minValue && (n < minValue || n > maxValue) {
			return fmt.Errorf("value must be between %d and %d", minValue, maxValue)
		}
		return nil
	}
}

// validateOptional lets an empty answer through so the placeholder applies.
func validateOptional(validate func(string) error) func(string) error {
	return func(input string) error {
		if input == "" {
			return nil
		}
		return validate(input)
	}
}

func validateHex(input string) error {
	if input == "" {
		return nil
	}
	if _, err := color.ParseHex(input); err != nil {
		return errors.New("please enter a valid hex color (e.g. #FF0000)")
	}
	return nil
}
