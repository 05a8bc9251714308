package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

const swatch = "████████"

var (
	redTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnTextStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	greenTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	blueTextStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	boldTextStyle  = lipgloss.NewStyle().Bold(true)
)

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, greenTextStyle.Render(fmt.Sprintf(format, args...)))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warnTextStyle.Render(fmt.Sprintf(format, args...)))
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, redTextStyle.Render("Error: "+err.Error()))
}

func printTitle(w io.Writer, title string) {
	fmt.Fprintln(w, boldTextStyle.Render(title))
}

func printItem(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s %s\n", blueTextStyle.Render("-"), fmt.Sprintf(format, args...))
}

// colorSwatch renders a block in the given "#rrggbb" color.
func colorSwatch(hex string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(swatch)
}
