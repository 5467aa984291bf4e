package printer

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorState manages global color output settings for the printer
type ColorState struct {
	enabled bool
}

var globalColorState = &ColorState{}

// InitColorState initializes color support based on configuration and environment.
// Priority order (highest to lowest):
//  1. Explicit user setting (--color flag)
//  2. NO_COLOR environment variable
//  3. TTY detection
//  4. Disabled for any other writer
func InitColorState(explicitSetting *bool, writer io.Writer) {
	if explicitSetting != nil {
		setColor(*explicitSetting)
		return
	}

	if os.Getenv("NO_COLOR") != "" {
		setColor(false)
		return
	}

	if f, ok := writer.(*os.File); ok {
		setColor(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
		return
	}

	setColor(false)
}

func setColor(enabled bool) {
	color.NoColor = !enabled
	globalColorState.enabled = enabled
}

// IsColorEnabled returns whether color output is currently enabled.
func IsColorEnabled() bool {
	return globalColorState.enabled
}
