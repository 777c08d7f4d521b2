package errors

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/viper"
)

// DisplayError formats and displays a DriftscanError with enhanced formatting
func DisplayError(err error) {
	noColor := os.Getenv("NO_COLOR") != "" || os.Getenv("DRIFTSCAN_NO_COLOR") != ""

	// Also check viper configuration (set by --no-color flag)
	if viperNoColor := getViperBool("output.no_color"); viperNoColor {
		noColor = true
	}

	color.NoColor = noColor

	dsErr, ok := err.(*DriftscanError)
	if !ok {
		color.Red("Error: %v", err)
		return
	}

	colorFunc := getErrorStyle(dsErr.Type)

	fmt.Fprintf(os.Stderr, "\n%s\n", colorFunc(dsErr.Message))

	if dsErr.Cause != "" {
		fmt.Fprintf(os.Stderr, "   %s %s\n", color.YellowString("Cause:"), color.HiBlackString(dsErr.Cause))
	}

	if dsErr.Environment != "" {
		fmt.Fprintf(os.Stderr, "   %s %s\n", color.CyanString("Environment:"), color.HiBlackString(dsErr.Environment))
	}

	if len(dsErr.Solutions) > 0 {
		fmt.Fprintf(os.Stderr, "\n   %s\n", color.GreenString("Solutions:"))
		for i, solution := range dsErr.Solutions {
			fmt.Fprintf(os.Stderr, "   %s %s\n", color.HiBlackString(fmt.Sprintf("%d.", i+1)), solution)
		}
	}

	if dsErr.Verify != "" {
		fmt.Fprintf(os.Stderr, "\n   %s %s\n", color.BlueString("Verify:"), color.HiWhiteString(dsErr.Verify))
	}

	if dsErr.Help != "" {
		fmt.Fprintf(os.Stderr, "   %s %s\n", color.MagentaString("Help:"), color.HiWhiteString(dsErr.Help))
	}

	fmt.Fprintln(os.Stderr)
}

// getErrorStyle returns the appropriate color function for an error type
func getErrorStyle(errType ErrorType) func(format string, a ...interface{}) string {
	switch errType {
	case ErrorTypeConfiguration:
		return color.YellowString
	case ErrorTypeCollector:
		return color.CyanString
	case ErrorTypeStorage:
		return color.MagentaString
	case ErrorTypeNotification:
		return color.RedString
	case ErrorTypeValidation:
		return color.YellowString
	default:
		return color.RedString
	}
}

// DisplayWarning shows a warning message with appropriate formatting
func DisplayWarning(message string) {
	noColor := os.Getenv("NO_COLOR") != "" || os.Getenv("DRIFTSCAN_NO_COLOR") != ""
	color.NoColor = noColor

	fmt.Fprintf(os.Stderr, "Warning: %s\n", color.YellowString(message))
}

// getViperBool safely gets a boolean value from viper
func getViperBool(key string) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return false
}
