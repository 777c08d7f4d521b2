package errors

import (
	"fmt"
	"os"
	"strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeConfiguration ErrorType = "Configuration"
	ErrorTypeCollector     ErrorType = "Collector"
	ErrorTypeStorage       ErrorType = "Storage"
	ErrorTypeNotification  ErrorType = "Notification"
	ErrorTypeValidation    ErrorType = "Validation"
)

// Provider represents an infrastructure state source
type Provider string

const (
	ProviderTerraform Provider = "Terraform"
	ProviderDocker    Provider = "Docker"
	ProviderNone      Provider = "None"
)

// Process exit codes. Drift is not an error: the check command maps a
// drift-detected run to ExitDrift itself.
const (
	ExitClean = 0
	ExitDrift = 1
	ExitError = 2
)

// DriftscanError represents a user-facing error with actionable guidance
type DriftscanError struct {
	Type        ErrorType
	Provider    Provider
	Message     string
	Cause       string
	Solutions   []string
	Verify      string
	Help        string
	Environment string
}

// Error implements the error interface
func (e *DriftscanError) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("\nError: %s\n", e.Message))

	if e.Cause != "" {
		sb.WriteString(fmt.Sprintf("Cause: %s\n", e.Cause))
	}

	if e.Environment != "" {
		sb.WriteString(fmt.Sprintf("Environment: %s\n", e.Environment))
	}

	if len(e.Solutions) > 0 {
		sb.WriteString("\nSolutions:\n")
		for _, solution := range e.Solutions {
			sb.WriteString(fmt.Sprintf("  %s\n", solution))
		}
	}

	if e.Verify != "" {
		sb.WriteString(fmt.Sprintf("\nVerify: %s\n", e.Verify))
	}

	if e.Help != "" {
		sb.WriteString(fmt.Sprintf("Help: %s\n", e.Help))
	}

	return sb.String()
}

// Format implements fmt.Formatter for custom formatting
func (e *DriftscanError) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		fmt.Fprintf(f, "%s", e.Error())
	case 'v':
		if f.Flag('+') {
			fmt.Fprintf(f, "[%s/%s] %s", e.Type, e.Provider, e.Error())
		} else {
			fmt.Fprintf(f, "%s", e.Error())
		}
	}
}

// New creates a new DriftscanError
func New(errType ErrorType, provider Provider, message string) *DriftscanError {
	return &DriftscanError{
		Type:        errType,
		Provider:    provider,
		Message:     message,
		Environment: detectEnvironment(),
	}
}

// WithCause adds cause information
func (e *DriftscanError) WithCause(cause string) *DriftscanError {
	e.Cause = cause
	return e
}

// WithSolutions adds solution steps
func (e *DriftscanError) WithSolutions(solutions ...string) *DriftscanError {
	e.Solutions = append(e.Solutions, solutions...)
	return e
}

// WithVerify adds a verification command
func (e *DriftscanError) WithVerify(verify string) *DriftscanError {
	e.Verify = verify
	return e
}

// WithHelp adds a help command
func (e *DriftscanError) WithHelp(help string) *DriftscanError {
	e.Help = help
	return e
}

// detectEnvironment detects the current execution environment
func detectEnvironment() string {
	ciVars := []string{"CI", "CONTINUOUS_INTEGRATION", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_HOME"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return "CI/CD detected"
		}
	}

	if _, err := os.Stat("/.dockerenv"); err == nil {
		return "Container environment detected"
	}

	return "Development workstation detected"
}

// IsUserError checks if the error carries user-facing guidance
func IsUserError(err error) bool {
	_, ok := err.(*DriftscanError)
	return ok
}

// GetExitCode maps an error to the process exit code. Every operational
// failure exits with the same code so automation can tell it apart from a
// drift result.
func GetExitCode(err error) int {
	if err == nil {
		return ExitClean
	}
	return ExitError
}
