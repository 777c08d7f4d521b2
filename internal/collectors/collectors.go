package collectors

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/yairfalse/driftscan/pkg/types"
)

// Collector gathers one side of the comparison from an external system
type Collector interface {
	// Name returns the collector's source name
	Name() string

	// Collect gathers the resource snapshot for this source
	Collect(ctx context.Context) (*types.ResourceSnapshot, error)

	// Status probes whether the collector's backing tool is usable
	Status(ctx context.Context) error
}

// CommandRunner executes an external binary and returns its stdout. The
// exec-backed implementation is the only one outside tests.
type CommandRunner interface {
	Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands through os/exec
type ExecRunner struct{}

// NewExecRunner creates a runner backed by the local process table
func NewExecRunner() ExecRunner {
	return ExecRunner{}
}

// Run executes the command in dir (empty dir means the current directory)
// and returns stdout. A non-zero exit folds stderr into the error.
func (ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return stdout.Bytes(), nil
}
