package types

import (
	"testing"
)

func TestParseRunStatus(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  RunStatus
	}{
		{name: "running", input: "running", want: StatusRunning},
		{name: "created", input: "created", want: StatusCreated},
		{name: "exited", input: "exited", want: StatusExited},
		{name: "restarting", input: "restarting", want: StatusRestarting},
		{name: "paused", input: "paused", want: StatusPaused},
		{name: "dead", input: "dead", want: StatusDead},
		{name: "mixed case", input: "Running", want: StatusRunning},
		{name: "padded", input: " exited ", want: StatusExited},
		{name: "empty", input: "", want: StatusUnknown},
		{name: "unrecognized", input: "removing", want: StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseRunStatus(tt.input); got != tt.want {
				t.Errorf("ParseRunStatus(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseHealthStatus(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  HealthStatus
	}{
		{name: "healthy", input: "healthy", want: HealthHealthy},
		{name: "unhealthy", input: "unhealthy", want: HealthUnhealthy},
		{name: "starting", input: "starting", want: HealthStarting},
		{name: "none", input: "none", want: HealthNone},
		{name: "empty defaults to none", input: "", want: HealthNone},
		{name: "unrecognized defaults to none", input: "bogus", want: HealthNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseHealthStatus(tt.input); got != tt.want {
				t.Errorf("ParseHealthStatus(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestHealthStatus_Healthy(t *testing.T) {
	tests := []struct {
		status HealthStatus
		want   bool
	}{
		{HealthHealthy, true},
		{HealthNone, true},
		{HealthUnhealthy, false},
		{HealthStarting, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Healthy(); got != tt.want {
				t.Errorf("%s.Healthy() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}
