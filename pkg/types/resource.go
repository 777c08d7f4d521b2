package types

import "strings"

// RunStatus represents a container lifecycle state. Expected snapshots carry
// the desired state (running or created); actual snapshots carry the state
// observed at the runtime.
type RunStatus string

const (
	// StatusRunning indicates a container that is (or must be) running
	StatusRunning RunStatus = "running"
	// StatusCreated indicates a container that exists but was never started
	StatusCreated RunStatus = "created"
	// StatusRestarting indicates a container in a restart loop
	StatusRestarting RunStatus = "restarting"
	// StatusPaused indicates a paused container
	StatusPaused RunStatus = "paused"
	// StatusExited indicates a stopped container
	StatusExited RunStatus = "exited"
	// StatusDead indicates a container the runtime could not stop cleanly
	StatusDead RunStatus = "dead"
	// StatusUnknown indicates a state the runtime did not report
	StatusUnknown RunStatus = "unknown"
)

// ParseRunStatus decodes a runtime state string into a RunStatus. States
// outside the taxonomy map to StatusUnknown.
func ParseRunStatus(s string) RunStatus {
	switch RunStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusRunning:
		return StatusRunning
	case StatusCreated:
		return StatusCreated
	case StatusRestarting:
		return StatusRestarting
	case StatusPaused:
		return StatusPaused
	case StatusExited:
		return StatusExited
	case StatusDead:
		return StatusDead
	default:
		return StatusUnknown
	}
}

// String returns the string representation of RunStatus
func (rs RunStatus) String() string {
	return string(rs)
}

// HealthStatus represents the health-check state of a container.
type HealthStatus string

const (
	// HealthHealthy indicates a passing health check
	HealthHealthy HealthStatus = "healthy"
	// HealthUnhealthy indicates a failing health check
	HealthUnhealthy HealthStatus = "unhealthy"
	// HealthStarting indicates a health check still in its start period
	HealthStarting HealthStatus = "starting"
	// HealthNone indicates the container defines no health check
	HealthNone HealthStatus = "none"
)

// ParseHealthStatus decodes a runtime health string into a HealthStatus.
// Empty or unrecognized input means no health check was reported.
func ParseHealthStatus(s string) HealthStatus {
	switch HealthStatus(strings.ToLower(strings.TrimSpace(s))) {
	case HealthHealthy:
		return HealthHealthy
	case HealthUnhealthy:
		return HealthUnhealthy
	case HealthStarting:
		return HealthStarting
	default:
		return HealthNone
	}
}

// Healthy reports whether the status is acceptable for a running container.
// The absence of a health check is not drift.
func (hs HealthStatus) Healthy() bool {
	return hs == HealthHealthy || hs == HealthNone
}

// String returns the string representation of HealthStatus
func (hs HealthStatus) String() string {
	return string(hs)
}

// PortMapping represents a single published container port
type PortMapping struct {
	Internal int    `json:"internal"`
	External int    `json:"external"`
	Protocol string `json:"protocol,omitempty"`
	IP       string `json:"ip,omitempty"`
}

// Container describes one container on either side of a comparison. Expected
// descriptors leave the observation-only fields (Running, Health, Created) at
// their zero values; an empty optional field means no constraint is declared.
type Container struct {
	Name          string        `json:"name"`
	Image         string        `json:"image"`
	Status        RunStatus     `json:"status"`
	Running       bool          `json:"running"`
	Ports         []PortMapping `json:"ports"`
	Env           []string      `json:"env,omitempty"`
	Networks      []string      `json:"networks,omitempty"`
	RestartPolicy string        `json:"restart_policy,omitempty"`
	Health        HealthStatus  `json:"health_status,omitempty"`
	Created       string        `json:"created,omitempty"`
}

// Network describes one container network. Subnet is empty when the expected
// side declares no IPAM constraint.
type Network struct {
	Name       string `json:"name"`
	Driver     string `json:"driver"`
	Subnet     string `json:"subnet,omitempty"`
	Scope      string `json:"scope,omitempty"`
	Containers int    `json:"containers,omitempty"`
	Created    string `json:"created,omitempty"`
}

// Volume describes one named volume.
type Volume struct {
	Name       string `json:"name"`
	Driver     string `json:"driver"`
	Mountpoint string `json:"mountpoint,omitempty"`
	Created    string `json:"created,omitempty"`
}

// Image describes one managed image. Images are recorded in snapshots for
// reference but are not part of the drift comparison.
type Image struct {
	Name       string `json:"name"`
	RepoDigest string `json:"repo_digest,omitempty"`
	ImageID    string `json:"image_id,omitempty"`
}
