package types

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Snapshot sources.
const (
	SourceTerraform = "terraform"
	SourceDocker    = "docker"
)

// ResourceSnapshot represents a point-in-time capture of one side of the
// infrastructure: the expected state declared in Terraform, or the actual
// state observed from the Docker runtime. Partitions are keyed by resource
// name. A snapshot is treated as immutable once captured.
type ResourceSnapshot struct {
	ID          string               `json:"id"`
	Source      string               `json:"source"`
	CollectedAt time.Time            `json:"collected_at"`
	Containers  map[string]Container `json:"containers"`
	Networks    map[string]Network   `json:"networks"`
	Volumes     map[string]Volume    `json:"volumes"`
	Images      map[string]Image     `json:"images"`
}

// NewResourceSnapshot creates an empty snapshot for the given source with all
// partitions initialized.
func NewResourceSnapshot(source string) *ResourceSnapshot {
	return &ResourceSnapshot{
		ID:          uuid.NewString(),
		Source:      source,
		CollectedAt: time.Now().UTC(),
		Containers:  make(map[string]Container),
		Networks:    make(map[string]Network),
		Volumes:     make(map[string]Volume),
		Images:      make(map[string]Image),
	}
}

// Validate checks if the snapshot has all required fields
func (s *ResourceSnapshot) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("snapshot ID is required")
	}
	if strings.TrimSpace(s.Source) == "" {
		return errors.New("snapshot source is required")
	}
	if s.CollectedAt.IsZero() {
		return errors.New("snapshot collection time is required")
	}
	return nil
}

// ContainerCount returns the number of containers in the snapshot
func (s *ResourceSnapshot) ContainerCount() int {
	return len(s.Containers)
}

// RunningContainerCount returns the number of containers observed running
func (s *ResourceSnapshot) RunningContainerCount() int {
	count := 0
	for _, c := range s.Containers {
		if c.Running {
			count++
		}
	}
	return count
}

// NetworkCount returns the number of networks in the snapshot
func (s *ResourceSnapshot) NetworkCount() int {
	return len(s.Networks)
}

// VolumeCount returns the number of volumes in the snapshot
func (s *ResourceSnapshot) VolumeCount() int {
	return len(s.Volumes)
}

// ImageCount returns the number of images in the snapshot
func (s *ResourceSnapshot) ImageCount() int {
	return len(s.Images)
}

// ResourceCount returns the total number of resources across all partitions
func (s *ResourceSnapshot) ResourceCount() int {
	return len(s.Containers) + len(s.Networks) + len(s.Volumes) + len(s.Images)
}

// Clone creates a deep copy of the snapshot
func (s *ResourceSnapshot) Clone() *ResourceSnapshot {
	clone := &ResourceSnapshot{
		ID:          s.ID,
		Source:      s.Source,
		CollectedAt: s.CollectedAt,
	}

	if s.Containers != nil {
		clone.Containers = make(map[string]Container, len(s.Containers))
		for name, c := range s.Containers {
			cc := c
			cc.Ports = append([]PortMapping(nil), c.Ports...)
			cc.Env = append([]string(nil), c.Env...)
			cc.Networks = append([]string(nil), c.Networks...)
			clone.Containers[name] = cc
		}
	}
	if s.Networks != nil {
		clone.Networks = make(map[string]Network, len(s.Networks))
		for name, n := range s.Networks {
			clone.Networks[name] = n
		}
	}
	if s.Volumes != nil {
		clone.Volumes = make(map[string]Volume, len(s.Volumes))
		for name, v := range s.Volumes {
			clone.Volumes[name] = v
		}
	}
	if s.Images != nil {
		clone.Images = make(map[string]Image, len(s.Images))
		for name, img := range s.Images {
			clone.Images[name] = img
		}
	}

	return clone
}

// String returns a string representation of the snapshot
func (s *ResourceSnapshot) String() string {
	return s.Source + " snapshot " + s.ID + " (" + s.CollectedAt.Format(time.RFC3339) + ")"
}
