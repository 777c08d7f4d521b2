package terraform

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yairfalse/driftscan/internal/collectors"
	"github.com/yairfalse/driftscan/internal/errors"
	"github.com/yairfalse/driftscan/pkg/types"
)

const (
	ProviderName = "terraform"
)

// Collector reads the expected infrastructure from a Terraform working
// directory. The state is the declaration of record: what it names is what
// the runtime is compared against.
type Collector struct {
	runner collectors.CommandRunner
	binary string
	dir    string
}

// NewCollector creates a Terraform collector that runs binary inside dir
func NewCollector(runner collectors.CommandRunner, binary, dir string) *Collector {
	if binary == "" {
		binary = "terraform"
	}
	return &Collector{
		runner: runner,
		binary: binary,
		dir:    dir,
	}
}

// Name returns the name of the collector
func (c *Collector) Name() string {
	return ProviderName
}

// Collect runs terraform show -json in the configured directory and folds
// the docker resources from the state into an expected snapshot.
func (c *Collector) Collect(ctx context.Context) (*types.ResourceSnapshot, error) {
	out, err := c.runner.Run(ctx, c.dir, c.binary, "show", "-json")
	if err != nil {
		return nil, errors.TerraformStateError(c.dir, err)
	}

	var state ShowOutput
	if err := json.Unmarshal(out, &state); err != nil {
		return nil, errors.TerraformDecodeError(err)
	}

	snapshot := types.NewResourceSnapshot(types.SourceTerraform)

	// An empty state renders as a bare format_version document.
	if state.Values == nil || state.Values.RootModule == nil {
		return snapshot, nil
	}

	for _, resource := range state.Values.RootModule.Resources {
		if err := addResource(snapshot, resource); err != nil {
			return nil, errors.TerraformDecodeError(err)
		}
	}

	return snapshot, nil
}

// Status probes the terraform binary for the status command
func (c *Collector) Status(ctx context.Context) error {
	if _, err := c.runner.Run(ctx, c.dir, c.binary, "version"); err != nil {
		return errors.TerraformStateError(c.dir, err)
	}
	return nil
}

// addResource folds one state resource into the snapshot. Unknown resource
// types are ignored; entries without a name never reach the partitions.
func addResource(snapshot *types.ResourceSnapshot, resource StateResource) error {
	switch resource.Type {
	case "docker_container":
		var values containerValues
		if err := json.Unmarshal(resource.Values, &values); err != nil {
			return fmt.Errorf("decode %s: %w", resource.Address, err)
		}
		if values.Name == "" {
			return nil
		}
		snapshot.Containers[values.Name] = containerFromValues(values)

	case "docker_network":
		var values networkValues
		if err := json.Unmarshal(resource.Values, &values); err != nil {
			return fmt.Errorf("decode %s: %w", resource.Address, err)
		}
		if values.Name == "" {
			return nil
		}
		subnet := ""
		if len(values.IPAMConfig) > 0 {
			subnet = values.IPAMConfig[0].Subnet
		}
		snapshot.Networks[values.Name] = types.Network{
			Name:   values.Name,
			Driver: values.Driver,
			Subnet: subnet,
		}

	case "docker_volume":
		var values volumeValues
		if err := json.Unmarshal(resource.Values, &values); err != nil {
			return fmt.Errorf("decode %s: %w", resource.Address, err)
		}
		if values.Name == "" {
			return nil
		}
		snapshot.Volumes[values.Name] = types.Volume{
			Name:   values.Name,
			Driver: values.Driver,
		}

	case "docker_image":
		var values imageValues
		if err := json.Unmarshal(resource.Values, &values); err != nil {
			return fmt.Errorf("decode %s: %w", resource.Address, err)
		}
		if values.Name == "" {
			return nil
		}
		snapshot.Images[values.Name] = types.Image{
			Name:       values.Name,
			RepoDigest: values.RepoDigest,
			ImageID:    values.ImageID,
		}
	}

	return nil
}

// containerFromValues maps a docker_container state entry to a descriptor.
// Fields the state does not declare stay empty, which suppresses the
// corresponding checks downstream.
func containerFromValues(values containerValues) types.Container {
	status := types.StatusCreated
	if values.MustRun {
		status = types.StatusRunning
	}

	ports := make([]types.PortMapping, 0, len(values.Ports))
	for _, p := range values.Ports {
		ports = append(ports, types.PortMapping{
			Internal: p.Internal,
			External: p.External,
			Protocol: p.Protocol,
			IP:       p.IP,
		})
	}

	networks := make([]string, 0, len(values.NetworksAdvanced))
	for _, n := range values.NetworksAdvanced {
		networks = append(networks, n.Name)
	}

	return types.Container{
		Name:          values.Name,
		Image:         stripDigest(values.Image),
		Status:        status,
		Ports:         ports,
		Env:           values.Env,
		Networks:      networks,
		RestartPolicy: values.Restart,
	}
}

// stripDigest drops a sha256 marker and everything after it. Containers
// pinned to a docker_image output carry the image id, not a pullable
// reference, and ids never match what the runtime reports.
func stripDigest(image string) string {
	if i := strings.Index(image, "sha256:"); i >= 0 {
		return image[:i]
	}
	return image
}
