package docker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/yairfalse/driftscan/internal/collectors"
	"github.com/yairfalse/driftscan/internal/errors"
	"github.com/yairfalse/driftscan/pkg/types"
)

const (
	ProviderName = "docker"
)

// Collector reads the actual infrastructure from the local Docker daemon
// through the docker CLI: a listing pass per resource kind, then an inspect
// per resource for the fields the listing does not carry.
type Collector struct {
	runner     collectors.CommandRunner
	binary     string
	nameFilter string
}

// NewCollector creates a Docker collector. nameFilter narrows every listing
// to resources whose name matches, which keeps unrelated workloads on a
// shared daemon out of the comparison.
func NewCollector(runner collectors.CommandRunner, binary, nameFilter string) *Collector {
	if binary == "" {
		binary = "docker"
	}
	return &Collector{
		runner:     runner,
		binary:     binary,
		nameFilter: nameFilter,
	}
}

// Name returns the name of the collector
func (c *Collector) Name() string {
	return ProviderName
}

// Collect gathers containers, networks and volumes into an actual snapshot.
// Resources that vanish between listing and inspection are skipped; a failed
// listing fails the collection.
func (c *Collector) Collect(ctx context.Context) (*types.ResourceSnapshot, error) {
	snapshot := types.NewResourceSnapshot(types.SourceDocker)

	if err := c.collectContainers(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := c.collectNetworks(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := c.collectVolumes(ctx, snapshot); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// Status probes the docker binary for the status command
func (c *Collector) Status(ctx context.Context) error {
	if _, err := c.runner.Run(ctx, "", c.binary, "version"); err != nil {
		return errors.DockerStateError(err)
	}
	return nil
}

func (c *Collector) collectContainers(ctx context.Context, snapshot *types.ResourceSnapshot) error {
	args := c.withNameFilter("ps", "-a", "--format", "{{json .}}")
	out, err := c.runner.Run(ctx, "", c.binary, args...)
	if err != nil {
		return errors.DockerStateError(err)
	}

	for _, line := range splitLines(out) {
		var entry psLine
		if err := json.Unmarshal([]byte(line), &entry); err != nil || entry.Names == "" {
			continue
		}

		inspectOut, err := c.runner.Run(ctx, "", c.binary, "inspect", entry.Names)
		if err != nil {
			continue
		}
		var details []containerInspect
		if err := json.Unmarshal(inspectOut, &details); err != nil || len(details) == 0 {
			continue
		}

		snapshot.Containers[entry.Names] = containerFromInspect(entry.Names, details[0])
	}

	return nil
}

func (c *Collector) collectNetworks(ctx context.Context, snapshot *types.ResourceSnapshot) error {
	args := c.withNameFilter("network", "ls", "--format", "{{json .}}")
	out, err := c.runner.Run(ctx, "", c.binary, args...)
	if err != nil {
		return errors.DockerStateError(err)
	}

	for _, line := range splitLines(out) {
		var entry lsLine
		if err := json.Unmarshal([]byte(line), &entry); err != nil || entry.Name == "" {
			continue
		}

		inspectOut, err := c.runner.Run(ctx, "", c.binary, "network", "inspect", entry.Name)
		if err != nil {
			continue
		}
		var details []networkInspect
		if err := json.Unmarshal(inspectOut, &details); err != nil || len(details) == 0 {
			continue
		}

		doc := details[0]
		subnet := ""
		if len(doc.IPAM.Config) > 0 {
			subnet = doc.IPAM.Config[0].Subnet
		}
		snapshot.Networks[entry.Name] = types.Network{
			Name:       entry.Name,
			Driver:     doc.Driver,
			Subnet:     subnet,
			Scope:      doc.Scope,
			Containers: len(doc.Containers),
			Created:    doc.Created,
		}
	}

	return nil
}

func (c *Collector) collectVolumes(ctx context.Context, snapshot *types.ResourceSnapshot) error {
	args := c.withNameFilter("volume", "ls", "--format", "{{json .}}")
	out, err := c.runner.Run(ctx, "", c.binary, args...)
	if err != nil {
		return errors.DockerStateError(err)
	}

	for _, line := range splitLines(out) {
		var entry lsLine
		if err := json.Unmarshal([]byte(line), &entry); err != nil || entry.Name == "" {
			continue
		}

		inspectOut, err := c.runner.Run(ctx, "", c.binary, "volume", "inspect", entry.Name)
		if err != nil {
			continue
		}
		var details []volumeInspect
		if err := json.Unmarshal(inspectOut, &details); err != nil || len(details) == 0 {
			continue
		}

		doc := details[0]
		snapshot.Volumes[entry.Name] = types.Volume{
			Name:       entry.Name,
			Driver:     doc.Driver,
			Mountpoint: doc.Mountpoint,
			Created:    doc.CreatedAt,
		}
	}

	return nil
}

// withNameFilter appends the configured name filter to a listing command
func (c *Collector) withNameFilter(args ...string) []string {
	if c.nameFilter == "" {
		return args
	}
	return append(args, "--filter", "name="+c.nameFilter)
}

func splitLines(out []byte) []string {
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}
