package docker

import (
	"sort"
	"strconv"
	"strings"

	"github.com/yairfalse/driftscan/pkg/types"
)

// psLine is one line of docker ps --format {{json .}}
type psLine struct {
	Names string `json:"Names"`
}

// lsLine is one line of docker network/volume ls --format {{json .}}
type lsLine struct {
	Name string `json:"Name"`
}

// containerInspect is the slice of a docker inspect document the
// comparison needs
type containerInspect struct {
	Created string `json:"Created"`
	State   struct {
		Status  string `json:"Status"`
		Running bool   `json:"Running"`
		Health  *struct {
			Status string `json:"Status"`
		} `json:"Health"`
	} `json:"State"`
	Config struct {
		Image string   `json:"Image"`
		Env   []string `json:"Env"`
	} `json:"Config"`
	HostConfig struct {
		PortBindings  map[string][]portBinding `json:"PortBindings"`
		RestartPolicy struct {
			Name string `json:"Name"`
		} `json:"RestartPolicy"`
	} `json:"HostConfig"`
	NetworkSettings struct {
		Networks map[string]networkEndpoint `json:"Networks"`
	} `json:"NetworkSettings"`
}

type portBinding struct {
	HostIP   string `json:"HostIp"`
	HostPort string `json:"HostPort"`
}

// networkEndpoint carries nothing: only the attachment names matter
type networkEndpoint struct{}

// networkInspect is the slice of a docker network inspect document the
// comparison needs
type networkInspect struct {
	Name    string `json:"Name"`
	Driver  string `json:"Driver"`
	Scope   string `json:"Scope"`
	Created string `json:"Created"`
	IPAM    struct {
		Config []struct {
			Subnet string `json:"Subnet"`
		} `json:"Config"`
	} `json:"IPAM"`
	Containers map[string]networkEndpoint `json:"Containers"`
}

// volumeInspect is the slice of a docker volume inspect document the
// comparison needs
type volumeInspect struct {
	Name       string `json:"Name"`
	Driver     string `json:"Driver"`
	Mountpoint string `json:"Mountpoint"`
	CreatedAt  string `json:"CreatedAt"`
}

// containerFromInspect maps an inspect document to a descriptor
func containerFromInspect(name string, doc containerInspect) types.Container {
	health := types.HealthNone
	if doc.State.Health != nil {
		health = types.ParseHealthStatus(doc.State.Health.Status)
	}

	return types.Container{
		Name:          name,
		Image:         doc.Config.Image,
		Status:        types.ParseRunStatus(doc.State.Status),
		Running:       doc.State.Running,
		Ports:         portMappings(doc.HostConfig.PortBindings),
		Env:           doc.Config.Env,
		Networks:      networkNames(doc.NetworkSettings.Networks),
		RestartPolicy: doc.HostConfig.RestartPolicy.Name,
		Health:        health,
		Created:       doc.Created,
	}
}

// portMappings flattens HostConfig.PortBindings into published ports, keys
// in sorted order so snapshots stay deterministic.
func portMappings(bindings map[string][]portBinding) []types.PortMapping {
	specs := make([]string, 0, len(bindings))
	for spec := range bindings {
		specs = append(specs, spec)
	}
	sort.Strings(specs)

	ports := make([]types.PortMapping, 0, len(bindings))
	for _, spec := range specs {
		internal, protocol := splitPortSpec(spec)
		for _, binding := range bindings[spec] {
			external, _ := strconv.Atoi(binding.HostPort)
			ip := binding.HostIP
			if ip == "" {
				ip = "0.0.0.0"
			}
			ports = append(ports, types.PortMapping{
				Internal: internal,
				External: external,
				Protocol: protocol,
				IP:       ip,
			})
		}
	}

	return ports
}

// splitPortSpec splits a binding key like 8080/tcp into port and protocol
func splitPortSpec(spec string) (int, string) {
	port := spec
	protocol := "tcp"
	if i := strings.Index(spec, "/"); i >= 0 {
		port = spec[:i]
		if i+1 < len(spec) {
			protocol = spec[i+1:]
		}
	}
	n, _ := strconv.Atoi(port)
	return n, protocol
}

func networkNames(networks map[string]networkEndpoint) []string {
	names := make([]string, 0, len(networks))
	for name := range networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
