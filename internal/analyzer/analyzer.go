package analyzer

import (
	"sort"

	"github.com/yairfalse/driftscan/pkg/types"
)

// Analyzer compares an expected snapshot against an actual snapshot and
// produces drift findings. It is pure: no I/O, no clock, no logging, and it
// never fails. Instances are stateless and safe for concurrent use.
type Analyzer struct{}

// New creates a new Analyzer
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze runs the full comparison and returns whether drift was detected
// together with the findings that justify it. Findings are emitted in
// detection order: containers, then networks, then volumes; within each kind
// the expected-driven pass runs before the unexpected-resource pass, and
// resources are visited in name order so results are deterministic.
//
// Both snapshots are required; if either side is nil there is nothing to
// compare and no drift is reported. Images are recorded in snapshots but
// deliberately not compared.
func (a *Analyzer) Analyze(expected, actual *types.ResourceSnapshot) (bool, []types.Finding) {
	if expected == nil || actual == nil {
		return false, nil
	}

	var findings []types.Finding
	findings = append(findings, a.analyzeContainers(expected.Containers, actual.Containers)...)
	findings = append(findings, a.analyzeNetworks(expected.Networks, actual.Networks)...)
	findings = append(findings, a.analyzeVolumes(expected.Volumes, actual.Volumes)...)

	return len(findings) > 0, findings
}

// sortedContainerNames returns the map keys in lexical order
func sortedContainerNames(m map[string]types.Container) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedNetworkNames(m map[string]types.Network) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedVolumeNames(m map[string]types.Volume) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// malformedFinding records an entry that cannot be analyzed because it has no
// name. The entry is skipped; analysis continues with the rest.
func malformedFinding(kind, side string) types.Finding {
	return types.Finding{
		Type:     types.DriftMalformedResource,
		Severity: types.SeverityLow,
		Resource: "",
		Message:  "Skipped " + side + " " + kind + " entry with empty name",
	}
}
