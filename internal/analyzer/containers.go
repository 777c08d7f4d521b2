package analyzer

import (
	"fmt"
	"strings"

	"github.com/yairfalse/driftscan/pkg/types"
)

// analyzeContainers applies the container check sequence to every expected
// container, then flags actual containers nobody declared.
func (a *Analyzer) analyzeContainers(expected, actual map[string]types.Container) []types.Finding {
	var findings []types.Finding

	for _, name := range sortedContainerNames(expected) {
		if name == "" {
			findings = append(findings, malformedFinding("container", "expected"))
			continue
		}
		expectedContainer := expected[name]

		actualContainer, found := actual[name]
		if !found {
			findings = append(findings, types.Finding{
				Type:     types.DriftMissingContainer,
				Severity: types.SeverityHigh,
				Resource: name,
				Message:  fmt.Sprintf("Expected container %s not found", name),
				Expected: expectedContainer,
				Actual:   nil,
			})
			continue
		}

		if expectedContainer.Status == types.StatusRunning && !actualContainer.Running {
			findings = append(findings, types.Finding{
				Type:     types.DriftContainerStatus,
				Severity: types.SeverityHigh,
				Resource: name,
				Message:  fmt.Sprintf("Container %s is not running", name),
				Expected: string(types.StatusRunning),
				Actual:   observedStatus(actualContainer.Status),
			})
		}

		// The tag-stripped expected repository only has to appear inside the
		// actual one. The asymmetry is intentional: locally built images often
		// carry registry prefixes the plan does not know about.
		expectedRepo := imageRepository(expectedContainer.Image)
		actualRepo := imageRepository(actualContainer.Image)
		if expectedRepo != "" && actualRepo != "" && !strings.Contains(actualRepo, expectedRepo) {
			findings = append(findings, types.Finding{
				Type:     types.DriftImage,
				Severity: types.SeverityMedium,
				Resource: name,
				Message:  fmt.Sprintf("Container %s has image drift", name),
				Expected: expectedContainer.Image,
				Actual:   actualContainer.Image,
			})
		}

		// Published ports are compared by count only.
		if len(expectedContainer.Ports) != len(actualContainer.Ports) {
			findings = append(findings, types.Finding{
				Type:     types.DriftPortCount,
				Severity: types.SeverityMedium,
				Resource: name,
				Message:  fmt.Sprintf("Container %s has port count mismatch", name),
				Expected: len(expectedContainer.Ports),
				Actual:   len(actualContainer.Ports),
			})
		}

		if expectedContainer.RestartPolicy != "" && expectedContainer.RestartPolicy != actualContainer.RestartPolicy {
			findings = append(findings, types.Finding{
				Type:     types.DriftRestartPolicy,
				Severity: types.SeverityLow,
				Resource: name,
				Message:  fmt.Sprintf("Container %s has restart policy drift", name),
				Expected: expectedContainer.RestartPolicy,
				Actual:   actualContainer.RestartPolicy,
			})
		}

		health := actualContainer.Health
		if health == "" {
			health = types.HealthNone
		}
		if actualContainer.Running && !health.Healthy() {
			findings = append(findings, types.Finding{
				Type:     types.DriftHealth,
				Severity: types.SeverityHigh,
				Resource: name,
				Message:  fmt.Sprintf("Container %s is unhealthy", name),
				Expected: string(types.HealthHealthy),
				Actual:   string(health),
			})
		}
	}

	for _, name := range sortedContainerNames(actual) {
		if name == "" {
			findings = append(findings, malformedFinding("container", "actual"))
			continue
		}
		if _, declared := expected[name]; !declared {
			findings = append(findings, types.Finding{
				Type:     types.DriftUnexpectedContainer,
				Severity: types.SeverityMedium,
				Resource: name,
				Message:  fmt.Sprintf("Unexpected container %s found", name),
				Expected: nil,
				Actual:   actual[name],
			})
		}
	}

	return findings
}

// imageRepository strips the tag (or digest) portion of an image reference:
// everything from the first colon on. References to registries with ports
// lose more than the tag; that quirk is part of the comparison contract.
func imageRepository(ref string) string {
	if i := strings.Index(ref, ":"); i >= 0 {
		return ref[:i]
	}
	return ref
}

// observedStatus reports the runtime status string, or "unknown" when the
// runtime did not provide one.
func observedStatus(status types.RunStatus) string {
	if status == "" {
		return string(types.StatusUnknown)
	}
	return string(status)
}
