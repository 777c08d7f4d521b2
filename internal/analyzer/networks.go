package analyzer

import (
	"fmt"

	"github.com/yairfalse/driftscan/pkg/types"
)

// analyzeNetworks checks every expected network for presence, driver and
// subnet, then flags actual networks nobody declared. Empty expected driver
// or subnet means no constraint was declared and suppresses that check.
func (a *Analyzer) analyzeNetworks(expected, actual map[string]types.Network) []types.Finding {
	var findings []types.Finding

	for _, name := range sortedNetworkNames(expected) {
		if name == "" {
			findings = append(findings, malformedFinding("network", "expected"))
			continue
		}
		expectedNetwork := expected[name]

		actualNetwork, found := actual[name]
		if !found {
			findings = append(findings, types.Finding{
				Type:     types.DriftMissingNetwork,
				Severity: types.SeverityHigh,
				Resource: name,
				Message:  fmt.Sprintf("Expected network %s not found", name),
				Expected: expectedNetwork,
				Actual:   nil,
			})
			continue
		}

		if expectedNetwork.Driver != "" && expectedNetwork.Driver != actualNetwork.Driver {
			findings = append(findings, types.Finding{
				Type:     types.DriftNetworkDriver,
				Severity: types.SeverityMedium,
				Resource: name,
				Message:  fmt.Sprintf("Network %s has driver mismatch", name),
				Expected: expectedNetwork.Driver,
				Actual:   actualNetwork.Driver,
			})
		}

		if expectedNetwork.Subnet != "" && expectedNetwork.Subnet != actualNetwork.Subnet {
			findings = append(findings, types.Finding{
				Type:     types.DriftNetworkSubnet,
				Severity: types.SeverityMedium,
				Resource: name,
				Message:  fmt.Sprintf("Network %s has subnet mismatch", name),
				Expected: expectedNetwork.Subnet,
				Actual:   actualNetwork.Subnet,
			})
		}
	}

	for _, name := range sortedNetworkNames(actual) {
		if name == "" {
			findings = append(findings, malformedFinding("network", "actual"))
			continue
		}
		if _, declared := expected[name]; !declared {
			findings = append(findings, types.Finding{
				Type:     types.DriftUnexpectedNetwork,
				Severity: types.SeverityLow,
				Resource: name,
				Message:  fmt.Sprintf("Unexpected network %s found", name),
				Expected: nil,
				Actual:   actual[name],
			})
		}
	}

	return findings
}
