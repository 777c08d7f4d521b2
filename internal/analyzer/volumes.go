package analyzer

import (
	"fmt"

	"github.com/yairfalse/driftscan/pkg/types"
)

// analyzeVolumes checks every expected volume for presence and driver, then
// flags actual volumes nobody declared. A missing volume is medium severity:
// the data may still exist on disk even when the runtime forgot the volume.
func (a *Analyzer) analyzeVolumes(expected, actual map[string]types.Volume) []types.Finding {
	var findings []types.Finding

	for _, name := range sortedVolumeNames(expected) {
		if name == "" {
			findings = append(findings, malformedFinding("volume", "expected"))
			continue
		}
		expectedVolume := expected[name]

		actualVolume, found := actual[name]
		if !found {
			findings = append(findings, types.Finding{
				Type:     types.DriftMissingVolume,
				Severity: types.SeverityMedium,
				Resource: name,
				Message:  fmt.Sprintf("Expected volume %s not found", name),
				Expected: expectedVolume,
				Actual:   nil,
			})
			continue
		}

		if expectedVolume.Driver != "" && expectedVolume.Driver != actualVolume.Driver {
			findings = append(findings, types.Finding{
				Type:     types.DriftVolumeDriver,
				Severity: types.SeverityLow,
				Resource: name,
				Message:  fmt.Sprintf("Volume %s has driver mismatch", name),
				Expected: expectedVolume.Driver,
				Actual:   actualVolume.Driver,
			})
		}
	}

	for _, name := range sortedVolumeNames(actual) {
		if name == "" {
			findings = append(findings, malformedFinding("volume", "actual"))
			continue
		}
		if _, declared := expected[name]; !declared {
			findings = append(findings, types.Finding{
				Type:     types.DriftUnexpectedVolume,
				Severity: types.SeverityLow,
				Resource: name,
				Message:  fmt.Sprintf("Unexpected volume %s found", name),
				Expected: nil,
				Actual:   actual[name],
			})
		}
	}

	return findings
}
