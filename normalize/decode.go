package normalize

import "strings"

import "github.com/ELBIXishere/gridrouter/model"

// overheadWireMarker is the token a transformer's free-text annotation
// must contain for a synthetic LV Line to be derived from it (spec §4.1).
const overheadWireMarker = "OW"

// DecodePhase implements spec §4.1's phase decoding rule: deterministic,
// case-insensitive. Multi-letter codes containing all of {A,B,C} map to
// THREE; any single-letter code maps to SINGLE; anything else is UNKNOWN.
func DecodePhase(raw string) model.PhaseClass {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) == 1 {
		if code[0] >= 'A' && code[0] <= 'Z' {
			return model.PhaseSingle
		}
		return model.PhaseUnknown
	}
	hasA := strings.Contains(code, "A")
	hasB := strings.Contains(code, "B")
	hasC := strings.Contains(code, "C")
	if hasA && hasB && hasC {
		return model.PhaseThree
	}
	return model.PhaseUnknown
}

// hvThresholdKV is the numeric voltage above which an authoritative
// voltage_value field classifies a pole/line as HV rather than LV.
// Standard LV distribution in this domain tops out at 1 kV (230/400V
// service); anything above that is treated as HV per spec §4.1's
// "authoritative" numeric rule.
const hvThresholdKV = 1.0

// DecodeVoltage implements spec §4.1's voltage decoding rule. If
// explicitKV is non-nil and positive it is authoritative. Otherwise HV is
// inferred from a pole-form code marked "H" or from incidence to at least
// one HV line; anything else is LV.
func DecodeVoltage(explicitKV *float64, poleFormCode string, incidentHV bool) model.VoltageClass {
	if explicitKV != nil && *explicitKV > 0 {
		if *explicitKV > hvThresholdKV {
			return model.VoltageHV
		}
		return model.VoltageLV
	}
	if incidentHV || strings.EqualFold(poleFormCode, "H") {
		return model.VoltageHV
	}
	return model.VoltageLV
}

// DecodeWireSpec combines the conductor-kind code (e.g. OW, ACSR, DV) with
// the cross-section code (e.g. 32, 58, 95, 160) into a canonical spec
// string, per spec §4.1.
func DecodeWireSpec(conductorKind, crossSection string) model.WireSpec {
	conductorKind = strings.ToUpper(strings.TrimSpace(conductorKind))
	crossSection = strings.TrimSpace(crossSection)
	if conductorKind == "" && crossSection == "" {
		return ""
	}
	if crossSection == "" {
		return model.WireSpec(conductorKind)
	}
	return model.WireSpec(conductorKind + "-" + crossSection)
}

// HasOverheadWireMarker scans transformer annotation text for the
// overhead-wire marker token that indicates an embedded LV line.
func HasOverheadWireMarker(annotation string) bool {
	return strings.Contains(strings.ToUpper(annotation), overheadWireMarker)
}
