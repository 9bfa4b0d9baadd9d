// Package voltagedrop implements spec §4.9's Voltage Drop Calculator
// (S9): drop_V/drop_percent/load_A from path length, load and wire
// spec, and the class-dependent acceptance check.
package voltagedrop

import (
	"math"

	"github.com/ELBIXishere/gridrouter/config"
	"github.com/ELBIXishere/gridrouter/model"
)

var sqrt3 = math.Sqrt(3)

// resistancePerWire is the per-wire-spec resistance constant referenced by
// spec §4.9's K(wire_spec), in ohms per km (Calculate converts the path
// length from metres to km before applying it). K itself is phase-dependent (resistance x 2 for single-phase
// return, resistance x sqrt(3) for three-phase) and is derived by kFactor
// below rather than stored directly, since the same wire spec yields a
// different K depending on the request's phase.
var resistancePerWire = map[model.WireSpec]float64{
	"ACSR-35": 0.925,
	"ACSR-50": 0.65,
	"ACSR-95": 0.34,
	"AAC-95":  0.36,
}

const defaultResistance = 0.65 // fallback for a wire_spec absent from the table

// kFactor implements spec §4.9's K(wire_spec): the per-wire resistance
// scaled by the phase-dependent return-path multiplier.
func kFactor(wireSpec model.WireSpec, phase model.PhaseClass) float64 {
	r, ok := resistancePerWire[wireSpec]
	if !ok {
		r = defaultResistance
	}
	if phase == model.PhaseThree {
		return r * sqrt3
	}
	return r * 2
}

// nominalVoltage returns spec §4.9's nominal_V for a (voltage class,
// phase) pair: 220 for LV-single, 380 for LV-three, 22900 for HV.
func nominalVoltage(voltage model.VoltageClass, phase model.PhaseClass) float64 {
	if voltage == model.VoltageHV {
		return 22900
	}
	if phase == model.PhaseThree {
		return 380
	}
	return 220
}

func phaseFactor(phase model.PhaseClass) float64 {
	if phase == model.PhaseThree {
		return sqrt3
	}
	return 1
}

func limitPercent(voltage model.VoltageClass, cfg config.Config) float64 {
	if voltage == model.VoltageHV {
		return cfg.LimitVoltageDropHV
	}
	return cfg.LimitVoltageDropLV
}

// Calculate implements spec §4.9's formulas end to end.
func Calculate(lengthM, loadKW float64, wireSpec model.WireSpec, voltage model.VoltageClass, phase model.PhaseClass, cfg config.Config) model.VoltageDropSummary {
	nominalV := nominalVoltage(voltage, phase)
	pf := phaseFactor(phase)
	loadA := loadKW * 1000 / (nominalV * pf)

	k := kFactor(wireSpec, phase)
	dropV := k * loadA * lengthM / 1000 // k is per km
	dropPct := dropV / nominalV * 100

	limit := limitPercent(voltage, cfg)

	return model.VoltageDropSummary{
		DistanceM:      lengthM,
		LoadKW:         loadKW,
		VoltageDropV:   dropV,
		VoltageDropPct: dropPct,
		IsAcceptable:   dropPct <= limit,
		LimitPercent:   limit,
		WireSpec:       wireSpec,
	}
}
