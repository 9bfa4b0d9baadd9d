// Package costing implements spec §4.8's Cost Estimator (S8): pole_spec
// and wire_spec selection keyed by (source voltage class, estimated
// load), and the material/labor/overhead/profit roll-up. The requested
// phase enters the selection only through its default load.
//
// The named-spec + options-struct shape is adapted from the teacher's
// costing-model selection (CostingModelAuto/.../CostingModelOptions):
// there, a named mode string selects a set of tuning options; here, a
// named pole/wire spec selects a set of unit costs. The one genuinely
// optional input field (an explicit load override) is a *float64,
// constructed with gotidy/ptr at the call site the same way the teacher's
// options structs are.
package costing

import (
	"math"

	"github.com/ELBIXishere/gridrouter/config"
	"github.com/ELBIXishere/gridrouter/model"
)

// PoleSpec names a pole construction class.
type PoleSpec string

const (
	PoleSpecLVConcrete9m  PoleSpec = "POLE-9M-CONCRETE"
	PoleSpecHVConcrete11m PoleSpec = "POLE-11M-CONCRETE"
)

// unitPoleCost gives the material unit cost for a PoleSpec.
var unitPoleCost = map[PoleSpec]float64{
	PoleSpecLVConcrete9m:  420.0,
	PoleSpecHVConcrete11m: 780.0,
}

// unitWireCost gives the material cost per metre for a model.WireSpec.
var unitWireCost = map[model.WireSpec]float64{
	"ACSR-35": 1.8,
	"ACSR-50": 2.4,
	"ACSR-95": 4.1,
	"AAC-95":  3.6,
}

const defaultWireCostPerMeter = 2.4 // fallback for a wire_spec absent from the table

// fittingCostPerPole, fittingCostPerEndpoint and fittingInstallPerPole
// model the insulators/arm-ties/
// clamps/connectors spec §4.8 calls out as "counts derived from
// new_pole_count and endpoint counts".
const (
	fittingCostPerPole     = 35.0
	fittingCostPerEndpoint = 60.0
	fittingInstallPerPole  = 18.0
)

const (
	baseLaborCost      = 250.0
	poleInstallUnit    = 140.0
	wireStretchUnit    = 1.1
)

// Input bundles the cost estimator's parameters for one route.
type Input struct {
	PathLengthM   float64
	NewPoleCount  int
	SourceVoltage model.VoltageClass
	Phase         model.PhaseClass

	// ExplicitLoadKW overrides the per-phase default load used to pick
	// pole_spec/wire_spec, when the caller supplies one (spec §4.8).
	ExplicitLoadKW *float64
}

// LoadKW resolves ExplicitLoadKW against cfg's per-phase defaults.
func (in Input) LoadKW(cfg config.Config) float64 {
	if in.ExplicitLoadKW != nil {
		return *in.ExplicitLoadKW
	}
	if in.Phase == model.PhaseThree {
		return cfg.DefaultLoadThreeKW
	}
	return cfg.DefaultLoadSingleKW
}

// SelectSpecs resolves the pole_spec/wire_spec lookup keyed by source
// voltage class and estimated load. HV source poles get the taller
// concrete spec and a heavier conductor; LV stays on the lighter class.
// The requested phase is not a key; it affects the result only through
// the per-phase default load (Input.LoadKW).
func SelectSpecs(voltage model.VoltageClass, loadKW float64) (PoleSpec, model.WireSpec) {
	if voltage == model.VoltageHV {
		if loadKW > 6.0 {
			return PoleSpecHVConcrete11m, model.WireSpec("ACSR-95")
		}
		return PoleSpecHVConcrete11m, model.WireSpec("ACSR-50")
	}
	if loadKW > 6.0 {
		return PoleSpecLVConcrete9m, model.WireSpec("AAC-95")
	}
	return PoleSpecLVConcrete9m, model.WireSpec("ACSR-35")
}

// Estimate implements spec §4.8's full roll-up: material, labor,
// overhead, profit, total_cost and a cost_index ranking key.
func Estimate(in Input, cfg config.Config) model.CostBreakdown {
	loadKW := in.LoadKW(cfg)
	poleSpec, wireSpec := SelectSpecs(in.SourceVoltage, loadKW)

	wireUnit, ok := unitWireCost[wireSpec]
	if !ok {
		wireUnit = defaultWireCostPerMeter
	}

	endpoints := 2 // source pole + consumer service point
	poleCost := float64(in.NewPoleCount)*unitPoleCost[poleSpec] + fittingCostPerPole*float64(in.NewPoleCount)
	wireCost := in.PathLengthM*wireUnit + fittingCostPerEndpoint*float64(endpoints)
	material := poleCost + wireCost

	fittingsInstall := fittingInstallPerPole * float64(in.NewPoleCount)
	labor := baseLaborCost + float64(in.NewPoleCount)*poleInstallUnit + in.PathLengthM*wireStretchUnit + fittingsInstall

	overhead := cfg.OverheadRate * (material + labor)
	profit := cfg.ProfitRate * (material + labor + overhead)
	total := material + labor + overhead + profit

	return model.CostBreakdown{
		WireCost:     wireCost,
		PoleCost:     poleCost,
		LaborCost:    labor,
		OverheadCost: overhead,
		ProfitCost:   profit,
		TotalCost:    total,
		CostIndex:    costIndex(total),
		PoleSpec:     string(poleSpec),
		WireSpec:     wireSpec,
	}
}

// costIndex rounds total_cost to the nearest 1,000 units, per spec
// §4.8's suggested ranking-key derivation.
func costIndex(total float64) int64 {
	return int64(math.Round(total/1000.0)) * 1000
}
