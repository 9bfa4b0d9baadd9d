package costing_test

import (
	"testing"

	"github.com/gotidy/ptr"
	"github.com/stretchr/testify/require"

	"github.com/ELBIXishere/gridrouter/config"
	"github.com/ELBIXishere/gridrouter/costing"
	"github.com/ELBIXishere/gridrouter/model"
)

func TestEstimate_LVDefaultLoad(t *testing.T) {
	cfg := config.Default()
	in := costing.Input{
		PathLengthM:   205,
		NewPoleCount:  5,
		SourceVoltage: model.VoltageLV,
		Phase:         model.PhaseSingle,
	}
	got := costing.Estimate(in, cfg)
	require.Equal(t, string(costing.PoleSpecLVConcrete9m), got.PoleSpec)
	require.Greater(t, got.TotalCost, got.WireCost+got.PoleCost)
	require.Greater(t, got.TotalCost, got.LaborCost)
	require.Equal(t, got.CostIndex%1000, int64(0))
}

func TestEstimate_HVHeavyLoadUsesHeavierWire(t *testing.T) {
	cfg := config.Default()
	in := costing.Input{
		PathLengthM:    100,
		NewPoleCount:   2,
		SourceVoltage:  model.VoltageHV,
		Phase:          model.PhaseThree,
		ExplicitLoadKW: ptr.Float64(12),
	}
	got := costing.Estimate(in, cfg)
	require.Equal(t, string(costing.PoleSpecHVConcrete11m), got.PoleSpec)
	require.Equal(t, model.WireSpec("ACSR-95"), got.WireSpec)
}

func TestInput_LoadKWDefaultsByPhase(t *testing.T) {
	cfg := config.Default()
	single := costing.Input{Phase: model.PhaseSingle}
	three := costing.Input{Phase: model.PhaseThree}
	require.Equal(t, cfg.DefaultLoadSingleKW, single.LoadKW(cfg))
	require.Equal(t, cfg.DefaultLoadThreeKW, three.LoadKW(cfg))
}

func TestEstimate_FastTrackZeroPoles(t *testing.T) {
	cfg := config.Default()
	in := costing.Input{
		PathLengthM:   31.62,
		NewPoleCount:  0,
		SourceVoltage: model.VoltageLV,
		Phase:         model.PhaseSingle,
	}
	got := costing.Estimate(in, cfg)
	require.Greater(t, got.WireCost, 0.0) // wire + endpoint fittings still cost something
}
