package orchestrate_test

import (
	"context"
	"testing"

	"github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/require"

	"github.com/ELBIXishere/gridrouter/config"
	"github.com/ELBIXishere/gridrouter/geo"
	"github.com/ELBIXishere/gridrouter/model"
	"github.com/ELBIXishere/gridrouter/normalize"
	"github.com/ELBIXishere/gridrouter/orchestrate"
)

func pointFeature(id string, x, y float64, props map[string]interface{}) *geojson.Feature {
	f := geojson.NewPointFeature([]float64{x, y})
	f.ID = id
	for k, v := range props {
		f.SetProperty(k, v)
	}
	return f
}

func lineFeature(id string, coords [][]float64, props map[string]interface{}) *geojson.Feature {
	f := geojson.NewLineStringFeature(coords)
	f.ID = id
	for k, v := range props {
		f.SetProperty(k, v)
	}
	return f
}

// TestRun_FastTrack mirrors spec §8 scenario E1: a lone LV pole well
// within FAST_TRACK_LIMIT, no intervening roads or lines needed.
func TestRun_FastTrack(t *testing.T) {
	cfg := config.Default()
	orc, err := orchestrate.New(cfg, nil, nil)
	require.NoError(t, err)

	poles := geojson.NewFeatureCollection()
	poles.AddFeature(pointFeature("P1", 30, 10, map[string]interface{}{"phase_code": "A"}))

	lines := geojson.NewFeatureCollection()
	lines.AddFeature(lineFeature("L1", [][]float64{{30, 10}, {30, 10.001}}, map[string]interface{}{
		"line_type_code": "LV",
		"from_pole_id":   "P1",
	}))

	req := orchestrate.Request{
		Consumer: geo.Point{X: 0, Y: 0},
		Phase:    model.PhaseSingle,
		Features: normalize.RawFeatureSet{Poles: poles, Lines: lines},
	}
	resp := orc.Run(context.Background(), req)
	require.Equal(t, orchestrate.StatusSuccess, resp.Status)
	require.Len(t, resp.Routes, 1)
	require.Equal(t, 0, resp.Routes[0].NewPolesCount)
	require.InDelta(t, 31.6227766, resp.Routes[0].TotalDistance, 1e-3)
}

// TestRun_GraphRoute mirrors scenario E2: a pole reachable only via a
// 200 m road, placing several new poles along the way.
func TestRun_GraphRoute(t *testing.T) {
	cfg := config.Default()
	orc, err := orchestrate.New(cfg, nil, nil)
	require.NoError(t, err)

	poles := geojson.NewFeatureCollection()
	poles.AddFeature(pointFeature("P1", 200, 3, map[string]interface{}{"phase_code": "A"}))

	lines := geojson.NewFeatureCollection()
	lines.AddFeature(lineFeature("L1", [][]float64{{200, 3}, {200, 3.001}}, map[string]interface{}{
		"line_type_code": "LV",
		"from_pole_id":   "P1",
	}))

	roads := geojson.NewFeatureCollection()
	roads.AddFeature(lineFeature("R1", [][]float64{{0, 0}, {200, 0}}, nil))

	req := orchestrate.Request{
		Consumer: geo.Point{X: 0, Y: 0},
		Phase:    model.PhaseSingle,
		Features: normalize.RawFeatureSet{Poles: poles, Lines: lines, Roads: roads},
	}
	resp := orc.Run(context.Background(), req)
	require.Equal(t, orchestrate.StatusSuccess, resp.Status)
	require.Len(t, resp.Routes, 1)
	require.Greater(t, resp.Routes[0].NewPolesCount, 0)
}

// TestRun_ThreePhaseFilterYieldsNoCandidate mirrors scenario E3.
func TestRun_ThreePhaseFilterYieldsNoCandidate(t *testing.T) {
	cfg := config.Default()
	orc, err := orchestrate.New(cfg, nil, nil)
	require.NoError(t, err)

	poles := geojson.NewFeatureCollection()
	poles.AddFeature(pointFeature("P1", 30, 10, nil))

	lines := geojson.NewFeatureCollection()
	lines.AddFeature(lineFeature("L1", [][]float64{{30, 10}, {30, 10.001}}, map[string]interface{}{
		"line_type_code": "LV",
		"from_pole_id":   "P1",
	}))

	req := orchestrate.Request{
		Consumer: geo.Point{X: 0, Y: 0},
		Phase:    model.PhaseThree,
		Features: normalize.RawFeatureSet{Poles: poles, Lines: lines},
	}
	resp := orc.Run(context.Background(), req)
	require.Equal(t, orchestrate.StatusNoCandidate, resp.Status)
	require.Empty(t, resp.Routes)
}

// TestRun_OverDistance mirrors scenario E5: the candidate sits just
// within MAX_DISTANCE as the crow flies, but the only road route to it
// overshoots MAX_DISTANCE by the time the final connector edge is added.
func TestRun_OverDistance(t *testing.T) {
	cfg := config.Default()
	orc, err := orchestrate.New(cfg, nil, nil)
	require.NoError(t, err)

	poles := geojson.NewFeatureCollection()
	poles.AddFeature(pointFeature("P1", 5, 399, map[string]interface{}{"phase_code": "A"}))

	lines := geojson.NewFeatureCollection()
	lines.AddFeature(lineFeature("L1", [][]float64{{5, 399}, {5.001, 399}}, map[string]interface{}{
		"line_type_code": "LV",
		"from_pole_id":   "P1",
	}))

	roads := geojson.NewFeatureCollection()
	roads.AddFeature(lineFeature("R1", [][]float64{{0, 0}, {0, 399}}, nil))

	req := orchestrate.Request{
		Consumer: geo.Point{X: 0, Y: 0},
		Phase:    model.PhaseSingle,
		Features: normalize.RawFeatureSet{Poles: poles, Lines: lines, Roads: roads},
	}
	resp := orc.Run(context.Background(), req)
	require.Equal(t, orchestrate.StatusOverDistance, resp.Status)
	require.Empty(t, resp.Routes)
}

// TestRun_NoRoadAccess mirrors spec §7's NoRoadAccess status: the sole
// candidate is beyond FAST_TRACK_LIMIT (so it must route through the road
// graph), and no road exists within MAX_ATTACH of the consumer.
func TestRun_NoRoadAccess(t *testing.T) {
	cfg := config.Default()
	orc, err := orchestrate.New(cfg, nil, nil)
	require.NoError(t, err)

	poles := geojson.NewFeatureCollection()
	poles.AddFeature(pointFeature("P1", 200, 0, map[string]interface{}{"phase_code": "A"}))

	lines := geojson.NewFeatureCollection()
	lines.AddFeature(lineFeature("L1", [][]float64{{200, 0}, {200.001, 0}}, map[string]interface{}{
		"line_type_code": "LV",
		"from_pole_id":   "P1",
	}))

	req := orchestrate.Request{
		Consumer: geo.Point{X: 0, Y: 0},
		Phase:    model.PhaseSingle,
		Features: normalize.RawFeatureSet{Poles: poles, Lines: lines},
	}
	resp := orc.Run(context.Background(), req)
	require.Equal(t, orchestrate.StatusNoRoadAccess, resp.Status)
	require.Empty(t, resp.Routes)
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	cfg := config.Default()
	orc, err := orchestrate.New(cfg, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := orchestrate.Request{Consumer: geo.Point{X: 0, Y: 0}, Phase: model.PhaseSingle}
	resp := orc.Run(ctx, req)
	require.Equal(t, orchestrate.StatusCancelled, resp.Status)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.MaxDistanceM = -1
	_, err := orchestrate.New(cfg, nil, nil)
	require.Error(t, err)
}
