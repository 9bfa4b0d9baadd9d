package candidate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ELBIXishere/gridrouter/candidate"
	"github.com/ELBIXishere/gridrouter/config"
	"github.com/ELBIXishere/gridrouter/geo"
	"github.com/ELBIXishere/gridrouter/model"
)

func TestSelect_PhaseMatchingAndRadius(t *testing.T) {
	cfg := config.Default()
	consumer := geo.Point{X: 0, Y: 0}

	poles := []*model.Pole{
		{ID: "lv-near", Position: geo.Point{X: 10, Y: 0}, HasLV: true},
		{ID: "hv-three-near", Position: geo.Point{X: 20, Y: 0}, HasHV: true, IsThreePhaseConnected: true},
		{ID: "too-far", Position: geo.Point{X: 500, Y: 0}, HasLV: true},
		{ID: "no-connection", Position: geo.Point{X: 5, Y: 0}},
	}

	single := candidate.Select(poles, consumer, model.PhaseSingle, cfg)
	ids := make([]string, len(single))
	for i, c := range single {
		ids[i] = c.Pole.ID
	}
	require.ElementsMatch(t, []string{"lv-near", "hv-three-near"}, ids)

	three := candidate.Select(poles, consumer, model.PhaseThree, cfg)
	require.Len(t, three, 1)
	require.Equal(t, "hv-three-near", three[0].Pole.ID)
}

func TestSelect_FastTrackFlag(t *testing.T) {
	cfg := config.Default()
	poles := []*model.Pole{
		{ID: "close", Position: geo.Point{X: 30, Y: 0}, HasLV: true},
		{ID: "far", Position: geo.Point{X: 300, Y: 0}, HasLV: true},
	}
	got := candidate.Select(poles, geo.Point{X: 0, Y: 0}, model.PhaseSingle, cfg)
	byID := map[string]*model.Candidate{}
	for _, c := range got {
		byID[c.Pole.ID] = c
	}
	require.True(t, byID["close"].IsFastTrack)
	require.False(t, byID["far"].IsFastTrack)
}

func TestSelect_PriorityOrdering(t *testing.T) {
	cfg := config.Default()
	poles := []*model.Pole{
		{ID: "hv-only", Position: geo.Point{X: 50, Y: 0}, HasHV: true},
		{ID: "lv", Position: geo.Point{X: 60, Y: 0}, HasLV: true},
	}
	got := candidate.Select(poles, geo.Point{X: 0, Y: 0}, model.PhaseSingle, cfg)
	require.Equal(t, "lv", got[0].Pole.ID) // LV gets -100 priority bonus, sorts first despite longer distance
}

func TestSelect_NoCandidate(t *testing.T) {
	cfg := config.Default()
	got := candidate.Select(nil, geo.Point{X: 0, Y: 0}, model.PhaseSingle, cfg)
	require.Empty(t, got)
}
