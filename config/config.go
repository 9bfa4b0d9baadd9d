// Package config holds the process-wide, immutable configuration
// constants enumerated in spec §6. A single Config value is built once at
// startup (see cmd/gridrouter) and threaded down to every stage; nothing
// in the pipeline re-reads it per request, matching the "shared, read-only
// state" model of spec §5.
package config

import "fmt"

// Config is the full set of tunable pipeline constants. Field names match
// spec §6's table; defaults match the spec's defaults.
type Config struct {
	MaxDistanceM      float64 // MAX_DISTANCE
	FastTrackLimitM   float64 // FAST_TRACK_LIMIT
	PoleIntervalM     float64 // POLE_INTERVAL
	SnapToleranceM    float64 // SNAP_TOLERANCE
	MaxAttachM        float64 // MAX_ATTACH
	PoleNudgeM        float64 // POLE_NUDGE
	MaxRoutes         int     // MAX_ROUTES
	LimitVoltageDropLV float64 // LIMIT_VD_LV (percent)
	LimitVoltageDropHV float64 // LIMIT_VD_HV (percent)
	OverheadRate      float64 // overhead_rate
	ProfitRate        float64 // profit_rate
	RequestTimeoutSec float64 // REQUEST_TIMEOUT

	// PoleCostShare is the amortised per-metre pole cost baked into the
	// road graph edge weight formula (spec §4.4).
	PoleCostShare float64

	// DefaultLoadSingleKW / DefaultLoadThreeKW are the per-phase load
	// defaults used by the voltage drop calculator (§4.9) when the caller
	// supplies no explicit load (resolved Open Question, see DESIGN.md).
	DefaultLoadSingleKW float64
	DefaultLoadThreeKW  float64
}

// Default returns the spec §6 default configuration.
func Default() Config {
	return Config{
		MaxDistanceM:        400,
		FastTrackLimitM:     50,
		PoleIntervalM:       40,
		SnapToleranceM:      10,
		MaxAttachM:          100,
		PoleNudgeM:          5,
		MaxRoutes:           10,
		LimitVoltageDropLV:  6.0,
		LimitVoltageDropHV:  3.0,
		OverheadRate:        0.05,
		ProfitRate:          0.05,
		RequestTimeoutSec:   60,
		PoleCostShare:       180.0,
		DefaultLoadSingleKW: 3.0,
		DefaultLoadThreeKW:  9.0,
	}
}

// Validate reports a descriptive error for any constant that would make
// the pipeline's invariants unsatisfiable (e.g. a negative distance cap).
func (c Config) Validate() error {
	type check struct {
		name string
		val  float64
	}
	positives := []check{
		{"MaxDistanceM", c.MaxDistanceM},
		{"FastTrackLimitM", c.FastTrackLimitM},
		{"PoleIntervalM", c.PoleIntervalM},
		{"SnapToleranceM", c.SnapToleranceM},
		{"MaxAttachM", c.MaxAttachM},
		{"PoleNudgeM", c.PoleNudgeM},
		{"LimitVoltageDropLV", c.LimitVoltageDropLV},
		{"LimitVoltageDropHV", c.LimitVoltageDropHV},
		{"RequestTimeoutSec", c.RequestTimeoutSec},
		{"DefaultLoadSingleKW", c.DefaultLoadSingleKW},
		{"DefaultLoadThreeKW", c.DefaultLoadThreeKW},
	}
	for _, chk := range positives {
		if chk.val <= 0 {
			return fmt.Errorf("config: %s must be positive, got %v", chk.name, chk.val)
		}
	}
	if c.MaxRoutes <= 0 {
		return fmt.Errorf("config: MaxRoutes must be positive, got %d", c.MaxRoutes)
	}
	if c.OverheadRate < 0 || c.ProfitRate < 0 {
		return fmt.Errorf("config: OverheadRate and ProfitRate must be non-negative")
	}
	if c.FastTrackLimitM > c.MaxDistanceM {
		return fmt.Errorf("config: FastTrackLimitM (%v) must not exceed MaxDistanceM (%v)", c.FastTrackLimitM, c.MaxDistanceM)
	}
	return nil
}
