// Command gridrouter loads a fixture GeoJSON feature set plus a consumer
// coordinate and phase, drives the full S1-S11 pipeline once, and prints
// the ranked routes as JSON. It is a local CLI driver, not an HTTP API
// (spec §1 explicitly excludes the HTTP API surface from this repo).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/goccy/go-json"
	"github.com/lmittmann/tint"
	"github.com/paulmach/go.geojson"
	flag "github.com/spf13/pflag"

	"github.com/ELBIXishere/gridrouter/config"
	"github.com/ELBIXishere/gridrouter/geo"
	"github.com/ELBIXishere/gridrouter/model"
	"github.com/ELBIXishere/gridrouter/normalize"
	"github.com/ELBIXishere/gridrouter/orchestrate"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// fixtureFile is the on-disk shape a gridrouter fixture is loaded from:
// one GeoJSON FeatureCollection per layer, all in a single JSON document.
type fixtureFile struct {
	Poles        *geojson.FeatureCollection `json:"poles"`
	Lines        *geojson.FeatureCollection `json:"lines"`
	Transformers *geojson.FeatureCollection `json:"transformers"`
	Roads        *geojson.FeatureCollection `json:"roads"`
	Buildings    *geojson.FeatureCollection `json:"buildings"`
	Railways     *geojson.FeatureCollection `json:"railways"`
	Rivers       *geojson.FeatureCollection `json:"rivers"`
}

func run() error {
	fixturePathFlag := flag.String("fixture", "", "path to a fixture JSON file (see fixtureFile) (required)")
	consumerXFlag := flag.Float64("consumer-x", 0, "consumer coordinate X (projected metres)")
	consumerYFlag := flag.Float64("consumer-y", 0, "consumer coordinate Y (projected metres)")
	phaseFlag := flag.String("phase", "single", "requested phase: single or three")
	loadKWFlag := flag.Float64("load-kw", 0, "explicit load in kW (0 means use the per-phase default)")
	verboseFlag := flag.Bool("verbose", false, "enable debug logging")
	timeoutSecFlag := flag.Float64("timeout-sec", 0, "override REQUEST_TIMEOUT (0 keeps the default)")
	flag.Parse()

	if *fixturePathFlag == "" {
		return fmt.Errorf("gridrouter: --fixture is required")
	}

	level := slog.LevelInfo
	if *verboseFlag {
		level = slog.LevelDebug
	}
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))

	phase, err := parsePhase(*phaseFlag)
	if err != nil {
		return err
	}

	raw, err := loadFixture(*fixturePathFlag)
	if err != nil {
		return fmt.Errorf("gridrouter: %w", err)
	}

	cfg := config.Default()
	if *timeoutSecFlag > 0 {
		cfg.RequestTimeoutSec = *timeoutSecFlag
	}

	orc, err := orchestrate.New(cfg, log, nil)
	if err != nil {
		return fmt.Errorf("gridrouter: %w", err)
	}

	req := orchestrate.Request{
		Consumer: geo.Point{X: *consumerXFlag, Y: *consumerYFlag},
		Phase:    phase,
		Features: raw,
	}
	if *loadKWFlag > 0 {
		req.ExplicitLoadKW = loadKWFlag
	}

	resp := orc.Run(context.Background(), req)

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("gridrouter: failed to encode response: %w", err)
	}
	fmt.Println(string(out))

	log.Info("run complete", "status", resp.Status, "routes", len(resp.Routes), "processing_time_ms", resp.ProcessingTimeMs)
	return nil
}

func parsePhase(s string) (model.PhaseClass, error) {
	switch s {
	case "single":
		return model.PhaseSingle, nil
	case "three":
		return model.PhaseThree, nil
	default:
		return model.PhaseUnknown, fmt.Errorf("gridrouter: unknown --phase %q, want \"single\" or \"three\"", s)
	}
}

func loadFixture(path string) (normalize.RawFeatureSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return normalize.RawFeatureSet{}, fmt.Errorf("failed to open fixture: %w", err)
	}
	defer f.Close()

	var ff fixtureFile
	if err := json.NewDecoder(f).Decode(&ff); err != nil {
		return normalize.RawFeatureSet{}, fmt.Errorf("failed to decode fixture: %w", err)
	}

	return normalize.RawFeatureSet{
		Poles:        ff.Poles,
		Lines:        ff.Lines,
		Transformers: ff.Transformers,
		Roads:        ff.Roads,
		Buildings:    ff.Buildings,
		Railways:     ff.Railways,
		Rivers:       ff.Rivers,
	}, nil
}
