// Package orchestrate implements spec §4.11's Orchestrator (S11): it
// drives the S1-S10 pipeline stages in order for one request, aggregates
// diagnostics, enforces the per-request timeout and cancellation signal
// at stage boundaries, and selects the final status.
//
// The Config.Validate() gate, injected clockwork.Clock defaulting to
// clockwork.NewRealClock(), and *slog.Logger-carrying constructor shape
// are grounded on xentoshi-lake/indexer/pkg/indexer's New(ctx, cfg)
// (validate config, default the clock, store the logger on the struct).
package orchestrate

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/lmittmann/tint"

	"github.com/ELBIXishere/gridrouter/candidate"
	"github.com/ELBIXishere/gridrouter/config"
	"github.com/ELBIXishere/gridrouter/costing"
	"github.com/ELBIXishere/gridrouter/crossing"
	"github.com/ELBIXishere/gridrouter/geo"
	"github.com/ELBIXishere/gridrouter/model"
	"github.com/ELBIXishere/gridrouter/normalize"
	"github.com/ELBIXishere/gridrouter/pathfinder"
	"github.com/ELBIXishere/gridrouter/poleallocator"
	"github.com/ELBIXishere/gridrouter/ranker"
	"github.com/ELBIXishere/gridrouter/roadgraph"
	"github.com/ELBIXishere/gridrouter/voltagedrop"
)

// Status is one of spec §6/§7's request-level outcomes.
type Status string

const (
	StatusSuccess       Status = "Success"
	StatusNoCandidate   Status = "NoCandidate"
	StatusNoRoadAccess  Status = "NoRoadAccess"
	StatusNoRoute       Status = "NoRoute"
	StatusOverDistance  Status = "OverDistance"
	StatusTimeout       Status = "Timeout"
	StatusCancelled     Status = "Cancelled"
	StatusInternalError Status = "InternalError"
)

// Request bundles one routing request's input, per spec §6.
type Request struct {
	Consumer       geo.Point
	Phase          model.PhaseClass
	Features       normalize.RawFeatureSet
	ExplicitLoadKW *float64
	Cancel         <-chan struct{}
}

// Response is the full per-request output, per spec §6.
type Response struct {
	Status           Status                 `json:"status"`
	ErrorMessage     string                 `json:"error_message,omitempty"`
	RequestSpec      string                 `json:"requested_phase"`
	ConsumerCoord    geo.Point              `json:"consumer_coord"`
	Routes           []*model.RouteResult   `json:"routes"`
	ProcessingTimeMs int64                  `json:"processing_time_ms"`
	Diagnostics      *normalize.Diagnostics `json:"diagnostics,omitempty"`
	CorrelationID    string                 `json:"correlation_id,omitempty"`
}

// Orchestrator drives one request through S1-S10. It is safe for
// concurrent use: each Run call owns its own per-request state (spec
// §5's "per-request state owned exclusively by its worker").
type Orchestrator struct {
	cfg   config.Config
	log   *slog.Logger
	clock clockwork.Clock
}

// New validates cfg and constructs an Orchestrator. log and clock may be
// nil; log defaults to a tint-formatted slog.Logger on stderr, clock to
// clockwork.NewRealClock().
func New(cfg config.Config, log *slog.Logger, clock clockwork.Clock) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(tint.NewHandler(os.Stderr, nil))
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Orchestrator{cfg: cfg, log: log, clock: clock}, nil
}

// rejection is a diagnostic note on a candidate that did not yield an
// accepted route; surfaced via Diagnostics, never as an error.
type rejection struct {
	poleID string
	reason string
}

// Run executes the full S1-S10 pipeline for req and returns exactly one
// status per spec §4.11. Internal invariant violations are recovered
// into StatusInternalError with a correlation id, per spec §7.
func (o *Orchestrator) Run(ctx context.Context, req Request) (resp *Response) {
	start := o.clock.Now()

	defer func() {
		if r := recover(); r != nil {
			corrID := uuid.New().String()
			o.log.Error("internal invariant violation", "correlation_id", corrID, "panic", r)
			resp = &Response{
				Status:           StatusInternalError,
				ErrorMessage:     "internal error, see correlation id in logs",
				CorrelationID:    corrID,
				RequestSpec:      req.Phase.String(),
				ConsumerCoord:    req.Consumer,
				ProcessingTimeMs: o.clock.Since(start).Milliseconds(),
			}
		}
	}()

	if st, msg := o.checkDeadline(ctx, req, start); st != "" {
		return o.finish(st, msg, req, nil, nil, start)
	}

	normalized, diag := normalize.Normalize(req.Features)

	candidates := candidate.Select(normalized.Poles, req.Consumer, req.Phase, o.cfg)
	if len(candidates) == 0 {
		return o.finish(StatusNoCandidate, "", req, diag, nil, start)
	}

	g := roadgraph.Build(normalized.Roads, o.cfg)

	// Consumer road-attachment is only needed for non-fast-track candidates
	// (spec §4.3/§4.5: a fast-track candidate is served by a direct
	// [consumer, candidate] segment, never routed through the road graph).
	// Attach lazily, on the first candidate that actually requires it, so a
	// request with no roads at all still succeeds when a fast-track
	// candidate is available.
	var consumerAttach roadgraph.AttachResult
	var consumerAttachComputed, consumerAttachFailed bool

	crossingIdx := crossing.Build(normalized.Lines)
	heuristicCache := pathfinder.NewHeuristicCache()

	var accepted []*model.RouteResult
	var rejections []rejection
	anyReachableWithinAttach := false

	for i, cand := range candidates {
		if st, msg := o.checkDeadline(ctx, req, start); st != "" {
			return o.finish(st, msg, req, diag, accepted, start)
		}

		var path *model.PathResult
		if cand.IsFastTrack {
			path = pathfinder.FastTrackPath(req.Consumer, cand)
		} else {
			if !consumerAttachComputed {
				consumerAttach = g.AttachPoint(req.Consumer, model.NodeOriginConsumer, o.cfg.MaxAttachM, "consumer")
				consumerAttachComputed = true
				consumerAttachFailed = !consumerAttach.OK
			}
			if consumerAttachFailed {
				rejections = append(rejections, rejection{poleID: cand.Pole.ID, reason: "consumer not attachable to road graph"})
				continue
			}
			candNodeID := candidateNodeID(cand, i)
			candAttach := g.AttachPoint(cand.Pole.Position, model.NodeOriginPoleAttach, o.cfg.MaxAttachM, candNodeID)
			if !candAttach.OK {
				rejections = append(rejections, rejection{poleID: cand.Pole.ID, reason: "pole not attachable to road graph"})
				continue
			}
			path = pathfinder.FindPath(g, consumerAttach.NodeID, candAttach.NodeID, cand, o.cfg, heuristicCache)
		}

		if !path.Reachable {
			rejections = append(rejections, rejection{poleID: cand.Pole.ID, reason: "unreachable"})
			continue
		}
		anyReachableWithinAttach = true

		if path.TotalDistance > o.cfg.MaxDistanceM {
			rejections = append(rejections, rejection{poleID: cand.Pole.ID, reason: "exceeds MAX_DISTANCE"})
			continue
		}

		if v := crossingIdx.Check(path.Polyline); v != nil {
			rejections = append(rejections, rejection{poleID: cand.Pole.ID, reason: "crosses line " + v.LineID})
			continue
		}

		poles := poleallocator.Allocate(path.Polyline, path.TotalDistance, path.FastTrack, normalized.Buildings, o.cfg)
		if poles.Rejected {
			rejections = append(rejections, rejection{poleID: cand.Pole.ID, reason: "building avoidance nudge exhausted"})
			continue
		}

		costInput := costing.Input{
			PathLengthM:    path.TotalDistance,
			NewPoleCount:   len(poles.Coordinates),
			SourceVoltage:  cand.Pole.VoltageClass,
			Phase:          req.Phase,
			ExplicitLoadKW: req.ExplicitLoadKW,
		}
		cost := costing.Estimate(costInput, o.cfg)
		vd := voltagedrop.Calculate(path.TotalDistance, costInput.LoadKW(o.cfg), cost.WireSpec, cand.Pole.VoltageClass, req.Phase, o.cfg)

		accepted = append(accepted, &model.RouteResult{
			TotalCost:          cost.TotalCost,
			CostIndex:          cost.CostIndex,
			TotalDistance:      path.TotalDistance,
			StartPoleID:        cand.Pole.ID,
			StartPoleCoord:     cand.Pole.Position,
			NewPolesCount:      len(poles.Coordinates),
			PathCoordinates:    path.Polyline,
			NewPoleCoordinates: poles.Coordinates,
			Cost:               cost,
			PoleSpec:           cost.PoleSpec,
			WireSpec:           cost.WireSpec,
			SourceVoltageType:  cand.Pole.VoltageClass,
			SourcePhaseType:    sourcePhaseType(req.Phase),
			VoltageDrop:        vd,
		})
	}

	for _, r := range rejections {
		diag.DroppedReasons = append(diag.DroppedReasons, "candidate "+r.poleID+": "+r.reason)
	}

	if len(accepted) == 0 {
		if anyReachableWithinAttach {
			return o.finish(StatusOverDistance, "", req, diag, nil, start)
		}
		if consumerAttachFailed {
			return o.finish(StatusNoRoadAccess, "", req, diag, nil, start)
		}
		return o.finish(StatusNoRoute, "", req, diag, nil, start)
	}

	ranked := ranker.Rank(accepted, o.cfg)
	return o.finish(StatusSuccess, "", req, diag, ranked, start)
}

func (o *Orchestrator) finish(status Status, msg string, req Request, diag *normalize.Diagnostics, routes []*model.RouteResult, start time.Time) *Response {
	return &Response{
		Status:           status,
		ErrorMessage:     msg,
		RequestSpec:      req.Phase.String(),
		ConsumerCoord:    req.Consumer,
		Routes:           routes,
		ProcessingTimeMs: o.clock.Since(start).Milliseconds(),
		Diagnostics:      diag,
	}
}

// checkDeadline implements spec §5's cancellation and timeout checks at
// stage boundaries. Returns a non-empty Status if the request must stop.
// Both ctx's own cancellation and the caller-supplied req.Cancel signal
// (spec's own "cancellation signal", distinct from ctx) are honoured.
func (o *Orchestrator) checkDeadline(ctx context.Context, req Request, start time.Time) (Status, string) {
	select {
	case <-ctx.Done():
		return StatusCancelled, "cancelled"
	default:
	}
	if req.Cancel != nil {
		select {
		case <-req.Cancel:
			return StatusCancelled, "cancelled"
		default:
		}
	}
	if o.clock.Since(start) > time.Duration(o.cfg.RequestTimeoutSec*float64(time.Second)) {
		return StatusTimeout, "exceeded request timeout"
	}
	return "", ""
}

func candidateNodeID(cand *model.Candidate, index int) string {
	return "cand:" + cand.Pole.ID + ":" + strconv.Itoa(index)
}

func sourcePhaseType(phase model.PhaseClass) model.SourcePhaseType {
	if phase == model.PhaseThree {
		return model.SourcePhaseThree
	}
	return model.SourcePhaseSingle
}
