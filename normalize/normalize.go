// Package normalize implements spec §4.1's Feature Normalizer (S1): it
// converts raw, loosely typed GeoJSON feature records into the typed
// entities of package model, deriving voltage/phase/wire-spec fields and
// pole-to-line adjacency. Malformed features are dropped with a
// diagnostic counter and never abort the request.
package normalize

import (
	"github.com/paulmach/go.geojson"
	"github.com/samber/lo"

	"github.com/ELBIXishere/gridrouter/geo"
	"github.com/ELBIXishere/gridrouter/model"
)

// RawFeatureSet groups raw GeoJSON feature collections by kind, as
// delivered by the upstream GIS source (spec §6 input). Each collection's
// Features carry the coded attribute fields documented per-kind below.
type RawFeatureSet struct {
	Poles        *geojson.FeatureCollection
	Lines        *geojson.FeatureCollection
	Transformers *geojson.FeatureCollection
	Roads        *geojson.FeatureCollection
	Buildings    *geojson.FeatureCollection
	Railways     *geojson.FeatureCollection
	Rivers       *geojson.FeatureCollection
}

// Normalized holds every typed entity produced from a RawFeatureSet, plus
// lookup tables by id. It is immutable for the remainder of the request
// once Normalize returns.
type Normalized struct {
	Poles        []*model.Pole
	Lines        []*model.Line
	Transformers []*model.Transformer
	Roads        []*model.Road
	Buildings    []*model.Building
	Railways     []*model.Railway
	Rivers       []*model.River

	PoleByID map[string]*model.Pole
}

// Normalize runs the full S1 pipeline over raw, decodes attribute codes,
// derives synthetic LV lines from transformer annotations, and annotates
// pole-to-line adjacency.
func Normalize(raw RawFeatureSet) (*Normalized, *Diagnostics) {
	diag := NewDiagnostics()

	poles := normalizePoles(raw.Poles, diag)
	lines := normalizeLines(raw.Lines, poles, diag)
	transformers, syntheticLines := normalizeTransformers(raw.Transformers, poles, diag)
	lines = append(lines, syntheticLines...)

	roads := normalizeRoads(raw.Roads, diag)
	buildings := normalizeBuildings(raw.Buildings, diag)
	railways := normalizeRailways(raw.Railways, diag)
	rivers := normalizeRivers(raw.Rivers, diag)

	annotateAdjacency(poles, lines)

	poleByID := make(map[string]*model.Pole, len(poles))
	for _, p := range poles {
		poleByID[p.ID] = p
	}

	return &Normalized{
		Poles:        poles,
		Lines:        lines,
		Transformers: transformers,
		Roads:        roads,
		Buildings:    buildings,
		Railways:     railways,
		Rivers:       rivers,
		PoleByID:     poleByID,
	}, diag
}

func featureID(f *geojson.Feature) (string, bool) {
	if f.ID != nil {
		if s, ok := f.ID.(string); ok && s != "" {
			return s, true
		}
	}
	if v, ok := f.Properties["id"]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func stringProp(f *geojson.Feature, key string) string {
	if v, ok := f.Properties[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func floatPropPtr(f *geojson.Feature, key string) *float64 {
	v, ok := f.Properties[key]
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	}
	return nil
}

func pointFromGeometry(g *geojson.Geometry) (geo.Point, bool) {
	if g == nil || !g.IsPoint() {
		return geo.Point{}, false
	}
	if len(g.Point) < 2 {
		return geo.Point{}, false
	}
	return geo.Point{X: g.Point[0], Y: g.Point[1]}, true
}

func polylineFromGeometry(g *geojson.Geometry) ([]geo.Point, bool) {
	if g == nil || !g.IsLineString() {
		return nil, false
	}
	if len(g.LineString) < 2 {
		return nil, false
	}
	pts := make([]geo.Point, 0, len(g.LineString))
	for _, c := range g.LineString {
		if len(c) < 2 {
			return nil, false
		}
		pts = append(pts, geo.Point{X: c[0], Y: c[1]})
	}
	return pts, true
}

func ringFromGeometry(g *geojson.Geometry) ([]geo.Point, bool) {
	if g == nil || !g.IsPolygon() {
		return nil, false
	}
	if len(g.Polygon) == 0 || len(g.Polygon[0]) < 3 {
		return nil, false
	}
	outer := g.Polygon[0]
	pts := make([]geo.Point, 0, len(outer))
	for _, c := range outer {
		if len(c) < 2 {
			return nil, false
		}
		pts = append(pts, geo.Point{X: c[0], Y: c[1]})
	}
	return pts, true
}

func normalizePoles(fc *geojson.FeatureCollection, diag *Diagnostics) []*model.Pole {
	if fc == nil {
		return nil
	}
	seen := make(map[string]bool, len(fc.Features))
	poles := make([]*model.Pole, 0, len(fc.Features))
	for _, f := range fc.Features {
		id, ok := featureID(f)
		if !ok {
			diag.drop("pole", "missing id")
			continue
		}
		if seen[id] {
			diag.drop("pole", "duplicate id "+id)
			continue
		}
		pos, ok := pointFromGeometry(f.Geometry)
		if !ok {
			diag.drop("pole", "malformed geometry for "+id)
			continue
		}
		seen[id] = true
		phase := DecodePhase(stringProp(f, "phase_code"))
		poleFormCode := stringProp(f, "pole_form_code")
		explicitKV := floatPropPtr(f, "voltage_kv")
		voltage := DecodeVoltage(explicitKV, poleFormCode, false) // incident-HV refined in annotateAdjacency
		poles = append(poles, &model.Pole{
			ID:           id,
			Position:     pos,
			VoltageClass: voltage,
			PhaseClass:   phase,
			PoleKindCode: model.PoleKind(poleFormCode),
		})
	}
	return poles
}

func normalizeLines(fc *geojson.FeatureCollection, poles []*model.Pole, diag *Diagnostics) []*model.Line {
	if fc == nil {
		return nil
	}
	poleIDs := lo.SliceToMap(poles, func(p *model.Pole) (string, struct{}) { return p.ID, struct{}{} })

	seen := make(map[string]bool, len(fc.Features))
	lines := make([]*model.Line, 0, len(fc.Features))
	for _, f := range fc.Features {
		id, ok := featureID(f)
		if !ok {
			diag.drop("line", "missing id")
			continue
		}
		if seen[id] {
			diag.drop("line", "duplicate id "+id)
			continue
		}
		verts, ok := polylineFromGeometry(f.Geometry)
		if !ok || geo.PolylineLength(verts) == 0 {
			diag.drop("line", "malformed or zero-length geometry for "+id)
			continue
		}
		seen[id] = true

		lineTypeCode := stringProp(f, "line_type_code")
		var lineType model.LineType
		switch lineTypeCode {
		case "HV":
			lineType = model.LineTypeHV
		case "LV":
			lineType = model.LineTypeLV
		default:
			lineType = model.LineTypeUnknown
		}

		phase := DecodePhase(stringProp(f, "phase_code"))
		wireSpec := DecodeWireSpec(stringProp(f, "conductor_kind_code"), stringProp(f, "cross_section_code"))

		fromID := stringProp(f, "from_pole_id")
		toID := stringProp(f, "to_pole_id")
		if fromID != "" {
			if _, ok := poleIDs[fromID]; !ok {
				fromID = "" // unresolved ref: drop the reference, not the line
			}
		}
		if toID != "" {
			if _, ok := poleIDs[toID]; !ok {
				toID = ""
			}
		}

		var voltageKV float64
		if v := floatPropPtr(f, "voltage_kv"); v != nil {
			voltageKV = *v
		}

		lines = append(lines, &model.Line{
			ID:             id,
			Vertices:       verts,
			FromPoleID:     fromID,
			ToPoleID:       toID,
			LineType:       lineType,
			PhaseClass:     phase,
			WireSpec:       wireSpec,
			VoltageValueKV: voltageKV,
		})
	}
	return lines
}

func normalizeTransformers(fc *geojson.FeatureCollection, poles []*model.Pole, diag *Diagnostics) ([]*model.Transformer, []*model.Line) {
	if fc == nil {
		return nil, nil
	}
	poleByID := lo.SliceToMap(poles, func(p *model.Pole) (string, *model.Pole) { return p.ID, p })

	transformers := make([]*model.Transformer, 0, len(fc.Features))
	var synthetic []*model.Line
	for _, f := range fc.Features {
		id, ok := featureID(f)
		if !ok {
			diag.drop("transformer", "missing id")
			continue
		}
		pos, ok := pointFromGeometry(f.Geometry)
		if !ok {
			diag.drop("transformer", "malformed geometry for "+id)
			continue
		}
		var capacity float64
		if v := floatPropPtr(f, "capacity_kva"); v != nil {
			capacity = *v
		}
		annotation := stringProp(f, "annotation_text")
		transformers = append(transformers, &model.Transformer{
			ID:             id,
			Position:       pos,
			CapacityKVA:    capacity,
			AnnotationText: annotation,
		})

		if HasOverheadWireMarker(annotation) {
			fromID := stringProp(f, "lv_from_pole_id")
			toID := stringProp(f, "lv_to_pole_id")
			if fromID == "" || toID == "" {
				continue // no endpoints to join; nothing to synthesize
			}
			fromPole, ok := poleByID[fromID]
			if !ok {
				diag.drop("transformer", "synthetic LV line for "+id+" references unknown pole "+fromID)
				continue
			}
			toPole, ok := poleByID[toID]
			if !ok {
				diag.drop("transformer", "synthetic LV line for "+id+" references unknown pole "+toID)
				continue
			}
			synthetic = append(synthetic, &model.Line{
				ID:         id + "-synthetic-lv",
				Vertices:   []geo.Point{fromPole.Position, toPole.Position},
				FromPoleID: fromID,
				ToPoleID:   toID,
				LineType:   model.LineTypeLV,
				PhaseClass: model.PhaseSingle,
				WireSpec:   DecodeWireSpec("OW", stringProp(f, "lv_cross_section_code")),
			})
		}
	}
	return transformers, synthetic
}

func normalizeRoads(fc *geojson.FeatureCollection, diag *Diagnostics) []*model.Road {
	if fc == nil {
		return nil
	}
	roads := make([]*model.Road, 0, len(fc.Features))
	for _, f := range fc.Features {
		id, ok := featureID(f)
		if !ok {
			diag.drop("road", "missing id")
			continue
		}
		verts, ok := polylineFromGeometry(f.Geometry)
		if !ok || geo.PolylineLength(verts) == 0 {
			diag.drop("road", "malformed or zero-length geometry for "+id)
			continue
		}
		var class model.RoadClass
		switch stringProp(f, "road_class") {
		case "primary":
			class = model.RoadClassPrimary
		case "side":
			class = model.RoadClassSide
		case "alley":
			class = model.RoadClassAlley
		default:
			class = model.RoadClassUnknown
		}
		roads = append(roads, &model.Road{ID: id, Vertices: verts, Class: class})
	}
	return roads
}

func normalizeBuildings(fc *geojson.FeatureCollection, diag *Diagnostics) []*model.Building {
	if fc == nil {
		return nil
	}
	buildings := make([]*model.Building, 0, len(fc.Features))
	for _, f := range fc.Features {
		id, ok := featureID(f)
		if !ok {
			diag.drop("building", "missing id")
			continue
		}
		ring, ok := ringFromGeometry(f.Geometry)
		if !ok {
			diag.drop("building", "malformed geometry for "+id)
			continue
		}
		buildings = append(buildings, &model.Building{ID: id, Ring: ring})
	}
	return buildings
}

func normalizeRailways(fc *geojson.FeatureCollection, diag *Diagnostics) []*model.Railway {
	if fc == nil {
		return nil
	}
	out := make([]*model.Railway, 0, len(fc.Features))
	for _, f := range fc.Features {
		id, ok := featureID(f)
		if !ok {
			diag.drop("railway", "missing id")
			continue
		}
		verts, ok := polylineFromGeometry(f.Geometry)
		if !ok {
			diag.drop("railway", "malformed geometry for "+id)
			continue
		}
		out = append(out, &model.Railway{ID: id, Vertices: verts})
	}
	return out
}

func normalizeRivers(fc *geojson.FeatureCollection, diag *Diagnostics) []*model.River {
	if fc == nil {
		return nil
	}
	out := make([]*model.River, 0, len(fc.Features))
	for _, f := range fc.Features {
		id, ok := featureID(f)
		if !ok {
			diag.drop("river", "missing id")
			continue
		}
		verts, ok := polylineFromGeometry(f.Geometry)
		if !ok {
			diag.drop("river", "malformed geometry for "+id)
			continue
		}
		out = append(out, &model.River{ID: id, Vertices: verts})
	}
	return out
}

// annotateAdjacency implements spec §4.1's "pole-to-line adjacency" pass:
// after Lines are produced, each Pole is annotated with has_hv, has_lv and
// is_three_phase_connected by scanning incident lines.
func annotateAdjacency(poles []*model.Pole, lines []*model.Line) {
	byID := lo.SliceToMap(poles, func(p *model.Pole) (string, *model.Pole) { return p.ID, p })

	for _, l := range lines {
		for _, poleID := range []string{l.FromPoleID, l.ToPoleID} {
			if poleID == "" {
				continue
			}
			p, ok := byID[poleID]
			if !ok {
				continue
			}
			switch l.LineType {
			case model.LineTypeHV:
				p.HasHV = true
				if l.PhaseClass == model.PhaseThree {
					p.IsThreePhaseConnected = true
				}
			case model.LineTypeLV:
				p.HasLV = true
			}
		}
	}

	// Re-resolve voltage class for poles whose only HV evidence was
	// adjacency (no authoritative numeric field, no "H" form code).
	for _, p := range poles {
		if p.VoltageClass == model.VoltageLV && p.HasHV {
			p.VoltageClass = model.VoltageHV
		}
	}
}
