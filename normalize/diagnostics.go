package normalize

// Diagnostics counts data-level failures per spec §4.1/§7: malformed
// features are dropped and counted, never fatal to the request.
type Diagnostics struct {
	DroppedByKind  map[string]int `json:"dropped_by_kind"`
	DroppedReasons []string       `json:"dropped_reasons"`
}

// NewDiagnostics returns an empty Diagnostics.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{DroppedByKind: make(map[string]int)}
}

func (d *Diagnostics) drop(kind, reason string) {
	d.DroppedByKind[kind]++
	d.DroppedReasons = append(d.DroppedReasons, kind+": "+reason)
}
