package engine

// Report is the outcome of conflict detection: hard violations plus the
// aggregate weighted soft penalty. Reports are immutable snapshots; the store
// derives per-assignment conflict flags from them.
type Report struct {
	Violations []Violation
	Penalty    float64

	byConstraint map[string][]Violation
	flagged      map[string]bool
}

// Conflicted reports whether any hard violation involves the assignment.
func (r *Report) Conflicted(assignmentID string) bool {
	if r == nil {
		return false
	}
	return r.flagged[assignmentID]
}

// HasHardViolations reports whether any hard constraint failed.
func (r *Report) HasHardViolations() bool {
	return r != nil && len(r.Violations) > 0
}

// ViolationsFor returns the violations recorded for one constraint.
func (r *Report) ViolationsFor(name string) []Violation {
	if r == nil {
		return nil
	}
	return r.byConstraint[name]
}

// Detector evaluates a schedule against a catalog. Detection is synchronous
// and side-effect-free: the same schedule and roster always produce the same
// report.
type Detector struct {
	catalog *Catalog
}

// NewDetector builds a detector over the catalog.
func NewDetector(catalog *Catalog) *Detector {
	return &Detector{catalog: catalog}
}

// Catalog exposes the underlying constraint catalog.
func (d *Detector) Catalog() *Catalog { return d.catalog }

// Detect runs every constraint as a full pass.
func (d *Detector) Detect(s *Schedule, r *Roster) *Report {
	report := &Report{
		byConstraint: make(map[string][]Violation, len(d.catalog.hard)),
		flagged:      make(map[string]bool),
	}
	for _, h := range d.catalog.hard {
		vs := h.Evaluate(s, r, FullScope())
		report.byConstraint[h.Name()] = vs
		report.absorb(vs)
	}
	report.Penalty = d.catalog.SoftPenalty(s, r)
	return report
}

// DetectDelta re-validates after a single applied move. Constraints that can
// be evaluated incrementally are re-run only over the scope the move could
// have touched (the two days involved plus every slot sharing a faculty or
// room with the moved pair); their out-of-scope results are carried over
// from the prior report. Full-pass constraints are recomputed outright. The
// result is identical to a fresh Detect on the post-move schedule.
func (d *Detector) DetectDelta(prior *Report, s *Schedule, r *Roster, delta Delta) *Report {
	if prior == nil {
		return d.Detect(s, r)
	}

	scope := d.scopeFor(s, delta)
	report := &Report{
		byConstraint: make(map[string][]Violation, len(d.catalog.hard)),
		flagged:      make(map[string]bool),
	}

	for _, h := range d.catalog.hard {
		var vs []Violation
		if h.Incremental() {
			for _, v := range prior.byConstraint[h.Name()] {
				if !d.violationTouches(v, s, scope) {
					vs = append(vs, v)
				}
			}
			vs = append(vs, h.Evaluate(s, r, scope)...)
			sortViolations(vs)
		} else {
			vs = h.Evaluate(s, r, FullScope())
		}
		report.byConstraint[h.Name()] = vs
		report.absorb(vs)
	}

	// Soft passes are aggregate scores over at most a week of slots; they are
	// recomputed whole so the penalty never drifts from a full detection.
	report.Penalty = d.catalog.SoftPenalty(s, r)
	return report
}

func (d *Detector) scopeFor(s *Schedule, delta Delta) Scope {
	scope := Scope{
		Days:    map[int]bool{delta.From.Day: true, delta.To.Day: true},
		Faculty: make(map[string]bool),
		Rooms:   make(map[string]bool),
	}
	for _, id := range []string{delta.MovedID, delta.SwappedID} {
		if id == "" {
			continue
		}
		if a := s.Get(id); a != nil {
			scope.Faculty[a.FacultyID] = true
			scope.Rooms[a.RoomID] = true
		}
	}
	return scope
}

// violationTouches reports whether a prior violation involves any assignment
// or day inside the scope, meaning it must be recomputed rather than carried.
func (d *Detector) violationTouches(v Violation, s *Schedule, scope Scope) bool {
	for _, slot := range v.Slots {
		if scope.Days[slot.Day] {
			return true
		}
	}
	for _, id := range v.AssignmentIDs {
		a := s.Get(id)
		if a == nil || scope.Includes(a) {
			return true
		}
	}
	return false
}

func (r *Report) absorb(vs []Violation) {
	for _, v := range vs {
		r.Violations = append(r.Violations, v)
		for _, id := range v.AssignmentIDs {
			r.flagged[id] = true
		}
	}
}
