package engine

import "sort"

// Constraint names. Catalog weights and options refer to them.
const (
	ConstraintFacultyClash        = "faculty-clash"
	ConstraintRoomClash           = "room-clash"
	ConstraintFacultyAvailability = "faculty-availability"
	ConstraintRoomCapacity        = "room-capacity"
	ConstraintFacultyWeeklyLoad   = "faculty-weekly-load"
	ConstraintCourseCoverage      = "course-coverage"
	ConstraintMaxConsecutive      = "max-consecutive"
	ConstraintBackToBack          = "back-to-back"
	ConstraintWorkloadBalance     = "workload-balance"
	ConstraintMorningPreference   = "morning-preference"
	ConstraintExclusionWindow     = "exclusion-window"
)

// Violation records one failed hard constraint and the slots it involves.
type Violation struct {
	Constraint    string
	Slots         []Slot
	AssignmentIDs []string
	Message       string
}

// Scope narrows re-evaluation to the assignments a single move could have
// affected: the touched days plus everything sharing a faculty or room with
// the moved pair. A zero Scope with All set means a full pass.
type Scope struct {
	All     bool
	Days    map[int]bool
	Faculty map[string]bool
	Rooms   map[string]bool
}

// FullScope covers every assignment.
func FullScope() Scope { return Scope{All: true} }

// Includes reports whether the assignment falls inside the scope.
func (sc Scope) Includes(a *Assignment) bool {
	if sc.All {
		return true
	}
	if sc.Days[a.Slot.Day] {
		return true
	}
	if sc.Faculty[a.FacultyID] {
		return true
	}
	if sc.Rooms[a.RoomID] {
		return true
	}
	return false
}

// HardConstraint is a predicate that must hold in any accepted schedule.
// Incremental constraints can be re-evaluated against a Scope; the others
// require a full pass regardless of the delta.
type HardConstraint interface {
	Name() string
	Incremental() bool
	Evaluate(s *Schedule, r *Roster, scope Scope) []Violation
}

// SoftConstraint contributes a non-negative penalty used for ranking and
// generation, never surfaced as a per-slot flag.
type SoftConstraint interface {
	Name() string
	Penalty(s *Schedule, r *Roster) float64
}

type weightedSoft struct {
	constraint SoftConstraint
	weight     float64
}

// Options mirrors the generation request surface: each field toggles or
// parameterises one catalog entry.
type Options struct {
	AvoidBackToBack            bool
	RespectFacultyAvailability bool
	BalanceWorkload            bool
	PreferMorningSlots         bool
	MaxConsecutiveHours        int
	BreakDurationMinutes       int
	Weights                    map[string]float64
}

// DefaultOptions enables the full catalog with conservative limits.
func DefaultOptions() Options {
	return Options{
		AvoidBackToBack:            true,
		RespectFacultyAvailability: true,
		BalanceWorkload:            true,
		PreferMorningSlots:         false,
		MaxConsecutiveHours:        3,
		BreakDurationMinutes:       0,
	}
}

// Default soft weights, overridable per request. Chosen so that an outright
// exclusion hit outranks back-to-back pressure, which outranks balance drift.
var defaultWeights = map[string]float64{
	ConstraintBackToBack:        4,
	ConstraintExclusionWindow:   3,
	ConstraintWorkloadBalance:   2,
	ConstraintMorningPreference: 1,
}

func (o Options) weight(name string) float64 {
	if o.Weights != nil {
		if w, ok := o.Weights[name]; ok && w >= 0 {
			return w
		}
	}
	return defaultWeights[name]
}

// Catalog is the fixed, option-driven set of constraints a schedule is
// evaluated against.
type Catalog struct {
	hard []HardConstraint
	soft []weightedSoft
	opts Options
}

// NewCatalog assembles the constraint set for the given options.
func NewCatalog(grid Grid, opts Options) *Catalog {
	c := &Catalog{opts: opts}

	c.hard = append(c.hard,
		&facultyClash{},
		&roomClash{},
		&roomCapacity{},
		&facultyWeeklyLoad{grid: grid},
		&courseCoverage{grid: grid},
	)
	if opts.RespectFacultyAvailability {
		c.hard = append(c.hard, &facultyAvailability{})
	}
	if opts.MaxConsecutiveHours > 0 {
		limit := hourBlocks(opts.MaxConsecutiveHours, grid.SlotMinutes)
		c.hard = append(c.hard, &maxConsecutive{limitSlots: limit})
	}

	if opts.AvoidBackToBack {
		c.soft = append(c.soft, weightedSoft{
			constraint: &backToBack{grid: grid, breakMinutes: opts.BreakDurationMinutes},
			weight:     opts.weight(ConstraintBackToBack),
		})
	}
	if opts.BalanceWorkload {
		c.soft = append(c.soft, weightedSoft{
			constraint: &workloadBalance{grid: grid},
			weight:     opts.weight(ConstraintWorkloadBalance),
		})
	}
	if opts.PreferMorningSlots {
		c.soft = append(c.soft, weightedSoft{
			constraint: &morningPreference{grid: grid},
			weight:     opts.weight(ConstraintMorningPreference),
		})
	}
	c.soft = append(c.soft, weightedSoft{
		constraint: &exclusionWindow{},
		weight:     opts.weight(ConstraintExclusionWindow),
	})

	return c
}

// Options returns the options the catalog was built from.
func (c *Catalog) Options() Options { return c.opts }

// HardNames lists the active hard constraints in evaluation order.
func (c *Catalog) HardNames() []string {
	names := make([]string, 0, len(c.hard))
	for _, h := range c.hard {
		names = append(names, h.Name())
	}
	return names
}

// SoftPenalty computes the weighted aggregate penalty for the schedule.
func (c *Catalog) SoftPenalty(s *Schedule, r *Roster) float64 {
	var total float64
	for _, ws := range c.soft {
		total += ws.weight * ws.constraint.Penalty(s, r)
	}
	return total
}

func sortViolations(violations []Violation) {
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].Constraint != violations[j].Constraint {
			return violations[i].Constraint < violations[j].Constraint
		}
		return violations[i].Message < violations[j].Message
	})
}
