package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"
)

// Budget bounds the search so generation always terminates.
type Budget struct {
	MaxBacktracks  int
	RepairAttempts int
	Seed           int64
}

// DefaultBudget is a practical bound for institutional timetables.
func DefaultBudget() Budget {
	return Budget{MaxBacktracks: 20000, RepairAttempts: 400, Seed: 1}
}

// UnplacedBlock names one course-hour block the search could not place.
type UnplacedBlock struct {
	CourseID   string
	CourseCode string
	Kind       BlockKind
	Ordinal    int
	Reason     string
}

// GenerationFailure reports infeasibility: the hard constraints that starved
// the search and every block left unplaced. The solver never silently drops a
// requirement.
type GenerationFailure struct {
	Unplaced    []UnplacedBlock
	Constraints []string
}

// Error implements the error interface.
func (f *GenerationFailure) Error() string {
	return fmt.Sprintf("generation infeasible: %d course-hour blocks unplaced (constraints: %s)",
		len(f.Unplaced), strings.Join(f.Constraints, ", "))
}

// Stats summarises one generation run.
type Stats struct {
	Backtracks   int
	RepairMoves  int
	Penalty      float64
	PlacedBlocks int
	TotalBlocks  int
	Elapsed      time.Duration
}

// Result carries the outcome of Generate. Exactly one of Schedule or Failure
// is set; a partial schedule accompanying a failure is exposed separately so
// callers can inspect it without mistaking it for a complete timetable.
type Result struct {
	Schedule *Schedule
	Partial  *Schedule
	Failure  *GenerationFailure
	Stats    Stats
}

type triple struct {
	slot      Slot
	roomID    string
	facultyID string
	penalty   float64
	jitter    float64
}

type blockVar struct {
	id         string
	course     *Course
	kind       BlockKind
	ordinal    int
	candidates []triple
	chosen     int
	reason     string
}

type searchState struct {
	grid         Grid
	roster       *Roster
	slotTaken    map[Slot]bool
	facultyTaken map[Slot]map[string]bool
	roomTaken    map[Slot]map[string]bool
	facultySlots map[string]int
	facultyDays  map[string]map[int]map[int]bool
	maxRunSlots  int
}

// Generate assigns every course-hour block to a (slot, room, faculty) triple
// honoring the hard constraints and minimizing soft penalty. Each block is a
// search variable; its domain is the statically compatible triples. Search is
// backtracking with most-constrained-first variable order, cheapest-first
// value order, forward checking, and a bounded local-search repair pass. The
// seed only breaks ties between equally ranked choices, so identical inputs
// and seed reproduce the identical schedule.
func Generate(ctx context.Context, grid Grid, roster *Roster, catalog *Catalog, budget Budget) (*Result, error) {
	start := time.Now()
	if err := roster.Validate(); err != nil {
		return nil, err
	}
	if budget.MaxBacktracks <= 0 {
		budget.MaxBacktracks = DefaultBudget().MaxBacktracks
	}

	rng := rand.New(rand.NewSource(budget.Seed))
	opts := catalog.Options()
	blocks := buildBlocks(grid, roster)
	state := newSearchState(grid, roster, opts)
	buildDomains(grid, roster, opts, blocks, rng)

	// blocks with an empty domain are hopeless; the rest are still searched so
	// an infeasibility report comes with the best partial schedule available
	var searchable []*blockVar
	deadEnds := 0
	for _, b := range blocks {
		if len(b.candidates) == 0 {
			deadEnds++
		} else {
			searchable = append(searchable, b)
		}
	}

	backtracks := 0
	solved := search(ctx, searchable, state, budget.MaxBacktracks, &backtracks)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schedule := NewSchedule(grid)
	for _, b := range blocks {
		if b.chosen < 0 {
			continue
		}
		t := b.candidates[b.chosen]
		_ = schedule.Place(&Assignment{
			ID:        b.id,
			CourseID:  b.course.ID,
			FacultyID: t.facultyID,
			RoomID:    t.roomID,
			Kind:      b.kind,
			Slot:      t.slot,
		})
	}

	stats := Stats{
		Backtracks:   backtracks,
		PlacedBlocks: schedule.Len(),
		TotalBlocks:  len(blocks),
	}

	if !solved || deadEnds > 0 {
		failure := &GenerationFailure{}
		for _, b := range blocks {
			if b.chosen >= 0 {
				continue
			}
			reason := b.reason
			if reason == "" {
				reason = "search budget exhausted before a consistent placement was found"
			}
			failure.Unplaced = append(failure.Unplaced, UnplacedBlock{
				CourseID:   b.course.ID,
				CourseCode: b.course.Code,
				Kind:       b.kind,
				Ordinal:    b.ordinal,
				Reason:     reason,
			})
		}
		failure.Constraints = starvedConstraints(grid, roster, catalog)
		stats.Elapsed = time.Since(start)
		return &Result{Partial: schedule, Failure: failure, Stats: stats}, nil
	}

	stats.RepairMoves = repair(ctx, schedule, roster, catalog, budget, rng)
	stats.Penalty = catalog.SoftPenalty(schedule, roster)
	stats.Elapsed = time.Since(start)
	return &Result{Schedule: schedule, Stats: stats}, nil
}

func buildBlocks(grid Grid, roster *Roster) []*blockVar {
	courseIDs := make([]string, 0, len(roster.Courses))
	for id := range roster.Courses {
		courseIDs = append(courseIDs, id)
	}
	sort.Slice(courseIDs, func(i, j int) bool {
		return roster.Courses[courseIDs[i]].Code < roster.Courses[courseIDs[j]].Code
	})

	var blocks []*blockVar
	for _, id := range courseIDs {
		course := roster.Courses[id]
		for n := 1; n <= course.TheoryBlocks(grid.SlotMinutes); n++ {
			blocks = append(blocks, &blockVar{
				id:      fmt.Sprintf("%s-theory-%d", course.ID, n),
				course:  course,
				kind:    BlockTheory,
				ordinal: n,
				chosen:  -1,
			})
		}
		for n := 1; n <= course.PracticalBlocks(grid.SlotMinutes); n++ {
			blocks = append(blocks, &blockVar{
				id:      fmt.Sprintf("%s-practical-%d", course.ID, n),
				course:  course,
				kind:    BlockPractical,
				ordinal: n,
				chosen:  -1,
			})
		}
	}
	return blocks
}

func roomCompatible(kind BlockKind, room *Room) bool {
	if kind == BlockPractical {
		return room.Category == RoomLab
	}
	return room.Category != RoomLab
}

// buildDomains computes each block's statically compatible triples, attaching
// a soft-penalty estimate for value ordering and a seeded jitter for
// deterministic tie-breaking.
func buildDomains(grid Grid, roster *Roster, opts Options, blocks []*blockVar, rng *rand.Rand) {
	facultyIDs := sortedFacultyIDs(roster)
	roomIDs := sortedRoomIDs(roster)
	morning := grid.MorningSlots()

	for _, b := range blocks {
		var eligibleFaculty []string
		tagged := 0
		for _, fid := range facultyIDs {
			fac := roster.Faculty[fid]
			if !fac.HasTag(b.course.RequiredTag) {
				continue
			}
			tagged++
			// a zero-hour cap means the faculty member teaches nothing
			if fac.MaxWeeklyHours == 0 {
				continue
			}
			eligibleFaculty = append(eligibleFaculty, fid)
		}
		if len(eligibleFaculty) == 0 {
			if tagged > 0 {
				b.reason = fmt.Sprintf("every faculty with expertise tag %q has a zero weekly hour cap", b.course.RequiredTag)
			} else {
				b.reason = fmt.Sprintf("no faculty carries expertise tag %q", b.course.RequiredTag)
			}
			continue
		}

		var eligibleRooms []string
		for _, rid := range roomIDs {
			room := roster.Rooms[rid]
			if !roomCompatible(b.kind, room) {
				continue
			}
			if b.course.ExpectedSize > 0 && room.Capacity < b.course.ExpectedSize {
				continue
			}
			eligibleRooms = append(eligibleRooms, rid)
		}
		if len(eligibleRooms) == 0 {
			b.reason = fmt.Sprintf("no %s room seats %d students", strings.ToLower(string(b.kind)), b.course.ExpectedSize)
			continue
		}

		hadSlot := false
		for _, slot := range grid.Slots() {
			for _, fid := range eligibleFaculty {
				fac := roster.Faculty[fid]
				if opts.RespectFacultyAvailability && !fac.Available(slot) {
					continue
				}
				if _, busy := roster.FacultyCommitted(slot, fid); busy {
					continue
				}
				hadSlot = true
				for _, rid := range eligibleRooms {
					if _, busy := roster.RoomCommitted(slot, rid); busy {
						continue
					}
					penalty := 0.0
					if opts.PreferMorningSlots && slot.Index > morning {
						penalty += opts.weight(ConstraintMorningPreference)
					}
					for _, window := range roster.Exclusions {
						if window.Covers(b.course.Group, slot.Day) {
							penalty += opts.weight(ConstraintExclusionWindow)
						}
					}
					b.candidates = append(b.candidates, triple{
						slot:      slot,
						roomID:    rid,
						facultyID: fid,
						penalty:   penalty,
						jitter:    rng.Float64(),
					})
				}
			}
		}
		if len(b.candidates) == 0 && !hadSlot {
			b.reason = "no slot matches the eligible faculty's availability"
		}

		sort.Slice(b.candidates, func(i, j int) bool {
			if b.candidates[i].penalty != b.candidates[j].penalty {
				return b.candidates[i].penalty < b.candidates[j].penalty
			}
			return b.candidates[i].jitter < b.candidates[j].jitter
		})
	}
}

func newSearchState(grid Grid, roster *Roster, opts Options) *searchState {
	maxRun := 0
	if opts.MaxConsecutiveHours > 0 {
		maxRun = hourBlocks(opts.MaxConsecutiveHours, grid.SlotMinutes)
	}
	return &searchState{
		grid:         grid,
		roster:       roster,
		slotTaken:    make(map[Slot]bool),
		facultyTaken: make(map[Slot]map[string]bool),
		roomTaken:    make(map[Slot]map[string]bool),
		facultySlots: make(map[string]int),
		facultyDays:  make(map[string]map[int]map[int]bool),
		maxRunSlots:  maxRun,
	}
}

func (st *searchState) feasible(b *blockVar, t triple) bool {
	if st.slotTaken[t.slot] {
		return false
	}
	if st.facultyTaken[t.slot][t.facultyID] {
		return false
	}
	if st.roomTaken[t.slot][t.roomID] {
		return false
	}
	fac := st.roster.Faculty[t.facultyID]
	hours := st.grid.SlotHours(st.facultySlots[t.facultyID] + 1)
	if hours > float64(fac.MaxWeeklyHours) {
		return false
	}
	if st.maxRunSlots > 0 {
		// the run this slot would join: contiguous occupied indices on
		// either side of it for the same faculty and day
		occupied := st.facultyDays[t.facultyID][t.slot.Day]
		run := 1
		for i := t.slot.Index - 1; occupied[i]; i-- {
			run++
		}
		for i := t.slot.Index + 1; occupied[i]; i++ {
			run++
		}
		if run > st.maxRunSlots {
			return false
		}
	}
	return true
}

func (st *searchState) apply(t triple) {
	st.slotTaken[t.slot] = true
	if st.facultyTaken[t.slot] == nil {
		st.facultyTaken[t.slot] = make(map[string]bool)
	}
	st.facultyTaken[t.slot][t.facultyID] = true
	if st.roomTaken[t.slot] == nil {
		st.roomTaken[t.slot] = make(map[string]bool)
	}
	st.roomTaken[t.slot][t.roomID] = true
	st.facultySlots[t.facultyID]++
	days := st.facultyDays[t.facultyID]
	if days == nil {
		days = make(map[int]map[int]bool)
		st.facultyDays[t.facultyID] = days
	}
	if days[t.slot.Day] == nil {
		days[t.slot.Day] = make(map[int]bool)
	}
	days[t.slot.Day][t.slot.Index] = true
}

func (st *searchState) undo(t triple) {
	delete(st.slotTaken, t.slot)
	delete(st.facultyTaken[t.slot], t.facultyID)
	delete(st.roomTaken[t.slot], t.roomID)
	st.facultySlots[t.facultyID]--
	delete(st.facultyDays[t.facultyID][t.slot.Day], t.slot.Index)
}

func (st *searchState) liveCount(b *blockVar) int {
	count := 0
	for _, t := range b.candidates {
		if st.feasible(b, t) {
			count++
		}
	}
	return count
}

// search is plain chronological backtracking with forward checking: after
// each tentative placement every open variable must retain a live candidate,
// otherwise the placement is rejected immediately.
func search(ctx context.Context, blocks []*blockVar, state *searchState, maxBacktracks int, backtracks *int) bool {
	next := pickVariable(blocks, state)
	if next == nil {
		return true
	}
	if ctx.Err() != nil {
		return false
	}

	for i, t := range next.candidates {
		if !state.feasible(next, t) {
			continue
		}
		state.apply(t)
		next.chosen = i

		if forwardCheck(blocks, state) && search(ctx, blocks, state, maxBacktracks, backtracks) {
			return true
		}

		state.undo(t)
		next.chosen = -1
		*backtracks++
		if *backtracks >= maxBacktracks {
			return false
		}
	}
	return false
}

// pickVariable returns the unassigned block with the fewest live candidates.
func pickVariable(blocks []*blockVar, state *searchState) *blockVar {
	var best *blockVar
	bestCount := 0
	for _, b := range blocks {
		if b.chosen >= 0 {
			continue
		}
		count := state.liveCount(b)
		if best == nil || count < bestCount {
			best = b
			bestCount = count
		}
	}
	return best
}

func forwardCheck(blocks []*blockVar, state *searchState) bool {
	for _, b := range blocks {
		if b.chosen >= 0 {
			continue
		}
		if state.liveCount(b) == 0 {
			return false
		}
	}
	return true
}

// repair runs a bounded pairwise descent on the soft penalty: candidate swaps
// and relocations are accepted only when they keep the schedule hard-feasible
// and strictly reduce the weighted penalty.
func repair(ctx context.Context, schedule *Schedule, roster *Roster, catalog *Catalog, budget Budget, rng *rand.Rand) int {
	if budget.RepairAttempts <= 0 {
		return 0
	}
	detector := NewDetector(catalog)
	assignments := schedule.Assignments()
	if len(assignments) < 2 {
		return 0
	}

	improved := 0
	penalty := catalog.SoftPenalty(schedule, roster)
	slots := schedule.Grid().Slots()

	for attempt := 0; attempt < budget.RepairAttempts; attempt++ {
		if ctx.Err() != nil {
			break
		}
		assignments = schedule.Assignments()
		a := assignments[rng.Intn(len(assignments))]
		target := slots[rng.Intn(len(slots))]
		if target == a.Slot {
			continue
		}

		from := a.Slot
		if _, err := schedule.Move(a.ID, target); err != nil {
			continue
		}

		report := detector.Detect(schedule, roster)
		newPenalty := catalog.SoftPenalty(schedule, roster)
		if report.HasHardViolations() || newPenalty >= penalty {
			// revert: moving back restores any swapped occupant too
			_, _ = schedule.Move(a.ID, from)
			continue
		}
		penalty = newPenalty
		improved++
	}
	return improved
}

// starvedConstraints names the hard constraints that most plausibly caused
// infeasibility, derived from aggregate supply versus demand.
func starvedConstraints(grid Grid, roster *Roster, catalog *Catalog) []string {
	demand := 0
	for _, c := range roster.Courses {
		demand += c.TheoryBlocks(grid.SlotMinutes) + c.PracticalBlocks(grid.SlotMinutes)
	}

	supply := 0
	for _, f := range roster.Faculty {
		available := 0
		for _, slot := range grid.Slots() {
			if f.Available(slot) {
				available++
			}
		}
		capSlots := hourBlocks(f.MaxWeeklyHours, grid.SlotMinutes)
		if capSlots < available {
			available = capSlots
		}
		supply += available
	}

	var names []string
	if supply < demand {
		names = append(names, ConstraintFacultyWeeklyLoad, ConstraintFacultyAvailability)
	}
	names = append(names, ConstraintFacultyClash, ConstraintRoomClash, ConstraintCourseCoverage)
	return dedupe(names, catalog.HardNames())
}

// dedupe keeps names in catalog order without duplicates.
func dedupe(names, ordered []string) []string {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []string
	for _, n := range ordered {
		if want[n] {
			out = append(out, n)
		}
	}
	return out
}

func sortedFacultyIDs(roster *Roster) []string {
	out := make([]string, 0, len(roster.Faculty))
	for id := range roster.Faculty {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func sortedRoomIDs(roster *Roster) []string {
	out := make([]string, 0, len(roster.Rooms))
	for id := range roster.Rooms {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
