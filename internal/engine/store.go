package engine

import "sync"

// MoveResult carries the outcome of one applied move: the structural delta
// and the fresh conflict report covering the post-move schedule.
type MoveResult struct {
	Delta  *Delta
	Report *Report
}

// Store is the single authority over the working schedule. All reads hand out
// clones so callers never observe a half-applied mutation, and moves arriving
// while a generation is in flight block until it settles rather than racing
// the solver's replacement.
type Store struct {
	mu   sync.Mutex
	cond *sync.Cond

	detector *Detector
	roster   *Roster
	schedule *Schedule
	report   *Report

	generating bool
}

// NewStore creates a store that evaluates schedules with the given detector
// against the given roster.
func NewStore(detector *Detector, roster *Roster) *Store {
	s := &Store{detector: detector, roster: roster}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// SetRoster swaps the reference data and re-evaluates the current schedule
// against it. Used after CRUD edits to courses, faculty, or rooms.
func (s *Store) SetRoster(roster *Roster) *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waitIdle()
	s.roster = roster
	if s.schedule != nil {
		s.report = s.detector.Detect(s.schedule, s.roster)
		s.applyFlags()
	}
	return s.report
}

// Replace installs a freshly generated schedule, runs a full detection pass,
// and returns the clone and report. A nil schedule clears the store.
func (s *Store) Replace(schedule *Schedule) (*Schedule, *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waitIdle()
	return s.replaceLocked(schedule)
}

func (s *Store) replaceLocked(schedule *Schedule) (*Schedule, *Report) {
	if schedule == nil {
		s.schedule = nil
		s.report = nil
		return nil, nil
	}
	s.schedule = schedule.Clone()
	s.report = s.detector.Detect(s.schedule, s.roster)
	s.applyFlags()
	return s.schedule.Clone(), s.report
}

// Move applies a single drag-and-drop edit. Structural errors (unknown id,
// slot outside the grid) reject the move with the schedule untouched; a move
// that lands on an occupied slot swaps the two assignments. Conflicts never
// block the move, they are reported and flagged on the stored assignments.
// If a generation is running the move waits for it to finish.
func (s *Store) Move(id string, to Slot) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waitIdle()

	if s.schedule == nil {
		return nil, ErrNoSchedule
	}
	delta, err := s.schedule.Move(id, to)
	if err != nil {
		return nil, err
	}
	s.report = s.detector.DetectDelta(s.report, s.schedule, s.roster, *delta)
	s.applyFlags()
	return &MoveResult{Delta: delta, Report: s.report}, nil
}

// Snapshot returns a clone of the current schedule and its report. Both are
// nil when no schedule is loaded.
func (s *Store) Snapshot() (*Schedule, *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schedule == nil {
		return nil, nil
	}
	return s.schedule.Clone(), s.report
}

// BeginGeneration marks the store busy. Moves arriving while busy queue up
// behind the generation instead of failing. Returns ErrGenerationInFlight if
// a generation is already running.
func (s *Store) BeginGeneration() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generating {
		return ErrGenerationInFlight
	}
	s.generating = true
	return nil
}

// EndGeneration installs the generated schedule and releases queued moves.
// A nil schedule means the generation was cancelled or failed; the previous
// schedule stays in place.
func (s *Store) EndGeneration(schedule *Schedule) (*Schedule, *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false
	defer s.cond.Broadcast()
	if schedule == nil {
		if s.schedule == nil {
			return nil, nil
		}
		return s.schedule.Clone(), s.report
	}
	return s.replaceLocked(schedule)
}

// Generating reports whether a generation is currently in flight.
func (s *Store) Generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

// waitIdle blocks the caller (holding mu) until no generation is in flight.
func (s *Store) waitIdle() {
	for s.generating {
		s.cond.Wait()
	}
}

// applyFlags mirrors the report's conflict set onto the stored assignments so
// serialized views carry per-assignment conflict markers.
func (s *Store) applyFlags() {
	if s.schedule == nil || s.report == nil {
		return
	}
	for _, a := range s.schedule.Assignments() {
		a.Conflict = s.report.Conflicted(a.ID)
	}
}
