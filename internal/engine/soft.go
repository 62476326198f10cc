package engine

import "sort"

// backToBack penalizes adjacent teaching pairs for the same faculty member.
// With a configured break duration, pairs separated by less than the break
// are penalized as well.
type backToBack struct {
	grid         Grid
	breakMinutes int
}

func (backToBack) Name() string { return ConstraintBackToBack }

func (c backToBack) Penalty(s *Schedule, r *Roster) float64 {
	type key struct {
		fac string
		day int
	}
	byDay := make(map[key][]int)
	for _, a := range s.Assignments() {
		k := key{fac: a.FacultyID, day: a.Slot.Day}
		byDay[k] = append(byDay[k], a.Slot.Index)
	}

	minGapSlots := 1
	if c.breakMinutes > 0 && c.grid.SlotMinutes > 0 {
		needed := (c.breakMinutes + c.grid.SlotMinutes - 1) / c.grid.SlotMinutes
		if needed > minGapSlots {
			minGapSlots = needed
		}
	}

	var penalty float64
	for _, indices := range byDay {
		sort.Ints(indices)
		for i := 0; i < len(indices)-1; i++ {
			gap := indices[i+1] - indices[i] - 1
			if gap < minGapSlots {
				penalty++
			}
		}
	}
	return penalty
}

// workloadBalance penalizes uneven distribution of a faculty member's load
// across weekdays using per-day count variance.
type workloadBalance struct {
	grid Grid
}

func (workloadBalance) Name() string { return ConstraintWorkloadBalance }

func (c workloadBalance) Penalty(s *Schedule, r *Roster) float64 {
	perFaculty := make(map[string]map[int]int)
	for _, a := range s.Assignments() {
		if perFaculty[a.FacultyID] == nil {
			perFaculty[a.FacultyID] = make(map[int]int)
		}
		perFaculty[a.FacultyID][a.Slot.Day]++
	}

	var penalty float64
	for _, days := range perFaculty {
		total := 0
		for _, n := range days {
			total += n
		}
		mean := float64(total) / float64(c.grid.Days)
		var variance float64
		for day := 1; day <= c.grid.Days; day++ {
			diff := float64(days[day]) - mean
			variance += diff * diff
		}
		penalty += variance / float64(c.grid.Days)
	}
	return penalty
}

// morningPreference penalizes each assignment placed after the morning block.
type morningPreference struct {
	grid Grid
}

func (morningPreference) Name() string { return ConstraintMorningPreference }

func (c morningPreference) Penalty(s *Schedule, r *Roster) float64 {
	morning := c.grid.MorningSlots()
	var penalty float64
	for _, a := range s.Assignments() {
		if a.Slot.Index > morning {
			penalty++
		}
	}
	return penalty
}

// exclusionWindow penalizes placements inside special-schedule windows for the
// course groups they name.
type exclusionWindow struct{}

func (exclusionWindow) Name() string { return ConstraintExclusionWindow }

func (exclusionWindow) Penalty(s *Schedule, r *Roster) float64 {
	if len(r.Exclusions) == 0 {
		return 0
	}
	var penalty float64
	for _, a := range s.Assignments() {
		course := r.Courses[a.CourseID]
		if course == nil {
			continue
		}
		for _, window := range r.Exclusions {
			if window.Covers(course.Group, a.Slot.Day) {
				penalty++
			}
		}
	}
	return penalty
}
