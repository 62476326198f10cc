package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Grid describes the fixed weekly slot lattice timetables are laid out on.
// Slots are coordinates on the grid; they are never created or destroyed.
type Grid struct {
	Days        int
	SlotsPerDay int
	SlotMinutes int
	DayStart    string
}

// Slot identifies one cell of the grid: (weekday, slot index), both 1-based.
// Day 1 is Monday.
type Slot struct {
	Day   int
	Index int
}

// DefaultGrid is the common 5-day, 8-hour teaching week.
func DefaultGrid() Grid {
	return Grid{Days: 5, SlotsPerDay: 8, SlotMinutes: 60, DayStart: "08:00"}
}

// Contains reports whether the slot falls inside the grid.
func (g Grid) Contains(s Slot) bool {
	return s.Day >= 1 && s.Day <= g.Days && s.Index >= 1 && s.Index <= g.SlotsPerDay
}

// Slots enumerates every slot in day-major order.
func (g Grid) Slots() []Slot {
	out := make([]Slot, 0, g.Days*g.SlotsPerDay)
	for day := 1; day <= g.Days; day++ {
		for idx := 1; idx <= g.SlotsPerDay; idx++ {
			out = append(out, Slot{Day: day, Index: idx})
		}
	}
	return out
}

// TimeLabel renders a slot index as the wall-clock start time, e.g. "09:00".
func (g Grid) TimeLabel(index int) string {
	h, m := g.startMinutes()
	total := h*60 + m + (index-1)*g.SlotMinutes
	return fmt.Sprintf("%02d:%02d", (total/60)%24, total%60)
}

// IndexForLabel resolves a wall-clock start time back to a slot index.
// Returns 0 when the label does not land on a grid slot.
func (g Grid) IndexForLabel(label string) int {
	parts := strings.SplitN(strings.TrimSpace(label), ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0
	}
	sh, sm := g.startMinutes()
	offset := (h*60 + m) - (sh*60 + sm)
	if offset < 0 || g.SlotMinutes == 0 || offset%g.SlotMinutes != 0 {
		return 0
	}
	idx := offset/g.SlotMinutes + 1
	if idx < 1 || idx > g.SlotsPerDay {
		return 0
	}
	return idx
}

// MorningSlots returns how many leading slots of a day start before noon.
func (g Grid) MorningSlots() int {
	h, m := g.startMinutes()
	start := h*60 + m
	count := 0
	for i := 1; i <= g.SlotsPerDay; i++ {
		if start+(i-1)*g.SlotMinutes < 12*60 {
			count++
		}
	}
	return count
}

// SlotHours converts a slot count into teaching hours.
func (g Grid) SlotHours(slots int) float64 {
	return float64(slots*g.SlotMinutes) / 60.0
}

func (g Grid) startMinutes() (int, int) {
	parts := strings.SplitN(g.DayStart, ":", 2)
	if len(parts) != 2 {
		return 8, 0
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 8, 0
	}
	return h, m
}

var dayIndexMap = map[int]string{
	1: "MONDAY",
	2: "TUESDAY",
	3: "WEDNESDAY",
	4: "THURSDAY",
	5: "FRIDAY",
	6: "SATURDAY",
	7: "SUNDAY",
}

var dayNameIndex = map[string]int{
	"MONDAY":    1,
	"TUESDAY":   2,
	"WEDNESDAY": 3,
	"THURSDAY":  4,
	"FRIDAY":    5,
	"SATURDAY":  6,
	"SUNDAY":    7,
}

// DayName maps a 1-based weekday index to its canonical name.
func DayName(day int) string {
	if name, ok := dayIndexMap[day]; ok {
		return name
	}
	return "MONDAY"
}

// DayIndex maps a weekday name (any case) to its 1-based index, 0 if unknown.
func DayIndex(name string) int {
	return dayNameIndex[strings.ToUpper(strings.TrimSpace(name))]
}
