package dto

import "time"

// GenerateTimetableRequest instructs the engine to build a fresh timetable.
// Every field is optional; zero values fall back to the configured defaults.
type GenerateTimetableRequest struct {
	AvoidBackToBack            *bool              `json:"avoidBackToBack"`
	RespectFacultyAvailability *bool              `json:"respectFacultyAvailability"`
	BalanceWorkload            *bool              `json:"balanceWorkload"`
	PreferMorningSlots         *bool              `json:"preferMorningSlots"`
	MaxConsecutiveHours        *int               `json:"maxConsecutiveHours" validate:"omitempty,min=0,max=12"`
	BreakDurationMinutes       *int               `json:"breakDurationMinutes" validate:"omitempty,min=0,max=240"`
	Weights                    map[string]float64 `json:"weights"`
	Seed                       *int64             `json:"seed"`
}

// MoveAssignmentRequest relocates one assignment to a target cell, swapping
// with any occupant.
type MoveAssignmentRequest struct {
	AssignmentID string `json:"assignmentId" validate:"required"`
	Day          string `json:"day" validate:"required"`
	Time         string `json:"time" validate:"required"`
}

// SlotRecord is the serialized shape of one placed assignment.
type SlotRecord struct {
	ID         string `json:"id"`
	CourseID   string `json:"courseId"`
	FacultyID  string `json:"facultyId"`
	RoomID     string `json:"roomId"`
	IsConflict bool   `json:"isConflict"`
}

// SerializedWeek maps weekday name to time label to the occupying record.
// Empty cells are absent, never null entries.
type SerializedWeek = map[string]map[string]SlotRecord

// ViolationRecord describes one hard-constraint violation in responses.
type ViolationRecord struct {
	Constraint    string   `json:"constraint"`
	Message       string   `json:"message"`
	AssignmentIDs []string `json:"assignmentIds"`
}

// ConflictSummary aggregates the detector's report for API responses.
type ConflictSummary struct {
	HardViolations []ViolationRecord `json:"hardViolations"`
	SoftPenalty    float64           `json:"softPenalty"`
}

// TimetableResponse is the active timetable plus its conflict state.
type TimetableResponse struct {
	Week      SerializedWeek  `json:"week"`
	Conflicts ConflictSummary `json:"conflicts"`
	Version   int             `json:"version,omitempty"`
}

// MoveResponse returns the applied move and the refreshed conflict state.
type MoveResponse struct {
	MovedID   string          `json:"movedId"`
	SwappedID string          `json:"swappedId,omitempty"`
	From      SlotAddress     `json:"from"`
	To        SlotAddress     `json:"to"`
	Week      SerializedWeek  `json:"week"`
	Conflicts ConflictSummary `json:"conflicts"`
}

// SlotAddress names one grid cell in API responses.
type SlotAddress struct {
	Day  string `json:"day"`
	Time string `json:"time"`
}

// UnplacedBlockRecord describes one block the generator could not place.
type UnplacedBlockRecord struct {
	CourseID   string `json:"courseId"`
	CourseCode string `json:"courseCode"`
	Kind       string `json:"kind"`
	Ordinal    int    `json:"ordinal"`
	Reason     string `json:"reason"`
}

// GenerationFailureDetail is surfaced through the status endpoint when a
// generation run exhausts its search without a complete schedule.
type GenerationFailureDetail struct {
	Unplaced    []UnplacedBlockRecord `json:"unplaced"`
	Constraints []string              `json:"constraints"`
}

// GenerationStatusResponse reports the state of the generation job.
type GenerationStatusResponse struct {
	State       string                   `json:"state"`
	StartedAt   *time.Time               `json:"startedAt,omitempty"`
	FinishedAt  *time.Time               `json:"finishedAt,omitempty"`
	Backtracks  int                      `json:"backtracks,omitempty"`
	RepairMoves int                      `json:"repairMoves,omitempty"`
	Penalty     float64                  `json:"penalty,omitempty"`
	Error       string                   `json:"error,omitempty"`
	Failure     *GenerationFailureDetail `json:"failure,omitempty"`
}
