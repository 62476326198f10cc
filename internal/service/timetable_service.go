package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/campusops/timetable-api/internal/dto"
	"github.com/campusops/timetable-api/internal/engine"
	"github.com/campusops/timetable-api/internal/models"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
	"github.com/campusops/timetable-api/pkg/jobs"
)

const (
	activeTimetableCacheKey = "timetable:active"
	exclusionHorizonDays    = 14
)

// Generation lifecycle states exposed through the status endpoint.
const (
	GenerationStateIdle       = "IDLE"
	GenerationStateRunning    = "RUNNING"
	GenerationStateSucceeded  = "SUCCEEDED"
	GenerationStateInfeasible = "INFEASIBLE"
	GenerationStateCancelled  = "CANCELLED"
	GenerationStateFailed     = "FAILED"
)

type courseLister interface {
	ListActive(ctx context.Context) ([]models.Course, error)
}

type facultyLister interface {
	ListActive(ctx context.Context) ([]models.Faculty, error)
}

type roomLister interface {
	ListActive(ctx context.Context) ([]models.Room, error)
}

type commitmentLister interface {
	ListAll(ctx context.Context) ([]models.Commitment, error)
}

type exclusionLister interface {
	ListOverlapping(ctx context.Context, from, to time.Time) ([]models.SpecialSchedule, error)
}

type timetableVersionRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, version *models.TimetableVersion) error
	ListVersions(ctx context.Context, limit int) ([]models.TimetableVersionMeta, error)
	FindByID(ctx context.Context, id string) (*models.TimetableVersion, error)
	FindActive(ctx context.Context) (*models.TimetableVersion, error)
	UpdateSnapshot(ctx context.Context, id string, snapshot types.JSONText, penalty float64, hardViolations int) error
	ActivateExclusive(ctx context.Context, id string) error
	PruneOldVersions(ctx context.Context, keep int) error
}

type timetableCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// TimetableRepos bundles the reference-data sources the generator reads.
type TimetableRepos struct {
	Courses     courseLister
	Faculty     facultyLister
	Rooms       roomLister
	Commitments commitmentLister
	Exclusions  exclusionLister
	Versions    timetableVersionRepository
}

// TimetableServiceConfig parameterises the grid, the search budget, and
// snapshot retention.
type TimetableServiceConfig struct {
	Grid         engine.Grid
	Budget       engine.Budget
	CacheTTL     time.Duration
	KeepVersions int
}

type generationJob struct {
	ctx     context.Context
	roster  *engine.Roster
	options engine.Options
	budget  engine.Budget
	userID  string
}

type generationState struct {
	state      string
	startedAt  time.Time
	finishedAt time.Time
	stats      engine.Stats
	err        string
	failure    *engine.GenerationFailure
}

// TimetableService is the orchestrator: it assembles the roster from
// reference data, runs generation off the request path, applies manual
// moves through the schedule store, and keeps database snapshots and the
// cache in step with the in-memory schedule.
type TimetableService struct {
	store   *engine.Store
	grid    engine.Grid
	budget  engine.Budget
	ttl     time.Duration
	keep    int
	repos   TimetableRepos
	cache   timetableCache
	metrics *MetricsService
	queue   *jobs.Queue

	validator *validator.Validate
	logger    *zap.Logger

	mu              sync.Mutex
	gen             generationState
	cancelGen       context.CancelFunc
	activeVersionID string
	activeVersion   int
}

// NewTimetableService wires the orchestrator and its generation queue.
func NewTimetableService(store *engine.Store, cfg TimetableServiceConfig, repos TimetableRepos, cache timetableCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.KeepVersions <= 0 {
		cfg.KeepVersions = 10
	}

	s := &TimetableService{
		store:     store,
		grid:      cfg.Grid,
		budget:    cfg.Budget,
		ttl:       cfg.CacheTTL,
		keep:      cfg.KeepVersions,
		repos:     repos,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		gen:       generationState{state: GenerationStateIdle},
	}
	s.queue = jobs.NewQueue("timetable-generation", s.runGeneration, jobs.QueueConfig{
		Workers: 1,
		Logger:  logger,
	})
	return s
}

// Start launches the generation worker.
func (s *TimetableService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the generation worker.
func (s *TimetableService) Stop() {
	s.queue.Stop()
}

// Generate validates the request, freezes the roster, and enqueues one
// generation run. Returns ErrGenerationBusy while another run is in flight.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest, userID string) (*dto.GenerationStatusResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation options")
	}

	roster, err := s.buildRoster(ctx)
	if err != nil {
		return nil, err
	}
	if err := roster.Validate(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "reference data fails engine invariants")
	}

	if err := s.store.BeginGeneration(); err != nil {
		return nil, appErrors.Clone(appErrors.ErrGenerationBusy, "a generation run is already in progress")
	}

	options := s.mergeOptions(req)
	budget := s.budget
	if req.Seed != nil {
		budget.Seed = *req.Seed
	}

	genCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.gen = generationState{state: GenerationStateRunning, startedAt: time.Now().UTC()}
	s.cancelGen = cancel
	s.mu.Unlock()

	job := jobs.Job{
		Type: "generate",
		Payload: &generationJob{
			ctx:     genCtx,
			roster:  roster,
			options: options,
			budget:  budget,
			userID:  userID,
		},
	}
	if err := s.queue.Enqueue(job); err != nil {
		cancel()
		s.store.EndGeneration(nil)
		s.mu.Lock()
		s.gen = generationState{state: GenerationStateFailed, err: err.Error(), finishedAt: time.Now().UTC()}
		s.cancelGen = nil
		s.mu.Unlock()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue generation")
	}

	resp := s.Status()
	return &resp, nil
}

// CancelGenerate aborts the in-flight generation run.
func (s *TimetableService) CancelGenerate(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancelGen
	running := s.gen.state == GenerationStateRunning
	s.mu.Unlock()
	if !running || cancel == nil {
		return appErrors.Clone(appErrors.ErrConflict, "no generation run in flight")
	}
	cancel()
	return nil
}

// Status reports the generation job's lifecycle state.
func (s *TimetableService) Status() dto.GenerationStatusResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := dto.GenerationStatusResponse{
		State:       s.gen.state,
		Backtracks:  s.gen.stats.Backtracks,
		RepairMoves: s.gen.stats.RepairMoves,
		Penalty:     s.gen.stats.Penalty,
		Error:       s.gen.err,
	}
	if !s.gen.startedAt.IsZero() {
		started := s.gen.startedAt
		resp.StartedAt = &started
	}
	if !s.gen.finishedAt.IsZero() {
		finished := s.gen.finishedAt
		resp.FinishedAt = &finished
	}
	if f := s.gen.failure; f != nil {
		detail := &dto.GenerationFailureDetail{Constraints: f.Constraints}
		for _, u := range f.Unplaced {
			detail.Unplaced = append(detail.Unplaced, dto.UnplacedBlockRecord{
				CourseID:   u.CourseID,
				CourseCode: u.CourseCode,
				Kind:       string(u.Kind),
				Ordinal:    u.Ordinal,
				Reason:     u.Reason,
			})
		}
		resp.Failure = detail
	}
	return resp
}

// GetTimetable returns the active serialized timetable with its conflict
// state, preferring cache, then the in-memory store, then the database.
func (s *TimetableService) GetTimetable(ctx context.Context) (*dto.TimetableResponse, error) {
	if s.cache != nil {
		started := time.Now()
		var cached dto.TimetableResponse
		if err := s.cache.Get(ctx, activeTimetableCacheKey, &cached); err == nil {
			s.metrics.RecordCacheOperation(true, time.Since(started))
			return &cached, nil
		}
		s.metrics.RecordCacheOperation(false, time.Since(started))
	}

	schedule, report := s.store.Snapshot()
	if schedule != nil {
		resp := s.serialize(schedule, report)
		s.writeCache(ctx, resp)
		return resp, nil
	}

	version, err := s.repos.Versions.FindActive(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active timetable")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active timetable")
	}

	var week dto.SerializedWeek
	if err := json.Unmarshal(version.Snapshot, &week); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "corrupt timetable snapshot")
	}
	resp := &dto.TimetableResponse{
		Week:      week,
		Conflicts: dto.ConflictSummary{SoftPenalty: version.Penalty},
		Version:   version.Version,
	}
	s.mu.Lock()
	s.activeVersionID = version.ID
	s.activeVersion = version.Version
	s.mu.Unlock()
	s.writeCache(ctx, resp)
	return resp, nil
}

// Move applies one manual relocation, swapping with any occupant, and
// synchronises the persisted snapshot and the cache with the result.
func (s *TimetableService) Move(ctx context.Context, req dto.MoveAssignmentRequest) (*dto.MoveResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload")
	}

	day := engine.DayIndex(req.Day)
	if day == 0 || day > s.grid.Days {
		s.metrics.RecordMove("rejected")
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", req.Day))
	}
	index := s.grid.IndexForLabel(req.Time)
	if index == 0 {
		s.metrics.RecordMove("rejected")
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("time %q does not start a slot", req.Time))
	}

	result, err := s.store.Move(req.AssignmentID, engine.Slot{Day: day, Index: index})
	if err != nil {
		s.metrics.RecordMove("rejected")
		switch err {
		case engine.ErrUnknownAssignment:
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		case engine.ErrNoSchedule:
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active timetable")
		case engine.ErrSlotOutOfGrid:
			return nil, appErrors.Clone(appErrors.ErrValidation, "target slot outside grid")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "move failed")
		}
	}
	s.metrics.RecordMove("applied")

	schedule, report := s.store.Snapshot()
	resp := s.serialize(schedule, report)
	s.metrics.SetScheduleQuality(len(report.Violations), report.Penalty)
	s.persistSnapshot(ctx, resp)
	s.writeCache(ctx, resp)

	move := &dto.MoveResponse{
		MovedID:   result.Delta.MovedID,
		SwappedID: result.Delta.SwappedID,
		From: dto.SlotAddress{
			Day:  engine.DayName(result.Delta.From.Day),
			Time: s.grid.TimeLabel(result.Delta.From.Index),
		},
		To: dto.SlotAddress{
			Day:  engine.DayName(result.Delta.To.Day),
			Time: s.grid.TimeLabel(result.Delta.To.Index),
		},
		Week:      resp.Week,
		Conflicts: resp.Conflicts,
	}
	return move, nil
}

// ListVersions returns persisted snapshot metadata, newest first.
func (s *TimetableService) ListVersions(ctx context.Context, limit int) ([]models.TimetableVersionMeta, error) {
	versions, err := s.repos.Versions.ListVersions(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable versions")
	}
	return versions, nil
}

// GetVersion returns one persisted snapshot in full.
func (s *TimetableService) GetVersion(ctx context.Context, id string) (*models.TimetableVersion, error) {
	version, err := s.repos.Versions.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable version not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable version")
	}
	return version, nil
}

// InvalidateRoster rebuilds the engine roster after reference data changed
// and re-evaluates the loaded schedule against it.
func (s *TimetableService) InvalidateRoster(ctx context.Context) {
	roster, err := s.buildRoster(ctx)
	if err != nil {
		s.logger.Warn("roster rebuild failed; dropping cached timetable", zap.Error(err))
		s.dropCache(ctx)
		return
	}
	report := s.store.SetRoster(roster)
	if report != nil {
		s.metrics.SetScheduleQuality(len(report.Violations), report.Penalty)
	}
	s.dropCache(ctx)
}

// runGeneration is the queue handler for one generation run.
func (s *TimetableService) runGeneration(_ context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(*generationJob)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	catalog := engine.NewCatalog(s.grid, payload.options)
	started := time.Now()
	result, err := engine.Generate(payload.ctx, s.grid, payload.roster, catalog, payload.budget)
	elapsed := time.Since(started)

	if err != nil {
		s.store.EndGeneration(nil)
		state := GenerationStateFailed
		outcome := "error"
		if payload.ctx.Err() != nil {
			state = GenerationStateCancelled
			outcome = "cancelled"
		}
		s.finishGeneration(generationState{state: state, err: err.Error()}, outcome, elapsed, 0)
		return nil
	}

	if result.Failure != nil {
		s.store.EndGeneration(nil)
		s.finishGeneration(generationState{
			state:   GenerationStateInfeasible,
			stats:   result.Stats,
			err:     result.Failure.Error(),
			failure: result.Failure,
		}, "infeasible", elapsed, result.Stats.Backtracks)
		return nil
	}

	schedule, report := s.store.EndGeneration(result.Schedule)
	s.metrics.SetScheduleQuality(len(report.Violations), report.Penalty)

	persistCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	resp := s.serialize(schedule, report)
	if err := s.persistVersion(persistCtx, resp, result.Stats, payload.budget.Seed, payload.userID); err != nil {
		s.logger.Error("failed to persist generated timetable", zap.Error(err))
	}
	s.writeCache(persistCtx, resp)

	s.finishGeneration(generationState{state: GenerationStateSucceeded, stats: result.Stats}, "success", elapsed, result.Stats.Backtracks)
	return nil
}

func (s *TimetableService) finishGeneration(state generationState, outcome string, elapsed time.Duration, backtracks int) {
	s.metrics.ObserveGeneration(outcome, elapsed, backtracks)
	s.mu.Lock()
	state.startedAt = s.gen.startedAt
	state.finishedAt = time.Now().UTC()
	s.gen = state
	s.cancelGen = nil
	s.mu.Unlock()
	s.logger.Info("generation finished",
		zap.String("outcome", outcome),
		zap.Duration("elapsed", elapsed),
		zap.Int("backtracks", backtracks))
}

func (s *TimetableService) persistVersion(ctx context.Context, resp *dto.TimetableResponse, stats engine.Stats, seed int64, userID string) error {
	snapshot, err := json.Marshal(resp.Week)
	if err != nil {
		return err
	}
	meta, err := json.Marshal(map[string]interface{}{
		"backtracks":  stats.Backtracks,
		"repairMoves": stats.RepairMoves,
		"elapsedMs":   stats.Elapsed.Milliseconds(),
		"seed":        seed,
	})
	if err != nil {
		return err
	}

	version := &models.TimetableVersion{
		Status:         models.TimetableStatusDraft,
		Snapshot:       types.JSONText(snapshot),
		Penalty:        stats.Penalty,
		HardViolations: len(resp.Conflicts.HardViolations),
		Meta:           types.JSONText(meta),
	}
	if userID != "" {
		version.CreatedBy = &userID
	}
	if err := s.repos.Versions.CreateVersioned(ctx, nil, version); err != nil {
		return err
	}
	if err := s.repos.Versions.ActivateExclusive(ctx, version.ID); err != nil {
		return err
	}
	if err := s.repos.Versions.PruneOldVersions(ctx, s.keep); err != nil {
		s.logger.Warn("failed to prune old timetable versions", zap.Error(err))
	}

	s.mu.Lock()
	s.activeVersionID = version.ID
	s.activeVersion = version.Version
	s.mu.Unlock()
	resp.Version = version.Version
	return nil
}

func (s *TimetableService) persistSnapshot(ctx context.Context, resp *dto.TimetableResponse) {
	s.mu.Lock()
	id := s.activeVersionID
	version := s.activeVersion
	s.mu.Unlock()
	if id == "" {
		return
	}
	resp.Version = version
	snapshot, err := json.Marshal(resp.Week)
	if err != nil {
		s.logger.Error("failed to marshal timetable snapshot", zap.Error(err))
		return
	}
	if err := s.repos.Versions.UpdateSnapshot(ctx, id, types.JSONText(snapshot), resp.Conflicts.SoftPenalty, len(resp.Conflicts.HardViolations)); err != nil {
		s.logger.Error("failed to update timetable snapshot", zap.Error(err))
	}
}

func (s *TimetableService) serialize(schedule *engine.Schedule, report *engine.Report) *dto.TimetableResponse {
	week := make(dto.SerializedWeek)
	if schedule != nil {
		for _, a := range schedule.Assignments() {
			dayName := engine.DayName(a.Slot.Day)
			row, ok := week[dayName]
			if !ok {
				row = make(map[string]dto.SlotRecord)
				week[dayName] = row
			}
			row[s.grid.TimeLabel(a.Slot.Index)] = dto.SlotRecord{
				ID:         a.ID,
				CourseID:   a.CourseID,
				FacultyID:  a.FacultyID,
				RoomID:     a.RoomID,
				IsConflict: a.Conflict || report.Conflicted(a.ID),
			}
		}
	}

	summary := dto.ConflictSummary{}
	if report != nil {
		summary.SoftPenalty = report.Penalty
		for _, v := range report.Violations {
			summary.HardViolations = append(summary.HardViolations, dto.ViolationRecord{
				Constraint:    v.Constraint,
				Message:       v.Message,
				AssignmentIDs: v.AssignmentIDs,
			})
		}
	}

	s.mu.Lock()
	version := s.activeVersion
	s.mu.Unlock()
	return &dto.TimetableResponse{Week: week, Conflicts: summary, Version: version}
}

func (s *TimetableService) buildRoster(ctx context.Context) (*engine.Roster, error) {
	courses, err := s.repos.Courses.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	faculty, err := s.repos.Faculty.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	rooms, err := s.repos.Rooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}

	engineCourses := make([]*engine.Course, 0, len(courses))
	for i := range courses {
		engineCourses = append(engineCourses, toEngineCourse(&courses[i]))
	}
	engineFaculty := make([]*engine.Faculty, 0, len(faculty))
	for i := range faculty {
		engineFaculty = append(engineFaculty, toEngineFaculty(&faculty[i]))
	}
	engineRooms := make([]*engine.Room, 0, len(rooms))
	for i := range rooms {
		engineRooms = append(engineRooms, toEngineRoom(&rooms[i]))
	}

	roster := engine.NewRoster(engineCourses, engineFaculty, engineRooms)

	if s.repos.Commitments != nil {
		commitments, err := s.repos.Commitments.ListAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load commitments")
		}
		for _, c := range commitments {
			ec := engine.Commitment{
				Slot:  engine.Slot{Day: c.Day, Index: c.SlotIndex},
				Label: c.Label,
			}
			if c.FacultyID != nil {
				ec.FacultyID = *c.FacultyID
			}
			if c.RoomID != nil {
				ec.RoomID = *c.RoomID
			}
			roster.AddCommitments(ec)
		}
	}

	if s.repos.Exclusions != nil {
		now := time.Now()
		specials, err := s.repos.Exclusions.ListOverlapping(ctx, now, now.AddDate(0, 0, exclusionHorizonDays))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load special schedules")
		}
		for i := range specials {
			sp := &specials[i]
			roster.Exclusions = append(roster.Exclusions, engine.ExclusionWindow{
				Days:   sp.Weekdays(),
				Groups: sp.GroupLabels(),
				Label:  sp.Title,
			})
		}
	}

	return roster, nil
}

func (s *TimetableService) mergeOptions(req dto.GenerateTimetableRequest) engine.Options {
	opts := engine.DefaultOptions()
	if req.AvoidBackToBack != nil {
		opts.AvoidBackToBack = *req.AvoidBackToBack
	}
	if req.RespectFacultyAvailability != nil {
		opts.RespectFacultyAvailability = *req.RespectFacultyAvailability
	}
	if req.BalanceWorkload != nil {
		opts.BalanceWorkload = *req.BalanceWorkload
	}
	if req.PreferMorningSlots != nil {
		opts.PreferMorningSlots = *req.PreferMorningSlots
	}
	if req.MaxConsecutiveHours != nil {
		opts.MaxConsecutiveHours = *req.MaxConsecutiveHours
	}
	if req.BreakDurationMinutes != nil {
		opts.BreakDurationMinutes = *req.BreakDurationMinutes
	}
	if len(req.Weights) > 0 {
		opts.Weights = req.Weights
	}
	return opts
}

func (s *TimetableService) writeCache(ctx context.Context, resp *dto.TimetableResponse) {
	if s.cache == nil {
		return
	}
	started := time.Now()
	if err := s.cache.Set(ctx, activeTimetableCacheKey, resp, s.ttl); err != nil {
		s.logger.Warn("failed to cache timetable", zap.Error(err))
		return
	}
	s.metrics.ObserveCacheWrite(time.Since(started))
}

func (s *TimetableService) dropCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, activeTimetableCacheKey); err != nil {
		s.logger.Warn("failed to invalidate timetable cache", zap.Error(err))
	}
}

func toEngineCourse(c *models.Course) *engine.Course {
	course := &engine.Course{
		ID:             c.ID,
		Code:           c.Code,
		Title:          c.Title,
		Credits:        c.Credits,
		Category:       engine.CourseCategory(c.Category),
		TheoryHours:    c.TheoryHours,
		PracticalHours: c.PracticalHours,
		ExpectedSize:   c.ExpectedSize,
	}
	if c.RequiredTag != nil {
		course.RequiredTag = *c.RequiredTag
	}
	if c.GroupLabel != nil {
		course.Group = *c.GroupLabel
	}
	return course
}

func toEngineFaculty(f *models.Faculty) *engine.Faculty {
	member := &engine.Faculty{
		ID:             f.ID,
		Name:           f.Name,
		Expertise:      f.ExpertiseTags(),
		MaxWeeklyHours: f.MaxWeeklyHours,
	}
	window := f.AvailabilityWindow()
	if len(window.Days) > 0 {
		member.Days = make(map[int]bool, len(window.Days))
		for _, d := range window.Days {
			member.Days[d] = true
		}
	}
	if len(window.Blocked) > 0 {
		member.Blocked = make(map[engine.Slot]bool, len(window.Blocked))
		for _, b := range window.Blocked {
			member.Blocked[engine.Slot{Day: b.Day, Index: b.Slot}] = true
		}
	}
	return member
}

func toEngineRoom(r *models.Room) *engine.Room {
	return &engine.Room{
		ID:       r.ID,
		Name:     r.Name,
		Capacity: r.Capacity,
		Category: engine.RoomCategory(r.Category),
	}
}
