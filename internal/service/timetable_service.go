package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/campushq/timetable-api/internal/dto"
	"github.com/campushq/timetable-api/internal/models"
	"github.com/campushq/timetable-api/internal/timetable"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
)

type timetableRepository interface {
	ListByTerm(ctx context.Context, year, semester int) ([]models.TimetableEntry, error)
	ReplaceTerm(ctx context.Context, year, semester int, entries []models.TimetableEntry) error
	GetPublication(ctx context.Context, year, semester int) (*models.TimetablePublication, error)
	SetPublication(ctx context.Context, year, semester int, published bool) error
}

type courseCatalog interface {
	ListByTerm(ctx context.Context, year, semester int) ([]models.Course, error)
}

type roomCatalog interface {
	ListAll(ctx context.Context) ([]models.Room, error)
}

type conflictRecorder interface {
	ListActive(ctx context.Context, year, semester int) ([]models.Conflict, error)
	Create(ctx context.Context, conflict *models.Conflict) error
}

// TimetableService owns the schedule lifecycle for one term at a time: it
// rebuilds the in-memory grid from stored rows, runs detection and
// reconciliation on saves, applies soft-model mutations and renders layouts.
type TimetableService struct {
	repo      timetableRepository
	courses   courseCatalog
	rooms     roomCatalog
	conflicts conflictRecorder
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService constructs a TimetableService instance.
func NewTimetableService(repo timetableRepository, courses courseCatalog, rooms roomCatalog, conflicts conflictRecorder, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TimetableService{
		repo:      repo,
		courses:   courses,
		rooms:     rooms,
		conflicts: conflicts,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

func timetableCacheKey(year, semester int) string {
	return fmt.Sprintf("timetable:%d:%d", year, semester)
}

func timetableCachePattern(year, semester int) string {
	return fmt.Sprintf("timetable:%d:%d*", year, semester)
}

// Load returns a term's timetable. When the query asks for published data
// only, an unpublished term is refused and hits are served from cache.
func (s *TimetableService) Load(ctx context.Context, query dto.TimetableQuery) (*dto.TimetableView, bool, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable query")
	}

	pub, err := s.repo.GetPublication(ctx, query.Year, query.Semester)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load publication state")
	}

	if query.PublishedOnly {
		if !pub.Published {
			return nil, false, appErrors.Clone(appErrors.ErrNotPublished, "timetable for this term is not published")
		}
		var cached dto.TimetableView
		if hit, _ := s.cache.Get(ctx, timetableCacheKey(query.Year, query.Semester), &cached); hit {
			return &cached, true, nil
		}
	}

	rows, err := s.repo.ListByTerm(ctx, query.Year, query.Semester)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entries")
	}

	grid, skipped := s.buildGrid(rows)
	view := &dto.TimetableView{
		Year:      query.Year,
		Semester:  query.Semester,
		Published: pub.Published,
		Entries:   s.payloadsFromGrid(grid),
		Skipped:   skipped,
	}

	if query.PublishedOnly {
		_ = s.cache.Set(ctx, timetableCacheKey(query.Year, query.Semester), view, 0)
	}
	return view, false, nil
}

// Save replaces a term's timetable, persists it and runs one reconciliation
// pass: freshly detected conflicts not already tracked as Pending are recorded.
func (s *TimetableService) Save(ctx context.Context, req dto.SaveTimetableRequest) (*dto.SaveTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save payload")
	}

	grid := timetable.NewGrid()
	skipped := 0
	for _, payload := range req.Entries {
		entry, err := entryFromPayload(payload)
		if err != nil {
			skipped++
			s.logger.Warn("skipping malformed timetable entry",
				zap.String("entry_id", payload.ID),
				zap.String("course_code", payload.CourseCode),
				zap.Error(err))
			continue
		}
		if err := grid.Place(entry); err != nil {
			skipped++
			s.logger.Warn("skipping unplaceable timetable entry",
				zap.String("entry_id", payload.ID),
				zap.Error(err))
		}
	}

	rows, convErr := modelsFromGrid(grid, req.Year, req.Semester)
	if convErr != nil {
		return nil, appErrors.Wrap(convErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to flatten timetable")
	}
	if err := s.repo.ReplaceTerm(ctx, req.Year, req.Semester, rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable")
	}

	detector, err := s.detectorForTerm(ctx, req.Year, req.Semester)
	if err != nil {
		return nil, err
	}
	report := s.runDetection(detector, grid)

	newConflicts, err := s.reconcile(ctx, req.Year, req.Semester, report)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Invalidate(ctx, timetableCachePattern(req.Year, req.Semester))

	return &dto.SaveTimetableResponse{
		Saved:        len(rows),
		NewConflicts: newConflicts,
		Skipped:      skipped + report.Skipped,
		Summary:      report.Summarize(),
	}, nil
}

// Detect runs an on-demand detection pass without touching persisted
// conflicts or the stored timetable.
func (s *TimetableService) Detect(ctx context.Context, year, semester int) (*dto.DetectResponse, error) {
	grid, _, err := s.loadGrid(ctx, year, semester)
	if err != nil {
		return nil, err
	}
	detector, err := s.detectorForTerm(ctx, year, semester)
	if err != nil {
		return nil, err
	}
	report := s.runDetection(detector, grid)
	return &dto.DetectResponse{Report: report, Summary: report.Summarize()}, nil
}

// Layout renders one day of the grid with lane-packed room columns.
func (s *TimetableService) Layout(ctx context.Context, year, semester int, day string) (*dto.LayoutResponse, error) {
	dayIdx, err := timetable.DayIndex(day)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", day))
	}

	grid, _, err := s.loadGrid(ctx, year, semester)
	if err != nil {
		return nil, err
	}

	roomList, err := s.rooms.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	roomCodes := lo.SliceToMap(roomList, func(r models.Room) (string, string) {
		return r.ID, r.Code
	})

	resp := &dto.LayoutResponse{Day: day, SlotTimes: timetable.SlotLabels()}
	for _, roomID := range grid.Rooms(dayIdx) {
		layout := timetable.PackLanes(grid.EntriesAt(dayIdx, roomID))
		roomLayout := dto.RoomLayout{
			RoomID:   roomID,
			RoomCode: roomCodes[roomID],
			MaxLanes: layout.MaxLanes,
		}
		if roomLayout.RoomCode == "" {
			roomLayout.RoomCode = roomID
		}
		for _, lane := range layout.Lanes {
			view := dto.LaneView{Slots: make([]*dto.EntryPayload, timetable.SlotCount)}
			for i, e := range lane {
				if e == nil {
					continue
				}
				payload := payloadFromEntry(e)
				view.Slots[i] = &payload
			}
			roomLayout.Lanes = append(roomLayout.Lanes, view)
		}
		resp.Rooms = append(resp.Rooms, roomLayout)
	}
	return resp, nil
}

// Move relocates one entry. Conflicts at the destination never block the
// move; they come back as advisory warnings and become permanent records only
// at the next save's reconciliation pass.
func (s *TimetableService) Move(ctx context.Context, req dto.MoveEntryRequest) (*dto.MutationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload")
	}

	dayIdx, err := timetable.DayIndex(req.Day)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", req.Day))
	}
	startSlot, err := timetable.SlotIndex(req.StartTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown time slot %q", req.StartTime))
	}

	grid, skipped, err := s.loadGrid(ctx, req.Year, req.Semester)
	if err != nil {
		return nil, err
	}
	detector, err := s.detectorForTerm(ctx, req.Year, req.Semester)
	if err != nil {
		return nil, err
	}

	warnings, err := detector.Move(grid, timetable.MoveRequest{
		EntryID:   req.EntryID,
		Day:       dayIdx,
		RoomID:    req.RoomID,
		StartSlot: startSlot,
	})
	if err != nil {
		return nil, err
	}

	if err := s.persistGrid(ctx, grid, req.Year, req.Semester); err != nil {
		return nil, err
	}
	return &dto.MutationResponse{
		Entries:  s.payloadsFromGrid(grid),
		Warnings: warnings,
		Skipped:  skipped,
	}, nil
}

// Reassign changes the instructor on an entry and every linked occurrence
// copy sharing its id. Eligibility and overlap issues are advisory only.
func (s *TimetableService) Reassign(ctx context.Context, req dto.ReassignEntryRequest) (*dto.MutationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reassign payload")
	}

	grid, skipped, err := s.loadGrid(ctx, req.Year, req.Semester)
	if err != nil {
		return nil, err
	}
	detector, err := s.detectorForTerm(ctx, req.Year, req.Semester)
	if err != nil {
		return nil, err
	}

	assignment := timetable.InstructorAssignment{ID: req.InstructorID, Name: req.InstructorName}
	warnings, err := detector.Reassign(grid, req.EntryID, assignment)
	if err != nil {
		return nil, err
	}

	if err := s.persistGrid(ctx, grid, req.Year, req.Semester); err != nil {
		return nil, err
	}
	return &dto.MutationResponse{
		Entries:  s.payloadsFromGrid(grid),
		Warnings: warnings,
		Skipped:  skipped,
	}, nil
}

// Publish toggles the per-term publish flag gating non-admin reads.
func (s *TimetableService) Publish(ctx context.Context, req dto.PublishRequest) (*models.TimetablePublication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid publish payload")
	}
	if err := s.repo.SetPublication(ctx, req.Year, req.Semester, req.Published); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update publication state")
	}
	_ = s.cache.Invalidate(ctx, timetableCachePattern(req.Year, req.Semester))
	return s.repo.GetPublication(ctx, req.Year, req.Semester)
}

// loadGrid rebuilds the in-memory grid for a term from stored rows.
func (s *TimetableService) loadGrid(ctx context.Context, year, semester int) (*timetable.Grid, int, error) {
	rows, err := s.repo.ListByTerm(ctx, year, semester)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entries")
	}
	grid, skipped := s.buildGrid(rows)
	return grid, skipped, nil
}

// buildGrid converts stored rows into grid entries. Rows whose day or slot
// label no longer resolves are skipped, never fatal.
func (s *TimetableService) buildGrid(rows []models.TimetableEntry) (*timetable.Grid, int) {
	grid := timetable.NewGrid()
	skipped := 0
	for _, row := range rows {
		entry, err := entryFromModel(row)
		if err != nil {
			skipped++
			s.logger.Warn("skipping stored timetable entry",
				zap.String("entry_id", row.ID),
				zap.String("course_code", row.CourseCode),
				zap.Error(err))
			continue
		}
		if err := grid.Place(entry); err != nil {
			skipped++
			s.logger.Warn("skipping unplaceable stored entry", zap.String("entry_id", row.ID), zap.Error(err))
		}
	}
	return grid, skipped
}

func (s *TimetableService) persistGrid(ctx context.Context, grid *timetable.Grid, year, semester int) error {
	rows, err := modelsFromGrid(grid, year, semester)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to flatten timetable")
	}
	if err := s.repo.ReplaceTerm(ctx, year, semester, rows); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable")
	}
	_ = s.cache.Invalidate(ctx, timetableCachePattern(year, semester))
	return nil
}

// detectorForTerm loads course and room reference data and indexes a detector.
func (s *TimetableService) detectorForTerm(ctx context.Context, year, semester int) (*timetable.Detector, error) {
	courseList, err := s.courses.ListByTerm(ctx, year, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	roomList, err := s.rooms.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}

	courseInfos := lo.Map(courseList, func(c models.Course, _ int) timetable.CourseInfo {
		return timetable.CourseInfo{
			Code:           c.Code,
			TargetStudents: c.TargetStudents,
			LectureCount:   c.LectureCount,
			TutorialCount:  c.TutorialCount,
		}
	})
	roomInfos := lo.Map(roomList, func(r models.Room, _ int) timetable.RoomInfo {
		return timetable.RoomInfo{ID: r.ID, Code: r.Code, Capacity: r.Capacity}
	})
	return timetable.NewDetector(courseInfos, roomInfos, s.logger), nil
}

func (s *TimetableService) runDetection(detector *timetable.Detector, grid *timetable.Grid) *timetable.Report {
	start := time.Now()
	report := detector.Detect(grid)
	if s.metrics != nil {
		s.metrics.ObserveDetection(time.Since(start), report)
	}
	return report
}

// reconcile records freshly detected conflicts that are not already tracked
// as Pending. Tracked conflicts are untouched, vanished ones are left for the
// auto-resolve operation, so reconciling an unchanged grid records nothing.
func (s *TimetableService) reconcile(ctx context.Context, year, semester int, report *timetable.Report) (int, error) {
	active, err := s.conflicts.ListActive(ctx, year, semester)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active conflicts")
	}

	fresh := timetable.Reconcile(report.All(), identitySet(active), s.logger)
	recorded := 0
	for _, c := range fresh {
		row := conflictModel(year, semester, c)
		if err := s.conflicts.Create(ctx, row); err != nil {
			s.logger.Error("failed to record conflict",
				zap.String("identity", c.Identity()),
				zap.Error(err))
			continue
		}
		recorded++
	}
	return recorded, nil
}

// identitySet derives identity strings from persisted conflicts. Rows written
// since structured fields were introduced rebuild the exact identity; legacy
// rows without course codes fall back to the partial form.
func identitySet(active []models.Conflict) map[string]struct{} {
	set := make(map[string]struct{}, len(active))
	for _, row := range active {
		set[rowIdentity(row)] = struct{}{}
	}
	return set
}

func conflictModel(year, semester int, c timetable.Conflict) *models.Conflict {
	return &models.Conflict{
		Year:             year,
		Semester:         semester,
		Kind:             string(c.Kind),
		Status:           models.ConflictPending,
		CourseCodes:      pq.StringArray(c.CourseCodes),
		RoomCode:         c.RoomCode,
		InstructorID:     c.InstructorID,
		Day:              c.Day,
		TimeRange:        c.TimeRange,
		RoomCapacity:     c.RoomCapacity,
		RequiredCapacity: c.RequiredCapacity,
		Description:      c.Description,
	}
}

func entryFromModel(row models.TimetableEntry) (*timetable.Entry, error) {
	dayIdx, err := timetable.DayIndex(row.Day)
	if err != nil {
		return nil, err
	}
	slotIdx, err := timetable.SlotIndex(row.StartTime)
	if err != nil {
		return nil, err
	}
	return &timetable.Entry{
		ID:         row.ID,
		CourseCode: row.CourseCode,
		Kind:       timetable.EntryKind(row.OccType),
		Occurrences: lo.Map(row.OccNumbers, func(n int64, _ int) int {
			return int(n)
		}),
		Day:       dayIdx,
		StartSlot: slotIdx,
		Duration:  row.Duration,
		RoomID:    row.RoomID,
		Instructor: timetable.InstructorAssignment{
			ID:   row.InstructorID,
			Name: row.InstructorName,
		},
	}, nil
}

func entryFromPayload(p dto.EntryPayload) (*timetable.Entry, error) {
	dayIdx, err := timetable.DayIndex(p.Day)
	if err != nil {
		return nil, err
	}
	slotIdx, err := timetable.SlotIndex(p.StartTime)
	if err != nil {
		return nil, err
	}
	return &timetable.Entry{
		ID:          p.ID,
		CourseCode:  p.CourseCode,
		Kind:        timetable.EntryKind(p.OccType),
		Occurrences: p.OccNumbers,
		Day:         dayIdx,
		StartSlot:   slotIdx,
		Duration:    p.Duration,
		RoomID:      p.RoomID,
		Instructor: timetable.InstructorAssignment{
			ID:   p.InstructorID,
			Name: p.InstructorName,
		},
	}, nil
}

func payloadFromEntry(e *timetable.Entry) dto.EntryPayload {
	day, _ := timetable.DayLabel(e.Day)
	start, _ := timetable.SlotLabel(e.StartSlot)
	return dto.EntryPayload{
		ID:             e.ID,
		CourseCode:     e.CourseCode,
		OccType:        string(e.Kind),
		OccNumbers:     e.Occurrences,
		Day:            day,
		StartTime:      start,
		Duration:       e.Duration,
		RoomID:         e.RoomID,
		InstructorID:   e.Instructor.ID,
		InstructorName: e.Instructor.Name,
	}
}

func (s *TimetableService) payloadsFromGrid(grid *timetable.Grid) []dto.EntryPayload {
	entries := grid.Flatten()
	out := make([]dto.EntryPayload, 0, len(entries))
	for _, e := range entries {
		out = append(out, payloadFromEntry(e))
	}
	return out
}

func modelsFromGrid(grid *timetable.Grid, year, semester int) ([]models.TimetableEntry, error) {
	var rows []models.TimetableEntry
	var convErr error
	grid.ForEach(func(e *timetable.Entry) {
		day, err := timetable.DayLabel(e.Day)
		if err != nil {
			convErr = err
			return
		}
		start, err := timetable.SlotLabel(e.StartSlot)
		if err != nil {
			convErr = err
			return
		}
		rows = append(rows, models.TimetableEntry{
			ID:         e.ID,
			Year:       year,
			Semester:   semester,
			CourseCode: e.CourseCode,
			OccType:    string(e.Kind),
			OccNumbers: pq.Int64Array(lo.Map(e.Occurrences, func(n int, _ int) int64 {
				return int64(n)
			})),
			Day:            day,
			StartTime:      start,
			Duration:       e.Duration,
			RoomID:         e.RoomID,
			InstructorID:   e.Instructor.ID,
			InstructorName: e.Instructor.Name,
		})
	})
	if convErr != nil {
		return nil, convErr
	}
	return rows, nil
}
