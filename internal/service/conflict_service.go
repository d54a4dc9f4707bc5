package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/campushq/timetable-api/internal/dto"
	"github.com/campushq/timetable-api/internal/models"
	"github.com/campushq/timetable-api/internal/timetable"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
)

type conflictStore interface {
	List(ctx context.Context, filter models.ConflictFilter) ([]models.Conflict, int, error)
	ListActive(ctx context.Context, year, semester int) ([]models.Conflict, error)
	FindByID(ctx context.Context, id string) (*models.Conflict, error)
	UpdateStatus(ctx context.Context, id string, status models.ConflictStatus) error
}

type freshDetector interface {
	Detect(ctx context.Context, year, semester int) (*dto.DetectResponse, error)
}

// ConflictService manages the lifecycle of recorded conflicts: listing,
// manual resolution and dismissal, and retiring conflicts that no longer
// reproduce.
type ConflictService struct {
	store     conflictStore
	detector  freshDetector
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConflictService constructs a ConflictService instance.
func NewConflictService(store conflictStore, detector freshDetector, validate *validator.Validate, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ConflictService{store: store, detector: detector, validator: validate, logger: logger}
}

// List returns conflicts matching the filter with pagination metadata.
func (s *ConflictService) List(ctx context.Context, filter models.ConflictFilter) ([]models.Conflict, *models.Pagination, error) {
	conflicts, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list conflicts")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return conflicts, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one conflict by id.
func (s *ConflictService) Get(ctx context.Context, id string) (*models.Conflict, error) {
	conflict, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "conflict not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conflict")
	}
	return conflict, nil
}

// Summary returns the active conflict counts by category for a term.
func (s *ConflictService) Summary(ctx context.Context, year, semester int) (*timetable.Summary, error) {
	active, err := s.store.ListActive(ctx, year, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active conflicts")
	}
	counts := lo.CountValuesBy(active, func(c models.Conflict) string {
		return c.Kind
	})
	summary := &timetable.Summary{
		RoomCapacity:     counts[string(timetable.ConflictRoomCapacity)],
		RoomDoubleBook:   counts[string(timetable.ConflictRoomDoubleBook)],
		Instructor:       counts[string(timetable.ConflictInstructor)],
		TimeSlotExceeded: counts[string(timetable.ConflictTimeSlotExceeded)],
	}
	summary.Total = len(active)
	return summary, nil
}

// UpdateStatus marks a conflict Resolved or Dismissed by hand.
func (s *ConflictService) UpdateStatus(ctx context.Context, id string, status models.ConflictStatus) (*models.Conflict, error) {
	switch status {
	case models.ConflictResolved, models.ConflictDismissed, models.ConflictPending:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid conflict status")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update conflict")
	}
	return s.Get(ctx, id)
}

// AutoResolve runs a fresh detection pass and retires Pending conflicts whose
// identity no longer reproduces. Conflicts still present and conflicts
// resolved or dismissed by hand are untouched.
func (s *ConflictService) AutoResolve(ctx context.Context, year, semester int) (*dto.AutoResolveResponse, error) {
	active, err := s.store.ListActive(ctx, year, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active conflicts")
	}
	if len(active) == 0 {
		return &dto.AutoResolveResponse{Resolved: 0}, nil
	}

	detection, err := s.detector.Detect(ctx, year, semester)
	if err != nil {
		return nil, err
	}

	byIdentity := make(map[string][]models.Conflict, len(active))
	for _, row := range active {
		id := rowIdentity(row)
		byIdentity[id] = append(byIdentity[id], row)
	}

	identities := make(map[string]struct{}, len(byIdentity))
	for id := range byIdentity {
		identities[id] = struct{}{}
	}

	resolved := 0
	for _, stale := range timetable.StaleIdentities(detection.Report.All(), identities) {
		for _, row := range byIdentity[stale] {
			if err := s.store.UpdateStatus(ctx, row.ID, models.ConflictResolved); err != nil {
				s.logger.Error("failed to auto-resolve conflict",
					zap.String("conflict_id", row.ID),
					zap.String("identity", stale),
					zap.Error(err))
				continue
			}
			resolved++
		}
	}
	return &dto.AutoResolveResponse{Resolved: resolved}, nil
}

// rowIdentity rebuilds the identity string for one persisted conflict, using
// the fallback form for legacy rows without structured course codes.
func rowIdentity(row models.Conflict) string {
	if len(row.CourseCodes) == 0 {
		return timetable.FallbackIdentity(timetable.ConflictKind(row.Kind), row.InstructorID, row.RoomCode, row.Day, row.TimeRange)
	}
	c := timetable.Conflict{
		Kind:         timetable.ConflictKind(row.Kind),
		CourseCodes:  row.CourseCodes,
		RoomCode:     row.RoomCode,
		InstructorID: row.InstructorID,
		Day:          row.Day,
		TimeRange:    row.TimeRange,
	}
	return c.Identity()
}
