package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/campushq/timetable-api/internal/dto"
	"github.com/campushq/timetable-api/internal/models"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
)

type roomRepository interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error)
	ListAll(ctx context.Context) ([]models.Room, error)
	FindByID(ctx context.Context, id string) (*models.Room, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id string) error
	BulkCreate(ctx context.Context, rooms []models.Room) error
}

// RoomService manages room reference data.
type RoomService struct {
	repo      roomRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoomService constructs a RoomService instance.
func NewRoomService(repo roomRepository, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RoomService{repo: repo, validator: validate, logger: logger}
}

// List returns rooms matching the filter with pagination metadata.
func (s *RoomService) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, *models.Pagination, error) {
	rooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return rooms, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ListAll returns every room without pagination.
func (s *RoomService) ListAll(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	return rooms, nil
}

// Get loads one room by id.
func (s *RoomService) Get(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	return room, nil
}

// Create validates and inserts a room.
func (s *RoomService) Create(ctx context.Context, req dto.CreateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}
	room := &models.Room{
		Code:     req.Code,
		Building: req.Building,
		RoomType: req.RoomType,
		Capacity: req.Capacity,
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	return room, nil
}

// Update validates and replaces a room's fields.
func (s *RoomService) Update(ctx context.Context, id string, req dto.UpdateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	room := &models.Room{
		ID:        existing.ID,
		Code:      req.Code,
		Building:  req.Building,
		RoomType:  req.RoomType,
		Capacity:  req.Capacity,
		CreatedAt: existing.CreatedAt,
	}
	if err := s.repo.Update(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room")
	}
	return room, nil
}

// Delete removes a room.
func (s *RoomService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete room")
	}
	return nil
}

// ImportCSV bulk-loads rooms from a CSV stream.
func (s *RoomService) ImportCSV(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
	var rows []models.RoomCSVRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to parse room CSV")
	}

	result := &dto.ImportResult{}
	var rooms []models.Room
	for i, row := range rows {
		if row.Code == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: code is required", i+1))
			continue
		}
		if row.Capacity < 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: capacity must not be negative", i+1))
			continue
		}
		rooms = append(rooms, models.Room{
			Code:     row.Code,
			Building: row.Building,
			RoomType: row.RoomType,
			Capacity: row.Capacity,
		})
	}

	if err := s.repo.BulkCreate(ctx, rooms); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import rooms")
	}
	result.Imported = len(rooms)
	s.logger.Info("imported rooms", zap.Int("imported", result.Imported), zap.Int("rejected", len(result.Errors)))
	return result, nil
}
