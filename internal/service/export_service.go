package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/campushq/timetable-api/internal/models"
	"github.com/campushq/timetable-api/internal/timetable"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
	"github.com/campushq/timetable-api/pkg/export"
)

// ExportService renders a term's timetable as CSV or PDF. Lane numbers in the
// export come from the same first-fit packing the interactive layout uses, so
// a printed timetable matches what the screen shows.
type ExportService struct {
	repo    timetableRepository
	rooms   roomCatalog
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
	enabled bool
}

// NewExportService constructs an ExportService instance.
func NewExportService(repo timetableRepository, rooms roomCatalog, logger *zap.Logger, enabled bool) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		repo:    repo,
		rooms:   rooms,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
		enabled: enabled,
	}
}

// Enabled reports whether export endpoints are switched on.
func (s *ExportService) Enabled() bool {
	return s != nil && s.enabled
}

var exportHeaders = []string{"Day", "Time", "Room", "Lane", "Course", "Type", "Occurrences", "Instructor", "Duration"}

// ExportCSV renders the term timetable as CSV bytes.
func (s *ExportService) ExportCSV(ctx context.Context, year, semester int) ([]byte, string, error) {
	data, err := s.dataset(ctx, year, semester)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.csv.Render(*data)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV export")
	}
	return payload, fmt.Sprintf("timetable_%d_s%d.csv", year, semester), nil
}

// ExportPDF renders the term timetable as PDF bytes.
func (s *ExportService) ExportPDF(ctx context.Context, year, semester int) ([]byte, string, error) {
	data, err := s.dataset(ctx, year, semester)
	if err != nil {
		return nil, "", err
	}
	title := fmt.Sprintf("Timetable %d Semester %d", year, semester)
	payload, err := s.pdf.Render(*data, title)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render PDF export")
	}
	return payload, fmt.Sprintf("timetable_%d_s%d.pdf", year, semester), nil
}

// dataset flattens the term grid into tabular rows, one per entry, ordered by
// day, room and lane.
func (s *ExportService) dataset(ctx context.Context, year, semester int) (*export.Dataset, error) {
	stored, err := s.repo.ListByTerm(ctx, year, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entries")
	}

	grid := timetable.NewGrid()
	for _, row := range stored {
		entry, err := entryFromModel(row)
		if err != nil {
			s.logger.Warn("skipping unexportable entry", zap.String("entry_id", row.ID), zap.Error(err))
			continue
		}
		if err := grid.Place(entry); err != nil {
			s.logger.Warn("skipping unplaceable entry", zap.String("entry_id", row.ID), zap.Error(err))
		}
	}

	roomList, err := s.rooms.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	roomCodes := lo.SliceToMap(roomList, func(r models.Room) (string, string) {
		return r.ID, r.Code
	})

	data := &export.Dataset{Headers: exportHeaders}
	for day := 0; day < timetable.DayCount; day++ {
		dayLabel, _ := timetable.DayLabel(day)
		for _, roomID := range grid.Rooms(day) {
			roomCode := roomCodes[roomID]
			if roomCode == "" {
				roomCode = roomID
			}
			layout := timetable.PackLanes(grid.EntriesAt(day, roomID))
			for laneIdx, lane := range layout.Lanes {
				for slot, e := range lane {
					if e == nil || slot != e.StartSlot {
						continue
					}
					timeRange, err := timetable.RangeLabel(e.StartSlot, e.EndSlot())
					if err != nil {
						continue
					}
					data.Rows = append(data.Rows, map[string]string{
						"Day":         dayLabel,
						"Time":        timeRange,
						"Room":        roomCode,
						"Lane":        fmt.Sprintf("%d", laneIdx+1),
						"Course":      e.CourseCode,
						"Type":        string(e.Kind),
						"Occurrences": joinOccurrences(e.Occurrences),
						"Instructor":  e.Instructor.Display(),
						"Duration":    fmt.Sprintf("%dh", e.Duration),
					})
				}
			}
		}
	}
	return data, nil
}

func joinOccurrences(occurrences []int) string {
	parts := lo.Map(occurrences, func(n int, _ int) string {
		return fmt.Sprintf("%d", n)
	})
	return strings.Join(parts, ";")
}
