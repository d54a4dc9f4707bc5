package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushq/timetable-api/internal/dto"
	"github.com/campushq/timetable-api/internal/middleware"
	"github.com/campushq/timetable-api/internal/models"
	"github.com/campushq/timetable-api/internal/service"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
	"github.com/campushq/timetable-api/pkg/response"
)

// TimetableHandler exposes the timetable lifecycle endpoints.
type TimetableHandler struct {
	timetables *service.TimetableService
}

// NewTimetableHandler constructs a TimetableHandler.
func NewTimetableHandler(timetables *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetables: timetables}
}

// Get godoc
// @Summary Get a term's timetable
// @Tags Timetable
// @Produce json
// @Param year query int true "Academic year"
// @Param semester query int true "Semester (1 or 2)"
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	var query dto.TimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid timetable query"))
		return
	}
	// Students and instructors only ever see published timetables.
	if claims := claimsFromContext(c); claims != nil && claims.Role != models.RoleAdmin {
		query.PublishedOnly = true
	}
	start := time.Now()
	view, cacheHit, err := h.timetables.Load(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, view, nil, meta)
}

// Save godoc
// @Summary Replace a term's timetable and reconcile conflicts
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.SaveTimetableRequest true "Timetable payload"
// @Success 200 {object} response.Envelope
// @Router /timetable [put]
func (h *TimetableHandler) Save(c *gin.Context) {
	var req dto.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.timetables.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Detect godoc
// @Summary Run an on-demand conflict detection pass
// @Tags Timetable
// @Produce json
// @Param year query int true "Academic year"
// @Param semester query int true "Semester (1 or 2)"
// @Success 200 {object} response.Envelope
// @Router /timetable/detect [get]
func (h *TimetableHandler) Detect(c *gin.Context) {
	year, semester, ok := termFromQuery(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year and semester are required"))
		return
	}
	result, err := h.timetables.Detect(c.Request.Context(), year, semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Layout godoc
// @Summary Render one day of the grid with lane-packed room columns
// @Tags Timetable
// @Produce json
// @Param year query int true "Academic year"
// @Param semester query int true "Semester (1 or 2)"
// @Param day query string true "Day name (Monday..Friday)"
// @Success 200 {object} response.Envelope
// @Router /timetable/layout [get]
func (h *TimetableHandler) Layout(c *gin.Context) {
	year, semester, ok := termFromQuery(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year and semester are required"))
		return
	}
	day := c.Query("day")
	if day == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "day is required"))
		return
	}
	layout, err := h.timetables.Layout(c.Request.Context(), year, semester, day)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, layout, nil)
}

// Move godoc
// @Summary Move one entry to a new day/room/time
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.MoveEntryRequest true "Move payload"
// @Success 200 {object} response.Envelope
// @Router /timetable/move [post]
func (h *TimetableHandler) Move(c *gin.Context) {
	var req dto.MoveEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.timetables.Move(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reassign godoc
// @Summary Change the instructor on an entry and its linked copies
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.ReassignEntryRequest true "Reassign payload"
// @Success 200 {object} response.Envelope
// @Router /timetable/reassign [post]
func (h *TimetableHandler) Reassign(c *gin.Context) {
	var req dto.ReassignEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.timetables.Reassign(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Publish godoc
// @Summary Toggle the per-term publish flag
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.PublishRequest true "Publish payload"
// @Success 200 {object} response.Envelope
// @Router /timetable/publish [post]
func (h *TimetableHandler) Publish(c *gin.Context) {
	var req dto.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	pub, err := h.timetables.Publish(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pub, nil)
}
