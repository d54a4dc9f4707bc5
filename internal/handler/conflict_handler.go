package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campushq/timetable-api/internal/models"
	"github.com/campushq/timetable-api/internal/service"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
	"github.com/campushq/timetable-api/pkg/response"
)

// ConflictHandler exposes conflict lifecycle endpoints.
type ConflictHandler struct {
	conflicts *service.ConflictService
}

// NewConflictHandler constructs a ConflictHandler.
func NewConflictHandler(conflicts *service.ConflictService) *ConflictHandler {
	return &ConflictHandler{conflicts: conflicts}
}

// List godoc
// @Summary List conflicts
// @Tags Conflicts
// @Produce json
// @Param year query int false "Academic year"
// @Param semester query int false "Semester (1 or 2)"
// @Param kind query string false "Conflict kind"
// @Param status query string false "Conflict status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /conflicts [get]
func (h *ConflictHandler) List(c *gin.Context) {
	var filter models.ConflictFilter
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.Year = year
	}
	if semester, err := strconv.Atoi(c.Query("semester")); err == nil {
		filter.Semester = semester
	}
	filter.Kind = c.Query("kind")
	filter.Status = models.ConflictStatus(c.Query("status"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	conflicts, pagination, err := h.conflicts.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflicts, pagination)
}

// Get godoc
// @Summary Get conflict detail
// @Tags Conflicts
// @Produce json
// @Param id path string true "Conflict ID"
// @Success 200 {object} response.Envelope
// @Router /conflicts/{id} [get]
func (h *ConflictHandler) Get(c *gin.Context) {
	conflict, err := h.conflicts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflict, nil)
}

// Summary godoc
// @Summary Active conflict counts by category
// @Tags Conflicts
// @Produce json
// @Param year query int true "Academic year"
// @Param semester query int true "Semester (1 or 2)"
// @Success 200 {object} response.Envelope
// @Router /conflicts/summary [get]
func (h *ConflictHandler) Summary(c *gin.Context) {
	year, semester, ok := termFromQuery(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year and semester are required"))
		return
	}
	summary, err := h.conflicts.Summary(c.Request.Context(), year, semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

type updateConflictStatusRequest struct {
	Status models.ConflictStatus `json:"status" binding:"required"`
}

// UpdateStatus godoc
// @Summary Resolve or dismiss a conflict
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param id path string true "Conflict ID"
// @Param payload body updateConflictStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /conflicts/{id}/status [patch]
func (h *ConflictHandler) UpdateStatus(c *gin.Context) {
	var req updateConflictStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	conflict, err := h.conflicts.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflict, nil)
}

// AutoResolve godoc
// @Summary Retire conflicts that no longer reproduce
// @Tags Conflicts
// @Produce json
// @Param year query int true "Academic year"
// @Param semester query int true "Semester (1 or 2)"
// @Success 200 {object} response.Envelope
// @Router /conflicts/auto-resolve [post]
func (h *ConflictHandler) AutoResolve(c *gin.Context) {
	year, semester, ok := termFromQuery(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year and semester are required"))
		return
	}
	result, err := h.conflicts.AutoResolve(c.Request.Context(), year, semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
