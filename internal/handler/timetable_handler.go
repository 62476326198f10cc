package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusops/timetable-api/internal/dto"
	"github.com/campusops/timetable-api/internal/service"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
	"github.com/campusops/timetable-api/pkg/response"
)

// TimetableHandler wires the timetable orchestrator to HTTP routes.
type TimetableHandler struct {
	timetables *service.TimetableService
}

// NewTimetableHandler constructs a new TimetableHandler.
func NewTimetableHandler(timetables *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetables: timetables}
}

// Generate godoc
// @Summary Start timetable generation
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest false "Generation options"
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation options"))
			return
		}
	}

	userID := ""
	if claims := claimsFromContext(c); claims != nil {
		userID = claims.UserID
	}

	status, err := h.timetables.Generate(c.Request.Context(), req, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, status, nil)
}

// CancelGenerate godoc
// @Summary Cancel the in-flight generation run
// @Tags Timetable
// @Produce json
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /timetable/generate [delete]
func (h *TimetableHandler) CancelGenerate(c *gin.Context) {
	if err := h.timetables.CancelGenerate(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Status godoc
// @Summary Generation job status
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/status [get]
func (h *TimetableHandler) Status(c *gin.Context) {
	status := h.timetables.Status()
	response.JSON(c, http.StatusOK, status, nil)
}

// Get godoc
// @Summary Get the active timetable
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	timetable, err := h.timetables.GetTimetable(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// Move godoc
// @Summary Move one assignment to a target cell
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.MoveAssignmentRequest true "Move payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/moves [post]
func (h *TimetableHandler) Move(c *gin.Context) {
	var req dto.MoveAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid move payload"))
		return
	}
	result, err := h.timetables.Move(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListVersions godoc
// @Summary List persisted timetable versions
// @Tags Timetable
// @Produce json
// @Param limit query int false "Maximum number of versions"
// @Success 200 {object} response.Envelope
// @Router /timetable/versions [get]
func (h *TimetableHandler) ListVersions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	versions, err := h.timetables.ListVersions(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, versions, nil)
}

// GetVersion godoc
// @Summary Get one persisted timetable version
// @Tags Timetable
// @Produce json
// @Param id path string true "Version ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/versions/{id} [get]
func (h *TimetableHandler) GetVersion(c *gin.Context) {
	version, err := h.timetables.GetVersion(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, version, nil)
}
