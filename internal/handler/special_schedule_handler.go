package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusops/timetable-api/internal/models"
	"github.com/campusops/timetable-api/internal/service"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
	"github.com/campusops/timetable-api/pkg/response"
)

// SpecialScheduleHandler wires special schedule services to HTTP routes.
type SpecialScheduleHandler struct {
	schedules *service.SpecialScheduleService
}

// NewSpecialScheduleHandler constructs a new SpecialScheduleHandler.
func NewSpecialScheduleHandler(schedules *service.SpecialScheduleService) *SpecialScheduleHandler {
	return &SpecialScheduleHandler{schedules: schedules}
}

// List godoc
// @Summary List special schedules
// @Tags SpecialSchedules
// @Produce json
// @Param from query string false "Window start (YYYY-MM-DD)"
// @Param to query string false "Window end (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /special-schedules [get]
func (h *SpecialScheduleHandler) List(c *gin.Context) {
	filter := models.SpecialScheduleFilter{}
	if from := c.Query("from"); from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid from date"))
			return
		}
		filter.From = &parsed
	}
	if to := c.Query("to"); to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid to date"))
			return
		}
		filter.To = &parsed
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	schedules, pagination, err := h.schedules.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, pagination)
}

// Create godoc
// @Summary Create special schedule
// @Tags SpecialSchedules
// @Accept json
// @Produce json
// @Param payload body service.CreateSpecialScheduleRequest true "Special schedule payload"
// @Success 201 {object} response.Envelope
// @Router /special-schedules [post]
func (h *SpecialScheduleHandler) Create(c *gin.Context) {
	var req service.CreateSpecialScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid special schedule payload"))
		return
	}
	schedule, err := h.schedules.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// Delete godoc
// @Summary Delete special schedule
// @Tags SpecialSchedules
// @Produce json
// @Param id path string true "Special schedule ID"
// @Success 204
// @Router /special-schedules/{id} [delete]
func (h *SpecialScheduleHandler) Delete(c *gin.Context) {
	if err := h.schedules.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
