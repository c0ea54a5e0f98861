package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-course-api/internal/models"
	"github.com/noah-isme/campus-course-api/internal/service"
	appErrors "github.com/noah-isme/campus-course-api/pkg/errors"
	"github.com/noah-isme/campus-course-api/pkg/response"
)

type groupService interface {
	Assign(ctx context.Context, in models.AssignGroupInput) (*models.GroupAssignment, error)
	ListStudents(ctx context.Context, leaderID string) ([]models.GroupMember, error)
	LeaderOf(ctx context.Context, studentID string) (*models.GroupAssignment, error)
}

type rosterExporter interface {
	Roster(ctx context.Context, leaderID string, format service.ExportFormat) (*service.RosterExport, error)
}

// GroupHandler exposes mentoring group assignments.
type GroupHandler struct {
	service  groupService
	exporter rosterExporter
}

// NewGroupHandler builds a new handler.
func NewGroupHandler(service groupService, exporter rosterExporter) *GroupHandler {
	return &GroupHandler{service: service, exporter: exporter}
}

// Assign godoc
// @Summary Assign a student to a staff leader's group
// @Tags Groups
// @Accept json
// @Produce json
// @Param payload body models.AssignGroupInput true "Assignment payload"
// @Success 201 {object} response.Body
// @Router /groups [post]
func (h *GroupHandler) Assign(c *gin.Context) {
	var in models.AssignGroupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	assignment, err := h.service.Assign(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Students godoc
// @Summary List students currently assigned to a leader
// @Tags Groups
// @Produce json
// @Param leaderId path string true "Leader ID"
// @Success 200 {object} response.Body
// @Router /groups/{leaderId}/students [get]
func (h *GroupHandler) Students(c *gin.Context) {
	members, err := h.service.ListStudents(c.Request.Context(), c.Param("leaderId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members)
}

// Leader godoc
// @Summary Look up a student's current leader
// @Tags Groups
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Body
// @Router /students/{studentId}/leader [get]
func (h *GroupHandler) Leader(c *gin.Context) {
	assignment, err := h.service.LeaderOf(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment)
}

// ExportRoster godoc
// @Summary Download a leader's roster as CSV or PDF
// @Tags Groups
// @Produce text/csv
// @Param leaderId path string true "Leader ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} byte
// @Router /groups/{leaderId}/roster/export [get]
func (h *GroupHandler) ExportRoster(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	sheet, err := h.exporter.Roster(c.Request.Context(), c.Param("leaderId"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sheet.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, sheet.MimeType, sheet.Content)
}
