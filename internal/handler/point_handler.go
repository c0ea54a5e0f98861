package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-course-api/internal/models"
	appErrors "github.com/noah-isme/campus-course-api/pkg/errors"
	"github.com/noah-isme/campus-course-api/pkg/response"
)

type pointsService interface {
	Grant(ctx context.Context, actor models.User, in models.GrantPointsInput) (*models.PointEntry, error)
	Revoke(ctx context.Context, actor models.User, pointID string) error
	ListByStudent(ctx context.Context, studentID string) ([]models.PointEntry, *models.PointSummary, error)
}

// PointHandler exposes the merit point ledger.
type PointHandler struct {
	service pointsService
}

// NewPointHandler builds a new handler.
func NewPointHandler(service pointsService) *PointHandler {
	return &PointHandler{service: service}
}

// Grant godoc
// @Summary Award points to a student
// @Tags Points
// @Accept json
// @Produce json
// @Param payload body models.GrantPointsInput true "Grant payload"
// @Success 201 {object} response.Body
// @Router /points [post]
func (h *PointHandler) Grant(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var in models.GrantPointsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grant payload"))
		return
	}
	entry, err := h.service.Grant(c.Request.Context(), claims.Actor(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Revoke godoc
// @Summary Revoke a point entry
// @Tags Points
// @Produce json
// @Param id path string true "Point entry ID"
// @Success 204
// @Router /points/{id} [delete]
func (h *PointHandler) Revoke(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Revoke(c.Request.Context(), claims.Actor(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// StudentPoints godoc
// @Summary List a student's point entries with their running total
// @Tags Points
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Body
// @Router /students/{studentId}/points [get]
func (h *PointHandler) StudentPoints(c *gin.Context) {
	entries, summary, err := h.service.ListByStudent(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"entries": entries, "summary": summary})
}
