package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-course-api/internal/models"
	"github.com/noah-isme/campus-course-api/internal/service"
	appErrors "github.com/noah-isme/campus-course-api/pkg/errors"
	"github.com/noah-isme/campus-course-api/pkg/response"
)

type materialService interface {
	CreateFolder(ctx context.Context, actor models.User, in models.CreateFolderInput) (*models.Material, error)
	UploadFile(ctx context.Context, actor models.User, meta service.UploadFileMeta, upload service.MaterialUpload) (*models.Material, error)
	Get(ctx context.Context, id string) (*models.Material, error)
	ListRoots(ctx context.Context) ([]models.Material, error)
	ListChildren(ctx context.Context, folderID string) ([]models.Material, error)
	Delete(ctx context.Context, id string) error
	DownloadURL(ctx context.Context, id string) (string, time.Time, error)
	Download(ctx context.Context, id, token string) (*service.MaterialDownload, error)
}

// MaterialHandler exposes the course material tree.
type MaterialHandler struct {
	service materialService
}

// NewMaterialHandler builds a new handler.
func NewMaterialHandler(service materialService) *MaterialHandler {
	return &MaterialHandler{service: service}
}

// CreateFolder godoc
// @Summary Create a folder node
// @Tags Materials
// @Accept json
// @Produce json
// @Param payload body models.CreateFolderInput true "Folder payload"
// @Success 201 {object} response.Body
// @Router /materials/folders [post]
func (h *MaterialHandler) CreateFolder(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var in models.CreateFolderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid folder payload"))
		return
	}
	folder, err := h.service.CreateFolder(c.Request.Context(), claims.Actor(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, folder)
}

// UploadFile godoc
// @Summary Upload a file into a folder
// @Tags Materials
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Display name"
// @Param description formData string false "Description"
// @Param parent_id formData string true "Parent folder ID"
// @Param file formData file true "File content"
// @Success 201 {object} response.Body
// @Router /materials/files [post]
func (h *MaterialHandler) UploadFile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	meta := service.UploadFileMeta{
		ParentID:    c.PostForm("parent_id"),
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
	}

	// A missing file part is reported by the service together with the
	// other blank fields, so no early return here.
	var upload service.MaterialUpload
	if header, err := c.FormFile("file"); err == nil {
		src, openErr := header.Open()
		if openErr != nil {
			response.Error(c, appErrors.Wrap(openErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open uploaded file"))
			return
		}
		defer src.Close() //nolint:errcheck
		upload = service.MaterialUpload{
			Filename: header.Filename,
			Size:     header.Size,
			MimeType: header.Header.Get("Content-Type"),
			Content:  src,
		}
	}

	material, err := h.service.UploadFile(c.Request.Context(), claims.Actor(), meta, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, material)
}

// Roots godoc
// @Summary List root-level material nodes
// @Tags Materials
// @Produce json
// @Success 200 {object} response.Body
// @Router /materials [get]
func (h *MaterialHandler) Roots(c *gin.Context) {
	nodes, err := h.service.ListRoots(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nodes)
}

// Get godoc
// @Summary Get one material node
// @Tags Materials
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} response.Body
// @Router /materials/{id} [get]
func (h *MaterialHandler) Get(c *gin.Context) {
	node, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, node)
}

// Children godoc
// @Summary List the immediate children of a folder
// @Tags Materials
// @Produce json
// @Param id path string true "Folder ID"
// @Success 200 {object} response.Body
// @Router /materials/{id}/children [get]
func (h *MaterialHandler) Children(c *gin.Context) {
	nodes, err := h.service.ListChildren(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nodes)
}

// Delete godoc
// @Summary Delete a node and, for folders, its whole subtree
// @Tags Materials
// @Produce json
// @Param id path string true "Material ID"
// @Success 204
// @Router /materials/{id} [delete]
func (h *MaterialHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DownloadURL godoc
// @Summary Issue a short-lived signed download URL for a file node
// @Tags Materials
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} response.Body
// @Router /materials/{id}/download-url [get]
func (h *MaterialHandler) DownloadURL(c *gin.Context) {
	downloadURL, expiresAt, err := h.service.DownloadURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"url": downloadURL, "expires_at": expiresAt})
}

// Download godoc
// @Summary Stream a file node's content
// @Tags Materials
// @Produce octet-stream
// @Param id path string true "Material ID"
// @Param token query string true "Signed download token"
// @Success 200 {file} byte
// @Router /materials/{id}/download [get]
func (h *MaterialHandler) Download(c *gin.Context) {
	result, err := h.service.Download(c.Request.Context(), c.Param("id"), c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, result.SizeBytes, result.MimeType, result.File, nil)
}
