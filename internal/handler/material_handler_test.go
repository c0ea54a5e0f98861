package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-course-api/internal/middleware"
	"github.com/noah-isme/campus-course-api/internal/models"
	"github.com/noah-isme/campus-course-api/internal/service"
	appErrors "github.com/noah-isme/campus-course-api/pkg/errors"
)

type materialServiceMock struct {
	uploadResp   *models.Material
	uploadErr    error
	downloadResp *service.MaterialDownload
	downloadErr  error
	lastMeta     service.UploadFileMeta
	lastFilename string
	lastContent  []byte
	lastToken    string
}

func (m *materialServiceMock) CreateFolder(ctx context.Context, actor models.User, in models.CreateFolderInput) (*models.Material, error) {
	return nil, appErrors.ErrNotFound
}

func (m *materialServiceMock) UploadFile(ctx context.Context, actor models.User, meta service.UploadFileMeta, upload service.MaterialUpload) (*models.Material, error) {
	m.lastMeta = meta
	m.lastFilename = upload.Filename
	if upload.Content != nil {
		m.lastContent, _ = io.ReadAll(upload.Content)
	}
	return m.uploadResp, m.uploadErr
}

func (m *materialServiceMock) Get(ctx context.Context, id string) (*models.Material, error) {
	return nil, appErrors.ErrNotFound
}

func (m *materialServiceMock) ListRoots(ctx context.Context) ([]models.Material, error) {
	return nil, nil
}

func (m *materialServiceMock) ListChildren(ctx context.Context, folderID string) ([]models.Material, error) {
	return nil, nil
}

func (m *materialServiceMock) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *materialServiceMock) DownloadURL(ctx context.Context, id string) (string, time.Time, error) {
	return "", time.Time{}, appErrors.ErrNotFound
}

func (m *materialServiceMock) Download(ctx context.Context, id, token string) (*service.MaterialDownload, error) {
	m.lastToken = token
	return m.downloadResp, m.downloadErr
}

func multipartUpload(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestMaterialHandlerUploadFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &materialServiceMock{uploadResp: &models.Material{ID: "mat-1", Kind: models.MaterialKindFile}}
	handler := NewMaterialHandler(mockSvc)

	body, contentType := multipartUpload(t, map[string]string{
		"name":      "Syllabus",
		"parent_id": "folder-1",
	}, "upload.txt", "hello")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/materials/files", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	c.Set(middleware.ContextUserKey, staffClaims())

	handler.UploadFile(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "folder-1", mockSvc.lastMeta.ParentID)
	assert.Equal(t, "Syllabus", mockSvc.lastMeta.Name)
	assert.Equal(t, "upload.txt", mockSvc.lastFilename)
	assert.Equal(t, []byte("hello"), mockSvc.lastContent)
}

func TestMaterialHandlerUploadFileMissingPart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &materialServiceMock{
		uploadErr: appErrors.NewValidation(map[string][]string{"file": {"can't be blank"}}),
	}
	handler := NewMaterialHandler(mockSvc)

	body, contentType := multipartUpload(t, map[string]string{"name": "Syllabus", "parent_id": "folder-1"}, "", "")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/materials/files", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	c.Set(middleware.ContextUserKey, staffClaims())

	handler.UploadFile(c)
	// The missing part reaches the service as an empty upload so all
	// blank fields come back in one validation map.
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, mockSvc.lastFilename)
	assert.Nil(t, mockSvc.lastContent)
}

func TestMaterialHandlerDownloadStreamsContent(t *testing.T) {
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "syllabus.pdf")
	require.NoError(t, os.WriteFile(path, []byte("pdf body"), 0o644))
	file, err := os.Open(path)
	require.NoError(t, err)

	mockSvc := &materialServiceMock{downloadResp: &service.MaterialDownload{
		File:      file,
		Filename:  "syllabus.pdf",
		MimeType:  "application/pdf",
		SizeBytes: int64(len("pdf body")),
	}}
	handler := NewMaterialHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/materials/mat-1/download?token=tok-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "mat-1"}}

	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="syllabus.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "pdf body", w.Body.String())
	assert.Equal(t, "tok-1", mockSvc.lastToken)
}

func TestMaterialHandlerDownloadRejectedToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &materialServiceMock{downloadErr: appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")}
	handler := NewMaterialHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/materials/mat-1/download?token=bad", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "mat-1"}}

	handler.Download(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
