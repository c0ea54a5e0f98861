package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-course-api/internal/models"
	appErrors "github.com/noah-isme/campus-course-api/pkg/errors"
)

// Body is the envelope wrapping every API response.
type Body struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *ErrorBody             `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// ErrorBody describes a failed request. Fields carries per-attribute
// validation messages keyed by attribute name.
type ErrorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

// JSON writes data wrapped in the standard envelope.
func JSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Body{Data: data})
}

// Created writes data with a 201 status.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// NoContent writes an empty 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paginated writes a page of data together with pagination metadata.
func Paginated(c *gin.Context, status int, data interface{}, pagination *models.Pagination) {
	c.JSON(status, Body{Data: data, Pagination: pagination})
}

// Error maps err onto the envelope using the application error contract.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.JSON(appErr.Status, Body{Error: &ErrorBody{
		Code:    appErr.Code,
		Message: appErr.Message,
		Fields:  appErr.Fields,
	}})
}
