// internal/api/response.go
package api

import (
	apperrors "article-pipeline/internal/common/errors"
	"article-pipeline/internal/models"

	"github.com/gin-gonic/gin"
)

type SuccessResponse struct {
	Success    bool                     `json:"success"`
	RequestID  string                   `json:"requestId,omitempty"`
	Data       interface{}              `json:"data"`
	Usage      *models.UsageReport      `json:"usage,omitempty"`
	Validation *models.ValidationReport `json:"validation,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
	Debug   string `json:"debug,omitempty"`
}

func newErrorResponse(stdErr *apperrors.StandardError) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error:   stdErr.Message,
		Code:    string(stdErr.Code),
		Details: stdErr.Details,
		Debug:   stdErr.Debug,
	}
}

func writeError(c *gin.Context, err error) {
	stdErr := apperrors.Normalize(err)
	c.JSON(stdErr.HTTPStatus(), newErrorResponse(stdErr))
}

func abortWithError(c *gin.Context, err error) {
	stdErr := apperrors.Normalize(err)
	c.AbortWithStatusJSON(stdErr.HTTPStatus(), newErrorResponse(stdErr))
}
