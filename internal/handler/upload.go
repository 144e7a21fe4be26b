package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-vault/campusvault-api/internal/service"
	appErrors "github.com/campus-vault/campusvault-api/pkg/errors"
)

// uploadFromForm extracts the "file" part of a multipart request. The
// caller owns the returned closer.
func uploadFromForm(c *gin.Context) (service.ResourceUpload, func(), error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return service.ResourceUpload{}, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return service.ResourceUpload{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open uploaded file")
	}
	upload := service.ResourceUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Content:  file,
	}
	return upload, func() { _ = file.Close() }, nil
}
