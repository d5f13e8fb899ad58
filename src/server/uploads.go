package server

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	app "placeshare/src/app"
)

const imageFormField = "image"

// formImage pulls the required image out of a multipart request and enforces
// the upload size limit.
func formImage(c *gin.Context, maxBytes int64) (multipart.File, *multipart.FileHeader, *apiError) {
	file, header, err := c.Request.FormFile(imageFormField)
	if err != nil {
		return nil, nil, errValidation("an image upload is required")
	}
	if maxBytes > 0 && header.Size > maxBytes {
		file.Close()
		return nil, nil, errValidation(fmt.Sprintf("image exceeds the %d byte upload limit", maxBytes))
	}
	return file, header, nil
}

// storeImage uploads the file under a fresh object name and returns its URL.
func storeImage(ctx context.Context, files app.FileStorage, file multipart.File, header *multipart.FileHeader) (string, error) {
	name := fmt.Sprintf("images/%s%s", uuid.New().String(), strings.ToLower(filepath.Ext(header.Filename)))
	return files.UploadFile(ctx, name, file, header.Size, header.Header.Get("Content-Type"))
}
