package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"flipyard/internal/service"
)

// multipartOverhead leaves room for part headers and boundaries around a
// file of the maximum size.
const multipartOverhead = 1 << 20

func (h HandlerSet) UploadMedia(c *gin.Context) {
	user := mustUser(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Uploads.MaxBytes+multipartOverhead)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		badRequest(c, "file is required")
		return
	}
	defer file.Close()

	image, err := h.uploads.Upload(c.Request.Context(), service.UploadInput{
		OwnerID:     user.ID,
		File:        file,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"image": imageResponse{
			ID:          image.ID,
			URL:         image.URL,
			ContentType: image.ContentType,
			SizeBytes:   image.SizeBytes,
			CreatedAt:   image.CreatedAt,
		},
	})
}
