package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func UploadProductImage(images ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/uploads"
		defer handlePanic(c, route)

		file, err := c.FormFile("image")
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "image file is required")
			return
		}

		url, err := images.Save(file)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "url": url})
	}
}

// DeleteProductImage takes the public path in ?path=.
func DeleteProductImage(images ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/uploads"
		defer handlePanic(c, route)

		if err := images.Delete(c.Query("path")); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Image deleted"})
	}
}
