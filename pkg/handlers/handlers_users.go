package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oliverkemp/staffdesk/pkg/models"
)

// ListUsers returns all registered users (admin only)
func (h *Handler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Order("name").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// UploadProfilePicture stores the current user's picture under the upload
// directory with a random filename
func (h *Handler) UploadProfilePicture(c *gin.Context) {
	user := currentUser(c)

	file, err := c.FormFile("picture")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "picture file is required"})
		return
	}

	ext := filepath.Ext(file.Filename)
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image type"})
		return
	}

	dir := h.UploadDir
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not prepare upload directory"})
		return
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not store picture"})
		return
	}

	old := user.ProfilePicture
	user.ProfilePicture = name
	if err := h.DB.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update profile"})
		return
	}
	if old != "" && old != name {
		_ = os.Remove(filepath.Join(dir, old))
	}

	c.JSON(http.StatusOK, user)
}
