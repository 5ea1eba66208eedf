package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mlhuang/tastemap-backend/internal/app/service"
	"github.com/mlhuang/tastemap-backend/internal/middleware"
	"github.com/mlhuang/tastemap-backend/internal/storage"
)

type UserController struct {
	userService service.UserService
	storage     *storage.LocalStorage
}

func NewUserController(userService service.UserService, storage *storage.LocalStorage) *UserController {
	return &UserController{
		userService: userService,
		storage:     storage,
	}
}

// GetProfile returns a user with their comment history
// GET /users/:id
func (ctrl *UserController) GetProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	profile, err := ctrl.userService.GetProfile(id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
			return
		}
		log.Error("Failed to fetch profile", err, map[string]interface{}{
			"user_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch profile",
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile edits a user's name and avatar. Only the owner or an admin
// may edit; the avatar arrives as a multipart "image" field.
// PUT /users/:id
func (ctrl *UserController) UpdateProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	requesterID := middleware.GetUserID(c)
	requesterIsAdmin := middleware.GetUserIsAdmin(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	input := service.UpdateProfileInput{
		Name: c.PostForm("name"),
	}

	if file, err := c.FormFile("image"); err == nil && file != nil {
		path, err := ctrl.storage.Save(file)
		if err != nil {
			respondUploadError(c, log, err)
			return
		}
		input.Image = path
	}

	user, err := ctrl.userService.UpdateProfile(requesterID, requesterIsAdmin, id, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "You can only edit your own profile",
			})
		case errors.Is(err, service.ErrNameRequired):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Name is required",
			})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
		default:
			log.Error("Failed to update profile", err, map[string]interface{}{
				"user_id":      id,
				"requester_id": requesterID,
			})
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update profile",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated",
		"user":    user,
	})
}
