package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mlhuang/tastemap-backend/internal/app/service"
	"github.com/mlhuang/tastemap-backend/internal/middleware"
)

type CommentController struct {
	commentService service.CommentService
}

func NewCommentController(commentService service.CommentService) *CommentController {
	return &CommentController{
		commentService: commentService,
	}
}

type CreateCommentRequest struct {
	RestaurantID uint   `json:"restaurant_id" binding:"required"`
	Text         string `json:"text" binding:"required"`
}

// CreateComment posts a comment on a restaurant
// POST /comments
func (ctrl *CommentController) CreateComment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := middleware.GetUserID(c)

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Restaurant ID and text are required",
		})
		return
	}

	comment, err := ctrl.commentService.CreateComment(userID, req.RestaurantID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentTextRequired):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Comment text is required",
			})
		case errors.Is(err, service.ErrRestaurantNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Restaurant not found",
			})
		default:
			log.Error("Failed to create comment", err, map[string]interface{}{
				"user_id":       userID,
				"restaurant_id": req.RestaurantID,
			})
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create comment",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"comment": comment,
	})
}

// DeleteComment removes a comment, admin only
// DELETE /comments/:id
func (ctrl *CommentController) DeleteComment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.commentService.DeleteComment(id); err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Comment not found",
			})
			return
		}
		log.Error("Failed to delete comment", err, map[string]interface{}{
			"comment_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete comment",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comment deleted",
	})
}
