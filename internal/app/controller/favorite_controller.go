package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mlhuang/tastemap-backend/internal/app/service"
	"github.com/mlhuang/tastemap-backend/internal/middleware"
)

type FavoriteController struct {
	favoriteService service.FavoriteService
}

func NewFavoriteController(favoriteService service.FavoriteService) *FavoriteController {
	return &FavoriteController{
		favoriteService: favoriteService,
	}
}

// AddFavorite bookmarks a restaurant for the signed-in user
// POST /favorite/:restaurantId
func (ctrl *FavoriteController) AddFavorite(c *gin.Context) {
	ctrl.toggle(c, ctrl.favoriteService.AddFavorite, "favorited")
}

// RemoveFavorite drops the bookmark
// DELETE /favorite/:restaurantId
func (ctrl *FavoriteController) RemoveFavorite(c *gin.Context) {
	ctrl.toggle(c, ctrl.favoriteService.RemoveFavorite, "unfavorited")
}

// AddLike likes a restaurant for the signed-in user
// POST /like/:restaurantId
func (ctrl *FavoriteController) AddLike(c *gin.Context) {
	ctrl.toggle(c, ctrl.favoriteService.AddLike, "liked")
}

// RemoveLike drops the like
// DELETE /like/:restaurantId
func (ctrl *FavoriteController) RemoveLike(c *gin.Context) {
	ctrl.toggle(c, ctrl.favoriteService.RemoveLike, "unliked")
}

func (ctrl *FavoriteController) toggle(c *gin.Context, op func(userID, restaurantID uint) error, status string) {
	log := middleware.GetLoggerFromContext(c)
	userID := middleware.GetUserID(c)

	restaurantID, ok := parseIDParam(c, "restaurantId")
	if !ok {
		return
	}

	if err := op(userID, restaurantID); err != nil {
		if errors.Is(err, service.ErrRestaurantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Restaurant not found",
			})
			return
		}
		log.Error("Favorite toggle failed", err, map[string]interface{}{
			"user_id":       userID,
			"restaurant_id": restaurantID,
			"op":            status,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Operation failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        status,
		"restaurant_id": restaurantID,
	})
}
