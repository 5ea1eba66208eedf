package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mlhuang/tastemap-backend/internal/app/service"
	"github.com/mlhuang/tastemap-backend/internal/middleware"
)

type RestaurantController struct {
	restaurantService service.RestaurantService
}

func NewRestaurantController(restaurantService service.RestaurantService) *RestaurantController {
	return &RestaurantController{
		restaurantService: restaurantService,
	}
}

// GetRestaurants returns one page of restaurants with the category filter bar
// GET /restaurants?page=1&categoryId=2
func (ctrl *RestaurantController) GetRestaurants(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := middleware.GetUserID(c)

	opts := service.ListOptions{Page: 1}
	if pageStr := c.Query("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil {
			opts.Page = page
		}
	}
	if catStr := c.Query("categoryId"); catStr != "" {
		catID, err := strconv.ParseUint(catStr, 10, 32)
		if err != nil {
			log.Warn("Invalid category filter", map[string]interface{}{
				"category_id": catStr,
			})
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid category ID",
			})
			return
		}
		id := uint(catID)
		opts.CategoryID = &id
	}

	page, err := ctrl.restaurantService.ListRestaurants(userID, opts)
	if err != nil {
		log.Error("Failed to list restaurants", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch restaurants",
		})
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetRestaurant returns a restaurant with its comments and bumps its view count
// GET /restaurants/:id
func (ctrl *RestaurantController) GetRestaurant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := middleware.GetUserID(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := ctrl.restaurantService.GetRestaurant(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrRestaurantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Restaurant not found",
			})
			return
		}
		log.Error("Failed to fetch restaurant", err, map[string]interface{}{
			"restaurant_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch restaurant",
		})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// GetFeeds returns the newest restaurants and newest comments side by side
// GET /restaurants/feeds
func (ctrl *RestaurantController) GetFeeds(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	feed, err := ctrl.restaurantService.GetFeeds(c.Request.Context())
	if err != nil {
		log.Error("Failed to fetch feeds", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch feeds",
		})
		return
	}

	c.JSON(http.StatusOK, feed)
}

// GetDashboard returns a restaurant's engagement numbers
// GET /restaurants/:id/dashboard
func (ctrl *RestaurantController) GetDashboard(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	restaurant, err := ctrl.restaurantService.GetDashboard(id)
	if err != nil {
		if errors.Is(err, service.ErrRestaurantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Restaurant not found",
			})
			return
		}
		log.Error("Failed to fetch dashboard", err, map[string]interface{}{
			"restaurant_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch dashboard",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"restaurant":    restaurant,
		"comment_count": len(restaurant.Comments),
		"view_counts":   restaurant.ViewCounts,
	})
}

// GetTopRestaurants returns the most-favorited restaurants
// GET /restaurants/top
func (ctrl *RestaurantController) GetTopRestaurants(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := middleware.GetUserID(c)

	restaurants, err := ctrl.restaurantService.GetTopRestaurants(c.Request.Context(), userID)
	if err != nil {
		log.Error("Failed to fetch top restaurants", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch top restaurants",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"restaurants": restaurants,
	})
}

// parseIDParam reads a positive integer path parameter, replying 400 itself
// when the value does not parse.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	idStr := c.Param(name)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid ID",
		})
		return 0, false
	}
	return uint(id), true
}
