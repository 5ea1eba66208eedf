package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mlhuang/tastemap-backend/internal/app/service"
	"github.com/mlhuang/tastemap-backend/internal/middleware"
	"github.com/mlhuang/tastemap-backend/internal/storage"
	"github.com/mlhuang/tastemap-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// AdminController covers the restaurant and user management surface.
type AdminController struct {
	restaurantService service.RestaurantService
	userService       service.UserService
	storage           *storage.LocalStorage
}

func NewAdminController(
	restaurantService service.RestaurantService,
	userService service.UserService,
	storage *storage.LocalStorage,
) *AdminController {
	return &AdminController{
		restaurantService: restaurantService,
		userService:       userService,
		storage:           storage,
	}
}

// GetRestaurants lists every restaurant for the management table
// GET /admin/restaurants
func (ctrl *AdminController) GetRestaurants(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	restaurants, err := ctrl.restaurantService.ListAllRestaurants()
	if err != nil {
		log.Error("Failed to list restaurants for admin", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch restaurants",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"restaurants": restaurants,
	})
}

// GetRestaurant returns one restaurant for the edit form
// GET /admin/restaurants/:id
func (ctrl *AdminController) GetRestaurant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	restaurant, err := ctrl.restaurantService.GetAdminRestaurant(id)
	if err != nil {
		if errors.Is(err, service.ErrRestaurantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Restaurant not found",
			})
			return
		}
		log.Error("Failed to fetch restaurant for admin", err, map[string]interface{}{
			"restaurant_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch restaurant",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"restaurant": restaurant,
	})
}

// CreateRestaurant adds a restaurant from the multipart admin form
// POST /admin/restaurants
func (ctrl *AdminController) CreateRestaurant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	input, ok := ctrl.bindRestaurantForm(c, log)
	if !ok {
		return
	}

	restaurant, err := ctrl.restaurantService.CreateRestaurant(input)
	if err != nil {
		respondRestaurantInputError(c, log, err, input)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"restaurant": restaurant,
	})
}

// UpdateRestaurant edits a restaurant; an omitted image keeps the old one
// PUT /admin/restaurants/:id
func (ctrl *AdminController) UpdateRestaurant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	input, ok := ctrl.bindRestaurantForm(c, log)
	if !ok {
		return
	}

	restaurant, err := ctrl.restaurantService.UpdateRestaurant(id, input)
	if err != nil {
		respondRestaurantInputError(c, log, err, input)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"restaurant": restaurant,
	})
}

// DeleteRestaurant removes a restaurant
// DELETE /admin/restaurants/:id
func (ctrl *AdminController) DeleteRestaurant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.restaurantService.DeleteRestaurant(id); err != nil {
		if errors.Is(err, service.ErrRestaurantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Restaurant not found",
			})
			return
		}
		log.Error("Failed to delete restaurant", err, map[string]interface{}{
			"restaurant_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete restaurant",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Restaurant deleted",
	})
}

// ExportRestaurants streams the full restaurant table as an XLSX workbook
// GET /admin/restaurants/export
func (ctrl *AdminController) ExportRestaurants(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	restaurants, err := ctrl.restaurantService.ListAllRestaurants()
	if err != nil {
		log.Error("Failed to load restaurants for export", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to export restaurants",
		})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Restaurants"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"ID", "Name", "Category", "Tel", "Address", "Opening Hours", "Views", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, r := range restaurants {
		values := []interface{}{
			r.ID,
			r.Name,
			r.Category.Name,
			r.Tel,
			r.Address,
			r.OpeningHours,
			r.ViewCounts,
			r.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("restaurants-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		log.Error("Failed to write export", err, nil)
	}
}

// GetUsers lists accounts for the admin user table
// GET /admin/users
func (ctrl *AdminController) GetUsers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	users, err := ctrl.userService.ListUsers()
	if err != nil {
		log.Error("Failed to list users", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}

// ToggleAdmin flips a user's admin flag
// PUT /admin/users/:id/toggleAdmin
func (ctrl *AdminController) ToggleAdmin(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := ctrl.userService.ToggleAdmin(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
		case errors.Is(err, service.ErrLastAdminLock):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Cannot demote the only admin",
			})
		default:
			log.Error("Failed to toggle admin flag", err, map[string]interface{}{
				"user_id": id,
			})
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update user",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

// bindRestaurantForm reads the multipart restaurant form, storing the image
// when one is attached. It replies itself on bad input.
func (ctrl *AdminController) bindRestaurantForm(c *gin.Context, log *logger.Logger) (service.RestaurantInput, bool) {
	input := service.RestaurantInput{
		Name:         c.PostForm("name"),
		Tel:          c.PostForm("tel"),
		Address:      c.PostForm("address"),
		OpeningHours: c.PostForm("opening_hours"),
		Description:  c.PostForm("description"),
	}

	if catStr := c.PostForm("category_id"); catStr != "" {
		catID, err := strconv.ParseUint(catStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid category ID",
			})
			return input, false
		}
		input.CategoryID = uint(catID)
	}

	if file, err := c.FormFile("image"); err == nil && file != nil {
		path, err := ctrl.storage.Save(file)
		if err != nil {
			respondUploadError(c, log, err)
			return input, false
		}
		input.Image = path
	}

	return input, true
}

func respondRestaurantInputError(c *gin.Context, log *logger.Logger, err error, input service.RestaurantInput) {
	switch {
	case errors.Is(err, service.ErrRestaurantNameRequired):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Restaurant name is required",
		})
	case errors.Is(err, service.ErrCategoryNotFound):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Category does not exist",
		})
	case errors.Is(err, service.ErrRestaurantNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Restaurant not found",
		})
	default:
		log.Error("Restaurant write failed", err, map[string]interface{}{
			"name": input.Name,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to save restaurant",
		})
	}
}

func respondUploadError(c *gin.Context, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, storage.ErrFileTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Image exceeds the size limit",
		})
	case errors.Is(err, storage.ErrInvalidFileType):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Image type is not allowed",
		})
	default:
		log.Error("Upload failed", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to store image",
		})
	}
}
