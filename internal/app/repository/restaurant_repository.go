package repository

import (
	"github.com/mlhuang/tastemap-backend/internal/app/model"
	"github.com/mlhuang/tastemap-backend/pkg/logger"
	"gorm.io/gorm"
)

// RestaurantFilter narrows and windows a restaurant listing query.
// A nil CategoryID means all categories; an unknown id yields an empty set.
type RestaurantFilter struct {
	CategoryID *uint
	Limit      int
	Offset     int
}

type RestaurantRepository interface {
	Create(restaurant *model.Restaurant) error
	Update(restaurant *model.Restaurant) error
	Delete(id uint) error
	FindAll() ([]model.Restaurant, error)
	FindPage(filter RestaurantFilter) ([]model.Restaurant, int64, error)
	FindByID(id uint) (*model.Restaurant, error)
	FindDetail(id uint) (*model.Restaurant, error)
	FindDashboard(id uint) (*model.Restaurant, error)
	FindNewest(limit int) ([]model.Restaurant, error)
	FindTopByFavorites(limit int) ([]model.Restaurant, error)
	IncrementViewCounts(id uint) error
	BulkCreate(restaurants []model.Restaurant, batchSize int) error
}

type restaurantRepository struct {
	db *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) RestaurantRepository {
	return &restaurantRepository{db: db}
}

func (r *restaurantRepository) Create(restaurant *model.Restaurant) error {
	logger.Debug("Creating restaurant in database", map[string]interface{}{
		"name":        restaurant.Name,
		"category_id": restaurant.CategoryID,
	})

	if err := r.db.Create(restaurant).Error; err != nil {
		logger.Error("Failed to create restaurant in database", err, map[string]interface{}{
			"name":        restaurant.Name,
			"category_id": restaurant.CategoryID,
		})
		return err
	}

	logger.Debug("Restaurant created in database", map[string]interface{}{
		"restaurant_id": restaurant.ID,
		"name":          restaurant.Name,
	})
	return nil
}

func (r *restaurantRepository) Update(restaurant *model.Restaurant) error {
	logger.Debug("Updating restaurant in database", map[string]interface{}{
		"restaurant_id": restaurant.ID,
		"name":          restaurant.Name,
	})

	if err := r.db.Save(restaurant).Error; err != nil {
		logger.Error("Failed to update restaurant in database", err, map[string]interface{}{
			"restaurant_id": restaurant.ID,
		})
		return err
	}
	return nil
}

func (r *restaurantRepository) Delete(id uint) error {
	logger.Debug("Deleting restaurant from database", map[string]interface{}{
		"restaurant_id": id,
	})

	if err := r.db.Delete(&model.Restaurant{}, id).Error; err != nil {
		logger.Error("Failed to delete restaurant from database", err, map[string]interface{}{
			"restaurant_id": id,
		})
		return err
	}
	return nil
}

func (r *restaurantRepository) FindAll() ([]model.Restaurant, error) {
	var restaurants []model.Restaurant
	err := r.db.Model(&model.Restaurant{}).
		Preload("Category").
		Order("id ASC").
		Find(&restaurants).Error
	if err != nil {
		logger.Error("Failed to find restaurants", err, nil)
		return nil, err
	}
	return restaurants, nil
}

// FindPage returns one window of restaurants plus the total count of rows
// matching the filter, the count ignoring limit and offset.
func (r *restaurantRepository) FindPage(filter RestaurantFilter) ([]model.Restaurant, int64, error) {
	logger.Debug("Finding restaurant page", map[string]interface{}{
		"category_id": filter.CategoryID,
		"limit":       filter.Limit,
		"offset":      filter.Offset,
	})

	query := r.db.Model(&model.Restaurant{})
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count restaurants", err, nil)
		return nil, 0, err
	}

	query = query.Preload("Category").Order("id ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var restaurants []model.Restaurant
	if err := query.Find(&restaurants).Error; err != nil {
		logger.Error("Failed to find restaurant page", err, map[string]interface{}{
			"category_id": filter.CategoryID,
		})
		return nil, 0, err
	}

	logger.Debug("Restaurant page found", map[string]interface{}{
		"count": len(restaurants),
		"total": total,
	})
	return restaurants, total, nil
}

func (r *restaurantRepository) FindByID(id uint) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	err := r.db.Preload("Category").First(&restaurant, id).Error
	if err != nil {
		logger.Error("Failed to find restaurant by ID", err, map[string]interface{}{
			"restaurant_id": id,
		})
		return nil, err
	}
	return &restaurant, nil
}

// FindDetail loads the restaurant with its category, comments (with authors),
// and the users who favorited and liked it.
func (r *restaurantRepository) FindDetail(id uint) (*model.Restaurant, error) {
	logger.Debug("Finding restaurant detail", map[string]interface{}{
		"restaurant_id": id,
	})

	var restaurant model.Restaurant
	err := r.db.
		Preload("Category").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at DESC").Preload("User")
		}).
		First(&restaurant, id).Error
	if err != nil {
		logger.Error("Failed to find restaurant detail", err, map[string]interface{}{
			"restaurant_id": id,
		})
		return nil, err
	}

	favoritedUsers, err := r.usersJoined("favorites", id)
	if err != nil {
		return nil, err
	}
	likedUsers, err := r.usersJoined("likes", id)
	if err != nil {
		return nil, err
	}
	restaurant.FavoritedUsers = favoritedUsers
	restaurant.LikedUsers = likedUsers

	return &restaurant, nil
}

// usersJoined resolves the user side of a (user, restaurant) join table
func (r *restaurantRepository) usersJoined(joinTable string, restaurantID uint) ([]model.User, error) {
	var users []model.User
	err := r.db.Model(&model.User{}).
		Joins("JOIN "+joinTable+" ON "+joinTable+".user_id = users.id").
		Where(joinTable+".restaurant_id = ?", restaurantID).
		Order(joinTable + ".created_at ASC").
		Find(&users).Error
	if err != nil {
		logger.Error("Failed to load users from join table", err, map[string]interface{}{
			"join_table":    joinTable,
			"restaurant_id": restaurantID,
		})
		return nil, err
	}
	return users, nil
}

// FindDashboard loads the restaurant with its category and comments, each
// comment carrying its restaurant rather than its author.
func (r *restaurantRepository) FindDashboard(id uint) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	err := r.db.
		Preload("Category").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Preload("Restaurant")
		}).
		First(&restaurant, id).Error
	if err != nil {
		logger.Error("Failed to find restaurant dashboard", err, map[string]interface{}{
			"restaurant_id": id,
		})
		return nil, err
	}
	return &restaurant, nil
}

func (r *restaurantRepository) FindNewest(limit int) ([]model.Restaurant, error) {
	var restaurants []model.Restaurant
	err := r.db.Model(&model.Restaurant{}).
		Preload("Category").
		Order("created_at DESC").
		Limit(limit).
		Find(&restaurants).Error
	if err != nil {
		logger.Error("Failed to find newest restaurants", err, nil)
		return nil, err
	}
	return restaurants, nil
}

// FindTopByFavorites ranks restaurants by how many users favorited them
func (r *restaurantRepository) FindTopByFavorites(limit int) ([]model.Restaurant, error) {
	var restaurants []model.Restaurant
	err := r.db.Model(&model.Restaurant{}).
		Select("restaurants.*, COUNT(favorites.id) AS favorite_count").
		Joins("LEFT JOIN favorites ON favorites.restaurant_id = restaurants.id").
		Group("restaurants.id").
		Order("favorite_count DESC").
		Order("restaurants.created_at DESC").
		Limit(limit).
		Preload("Category").
		Find(&restaurants).Error
	if err != nil {
		logger.Error("Failed to find top restaurants", err, nil)
		return nil, err
	}
	return restaurants, nil
}

// IncrementViewCounts bumps the view counter by one in place.
// The counter only ever grows.
func (r *restaurantRepository) IncrementViewCounts(id uint) error {
	if err := r.db.Model(&model.Restaurant{}).Where("id = ?", id).
		Update("view_counts", gorm.Expr("view_counts + ?", 1)).Error; err != nil {
		logger.Error("Failed to increment restaurant view counts", err, map[string]interface{}{
			"restaurant_id": id,
		})
		return err
	}
	return nil
}

// BulkCreate inserts restaurants in batches, used by the XLSX seed command
func (r *restaurantRepository) BulkCreate(restaurants []model.Restaurant, batchSize int) error {
	logger.Info("Bulk creating restaurants", map[string]interface{}{
		"total":      len(restaurants),
		"batch_size": batchSize,
	})

	if err := r.db.CreateInBatches(restaurants, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create restaurants", err, nil)
		return err
	}
	return nil
}
