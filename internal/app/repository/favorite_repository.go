package repository

import (
	"github.com/mlhuang/tastemap-backend/internal/app/model"
	"github.com/mlhuang/tastemap-backend/pkg/logger"
	"gorm.io/gorm"
)

// FavoriteRepository manages the favorites join table. The unique pair
// constraint on (user_id, restaurant_id) lives in the database schema.
type FavoriteRepository interface {
	Create(userID, restaurantID uint) error
	Delete(userID, restaurantID uint) error
	Exists(userID, restaurantID uint) (bool, error)
	ListRestaurantIDsByUser(userID uint) ([]uint, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(userID, restaurantID uint) error {
	logger.Debug("Creating favorite in database", map[string]interface{}{
		"user_id":       userID,
		"restaurant_id": restaurantID,
	})

	favorite := model.Favorite{UserID: userID, RestaurantID: restaurantID}
	if err := r.db.Create(&favorite).Error; err != nil {
		logger.Error("Failed to create favorite in database", err, map[string]interface{}{
			"user_id":       userID,
			"restaurant_id": restaurantID,
		})
		return err
	}
	return nil
}

func (r *favoriteRepository) Delete(userID, restaurantID uint) error {
	logger.Debug("Deleting favorite from database", map[string]interface{}{
		"user_id":       userID,
		"restaurant_id": restaurantID,
	})

	err := r.db.Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).
		Delete(&model.Favorite{}).Error
	if err != nil {
		logger.Error("Failed to delete favorite from database", err, map[string]interface{}{
			"user_id":       userID,
			"restaurant_id": restaurantID,
		})
		return err
	}
	return nil
}

func (r *favoriteRepository) Exists(userID, restaurantID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Favorite{}).
		Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check favorite existence", err, map[string]interface{}{
			"user_id":       userID,
			"restaurant_id": restaurantID,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *favoriteRepository) ListRestaurantIDsByUser(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.Favorite{}).
		Where("user_id = ?", userID).
		Pluck("restaurant_id", &ids).Error
	if err != nil {
		logger.Error("Failed to list favorited restaurant IDs", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return ids, nil
}

// LikeRepository manages the likes join table, same shape as favorites
type LikeRepository interface {
	Create(userID, restaurantID uint) error
	Delete(userID, restaurantID uint) error
	Exists(userID, restaurantID uint) (bool, error)
	ListRestaurantIDsByUser(userID uint) ([]uint, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Create(userID, restaurantID uint) error {
	logger.Debug("Creating like in database", map[string]interface{}{
		"user_id":       userID,
		"restaurant_id": restaurantID,
	})

	like := model.Like{UserID: userID, RestaurantID: restaurantID}
	if err := r.db.Create(&like).Error; err != nil {
		logger.Error("Failed to create like in database", err, map[string]interface{}{
			"user_id":       userID,
			"restaurant_id": restaurantID,
		})
		return err
	}
	return nil
}

func (r *likeRepository) Delete(userID, restaurantID uint) error {
	err := r.db.Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).
		Delete(&model.Like{}).Error
	if err != nil {
		logger.Error("Failed to delete like from database", err, map[string]interface{}{
			"user_id":       userID,
			"restaurant_id": restaurantID,
		})
		return err
	}
	return nil
}

func (r *likeRepository) Exists(userID, restaurantID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Like{}).
		Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check like existence", err, map[string]interface{}{
			"user_id":       userID,
			"restaurant_id": restaurantID,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *likeRepository) ListRestaurantIDsByUser(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.Like{}).
		Where("user_id = ?", userID).
		Pluck("restaurant_id", &ids).Error
	if err != nil {
		logger.Error("Failed to list liked restaurant IDs", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return ids, nil
}
