package repository

import (
	"github.com/mlhuang/tastemap-backend/internal/app/model"
	"github.com/mlhuang/tastemap-backend/pkg/logger"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(comment *model.Comment) error
	Delete(id uint) error
	FindByID(id uint) (*model.Comment, error)
	FindNewest(limit int) ([]model.Comment, error)
	FindByUser(userID uint) ([]model.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(comment *model.Comment) error {
	logger.Debug("Creating comment in database", map[string]interface{}{
		"user_id":       comment.UserID,
		"restaurant_id": comment.RestaurantID,
	})

	if err := r.db.Create(comment).Error; err != nil {
		logger.Error("Failed to create comment in database", err, map[string]interface{}{
			"user_id":       comment.UserID,
			"restaurant_id": comment.RestaurantID,
		})
		return err
	}

	logger.Debug("Comment created in database", map[string]interface{}{
		"comment_id": comment.ID,
	})
	return nil
}

func (r *commentRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Comment{}, id).Error; err != nil {
		logger.Error("Failed to delete comment from database", err, map[string]interface{}{
			"comment_id": id,
		})
		return err
	}
	return nil
}

func (r *commentRepository) FindByID(id uint) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.First(&comment, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find comment by ID", err, map[string]interface{}{
				"comment_id": id,
			})
		}
		return nil, err
	}
	return &comment, nil
}

// FindNewest returns the most recent comments with their author and restaurant
func (r *commentRepository) FindNewest(limit int) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.Model(&model.Comment{}).
		Preload("User").
		Preload("Restaurant").
		Order("created_at DESC").
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		logger.Error("Failed to find newest comments", err, nil)
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) FindByUser(userID uint) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.Model(&model.Comment{}).
		Where("user_id = ?", userID).
		Preload("Restaurant").
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		logger.Error("Failed to find comments by user", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return comments, nil
}
