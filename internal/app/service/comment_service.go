package service

import (
	"errors"
	"strings"

	"github.com/mlhuang/tastemap-backend/internal/app/model"
	"github.com/mlhuang/tastemap-backend/internal/app/repository"
	"github.com/mlhuang/tastemap-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound     = errors.New("comment not found")
	ErrCommentTextRequired = errors.New("comment text is required")
)

type CommentService interface {
	CreateComment(userID, restaurantID uint, text string) (*model.Comment, error)
	DeleteComment(id uint) error
}

type commentService struct {
	commentRepo    repository.CommentRepository
	restaurantRepo repository.RestaurantRepository
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	restaurantRepo repository.RestaurantRepository,
) CommentService {
	return &commentService{
		commentRepo:    commentRepo,
		restaurantRepo: restaurantRepo,
	}
}

func (s *commentService) CreateComment(userID, restaurantID uint, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrCommentTextRequired
	}

	if _, err := s.restaurantRepo.FindByID(restaurantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}

	comment := &model.Comment{
		Text:         text,
		UserID:       userID,
		RestaurantID: restaurantID,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	logger.Info("Comment created", map[string]interface{}{
		"comment_id":    comment.ID,
		"user_id":       userID,
		"restaurant_id": restaurantID,
	})
	return comment, nil
}

func (s *commentService) DeleteComment(id uint) error {
	if _, err := s.commentRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	if err := s.commentRepo.Delete(id); err != nil {
		return err
	}

	logger.Info("Comment deleted", map[string]interface{}{
		"comment_id": id,
	})
	return nil
}
