package service

import (
	"errors"

	"github.com/mlhuang/tastemap-backend/internal/app/repository"
	apperrors "github.com/mlhuang/tastemap-backend/internal/errors"
	"github.com/mlhuang/tastemap-backend/pkg/logger"
	"gorm.io/gorm"
)

// FavoriteService toggles set membership in the favorites and likes join
// tables. Both directions are idempotent: adding an existing pair and
// removing a missing one are no-ops, never errors.
type FavoriteService interface {
	AddFavorite(userID, restaurantID uint) error
	RemoveFavorite(userID, restaurantID uint) error
	AddLike(userID, restaurantID uint) error
	RemoveLike(userID, restaurantID uint) error
}

type favoriteService struct {
	favoriteRepo   repository.FavoriteRepository
	likeRepo       repository.LikeRepository
	restaurantRepo repository.RestaurantRepository
}

func NewFavoriteService(
	favoriteRepo repository.FavoriteRepository,
	likeRepo repository.LikeRepository,
	restaurantRepo repository.RestaurantRepository,
) FavoriteService {
	return &favoriteService{
		favoriteRepo:   favoriteRepo,
		likeRepo:       likeRepo,
		restaurantRepo: restaurantRepo,
	}
}

func (s *favoriteService) AddFavorite(userID, restaurantID uint) error {
	logger.Info("Adding favorite", map[string]interface{}{
		"user_id":       userID,
		"restaurant_id": restaurantID,
	})
	return s.add(s.favoriteRepo, userID, restaurantID)
}

func (s *favoriteService) RemoveFavorite(userID, restaurantID uint) error {
	logger.Info("Removing favorite", map[string]interface{}{
		"user_id":       userID,
		"restaurant_id": restaurantID,
	})
	return s.favoriteRepo.Delete(userID, restaurantID)
}

func (s *favoriteService) AddLike(userID, restaurantID uint) error {
	logger.Info("Adding like", map[string]interface{}{
		"user_id":       userID,
		"restaurant_id": restaurantID,
	})
	return s.add(s.likeRepo, userID, restaurantID)
}

func (s *favoriteService) RemoveLike(userID, restaurantID uint) error {
	logger.Info("Removing like", map[string]interface{}{
		"user_id":       userID,
		"restaurant_id": restaurantID,
	})
	return s.likeRepo.Delete(userID, restaurantID)
}

// pairRepo is the shared surface of the favorite and like repositories
type pairRepo interface {
	Create(userID, restaurantID uint) error
	Exists(userID, restaurantID uint) (bool, error)
}

func (s *favoriteService) add(repo pairRepo, userID, restaurantID uint) error {
	if _, err := s.restaurantRepo.FindByID(restaurantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRestaurantNotFound
		}
		return err
	}

	exists, err := repo.Exists(userID, restaurantID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := repo.Create(userID, restaurantID); err != nil {
		// A concurrent add can slip past the existence check; the unique
		// pair index catches it and the add stays a no-op.
		if apperrors.IsUniqueViolation(err) {
			logger.Debug("Duplicate join row absorbed", map[string]interface{}{
				"user_id":       userID,
				"restaurant_id": restaurantID,
			})
			return nil
		}
		return err
	}
	return nil
}
