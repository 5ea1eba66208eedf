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
	ErrUserNotFound  = errors.New("user not found")
	ErrNotOwner      = errors.New("only the account owner can edit this profile")
	ErrNameRequired  = errors.New("name is required")
	ErrLastAdminLock = errors.New("cannot demote the only admin")
)

// UserProfile is a user together with their comment history. Each comment
// carries its restaurant so a profile page can link back to it.
type UserProfile struct {
	User     model.User      `json:"user"`
	Comments []model.Comment `json:"comments"`
}

type UpdateProfileInput struct {
	Name  string
	Image string
}

type UserService interface {
	GetProfile(id uint) (*UserProfile, error)
	UpdateProfile(requesterID uint, requesterIsAdmin bool, id uint, input UpdateProfileInput) (*model.User, error)
	ListUsers() ([]model.User, error)
	ToggleAdmin(id uint) (*model.User, error)
}

type userService struct {
	userRepo    repository.UserRepository
	commentRepo repository.CommentRepository
}

func NewUserService(userRepo repository.UserRepository, commentRepo repository.CommentRepository) UserService {
	return &userService{
		userRepo:    userRepo,
		commentRepo: commentRepo,
	}
}

func (s *userService) GetProfile(id uint) (*UserProfile, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	comments, err := s.commentRepo.FindByUser(id)
	if err != nil {
		return nil, err
	}

	return &UserProfile{User: *user, Comments: comments}, nil
}

func (s *userService) UpdateProfile(requesterID uint, requesterIsAdmin bool, id uint, input UpdateProfileInput) (*model.User, error) {
	if requesterID != id && !requesterIsAdmin {
		return nil, ErrNotOwner
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrNameRequired
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.Name = input.Name
	if input.Image != "" {
		user.Image = input.Image
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	logger.Info("Profile updated", map[string]interface{}{
		"user_id":      user.ID,
		"requester_id": requesterID,
	})
	return user, nil
}

func (s *userService) ListUsers() ([]model.User, error) {
	return s.userRepo.FindAll()
}

// ToggleAdmin flips the admin flag. Demoting the last remaining admin is
// refused so the admin surface can never lock itself out.
func (s *userService) ToggleAdmin(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.IsAdmin {
		users, err := s.userRepo.FindAll()
		if err != nil {
			return nil, err
		}
		admins := 0
		for _, u := range users {
			if u.IsAdmin {
				admins++
			}
		}
		if admins <= 1 {
			return nil, ErrLastAdminLock
		}
	}

	user.IsAdmin = !user.IsAdmin
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	logger.Info("Admin flag toggled", map[string]interface{}{
		"user_id":  user.ID,
		"is_admin": user.IsAdmin,
	})
	return user, nil
}
