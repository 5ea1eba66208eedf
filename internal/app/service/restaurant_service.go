package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mlhuang/tastemap-backend/internal/app/model"
	"github.com/mlhuang/tastemap-backend/internal/app/repository"
	"github.com/mlhuang/tastemap-backend/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	pageLimit = 10

	feedLimit = 10
	topLimit  = 10

	// list rows show a teaser, the stored description stays untouched
	descriptionTeaserLen = 50

	topRestaurantsCacheKey = "top_restaurants"
	topRestaurantsCacheTTL = 10 * time.Minute
)

var (
	ErrRestaurantNotFound     = errors.New("restaurant not found")
	ErrRestaurantNameRequired = errors.New("restaurant name is required")
	ErrCategoryNotFound       = errors.New("category not found")
)

// ListOptions selects one listing page. A nil CategoryID means all categories.
type ListOptions struct {
	Page       int
	CategoryID *uint
}

// RestaurantListItem is one row of the paginated listing
type RestaurantListItem struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Tel          string    `json:"tel"`
	Address      string    `json:"address"`
	OpeningHours string    `json:"opening_hours"`
	Description  string    `json:"description"`
	Image        string    `json:"image"`
	CategoryID   uint      `json:"category_id"`
	CategoryName string    `json:"category_name"`
	ViewCounts   int       `json:"view_counts"`
	CreatedAt    time.Time `json:"created_at"`
	IsFavorited  bool      `json:"is_favorited"`
	IsLike       bool      `json:"is_like"`
}

// RestaurantPage is the listing view-model, pagination metadata included
type RestaurantPage struct {
	Restaurants []RestaurantListItem `json:"restaurants"`
	Categories  []model.Category     `json:"categories"`
	CategoryID  *uint                `json:"category_id,omitempty"`
	Page        int                  `json:"page"`
	Pages       int                  `json:"pages"`
	TotalPage   []int                `json:"total_page"`
	Prev        int                  `json:"prev"`
	Next        int                  `json:"next"`
}

// RestaurantDetail is the single-restaurant view-model
type RestaurantDetail struct {
	Restaurant  *model.Restaurant `json:"restaurant"`
	IsFavorited bool              `json:"is_favorited"`
	IsLike      bool              `json:"is_like"`
}

// Feed combines the newest restaurants and the newest comments
type Feed struct {
	Restaurants []model.Restaurant `json:"restaurants"`
	Comments    []model.Comment    `json:"comments"`
}

// TopRestaurant is one row of the most-favorited ranking
type TopRestaurant struct {
	model.Restaurant
	IsFavorited bool `json:"is_favorited"`
}

// RestaurantInput carries admin-entered restaurant fields
type RestaurantInput struct {
	Name         string
	Tel          string
	Address      string
	OpeningHours string
	Description  string
	Image        string
	CategoryID   uint
}

type RestaurantService interface {
	ListRestaurants(userID uint, opts ListOptions) (*RestaurantPage, error)
	GetRestaurant(userID, id uint) (*RestaurantDetail, error)
	GetFeeds(ctx context.Context) (*Feed, error)
	GetDashboard(id uint) (*model.Restaurant, error)
	GetTopRestaurants(ctx context.Context, userID uint) ([]TopRestaurant, error)
	RefreshTopRestaurants(ctx context.Context) error

	ListAllRestaurants() ([]model.Restaurant, error)
	GetAdminRestaurant(id uint) (*model.Restaurant, error)
	CreateRestaurant(input RestaurantInput) (*model.Restaurant, error)
	UpdateRestaurant(id uint, input RestaurantInput) (*model.Restaurant, error)
	DeleteRestaurant(id uint) error
}

type restaurantService struct {
	restaurantRepo repository.RestaurantRepository
	categoryRepo   repository.CategoryRepository
	commentRepo    repository.CommentRepository
	favoriteRepo   repository.FavoriteRepository
	likeRepo       repository.LikeRepository
	cache          *goredis.Client
}

// NewRestaurantService builds the restaurant service. cache may be nil, in
// which case the top-restaurants list is computed from the database each time.
func NewRestaurantService(
	restaurantRepo repository.RestaurantRepository,
	categoryRepo repository.CategoryRepository,
	commentRepo repository.CommentRepository,
	favoriteRepo repository.FavoriteRepository,
	likeRepo repository.LikeRepository,
	cache *goredis.Client,
) RestaurantService {
	return &restaurantService{
		restaurantRepo: restaurantRepo,
		categoryRepo:   categoryRepo,
		commentRepo:    commentRepo,
		favoriteRepo:   favoriteRepo,
		likeRepo:       likeRepo,
		cache:          cache,
	}
}

func (s *restaurantService) ListRestaurants(userID uint, opts ListOptions) (*RestaurantPage, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageLimit

	logger.Debug("Listing restaurants", map[string]interface{}{
		"user_id":     userID,
		"page":        page,
		"category_id": opts.CategoryID,
	})

	restaurants, total, err := s.restaurantRepo.FindPage(repository.RestaurantFilter{
		CategoryID: opts.CategoryID,
		Limit:      pageLimit,
		Offset:     offset,
	})
	if err != nil {
		return nil, err
	}

	pages := int((total + pageLimit - 1) / pageLimit)
	totalPage := make([]int, 0, pages)
	for i := 1; i <= pages; i++ {
		totalPage = append(totalPage, i)
	}
	prev := page - 1
	if prev < 1 {
		prev = 1
	}
	next := page + 1
	if next > pages {
		next = pages
	}

	favoritedIDs, err := s.favoriteRepo.ListRestaurantIDsByUser(userID)
	if err != nil {
		return nil, err
	}
	likedIDs, err := s.likeRepo.ListRestaurantIDsByUser(userID)
	if err != nil {
		return nil, err
	}
	favoritedSet := idSet(favoritedIDs)
	likedSet := idSet(likedIDs)

	items := make([]RestaurantListItem, 0, len(restaurants))
	for _, r := range restaurants {
		items = append(items, RestaurantListItem{
			ID:           r.ID,
			Name:         r.Name,
			Tel:          r.Tel,
			Address:      r.Address,
			OpeningHours: r.OpeningHours,
			Description:  truncateRunes(r.Description, descriptionTeaserLen),
			Image:        r.Image,
			CategoryID:   r.CategoryID,
			CategoryName: r.Category.Name,
			ViewCounts:   r.ViewCounts,
			CreatedAt:    r.CreatedAt,
			IsFavorited:  favoritedSet[r.ID],
			IsLike:       likedSet[r.ID],
		})
	}

	categories, err := s.categoryRepo.FindAll()
	if err != nil {
		return nil, err
	}

	logger.Debug("Restaurants listed", map[string]interface{}{
		"user_id": userID,
		"count":   len(items),
		"pages":   pages,
	})

	return &RestaurantPage{
		Restaurants: items,
		Categories:  categories,
		CategoryID:  opts.CategoryID,
		Page:        page,
		Pages:       pages,
		TotalPage:   totalPage,
		Prev:        prev,
		Next:        next,
	}, nil
}

func (s *restaurantService) GetRestaurant(userID, id uint) (*RestaurantDetail, error) {
	restaurant, err := s.restaurantRepo.FindDetail(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Restaurant not found", map[string]interface{}{
				"restaurant_id": id,
			})
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}

	// Counting the visit must never block or fail the page itself
	if err := s.restaurantRepo.IncrementViewCounts(id); err != nil {
		logger.Warn("Failed to count restaurant view", map[string]interface{}{
			"restaurant_id": id,
			"error":         err.Error(),
		})
	}

	isFavorited := containsUser(restaurant.FavoritedUsers, userID)
	isLike := containsUser(restaurant.LikedUsers, userID)

	logger.Debug("Restaurant detail fetched", map[string]interface{}{
		"restaurant_id": id,
		"user_id":       userID,
		"is_favorited":  isFavorited,
		"is_like":       isLike,
	})

	return &RestaurantDetail{
		Restaurant:  restaurant,
		IsFavorited: isFavorited,
		IsLike:      isLike,
	}, nil
}

// GetFeeds fetches the newest restaurants and comments concurrently.
// Either query failing fails the feed as a whole; there is no partial feed.
func (s *restaurantService) GetFeeds(ctx context.Context) (*Feed, error) {
	var (
		restaurants []model.Restaurant
		comments    []model.Comment
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		restaurants, err = s.restaurantRepo.FindNewest(feedLimit)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = s.commentRepo.FindNewest(feedLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to assemble feed", err, nil)
		return nil, err
	}

	logger.Debug("Feed assembled", map[string]interface{}{
		"restaurants": len(restaurants),
		"comments":    len(comments),
	})
	return &Feed{Restaurants: restaurants, Comments: comments}, nil
}

func (s *restaurantService) GetDashboard(id uint) (*model.Restaurant, error) {
	restaurant, err := s.restaurantRepo.FindDashboard(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	return restaurant, nil
}

func (s *restaurantService) GetTopRestaurants(ctx context.Context, userID uint) ([]TopRestaurant, error) {
	restaurants, err := s.loadTopRestaurants(ctx)
	if err != nil {
		return nil, err
	}

	favoritedIDs, err := s.favoriteRepo.ListRestaurantIDsByUser(userID)
	if err != nil {
		return nil, err
	}
	favoritedSet := idSet(favoritedIDs)

	// Per-user flags are annotated after the cache, the cached list is shared
	top := make([]TopRestaurant, 0, len(restaurants))
	for _, r := range restaurants {
		top = append(top, TopRestaurant{
			Restaurant:  r,
			IsFavorited: favoritedSet[r.ID],
		})
	}
	return top, nil
}

// RefreshTopRestaurants recomputes the ranking and rewrites the cache entry
func (s *restaurantService) RefreshTopRestaurants(ctx context.Context) error {
	restaurants, err := s.restaurantRepo.FindTopByFavorites(topLimit)
	if err != nil {
		return err
	}
	return s.storeTopRestaurants(ctx, restaurants)
}

func (s *restaurantService) loadTopRestaurants(ctx context.Context) ([]model.Restaurant, error) {
	if s.cache != nil {
		payload, err := s.cache.Get(ctx, topRestaurantsCacheKey).Bytes()
		if err == nil {
			var cached []model.Restaurant
			if err := json.Unmarshal(payload, &cached); err == nil {
				logger.Debug("Top restaurants served from cache", map[string]interface{}{
					"count": len(cached),
				})
				return cached, nil
			}
			logger.Warn("Discarding malformed top restaurants cache entry", nil)
		} else if err != goredis.Nil {
			logger.Warn("Top restaurants cache read failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	restaurants, err := s.restaurantRepo.FindTopByFavorites(topLimit)
	if err != nil {
		return nil, err
	}
	if err := s.storeTopRestaurants(ctx, restaurants); err != nil {
		logger.Warn("Top restaurants cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return restaurants, nil
}

func (s *restaurantService) storeTopRestaurants(ctx context.Context, restaurants []model.Restaurant) error {
	if s.cache == nil {
		return nil
	}
	payload, err := json.Marshal(restaurants)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, topRestaurantsCacheKey, payload, topRestaurantsCacheTTL).Err()
}

func (s *restaurantService) ListAllRestaurants() ([]model.Restaurant, error) {
	return s.restaurantRepo.FindAll()
}

func (s *restaurantService) GetAdminRestaurant(id uint) (*model.Restaurant, error) {
	restaurant, err := s.restaurantRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	return restaurant, nil
}

func (s *restaurantService) CreateRestaurant(input RestaurantInput) (*model.Restaurant, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	restaurant := &model.Restaurant{
		Name:         input.Name,
		Tel:          input.Tel,
		Address:      input.Address,
		OpeningHours: input.OpeningHours,
		Description:  input.Description,
		Image:        input.Image,
		CategoryID:   input.CategoryID,
	}
	if err := s.restaurantRepo.Create(restaurant); err != nil {
		return nil, err
	}

	logger.Info("Restaurant created", map[string]interface{}{
		"restaurant_id": restaurant.ID,
		"name":          restaurant.Name,
	})
	return restaurant, nil
}

func (s *restaurantService) UpdateRestaurant(id uint, input RestaurantInput) (*model.Restaurant, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	restaurant, err := s.restaurantRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}

	restaurant.Name = input.Name
	restaurant.Tel = input.Tel
	restaurant.Address = input.Address
	restaurant.OpeningHours = input.OpeningHours
	restaurant.Description = input.Description
	restaurant.CategoryID = input.CategoryID
	if input.Image != "" {
		restaurant.Image = input.Image
	}

	if err := s.restaurantRepo.Update(restaurant); err != nil {
		return nil, err
	}

	logger.Info("Restaurant updated", map[string]interface{}{
		"restaurant_id": restaurant.ID,
	})
	return restaurant, nil
}

func (s *restaurantService) DeleteRestaurant(id uint) error {
	if _, err := s.restaurantRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRestaurantNotFound
		}
		return err
	}

	if err := s.restaurantRepo.Delete(id); err != nil {
		return err
	}

	logger.Info("Restaurant deleted", map[string]interface{}{
		"restaurant_id": id,
	})
	return nil
}

func (s *restaurantService) validateInput(input RestaurantInput) error {
	if input.Name == "" {
		return ErrRestaurantNameRequired
	}
	if _, err := s.categoryRepo.FindByID(input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func idSet(ids []uint) map[uint]bool {
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func containsUser(users []model.User, id uint) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}

// truncateRunes cuts s to at most n characters, multi-byte safe
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
