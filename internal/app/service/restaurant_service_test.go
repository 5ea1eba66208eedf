package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mlhuang/tastemap-backend/internal/app/model"
	"github.com/mlhuang/tastemap-backend/internal/app/repository"
	"github.com/mlhuang/tastemap-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRestaurantServiceTest(t *testing.T) (RestaurantService, *gorm.DB, *model.User, *model.Category) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	restaurantRepo := repository.NewRestaurantRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	commentRepo := repository.NewCommentRepository(testDB)
	favoriteRepo := repository.NewFavoriteRepository(testDB)
	likeRepo := repository.NewLikeRepository(testDB)
	svc := NewRestaurantService(restaurantRepo, categoryRepo, commentRepo, favoriteRepo, likeRepo, nil)

	user := &model.User{
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: "hash",
	}
	testDB.Create(user)

	category := &model.Category{Name: "Italian"}
	testDB.Create(category)

	return svc, testDB, user, category
}

func createRestaurants(t *testing.T, testDB *gorm.DB, category *model.Category, count int) []model.Restaurant {
	t.Helper()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	restaurants := make([]model.Restaurant, 0, count)
	for i := 1; i <= count; i++ {
		r := model.Restaurant{
			Name:        fmt.Sprintf("Restaurant %02d", i),
			Description: fmt.Sprintf("Description %02d", i),
			CategoryID:  category.ID,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, testDB.Create(&r).Error)
		restaurants = append(restaurants, r)
	}
	return restaurants
}

func TestRestaurantService_ListRestaurants_Pagination(t *testing.T) {
	svc, testDB, user, category := setupRestaurantServiceTest(t)
	createRestaurants(t, testDB, category, 12)

	page, err := svc.ListRestaurants(user.ID, ListOptions{Page: 2})
	require.NoError(t, err)

	assert.Len(t, page.Restaurants, 2)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.Pages)
	assert.Equal(t, []int{1, 2}, page.TotalPage)
	assert.Equal(t, 1, page.Prev)
	assert.Equal(t, 2, page.Next)
	assert.Equal(t, "Restaurant 11", page.Restaurants[0].Name)
	assert.Equal(t, "Restaurant 12", page.Restaurants[1].Name)
}

func TestRestaurantService_ListRestaurants_FirstPage(t *testing.T) {
	svc, testDB, user, category := setupRestaurantServiceTest(t)
	createRestaurants(t, testDB, category, 12)

	page, err := svc.ListRestaurants(user.ID, ListOptions{Page: 1})
	require.NoError(t, err)

	assert.Len(t, page.Restaurants, 10)
	assert.Equal(t, 1, page.Prev)
	assert.Equal(t, 2, page.Next)
}

func TestRestaurantService_ListRestaurants_Empty(t *testing.T) {
	svc, _, user, _ := setupRestaurantServiceTest(t)

	page, err := svc.ListRestaurants(user.ID, ListOptions{Page: 1})
	require.NoError(t, err)

	assert.Empty(t, page.Restaurants)
	assert.Equal(t, 0, page.Pages)
	assert.Empty(t, page.TotalPage)
	assert.Equal(t, 1, page.Prev)
	assert.Equal(t, 0, page.Next)
}

func TestRestaurantService_ListRestaurants_ClampsPage(t *testing.T) {
	svc, testDB, user, category := setupRestaurantServiceTest(t)
	createRestaurants(t, testDB, category, 3)

	page, err := svc.ListRestaurants(user.ID, ListOptions{Page: 0})
	require.NoError(t, err)

	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Restaurants, 3)
}

func TestRestaurantService_ListRestaurants_CategoryFilter(t *testing.T) {
	svc, testDB, user, category := setupRestaurantServiceTest(t)
	createRestaurants(t, testDB, category, 3)

	other := &model.Category{Name: "Japanese"}
	require.NoError(t, testDB.Create(other).Error)
	require.NoError(t, testDB.Create(&model.Restaurant{
		Name:       "Sushi Place",
		CategoryID: other.ID,
	}).Error)

	page, err := svc.ListRestaurants(user.ID, ListOptions{Page: 1, CategoryID: &other.ID})
	require.NoError(t, err)

	assert.Len(t, page.Restaurants, 1)
	assert.Equal(t, "Sushi Place", page.Restaurants[0].Name)
	assert.Equal(t, "Japanese", page.Restaurants[0].CategoryName)
	assert.Equal(t, 1, page.Pages)
}

func TestRestaurantService_ListRestaurants_TruncatesDescription(t *testing.T) {
	svc, testDB, user, category := setupRestaurantServiceTest(t)

	long := strings.Repeat("a", 80)
	require.NoError(t, testDB.Create(&model.Restaurant{
		Name:        "Wordy",
		Description: long,
		CategoryID:  category.ID,
	}).Error)
	require.NoError(t, testDB.Create(&model.Restaurant{
		Name:        "Terse",
		Description: "short",
		CategoryID:  category.ID,
	}).Error)

	page, err := svc.ListRestaurants(user.ID, ListOptions{Page: 1})
	require.NoError(t, err)
	require.Len(t, page.Restaurants, 2)

	assert.Equal(t, strings.Repeat("a", 50), page.Restaurants[0].Description)
	assert.Equal(t, "short", page.Restaurants[1].Description)

	// The stored record keeps the full text
	var stored model.Restaurant
	require.NoError(t, testDB.First(&stored, page.Restaurants[0].ID).Error)
	assert.Equal(t, long, stored.Description)
}

func TestRestaurantService_ListRestaurants_UserFlags(t *testing.T) {
	svc, testDB, user, category := setupRestaurantServiceTest(t)
	restaurants := createRestaurants(t, testDB, category, 3)

	require.NoError(t, testDB.Create(&model.Favorite{UserID: user.ID, RestaurantID: restaurants[0].ID}).Error)
	require.NoError(t, testDB.Create(&model.Like{UserID: user.ID, RestaurantID: restaurants[1].ID}).Error)

	page, err := svc.ListRestaurants(user.ID, ListOptions{Page: 1})
	require.NoError(t, err)
	require.Len(t, page.Restaurants, 3)

	assert.True(t, page.Restaurants[0].IsFavorited)
	assert.False(t, page.Restaurants[0].IsLike)
	assert.False(t, page.Restaurants[1].IsFavorited)
	assert.True(t, page.Restaurants[1].IsLike)
	assert.False(t, page.Restaurants[2].IsFavorited)
	assert.False(t, page.Restaurants[2].IsLike)
}

func TestRestaurantService_GetRestaurant_IncrementsViews(t *testing.T) {
	svc, testDB, user, category := setupRestaurantServiceTest(t)
	restaurants := createRestaurants(t, testDB, category, 1)

	first, err := svc.GetRestaurant(user.ID, restaurants[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Restaurant.ViewCounts)

	second, err := svc.GetRestaurant(user.ID, restaurants[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Restaurant.ViewCounts)

	var stored model.Restaurant
	require.NoError(t, testDB.First(&stored, restaurants[0].ID).Error)
	assert.Equal(t, 2, stored.ViewCounts)
}

func TestRestaurantService_GetRestaurant_NotFound(t *testing.T) {
	svc, _, user, _ := setupRestaurantServiceTest(t)

	_, err := svc.GetRestaurant(user.ID, 9999)
	assert.ErrorIs(t, err, ErrRestaurantNotFound)
}

func TestRestaurantService_GetRestaurant_Flags(t *testing.T) {
	svc, testDB, user, category := setupRestaurantServiceTest(t)
	restaurants := createRestaurants(t, testDB, category, 1)

	require.NoError(t, testDB.Create(&model.Favorite{UserID: user.ID, RestaurantID: restaurants[0].ID}).Error)

	detail, err := svc.GetRestaurant(user.ID, restaurants[0].ID)
	require.NoError(t, err)

	assert.True(t, detail.IsFavorited)
	assert.False(t, detail.IsLike)
}

func TestRestaurantService_GetFeeds(t *testing.T) {
	svc, testDB, user, category := setupRestaurantServiceTest(t)
	restaurants := createRestaurants(t, testDB, category, 12)

	base := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		require.NoError(t, testDB.Create(&model.Comment{
			Text:         fmt.Sprintf("Comment %02d", i+1),
			UserID:       user.ID,
			RestaurantID: restaurants[0].ID,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	feed, err := svc.GetFeeds(context.Background())
	require.NoError(t, err)

	require.Len(t, feed.Restaurants, 10)
	require.Len(t, feed.Comments, 10)

	// Newest first on both sides
	assert.Equal(t, "Restaurant 12", feed.Restaurants[0].Name)
	assert.Equal(t, "Restaurant 03", feed.Restaurants[9].Name)
	assert.Equal(t, "Comment 12", feed.Comments[0].Text)
	assert.Equal(t, "Comment 03", feed.Comments[9].Text)

	// Associations come preloaded
	assert.Equal(t, category.Name, feed.Restaurants[0].Category.Name)
	assert.Equal(t, user.Name, feed.Comments[0].User.Name)
	assert.Equal(t, restaurants[0].Name, feed.Comments[0].Restaurant.Name)
}

func TestRestaurantService_GetDashboard(t *testing.T) {
	svc, testDB, user, category := setupRestaurantServiceTest(t)
	restaurants := createRestaurants(t, testDB, category, 1)

	for i := 0; i < 3; i++ {
		require.NoError(t, testDB.Create(&model.Comment{
			Text:         fmt.Sprintf("comment %d", i),
			UserID:       user.ID,
			RestaurantID: restaurants[0].ID,
		}).Error)
	}

	restaurant, err := svc.GetDashboard(restaurants[0].ID)
	require.NoError(t, err)

	assert.Equal(t, restaurants[0].Name, restaurant.Name)
	assert.Equal(t, category.Name, restaurant.Category.Name)
	assert.Len(t, restaurant.Comments, 3)
}

func TestRestaurantService_GetDashboard_NotFound(t *testing.T) {
	svc, _, _, _ := setupRestaurantServiceTest(t)

	_, err := svc.GetDashboard(9999)
	assert.ErrorIs(t, err, ErrRestaurantNotFound)
}

func TestRestaurantService_GetTopRestaurants(t *testing.T) {
	svc, testDB, user, category := setupRestaurantServiceTest(t)
	restaurants := createRestaurants(t, testDB, category, 3)

	other := &model.User{Name: "Other", Email: "other@example.com", PasswordHash: "hash"}
	require.NoError(t, testDB.Create(other).Error)

	// Restaurant 2 has two favorites, restaurant 1 has one
	require.NoError(t, testDB.Create(&model.Favorite{UserID: user.ID, RestaurantID: restaurants[1].ID}).Error)
	require.NoError(t, testDB.Create(&model.Favorite{UserID: other.ID, RestaurantID: restaurants[1].ID}).Error)
	require.NoError(t, testDB.Create(&model.Favorite{UserID: other.ID, RestaurantID: restaurants[0].ID}).Error)

	top, err := svc.GetTopRestaurants(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, top, 3)

	assert.Equal(t, restaurants[1].ID, top[0].ID)
	assert.Equal(t, 2, top[0].FavoriteCount)
	assert.True(t, top[0].IsFavorited)

	assert.Equal(t, restaurants[0].ID, top[1].ID)
	assert.Equal(t, 1, top[1].FavoriteCount)
	assert.False(t, top[1].IsFavorited)
}

func TestRestaurantService_CreateRestaurant(t *testing.T) {
	svc, _, _, category := setupRestaurantServiceTest(t)

	restaurant, err := svc.CreateRestaurant(RestaurantInput{
		Name:       "New Place",
		Tel:        "02-1234-5678",
		CategoryID: category.ID,
	})
	require.NoError(t, err)

	assert.NotZero(t, restaurant.ID)
	assert.Equal(t, "New Place", restaurant.Name)
}

func TestRestaurantService_CreateRestaurant_Validation(t *testing.T) {
	svc, _, _, category := setupRestaurantServiceTest(t)

	_, err := svc.CreateRestaurant(RestaurantInput{CategoryID: category.ID})
	assert.ErrorIs(t, err, ErrRestaurantNameRequired)

	_, err = svc.CreateRestaurant(RestaurantInput{Name: "No Category", CategoryID: 9999})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestRestaurantService_UpdateRestaurant_KeepsImageWhenOmitted(t *testing.T) {
	svc, testDB, _, category := setupRestaurantServiceTest(t)

	r := &model.Restaurant{Name: "Old", Image: "/upload/old.png", CategoryID: category.ID}
	require.NoError(t, testDB.Create(r).Error)

	updated, err := svc.UpdateRestaurant(r.ID, RestaurantInput{
		Name:       "Renamed",
		CategoryID: category.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "/upload/old.png", updated.Image)

	updated, err = svc.UpdateRestaurant(r.ID, RestaurantInput{
		Name:       "Renamed",
		Image:      "/upload/new.png",
		CategoryID: category.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "/upload/new.png", updated.Image)
}

func TestRestaurantService_DeleteRestaurant(t *testing.T) {
	svc, testDB, _, category := setupRestaurantServiceTest(t)
	restaurants := createRestaurants(t, testDB, category, 1)

	require.NoError(t, svc.DeleteRestaurant(restaurants[0].ID))

	err := svc.DeleteRestaurant(restaurants[0].ID)
	assert.ErrorIs(t, err, ErrRestaurantNotFound)
}
