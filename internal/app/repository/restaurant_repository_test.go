package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/mlhuang/tastemap-backend/internal/app/model"
	"github.com/mlhuang/tastemap-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRestaurantRepoTest(t *testing.T) (RestaurantRepository, *gorm.DB, *model.Category) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	category := &model.Category{Name: "Dessert"}
	require.NoError(t, testDB.Create(category).Error)

	return NewRestaurantRepository(testDB), testDB, category
}

func seedRestaurants(t *testing.T, testDB *gorm.DB, category *model.Category, count int) []model.Restaurant {
	t.Helper()

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	restaurants := make([]model.Restaurant, 0, count)
	for i := 1; i <= count; i++ {
		r := model.Restaurant{
			Name:       fmt.Sprintf("Place %02d", i),
			CategoryID: category.ID,
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, testDB.Create(&r).Error)
		restaurants = append(restaurants, r)
	}
	return restaurants
}

func TestRestaurantRepository_FindPage(t *testing.T) {
	repo, testDB, category := setupRestaurantRepoTest(t)
	seedRestaurants(t, testDB, category, 12)

	restaurants, total, err := repo.FindPage(RestaurantFilter{Limit: 10, Offset: 0})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, restaurants, 10)
	assert.Equal(t, "Place 01", restaurants[0].Name)
	assert.Equal(t, "Dessert", restaurants[0].Category.Name)

	restaurants, total, err = repo.FindPage(RestaurantFilter{Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, restaurants, 2)
	assert.Equal(t, "Place 11", restaurants[0].Name)
}

func TestRestaurantRepository_FindPage_CategoryFilter(t *testing.T) {
	repo, testDB, category := setupRestaurantRepoTest(t)
	seedRestaurants(t, testDB, category, 2)

	other := &model.Category{Name: "American"}
	require.NoError(t, testDB.Create(other).Error)
	require.NoError(t, testDB.Create(&model.Restaurant{Name: "Diner", CategoryID: other.ID}).Error)

	restaurants, total, err := repo.FindPage(RestaurantFilter{CategoryID: &other.ID, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, restaurants, 1)
	assert.Equal(t, "Diner", restaurants[0].Name)

	// Unknown category yields an empty window, not an error
	unknown := uint(9999)
	restaurants, total, err = repo.FindPage(RestaurantFilter{CategoryID: &unknown, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, restaurants)
}

func TestRestaurantRepository_FindNewest(t *testing.T) {
	repo, testDB, category := setupRestaurantRepoTest(t)
	seedRestaurants(t, testDB, category, 5)

	restaurants, err := repo.FindNewest(3)
	require.NoError(t, err)
	require.Len(t, restaurants, 3)
	assert.Equal(t, "Place 05", restaurants[0].Name)
	assert.Equal(t, "Place 04", restaurants[1].Name)
	assert.Equal(t, "Place 03", restaurants[2].Name)
}

func TestRestaurantRepository_IncrementViewCounts(t *testing.T) {
	repo, testDB, category := setupRestaurantRepoTest(t)
	restaurants := seedRestaurants(t, testDB, category, 1)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.IncrementViewCounts(restaurants[0].ID))
	}

	var stored model.Restaurant
	require.NoError(t, testDB.First(&stored, restaurants[0].ID).Error)
	assert.Equal(t, 3, stored.ViewCounts)
}

func TestRestaurantRepository_FindDetail(t *testing.T) {
	repo, testDB, category := setupRestaurantRepoTest(t)
	restaurants := seedRestaurants(t, testDB, category, 1)

	user := &model.User{Name: "Commenter", Email: "c@example.com", PasswordHash: "hash"}
	require.NoError(t, testDB.Create(user).Error)

	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		require.NoError(t, testDB.Create(&model.Comment{
			Text:         fmt.Sprintf("comment %d", i+1),
			UserID:       user.ID,
			RestaurantID: restaurants[0].ID,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}
	require.NoError(t, testDB.Create(&model.Favorite{UserID: user.ID, RestaurantID: restaurants[0].ID}).Error)
	require.NoError(t, testDB.Create(&model.Like{UserID: user.ID, RestaurantID: restaurants[0].ID}).Error)

	detail, err := repo.FindDetail(restaurants[0].ID)
	require.NoError(t, err)

	assert.Equal(t, "Dessert", detail.Category.Name)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, "comment 2", detail.Comments[0].Text)
	assert.Equal(t, "Commenter", detail.Comments[0].User.Name)

	require.Len(t, detail.FavoritedUsers, 1)
	assert.Equal(t, user.ID, detail.FavoritedUsers[0].ID)
	require.Len(t, detail.LikedUsers, 1)
	assert.Equal(t, user.ID, detail.LikedUsers[0].ID)
}

func TestRestaurantRepository_FindDetail_NotFound(t *testing.T) {
	repo, _, _ := setupRestaurantRepoTest(t)

	_, err := repo.FindDetail(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRestaurantRepository_FindTopByFavorites(t *testing.T) {
	repo, testDB, category := setupRestaurantRepoTest(t)
	restaurants := seedRestaurants(t, testDB, category, 3)

	users := make([]*model.User, 2)
	for i := range users {
		users[i] = &model.User{
			Name:         fmt.Sprintf("User %d", i+1),
			Email:        fmt.Sprintf("u%d@example.com", i+1),
			PasswordHash: "hash",
		}
		require.NoError(t, testDB.Create(users[i]).Error)
	}

	require.NoError(t, testDB.Create(&model.Favorite{UserID: users[0].ID, RestaurantID: restaurants[2].ID}).Error)
	require.NoError(t, testDB.Create(&model.Favorite{UserID: users[1].ID, RestaurantID: restaurants[2].ID}).Error)
	require.NoError(t, testDB.Create(&model.Favorite{UserID: users[0].ID, RestaurantID: restaurants[0].ID}).Error)

	top, err := repo.FindTopByFavorites(10)
	require.NoError(t, err)
	require.Len(t, top, 3)

	assert.Equal(t, restaurants[2].ID, top[0].ID)
	assert.Equal(t, 2, top[0].FavoriteCount)
	assert.Equal(t, restaurants[0].ID, top[1].ID)
	assert.Equal(t, 1, top[1].FavoriteCount)
	assert.Equal(t, 0, top[2].FavoriteCount)
	assert.Equal(t, "Dessert", top[0].Category.Name)
}

func TestRestaurantRepository_BulkCreate(t *testing.T) {
	repo, testDB, category := setupRestaurantRepoTest(t)

	batch := make([]model.Restaurant, 25)
	for i := range batch {
		batch[i] = model.Restaurant{
			Name:       fmt.Sprintf("Imported %02d", i+1),
			CategoryID: category.ID,
		}
	}
	require.NoError(t, repo.BulkCreate(batch, 10))

	var count int64
	require.NoError(t, testDB.Model(&model.Restaurant{}).Count(&count).Error)
	assert.Equal(t, int64(25), count)
}
