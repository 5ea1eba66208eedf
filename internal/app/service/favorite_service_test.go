package service

import (
	"testing"

	"github.com/mlhuang/tastemap-backend/internal/app/model"
	"github.com/mlhuang/tastemap-backend/internal/app/repository"
	"github.com/mlhuang/tastemap-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupFavoriteServiceTest(t *testing.T) (FavoriteService, *gorm.DB, *model.User, *model.Restaurant) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	favoriteRepo := repository.NewFavoriteRepository(testDB)
	likeRepo := repository.NewLikeRepository(testDB)
	restaurantRepo := repository.NewRestaurantRepository(testDB)
	svc := NewFavoriteService(favoriteRepo, likeRepo, restaurantRepo)

	user := &model.User{Name: "Test User", Email: "test@example.com", PasswordHash: "hash"}
	require.NoError(t, testDB.Create(user).Error)

	category := &model.Category{Name: "Italian"}
	require.NoError(t, testDB.Create(category).Error)

	restaurant := &model.Restaurant{Name: "Trattoria", CategoryID: category.ID}
	require.NoError(t, testDB.Create(restaurant).Error)

	return svc, testDB, user, restaurant
}

func countRows(t *testing.T, testDB *gorm.DB, value interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, testDB.Model(value).Count(&count).Error)
	return count
}

func TestFavoriteService_AddFavorite_Idempotent(t *testing.T) {
	svc, testDB, user, restaurant := setupFavoriteServiceTest(t)

	require.NoError(t, svc.AddFavorite(user.ID, restaurant.ID))
	require.NoError(t, svc.AddFavorite(user.ID, restaurant.ID))

	assert.Equal(t, int64(1), countRows(t, testDB, &model.Favorite{}))
}

func TestFavoriteService_AddFavorite_RestaurantNotFound(t *testing.T) {
	svc, _, user, _ := setupFavoriteServiceTest(t)

	err := svc.AddFavorite(user.ID, 9999)
	assert.ErrorIs(t, err, ErrRestaurantNotFound)
}

func TestFavoriteService_RemoveFavorite(t *testing.T) {
	svc, testDB, user, restaurant := setupFavoriteServiceTest(t)

	require.NoError(t, svc.AddFavorite(user.ID, restaurant.ID))
	require.NoError(t, svc.RemoveFavorite(user.ID, restaurant.ID))
	assert.Equal(t, int64(0), countRows(t, testDB, &model.Favorite{}))

	// Removing again stays a no-op
	require.NoError(t, svc.RemoveFavorite(user.ID, restaurant.ID))
}

func TestFavoriteService_AddLike_Idempotent(t *testing.T) {
	svc, testDB, user, restaurant := setupFavoriteServiceTest(t)

	require.NoError(t, svc.AddLike(user.ID, restaurant.ID))
	require.NoError(t, svc.AddLike(user.ID, restaurant.ID))

	assert.Equal(t, int64(1), countRows(t, testDB, &model.Like{}))
}

func TestFavoriteService_LikesAndFavoritesAreIndependent(t *testing.T) {
	svc, testDB, user, restaurant := setupFavoriteServiceTest(t)

	require.NoError(t, svc.AddFavorite(user.ID, restaurant.ID))
	require.NoError(t, svc.AddLike(user.ID, restaurant.ID))
	require.NoError(t, svc.RemoveLike(user.ID, restaurant.ID))

	assert.Equal(t, int64(1), countRows(t, testDB, &model.Favorite{}))
	assert.Equal(t, int64(0), countRows(t, testDB, &model.Like{}))
}

func TestFavoriteService_RemoveLike_RestaurantMissingIsNoop(t *testing.T) {
	svc, _, user, _ := setupFavoriteServiceTest(t)

	assert.NoError(t, svc.RemoveLike(user.ID, 9999))
}
