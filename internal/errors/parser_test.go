package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"postgres phrasing", errors.New(`duplicate key value violates unique constraint "idx_users_email"`), true},
		{"sqlite phrasing", errors.New("UNIQUE constraint failed: favorites.user_id, favorites.restaurant_id"), true},
		{"unrelated error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}

func TestParseError_NotFound(t *testing.T) {
	info := ParseError(gorm.ErrRecordNotFound, "restaurant detail")
	assert.Equal(t, ResourceNotFound, info.Code)
	assert.Equal(t, "Restaurant not found", info.Message)

	info = ParseError(gorm.ErrRecordNotFound, "category lookup")
	assert.Equal(t, "Category not found", info.Message)
}

func TestParseError_DuplicateEmail(t *testing.T) {
	err := errors.New(`duplicate key value violates unique constraint "idx_users_email"`)
	info := ParseError(err, "user")
	assert.Equal(t, AuthEmailAlreadyExists, info.Code)
}

func TestParseError_DuplicateJoinRow(t *testing.T) {
	err := errors.New("UNIQUE constraint failed: favorites.user_id, favorites.restaurant_id")
	info := ParseError(err, "favorite")
	assert.Equal(t, ResourceAlreadyExists, info.Code)
}

func TestParseError_ForeignKey(t *testing.T) {
	err := errors.New(`insert or update on table "restaurants" violates foreign key constraint "fk_category_id"`)
	info := ParseError(err, "restaurant")
	assert.Equal(t, CategoryNotFound, info.Code)
}

func TestParseError_Fallback(t *testing.T) {
	info := ParseError(errors.New("something odd"), "")
	assert.Equal(t, InternalServerError, info.Code)
}
