package model

import (
	"time"

	"gorm.io/gorm"
)

type Restaurant struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Tel          string         `gorm:"type:varchar(30)" json:"tel"`
	Address      string         `gorm:"type:text" json:"address"`
	OpeningHours string         `gorm:"type:varchar(50)" json:"opening_hours"`
	Description  string         `gorm:"type:text" json:"description"`
	Image        string         `json:"image"`
	ViewCounts   int            `gorm:"default:0" json:"view_counts"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	CategoryID uint     `gorm:"not null;index" json:"category_id"`
	Category   Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	Comments []Comment `gorm:"foreignKey:RestaurantID" json:"comments,omitempty"`

	// Filled by the repository from the favorites/likes join tables,
	// not a mapped association.
	FavoritedUsers []User `gorm:"-" json:"favorited_users,omitempty"`
	LikedUsers     []User `gorm:"-" json:"liked_users,omitempty"`

	// Populated by aggregate queries only
	FavoriteCount int `gorm:"->;-:migration" json:"favorite_count,omitempty"`
}

func (Restaurant) TableName() string {
	return "restaurants"
}

// Favorite is a join row marking a restaurant saved by a user.
// The composite unique index makes the (user, restaurant) pair a set membership.
type Favorite struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID       uint `gorm:"not null;index:idx_user_restaurant_favorite,unique" json:"user_id"`
	RestaurantID uint `gorm:"not null;index:idx_user_restaurant_favorite,unique" json:"restaurant_id"`

	User       User       `gorm:"foreignKey:UserID" json:"-"`
	Restaurant Restaurant `gorm:"foreignKey:RestaurantID" json:"-"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// Like is a join row marking a restaurant liked by a user
type Like struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID       uint `gorm:"not null;index:idx_user_restaurant_like,unique" json:"user_id"`
	RestaurantID uint `gorm:"not null;index:idx_user_restaurant_like,unique" json:"restaurant_id"`

	User       User       `gorm:"foreignKey:UserID" json:"-"`
	Restaurant Restaurant `gorm:"foreignKey:RestaurantID" json:"-"`
}

func (Like) TableName() string {
	return "likes"
}
