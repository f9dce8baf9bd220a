package models

import (
	"time"

	"gorm.io/datatypes"
)

type UserRole string

const (
	UserRoleFarmer UserRole = "farmer"
	UserRoleBuyer  UserRole = "buyer"
	UserRoleSeller UserRole = "seller"
	UserRoleAdmin  UserRole = "admin"
)

// IsValid reports whether r is one of the known roles.
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleFarmer, UserRoleBuyer, UserRoleSeller, UserRoleAdmin:
		return true
	}
	return false
}

type Avatar struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

type User struct {
	BaseModel
	Username     string                     `gorm:"uniqueIndex;not null" json:"username"`
	Name         string                     `gorm:"not null" json:"name"`
	Email        string                     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string                     `gorm:"not null" json:"-"`
	Role         UserRole                   `gorm:"type:varchar(20);not null;default:'farmer'" json:"role"`
	IsVerified   bool                       `gorm:"default:false" json:"isVerified"`
	Avatar       datatypes.JSONType[Avatar] `json:"avatar"`
}

// Public is the short form embedded in posts, comments and notifications.
type Public struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Avatar   Avatar `json:"avatar"`
}

func (u *User) Public() Public {
	return Public{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Avatar:   u.Avatar.Data(),
	}
}

// Follow is a directed edge: FollowerID follows FollowingID.
type Follow struct {
	FollowerID  string    `gorm:"type:uuid;primaryKey"`
	FollowingID string    `gorm:"type:uuid;primaryKey;index"`
	CreatedAt   time.Time `gorm:"not null"`
}

type Bookmark struct {
	UserID    string    `gorm:"type:uuid;primaryKey"`
	PostID    string    `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"not null"`
}
