package models

import "time"

type Post struct {
	BaseModel
	Caption  string    `gorm:"type:text" json:"caption"`
	Image    string    `gorm:"not null" json:"image"`
	ImageKey string    `gorm:"not null" json:"-"`
	AuthorID string    `gorm:"type:uuid;not null;index" json:"authorId"`
	Author   *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments"`

	// Likes holds the ids of users who liked the post. Filled by the repository.
	Likes []string `gorm:"-" json:"likes"`
}

// PostLike enforces at-most-once membership through its composite key.
type PostLike struct {
	PostID    string    `gorm:"type:uuid;primaryKey"`
	UserID    string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
}

type Comment struct {
	BaseModel
	Text     string `gorm:"type:text;not null" json:"text"`
	AuthorID string `gorm:"type:uuid;not null" json:"authorId"`
	Author   *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	PostID   string `gorm:"type:uuid;not null;index" json:"postId"`
}
