package models

import "time"

// ShowPostName is how many characters of the text a post's String form keeps.
const ShowPostName = 15

type Post struct {
	ID       int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	PubDate  time.Time `json:"pub_date" gorm:"autoCreateTime;index"`
	AuthorID string    `json:"author_id" gorm:"not null;index"`
	GroupID  *int64    `json:"group_id" gorm:"index"`
	// Image is a path relative to the media root, e.g. posts/<name>.gif
	Image string `json:"image,omitempty" gorm:"size:255"`

	// Relationships
	Author   User      `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Group    *Group    `json:"group,omitempty" gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL;"`
	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE;"`
}

func (Post) TableName() string {
	return "posts"
}

func (p Post) String() string {
	runes := []rune(p.Text)
	if len(runes) > ShowPostName {
		return string(runes[:ShowPostName])
	}
	return p.Text
}
