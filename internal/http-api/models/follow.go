package models

// Follow is a subscription of User to the posts of Author.
// The pair is unique; following yourself is rejected by the service, not the schema.
type Follow struct {
	ID       int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID   string `json:"user_id" gorm:"not null;uniqueIndex:idx_follow_user_author"`
	AuthorID string `json:"author_id" gorm:"not null;uniqueIndex:idx_follow_user_author;index"`

	User   User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Author User `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
}

func (Follow) TableName() string {
	return "follows"
}
