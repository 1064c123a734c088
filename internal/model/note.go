package model

import "time"

// Note is a nota owned by exactly one user. UserID is assigned on creation
// from the authenticated caller and is never rewritten afterwards.
type Note struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Title          string     `json:"title" gorm:"size:255;not null"`
	Description    *string    `json:"description" gorm:"type:text"`
	UserID         uint       `json:"user_id" gorm:"not null;index"`
	Labels         *string    `json:"labels" gorm:"type:text"`
	ImagePath      *string    `json:"image_path" gorm:"size:2048"`
	ExpirationDate *time.Time `json:"expiration_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName keeps the table name used by the existing deployments.
func (Note) TableName() string {
	return "notas"
}

// OwnedBy reports whether userID owns the note.
func (n Note) OwnedBy(userID uint) bool {
	return n.UserID == userID
}
