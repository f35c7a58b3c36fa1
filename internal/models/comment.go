package models

import "time"

type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	MissionID uint      `json:"missionId" gorm:"index;not null"`
	UserID    uint      `json:"userId" gorm:"not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

type CreateCommentRequest struct {
	MissionID uint   `json:"missionId" validate:"required"`
	Content   string `json:"content" validate:"required,notblank,max=5000"`
}
