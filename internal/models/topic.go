package models

import "time"

// Topic is the leaf content unit: progress and attachments hang off it.
type Topic struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	MissionID   uint      `json:"missionId" gorm:"index;not null"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	Order       int       `json:"order" gorm:"column:sort_order;not null;default:0"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateTopicRequest struct {
	MissionID   uint    `json:"missionId" validate:"required"`
	Name        string  `json:"name" validate:"required,notblank,max=255"`
	Description *string `json:"description"`
	Order       *int    `json:"order" validate:"omitempty,min=0"`
}

type UpdateTopicRequest struct {
	ID          uint    `json:"id" validate:"required"`
	Name        *string `json:"name" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description"`
	Order       *int    `json:"order" validate:"omitempty,min=0"`
}

type TopicIDRequest struct {
	TopicID uint `json:"topicId" validate:"required"`
}
