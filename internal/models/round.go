package models

import "time"

// Round is the top-level grouping of study content.
type Round struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	Order       int       `json:"order" gorm:"column:sort_order;not null;default:0"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateRoundRequest struct {
	Name        string  `json:"name" validate:"required,notblank,max=255"`
	Description *string `json:"description"`
	Order       *int    `json:"order" validate:"omitempty,min=0"`
}

type UpdateRoundRequest struct {
	ID          uint    `json:"id" validate:"required"`
	Name        *string `json:"name" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description"`
	Order       *int    `json:"order" validate:"omitempty,min=0"`
}

type RoundIDRequest struct {
	RoundID uint `json:"roundId" validate:"required"`
}

// RoundProgress is one user's completion summary for a round.
type RoundProgress struct {
	RoundID         uint `json:"roundId"`
	TotalTopics     int  `json:"totalTopics"`
	CompletedTopics int  `json:"completedTopics"`
	Percentage      int  `json:"percentage"`
}
