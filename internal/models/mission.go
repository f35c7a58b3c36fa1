package models

import "time"

type Mission struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RoundID     uint      `json:"roundId" gorm:"index;not null"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	Order       int       `json:"order" gorm:"column:sort_order;not null;default:0"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateMissionRequest struct {
	RoundID     uint    `json:"roundId" validate:"required"`
	Name        string  `json:"name" validate:"required,notblank,max=255"`
	Description *string `json:"description"`
	Order       *int    `json:"order" validate:"omitempty,min=0"`
}

type UpdateMissionRequest struct {
	ID          uint    `json:"id" validate:"required"`
	Name        *string `json:"name" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description"`
	Order       *int    `json:"order" validate:"omitempty,min=0"`
}

type MissionIDRequest struct {
	MissionID uint `json:"missionId" validate:"required"`
}
