package models

// IDRequest addresses a single row by primary key.
type IDRequest struct {
	ID uint `json:"id" validate:"required"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
	ID      uint `json:"id,omitempty"`
}
