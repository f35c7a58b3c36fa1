package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	OpenID       string    `json:"openId" gorm:"size:64;uniqueIndex;not null"`
	Name         string    `json:"name"`
	Email        string    `json:"email" gorm:"size:320;index"`
	Password     string    `json:"-"`
	LoginMethod  string    `json:"loginMethod" gorm:"size:64"`
	Role         string    `json:"role" gorm:"size:16;not null;default:user"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastSignedIn time.Time `json:"lastSignedIn"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Auth DTOs
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleAuthRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// User management DTOs
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=320"`
	Name     string `json:"name" validate:"required,notblank"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

type UpdateUserRequest struct {
	ID       uint    `json:"id" validate:"required"`
	Name     *string `json:"name" validate:"omitempty,notblank"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
	Role     *string `json:"role" validate:"omitempty,oneof=user admin"`
}

type DeleteUserRequest struct {
	UserID uint `json:"userId" validate:"required"`
}
