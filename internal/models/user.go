package models

import "time"

// Category is the role a user signed up with.
type Category string

const (
	CategorySeller Category = "seller"
	CategoryBuyer  Category = "buyer"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategorySeller || c == CategoryBuyer
}

// User represents a user of the store.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:20;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:50;not null"`
	Category     Category  `json:"category" gorm:"type:varchar(6);not null"`
	PasswordHash string    `json:"-" gorm:"not null"` // never serialized
	CreatedAt    time.Time `json:"-"`
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Username string   `json:"username" form:"username" validate:"required,min=1,max=20"`
	Email    string   `json:"email" form:"email" validate:"required,email,max=50"`
	Category Category `json:"category" form:"category" validate:"required,oneof=seller buyer"`
	Password string   `json:"password" form:"password" validate:"required,bcryptlen"`
}

// LoginRequest is the sign-in payload.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Token is returned on successful sign-up and sign-in.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TokenTypeBearer is the only token type issued.
const TokenTypeBearer = "bearer"
