// Package model defines data structures for the AgriSense platform.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// User represents a registered farmer account. Location and farm fields
// are optional; a nil pointer means the field was never set, which is
// distinct from an empty string.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`

	// Location information for weather
	City       *string `gorm:"type:varchar(100)" json:"city,omitempty"`
	Prefecture *string `gorm:"type:varchar(100)" json:"prefecture,omitempty"`

	// Farm details
	FarmSize       *string                     `gorm:"type:varchar(50)" json:"farm_size,omitempty"`
	CropTypes      datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"crop_types,omitempty"`
	FarmingMethods datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"farming_methods,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName overrides the GORM table name.
func (User) TableName() string { return "users" }

// SignupRequest is the request to register a new account.
type SignupRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	City       string `json:"city,omitempty"`
	Prefecture string `json:"prefecture,omitempty"`
}

// SigninRequest is the request to sign in to an existing account.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned after a successful signup or signin.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// UpdateProfileRequest is a partial profile update. Nil fields are left
// untouched.
type UpdateProfileRequest struct {
	Name           *string  `json:"name,omitempty"`
	City           *string  `json:"city,omitempty"`
	Prefecture     *string  `json:"prefecture,omitempty"`
	FarmSize       *string  `json:"farm_size,omitempty"`
	CropTypes      []string `json:"crop_types,omitempty"`
	FarmingMethods []string `json:"farming_methods,omitempty"`
}
