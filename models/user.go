// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User model
type User struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email          string             `json:"email" bson:"email"`
	Password       string             `json:"password,omitempty" bson:"password"`
	FullName       string             `json:"fullName" bson:"fullName"`
	UserType       string             `json:"userType" bson:"userType"` // "user", "admin"
	IsActive       bool               `json:"isActive" bson:"isActive"`
	LastActivityAt time.Time          `json:"lastActivityAt" bson:"lastActivityAt"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// LoginRequest model
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued tokens and the user profile
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

// UpdateRoleRequest is the admin body for changing a user's role
type UpdateRoleRequest struct {
	UserType string `json:"userType" validate:"required"`
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
