// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role labels as stored on user documents. Student and teacher labels are
// kept in Vietnamese to match the existing client and seeded data.
const (
	RoleAdmin   = "admin"
	RoleStudent = "Sinh viên"
	RoleTeacher = "Giảng viên"
)

// User model
type User struct {
	ID             primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Email          string              `json:"email" bson:"email"`
	Password       string              `json:"password,omitempty" bson:"password"`
	FullName       string              `json:"fullName" bson:"fullName"`
	Role           string              `json:"role" bson:"role"` // "admin", "Sinh viên", "Giảng viên"
	StudentCode    string              `json:"studentCode,omitempty" bson:"studentCode,omitempty"`
	TeacherCode    string              `json:"teacherCode,omitempty" bson:"teacherCode,omitempty"`
	Phone          string              `json:"phone,omitempty" bson:"phone,omitempty"`
	GroupID        *primitive.ObjectID `json:"groupId,omitempty" bson:"groupId,omitempty"`
	IsActive       bool                `json:"isActive" bson:"isActive"`
	LastActivityAt time.Time           `json:"lastActivityAt" bson:"lastActivityAt"`
	FCMToken       string              `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginData is returned on successful login
type LoginData struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}
