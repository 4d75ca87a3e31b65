package domain

import (
	"strings"
	"time"
)

type User struct {
	UserID       string    `json:"id" bson:"_id" dynamodbav:"user_id"`
	Name         string    `json:"name" bson:"name" dynamodbav:"name"`
	Email        string    `json:"email" bson:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" bson:"passwordHash" dynamodbav:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt" dynamodbav:"updated_at"`
}

// UserSummary is the public projection returned by auth endpoints.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.UserID, Name: u.Name, Email: u.Email}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Normalize trims every field and lower-cases the email.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  UserSummary `json:"user"`
	Token string      `json:"token"`
}

func (r *LoginRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

// NormalizeEmail is the canonical stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
