package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// User represents a registered account, regardless of segment
type User struct {
	ID           string    `json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Picture      string    `json:"picture,omitempty"`
	Role         string    `json:"role"`
	Provider     string    `json:"provider"`
	GoogleID     string    `json:"-"`
	PasswordHash string    `json:"-"` // Never serialize
	CreatedAt    time.Time `json:"created_at"`
}

// Session is the authenticated identity held for a signed-in user.
// Created by login/register, destroyed by logout; those are the only
// two mutating operations.
type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// GenerateSessionToken creates a cryptographically random 48-char hex token
func GenerateSessionToken() (string, error) {
	bytes := make([]byte, 24)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// RegisterRequest represents a credential-based signup
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest represents a credential-based sign-in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleAuthRequest carries the OAuth ID token issued by the identity provider
type GoogleAuthRequest struct {
	Credential string `json:"credential"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	GoogleID   string `json:"google_id"`
	Picture    string `json:"picture,omitempty"`
}

// AuthResponse is returned by all three session-creating endpoints
type AuthResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	Role    string `json:"role"`
	Token   string `json:"token"`
}
