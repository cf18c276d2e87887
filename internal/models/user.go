// Package models contains data structures for the application's domain models.
package models

import "time"

// User is a registered account. Users are never deleted.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwdHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session points at the signed-in user. ExpiresAt is reserved and always nil.
type Session struct {
	UserID    string     `json:"userId"`
	ExpiresAt *time.Time `json:"expiresAt"`
}
