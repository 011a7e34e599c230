package models

import "time"

// User is a registered account. History is partitioned by the user's
// sanitized username.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
