package user

import "time"

// SystemUserID owns auto-generated calendar slots (the snowdome track).
// The row is seeded by schema.sql.
const SystemUserID = "system"

type User struct {
	ID        string    `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Name      string    `json:"name" db:"name"`
}

type CreateUserRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
