package model

import "time"

// User roles.  Role gates the admin-only operations (menu CRUD, pickup
// toggling, viewing the full reservation roster).
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account known to the service.  The password hash never
// leaves the repository layer.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
