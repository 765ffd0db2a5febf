package models

import "time"

// User roles. Managers (and up) can edit the menu and run the shift close.
const (
	RoleServer           = "Server"
	RoleBartender        = "Bartender"
	RoleManager          = "Manager"
	RoleAssistantManager = "Assistant Manager"
	RoleAdmin            = "Admin"
)

// User represents a staff member profile. Login is name + PIN; the PIN is
// stored hashed, never in the clear.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	PinHash   string    `json:"-" db:"pin_hash"`
	Role      string    `json:"role" db:"role"`
	IsManager bool      `json:"is_manager" db:"is_manager"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	AvatarURL *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
