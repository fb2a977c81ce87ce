package domain

import "time"

// User models an account. Users are never removed; deletion clears Active.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        RoleSet   `json:"role" swaggertype:"array,string"`
	Active       bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsSuperadmin reports whether the user holds SUPERADMIN.
func (u *User) IsSuperadmin() bool {
	return u != nil && u.Roles.Has(RoleSuperadmin)
}

// IsAdmin reports whether the user holds ADMIN. SUPERADMIN alone does not count.
func (u *User) IsAdmin() bool {
	return u != nil && u.Roles.Has(RoleAdmin)
}
