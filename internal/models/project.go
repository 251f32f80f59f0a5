package models

import "time"

// Project is the tenant boundary: every task belongs to exactly one project
// and only the owner and members may see or change its tasks.
type Project struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     int       `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GetID lets output formatters print just the identifier in quiet mode
func (p *Project) GetID() int {
	return p.ID
}

// Role is a user's role inside a project
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Member is a membership row joined with the member's user record
type Member struct {
	ProjectID int       `json:"project_id"`
	UserID    int       `json:"user_id"`
	Role      Role      `json:"role"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	JoinedAt  time.Time `json:"joined_at"`
}

// User is an account that can own or join projects
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// GetID lets output formatters print just the identifier in quiet mode
func (u *User) GetID() int {
	return u.ID
}
