package auth

import "time"

type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Metadata  Metadata   `json:"metadata"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

type Credentials struct {
	User
	PasswordHash string
}

// UserContext is the authenticated caller as carried on a request.
type UserContext struct {
	UserID     string
	Email      string
	Role       Role
	EmployeeID string
	SessionID  string
}

func (u UserContext) HasEmployee() bool {
	return u.EmployeeID != ""
}

type SignUpInput struct {
	Email    string
	Password string
	Role     Role
	Name     string
}

type SignInResult struct {
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expiresAt"`
	User       User      `json:"user"`
	Role       Role      `json:"role"`
	EmployeeID string    `json:"employeeId,omitempty"`
}

type SessionInfo struct {
	User       User   `json:"user"`
	Role       Role   `json:"role"`
	EmployeeID string `json:"employeeId,omitempty"`
}
