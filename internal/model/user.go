package model

// User is the authenticated profile. Organization scoping happens through
// memberships, not on the user itself.
type User struct {
	Base
	Email        string `db:"email" json:"email"`
	FullName     string `db:"full_name" json:"full_name"`
	PasswordHash string `db:"password_hash" json:"-"`
	AvatarURL    string `db:"avatar_url" json:"avatar_url,omitempty"`
	Status       string `db:"status" json:"status"`
}

const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
