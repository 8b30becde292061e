package models

// SignInInput is the admin credential payload for POST /api/auth/signin.
type SignInInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
