package auth

// RegisterPayload represents the registration request body.
type RegisterPayload struct {
	Username string `json:"username" mod:"trim" validate:"required,min=3,max=80"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginPayload represents the login request body.
type LoginPayload struct {
	Username string `json:"username" mod:"trim" validate:"required,max=80"`
	Password string `json:"password" validate:"required,max=128"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}
