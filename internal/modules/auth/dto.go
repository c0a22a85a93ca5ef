package auth

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

type LoginResult struct {
	Token     string
	ExpiresIn int64
}
