package models

// LoginRequest is the payload for POST /auth/login
type LoginRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the payload for POST /auth/register
type RegisterRequest struct {
	UserID         string `json:"userId" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Password       string `json:"password" validate:"required,min=6"`
	Role           string `json:"role" validate:"required"`
	Phone          string `json:"phone" validate:"required"`
	DOB            string `json:"dob,omitempty"`
	Aadhaar        string `json:"aadhaar,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}

// AuthResponse is returned by login and register with a fresh bearer token
type AuthResponse struct {
	ID     string `json:"_id"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Token  string `json:"token"`
}

// HealthCheckResponse shows whether the api is alive
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}
