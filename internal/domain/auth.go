package domain

import "time"

// ============================================================
// Auth / Session
// ============================================================

// User is the identity held for the lifetime of a session.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Session binds a user to the upstream bearer token obtained at login.
// It is created on login success, loaded per request and destroyed at
// logout; it is never held in a process-wide global.
type Session struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	UpstreamToken string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignupRequest is the body of POST /v1/auth/signup.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the BFF access token and the user identity.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
	User        User   `json:"user"`
}

// UpstreamLoginResult is what the finance API returns on a successful
// credential check.
type UpstreamLoginResult struct {
	Token    string `json:"token"`
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
