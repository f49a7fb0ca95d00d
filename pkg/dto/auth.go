// Package dto holds the JSON shapes exchanged between the API and its clients.
package dto

// Credentials is the body of POST /auth/register and POST /auth/login.
type Credentials struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=72"`
}

// PublicUser never carries the password hash.
type PublicUser struct {
	ID              uint64         `json:"id"`
	Username        string         `json:"username"`
	ThemePreference map[string]any `json:"theme_preference,omitempty"`
	ProfileImageURL string         `json:"profile_image_url,omitempty"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

type ErrorBody struct {
	Err string `json:"err"`
}

type Health struct {
	Status string `json:"status"`
}
