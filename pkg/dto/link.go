package dto

import "time"

type LinkInput struct {
	Title string `json:"title" binding:"required,max=255"`
	URL   string `json:"url"   binding:"required,max=2048"`
}

type Link struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// PublicLink is the trimmed link shape shown on a public profile.
type PublicLink struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type PublicProfile struct {
	Username        string         `json:"username"`
	Links           []PublicLink   `json:"links"`
	ThemePreference map[string]any `json:"theme_preference"`
	ProfileImageURL string         `json:"profile_image_url,omitempty"`
}

type AvatarResult struct {
	User            PublicUser `json:"user"`
	ProfileImageURL string     `json:"profileImageUrl"`
}
