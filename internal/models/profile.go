package models

import "time"

// Profile is a user's public profile row
type Profile struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileUpdate carries the mutable profile fields. Nil means "leave unchanged".
type ProfileUpdate struct {
	Username  *string `json:"username,omitempty" validate:"omitempty,min=3,max=32"`
	FullName  *string `json:"full_name,omitempty" validate:"omitempty,max=128"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}
