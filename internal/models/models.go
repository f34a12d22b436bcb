package models

import "time"

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

type User struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Created      time.Time `json:"created_at"`
}

type Text struct {
	Page  string `json:"page"`
	Key   string `json:"key"`
	Lang  string `json:"lang"`
	Value string `json:"value"`
}

type SEOEntry struct {
	Page        string `json:"page"`
	Lang        string `json:"lang"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
}

type Image struct {
	ImageID   string    `json:"image_id"`
	Type      string    `json:"type"`
	Path      string    `json:"path"`
	SortOrder int       `json:"sort_order"`
	Created   time.Time `json:"created_at"`
}

type DashboardStats struct {
	TextsCount  int      `json:"texts_count"`
	ImagesCount int      `json:"images_count"`
	UsersCount  int      `json:"users_count"`
	Languages   []string `json:"active_languages"`
}
