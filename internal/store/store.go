package store

import (
	"context"

	"bizcard/internal/models"
)

// Store is the persistence boundary for the CMS: user records plus the
// page content the admin panel edits. Implementations live under
// store/postgres.
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash, role string) (models.User, error)
	// RegisterUser creates a self-service account. The very first account
	// becomes the admin and every later one an editor; the assignment is
	// atomic under concurrent registrations.
	RegisterUser(ctx context.Context, email, passwordHash string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByID(ctx context.Context, userID string) (models.User, error)
	HasAdmin(ctx context.Context) (bool, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	GetText(ctx context.Context, page, key, lang string) (string, error)
	UpsertText(ctx context.Context, text models.Text) error
	ListTexts(ctx context.Context, page, lang string) ([]models.Text, error)

	GetSEO(ctx context.Context, page, lang string) (models.SEOEntry, error)
	UpsertSEO(ctx context.Context, entry models.SEOEntry) error

	ListImages(ctx context.Context, imageType string) ([]models.Image, error)
	InsertImage(ctx context.Context, image models.Image) (models.Image, error)
	DeleteImage(ctx context.Context, imageID string) (models.Image, error)

	DashboardStats(ctx context.Context) (models.DashboardStats, error)
}
