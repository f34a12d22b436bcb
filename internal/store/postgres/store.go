package postgres

import (
	"context"
	"errors"
	"time"

	"bizcard/internal/models"
	"bizcard/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash, role string) (models.User, error) {
	user := models.User{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Created:      time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (user_id, email, password_hash, role, created_at)
		VALUES ($1, lower($2), $3, $4, $5)
	`, user.UserID, user.Email, user.PasswordHash, user.Role, user.Created)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.User{}, store.ErrEmailTaken
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, email, password_hash, role, created_at
		FROM users
		WHERE email = lower($1)
	`, email)
	return scanUser(row)
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, email, password_hash, role, created_at
		FROM users
		WHERE user_id = $1
	`, userID)
	return scanUser(row)
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.UserID, &user.Email, &user.PasswordHash, &user.Role, &user.Created); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// RegisterUser assigns the role inside one transaction under a table lock,
// so two concurrent first registrations cannot both observe an empty table
// and claim admin.
func (s *Store) RegisterUser(ctx context.Context, email, passwordHash string) (models.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return models.User{}, err
	}
	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return models.User{}, err
	}
	role := models.RoleEditor
	if count == 0 {
		role = models.RoleAdmin
	}

	user := models.User{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Created:      time.Now().UTC(),
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO users (user_id, email, password_hash, role, created_at)
		VALUES ($1, lower($2), $3, $4, $5)
	`, user.UserID, user.Email, user.PasswordHash, user.Role, user.Created)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.User{}, store.ErrEmailTaken
		}
		return models.User{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) HasAdmin(ctx context.Context) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE role = $1)
	`, models.RoleAdmin).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, email, password_hash, role, created_at
		FROM users
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.UserID, &user.Email, &user.PasswordHash, &user.Role, &user.Created); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) GetText(ctx context.Context, page, key, lang string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx, `
		SELECT value FROM texts
		WHERE page = $1 AND key = $2 AND lang = $3
	`, page, key, lang).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *Store) UpsertText(ctx context.Context, text models.Text) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO texts (page, key, lang, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (page, key, lang) DO UPDATE SET value = EXCLUDED.value
	`, text.Page, text.Key, text.Lang, text.Value)
	return err
}

func (s *Store) ListTexts(ctx context.Context, page, lang string) ([]models.Text, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT page, key, lang, value FROM texts
		WHERE ($1 = '' OR page = $1) AND ($2 = '' OR lang = $2)
		ORDER BY page, key, lang
	`, page, lang)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var texts []models.Text
	for rows.Next() {
		var text models.Text
		if err := rows.Scan(&text.Page, &text.Key, &text.Lang, &text.Value); err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return texts, rows.Err()
}

func (s *Store) GetSEO(ctx context.Context, page, lang string) (models.SEOEntry, error) {
	entry := models.SEOEntry{Page: page, Lang: lang}
	err := s.pool.QueryRow(ctx, `
		SELECT title, description, keywords FROM seo
		WHERE page = $1 AND lang = $2
	`, page, lang).Scan(&entry.Title, &entry.Description, &entry.Keywords)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.SEOEntry{Page: page, Lang: lang}, nil
	}
	if err != nil {
		return models.SEOEntry{}, err
	}
	return entry, nil
}

func (s *Store) UpsertSEO(ctx context.Context, entry models.SEOEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO seo (page, lang, title, description, keywords)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (page, lang) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			keywords = EXCLUDED.keywords
	`, entry.Page, entry.Lang, entry.Title, entry.Description, entry.Keywords)
	return err
}

func (s *Store) ListImages(ctx context.Context, imageType string) ([]models.Image, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT image_id, type, path, sort_order, created_at FROM images
		WHERE ($1 = '' OR type = $1)
		ORDER BY type, sort_order
	`, imageType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.Image
	for rows.Next() {
		var image models.Image
		if err := rows.Scan(&image.ImageID, &image.Type, &image.Path, &image.SortOrder, &image.Created); err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

func (s *Store) InsertImage(ctx context.Context, image models.Image) (models.Image, error) {
	if image.ImageID == "" {
		image.ImageID = uuid.NewString()
	}
	image.Created = time.Now().UTC()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO images (image_id, type, path, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, image.ImageID, image.Type, image.Path, image.SortOrder, image.Created)
	if err != nil {
		return models.Image{}, err
	}
	return image, nil
}

func (s *Store) DeleteImage(ctx context.Context, imageID string) (models.Image, error) {
	row := s.pool.QueryRow(ctx, `
		DELETE FROM images WHERE image_id = $1
		RETURNING image_id, type, path, sort_order, created_at
	`, imageID)
	var image models.Image
	if err := row.Scan(&image.ImageID, &image.Type, &image.Path, &image.SortOrder, &image.Created); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Image{}, store.ErrImageNotFound
		}
		return models.Image{}, err
	}
	return image, nil
}

func (s *Store) DashboardStats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM texts),
			(SELECT COUNT(*) FROM images),
			(SELECT COUNT(*) FROM users)
	`).Scan(&stats.TextsCount, &stats.ImagesCount, &stats.UsersCount)
	if err != nil {
		return models.DashboardStats{}, err
	}

	rows, err := s.pool.Query(ctx, `SELECT DISTINCT lang FROM texts ORDER BY lang`)
	if err != nil {
		return models.DashboardStats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			return models.DashboardStats{}, err
		}
		stats.Languages = append(stats.Languages, lang)
	}
	return stats, rows.Err()
}
