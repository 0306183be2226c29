package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/tessera/internal/models"
	"github.com/desertthunder/tessera/internal/shared"
)

// CollageRepository implements models.Repository[*models.Collage] for generated collage history.
type CollageRepository struct {
	db *sql.DB
}

// NewCollageRepository creates a new CollageRepository with the given database connection
func NewCollageRepository(db *sql.DB) *CollageRepository {
	return &CollageRepository{db: db}
}

// Create inserts a collage with a generated ID unless one is already set.
func (r *CollageRepository) Create(c *models.Collage) error {
	if c.ID() == "" {
		c.SetID(shared.GenerateID())
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO collages (id, path, width, height, tiles, hue_shift, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, c.ID(), c.Path(), c.Width(), c.Height(), c.Tiles(), c.HueShift(), c.CreatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert collage: %w", err)
	}
	return nil
}

// Get retrieves a collage by ID
func (r *CollageRepository) Get(id string) (*models.Collage, error) {
	query := `
		SELECT id, path, width, height, tiles, hue_shift, created_at
		FROM collages
		WHERE id = ?
	`

	c, err := scanCollage(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collage not found: %s", id)
	}
	return c, err
}

// Update rewrites the stored path of a collage, used when a file is moved.
func (r *CollageRepository) Update(c *models.Collage) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	result, err := r.db.Exec("UPDATE collages SET path = ? WHERE id = ?", c.Path(), c.ID())
	if err != nil {
		return fmt.Errorf("failed to update collage: %w", err)
	}
	return requireRow(result, "collage", c.ID())
}

// Delete removes the collage record. The image file is left alone.
func (r *CollageRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM collages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete collage: %w", err)
	}
	return requireRow(result, "collage", id)
}

// List returns collages newest first. Supported criteria: "limit" (int).
func (r *CollageRepository) List(criteria map[string]any) ([]*models.Collage, error) {
	query := `
		SELECT id, path, width, height, tiles, hue_shift, created_at
		FROM collages
		ORDER BY created_at DESC, id ASC
	`

	args := []any{}
	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query collages: %w", err)
	}
	defer rows.Close()

	var collages []*models.Collage
	for rows.Next() {
		c, err := scanCollage(rows)
		if err != nil {
			return nil, err
		}
		collages = append(collages, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return collages, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCollage(s scanner) (*models.Collage, error) {
	var c struct {
		id, path             string
		width, height, tiles int
		hueShift             float64
		createdAt            sql.NullTime
	}

	err := s.Scan(&c.id, &c.path, &c.width, &c.height, &c.tiles, &c.hueShift, &c.createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan collage: %w", err)
	}

	return models.RestoreCollage(c.id, c.path, c.width, c.height, c.tiles, c.hueShift, c.createdAt.Time), nil
}

func requireRow(result sql.Result, kind, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s not found: %s", kind, id)
	}
	return nil
}

var _ models.Repository[*models.Collage] = (*CollageRepository)(nil)
