// Package menu holds the menu item catalog consulted by order creation.
package menu

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrMenuItemNotFound = errors.New("menu item not found")

type MenuItem struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	Price           float64   `json:"price"`
	Description     string    `json:"description"`
	IsVegetarian    bool      `json:"is_vegetarian"`
	PreparationTime int       `json:"preparation_time"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Repository interface {
	List(ctx context.Context) ([]MenuItem, error)
	GetByID(ctx context.Context, id int64) (*MenuItem, error)
	Create(ctx context.Context, item *MenuItem) (int64, error)
	Update(ctx context.Context, item *MenuItem) error
	Delete(ctx context.Context, id int64) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) List(ctx context.Context) ([]MenuItem, error) {
	query := `
		SELECT id, name, category, price, COALESCE(description, ''), is_vegetarian, preparation_time, created_at, updated_at
		FROM menu_items
		ORDER BY category, name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := make([]MenuItem, 0)
	for rows.Next() {
		var item MenuItem
		err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Category,
			&item.Price,
			&item.Description,
			&item.IsVegetarian,
			&item.PreparationTime,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating menu items: %w", err)
	}

	return items, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*MenuItem, error) {
	query := `
		SELECT id, name, category, price, COALESCE(description, ''), is_vegetarian, preparation_time, created_at, updated_at
		FROM menu_items
		WHERE id = $1
	`

	var item MenuItem
	err := r.db.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.Name,
		&item.Category,
		&item.Price,
		&item.Description,
		&item.IsVegetarian,
		&item.PreparationTime,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("repository: failed to select menu item %d: %w", id, err)
	}

	return &item, nil
}

func (r *postgresRepository) Create(ctx context.Context, item *MenuItem) (int64, error) {
	query := `
		INSERT INTO menu_items (name, category, price, description, is_vegetarian, preparation_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		item.Name,
		item.Category,
		item.Price,
		item.Description,
		item.IsVegetarian,
		item.PreparationTime,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to insert menu item: %w", err)
	}

	return id, nil
}

func (r *postgresRepository) Update(ctx context.Context, item *MenuItem) error {
	query := `
		UPDATE menu_items
		SET name = $1, category = $2, price = $3, description = $4, is_vegetarian = $5, preparation_time = $6, updated_at = NOW()
		WHERE id = $7
	`

	cmdTag, err := r.db.Exec(ctx, query,
		item.Name,
		item.Category,
		item.Price,
		item.Description,
		item.IsVegetarian,
		item.PreparationTime,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update menu item %d: %w", item.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrMenuItemNotFound
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete menu item %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrMenuItemNotFound
	}

	return nil
}
