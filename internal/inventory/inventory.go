// Package inventory covers stock rows and their supplier linkage.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInventoryItemNotFound = errors.New("inventory item not found")

type InventoryItem struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Category        string     `json:"category"`
	Quantity        float64    `json:"quantity"`
	Unit            string     `json:"unit"`
	MinLevel        float64    `json:"min_level"`
	PricePerUnit    float64    `json:"price_per_unit"`
	SupplierID      *int64     `json:"supplier_id,omitempty"`
	SupplierName    string     `json:"supplier_name,omitempty"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
	StorageLocation string     `json:"storage_location"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type Repository interface {
	List(ctx context.Context) ([]InventoryItem, error)
	Update(ctx context.Context, item *InventoryItem) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) List(ctx context.Context) ([]InventoryItem, error) {
	query := `
		SELECT i.id, i.name, i.category, i.quantity, i.unit, i.min_level, i.price_per_unit,
		       i.supplier_id, COALESCE(s.name, ''), i.expiry_date, COALESCE(i.storage_location, ''), i.updated_at
		FROM inventory_items i
		LEFT JOIN suppliers s ON i.supplier_id = s.id
		ORDER BY i.category, i.name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query inventory items: %w", err)
	}
	defer rows.Close()

	items := make([]InventoryItem, 0)
	for rows.Next() {
		var item InventoryItem
		err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Category,
			&item.Quantity,
			&item.Unit,
			&item.MinLevel,
			&item.PricePerUnit,
			&item.SupplierID,
			&item.SupplierName,
			&item.ExpiryDate,
			&item.StorageLocation,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan inventory item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating inventory items: %w", err)
	}

	return items, nil
}

func (r *postgresRepository) Update(ctx context.Context, item *InventoryItem) error {
	query := `
		UPDATE inventory_items
		SET name = $1, category = $2, quantity = $3, unit = $4, min_level = $5,
		    price_per_unit = $6, supplier_id = $7, expiry_date = $8, storage_location = $9, updated_at = NOW()
		WHERE id = $10
	`

	cmdTag, err := r.db.Exec(ctx, query,
		item.Name,
		item.Category,
		item.Quantity,
		item.Unit,
		item.MinLevel,
		item.PricePerUnit,
		item.SupplierID,
		item.ExpiryDate,
		item.StorageLocation,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update inventory item %d: %w", item.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrInventoryItemNotFound
	}

	return nil
}
