package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trade-hub/trade-hub/internal/domain/item"
)

// ItemRepository implements item.Repository.
type ItemRepository struct {
	pool *pgxpool.Pool
}

func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

func (r *ItemRepository) Create(ctx context.Context, it *item.Item) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO items
		(item_id, owner_id, title, description, price_cents, category, is_swapped, is_sold, removed, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, it.ItemID, it.OwnerID, it.Title, it.Description, it.PriceCents, it.Category, it.IsSwapped, it.IsSold, it.Removed, it.CreatedAt, it.UpdatedAt)
	return err
}

func (r *ItemRepository) GetByID(ctx context.Context, itemID uuid.UUID) (*item.Item, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, item_id, owner_id, title, description, price_cents, category, is_swapped, is_sold, removed, created_at, updated_at
		FROM items WHERE item_id=$1
	`, itemID)
	return scanItem(row)
}

func (r *ItemRepository) List(ctx context.Context, filter item.Filter, limit, offset int) ([]*item.Item, error) {
	query := `SELECT id, item_id, owner_id, title, description, price_cents, category, is_swapped, is_sold, removed, created_at, updated_at FROM items`
	args := []interface{}{}
	idx := 1
	if filter.OwnerID != nil {
		query += " WHERE owner_id=$" + itoa(idx)
		args = append(args, *filter.OwnerID)
		idx++
	}
	if filter.Category != nil {
		query += addWhere(query) + " category=$" + itoa(idx)
		args = append(args, *filter.Category)
		idx++
	}
	if filter.Available {
		query += addWhere(query) + " is_swapped=FALSE AND is_sold=FALSE AND removed=FALSE"
	}
	query += " ORDER BY created_at DESC LIMIT $" + itoa(idx) + " OFFSET $" + itoa(idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*item.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *ItemRepository) Update(ctx context.Context, it *item.Item) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE items
		SET title=$1, description=$2, price_cents=$3, category=$4, is_swapped=$5, is_sold=$6, removed=$7, updated_at=$8
		WHERE item_id=$9
	`, it.Title, it.Description, it.PriceCents, it.Category, it.IsSwapped, it.IsSold, it.Removed, it.UpdatedAt, it.ItemID)
	return err
}

func (r *ItemRepository) SetRemoved(ctx context.Context, itemID uuid.UUID, removed bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE items SET removed=$1, updated_at=NOW() WHERE item_id=$2`, removed, itemID)
	return err
}

func scanItem(row pgx.Row) (*item.Item, error) {
	var it item.Item
	if err := row.Scan(&it.ID, &it.ItemID, &it.OwnerID, &it.Title, &it.Description, &it.PriceCents, &it.Category, &it.IsSwapped, &it.IsSold, &it.Removed, &it.CreatedAt, &it.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

func addWhere(query string) string {
	if strings.Contains(query, " WHERE ") {
		return " AND"
	}
	return " WHERE"
}
