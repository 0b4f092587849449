package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trade-hub/trade-hub/internal/domain/swap"
	"github.com/trade-hub/trade-hub/internal/domain/trade"
)

// SwapRepository implements swap.Repository. Writes are guarded by the
// entity version: an UPDATE that matches zero rows means another writer
// advanced the row first and surfaces as trade.ErrStale.
type SwapRepository struct {
	pool *pgxpool.Pool
}

func NewSwapRepository(pool *pgxpool.Pool) *SwapRepository {
	return &SwapRepository{pool: pool}
}

func (r *SwapRepository) Create(ctx context.Context, s *swap.Swap) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO swaps
		(swap_id, requester_id, owner_id, requested_item_id, offered_item_id, counter_item_id, status,
		 delivery_method, delivery_confirmed_requester, delivery_confirmed_owner,
		 requester_confirmed, owner_confirmed, completed, version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`, s.SwapID, s.RequesterID, s.OwnerID, s.RequestedItemID, s.OfferedItemID, s.CounterItemID, s.Status,
		s.Delivery.Method, s.Delivery.Confirmed(swap.RoleRequester), s.Delivery.Confirmed(swap.RoleOwner),
		s.RequesterConfirmed, s.OwnerConfirmed, s.Completed, s.Version, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *SwapRepository) GetByID(ctx context.Context, swapID uuid.UUID) (*swap.Swap, error) {
	row := r.pool.QueryRow(ctx, selectSwap+` WHERE swap_id=$1`, swapID)
	return scanSwap(row)
}

func (r *SwapRepository) ListByParty(ctx context.Context, party uuid.UUID, limit, offset int) ([]*swap.Swap, error) {
	rows, err := r.pool.Query(ctx, selectSwap+` WHERE requester_id=$1 OR owner_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, party, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var swaps []*swap.Swap
	for rows.Next() {
		s, err := scanSwap(rows)
		if err != nil {
			return nil, err
		}
		swaps = append(swaps, s)
	}
	return swaps, rows.Err()
}

func (r *SwapRepository) Update(ctx context.Context, s *swap.Swap) error {
	res, err := r.pool.Exec(ctx, updateSwap, swapUpdateArgs(s)...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%w: swap %s version %d", trade.ErrStale, s.SwapID, s.Version)
	}
	s.Version++
	return nil
}

// UpdateWithItems commits the negotiation update and the is_swapped flips in
// one transaction, so item availability never disagrees with the swap status.
func (r *SwapRepository) UpdateWithItems(ctx context.Context, s *swap.Swap, swappedItemIDs ...uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, updateSwap, swapUpdateArgs(s)...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%w: swap %s version %d", trade.ErrStale, s.SwapID, s.Version)
	}
	for _, itemID := range swappedItemIDs {
		if _, err := tx.Exec(ctx, `UPDATE items SET is_swapped=TRUE, updated_at=$1 WHERE item_id=$2`, time.Now().UTC(), itemID); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.Version++
	return nil
}

const selectSwap = `
	SELECT id, swap_id, requester_id, owner_id, requested_item_id, offered_item_id, counter_item_id, status,
	       delivery_method, delivery_confirmed_requester, delivery_confirmed_owner,
	       requester_confirmed, owner_confirmed, completed, version, created_at, updated_at
	FROM swaps`

const updateSwap = `
	UPDATE swaps
	SET counter_item_id=$1, status=$2, delivery_method=$3, delivery_confirmed_requester=$4, delivery_confirmed_owner=$5,
	    requester_confirmed=$6, owner_confirmed=$7, completed=$8, version=version+1, updated_at=$9
	WHERE swap_id=$10 AND version=$11`

func swapUpdateArgs(s *swap.Swap) []interface{} {
	return []interface{}{
		s.CounterItemID, s.Status, s.Delivery.Method,
		s.Delivery.Confirmed(swap.RoleRequester), s.Delivery.Confirmed(swap.RoleOwner),
		s.RequesterConfirmed, s.OwnerConfirmed, s.Completed, time.Now().UTC(),
		s.SwapID, s.Version,
	}
}

func scanSwap(row pgx.Row) (*swap.Swap, error) {
	var s swap.Swap
	var counterItem *uuid.UUID
	var deliveryRequester, deliveryOwner bool
	if err := row.Scan(&s.ID, &s.SwapID, &s.RequesterID, &s.OwnerID, &s.RequestedItemID, &s.OfferedItemID, &counterItem, &s.Status,
		&s.Delivery.Method, &deliveryRequester, &deliveryOwner,
		&s.RequesterConfirmed, &s.OwnerConfirmed, &s.Completed, &s.Version, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	s.CounterItemID = counterItem
	if deliveryRequester {
		s.Delivery.ConfirmedBy = append(s.Delivery.ConfirmedBy, swap.RoleRequester)
	}
	if deliveryOwner {
		s.Delivery.ConfirmedBy = append(s.Delivery.ConfirmedBy, swap.RoleOwner)
	}
	return &s, nil
}
