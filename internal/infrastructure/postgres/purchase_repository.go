package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trade-hub/trade-hub/internal/domain/purchase"
	"github.com/trade-hub/trade-hub/internal/domain/trade"
)

// PurchaseRepository implements purchase.Repository with the same
// version-guard discipline as the swap repository.
type PurchaseRepository struct {
	pool *pgxpool.Pool
}

func NewPurchaseRepository(pool *pgxpool.Pool) *PurchaseRepository {
	return &PurchaseRepository{pool: pool}
}

func (r *PurchaseRepository) Create(ctx context.Context, p *purchase.Purchase) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO purchases
		(purchase_id, item_id, buyer_id, seller_id, status, offer_cents, counter_price_cents, payment_status, payment_reference, version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, p.PurchaseID, p.ItemID, p.BuyerID, p.SellerID, p.Status, p.OfferCents, p.CounterPriceCents, p.PaymentStatus, p.PaymentReference, p.Version, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *PurchaseRepository) GetByID(ctx context.Context, purchaseID uuid.UUID) (*purchase.Purchase, error) {
	row := r.pool.QueryRow(ctx, selectPurchase+` WHERE purchase_id=$1`, purchaseID)
	return scanPurchase(row)
}

func (r *PurchaseRepository) ListByParty(ctx context.Context, party uuid.UUID, limit, offset int) ([]*purchase.Purchase, error) {
	rows, err := r.pool.Query(ctx, selectPurchase+` WHERE buyer_id=$1 OR seller_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, party, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var purchases []*purchase.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

func (r *PurchaseRepository) HasPending(ctx context.Context, itemID, buyer uuid.UUID) (bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM purchases WHERE item_id=$1 AND buyer_id=$2 AND status=$3)
	`, itemID, buyer, purchase.StatusPending)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PurchaseRepository) Update(ctx context.Context, p *purchase.Purchase) error {
	res, err := r.pool.Exec(ctx, updatePurchase, purchaseUpdateArgs(p)...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%w: purchase %s version %d", trade.ErrStale, p.PurchaseID, p.Version)
	}
	p.Version++
	return nil
}

// CompleteWithItem commits the settled negotiation, the item's sold flag and
// the seller's sold-item counter in one transaction.
func (r *PurchaseRepository) CompleteWithItem(ctx context.Context, p *purchase.Purchase) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, updatePurchase, purchaseUpdateArgs(p)...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%w: purchase %s version %d", trade.ErrStale, p.PurchaseID, p.Version)
	}
	if _, err := tx.Exec(ctx, `UPDATE items SET is_sold=TRUE, updated_at=$1 WHERE item_id=$2`, time.Now().UTC(), p.ItemID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET sold_count=sold_count+1, updated_at=$1 WHERE user_id=$2`, time.Now().UTC(), p.SellerID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	p.Version++
	return nil
}

const selectPurchase = `
	SELECT id, purchase_id, item_id, buyer_id, seller_id, status, offer_cents, counter_price_cents, payment_status, payment_reference, version, created_at, updated_at
	FROM purchases`

const updatePurchase = `
	UPDATE purchases
	SET status=$1, offer_cents=$2, counter_price_cents=$3, payment_status=$4, payment_reference=$5, version=version+1, updated_at=$6
	WHERE purchase_id=$7 AND version=$8`

func purchaseUpdateArgs(p *purchase.Purchase) []interface{} {
	return []interface{}{
		p.Status, p.OfferCents, p.CounterPriceCents, p.PaymentStatus, p.PaymentReference, time.Now().UTC(),
		p.PurchaseID, p.Version,
	}
}

func scanPurchase(row pgx.Row) (*purchase.Purchase, error) {
	var p purchase.Purchase
	var counterPrice *int64
	var paymentRef *string
	if err := row.Scan(&p.ID, &p.PurchaseID, &p.ItemID, &p.BuyerID, &p.SellerID, &p.Status, &p.OfferCents, &counterPrice, &p.PaymentStatus, &paymentRef, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p.CounterPriceCents = counterPrice
	p.PaymentReference = paymentRef
	return &p, nil
}
