package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gudangin/pricing-engine/internal/domain/criterion"
	"github.com/gudangin/pricing-engine/internal/domain/tag"
	"github.com/gudangin/pricing-engine/internal/domain/uom"
)

const (
	getSummariesByBuyerSQL = `SELECT tag, item_id, qty
		FROM purchase_summaries WHERE buyer_id = $1 ORDER BY tag, item_id`

	recordPurchaseSQL = `INSERT INTO purchase_summaries (buyer_id, tag, item_id, qty)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (buyer_id, tag, item_id) DO UPDATE SET
			qty = purchase_summaries.qty + EXCLUDED.qty`
)

// PurchaseSummaryRepository stores per-buyer accumulated purchase quantities
// grouped by tag, backed by PostgreSQL. Accumulation-style promotion criteria
// are evaluated against these summaries merged with the live cart.
type PurchaseSummaryRepository struct {
	pool *pgxpool.Pool
}

// NewPurchaseSummaryRepository returns a PurchaseSummaryRepository that uses
// the given pool.
func NewPurchaseSummaryRepository(pool *pgxpool.Pool) *PurchaseSummaryRepository {
	return &PurchaseSummaryRepository{pool: pool}
}

// GetByBuyer returns the buyer's accumulated per-tag purchases, one
// TagPurchase per tag with its contributing items.
func (r *PurchaseSummaryRepository) GetByBuyer(ctx context.Context, buyerID string) ([]criterion.TagPurchase, error) {
	rows, err := r.pool.Query(ctx, getSummariesByBuyerSQL, buyerID)
	if err != nil {
		return nil, fmt.Errorf("getting purchase summaries for buyer %q: %w", buyerID, err)
	}

	type record struct {
		rawTag string
		itemID string
		qty    int64
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (record, error) {
		var rec record
		err := row.Scan(&rec.rawTag, &rec.itemID, &rec.qty)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("getting purchase summaries for buyer %q: %w", buyerID, err)
	}

	var (
		out   []criterion.TagPurchase
		index = make(map[string]int)
	)
	for _, rec := range records {
		t, err := tag.Parse(rec.rawTag)
		if err != nil {
			return nil, fmt.Errorf("buyer %q summary: %w", buyerID, err)
		}
		i, ok := index[rec.rawTag]
		if !ok {
			i = len(out)
			index[rec.rawTag] = i
			out = append(out, criterion.TagPurchase{Tag: t})
		}
		qty := uom.Quantity(rec.qty)
		out[i].Qty = out[i].Qty.Add(qty)
		out[i].Items = append(out[i].Items, criterion.ItemPurchase{
			ItemID: rec.itemID,
			Qty:    qty,
		})
	}
	return out, nil
}

// Record adds a purchased quantity to the buyer's summary for one tag/item
// pair.
func (r *PurchaseSummaryRepository) Record(ctx context.Context, buyerID string, t tag.Tag, itemID string, qty uom.Quantity) error {
	_, err := r.pool.Exec(ctx, recordPurchaseSQL, buyerID, t.String(), itemID, int64(qty))
	if err != nil {
		return fmt.Errorf("recording purchase for buyer %q: %w", buyerID, err)
	}
	return nil
}
