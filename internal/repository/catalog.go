package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gudangin/pricing-engine/internal/domain/catalog"
	"github.com/gudangin/pricing-engine/internal/domain/tag"
	"github.com/gudangin/pricing-engine/internal/domain/uom"
)

const (
	listItemsSQL = `SELECT id, name, price, base_contains, pack_contains, sales_factor, pack_sellable, tags
		FROM items ORDER BY id`

	getItemByIDSQL = `SELECT id, name, price, base_contains, pack_contains, sales_factor, pack_sellable, tags
		FROM items WHERE id = $1`

	getItemsByIDsSQL = `SELECT id, name, price, base_contains, pack_contains, sales_factor, pack_sellable, tags
		FROM items WHERE id = ANY($1)`

	upsertItemSQL = `INSERT INTO items (id, name, price, base_contains, pack_contains, sales_factor, pack_sellable, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, price = EXCLUDED.price,
			base_contains = EXCLUDED.base_contains, pack_contains = EXCLUDED.pack_contains,
			sales_factor = EXCLUDED.sales_factor, pack_sellable = EXCLUDED.pack_sellable,
			tags = EXCLUDED.tags`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// List returns all catalog entries ordered by item id.
func (r *CatalogRepository) List(ctx context.Context) ([]catalog.Entry, error) {
	rows, err := r.pool.Query(ctx, listItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return pgx.CollectRows(rows, scanEntry)
}

// GetByID returns a single catalog entry by item id.
func (r *CatalogRepository) GetByID(ctx context.Context, id string) (*catalog.Entry, error) {
	rows, err := r.pool.Query(ctx, getItemByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting item %q: %w", id, err)
	}

	e, err := pgx.CollectExactlyOneRow(rows, scanEntry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting item %q: %w", id, err)
	}
	return &e, nil
}

// GetByIDs returns catalog entries matching any of the given item ids.
func (r *CatalogRepository) GetByIDs(ctx context.Context, ids []string) ([]catalog.Entry, error) {
	rows, err := r.pool.Query(ctx, getItemsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting items by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanEntry)
}

// Upsert inserts or replaces one catalog entry.
func (r *CatalogRepository) Upsert(ctx context.Context, e catalog.Entry) error {
	tags := make([]string, len(e.Tags))
	for i, t := range e.Tags {
		tags[i] = t.String()
	}
	var packContains *int64
	if e.PackContains != nil {
		v := int64(*e.PackContains)
		packContains = &v
	}
	_, err := r.pool.Exec(ctx, upsertItemSQL,
		e.ItemID, e.Name, e.Price,
		int64(e.BaseContains), packContains, int64(e.Factor),
		e.PackSellable, tags,
	)
	if err != nil {
		return fmt.Errorf("upserting item %q: %w", e.ItemID, err)
	}
	return nil
}

func scanEntry(row pgx.CollectableRow) (catalog.Entry, error) {
	var (
		e            catalog.Entry
		price        decimal.Decimal
		baseContains int64
		packContains *int64
		salesFactor  int64
		rawTags      []string
	)
	err := row.Scan(
		&e.ItemID, &e.Name, &price, &baseContains, &packContains,
		&salesFactor, &e.PackSellable, &rawTags,
	)
	if err != nil {
		return e, err
	}
	e.Price = price
	e.BaseContains = uom.PackQty(baseContains)
	if packContains != nil {
		v := uom.PackQty(*packContains)
		e.PackContains = &v
	}
	e.Factor = uom.SalesFactor(salesFactor)
	for _, raw := range rawTags {
		t, err := tag.Parse(raw)
		if err != nil {
			return e, fmt.Errorf("item %q: %w", e.ItemID, err)
		}
		e.Tags = append(e.Tags, t)
	}
	return e, nil
}
