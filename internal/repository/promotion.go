package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gudangin/pricing-engine/internal/domain/promotion"
)

const (
	listActivePromotionsSQL = `SELECT id, name, condition, item_ids, valid_from, valid_to
		FROM promotions WHERE active = TRUE
			AND (valid_from IS NULL OR valid_from <= $1)
			AND (valid_to IS NULL OR valid_to >= $1)
		ORDER BY name`

	getPromotionByIDSQL = `SELECT id, name, condition, item_ids, valid_from, valid_to
		FROM promotions WHERE id = $1`

	upsertPromotionSQL = `INSERT INTO promotions (id, name, condition, item_ids, valid_from, valid_to, active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, condition = EXCLUDED.condition,
			item_ids = EXCLUDED.item_ids,
			valid_from = EXCLUDED.valid_from, valid_to = EXCLUDED.valid_to,
			active = TRUE`
)

var _ promotion.Repository = (*PromotionRepository)(nil)

// PromotionRepository implements promotion.Repository backed by PostgreSQL.
// Conditions and benefits live in a JSONB column.
type PromotionRepository struct {
	pool *pgxpool.Pool
}

// NewPromotionRepository returns a PromotionRepository that uses the given pool.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// ListActive returns every promotion active at the given instant.
func (r *PromotionRepository) ListActive(ctx context.Context, now time.Time) ([]promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, listActivePromotionsSQL, now)
	if err != nil {
		return nil, fmt.Errorf("listing promotions: %w", err)
	}
	return pgx.CollectRows(rows, scanPromotion)
}

// GetByID returns a single promotion by its identifier.
func (r *PromotionRepository) GetByID(ctx context.Context, id uuid.UUID) (*promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, getPromotionByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting promotion %s: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPromotion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promotion.ErrNotFound
		}
		return nil, fmt.Errorf("getting promotion %s: %w", id, err)
	}
	return &p, nil
}

// Upsert inserts or replaces one promotion definition.
func (r *PromotionRepository) Upsert(ctx context.Context, p promotion.Promotion) error {
	raw, err := json.Marshal(conditionToDTO(p.Condition))
	if err != nil {
		return fmt.Errorf("encoding condition for promotion %q: %w", p.Name, err)
	}
	_, err = r.pool.Exec(ctx, upsertPromotionSQL,
		p.ID, p.Name, raw, p.ItemIDs, p.ValidFrom, p.ValidTo,
	)
	if err != nil {
		return fmt.Errorf("upserting promotion %q: %w", p.Name, err)
	}
	return nil
}

func scanPromotion(row pgx.CollectableRow) (promotion.Promotion, error) {
	var (
		p   promotion.Promotion
		raw []byte
	)
	err := row.Scan(&p.ID, &p.Name, &raw, &p.ItemIDs, &p.ValidFrom, &p.ValidTo)
	if err != nil {
		return p, err
	}

	cond, err := DecodeCondition(raw)
	if err != nil {
		return p, fmt.Errorf("promotion %q: %w", p.Name, err)
	}
	p.Condition = cond
	return p, nil
}
