package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gudangin/pricing-engine/internal/domain/tag"
	"github.com/gudangin/pricing-engine/internal/domain/voucher"
)

const (
	getVoucherByCodeSQL = `SELECT id, external_id, code, scope, benefit, item_ids, tag, combinable
		FROM vouchers WHERE UPPER(code) = UPPER($1) AND active = TRUE`

	upsertVoucherCodeSQL = `INSERT INTO vouchers (code) VALUES ($1)
		ON CONFLICT (code) DO NOTHING`

	upsertFullVoucherSQL = `INSERT INTO vouchers (id, external_id, code, scope, benefit, item_ids, tag, combinable)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (code) DO UPDATE SET
			external_id = EXCLUDED.external_id, scope = EXCLUDED.scope,
			benefit = EXCLUDED.benefit, item_ids = EXCLUDED.item_ids,
			tag = EXCLUDED.tag, combinable = EXCLUDED.combinable`
)

var _ voucher.Repository = (*VoucherRepository)(nil)

// VoucherRepository implements voucher.Repository backed by PostgreSQL.
type VoucherRepository struct {
	pool *pgxpool.Pool
}

// NewVoucherRepository returns a VoucherRepository that uses the given pool.
func NewVoucherRepository(pool *pgxpool.Pool) *VoucherRepository {
	return &VoucherRepository{pool: pool}
}

// FindByCode looks up an active voucher by its code (case-insensitive).
// Returns voucher.ErrNotFound when no matching active voucher exists.
func (r *VoucherRepository) FindByCode(ctx context.Context, code string) (*voucher.Voucher, error) {
	rows, err := r.pool.Query(ctx, getVoucherByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding voucher by code %q: %w", code, err)
	}

	v, err := pgx.CollectExactlyOneRow(rows, scanVoucher)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, voucher.ErrNotFound
		}
		return nil, fmt.Errorf("finding voucher by code %q: %w", code, err)
	}
	return &v, nil
}

// UpsertCode registers a bare voucher code, leaving an existing voucher with
// the same code untouched.
func (r *VoucherRepository) UpsertCode(ctx context.Context, code string) error {
	_, err := r.pool.Exec(ctx, upsertVoucherCodeSQL, code)
	if err != nil {
		return fmt.Errorf("upserting voucher code %q: %w", code, err)
	}
	return nil
}

func scanVoucher(row pgx.CollectableRow) (voucher.Voucher, error) {
	var (
		v          voucher.Voucher
		scope      string
		rawBenefit []byte
		rawTag     *string
	)
	err := row.Scan(
		&v.ID, &v.ExternalID, &v.Code, &scope,
		&rawBenefit, &v.ItemIDs, &rawTag, &v.Combinable,
	)
	if err != nil {
		return v, err
	}
	v.Scope = voucher.Scope(scope)

	b, err := DecodeBenefit(rawBenefit)
	if err != nil {
		return v, fmt.Errorf("voucher %q: %w", v.Code, err)
	}
	if b != nil {
		v.Benefit = *b
	}
	if rawTag != nil {
		t, err := tag.Parse(*rawTag)
		if err != nil {
			return v, fmt.Errorf("voucher %q: %w", v.Code, err)
		}
		v.Tag = &t
	}
	return v, nil
}

// Upsert inserts or replaces one fully-specified voucher.
func (r *VoucherRepository) Upsert(ctx context.Context, v voucher.Voucher) error {
	raw, err := json.Marshal(benefitToDTO(&v.Benefit))
	if err != nil {
		return fmt.Errorf("encoding benefit for voucher %q: %w", v.Code, err)
	}
	var rawTag *string
	if v.Tag != nil {
		s := v.Tag.String()
		rawTag = &s
	}
	_, err = r.pool.Exec(ctx, upsertFullVoucherSQL,
		v.ID, v.ExternalID, v.Code, string(v.Scope),
		raw, v.ItemIDs, rawTag, v.Combinable,
	)
	if err != nil {
		return fmt.Errorf("upserting voucher %q: %w", v.Code, err)
	}
	return nil
}
