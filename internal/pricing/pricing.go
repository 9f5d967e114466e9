// Package pricing assembles the decision core for command handlers: it
// evaluates candidate promotions and vouchers against a cart and produces the
// per-line and per-cart totals read model.
package pricing

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gudangin/pricing-engine/internal/domain/cart"
	"github.com/gudangin/pricing-engine/internal/domain/catalog"
	"github.com/gudangin/pricing-engine/internal/domain/criterion"
	"github.com/gudangin/pricing-engine/internal/domain/promotion"
	"github.com/gudangin/pricing-engine/internal/domain/tag"
	"github.com/gudangin/pricing-engine/internal/domain/uom"
	"github.com/gudangin/pricing-engine/internal/domain/voucher"
)

// Line is the priced read model of one cart line.
type Line struct {
	ItemID    string
	Qty       uom.Quantity
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Coin      decimal.Decimal
	NetPrice  decimal.Decimal
}

// FreeGrant is a free-product grant produced by a matched promotion.
type FreeGrant struct {
	ProductID string
	Qty       uom.Quantity
}

// Summary is the priced read model of the whole cart.
type Summary struct {
	Lines           []Line
	FreeGrants      []FreeGrant
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	Coin            decimal.Decimal
	VoucherDiscount decimal.Decimal
	Total           decimal.Decimal
}

// EvalInput carries one pricing evaluation: the cart, the candidate
// promotions, and the vouchers the buyer wants to redeem.
type EvalInput struct {
	Cart       *cart.Cart
	Promotions []promotion.Promotion
	Vouchers   []*voucher.Voucher

	// History carries the buyer's accumulated per-tag purchases; tag-scoped
	// criteria see it merged with the live cart's tag summary.
	History []criterion.TagPurchase

	GeneralVoucherCombinable bool
	Now                      time.Time
}

// Service evaluates promotions and vouchers over carts. Evaluation is
// read-only over its inputs and safe to run in parallel across independent
// carts.
type Service struct {
	catalog catalog.Repository
	lg      *zap.Logger
	tracer  trace.Tracer
	evals   metric.Int64Counter
}

// NewService creates a pricing Service.
func NewService(cat catalog.Repository, lg *zap.Logger, tp trace.TracerProvider, mp metric.MeterProvider) (*Service, error) {
	meter := mp.Meter("pricing")
	evals, err := meter.Int64Counter("pricing.promotions_evaluated")
	if err != nil {
		return nil, errors.Wrap(err, "create counter")
	}
	return &Service{
		catalog: cat,
		lg:      lg,
		tracer:  tp.Tracer("pricing"),
		evals:   evals,
	}, nil
}

// Evaluate prices the cart: resolves which promotions apply, stacks their
// benefits per eligible line, applies combinable vouchers over the residual,
// and returns the totals read model.
func (s *Service) Evaluate(ctx context.Context, in EvalInput) (*Summary, error) {
	ctx, span := s.tracer.Start(ctx, "pricing.Evaluate")
	defer span.End()

	items := in.Cart.Items.Current()
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ItemID
	}
	fetched, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get catalog entries")
	}
	entries := make(map[string]catalog.Entry, len(fetched))
	for _, e := range fetched {
		entries[e.ItemID] = e
	}
	for _, it := range items {
		if _, ok := entries[it.ItemID]; !ok {
			return nil, errors.Wrapf(catalog.ErrNotFound, "item %s", it.ItemID)
		}
	}

	benefits, err := s.resolvePromotions(ctx, in, entries)
	if err != nil {
		return nil, err
	}
	s.evals.Add(ctx, int64(len(in.Promotions)))

	summary := s.applyBenefits(in, entries, benefits)
	s.applyVouchers(in, summary)

	summary.Total = promotion.ResolveOfferedPrice(
		summary.Subtotal,
		summary.Discount.Add(summary.VoucherDiscount),
	)
	return summary, nil
}

// resolvePromotions evaluates every candidate concurrently. Candidates
// outside their validity window resolve to no benefit.
func (s *Service) resolvePromotions(
	ctx context.Context,
	in EvalInput,
	entries map[string]catalog.Entry,
) ([]*promotion.Benefit, error) {
	benefits := make([]*promotion.Benefit, len(in.Promotions))

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range in.Promotions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := p.Validate(in.Now); err != nil {
				s.lg.Debug("promotion outside validity window",
					zap.String("promotion", p.Name))
				return nil
			}
			cmp := buildComparator(in.Cart, entries, in.History, scopedConversion(p, entries))
			b, err := p.Condition.Resolve(cmp)
			if err != nil {
				return errors.Wrapf(err, "resolve promotion %s", p.Name)
			}
			if b != nil {
				s.lg.Debug("promotion matched", zap.String("promotion", p.Name))
			}
			benefits[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return benefits, nil
}

// applyBenefits turns resolved benefits into per-line discount/coin totals.
// Discount and coin chains run independently; a line's accumulated discount
// never exceeds its subtotal.
func (s *Service) applyBenefits(
	in EvalInput,
	entries map[string]catalog.Entry,
	benefits []*promotion.Benefit,
) *Summary {
	summary := &Summary{
		Subtotal:        decimal.Zero,
		Discount:        decimal.Zero,
		Coin:            decimal.Zero,
		VoucherDiscount: decimal.Zero,
	}

	lines := make([]Line, 0, in.Cart.Items.Len())
	index := make(map[string]int, in.Cart.Items.Len())
	for _, it := range in.Cart.Items.Current() {
		e := entries[it.ItemID]
		subtotal := e.Price.Mul(decimal.NewFromInt(int64(it.Qty)))
		index[it.ItemID] = len(lines)
		lines = append(lines, Line{
			ItemID:    it.ItemID,
			Qty:       it.Qty,
			UnitPrice: e.Price,
			Subtotal:  subtotal,
			Discount:  decimal.Zero,
			Coin:      decimal.Zero,
		})
		summary.Subtotal = summary.Subtotal.Add(subtotal)
	}

	for i, b := range benefits {
		if b == nil {
			continue
		}
		p := in.Promotions[i]
		var eligibleQty uom.Quantity
		for _, it := range in.Cart.Items.Current() {
			if !p.AppliesTo(it.ItemID) {
				continue
			}
			e := entries[it.ItemID]
			conv := e.Conversion()
			line := &lines[index[it.ItemID]]

			qty := it.Qty
			if b.MaxQty > 0 {
				if maxBase := uom.ToBase(b.MaxQty, b.MaxUomType, conv); qty > maxBase {
					qty = maxBase
				}
			}
			eligibleQty = eligibleQty.Add(it.Qty)
			qtyDec := decimal.NewFromInt(int64(qty))

			perUnit := promotion.StackLines(b.Discount, e.Price, &conv)
			line.Discount = decimal.Min(line.Discount.Add(perUnit.Mul(qtyDec)), line.Subtotal)

			perUnitCoin := promotion.StackLines(b.Coin, e.Price, &conv)
			line.Coin = line.Coin.Add(perUnitCoin.Mul(qtyDec))
		}
		if b.Product != nil {
			if free := b.Product.Resolve(eligibleQty); free > 0 {
				summary.FreeGrants = append(summary.FreeGrants, FreeGrant{
					ProductID: b.Product.ProductID,
					Qty:       free,
				})
			}
		}
	}

	for i := range lines {
		lines[i].NetPrice = promotion.ResolveOfferedPrice(lines[i].Subtotal, lines[i].Discount)
		summary.Discount = summary.Discount.Add(lines[i].Discount)
		summary.Coin = summary.Coin.Add(lines[i].Coin)
	}
	summary.Lines = lines
	return summary
}

// applyVouchers resolves combinability and applies every voucher that may
// still be combined with the ones already taken, in input order.
func (s *Service) applyVouchers(in EvalInput, summary *Summary) {
	if len(in.Vouchers) == 0 {
		return
	}
	voucher.ResolveCombinability(in.Vouchers, in.GeneralVoucherCombinable)

	residual := promotion.ResolveOfferedPrice(summary.Subtotal, summary.Discount)
	var applied []*voucher.Voucher
	for _, v := range in.Vouchers {
		if !combinableWithAll(v, applied) {
			s.lg.Debug("voucher skipped, not combinable",
				zap.String("voucher", v.Code))
			continue
		}
		eligible := s.voucherEligible(in, summary, v, residual)
		if eligible.IsZero() {
			continue
		}
		d := promotion.StackLines(v.Benefit.Discount, eligible, nil)
		summary.VoucherDiscount = summary.VoucherDiscount.Add(d)
		residual = promotion.ResolveOfferedPrice(residual, d)
		applied = append(applied, v)
	}
}

// voucherEligible returns the amount the voucher may discount: the whole
// residual for general vouchers, the net of the scoped lines otherwise.
func (s *Service) voucherEligible(
	in EvalInput,
	summary *Summary,
	v *voucher.Voucher,
	residual decimal.Decimal,
) decimal.Decimal {
	switch v.Scope {
	case voucher.General:
		return residual
	case voucher.Item:
		eligible := decimal.Zero
		for _, line := range summary.Lines {
			for _, id := range v.ItemIDs {
				if id == line.ItemID {
					eligible = eligible.Add(line.NetPrice)
					break
				}
			}
		}
		return decimal.Min(eligible, residual)
	case voucher.Group:
		if v.Tag == nil {
			return decimal.Zero
		}
		ct := in.Cart.Tags.Get(*v.Tag)
		if ct == nil {
			return decimal.Zero
		}
		eligible := decimal.Zero
		for _, line := range summary.Lines {
			for _, id := range ct.Items {
				if id == line.ItemID {
					eligible = eligible.Add(line.NetPrice)
					break
				}
			}
		}
		return decimal.Min(eligible, residual)
	default:
		return decimal.Zero
	}
}

func combinableWithAll(v *voucher.Voucher, applied []*voucher.Voucher) bool {
	for _, a := range applied {
		if !v.CombinableWith(a) || !a.CombinableWith(v) {
			return false
		}
	}
	return true
}

// buildComparator derives the criterion comparator from the cart: total
// base-unit quantity and subtotal for the plain variants, the tag summary
// merged with the buyer's purchase history plus per-item purchases for the
// tag-scoped ones.
func buildComparator(
	c *cart.Cart,
	entries map[string]catalog.Entry,
	history []criterion.TagPurchase,
	conv *uom.Conversion,
) criterion.Comparator {
	itemPurchases := make(map[string]criterion.ItemPurchase, c.Items.Len())
	var totalQty uom.Quantity
	subtotal := decimal.Zero
	for _, it := range c.Items.Current() {
		itemPurchases[it.ItemID] = criterion.ItemPurchase{ItemID: it.ItemID, Qty: it.Qty}
		totalQty = totalQty.Add(it.Qty)
		subtotal = subtotal.Add(entries[it.ItemID].Price.Mul(decimal.NewFromInt(int64(it.Qty))))
	}

	tags := c.Tags.Current()
	tagPurchases := make([]criterion.TagPurchase, 0, len(tags))
	index := make(map[tag.Tag]int, len(tags))
	for _, ct := range tags {
		tp := criterion.TagPurchase{Tag: ct.Tag, Qty: ct.Qty}
		for _, id := range ct.Items {
			tp.Items = append(tp.Items, itemPurchases[id])
		}
		index[ct.Tag] = len(tagPurchases)
		tagPurchases = append(tagPurchases, tp)
	}
	// History merges per item id: a re-bought item stays one entry in
	// TagPurchase.Items with summed quantity, and ItemPurchases carries the
	// same totals, keeping distinct-variant counts and residuals consistent.
	for _, h := range history {
		i, ok := index[h.Tag]
		if !ok {
			i = len(tagPurchases)
			index[h.Tag] = i
			tagPurchases = append(tagPurchases, criterion.TagPurchase{Tag: h.Tag})
		}
		tp := &tagPurchases[i]
		tp.Qty = tp.Qty.Add(h.Qty)
		for _, hp := range h.Items {
			merged := false
			for j := range tp.Items {
				if tp.Items[j].ItemID == hp.ItemID {
					tp.Items[j].Qty = tp.Items[j].Qty.Add(hp.Qty)
					merged = true
					break
				}
			}
			if !merged {
				tp.Items = append(tp.Items, hp)
			}
			ip := itemPurchases[hp.ItemID]
			ip.ItemID = hp.ItemID
			ip.Qty = ip.Qty.Add(hp.Qty)
			itemPurchases[hp.ItemID] = ip
		}
	}

	return criterion.Comparator{
		Amount:        subtotal,
		Qty:           totalQty,
		TagPurchases:  tagPurchases,
		ItemPurchases: itemPurchases,
		Conversion:    conv,
	}
}

// scopedConversion picks the UOM conversion tag-scoped criteria convert
// with: the first scoped item's conversion for item-scoped promotions, none
// for cart-wide ones.
func scopedConversion(p promotion.Promotion, entries map[string]catalog.Entry) *uom.Conversion {
	for _, id := range p.ItemIDs {
		if e, ok := entries[id]; ok {
			conv := e.Conversion()
			return &conv
		}
	}
	return nil
}
