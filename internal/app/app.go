// Package app wires the pricing simulator: configuration, storage, and the
// evaluation of one cart scenario against the stored promotions and vouchers.
package app

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/app"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gudangin/pricing-engine/internal/domain/cart"
	"github.com/gudangin/pricing-engine/internal/domain/uom"
	"github.com/gudangin/pricing-engine/internal/domain/voucher"
	"github.com/gudangin/pricing-engine/internal/pricing"
	"github.com/gudangin/pricing-engine/internal/repository"
)

// Scenario is one simulated cart: the buyer, the lines to put in, and the
// voucher codes to redeem.
type Scenario struct {
	BuyerID      string         `json:"buyer_id"`
	Address      string         `json:"address"`
	Lines        []ScenarioLine `json:"lines"`
	VoucherCodes []string       `json:"voucher_codes"`
}

// ScenarioLine is one put-item command of a scenario.
type ScenarioLine struct {
	ItemID  string `json:"item_id"`
	BaseQty int64  `json:"base_qty"`
	PackQty int64  `json:"pack_qty"`
}

// Run loads the scenario, builds the cart against the stored catalog, prices
// it, and writes the summary to stdout. It is the single wiring point for the
// simulator.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("scenario", cfg.ScenarioFile))

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	catalogRepo := repository.NewCatalogRepository(pool)
	promotionRepo := repository.NewPromotionRepository(pool)
	voucherRepo := repository.NewVoucherRepository(pool)
	summaryRepo := repository.NewPurchaseSummaryRepository(pool)

	svc, err := pricing.NewService(catalogRepo, lg, m.TracerProvider(), m.MeterProvider())
	if err != nil {
		return errors.Wrap(err, "create pricing service")
	}

	scenario, err := loadScenario(cfg.ScenarioFile)
	if err != nil {
		return errors.Wrap(err, "load scenario")
	}

	c, err := buildCart(ctx, catalogRepo, scenario, cfg.TagGroups)
	if err != nil {
		return errors.Wrap(err, "build cart")
	}
	for _, ev := range c.PullEvents() {
		lg.Debug("cart event", zap.String("event", ev.EventName()))
	}

	now := time.Now()
	promotions, err := promotionRepo.ListActive(ctx, now)
	if err != nil {
		return errors.Wrap(err, "list promotions")
	}

	vouchers, err := resolveVouchers(ctx, lg, voucherRepo, scenario.VoucherCodes)
	if err != nil {
		return err
	}

	history, err := summaryRepo.GetByBuyer(ctx, scenario.BuyerID)
	if err != nil {
		return errors.Wrap(err, "load purchase history")
	}

	summary, err := svc.Evaluate(ctx, pricing.EvalInput{
		Cart:                     c,
		Promotions:               promotions,
		Vouchers:                 vouchers,
		History:                  history,
		GeneralVoucherCombinable: cfg.GeneralVoucherCombinable,
		Now:                      now,
	})
	if err != nil {
		return errors.Wrap(err, "evaluate")
	}

	var e jx.Encoder
	e.SetIdent(2)
	summary.Encode(&e)
	if _, err := os.Stdout.Write(append(e.Bytes(), '\n')); err != nil {
		return errors.Wrap(err, "write summary")
	}
	return nil
}

func loadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if len(s.Lines) == 0 {
		return nil, errors.New("scenario has no lines")
	}
	return &s, nil
}

func buildCart(
	ctx context.Context,
	catalogRepo *repository.CatalogRepository,
	s *Scenario,
	tagGroups []string,
) (*cart.Cart, error) {
	c := cart.New(uuid.New(), s.BuyerID, tagGroups)
	c.UpdateAddress(s.Address)
	for _, line := range s.Lines {
		entry, err := catalogRepo.GetByID(ctx, line.ItemID)
		if err != nil {
			return nil, errors.Wrapf(err, "item %s", line.ItemID)
		}
		if err := c.PutItem(cart.PutItemInput{
			Entry:    *entry,
			BaseQty:  uom.Quantity(line.BaseQty),
			PackQty:  uom.Quantity(line.PackQty),
			Additive: true,
		}); err != nil {
			return nil, errors.Wrapf(err, "put item %s", line.ItemID)
		}
	}
	return c, nil
}

func resolveVouchers(
	ctx context.Context,
	lg *zap.Logger,
	repo *repository.VoucherRepository,
	codes []string,
) ([]*voucher.Voucher, error) {
	vouchers := make([]*voucher.Voucher, 0, len(codes))
	for _, code := range codes {
		v, err := repo.FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, voucher.ErrNotFound) {
				lg.Warn("unknown voucher code", zap.String("code", code))
				continue
			}
			return nil, errors.Wrapf(err, "voucher %s", code)
		}
		vouchers = append(vouchers, v)
	}
	return vouchers, nil
}
