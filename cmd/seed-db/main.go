// Command seed-db applies the schema and loads catalog entries, promotion
// definitions, and voucher definitions from JSON seed files.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gudangin/pricing-engine/internal/domain/catalog"
	"github.com/gudangin/pricing-engine/internal/domain/promotion"
	"github.com/gudangin/pricing-engine/internal/domain/tag"
	"github.com/gudangin/pricing-engine/internal/domain/uom"
	"github.com/gudangin/pricing-engine/internal/domain/voucher"
	"github.com/gudangin/pricing-engine/internal/repository"
)

type itemJSON struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	BaseContains int64           `json:"base_contains"`
	PackContains *int64          `json:"pack_contains"`
	SalesFactor  int64           `json:"sales_factor"`
	PackSellable bool            `json:"pack_sellable"`
	Tags         []string        `json:"tags"`
}

type promotionJSON struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Condition json.RawMessage `json:"condition"`
	ItemIDs   []string        `json:"item_ids"`
}

type voucherJSON struct {
	ID         uuid.UUID       `json:"id"`
	ExternalID string          `json:"external_id"`
	Code       string          `json:"code"`
	Scope      string          `json:"scope"`
	Benefit    json.RawMessage `json:"benefit"`
	ItemIDs    []string        `json:"item_ids"`
	Tag        string          `json:"tag"`
	Combinable bool            `json:"combinable"`
}

func main() {
	var (
		databaseURL    string
		itemsFile      string
		promotionsFile string
		vouchersFile   string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&itemsFile, "items-file", "db/seed/items.json", "path to catalog items JSON file")
	flag.StringVar(&promotionsFile, "promotions-file", "db/seed/promotions.json", "path to promotions JSON file")
	flag.StringVar(&vouchersFile, "vouchers-file", "", "optional path to vouchers JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, itemsFile, promotionsFile, vouchersFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, itemsFile, promotionsFile, vouchersFile string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedItems(ctx, repository.NewCatalogRepository(pool), itemsFile); err != nil {
		return errors.Wrap(err, "seed items")
	}

	if err := seedPromotions(ctx, repository.NewPromotionRepository(pool), promotionsFile); err != nil {
		return errors.Wrap(err, "seed promotions")
	}

	if vouchersFile != "" {
		if err := seedVouchers(ctx, repository.NewVoucherRepository(pool), vouchersFile); err != nil {
			return errors.Wrap(err, "seed vouchers")
		}
	}

	return nil
}

func seedItems(ctx context.Context, repo *repository.CatalogRepository, path string) error {
	slog.Info("reading items file", slog.String("path", path))

	var items []itemJSON
	if err := readJSONFile(path, &items); err != nil {
		return err
	}

	slog.Info("upserting items", slog.Int("count", len(items)))

	for _, it := range items {
		entry, err := toEntry(it)
		if err != nil {
			return errors.Wrapf(err, "item %s", it.ID)
		}
		if err := repo.Upsert(ctx, entry); err != nil {
			return errors.Wrapf(err, "upsert item %s", it.ID)
		}

		slog.Info("upserted item", slog.String("id", it.ID), slog.String("name", it.Name))
	}

	return nil
}

func toEntry(it itemJSON) (catalog.Entry, error) {
	base, err := uom.NewPackQty(it.BaseContains)
	if err != nil {
		return catalog.Entry{}, err
	}
	factor, err := uom.NewSalesFactor(it.SalesFactor)
	if err != nil {
		return catalog.Entry{}, err
	}
	entry := catalog.Entry{
		ItemID:       it.ID,
		Name:         it.Name,
		Price:        it.Price,
		BaseContains: base,
		Factor:       factor,
		PackSellable: it.PackSellable,
	}
	if it.PackContains != nil {
		pack, err := uom.NewPackQty(*it.PackContains)
		if err != nil {
			return catalog.Entry{}, err
		}
		entry.PackContains = &pack
	}
	for _, raw := range it.Tags {
		t, err := tag.Parse(raw)
		if err != nil {
			return catalog.Entry{}, err
		}
		entry.Tags = append(entry.Tags, t)
	}
	return entry, nil
}

func seedPromotions(ctx context.Context, repo *repository.PromotionRepository, path string) error {
	slog.Info("reading promotions file", slog.String("path", path))

	var promos []promotionJSON
	if err := readJSONFile(path, &promos); err != nil {
		return err
	}

	slog.Info("upserting promotions", slog.Int("count", len(promos)))

	for _, p := range promos {
		cond, err := repository.DecodeCondition(p.Condition)
		if err != nil {
			return errors.Wrapf(err, "promotion %s", p.Name)
		}
		id := p.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		if err := repo.Upsert(ctx, promotion.Promotion{
			ID:        id,
			Name:      p.Name,
			Condition: cond,
			ItemIDs:   p.ItemIDs,
		}); err != nil {
			return errors.Wrapf(err, "upsert promotion %s", p.Name)
		}

		slog.Info("upserted promotion", slog.String("name", p.Name))
	}

	return nil
}

func seedVouchers(ctx context.Context, repo *repository.VoucherRepository, path string) error {
	slog.Info("reading vouchers file", slog.String("path", path))

	var defs []voucherJSON
	if err := readJSONFile(path, &defs); err != nil {
		return err
	}

	slog.Info("upserting vouchers", slog.Int("count", len(defs)))

	for _, d := range defs {
		v := voucher.Voucher{
			ID:         d.ID,
			ExternalID: d.ExternalID,
			Code:       d.Code,
			Scope:      voucher.Scope(d.Scope),
			ItemIDs:    d.ItemIDs,
			Combinable: d.Combinable,
		}
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		if len(d.Benefit) > 0 {
			b, err := repository.DecodeBenefit(d.Benefit)
			if err != nil {
				return errors.Wrapf(err, "voucher %s", d.Code)
			}
			if b != nil {
				v.Benefit = *b
			}
		}
		if d.Tag != "" {
			t, err := tag.Parse(d.Tag)
			if err != nil {
				return errors.Wrapf(err, "voucher %s", d.Code)
			}
			v.Tag = &t
		}
		if err := repo.Upsert(ctx, v); err != nil {
			return errors.Wrapf(err, "upsert voucher %s", d.Code)
		}

		slog.Info("upserted voucher", slog.String("code", d.Code))
	}

	return nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}
	return nil
}
