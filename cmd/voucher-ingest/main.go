// Command voucher-ingest loads redeemable voucher codes from gzipped code
// dumps into the database. A code is redeemable when it appears in at least
// minFiles of the dumps; membership is pre-screened with a per-dump bloom
// filter so no dump is ever held in memory.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/gudangin/pricing-engine/internal/repository"
)

const (
	dumpSizeHint  = 100_000_000 // codes per dump the filters are sized for
	bloomFPR      = 0.001
	progressEvery = 5_000_000
	codeLenMin    = 8
	codeLenMax    = 10
)

func main() {
	var (
		dataDir     string
		databaseURL string
		minFiles    int
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing voucherbase*.gz dumps")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&minFiles, "min-files", 2, "dumps a code must appear in to be redeemable")
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

	if err := run(ctx, dataDir, databaseURL, minFiles); err != nil {
		slog.Error("ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("ingest done")
}

func run(ctx context.Context, dataDir, databaseURL string, minFiles int) error {
	dumps, err := filepath.Glob(filepath.Join(dataDir, "voucherbase*.gz"))
	if err != nil {
		return errors.Wrap(err, "list dumps")
	}
	if len(dumps) < minFiles {
		return errors.Errorf("found %d dumps in %s, need at least %d", len(dumps), dataDir, minFiles)
	}
	slog.Info("screening dumps", slog.Int("dumps", len(dumps)), slog.Int("min_files", minFiles))

	filters, err := screenDumps(ctx, dumps)
	if err != nil {
		return errors.Wrap(err, "screen dumps")
	}

	codes, err := crossReference(ctx, dumps, filters, minFiles)
	if err != nil {
		return errors.Wrap(err, "cross-reference dumps")
	}
	slog.Info("redeemable codes resolved", slog.Int("count", len(codes)))
	if len(codes) == 0 {
		return nil
	}

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	return storeCodes(ctx, repository.NewVoucherRepository(pool), codes)
}

// screenDumps builds one bloom filter per dump so the cross-reference pass can
// probe other dumps without re-reading them.
func screenDumps(ctx context.Context, dumps []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(dumps))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range dumps {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(dumpSizeHint, bloomFPR)
			var seen uint64
			err := eachCode(ctx, path, func(code string) {
				filter.AddString(code)
				seen++
				if seen%progressEvery == 0 {
					slog.Info("screening", slog.String("dump", filepath.Base(path)), slog.Uint64("codes", seen))
				}
			})
			if err != nil {
				return errors.Wrapf(err, "screen %s", path)
			}
			slog.Info("screened", slog.String("dump", filepath.Base(path)), slog.Uint64("codes", seen))
			filters[i] = filter
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

// crossReference re-streams every dump and keeps the codes whose filter hits
// span at least minFiles dumps. Each hit records the dump it came from as a
// bit so a code double-listed within one dump still counts once.
func crossReference(ctx context.Context, dumps []string, filters []*bloom.BloomFilter, minFiles int) ([]string, error) {
	perDump := make([]map[string]uint, len(dumps))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range dumps {
		g.Go(func() error {
			hits := make(map[string]uint)
			bit := uint(1) << uint(i)
			var seen uint64
			err := eachCode(ctx, path, func(code string) {
				seen++
				if seen%progressEvery == 0 {
					slog.Info("cross-referencing", slog.String("dump", filepath.Base(path)), slog.Uint64("codes", seen))
				}
				for j, f := range filters {
					if j == i {
						continue
					}
					if f.TestString(code) {
						hits[code] |= bit
						break
					}
				}
			})
			if err != nil {
				return errors.Wrapf(err, "cross-reference %s", path)
			}
			slog.Info("cross-referenced",
				slog.String("dump", filepath.Base(path)),
				slog.Uint64("codes", seen),
				slog.Int("hits", len(hits)),
			)
			perDump[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]uint)
	for _, hits := range perDump {
		for code, mask := range hits {
			merged[code] |= mask
		}
	}
	var codes []string
	for code, mask := range merged {
		if bits.OnesCount(mask) >= minFiles {
			codes = append(codes, code)
		}
	}
	return codes, nil
}

// eachCode streams a gzipped dump line by line, skipping lines outside the
// voucher code length bounds.
func eachCode(ctx context.Context, path string, fn func(code string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		code := scanner.Text()
		if len(code) < codeLenMin || len(code) > codeLenMax {
			continue
		}
		fn(code)
	}
	return errors.Wrapf(scanner.Err(), "scan %s", path)
}

// storeCodes upserts the redeemable codes. Codes without a configured benefit
// stay bare until seeded.
func storeCodes(ctx context.Context, repo *repository.VoucherRepository, codes []string) error {
	slog.Info("storing codes", slog.Int("count", len(codes)))
	for i, code := range codes {
		if err := repo.UpsertCode(ctx, code); err != nil {
			return errors.Wrapf(err, "upsert voucher %s", code)
		}
		if (i+1)%1000 == 0 {
			slog.Info("stored", slog.Int("written", i+1), slog.Int("total", len(codes)))
		}
	}
	return nil
}
