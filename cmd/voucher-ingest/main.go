// Command voucher-ingest imports marketing-campaign voucher codes from
// gzipped line-delimited files into the vouchers table. Codes are
// deduplicated across files before insertion; the discount rule applied to
// every imported code comes from flags.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/floramart/internal/domain/voucher"
	"github.com/xenking/floramart/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 1_000_000
	batchSize     = 1000
	minCodeLen    = 4
	maxCodeLen    = 32
)

const insertVoucherSQL = `INSERT INTO vouchers (id, code, discount_type, value, min_order_value,
	max_uses, starts_at, ends_at, status, description, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'active', $9, now())
	ON CONFLICT DO NOTHING`

// campaignRule is the discount applied to every imported code.
type campaignRule struct {
	discountType  voucher.DiscountType
	value         decimal.Decimal
	minOrderValue decimal.Decimal
	maxUses       int
	startsAt      time.Time
	endsAt        time.Time
	description   string
}

func main() {
	var (
		dataDir       string
		databaseURL   string
		discountType  string
		value         string
		minOrderValue string
		maxUses       int
		starts        string
		ends          string
		description   string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing campaign .gz code files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&discountType, "discount-type", "percentage", "discount type: percentage or fixed")
	flag.StringVar(&value, "value", "10", "discount value (percent or fixed amount)")
	flag.StringVar(&minOrderValue, "min-order-value", "0", "minimum order value to apply the voucher")
	flag.IntVar(&maxUses, "max-uses", 1, "usage limit per code (0 = unlimited)")
	flag.StringVar(&starts, "starts", "", "campaign start date (2006-01-02, default today)")
	flag.StringVar(&ends, "ends", "", "campaign end date (2006-01-02, required)")
	flag.StringVar(&description, "description", "Campaign voucher", "voucher description")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	rule, err := parseRule(discountType, value, minOrderValue, maxUses, starts, ends, description)
	if err != nil {
		slog.Error("invalid campaign rule", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL, rule); err != nil {
		slog.Error("voucher ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("voucher ingest completed successfully")
}

func parseRule(discountType, value, minOrderValue string, maxUses int, starts, ends, description string) (campaignRule, error) {
	rule := campaignRule{
		discountType: voucher.DiscountType(discountType),
		maxUses:      maxUses,
		description:  description,
	}

	var err error
	if rule.value, err = decimal.NewFromString(value); err != nil {
		return rule, errors.Wrap(err, "parse value")
	}
	if rule.minOrderValue, err = decimal.NewFromString(minOrderValue); err != nil {
		return rule, errors.Wrap(err, "parse min order value")
	}

	rule.startsAt = time.Now().Truncate(24 * time.Hour)
	if starts != "" {
		if rule.startsAt, err = time.Parse("2006-01-02", starts); err != nil {
			return rule, errors.Wrap(err, "parse start date")
		}
	}
	if ends == "" {
		return rule, errors.New("--ends is required")
	}
	if rule.endsAt, err = time.Parse("2006-01-02", ends); err != nil {
		return rule, errors.Wrap(err, "parse end date")
	}

	probe := voucher.Voucher{
		Code:          "PROBE",
		DiscountType:  rule.discountType,
		Value:         rule.value,
		MinOrderValue: rule.minOrderValue,
		MaxUses:       rule.maxUses,
		StartsAt:      rule.startsAt,
		EndsAt:        rule.endsAt,
	}
	if err := probe.ValidateUpdate(); err != nil {
		return rule, err
	}
	return rule, nil
}

func run(ctx context.Context, dataDir, databaseURL string, rule campaignRule) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.gz"))
	if err != nil {
		return errors.Wrap(err, "list campaign files")
	}
	if len(files) == 0 {
		return errors.Errorf("no .gz files in %s", dataDir)
	}

	// Pass 1: per-file bloom filters, built concurrently. They make the
	// cross-file dedup in pass 2 a cheap membership probe instead of a giant
	// shared set.
	slog.Info("pass 1: building bloom filters", slog.Int("files", len(files)))

	filters, err := buildBloomFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	// Pass 2: collect unique codes. Each file keeps only codes that no
	// earlier file's filter claims, so files can be scanned concurrently
	// without a shared set.
	slog.Info("pass 2: collecting unique codes")

	codes, err := collectUniqueCodes(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "collect codes")
	}

	slog.Info("unique codes found", slog.Int("count", len(codes)))

	if len(codes) == 0 {
		slog.Info("no codes to insert")
		return nil
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := writeVouchers(ctx, pool, codes, rule); err != nil {
		return errors.Wrap(err, "write vouchers")
	}
	return nil
}

// buildBloomFilters creates one bloom filter per file, concurrently.
func buildBloomFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
			var count uint64

			if err := streamGzFile(ctx, f, func(code string) {
				filter.AddString(code)
				count++
				if count%progressEvery == 0 {
					slog.Info("pass 1 progress", slog.Int("file", i+1), slog.Uint64("codes", count))
				}
			}); err != nil {
				return errors.Wrapf(err, "build filter for %s", f)
			}

			slog.Info("pass 1 complete", slog.Int("file", i+1), slog.Uint64("total_codes", count))
			filters[i] = filter
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

// collectUniqueCodes scans all files concurrently. A code belongs to the
// first file that contains it: file i keeps a code only when no earlier
// file's bloom filter claims it. Filter false positives drop a code here,
// and exact duplicates that slip through are absorbed by the insert's
// conflict clause.
func collectUniqueCodes(ctx context.Context, files []string, filters []*bloom.BloomFilter) ([]string, error) {
	perFile := make([][]string, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			unique := make(map[string]struct{})

			if err := streamGzFile(ctx, f, func(code string) {
				for j := 0; j < i; j++ {
					if filters[j].TestString(code) {
						return
					}
				}
				unique[code] = struct{}{}
			}); err != nil {
				return errors.Wrapf(err, "scan %s", f)
			}

			codes := make([]string, 0, len(unique))
			for code := range unique {
				codes = append(codes, code)
			}
			slog.Info("pass 2 complete", slog.Int("file", i+1), slog.Int("unique", len(codes)))
			perFile[i] = codes
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var codes []string
	for _, fc := range perFile {
		codes = append(codes, fc...)
	}
	return codes, nil
}

// streamGzFile opens a gzip-compressed file and calls fn for each normalized,
// length-valid code line.
func streamGzFile(ctx context.Context, path string, fn func(code string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		code := voucher.NormalizeCode(scanner.Text())
		if len(code) < minCodeLen || len(code) > maxCodeLen || strings.ContainsRune(code, ' ') {
			continue
		}
		fn(code)
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}

// writeVouchers inserts the codes in batches. Codes that already exist in the
// vouchers table are skipped by the conflict clause.
func writeVouchers(ctx context.Context, pool *pgxpool.Pool, codes []string, rule campaignRule) error {
	slog.Info("writing vouchers", slog.Int("count", len(codes)))

	for offset := 0; offset < len(codes); offset += batchSize {
		end := min(offset+batchSize, len(codes))

		batch := &pgx.Batch{}
		for _, code := range codes[offset:end] {
			batch.Queue(insertVoucherSQL,
				uuid.NewString(), code, rule.discountType, rule.value, rule.minOrderValue,
				rule.maxUses, rule.startsAt, rule.endsAt, rule.description,
			)
		}
		if err := pool.SendBatch(ctx, batch).Close(); err != nil {
			return errors.Wrapf(err, "insert batch at offset %d", offset)
		}

		slog.Info("write progress", slog.Int("written", end), slog.Int("total", len(codes)))
	}
	return nil
}
