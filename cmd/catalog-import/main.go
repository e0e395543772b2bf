// Command catalog-import bulk-loads products into the catalog from gzipped
// NDJSON files (one product object per line). Files are scanned concurrently,
// duplicate keys across the batch are detected with a bloom filter pre-screen,
// and the surviving drafts are merged into the configured storage backend.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Elaba987/pry-Inventario/internal/domain/product"
	"github.com/Elaba987/pry-Inventario/internal/storage"
	"github.com/Elaba987/pry-Inventario/internal/storage/postgres"
	"github.com/Elaba987/pry-Inventario/internal/storage/redisstore"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

func main() {
	var (
		dataDir     string
		databaseURL string
		redisURL    string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.ndjson.gz product files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&redisURL, "redis-url", "", "Redis connection URL (or REDIS_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if redisURL == "" {
		redisURL = os.Getenv("REDIS_URL")
	}
	if databaseURL == "" && redisURL == "" {
		slog.Error("a storage backend is required: set --database-url or --redis-url")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL, redisURL); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL, redisURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.ndjson.gz"))
	if err != nil {
		return errors.Wrap(err, "list data files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.ndjson.gz files in %s", dataDir)
	}

	slog.Info("scanning product files", slog.Int("files", len(files)))

	drafts, err := scanFiles(ctx, files)
	if err != nil {
		return errors.Wrap(err, "scan product files")
	}

	merged, dropped := dedupe(drafts)
	slog.Info("drafts collected",
		slog.Int("total", len(drafts)),
		slog.Int("unique", len(merged)),
		slog.Int("duplicates", dropped),
	)
	if len(merged) == 0 {
		slog.Info("nothing to import")
		return nil
	}

	gw, closeGateway, err := openGateway(ctx, databaseURL, redisURL)
	if err != nil {
		return errors.Wrap(err, "open storage gateway")
	}
	defer closeGateway()

	return importDrafts(ctx, gw, merged)
}

// scanFiles parses all files concurrently, one goroutine per file.
func scanFiles(ctx context.Context, files []string) ([]product.Draft, error) {
	results := make([][]product.Draft, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(scanFile(ctx, i, f, results))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []product.Draft
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

func scanFile(ctx context.Context, idx int, path string, results [][]product.Draft) func() error {
	return func() error {
		var (
			drafts []product.Draft
			count  uint64
		)

		if err := streamGzFile(ctx, path, func(line string) error {
			d, err := parseDraft(line)
			if err != nil {
				return errors.Wrapf(err, "line %d", count+1)
			}
			if err := d.Validate(); err != nil {
				return errors.Wrapf(err, "line %d", count+1)
			}

			drafts = append(drafts, d)
			count++
			if count%progressEvery == 0 {
				slog.Info("scan progress",
					slog.String("file", filepath.Base(path)),
					slog.Uint64("products", count),
				)
			}
			return nil
		}); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("scan complete",
			slog.String("file", filepath.Base(path)),
			slog.Uint64("products", count),
		)

		results[idx] = drafts
		return nil
	}
}

// parseDraft decodes a single NDJSON product line.
func parseDraft(line string) (product.Draft, error) {
	var d product.Draft

	dec := jx.DecodeStr(line)
	if err := dec.Obj(func(dec *jx.Decoder, field string) error {
		var err error
		switch field {
		case "clave":
			d.Key, err = dec.Int()
		case "nombre":
			d.Name, err = dec.Str()
		case "precio":
			var num jx.Num
			if num, err = dec.Num(); err != nil {
				return err
			}
			d.Price, err = decimal.NewFromString(num.String())
		case "stock":
			d.Stock, err = dec.Int()
		default:
			err = dec.Skip()
		}
		return err
	}); err != nil {
		return product.Draft{}, err
	}

	return d, nil
}

// dedupe keeps the first draft for each key. The bloom filter makes the
// common unique-key path a single hash test; positives are confirmed against
// the exact set before a draft is dropped.
func dedupe(drafts []product.Draft) (unique []product.Draft, dropped int) {
	filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	seen := make(map[int]struct{}, len(drafts))

	for _, d := range drafts {
		key := strconv.Itoa(d.Key)
		if filter.TestString(key) {
			if _, ok := seen[d.Key]; ok {
				slog.Warn("duplicate key in batch, keeping first", slog.Int("key", d.Key))
				dropped++
				continue
			}
		}
		filter.AddString(key)
		seen[d.Key] = struct{}{}
		unique = append(unique, d)
	}
	return unique, dropped
}

func openGateway(ctx context.Context, databaseURL, redisURL string) (storage.Gateway, func(), error) {
	if databaseURL != "" {
		pool, err := postgres.NewPool(ctx, databaseURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "connect to database")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, errors.Wrap(err, "run migrations")
		}
		return postgres.NewGateway(pool), pool.Close, nil
	}

	gw, err := redisstore.Open(ctx, redisURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "connect to redis")
	}
	return gw, func() { _ = gw.Close() }, nil
}

// importDrafts merges the drafts into the persisted catalog. Keys already in
// the catalog are skipped, not overwritten.
func importDrafts(ctx context.Context, gw storage.Gateway, drafts []product.Draft) error {
	store, err := product.Load(ctx, gw)
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}

	var added, skipped int
	for i, d := range drafts {
		if _, err := store.Add(ctx, d); err != nil {
			var dup *product.DuplicateKeyError
			if errors.As(err, &dup) {
				slog.Warn("key already in catalog, skipping", slog.Int("key", d.Key))
				skipped++
				continue
			}
			return errors.Wrapf(err, "add product %d", d.Key)
		}
		added++

		if (i+1)%100 == 0 || i+1 == len(drafts) {
			slog.Info("import progress", slog.Int("processed", i+1), slog.Int("total", len(drafts)))
		}
	}

	slog.Info("import summary", slog.Int("added", added), slog.Int("skipped", skipped))
	return nil
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line string) error) error {
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
		if line := scanner.Text(); line != "" {
			if err := fn(line); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}
