package descriptions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/chamanbahar/cbm-sales/internal/catalog"
	"github.com/chamanbahar/cbm-sales/internal/shared"
)

// Service serves product descriptions from the cache, fetching on a miss.
// Failed fetches are never cached so the next call tries again.
type Service struct {
	catalog *catalog.Catalog
	store   Store
	fetcher Fetcher
	logger  *slog.Logger
	lookups *prometheus.CounterVec
}

// Config groups Service dependencies.
type Config struct {
	Catalog    *catalog.Catalog
	Store      Store
	Fetcher    Fetcher
	Logger     *slog.Logger
	Registerer prometheus.Registerer
}

func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cbm_description_cache_total",
		Help: "Description lookups by result.",
	}, []string{"result"})
	if cfg.Registerer != nil {
		if err := cfg.Registerer.Register(lookups); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				lookups = already.ExistingCollector.(*prometheus.CounterVec)
			} else {
				logger.Warn("register description metrics", slog.Any("error", err))
			}
		}
	}
	return &Service{
		catalog: cfg.Catalog,
		store:   cfg.Store,
		fetcher: cfg.Fetcher,
		logger:  logger,
		lookups: lookups,
	}
}

// ErrNoDescription is returned for products without a description page.
var ErrNoDescription = fmt.Errorf("no product description available: %w", shared.ErrNotFound)

// Get returns the description HTML for productID.
func (s *Service) Get(ctx context.Context, productID int64) (string, error) {
	product, ok := s.catalog.Get(productID)
	if !ok {
		return "", fmt.Errorf("product %d: %w", productID, shared.ErrNotFound)
	}
	if strings.TrimSpace(product.WebsiteURL) == "" {
		return "", ErrNoDescription
	}

	html, found, err := s.store.Get(ctx, productID)
	if err != nil {
		s.logger.Warn("description cache read failed", slog.Int64("product_id", productID), slog.Any("error", err))
	} else if found {
		s.lookups.WithLabelValues("hit").Inc()
		return html, nil
	}
	s.lookups.WithLabelValues("miss").Inc()

	return s.fetchAndStore(ctx, product)
}

func (s *Service) fetchAndStore(ctx context.Context, product catalog.Product) (string, error) {
	html, err := s.fetcher.Fetch(ctx, product.WebsiteURL)
	if err != nil {
		s.lookups.WithLabelValues("fetch_error").Inc()
		s.logger.Warn("description fetch failed", slog.Int64("product_id", product.ID), slog.Any("error", err))
		if errors.Is(err, shared.ErrUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("fetch description: %w: %w", shared.ErrUnavailable, err)
	}
	if err := s.store.Put(ctx, product.ID, html); err != nil {
		s.logger.Error("description cache write failed", slog.Int64("product_id", product.ID), slog.Any("error", err))
	}
	return html, nil
}

// WarmResult counts what a warmup pass did per product.
type WarmResult struct {
	Fetched int `json:"fetched"`
	Cached  int `json:"cached"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Warm fetches every catalog description that is not cached yet, at most
// concurrency at a time. Individual failures are counted, not returned.
func (s *Service) Warm(ctx context.Context, concurrency int) (WarmResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	var fetched, cached, failed, skipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, product := range s.catalog.All() {
		if strings.TrimSpace(product.WebsiteURL) == "" {
			skipped.Add(1)
			continue
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			_, found, err := s.store.Get(gctx, product.ID)
			if err == nil && found {
				cached.Add(1)
				return nil
			}
			if _, err := s.fetchAndStore(gctx, product); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				return nil
			}
			fetched.Add(1)
			return nil
		})
	}
	err := g.Wait()
	result := WarmResult{
		Fetched: int(fetched.Load()),
		Cached:  int(cached.Load()),
		Failed:  int(failed.Load()),
		Skipped: int(skipped.Load()),
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return result, fmt.Errorf("warm descriptions: %w", err)
	}
	return result, nil
}
