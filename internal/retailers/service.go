package retailers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chamanbahar/cbm-sales/internal/live"
	"github.com/chamanbahar/cbm-sales/internal/shared"
)

// Service validates and applies retailer changes.
type Service struct {
	repo   Repository
	broker *live.Broker
	feed   *live.Feed[[]Retailer]
	logger *slog.Logger
}

// NewService wires the repository to the change broker. grace is how long
// the retailer feed outlives its last subscriber.
func NewService(repo Repository, broker *live.Broker, grace time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{repo: repo, broker: broker, logger: logger}
	s.feed = live.NewFeed(live.FeedConfig[[]Retailer]{
		Broker: broker,
		Topics: []live.Topic{live.TopicRetailers},
		Load:   repo.List,
		Grace:  grace,
		Logger: logger,
	})
	return s
}

func (s *Service) Create(ctx context.Context, req CreateRetailerRequest) (*Retailer, error) {
	req.normalize()
	if err := shared.ValidateStruct(req); err != nil {
		return nil, err
	}

	var created *Retailer
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		var err error
		created, err = repo.Create(ctx, Retailer{Name: req.Name, Phone: req.Phone, Address: req.Address})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create retailer: %w", err)
	}
	s.broker.Publish(live.TopicRetailers)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRetailerRequest) (*Retailer, error) {
	req.normalize()
	if err := shared.ValidateStruct(req); err != nil {
		return nil, err
	}

	var updated *Retailer
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		var err error
		updated, err = repo.Update(ctx, Retailer{ID: id, Name: req.Name, Phone: req.Phone, Address: req.Address})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update retailer: %w", err)
	}
	s.broker.Publish(live.TopicRetailers)
	return updated, nil
}

// Delete removes a retailer that has no orders.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		n, err := repo.CountOrders(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("retailer %d has %d orders: %w", id, n, shared.ErrConflict)
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete retailer: %w", err)
	}
	s.broker.Publish(live.TopicRetailers)
	s.logger.Info("retailer deleted", slog.Int64("retailer_id", id))
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Retailer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Retailer, error) {
	return s.repo.List(ctx)
}

// Watch subscribes to the retailer list. The subscription ends with ctx.
func (s *Service) Watch(ctx context.Context) *live.Subscription[[]Retailer] {
	return s.feed.Subscribe(ctx)
}
