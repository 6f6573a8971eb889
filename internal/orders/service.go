package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chamanbahar/cbm-sales/internal/cart"
	"github.com/chamanbahar/cbm-sales/internal/catalog"
	"github.com/chamanbahar/cbm-sales/internal/live"
	"github.com/chamanbahar/cbm-sales/internal/retailers"
	"github.com/chamanbahar/cbm-sales/internal/shared"
)

// RetailerReader resolves the retailer an order is taken for.
type RetailerReader interface {
	Get(ctx context.Context, id int64) (*retailers.Retailer, error)
}

// Service is the order lifecycle controller. Every multi-step change runs
// in one transaction and is announced on the orders topic after commit.
type Service struct {
	repo      Repository
	retailers RetailerReader
	catalog   *catalog.Catalog
	broker    *live.Broker
	grace     time.Duration
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	feeds map[string]*live.Feed[[]Detail]
}

// ServiceConfig groups the service dependencies.
type ServiceConfig struct {
	Repository Repository
	Retailers  RetailerReader
	Catalog    *catalog.Catalog
	Broker     *live.Broker
	Grace      time.Duration
	Logger     *slog.Logger
}

func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      cfg.Repository,
		retailers: cfg.Retailers,
		catalog:   cfg.Catalog,
		broker:    cfg.Broker,
		grace:     cfg.Grace,
		logger:    logger,
		now:       time.Now,
		feeds:     make(map[string]*live.Feed[[]Detail]),
	}
}

// Create stores a new pending order from a non-empty cart.
func (s *Service) Create(ctx context.Context, req SaveOrderRequest) (*Detail, error) {
	staged, err := s.prepare(ctx, &req)
	if err != nil {
		return nil, err
	}
	if staged.IsEmpty() {
		return nil, shared.NewValidationError("lines", "must contain at least one item")
	}

	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		lines := staged.Lines()
		items := make([]Item, 0, len(lines))
		for _, line := range lines {
			items = append(items, itemFromLine(0, line))
		}
		order, err := repo.CreateOrder(ctx, Order{
			RetailerID:  req.RetailerID,
			OrderDate:   req.OrderDate,
			Discount:    req.Discount,
			TotalAmount: ComputeTotal(items, req.Discount),
			Notes:       req.Notes,
			Status:      StatusPending,
		})
		if err != nil {
			return err
		}
		for _, it := range items {
			it.OrderID = order.ID
			if _, err := repo.InsertItem(ctx, it); err != nil {
				return err
			}
		}
		id = order.ID
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.changed()
	s.logger.Info("order created", slog.Int64("order_id", id), slog.Int64("retailer_id", req.RetailerID))
	return s.repo.GetDetail(ctx, id)
}

// SaveEdit applies the lines touched in an editing session to a pending
// order, replaces its header fields and recomputes its total from the
// resulting items.
func (s *Service) SaveEdit(ctx context.Context, id int64, req SaveOrderRequest) (*Detail, error) {
	staged, err := s.prepare(ctx, &req)
	if err != nil {
		return nil, err
	}

	var plan cart.Plan
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		order, err := editable(ctx, repo, id)
		if err != nil {
			return err
		}
		persisted, err := repo.ListItems(ctx, id)
		if err != nil {
			return err
		}

		plan = cart.Reconcile(staged.Touched(), Stored(persisted))
		for _, itemID := range plan.Deletes {
			if err := repo.DeleteItem(ctx, id, itemID); err != nil {
				return err
			}
		}
		for _, u := range plan.Updates {
			it := itemFromLine(id, u.Line)
			it.ID = u.ItemID
			if err := repo.UpdateItem(ctx, it); err != nil {
				return err
			}
		}
		for _, line := range plan.Inserts {
			if _, err := repo.InsertItem(ctx, itemFromLine(id, line)); err != nil {
				return err
			}
		}

		items, err := repo.ListItems(ctx, id)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return shared.NewValidationError("lines", "must contain at least one item")
		}
		order.RetailerID = req.RetailerID
		order.OrderDate = req.OrderDate
		order.Discount = req.Discount
		order.Notes = req.Notes
		order.TotalAmount = ComputeTotal(items, req.Discount)
		return repo.UpdateOrder(ctx, *order)
	})
	if err != nil {
		return nil, fmt.Errorf("save order %d: %w", id, err)
	}
	s.changed()
	s.logger.Info("order saved",
		slog.Int64("order_id", id),
		slog.Int("inserted", len(plan.Inserts)),
		slog.Int("updated", len(plan.Updates)),
		slog.Int("deleted", len(plan.Deletes)))
	return s.repo.GetDetail(ctx, id)
}

// MarkCompleted moves a pending order to completed.
func (s *Service) MarkCompleted(ctx context.Context, id int64) (*Detail, error) {
	return s.SetCompleted(ctx, id, true)
}

// MarkPending moves a completed order back to pending.
func (s *Service) MarkPending(ctx context.Context, id int64) (*Detail, error) {
	return s.SetCompleted(ctx, id, false)
}

// SetCompleted toggles between pending and completed. Cancelled orders are
// rejected with ErrInvalidStatus.
func (s *Service) SetCompleted(ctx context.Context, id int64, completed bool) (*Detail, error) {
	target := StatusPending
	if completed {
		target = StatusCompleted
	}
	var changed bool
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		order, err := repo.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		if order.Status.IsCancelled() {
			return fmt.Errorf("order %d is cancelled: %w", id, shared.ErrInvalidStatus)
		}
		if order.Status == target {
			return nil
		}
		changed = true
		return repo.UpdateStatus(ctx, id, target)
	})
	if err != nil {
		return nil, fmt.Errorf("set order %d %s: %w", id, target.Label(), err)
	}
	if changed {
		s.changed()
	}
	return s.repo.GetDetail(ctx, id)
}

// Cancel moves an order to cancelled. Cancelling twice is a no-op.
func (s *Service) Cancel(ctx context.Context, id int64) (*Detail, error) {
	var changed bool
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		order, err := repo.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		if order.Status.IsCancelled() {
			return nil
		}
		changed = true
		return repo.UpdateStatus(ctx, id, StatusCancelled)
	})
	if err != nil {
		return nil, fmt.Errorf("cancel order %d: %w", id, err)
	}
	if changed {
		s.changed()
		s.logger.Info("order cancelled", slog.Int64("order_id", id))
	}
	return s.repo.GetDetail(ctx, id)
}

// Delete removes an order and its items in any state.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteOrder(ctx, id); err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	s.changed()
	s.logger.Info("order deleted", slog.Int64("order_id", id))
	return nil
}

// UpdateNotes replaces the notes of a pending order.
func (s *Service) UpdateNotes(ctx context.Context, id int64, req UpdateNotesRequest) (*Detail, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return nil, err
	}
	notes := normalizeNotes(req.Notes)
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if _, err := editable(ctx, repo, id); err != nil {
			return err
		}
		return repo.UpdateNotes(ctx, id, notes)
	})
	if err != nil {
		return nil, fmt.Errorf("update notes of order %d: %w", id, err)
	}
	s.changed()
	return s.repo.GetDetail(ctx, id)
}

// UpdateItemQuantity sets a line's quantity, removing it when quantity is
// zero or less, and persists the recomputed order total with it.
func (s *Service) UpdateItemQuantity(ctx context.Context, orderID, itemID int64, quantity int) (*Detail, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		order, err := editable(ctx, repo, orderID)
		if err != nil {
			return err
		}
		item, err := repo.GetItem(ctx, orderID, itemID)
		if err != nil {
			return err
		}
		if quantity <= 0 {
			err = repo.DeleteItem(ctx, orderID, itemID)
		} else {
			item.Quantity = quantity
			item.Subtotal = item.Rate.Mul(decimal.NewFromInt(int64(quantity)))
			err = repo.UpdateItem(ctx, *item)
		}
		if err != nil {
			return err
		}
		return recomputeTotal(ctx, repo, order)
	})
	if err != nil {
		return nil, fmt.Errorf("update item %d of order %d: %w", itemID, orderID, err)
	}
	s.changed()
	return s.repo.GetDetail(ctx, orderID)
}

// RemoveItem deletes a line and persists the recomputed order total.
func (s *Service) RemoveItem(ctx context.Context, orderID, itemID int64) (*Detail, error) {
	return s.UpdateItemQuantity(ctx, orderID, itemID, 0)
}

func (s *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	return s.repo.GetDetail(ctx, id)
}

// Filter narrows an order list. A nil Status keeps every status and a blank
// Query keeps every order.
type Filter struct {
	Status *Status
	Query  string
}

// List returns orders, most recent first.
func (s *Service) List(ctx context.Context, f Filter) ([]Detail, error) {
	list, err := s.repo.ListDetails(ctx, f.Status)
	if err != nil {
		return nil, err
	}
	return Search(list, f.Query), nil
}

// LoadCart seeds a cart with an order's items for an editing session.
func (s *Service) LoadCart(ctx context.Context, id int64) (*cart.Cart, error) {
	items, err := s.repo.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return cart.Load(Stored(items), s.catalog), nil
}

// Refresh asks every live order feed to reload.
func (s *Service) Refresh() {
	s.changed()
}

// Watch subscribes to the order list narrowed by f. Unsearched lists share
// one feed per status; a search gets a feed of its own.
func (s *Service) Watch(ctx context.Context, f Filter) *live.Subscription[[]Detail] {
	key := ""
	var status *Status
	if f.Status != nil {
		st := *f.Status
		status = &st
		key = string(st)
	}
	query := strings.TrimSpace(f.Query)
	load := func(ctx context.Context) ([]Detail, error) {
		list, err := s.repo.ListDetails(ctx, status)
		if err != nil {
			return nil, err
		}
		return Search(list, query), nil
	}
	if query != "" {
		return live.NewFeed(live.FeedConfig[[]Detail]{
			Broker: s.broker,
			Topics: []live.Topic{live.TopicOrders, live.TopicRetailers},
			Load:   load,
			Logger: s.logger.With(slog.String("feed", "orders:"+key), slog.String("query", query)),
		}).Subscribe(ctx)
	}

	s.mu.Lock()
	feed, ok := s.feeds[key]
	if !ok {
		feed = live.NewFeed(live.FeedConfig[[]Detail]{
			Broker: s.broker,
			Topics: []live.Topic{live.TopicOrders, live.TopicRetailers},
			Load:   load,
			Grace:  s.grace,
			Logger: s.logger.With(slog.String("feed", "orders:"+key)),
		})
		s.feeds[key] = feed
	}
	s.mu.Unlock()
	return feed.Subscribe(ctx)
}

// WatchDetail subscribes to one order. A nil snapshot means the order no
// longer exists.
func (s *Service) WatchDetail(ctx context.Context, id int64) *live.Subscription[*Detail] {
	feed := live.NewFeed(live.FeedConfig[*Detail]{
		Broker: s.broker,
		Topics: []live.Topic{live.TopicOrders, live.TopicRetailers},
		Load: func(ctx context.Context) (*Detail, error) {
			d, err := s.repo.GetDetail(ctx, id)
			if errors.Is(err, shared.ErrNotFound) {
				return nil, nil
			}
			return d, err
		},
		Logger: s.logger.With(slog.String("feed", "order:"+strconv.FormatInt(id, 10))),
	})
	return feed.Subscribe(ctx)
}

func (s *Service) changed() {
	s.broker.Publish(live.TopicOrders)
}

// prepare validates a save request, fills defaults and stages its lines.
func (s *Service) prepare(ctx context.Context, req *SaveOrderRequest) (*cart.Cart, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.Discount.IsNegative() || req.Discount.GreaterThan(hundred) {
		return nil, shared.NewValidationError("discount", "must be between 0 and 100")
	}
	if req.OrderDate.IsZero() {
		req.OrderDate = s.now()
	}
	req.Notes = normalizeNotes(req.Notes)

	if _, err := s.retailers.Get(ctx, req.RetailerID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewValidationError("retailer_id", "does not exist")
		}
		return nil, fmt.Errorf("load retailer: %w", err)
	}

	staged := cart.New()
	for i, in := range req.Lines {
		product, ok := s.catalog.Get(in.ProductID)
		if !ok {
			return nil, shared.NewValidationError(fmt.Sprintf("lines[%d].product_id", i), "is not in the catalog")
		}
		if in.Discount.IsNegative() || in.Discount.GreaterThan(hundred) {
			return nil, shared.NewValidationError(fmt.Sprintf("lines[%d].discount", i), "must be between 0 and 100")
		}
		if err := staged.Upsert(product, in.Quantity, in.Unit, in.Discount); err != nil {
			var verr *shared.ValidationError
			if errors.As(err, &verr) {
				return nil, shared.NewValidationError(fmt.Sprintf("lines[%d].unit", i), verr.Fields["unit"])
			}
			return nil, err
		}
	}
	return staged, nil
}

// editable loads an order and rejects it unless it is pending.
func editable(ctx context.Context, repo Repository, id int64) (*Order, error) {
	order, err := repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.Editable() {
		return nil, fmt.Errorf("order %d is %s: %w", id, order.Status.Label(), shared.ErrInvalidStatus)
	}
	return order, nil
}

func recomputeTotal(ctx context.Context, repo Repository, order *Order) error {
	items, err := repo.ListItems(ctx, order.ID)
	if err != nil {
		return err
	}
	return repo.UpdateTotal(ctx, order.ID, ComputeTotal(items, order.Discount))
}
