package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chamanbahar/cbm-sales/internal/catalog"
	"github.com/chamanbahar/cbm-sales/internal/live"
	"github.com/chamanbahar/cbm-sales/internal/retailers"
	"github.com/chamanbahar/cbm-sales/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	mu        sync.Mutex
	orders    map[int64]Order
	items     map[int64]Item
	retailers map[int64]retailers.Retailer
	nextOrder int64
	nextItem  int64

	txError     error
	failOnTotal error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		orders: make(map[int64]Order),
		items:  make(map[int64]Item),
		retailers: map[int64]retailers.Retailer{
			1: {ID: 1, Name: "Gupta Stores", Phone: "98100", Address: "Main Bazaar"},
		},
		nextOrder: 1,
		nextItem:  1,
	}
}

// WithTx restores the previous state when fn fails.
func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	if m.txError != nil {
		return m.txError
	}
	m.mu.Lock()
	orders := make(map[int64]Order, len(m.orders))
	for k, v := range m.orders {
		orders[k] = v
	}
	items := make(map[int64]Item, len(m.items))
	for k, v := range m.items {
		items[k] = v
	}
	m.mu.Unlock()

	if err := fn(ctx, m); err != nil {
		m.mu.Lock()
		m.orders, m.items = orders, items
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (*retailers.Retailer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.retailers[id]
	if !ok {
		return nil, fmt.Errorf("retailer %d: %w", id, shared.ErrNotFound)
	}
	return &rt, nil
}

func (m *mockRepository) CreateOrder(_ context.Context, o Order) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = m.nextOrder
	m.nextOrder++
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	m.orders[o.ID] = o
	return &o, nil
}

func (m *mockRepository) UpdateOrder(_ context.Context, o Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.ID]; !ok {
		return notFound("order", o.ID)
	}
	m.orders[o.ID] = o
	return nil
}

func (m *mockRepository) DeleteOrder(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return notFound("order", id)
	}
	delete(m.orders, id)
	for itemID, it := range m.items {
		if it.OrderID == id {
			delete(m.items, itemID)
		}
	}
	return nil
}

func (m *mockRepository) GetOrder(_ context.Context, id int64) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, notFound("order", id)
	}
	return &o, nil
}

func (m *mockRepository) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	o, err := m.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	items, _ := m.ListItems(ctx, id)
	m.mu.Lock()
	defer m.mu.Unlock()
	return &Detail{Order: *o, Retailer: m.retailers[o.RetailerID], Items: items}, nil
}

func (m *mockRepository) ListDetails(ctx context.Context, status *Status) ([]Detail, error) {
	m.mu.Lock()
	var matched []Order
	for _, o := range m.orders {
		if status == nil || o.Status == *status {
			matched = append(matched, o)
		}
	}
	m.mu.Unlock()
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].OrderDate.Equal(matched[j].OrderDate) {
			return matched[i].OrderDate.After(matched[j].OrderDate)
		}
		return matched[i].ID > matched[j].ID
	})

	out := []Detail{}
	for _, o := range matched {
		d, err := m.GetDetail(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

func (m *mockRepository) ListItems(_ context.Context, orderID int64) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Item{}
	for _, it := range m.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRepository) GetItem(_ context.Context, orderID, itemID int64) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[itemID]
	if !ok || it.OrderID != orderID {
		return nil, notFound("order item", itemID)
	}
	return &it, nil
}

func (m *mockRepository) InsertItem(_ context.Context, it Item) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.OrderID == it.OrderID && existing.ProductID == it.ProductID && existing.Unit == it.Unit {
			return nil, fmt.Errorf("duplicate line: %w", shared.ErrConflict)
		}
	}
	it.ID = m.nextItem
	m.nextItem++
	m.items[it.ID] = it
	return &it, nil
}

func (m *mockRepository) UpdateItem(_ context.Context, it Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.items[it.ID]
	if !ok || existing.OrderID != it.OrderID {
		return notFound("order item", it.ID)
	}
	it.ProductID = existing.ProductID
	it.Unit = existing.Unit
	m.items[it.ID] = it
	return nil
}

func (m *mockRepository) DeleteItem(_ context.Context, orderID, itemID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.items[itemID]
	if !ok || existing.OrderID != orderID {
		return notFound("order item", itemID)
	}
	delete(m.items, itemID)
	return nil
}

func (m *mockRepository) UpdateStatus(_ context.Context, id int64, status Status) error {
	return m.mutate(id, func(o *Order) { o.Status = status })
}

func (m *mockRepository) UpdateNotes(_ context.Context, id int64, notes *string) error {
	return m.mutate(id, func(o *Order) { o.Notes = notes })
}

func (m *mockRepository) UpdateTotal(_ context.Context, id int64, total decimal.Decimal) error {
	if m.failOnTotal != nil {
		return m.failOnTotal
	}
	return m.mutate(id, func(o *Order) { o.TotalAmount = total })
}

func (m *mockRepository) mutate(id int64, fn func(*Order)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return notFound("order", id)
	}
	fn(&o)
	m.orders[id] = o
	return nil
}

// ============================================================================
// HELPERS
// ============================================================================

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	mk := func(id int64, name, code string) catalog.Product {
		return catalog.Product{ID: id, Name: name, Code: dec(code), MRP: dec("5"), Weight: dec("8"), Bundle: dec("25"), Bori: dec("40")}
	}
	noBori := mk(4, "D", "50")
	noBori.Bori = decimal.Zero
	cat, err := catalog.New([]catalog.Product{mk(1, "A", "100"), mk(2, "B", "80"), mk(3, "C", "60"), noBori})
	require.NoError(t, err)
	return cat
}

func newTestService(t *testing.T, repo *mockRepository) *Service {
	t.Helper()
	return NewService(ServiceConfig{
		Repository: repo,
		Retailers:  repo,
		Catalog:    testCatalog(t),
		Broker:     live.NewBroker(),
	})
}

func line(productID int64, qty int, unit catalog.Unit, discount string) LineInput {
	return LineInput{ProductID: productID, Quantity: qty, Unit: unit, Discount: dec(discount)}
}

func createOrder(t *testing.T, svc *Service, lines ...LineInput) *Detail {
	t.Helper()
	d, err := svc.Create(context.Background(), SaveOrderRequest{RetailerID: 1, Lines: lines})
	require.NoError(t, err)
	return d
}

func itemFor(d *Detail, productID int64, unit catalog.Unit) (Item, bool) {
	for _, it := range d.Items {
		if it.ProductID == productID && it.Unit == unit {
			return it, true
		}
	}
	return Item{}, false
}

// ============================================================================
// CREATE
// ============================================================================

func TestCreateSingleLineOrder(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(t, repo)

	d := createOrder(t, svc, line(1, 3, catalog.UnitBundle, "10"))

	assert.Equal(t, StatusPending, d.Order.Status)
	assert.Equal(t, "Gupta Stores", d.Retailer.Name)
	require.Len(t, d.Items, 1)
	assert.True(t, d.Items[0].Rate.Equal(dec("90")))
	assert.True(t, d.Items[0].Subtotal.Equal(dec("270")))
	assert.Equal(t, "A", d.Items[0].ProductName)
	assert.True(t, d.Order.TotalAmount.Equal(dec("270")), d.Order.TotalAmount.String())
	assert.False(t, d.Order.OrderDate.IsZero())
}

func TestCreateAppliesOrderDiscount(t *testing.T) {
	svc := newTestService(t, newMockRepository())
	d, err := svc.Create(context.Background(), SaveOrderRequest{
		RetailerID: 1,
		Discount:   dec("10"),
		Lines:      []LineInput{line(1, 2, catalog.UnitBundle, "0"), line(2, 1, catalog.UnitBori, "0")},
	})
	require.NoError(t, err)
	assert.True(t, d.Order.TotalAmount.Equal(dec("252")), d.Order.TotalAmount.String())
}

func TestCreateRejectsEmptyCart(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), SaveOrderRequest{RetailerID: 1, Lines: []LineInput{line(1, 0, catalog.UnitBundle, "0")}})
	require.Error(t, err)
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "lines")
	assert.Empty(t, repo.orders)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		req   SaveOrderRequest
		field string
	}{
		{name: "unknown retailer", req: SaveOrderRequest{RetailerID: 9, Lines: []LineInput{line(1, 1, catalog.UnitBundle, "0")}}, field: "retailer_id"},
		{name: "missing retailer", req: SaveOrderRequest{Lines: []LineInput{line(1, 1, catalog.UnitBundle, "0")}}, field: "retailer_id"},
		{name: "unknown product", req: SaveOrderRequest{RetailerID: 1, Lines: []LineInput{line(99, 1, catalog.UnitBundle, "0")}}, field: "lines[0].product_id"},
		{name: "unsupported unit", req: SaveOrderRequest{RetailerID: 1, Lines: []LineInput{line(4, 1, catalog.UnitBori, "0")}}, field: "lines[0].unit"},
		{name: "bad unit", req: SaveOrderRequest{RetailerID: 1, Lines: []LineInput{line(1, 1, "Crate", "0")}}, field: "lines[0].unit"},
		{name: "discount out of range", req: SaveOrderRequest{RetailerID: 1, Discount: dec("101"), Lines: []LineInput{line(1, 1, catalog.UnitBundle, "0")}}, field: "discount"},
		{name: "line discount above range", req: SaveOrderRequest{RetailerID: 1, Lines: []LineInput{line(1, 1, catalog.UnitBundle, "0"), line(2, 1, catalog.UnitBundle, "150")}}, field: "lines[1].discount"},
		{name: "negative line discount", req: SaveOrderRequest{RetailerID: 1, Lines: []LineInput{line(1, 1, catalog.UnitBundle, "-5")}}, field: "lines[0].discount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepository()
			svc := newTestService(t, repo)
			_, err := svc.Create(context.Background(), tt.req)
			require.Error(t, err)
			var verr *shared.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
			assert.Empty(t, repo.orders)
		})
	}
}

// ============================================================================
// SAVE FOR EDIT
// ============================================================================

func TestSaveEditReconcilesTouchedLines(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(t, repo)
	ctx := context.Background()

	d := createOrder(t, svc, line(1, 3, catalog.UnitBundle, "0"), line(2, 1, catalog.UnitBori, "0"))
	a, _ := itemFor(d, 1, catalog.UnitBundle)

	edited, err := svc.SaveEdit(ctx, d.Order.ID, SaveOrderRequest{
		RetailerID: 1,
		Lines:      []LineInput{line(1, 5, catalog.UnitBundle, "0"), line(3, 2, catalog.UnitPacket, "0")},
	})
	require.NoError(t, err)
	require.Len(t, edited.Items, 3)

	gotA, ok := itemFor(edited, 1, catalog.UnitBundle)
	require.True(t, ok)
	assert.Equal(t, a.ID, gotA.ID, "update keeps identity")
	assert.Equal(t, 5, gotA.Quantity)
	assert.True(t, gotA.Subtotal.Equal(dec("500")))

	gotB, ok := itemFor(edited, 2, catalog.UnitBori)
	require.True(t, ok, "untouched line survives")
	assert.Equal(t, 1, gotB.Quantity)

	gotC, ok := itemFor(edited, 3, catalog.UnitPacket)
	require.True(t, ok)
	assert.Equal(t, 2, gotC.Quantity)

	// 500 + 80 + 120
	assert.True(t, edited.Order.TotalAmount.Equal(dec("700")), edited.Order.TotalAmount.String())
}

func TestSaveEditIsIdempotent(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(t, repo)
	ctx := context.Background()

	d := createOrder(t, svc, line(1, 3, catalog.UnitBundle, "0"), line(2, 1, catalog.UnitBori, "0"))
	req := SaveOrderRequest{
		RetailerID: 1,
		OrderDate:  d.Order.OrderDate,
		Lines:      []LineInput{line(1, 5, catalog.UnitBundle, "0"), line(3, 2, catalog.UnitPacket, "0")},
	}
	first, err := svc.SaveEdit(ctx, d.Order.ID, req)
	require.NoError(t, err)
	second, err := svc.SaveEdit(ctx, d.Order.ID, req)
	require.NoError(t, err)

	assert.Equal(t, first.Items, second.Items)
	assert.True(t, first.Order.TotalAmount.Equal(second.Order.TotalAmount))
}

func TestSaveEditRemovesZeroedLineAndUpdatesHeader(t *testing.T) {
	repo := newMockRepository()
	repo.retailers[2] = retailers.Retailer{ID: 2, Name: "Sharma Kirana"}
	svc := newTestService(t, repo)

	d := createOrder(t, svc, line(1, 3, catalog.UnitBundle, "0"), line(2, 1, catalog.UnitBori, "0"))
	notes := "  deliver friday "
	edited, err := svc.SaveEdit(context.Background(), d.Order.ID, SaveOrderRequest{
		RetailerID: 2,
		Discount:   dec("50"),
		Notes:      &notes,
		Lines:      []LineInput{line(1, 0, catalog.UnitBundle, "0")},
	})
	require.NoError(t, err)
	require.Len(t, edited.Items, 1)
	assert.Equal(t, int64(2), edited.Items[0].ProductID)
	assert.Equal(t, "Sharma Kirana", edited.Retailer.Name)
	require.NotNil(t, edited.Order.Notes)
	assert.Equal(t, "deliver friday", *edited.Order.Notes)
	assert.True(t, edited.Order.TotalAmount.Equal(dec("40")), edited.Order.TotalAmount.String())
}

func TestSaveEditRejectsRemovingEveryItem(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(t, repo)
	ctx := context.Background()

	d := createOrder(t, svc, line(1, 3, catalog.UnitBundle, "0"))
	_, err := svc.SaveEdit(ctx, d.Order.ID, SaveOrderRequest{
		RetailerID: 1,
		Discount:   dec("20"),
		Lines:      []LineInput{line(1, 0, catalog.UnitBundle, "0")},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "lines")

	got, err := svc.Get(ctx, d.Order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)
	assert.True(t, got.Order.Discount.IsZero())
	assert.True(t, got.Order.TotalAmount.Equal(dec("300")), got.Order.TotalAmount.String())
}

func TestSaveEditRequiresPending(t *testing.T) {
	for _, target := range []Status{StatusCompleted, StatusCancelled} {
		t.Run(string(target), func(t *testing.T) {
			repo := newMockRepository()
			svc := newTestService(t, repo)
			ctx := context.Background()
			d := createOrder(t, svc, line(1, 3, catalog.UnitBundle, "0"))
			require.NoError(t, repo.UpdateStatus(ctx, d.Order.ID, target))

			_, err := svc.SaveEdit(ctx, d.Order.ID, SaveOrderRequest{RetailerID: 1, Lines: []LineInput{line(1, 9, catalog.UnitBundle, "0")}})
			assert.True(t, errors.Is(err, shared.ErrInvalidStatus))
			items, _ := repo.ListItems(ctx, d.Order.ID)
			assert.Equal(t, 3, items[0].Quantity)
		})
	}
}

// ============================================================================
// LIFECYCLE
// ============================================================================

func TestCompletionToggle(t *testing.T) {
	svc := newTestService(t, newMockRepository())
	ctx := context.Background()
	d := createOrder(t, svc, line(1, 1, catalog.UnitBundle, "0"))

	got, err := svc.MarkCompleted(ctx, d.Order.ID)
	require.NoError(t, err)
	assert.True(t, got.Order.Status.IsCompleted())

	got, err = svc.MarkCompleted(ctx, d.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Order.Status)

	got, err = svc.MarkPending(ctx, d.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Order.Status)
}

func TestCancelIsTerminal(t *testing.T) {
	svc := newTestService(t, newMockRepository())
	ctx := context.Background()
	d := createOrder(t, svc, line(1, 1, catalog.UnitBundle, "0"))

	_, err := svc.MarkCompleted(ctx, d.Order.ID)
	require.NoError(t, err)

	got, err := svc.Cancel(ctx, d.Order.ID)
	require.NoError(t, err)
	assert.True(t, got.Order.Status.IsCancelled())
	assert.False(t, got.Order.Status.IsCompleted())

	got, err = svc.Cancel(ctx, d.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Order.Status)

	_, err = svc.MarkPending(ctx, d.Order.ID)
	assert.True(t, errors.Is(err, shared.ErrInvalidStatus))
	_, err = svc.MarkCompleted(ctx, d.Order.ID)
	assert.True(t, errors.Is(err, shared.ErrInvalidStatus))

	_, err = svc.UpdateNotes(ctx, d.Order.ID, UpdateNotesRequest{})
	assert.True(t, errors.Is(err, shared.ErrInvalidStatus))
}

func TestDeleteCascades(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(t, repo)
	ctx := context.Background()
	d := createOrder(t, svc, line(1, 1, catalog.UnitBundle, "0"), line(2, 1, catalog.UnitBundle, "0"))
	_, err := svc.Cancel(ctx, d.Order.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, d.Order.ID))
	assert.Empty(t, repo.items)
	_, err = svc.Get(ctx, d.Order.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	assert.True(t, errors.Is(svc.Delete(ctx, d.Order.ID), shared.ErrNotFound))
}

func TestUpdateNotes(t *testing.T) {
	svc := newTestService(t, newMockRepository())
	ctx := context.Background()
	d := createOrder(t, svc, line(1, 1, catalog.UnitBundle, "0"))

	notes := "call first"
	got, err := svc.UpdateNotes(ctx, d.Order.ID, UpdateNotesRequest{Notes: &notes})
	require.NoError(t, err)
	require.NotNil(t, got.Order.Notes)
	assert.Equal(t, "call first", *got.Order.Notes)

	blank := "   "
	got, err = svc.UpdateNotes(ctx, d.Order.ID, UpdateNotesRequest{Notes: &blank})
	require.NoError(t, err)
	assert.Nil(t, got.Order.Notes)
}

// ============================================================================
// ITEM MUTATIONS
// ============================================================================

func TestUpdateItemQuantityRecomputesTotal(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(t, repo)
	ctx := context.Background()

	d, err := svc.Create(ctx, SaveOrderRequest{
		RetailerID: 1,
		Discount:   dec("10"),
		Lines:      []LineInput{line(1, 3, catalog.UnitBundle, "10"), line(3, 1, catalog.UnitBundle, "0")},
	})
	require.NoError(t, err)
	a, _ := itemFor(d, 1, catalog.UnitBundle)

	got, err := svc.UpdateItemQuantity(ctx, d.Order.ID, a.ID, 5)
	require.NoError(t, err)
	updated, _ := itemFor(got, 1, catalog.UnitBundle)
	assert.True(t, updated.Subtotal.Equal(dec("450")))
	// (450 + 60) less 10%
	assert.True(t, got.Order.TotalAmount.Equal(dec("459")), got.Order.TotalAmount.String())

	got, err = svc.UpdateItemQuantity(ctx, d.Order.ID, a.ID, 0)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Order.TotalAmount.Equal(dec("54")), got.Order.TotalAmount.String())
}

func TestRemoveLastItemZeroesTotal(t *testing.T) {
	svc := newTestService(t, newMockRepository())
	ctx := context.Background()
	d := createOrder(t, svc, line(1, 3, catalog.UnitBundle, "0"))

	got, err := svc.RemoveItem(ctx, d.Order.ID, d.Items[0].ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.True(t, got.Order.TotalAmount.IsZero())
}

func TestItemMutationIsAtomic(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(t, repo)
	ctx := context.Background()
	d := createOrder(t, svc, line(1, 3, catalog.UnitBundle, "0"))

	repo.failOnTotal = shared.Storage("update order total", errors.New("disk full"))
	_, err := svc.UpdateItemQuantity(ctx, d.Order.ID, d.Items[0].ID, 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrStorage))

	items, _ := repo.ListItems(ctx, d.Order.ID)
	assert.Equal(t, 3, items[0].Quantity, "item write rolled back with the total")
}

func TestItemMutationRequiresPending(t *testing.T) {
	svc := newTestService(t, newMockRepository())
	ctx := context.Background()
	d := createOrder(t, svc, line(1, 3, catalog.UnitBundle, "0"))
	_, err := svc.MarkCompleted(ctx, d.Order.ID)
	require.NoError(t, err)

	_, err = svc.UpdateItemQuantity(ctx, d.Order.ID, d.Items[0].ID, 4)
	assert.True(t, errors.Is(err, shared.ErrInvalidStatus))
}

func TestUpdateMissingItem(t *testing.T) {
	svc := newTestService(t, newMockRepository())
	d := createOrder(t, svc, line(1, 3, catalog.UnitBundle, "0"))
	_, err := svc.UpdateItemQuantity(context.Background(), d.Order.ID, 999, 4)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

// ============================================================================
// READS
// ============================================================================

func TestListFiltersByStatus(t *testing.T) {
	svc := newTestService(t, newMockRepository())
	ctx := context.Background()
	first := createOrder(t, svc, line(1, 1, catalog.UnitBundle, "0"))
	second := createOrder(t, svc, line(2, 1, catalog.UnitBundle, "0"))
	_, err := svc.MarkCompleted(ctx, first.Order.ID)
	require.NoError(t, err)

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.Order.ID, all[0].Order.ID)

	pending := StatusPending
	list, err := svc.List(ctx, Filter{Status: &pending})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.Order.ID, list[0].Order.ID)
}

func TestListIsNewestOrderDateFirst(t *testing.T) {
	svc := newTestService(t, newMockRepository())
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2026, 3, d, 10, 0, 0, 0, time.UTC) }

	var ids []int64
	for _, date := range []time.Time{day(5), day(1), day(9), day(5)} {
		d, err := svc.Create(ctx, SaveOrderRequest{RetailerID: 1, OrderDate: date, Lines: []LineInput{line(1, 1, catalog.UnitBundle, "0")}})
		require.NoError(t, err)
		ids = append(ids, d.Order.ID)
	}
	// Same-day orders fall back to the higher id first.
	want := []int64{ids[2], ids[3], ids[0], ids[1]}
	orderIDs := func(list []Detail) []int64 {
		out := make([]int64, 0, len(list))
		for _, d := range list {
			out = append(out, d.Order.ID)
		}
		return out
	}

	list, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, want, orderIDs(list))

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	sub := svc.Watch(watchCtx, Filter{})
	select {
	case v := <-sub.C:
		assert.Equal(t, want, orderIDs(v))
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot")
	}
}

func TestListSearchesByOrderNumberAndRetailer(t *testing.T) {
	repo := newMockRepository()
	repo.retailers[2] = retailers.Retailer{ID: 2, Name: "Sharma Kirana"}
	svc := newTestService(t, repo)
	ctx := context.Background()

	first := createOrder(t, svc, line(1, 1, catalog.UnitBundle, "0"))
	second, err := svc.Create(ctx, SaveOrderRequest{RetailerID: 2, Lines: []LineInput{line(2, 1, catalog.UnitBundle, "0")}})
	require.NoError(t, err)

	tests := []struct {
		query string
		want  []int64
	}{
		{query: "", want: []int64{second.Order.ID, first.Order.ID}},
		{query: "kirana", want: []int64{second.Order.ID}},
		{query: "  GUPTA ", want: []int64{first.Order.ID}},
		{query: fmt.Sprintf("#%d", first.Order.ID), want: []int64{first.Order.ID}},
		{query: fmt.Sprint(second.Order.ID), want: []int64{second.Order.ID}},
		{query: "nobody", want: []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			list, err := svc.List(ctx, Filter{Query: tt.query})
			require.NoError(t, err)
			got := []int64{}
			for _, d := range list {
				got = append(got, d.Order.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	completed := StatusCompleted
	list, err := svc.List(ctx, Filter{Status: &completed, Query: "kirana"})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWatchAppliesSearch(t *testing.T) {
	repo := newMockRepository()
	repo.retailers[2] = retailers.Retailer{ID: 2, Name: "Sharma Kirana"}
	svc := newTestService(t, repo)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	createOrder(t, svc, line(1, 1, catalog.UnitBundle, "0"))

	sub := svc.Watch(ctx, Filter{Query: "sharma"})
	select {
	case v := <-sub.C:
		assert.Empty(t, v)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot")
	}

	d, err := svc.Create(context.Background(), SaveOrderRequest{RetailerID: 2, Lines: []LineInput{line(2, 1, catalog.UnitBundle, "0")}})
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		select {
		case v := <-sub.C:
			return len(v) == 1 && v[0].Order.ID == d.Order.ID
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLoadCartSeedsPersistedLines(t *testing.T) {
	svc := newTestService(t, newMockRepository())
	d := createOrder(t, svc, line(1, 3, catalog.UnitBundle, "10"), line(2, 1, catalog.UnitBori, "0"))

	c, err := svc.LoadCart(context.Background(), d.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Total().Equal(dec("350")), c.Total().String())
}

func TestWatchReceivesChanges(t *testing.T) {
	svc := newTestService(t, newMockRepository())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pending := StatusPending
	sub := svc.Watch(ctx, Filter{Status: &pending})
	next := func() []Detail {
		select {
		case v := <-sub.C:
			return v
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for snapshot")
			return nil
		}
	}
	assert.Empty(t, next())

	d := createOrder(t, svc, line(1, 1, catalog.UnitBundle, "0"))
	assert.Eventually(t, func() bool {
		select {
		case v := <-sub.C:
			return len(v) == 1 && v[0].Order.ID == d.Order.ID
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatchDetailEndsWithNilOnDelete(t *testing.T) {
	svc := newTestService(t, newMockRepository())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d := createOrder(t, svc, line(1, 1, catalog.UnitBundle, "0"))

	sub := svc.WatchDetail(ctx, d.Order.ID)
	select {
	case v := <-sub.C:
		require.NotNil(t, v)
		assert.Equal(t, d.Order.ID, v.Order.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot")
	}

	require.NoError(t, svc.Delete(context.Background(), d.Order.ID))
	assert.Eventually(t, func() bool {
		select {
		case v := <-sub.C:
			return v == nil
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
