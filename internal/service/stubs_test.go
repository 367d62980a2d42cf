package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nodeforge1/nodeforge-website/internal/event"
	"github.com/nodeforge1/nodeforge-website/internal/infra/gateway"
	"github.com/nodeforge1/nodeforge-website/internal/infra/repository/db"
	"github.com/nodeforge1/nodeforge-website/internal/model"
)

// ---- in-memory cart repo ----

type stubCartRepo struct {
	mu    sync.Mutex
	carts map[string]map[string]model.CartItem
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{carts: map[string]map[string]model.CartItem{}}
}

func (r *stubCartRepo) GetItems(ctx context.Context, sessionID string) ([]model.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]model.CartItem, 0, len(r.carts[sessionID]))
	for _, item := range r.carts[sessionID] {
		items = append(items, item)
	}
	model.SortCartItems(items)
	return items, nil
}

func (r *stubCartRepo) UpsertItem(ctx context.Context, sessionID string, item model.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.carts[sessionID] == nil {
		r.carts[sessionID] = map[string]model.CartItem{}
	}
	r.carts[sessionID][item.ItemID] = item
	return nil
}

func (r *stubCartRepo) DeleteItem(ctx context.Context, sessionID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts[sessionID], itemID)
	return nil
}

func (r *stubCartRepo) Clear(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
	return nil
}

// ---- product getter ----

type stubProductGetter struct {
	products map[string]*model.Product
}

func (r *stubProductGetter) GetProductByID(ctx context.Context, productID string) (*model.Product, error) {
	return r.products[productID], nil
}

// ---- in-memory order repo ----

type stubOrderRepo struct {
	mu     sync.Mutex
	nextID uint
	orders map[uint]*model.Order

	createErr error
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{nextID: 1, orders: map[uint]*model.Order{}}
}

func (r *stubOrderRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.orders {
		if existing.OrderRef == order.OrderRef {
			return errors.New("duplicate order ref")
		}
	}
	order.ID = r.nextID
	r.nextID++
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *stubOrderRepo) GetOrderByID(ctx context.Context, id uint) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order, ok := r.orders[id]; ok {
		cp := *order
		return &cp, nil
	}
	return nil, nil
}

func (r *stubOrderRepo) GetOrderByRef(ctx context.Context, orderRef string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.OrderRef == orderRef {
			cp := *order
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *stubOrderRepo) GetOrdersPaginated(ctx context.Context, page, pageSize int, filter db.OrderFilter) ([]model.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []model.Order
	for _, order := range r.orders {
		if filter.OrderStatus != "" && string(order.OrderStatus) != filter.OrderStatus {
			continue
		}
		if filter.PaymentStatus != "" && string(order.PaymentStatus) != filter.PaymentStatus {
			continue
		}
		orders = append(orders, *order)
	}
	return orders, int64(len(orders)), nil
}

func (r *stubOrderRepo) UpdateOrder(ctx context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *stubOrderRepo) UpdateOrderStatus(ctx context.Context, id uint, fields map[string]any) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return false, nil
	}
	if v, ok := fields["order_status"]; ok {
		order.OrderStatus = model.OrderStatus(v.(string))
	}
	if v, ok := fields["payment_status"]; ok {
		order.PaymentStatus = model.PaymentStatus(v.(string))
	}
	if v, ok := fields["tracking_info"]; ok {
		order.TrackingInfo = v.(*model.TrackingInfo)
	}
	if v, ok := fields["notes"]; ok {
		order.Notes = v.(string)
	}
	if v, ok := fields["updated_at"]; ok {
		order.UpdatedAt = v.(time.Time)
	}
	return true, nil
}

func (r *stubOrderRepo) SetGatewayRef(ctx context.Context, id uint, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return errors.New("order not found")
	}
	if v, ok := fields["stripe_session_id"]; ok {
		order.StripeSessionID = v.(string)
	}
	if v, ok := fields["payment_id"]; ok {
		order.PaymentID = v.(string)
	}
	return nil
}

func (r *stubOrderRepo) CompletePaymentByRef(ctx context.Context, orderRef string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.OrderRef == orderRef && order.PaymentStatus != model.PaymentStatusCompleted {
			order.PaymentStatus = model.PaymentStatusCompleted
			return true, nil
		}
	}
	return false, nil
}

func (r *stubOrderRepo) FailPaymentByRef(ctx context.Context, orderRef string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.OrderRef != orderRef {
			continue
		}
		switch order.PaymentStatus {
		case model.PaymentStatusCompleted, model.PaymentStatusRefunded, model.PaymentStatusFailed:
			return false, nil
		default:
			order.PaymentStatus = model.PaymentStatusFailed
			return true, nil
		}
	}
	return false, nil
}

func (r *stubOrderRepo) DeleteOrder(ctx context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return false, nil
	}
	delete(r.orders, id)
	return true, nil
}

func (r *stubOrderRepo) CountByPaymentStatus(ctx context.Context, status model.PaymentStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, order := range r.orders {
		if order.PaymentStatus == status {
			count++
		}
	}
	return count, nil
}

func (r *stubOrderRepo) CountOrders(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.orders)), nil
}

func (r *stubOrderRepo) SumCompletedRevenue(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, order := range r.orders {
		if order.PaymentStatus == model.PaymentStatusCompleted {
			total = total.Add(order.TotalPrice)
		}
	}
	return total.String(), nil
}

var _ db.IOrderRepository = (*stubOrderRepo)(nil)

// ---- idempotency ----

type stubIdemRepo struct {
	mu   sync.Mutex
	keys map[string]string
}

func newStubIdemRepo() *stubIdemRepo {
	return &stubIdemRepo{keys: map[string]string{}}
}

func (r *stubIdemRepo) Reserve(ctx context.Context, key, orderRef string) (bool, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.keys[key]; ok {
		return false, existing, nil
	}
	r.keys[key] = orderRef
	return true, "", nil
}

func (r *stubIdemRepo) Release(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.keys, key)
	return nil
}

// ---- event producer spy ----

type spyProducer struct {
	mu     sync.Mutex
	events []event.OrderPaidEvent
}

func (p *spyProducer) PublishOrderPaid(ctx context.Context, evt event.OrderPaidEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *spyProducer) Close() error { return nil }

// ---- gateway stubs ----

type stubStripe struct {
	lastItems []gateway.StripeLineItem
	event     *gateway.StripeCheckoutEvent
	sigErr    error
}

func (s *stubStripe) CreateCheckoutSession(ctx context.Context, orderRef, customerEmail, successURL, cancelURL string, items []gateway.StripeLineItem) (*gateway.StripeSession, error) {
	s.lastItems = items
	return &gateway.StripeSession{ID: "cs_test_" + orderRef, URL: "https://checkout.stripe.com/pay/" + orderRef}, nil
}

func (s *stubStripe) ConstructEvent(payload []byte, sigHeader string) (*gateway.StripeCheckoutEvent, error) {
	if s.sigErr != nil {
		return nil, s.sigErr
	}
	return s.event, nil
}

type stubPaystack struct {
	lastReq    gateway.PaystackInitRequest
	validSig   bool
	verifyData *gateway.PaystackVerifyData
	verifyErr  error
}

func (p *stubPaystack) InitializeTransaction(ctx context.Context, reqBody gateway.PaystackInitRequest) (*gateway.PaystackInitData, error) {
	p.lastReq = reqBody
	return &gateway.PaystackInitData{
		AuthorizationURL: "https://checkout.paystack.com/" + reqBody.Reference,
		Reference:        reqBody.Reference,
	}, nil
}

func (p *stubPaystack) VerifyTransaction(ctx context.Context, reference string) (*gateway.PaystackVerifyData, error) {
	if p.verifyErr != nil {
		return nil, p.verifyErr
	}
	if p.verifyData != nil {
		return p.verifyData, nil
	}
	return &gateway.PaystackVerifyData{Status: "success", Reference: reference}, nil
}

func (p *stubPaystack) VerifySignature(payload []byte, signature string) bool {
	return p.validSig
}

type stubNowPayments struct {
	lastReq  gateway.NowPaymentsInvoiceRequest
	validSig bool
}

func (n *stubNowPayments) CreateInvoice(ctx context.Context, reqBody gateway.NowPaymentsInvoiceRequest) (*gateway.NowPaymentsInvoice, error) {
	n.lastReq = reqBody
	return &gateway.NowPaymentsInvoice{
		ID:         "inv-" + reqBody.OrderID,
		InvoiceURL: "https://nowpayments.io/payment/inv-" + reqBody.OrderID,
		OrderID:    reqBody.OrderID,
	}, nil
}

func (n *stubNowPayments) VerifyIPNSignature(payload []byte, signature string) bool {
	return n.validSig
}

// ---- exchange rate ----

type stubRateService struct {
	rate float64
	err  error
}

func (s *stubRateService) GetUSDToNGN(ctx context.Context) (float64, error) {
	return s.rate, s.err
}

// ---- fixtures ----

func testOrder(ref string) *model.Order {
	return &model.Order{
		OrderRef: ref,
		Customer: model.Customer{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
		},
		ShippingInfo: model.ShippingInfo{
			Address: "1 Analytical Way",
			City:    "London",
			State:   "LDN",
			ZipCode: "E1 6AN",
			Country: "UK",
		},
		BillingInfo: model.BillingInfo{SameAsShipping: true},
		Products: []model.OrderProduct{
			{
				ProductID: "node-one",
				Name:      "Node One",
				Quantity:  2,
				BasePrice: decimal.NewFromInt(500),
				Configuration: model.OrderConfiguration{
					Ram: &model.ConfiguredOption{Label: "32GB", Price: decimal.NewFromInt(100)},
				},
			},
		},
		Subtotal:      decimal.NewFromInt(1200),
		ShippingCost:  decimal.NewFromInt(20),
		Tax:           decimal.NewFromInt(80),
		Discount:      decimal.Zero,
		TotalPrice:    decimal.NewFromInt(1300),
		PaymentMethod: model.PaymentMethodCard,
		PaymentStatus: model.PaymentStatusPending,
		OrderStatus:   model.OrderStatusPending,
	}
}

func mustCreateOrder(repo *stubOrderRepo, order *model.Order) *model.Order {
	if err := repo.CreateOrder(context.Background(), order); err != nil {
		panic(fmt.Sprintf("failed to seed order: %v", err))
	}
	return order
}
