package service

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/nodeforge1/nodeforge-website/internal/infra/gateway"
	"github.com/nodeforge1/nodeforge-website/internal/infra/producer"
	"github.com/nodeforge1/nodeforge-website/internal/infra/repository/db"
	"github.com/nodeforge1/nodeforge-website/internal/model"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/er"
)

// CheckoutRedirect 各金流商結帳入口, 前端拿到URL後redirect過去
type CheckoutRedirect struct {
	Provider    string `json:"provider"`
	OrderRef    string `json:"orderRef"`
	RedirectURL string `json:"redirectUrl"`
	SessionID   string `json:"sessionId,omitempty"`
	Reference   string `json:"reference,omitempty"`
}

type stripeGateway interface {
	CreateCheckoutSession(ctx context.Context, orderRef, customerEmail, successURL, cancelURL string, items []gateway.StripeLineItem) (*gateway.StripeSession, error)
}

type paystackGateway interface {
	InitializeTransaction(ctx context.Context, reqBody gateway.PaystackInitRequest) (*gateway.PaystackInitData, error)
	VerifyTransaction(ctx context.Context, reference string) (*gateway.PaystackVerifyData, error)
}

type nowPaymentsGateway interface {
	CreateInvoice(ctx context.Context, reqBody gateway.NowPaymentsInvoiceRequest) (*gateway.NowPaymentsInvoice, error)
}

// PaymentVerification 主動查核的結果
type PaymentVerification struct {
	OrderRef      string `json:"orderRef"`
	GatewayStatus string `json:"gatewayStatus"`
	PaymentStatus string `json:"paymentStatus"`
	Paid          bool   `json:"paid"`
}

type ICheckoutService interface {
	CreateStripeSession(ctx context.Context, orderRef string) (*CheckoutRedirect, error)
	CreatePaystackTransaction(ctx context.Context, orderRef string) (*CheckoutRedirect, error)
	CreateCryptoInvoice(ctx context.Context, orderRef, payCurrency string) (*CheckoutRedirect, error)
	VerifyPayment(ctx context.Context, reference string) (*PaymentVerification, error)
}

// CheckoutService 把已建立的訂單送進對應的金流商
// 金額一律以db內的訂單快照為準, 不信任client重送的金額
type CheckoutService struct {
	orderRepo     db.IOrderRepository
	stripe        stripeGateway
	paystack      paystackGateway
	nowPayments   nowPaymentsGateway
	rateService   IRateService
	eventProducer producer.IOrderEventProducer
	domain        string
}

func NewCheckoutService(
	orderRepo db.IOrderRepository,
	stripe stripeGateway,
	paystack paystackGateway,
	nowPayments nowPaymentsGateway,
	rateService IRateService,
	eventProducer producer.IOrderEventProducer,
	domain string,
) *CheckoutService {
	return &CheckoutService{
		orderRepo:     orderRepo,
		stripe:        stripe,
		paystack:      paystack,
		nowPayments:   nowPayments,
		rateService:   rateService,
		eventProducer: eventProducer,
		domain:        domain,
	}
}

// CreateStripeSession 建立Stripe Checkout Session
// line items由訂單快照組出來, 運費/稅金各自成行, 確保session總額等於訂單總額
// 錯誤:
//   - 404: 訂單不存在
//   - 409: 訂單已付款
//   - 502: 金流商呼叫失敗
func (s *CheckoutService) CreateStripeSession(ctx context.Context, orderRef string) (*CheckoutRedirect, error) {
	order, err := s.payableOrder(ctx, orderRef)
	if err != nil {
		return nil, err
	}

	items := make([]gateway.StripeLineItem, 0, len(order.Products)+2)
	for _, p := range order.Products {
		items = append(items, gateway.StripeLineItem{
			Name:       p.Name,
			UnitAmount: gateway.ToUnitAmount(configuredUnitPrice(p)),
			Quantity:   p.Quantity,
		})
	}
	if order.ShippingCost.IsPositive() {
		items = append(items, gateway.StripeLineItem{
			Name:       "Shipping",
			UnitAmount: gateway.ToUnitAmount(order.ShippingCost),
			Quantity:   1,
		})
	}
	if order.Tax.IsPositive() {
		items = append(items, gateway.StripeLineItem{
			Name:       "Tax",
			UnitAmount: gateway.ToUnitAmount(order.Tax),
			Quantity:   1,
		})
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, order.OrderRef, order.Customer.Email,
		s.successURL(order.OrderRef), s.cancelURL(order.OrderRef), items)
	if err != nil {
		return nil, wrapGatewayError(err)
	}

	if err := s.orderRepo.SetGatewayRef(ctx, order.ID, map[string]any{"stripe_session_id": session.ID}); err != nil {
		return nil, err
	}

	return &CheckoutRedirect{
		Provider:    "stripe",
		OrderRef:    order.OrderRef,
		RedirectURL: session.URL,
		SessionID:   session.ID,
	}, nil
}

// CreatePaystackTransaction 初始化Paystack交易
// Paystack收NGN, 訂單金額(USD)先換匯再轉kobo
// 錯誤:
//   - 404: 訂單不存在
//   - 409: 訂單已付款
//   - 502: 金流商或匯率API呼叫失敗
func (s *CheckoutService) CreatePaystackTransaction(ctx context.Context, orderRef string) (*CheckoutRedirect, error) {
	order, err := s.payableOrder(ctx, orderRef)
	if err != nil {
		return nil, err
	}

	rate, err := s.rateService.GetUSDToNGN(ctx)
	if err != nil {
		return nil, er.Newf(er.GatewayErrorCode, "failed to get exchange rate: %s", err)
	}

	amountNGN := order.TotalPrice.Mul(decimal.NewFromFloat(rate))
	amountKobo := amountNGN.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if amountKobo < 1 {
		return nil, er.New(er.BadRequestCode, "order amount too small for paystack")
	}

	data, err := s.paystack.InitializeTransaction(ctx, gateway.PaystackInitRequest{
		Email:       order.Customer.Email,
		Amount:      amountKobo,
		Reference:   order.OrderRef,
		Currency:    "NGN",
		CallbackURL: s.successURL(order.OrderRef),
		Metadata:    map[string]string{"order_ref": order.OrderRef},
	})
	if err != nil {
		return nil, wrapGatewayError(err)
	}

	return &CheckoutRedirect{
		Provider:    "paystack",
		OrderRef:    order.OrderRef,
		RedirectURL: data.AuthorizationURL,
		Reference:   data.Reference,
	}, nil
}

// CreateCryptoInvoice 建立NOWPayments加密貨幣invoice
// payCurrency空時由付款頁讓使用者自選幣別
// 錯誤:
//   - 404: 訂單不存在
//   - 409: 訂單已付款
//   - 502: 金流商呼叫失敗
func (s *CheckoutService) CreateCryptoInvoice(ctx context.Context, orderRef, payCurrency string) (*CheckoutRedirect, error) {
	order, err := s.payableOrder(ctx, orderRef)
	if err != nil {
		return nil, err
	}

	amount, _ := order.TotalPrice.Float64()
	if amount <= 0 || math.IsInf(amount, 0) {
		return nil, er.New(er.BadRequestCode, "invalid order amount")
	}

	invoice, err := s.nowPayments.CreateInvoice(ctx, gateway.NowPaymentsInvoiceRequest{
		PriceAmount:      amount,
		PriceCurrency:    "usd",
		PayCurrency:      payCurrency,
		OrderID:          order.OrderRef,
		OrderDescription: fmt.Sprintf("Order %s", order.OrderRef),
		IpnCallbackURL:   s.domain + "/api/v1/webhooks/nowpayments",
		SuccessURL:       s.successURL(order.OrderRef),
		CancelURL:        s.cancelURL(order.OrderRef),
	})
	if err != nil {
		return nil, wrapGatewayError(err)
	}

	if err := s.orderRepo.SetGatewayRef(ctx, order.ID, map[string]any{"payment_id": invoice.ID}); err != nil {
		return nil, err
	}

	return &CheckoutRedirect{
		Provider:    "nowpayments",
		OrderRef:    order.OrderRef,
		RedirectURL: invoice.InvoiceURL,
	}, nil
}

// VerifyPayment 主動向Paystack查核交易狀態
// 付款頁redirect回來時前端會呼叫這條, webhook晚到也能在這裡完成轉移
// 轉移與事件發佈跟webhook走同一條冪等路徑, 查核多次不會重複寄信
// 錯誤:
//   - 404: 訂單不存在
//   - 502: 金流商呼叫失敗
func (s *CheckoutService) VerifyPayment(ctx context.Context, reference string) (*PaymentVerification, error) {
	order, err := s.orderRepo.GetOrderByRef(ctx, reference)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, er.New(er.NotFoundCode, "order not found")
	}

	data, err := s.paystack.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, wrapGatewayError(err)
	}

	switch data.Status {
	case "success":
		if _, err := settlePayment(ctx, s.orderRepo, s.eventProducer, "paystack", reference); err != nil {
			return nil, err
		}
	case "failed", "abandoned":
		if _, err := s.orderRepo.FailPaymentByRef(ctx, reference); err != nil {
			return nil, err
		}
	}

	verified, err := s.orderRepo.GetOrderByRef(ctx, reference)
	if err != nil {
		return nil, err
	}
	if verified == nil {
		verified = order
	}

	return &PaymentVerification{
		OrderRef:      reference,
		GatewayStatus: data.Status,
		PaymentStatus: string(verified.PaymentStatus),
		Paid:          verified.PaymentStatus == model.PaymentStatusCompleted,
	}, nil
}

// payableOrder 取出可付款的訂單, 已completed的訂單不能重複發起結帳
func (s *CheckoutService) payableOrder(ctx context.Context, orderRef string) (*model.Order, error) {
	order, err := s.orderRepo.GetOrderByRef(ctx, orderRef)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, er.New(er.NotFoundCode, "order not found")
	}
	if order.PaymentStatus == model.PaymentStatusCompleted {
		return nil, er.New(er.ConflictCode, "order already paid")
	}
	return order, nil
}

func (s *CheckoutService) successURL(orderRef string) string {
	return fmt.Sprintf("%s/payment/success?order_ref=%s", s.domain, orderRef)
}

func (s *CheckoutService) cancelURL(orderRef string) string {
	return fmt.Sprintf("%s/payment/cancel?order_ref=%s", s.domain, orderRef)
}

// configuredUnitPrice 快照單價 = basePrice + 各選配加價
func configuredUnitPrice(p model.OrderProduct) decimal.Decimal {
	unit := p.BasePrice
	for _, opt := range []*model.ConfiguredOption{
		p.Configuration.Software, p.Configuration.Ram,
		p.Configuration.Storage, p.Configuration.Processor,
	} {
		if opt != nil {
			unit = unit.Add(opt.Price)
		}
	}
	return unit
}

// 金流商錯誤統一轉成502, 原始回應進error訊息供log
func wrapGatewayError(err error) error {
	return er.Newf(er.GatewayErrorCode, "payment gateway error: %s", err)
}

var _ ICheckoutService = (*CheckoutService)(nil)
