package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nodeforge1/nodeforge-website/internal/api/handler"
	"github.com/nodeforge1/nodeforge-website/internal/api/middleware"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/limiter"
	"github.com/nodeforge1/nodeforge-website/internal/service"
)

type Handlers struct {
	Product  *handler.ProductHandler
	Cart     *handler.CartHandler
	Order    *handler.OrderHandler
	Checkout *handler.CheckoutHandler
	Webhook  *handler.WebhookHandler
	Rate     *handler.RateHandler
	Admin    *handler.AdminHandler
}

// New 組出完整的route tree
// webhook路由不掛rate limit, 金流商重送時不能被限流擋掉
func New(h Handlers, authService service.IAuthService, bucket *limiter.RsTokenBucket, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Session-Id", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		// 公開路由
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(bucket))

			r.Get("/products", h.Product.ListProducts)
			r.Get("/products/{productID}", h.Product.GetProduct)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.GetCart)
				r.Delete("/", h.Cart.ClearCart)
				r.Post("/items", h.Cart.AddItem)
				r.Patch("/items/{itemID}", h.Cart.UpdateItem)
				r.Delete("/items/{itemID}", h.Cart.RemoveItem)
			})

			r.Post("/orders", h.Order.CreateOrder)
			r.Get("/orders/{orderRef}", h.Order.GetOrderByRef)

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/stripe", h.Checkout.StripeCheckout)
				r.Post("/paystack", h.Checkout.PaystackCheckout)
				r.Post("/crypto", h.Checkout.CryptoCheckout)
				r.Get("/verify/{reference}", h.Checkout.VerifyPayment)
			})

			r.Get("/rates/usd-ngn", h.Rate.GetUSDToNGN)
		})

		// 金流商回呼
		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/stripe", h.Webhook.Stripe)
			r.Post("/paystack", h.Webhook.Paystack)
			r.Post("/nowpayments", h.Webhook.NowPayments)
		})

		// 後台路由, login以外都要過session驗證
		r.Route("/admin", func(r chi.Router) {
			r.With(middleware.RateLimit(bucket)).Post("/login", h.Admin.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminAuth(authService))

				r.Post("/logout", h.Admin.Logout)
				r.Get("/dashboard", h.Order.Dashboard)

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", h.Order.ListOrders)
					r.Get("/{id}", h.Order.GetOrder)
					r.Patch("/{id}", h.Order.UpdateOrderStatus)
					r.Delete("/{id}", h.Order.DeleteOrder)
				})

				r.Route("/products", func(r chi.Router) {
					r.Post("/", h.Product.CreateProduct)
					r.Put("/{productID}", h.Product.UpdateProduct)
					r.Delete("/{productID}", h.Product.DeleteProduct)
				})
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
