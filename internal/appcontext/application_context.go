package appcontext

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/nodeforge1/nodeforge-website/internal/config"
	"github.com/nodeforge1/nodeforge-website/internal/infra/consumer"
	"github.com/nodeforge1/nodeforge-website/internal/infra/gateway"
	"github.com/nodeforge1/nodeforge-website/internal/infra/producer"
	"github.com/nodeforge1/nodeforge-website/internal/infra/repository/db"
	"github.com/nodeforge1/nodeforge-website/internal/infra/repository/redis_repo"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/limiter"
	"github.com/nodeforge1/nodeforge-website/internal/service"
)

// ApplicationContext 集中建構所有依賴, main只負責組http server跟訊號處理
type ApplicationContext struct {
	Cf          *config.Config
	DbDao       *db.DbDao
	RedisClient *redis.Client

	ProductService  service.IProductService
	CartService     service.ICartService
	OrderService    service.IOrderService
	CheckoutService service.ICheckoutService
	WebhookService  service.IWebhookService
	RateService     service.IRateService
	AuthService     service.IAuthService
	MailService     *service.MailService

	RateBucket    *limiter.RsTokenBucket
	EventProducer producer.IOrderEventProducer
	EventConsumer *consumer.OrderEventConsumer
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{Cf: cf}
	if err := app.init(); err != nil {
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) init() error {
	if err := app.setUpDb(); err != nil {
		return err
	}
	if err := app.setUpRedis(); err != nil {
		return err
	}
	app.setUpKafka()
	app.setUpServices()
	return nil
}

func (app *ApplicationContext) setUpDb() error {
	log.Info().Msg("start setup database connection")
	conn, err := db.GetDbConn(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}
	app.DbDao = db.NewDbDao(conn)

	if err := app.DbDao.InitMigrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info().Msg("finish setup database connection")
	return nil
}

func (app *ApplicationContext) setUpRedis() error {
	log.Info().Msg("start setup redis connection")
	app.RedisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", app.Cf.RedisHost, app.Cf.RedisPort),
		Password: app.Cf.RedisPas,
	})
	if err := app.RedisClient.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("failed to connect redis: %w", err)
	}
	log.Info().Msg("finish setup redis connection")
	return nil
}

func (app *ApplicationContext) setUpKafka() {
	log.Info().Msg("start setup kafka producer")
	brokers := strings.Split(app.Cf.KafkaBrokers, ",")
	app.EventProducer = producer.NewOrderEventProducer(brokers, app.Cf.OrderPaidTopic)
	log.Info().Msg("finish setup kafka producer")
}

func (app *ApplicationContext) setUpServices() {
	productRepo := db.NewProductRepo(app.DbDao)
	orderRepo := db.NewOrderRepo(app.DbDao)
	cartRepo := redis_repo.NewCartRepo(app.RedisClient)
	sessionRepo := redis_repo.NewSessionRepo(app.RedisClient)
	idemRepo := redis_repo.NewIdempotencyRepo(app.RedisClient)
	rateCache := redis_repo.NewRateCacheRepo(app.RedisClient)

	stripeClient := gateway.NewStripeClient(app.Cf.StripeSecretKey, app.Cf.StripeWebhookSecret)
	paystackClient := gateway.NewPaystackClient(app.Cf.PaystackSecretKey)
	nowPaymentsClient := gateway.NewNowPaymentsClient(app.Cf.NowPaymentsApiKey, app.Cf.NowPaymentsApiURL, app.Cf.NowPaymentsIpnSecret)
	exchangeRateClient := gateway.NewExchangeRateClient(app.Cf.ExchangeRateApiKey)

	app.RateService = service.NewRateService(exchangeRateClient, rateCache)

	app.ProductService = service.NewProductService(productRepo)
	app.CartService = service.NewCartService(cartRepo, productRepo)
	app.OrderService = service.NewOrderService(orderRepo, idemRepo)
	app.CheckoutService = service.NewCheckoutService(orderRepo, stripeClient, paystackClient,
		nowPaymentsClient, app.RateService, app.EventProducer, app.Cf.Domain)
	app.WebhookService = service.NewWebhookService(orderRepo, stripeClient, paystackClient,
		nowPaymentsClient, app.EventProducer)
	app.AuthService = service.NewAuthService(app.Cf.AdminEmail, app.Cf.AdminPasswordHash, sessionRepo)
	app.MailService = service.NewMailService(app.Cf.SmtpHost, app.Cf.SmtpPort,
		app.Cf.EmailAccount, app.Cf.SmtpAuthKey, app.Cf.SenderName)

	app.RateBucket = limiter.NewRsTokenBucket(app.RedisClient, nil)

	brokers := strings.Split(app.Cf.KafkaBrokers, ",")
	consumerLogger := log.With().Str("component", "order_event_consumer").Logger()
	app.EventConsumer = consumer.NewOrderEventConsumer(brokers, app.Cf.OrderPaidTopic,
		app.Cf.OrderPaidGroup, app.MailService, &consumerLogger)
}

// AllowedOrigins CORS白名單, 逗號分隔的設定值
func (app *ApplicationContext) AllowedOrigins() []string {
	origins := strings.Split(app.Cf.AllowedOrigins, ",")
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		out = append(out, app.Cf.Domain)
	}
	return out
}

func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	log.Info().Msg("start application shutdown")

	done := make(chan error, 1)
	go func() {
		defer close(done)

		if app.EventConsumer != nil {
			log.Info().Msg("stopping event consumer...")
			app.EventConsumer.Stop()
		}

		if app.EventProducer != nil {
			log.Info().Msg("closing event producer...")
			if err := app.EventProducer.Close(); err != nil {
				log.Error().Err(err).Msg("event producer shutdown error")
			}
		}

		if app.RedisClient != nil {
			log.Info().Msg("closing redis connection...")
			if err := app.RedisClient.Close(); err != nil {
				log.Error().Err(err).Msg("redis shutdown error")
			}
		}

		if app.DbDao != nil {
			log.Info().Msg("closing database connection...")
			if sqlDB, err := app.DbDao.DB.DB(); err == nil {
				sqlDB.Close()
			}
		}

		log.Info().Msg("application shutdown complete")
		done <- nil
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}
}
