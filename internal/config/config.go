package config

import (
	"log"
	"sync"

	"github.com/fsnotify/fsnotify"
	viper "github.com/spf13/viper"
)

/*
把init config跟read config分開
init : 需要設置viper watch 與 onConfigChange
read : 一般讀取需要使用讀寫鎖
*/
var configSingleton *ConfigSingleTon
var muonce sync.Once

type ConfigSingleTon struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	Domain     string `mapstructure:"DOMAIN"` // 前端網域, 用於gateway redirect url

	DbName string `mapstructure:"POSTGRES_DB"`
	DbHost string `mapstructure:"POSTGRES_HOST"`
	DbPort string `mapstructure:"POSTGRES_PORT"`
	DbUser string `mapstructure:"POSTGRES_USER"`
	DbPas  string `mapstructure:"POSTGRES_PASSWORD"`

	RedisHost string `mapstructure:"REDIS_HOST"`
	RedisPort string `mapstructure:"REDIS_PORT"`
	RedisPas  string `mapstructure:"REDIS_PASSWORD"`

	KafkaBrokers   string `mapstructure:"KAFKA_BROKERS"`
	OrderPaidTopic string `mapstructure:"ORDER_PAID_TOPIC"`
	OrderPaidGroup string `mapstructure:"ORDER_PAID_GROUP"`

	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`

	PaystackSecretKey string `mapstructure:"PAYSTACK_SECRET_KEY"`

	NowPaymentsApiKey    string `mapstructure:"NOWPAYMENTS_API_KEY"`
	NowPaymentsApiURL    string `mapstructure:"NOWPAYMENTS_API_URL"`
	NowPaymentsIpnSecret string `mapstructure:"NOWPAYMENTS_IPN_SECRET"`

	ExchangeRateApiKey string `mapstructure:"EXCHANGE_RATE_API_KEY"`

	AdminEmail        string `mapstructure:"ADMIN_EMAIL"`
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"` // bcrypt hash

	SmtpHost     string `mapstructure:"SMTP_HOST"`
	SmtpPort     string `mapstructure:"SMTP_PORT"`
	EmailAccount string `mapstructure:"EMAIL_ACCOUNT"`
	SmtpAuthKey  string `mapstructure:"SMTP_AUTH_KEY"`
	SenderName   string `mapstructure:"SENDER_NAME"`

	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"` // 逗號分隔
}

func GetConfig() *Config {
	initConfig()
	configSingleton.mu.RLock()
	defer configSingleton.mu.RUnlock()
	return configSingleton.Config
}

func initConfig() {
	if configSingleton == nil {
		muonce.Do(func() {
			configSingleton = &ConfigSingleTon{}
			if cf, err := loadConfig(); err == nil {
				configSingleton.Config = cf
			} else {
				log.Fatal("error reading config")
			}
			viper.WatchConfig()
			viper.OnConfigChange(func(e fsnotify.Event) {
				if cf, err := loadConfig(); err == nil {
					configSingleton.mu.Lock()
					configSingleton.Config = cf
					configSingleton.mu.Unlock()
				} else {
					log.Println("failed to reload config file")
				}
			})
		})
	}
}

/*
單純回傳錯誤, 由外部決定要不要Fatal, 畢竟有可能有替代方案
*/
func loadConfig() (cf *Config, err error) {
	cf = &Config{}
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(cf)
	if err != nil {
		return
	}
	return
}
