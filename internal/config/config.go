package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	TrustedProxies []string
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint  string
	PublicURL string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

// Enabled reports whether object storage has been configured.
func (c StorageConfig) Enabled() bool {
	return c.Endpoint != ""
}

type SecurityConfig struct {
	SessionSecret string
	SessionTTL    time.Duration
	ResetTokenTTL time.Duration
	BcryptCost    int
	CookieName    string
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// Enabled reports whether outbound email has been configured.
func (c MailConfig) Enabled() bool {
	return c.Host != ""
}

type InferenceConfig struct {
	Timeout              time.Duration
	MaxBodyBytes         int64
	UserAgent            string
	AllowPrivateNetworks bool
}

type RateLimitConfig struct {
	InquiryLimit  int
	InquiryWindow time.Duration
}

type QueueConfig struct {
	Stream        string
	Group         string
	Consumer      string
	ClaimInterval time.Duration
}

type UploadsConfig struct {
	MaxBytes        int64
	OrphanTTL       time.Duration
	CleanupSchedule string
}

type AppConfig struct {
	Environment      string
	BaseURL          string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Mail             MailConfig
	Inference        InferenceConfig
	RateLimit        RateLimitConfig
	Queue            QueueConfig
	Uploads          UploadsConfig
	AllowCORSOrigins []string
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("FLIPYARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings the API cannot start without.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Postgres.DSN == "" {
		errs = append(errs, errors.New("postgres.dsn is required"))
	}
	if len(c.Security.SessionSecret) < 32 {
		errs = append(errs, errors.New("security.sessionsecret must be at least 32 bytes"))
	}
	if c.Security.BcryptCost < 10 || c.Security.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("security.bcryptcost %d out of range", c.Security.BcryptCost))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("baseurl", "http://localhost:3000")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")
	v.SetDefault("http.trustedproxies", []string{})

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 5)
	v.SetDefault("postgres.connmaxlifetime", "30m")
	v.SetDefault("postgres.automigrate", true)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.publicurl", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucket", "flipyard-listings")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("security.sessionsecret", "")
	v.SetDefault("security.sessionttl", "168h") // 7 days
	v.SetDefault("security.resettokenttl", "1h")
	v.SetDefault("security.bcryptcost", 12)
	v.SetDefault("security.cookiename", "flipyard_session")

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "no-reply@flipyard.local")
	v.SetDefault("mail.timeout", "15s")

	v.SetDefault("inference.timeout", "8s")
	v.SetDefault("inference.maxbodybytes", 100000)
	v.SetDefault("inference.useragent", "FlipyardBot/1.0 (+https://flipyard.io/bot)")
	v.SetDefault("inference.allowprivatenetworks", false)

	v.SetDefault("ratelimit.inquirylimit", 5)
	v.SetDefault("ratelimit.inquirywindow", "1h")

	v.SetDefault("queue.stream", "flipyard:tasks")
	v.SetDefault("queue.group", "flipyard-workers")
	v.SetDefault("queue.consumer", "worker-1")
	v.SetDefault("queue.claiminterval", "30s")

	v.SetDefault("uploads.maxbytes", 5<<20)
	v.SetDefault("uploads.orphanttl", "24h")
	v.SetDefault("uploads.cleanupschedule", "0 0 * * * *") // hourly

	v.SetDefault("allowcorsorigins", []string{"http://localhost:3000"})
}
