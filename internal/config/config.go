// Package config provides the structures and the loader for the application
// configuration. All secrets are read here once and threaded into the
// constructors that need them; business logic never touches the environment.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration object.
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	AdminCode               string `yaml:"admin_code"`
	HTTPServer              `yaml:"http_server"`
	RedisConnection         `yaml:"redis_connection"`
	JWT                     `yaml:"jwt"`
	Verification            `yaml:"verification"`
	Billing                 `yaml:"billing"`
	SMTP                    `yaml:"smtp"`
	Rabbit                  `yaml:"rabbit"`
	ObjectStore             `yaml:"object_store"`
	Upload                  `yaml:"upload"`
}

// HTTPServer holds the listener settings.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection holds the cache connection settings.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWT holds the two signing secrets and their lifetimes. Access and refresh
// tokens are signed with different secrets.
type JWT struct {
	AccessSecret  string        `yaml:"access_secret"`
	AccessTTL     time.Duration `yaml:"access_ttl" env-default:"168h"`
	RefreshSecret string        `yaml:"refresh_secret"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl" env-default:"720h"`
}

// Verification configures the one-time email-confirmation token.
type Verification struct {
	EmailTokenTTL time.Duration `yaml:"email_token_ttl" env-default:"24h"`
	BaseURL       string        `yaml:"base_url"`
}

// Billing configures the payment-provider client and webhook validation.
type Billing struct {
	APIURL        string        `yaml:"api_url"`
	SecretKey     string        `yaml:"secret_key"`
	WebhookSecret string        `yaml:"webhook_secret"`
	SuccessURL    string        `yaml:"success_url"`
	CancelURL     string        `yaml:"cancel_url"`
	Timeout       time.Duration `yaml:"timeout" env-default:"10s"`
}

// SMTP configures the outbound mail transport.
type SMTP struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass"`
}

// Rabbit configures the message broker for outgoing notifications.
type Rabbit struct {
	RabbitURL  string `yaml:"rabbit_url"`
	EmailQueue string `yaml:"email_queue" env-default:"verification_emails"`
}

// ObjectStore configures the MinIO-compatible store for uploaded binaries.
type ObjectStore struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket" env-default:"edilconnect"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Upload is the file-upload policy, enforced before persistence.
type Upload struct {
	MaxSizeBytes     int64    `yaml:"max_size_bytes" env-default:"10485760"`
	AllowedMimeTypes []string `yaml:"allowed_mime_types"`
}

// MustLoad loads the configuration from the file named by CONFIG_PATH and
// exits the process on failure.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
