package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // зона app.timezone должна грузиться и в образе без zoneinfo

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config — корневая структура конфигурации веб-фронтенда.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	API       APIConfig       `mapstructure:"api"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Favorites FavoritesConfig `mapstructure:"favorites"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// AppConfig — общие настройки приложения.
type AppConfig struct {
	Env      string `mapstructure:"env"`      // dev, prod
	Timezone string `mapstructure:"timezone"` // в этой зоне считаются даты публикаций
	AssetURL string `mapstructure:"asset_url"`
}

// ServerConfig описывает настройки HTTP-сервера.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	MetricsPort     int           `mapstructure:"metrics_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// APIConfig описывает удаленный REST бэкенд и конверт надежности вокруг него.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`

	// Повторы только для идемпотентных GET. 1 — без повторов.
	ReadAttempts uint          `mapstructure:"read_attempts"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"`

	RateLimit float64 `mapstructure:"rate_limit"` // запросов в секунду
	RateBurst int     `mapstructure:"rate_burst"`

	// Настройки Circuit Breaker
	CBMaxRequests         uint32        `mapstructure:"cb_max_requests"`
	CBInterval            time.Duration `mapstructure:"cb_interval"`
	CBTimeout             time.Duration `mapstructure:"cb_timeout"`
	CBConsecutiveFailures uint32        `mapstructure:"cb_consecutive_failures"`
}

// RedisConfig описывает хранилище клиентского состояния.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig — cookie клиента и (необязательная) проверка подписи JWT.
type AuthConfig struct {
	CookieName    string        `mapstructure:"cookie_name"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`
	CookieMaxAge  time.Duration `mapstructure:"cookie_max_age"`
	VerifyKeyPath string        `mapstructure:"verify_key_path"` // RSA public key (PEM)
	HMACSecret    string        `mapstructure:"hmac_secret"`
	VerifyKey     []byte
}

// FavoritesConfig — жизнь кэшей на клиента в памяти.
type FavoritesConfig struct {
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig инициализирует конфигурацию, объединяя значения из файла и ENV.
func LoadConfig() (*Config, error) {
	// В dev подтягиваем .env, в проде переменные приходят из окружения
	if os.Getenv("APP_ENV") == "dev" {
		_ = godotenv.Load()
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// API_BASE_URL перекроет api.base_url
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Если файла нет — работаем на ENV и дефолтах
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	cfg.Auth.VerifyKey = loadKeyResource(cfg.Auth.VerifyKeyPath, "AUTH_VERIFY_KEY_DATA")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate отсекает конфигурации, с которыми сервер не стартует.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url is required")
	}
	if c.Auth.CookieName == "" {
		return errors.New("auth.cookie_name is required")
	}
	if c.App.Timezone != "" {
		if _, err := time.LoadLocation(c.App.Timezone); err != nil {
			return fmt.Errorf("app.timezone %q: %w", c.App.Timezone, err)
		}
	}
	if c.API.ReadAttempts == 0 {
		c.API.ReadAttempts = 1
	}
	return nil
}

// Location — зона, в которой интерпретируются даты публикаций.
// Имя зоны уже проверено в Validate.
func (c *Config) Location() *time.Location {
	if c.App.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.timezone", "America/Sao_Paulo")
	v.SetDefault("app.asset_url", "/static/imagens/")

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.read_attempts", 1)
	v.SetDefault("api.retry_delay", 200*time.Millisecond)
	v.SetDefault("api.rate_limit", 50.0)
	v.SetDefault("api.rate_burst", 20)
	v.SetDefault("api.cb_max_requests", 3)
	v.SetDefault("api.cb_interval", 5*time.Second)
	v.SetDefault("api.cb_timeout", 30*time.Second)
	v.SetDefault("api.cb_consecutive_failures", 5)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("auth.cookie_name", "gj_client")
	v.SetDefault("auth.cookie_max_age", 30*24*time.Hour)

	v.SetDefault("favorites.idle_ttl", 30*time.Minute)
	v.SetDefault("favorites.sweep_interval", time.Minute)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
}

// loadKeyResource: ключ прямо в ENV (Docker/K8s) или файл по пути из конфига
func loadKeyResource(path string, envDataKey string) []byte {
	if data := os.Getenv(envDataKey); data != "" {
		return []byte(data)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			return data
		}
	}
	return nil
}
