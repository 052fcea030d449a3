package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Estrategias de reconciliación soportadas.
const (
	StrategyPull = "pull" // un GET por recurso tras el fin de la ejecución
	StrategyPush = "push" // payload combinado devuelto por la acción que inicia la ejecución
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Backend BackendConfig
	Fetch   FetchConfig
	JWT     JWTConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig configuración del servidor HTTP del dashboard.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BackendConfig ubicación de los endpoints del backend de supply-chain.
// MetricsPath vacío desactiva el slot opcional de métricas en el refresco pull.
type BackendConfig struct {
	BaseURL        string
	InventoryPath  string
	OrdersPath     string
	ViolationsPath string
	MetricsPath    string
	RunPath        string
	StreamPath     string
	Strategy       string // pull | push
}

// FetchConfig reintentos y circuit breaker de las consultas de recursos.
// No aplica al stream ni a GET /run: esas llamadas lanzan el job y nunca se reintentan.
type FetchConfig struct {
	Timeout          time.Duration
	MaxRetries       int
	RetryInitial     time.Duration
	BreakerThreshold int
	BreakerOpen      time.Duration
}

// JWTConfig configuración del token de operador. Secret vacío = disparo de ejecución sin auth.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, BACKEND_BASE_URL, RECONCILE_STRATEGY, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return FromViper(v)
}

// FromViper construye la configuración a partir de una instancia de Viper ya poblada.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "supplychain-dashboard"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Backend: BackendConfig{
			BaseURL:        strings.TrimRight(getString(v, "BACKEND_BASE_URL", "http://localhost:5000"), "/"),
			InventoryPath:  getString(v, "BACKEND_INVENTORY_PATH", "/inventory"),
			OrdersPath:     getString(v, "BACKEND_ORDERS_PATH", "/purchase-orders"),
			ViolationsPath: getString(v, "BACKEND_VIOLATIONS_PATH", "/sla-violations"),
			MetricsPath:    getString(v, "BACKEND_METRICS_PATH", ""),
			RunPath:        getString(v, "BACKEND_RUN_PATH", "/run"),
			StreamPath:     getString(v, "BACKEND_STREAM_PATH", "/run-full-stream"),
			Strategy:       strings.ToLower(getString(v, "RECONCILE_STRATEGY", StrategyPull)),
		},
		Fetch: FetchConfig{
			Timeout:          time.Duration(getInt(v, "FETCH_TIMEOUT_SECONDS", 10)) * time.Second,
			MaxRetries:       getInt(v, "FETCH_MAX_RETRIES", 2),
			RetryInitial:     time.Duration(getInt(v, "FETCH_RETRY_INITIAL_MS", 200)) * time.Millisecond,
			BreakerThreshold: getInt(v, "BREAKER_FAILURE_THRESHOLD", 5),
			BreakerOpen:      time.Duration(getInt(v, "BREAKER_OPEN_SECONDS", 30)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 480),
			Issuer:     getString(v, "JWT_ISSUER", "supplychain-dashboard"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rechaza combinaciones que dejarían el núcleo sin poder arrancar una ejecución.
func (c *Config) Validate() error {
	switch c.Backend.Strategy {
	case StrategyPull, StrategyPush:
	default:
		return fmt.Errorf("config: RECONCILE_STRATEGY inválida %q (pull|push)", c.Backend.Strategy)
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: BACKEND_BASE_URL inválida %q", c.Backend.BaseURL)
	}
	if c.Backend.StreamPath == "" {
		return fmt.Errorf("config: BACKEND_STREAM_PATH es obligatorio")
	}
	if c.Fetch.MaxRetries < 0 {
		return fmt.Errorf("config: FETCH_MAX_RETRIES no puede ser negativo")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("config: HTTP_PORT fuera de rango: %d", c.HTTP.Port)
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
