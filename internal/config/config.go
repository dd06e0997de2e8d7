package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Pending state store backends
const (
	StateStoreMemory = "memory"
	StateStoreRedis  = "redis"
)

// Rate limit store backends
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// DefaultRedirectURITemplate is rendered per provider when OAUTH_REDIRECT_URI_TEMPLATE is unset.
const DefaultRedirectURITemplate = "/oauth/{provider}/callback"

// ProviderConfig holds the client registration for one OAuth provider
type ProviderConfig struct {
	Enabled      bool
	ClientID     string
	ClientSecret string
	Scopes       []string
	UsePKCE      bool
}

type Config struct {
	// Server settings
	ServerAddr            string
	BaseURL               string
	IsProduction          bool
	ServerShutdownTimeout time.Duration

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string
	DBInitTimeout  time.Duration

	// Identity of the caller, issued by the upstream login service
	SessionSecret string
	SessionMaxAge int // seconds
	AuthJWTSecret string

	// Token custody
	TokenEncryptionKey string

	// Pending state (anti-forgery) settings
	StateStore           string // "memory" or "redis"
	StateTTL             time.Duration
	StateGracePeriod     time.Duration
	StateCleanupInterval time.Duration

	// Redis (state store and rate limiting)
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisConnTimeout time.Duration

	// OAuth HTTP client settings
	OAuthExchangeTimeout    time.Duration
	OAuthInsecureSkipVerify bool

	// Redirect handling
	RedirectURITemplate string // may contain {provider}
	CallbackRedirectURL string // browser landing page after the callback, optional

	// Providers
	GitHub    ProviderConfig
	GitLab    ProviderConfig
	GitLabURL string // self-hosted GitLab base URL, empty for gitlab.com
	Jira      ProviderConfig

	// Rate limiting
	EnableRateLimit   bool
	RateLimitStore    string
	ConnectRateLimit  int // requests per minute per IP
	CallbackRateLimit int

	// Metrics
	MetricsEnabled             bool
	MetricsToken               string
	MetricsGaugeUpdateEnabled  bool
	MetricsGaugeUpdateInterval time.Duration

	// Audit logging
	EnableAuditLogging   bool
	AuditLogRetention    time.Duration
	AuditLogBufferSize   int
	AuditShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "connectgate.db"))
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	baseURL := strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/")

	return &Config{
		ServerAddr:            getEnv("SERVER_ADDR", ":8080"),
		BaseURL:               baseURL,
		IsProduction:          getEnv("ENVIRONMENT", "development") == "production",
		ServerShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,
		DBInitTimeout:  getEnvDuration("DB_INIT_TIMEOUT", 30*time.Second),

		SessionSecret: getEnv("SESSION_SECRET", "session-secret-change-in-production"),
		SessionMaxAge: getEnvInt("SESSION_MAX_AGE", 86400),
		AuthJWTSecret: getEnv("AUTH_JWT_SECRET", ""),

		TokenEncryptionKey: getEnv("TOKEN_ENCRYPTION_KEY", ""),

		StateStore:           getEnv("STATE_STORE", StateStoreMemory),
		StateTTL:             getEnvDuration("STATE_TTL", 10*time.Minute),
		StateGracePeriod:     getEnvDuration("STATE_GRACE_PERIOD", 10*time.Minute),
		StateCleanupInterval: getEnvDuration("STATE_CLEANUP_INTERVAL", time.Minute),

		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		RedisConnTimeout: getEnvDuration("REDIS_CONN_TIMEOUT", 5*time.Second),

		OAuthExchangeTimeout:    getEnvDuration("OAUTH_EXCHANGE_TIMEOUT", 10*time.Second),
		OAuthInsecureSkipVerify: getEnvBool("OAUTH_INSECURE_SKIP_VERIFY", false),

		RedirectURITemplate: getEnv(
			"OAUTH_REDIRECT_URI_TEMPLATE",
			baseURL+DefaultRedirectURITemplate,
		),
		CallbackRedirectURL: getEnv("OAUTH_CALLBACK_REDIRECT_URL", ""),

		GitHub: ProviderConfig{
			Enabled:      getEnvBool("GITHUB_OAUTH_ENABLED", false),
			ClientID:     getEnv("GITHUB_CLIENT_ID", ""),
			ClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
			Scopes:       getEnvSlice("GITHUB_SCOPES", []string{"repo", "read:user"}),
			UsePKCE:      getEnvBool("GITHUB_USE_PKCE", false),
		},
		GitLab: ProviderConfig{
			Enabled:      getEnvBool("GITLAB_OAUTH_ENABLED", false),
			ClientID:     getEnv("GITLAB_CLIENT_ID", ""),
			ClientSecret: getEnv("GITLAB_CLIENT_SECRET", ""),
			Scopes:       getEnvSlice("GITLAB_SCOPES", []string{"read_user", "read_api"}),
			UsePKCE:      getEnvBool("GITLAB_USE_PKCE", true),
		},
		GitLabURL: strings.TrimRight(getEnv("GITLAB_URL", ""), "/"),
		Jira: ProviderConfig{
			Enabled:      getEnvBool("JIRA_OAUTH_ENABLED", false),
			ClientID:     getEnv("JIRA_CLIENT_ID", ""),
			ClientSecret: getEnv("JIRA_CLIENT_SECRET", ""),
			Scopes: getEnvSlice(
				"JIRA_SCOPES",
				[]string{"read:jira-work", "read:jira-user", "offline_access"},
			),
			UsePKCE: getEnvBool("JIRA_USE_PKCE", false),
		},

		EnableRateLimit:   getEnvBool("ENABLE_RATE_LIMIT", true),
		RateLimitStore:    getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		ConnectRateLimit:  getEnvInt("CONNECT_RATE_LIMIT", 20),
		CallbackRateLimit: getEnvInt("CALLBACK_RATE_LIMIT", 30),

		MetricsEnabled:             getEnvBool("METRICS_ENABLED", false),
		MetricsToken:               getEnv("METRICS_TOKEN", ""),
		MetricsGaugeUpdateEnabled:  getEnvBool("METRICS_GAUGE_UPDATE_ENABLED", true),
		MetricsGaugeUpdateInterval: getEnvDuration("METRICS_GAUGE_UPDATE_INTERVAL", 5*time.Minute),

		EnableAuditLogging:   getEnvBool("ENABLE_AUDIT_LOGGING", true),
		AuditLogRetention:    getEnvDuration("AUDIT_LOG_RETENTION", 90*24*time.Hour),
		AuditLogBufferSize:   getEnvInt("AUDIT_LOG_BUFFER_SIZE", 1000),
		AuditShutdownTimeout: getEnvDuration("AUDIT_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// Validate checks the configuration for values the server cannot start with
func (c *Config) Validate() error {
	if c.StateStore != StateStoreMemory && c.StateStore != StateStoreRedis {
		return fmt.Errorf(
			"invalid STATE_STORE value: %q (must be %q or %q)",
			c.StateStore, StateStoreMemory, StateStoreRedis,
		)
	}
	if c.RateLimitStore != RateLimitStoreMemory && c.RateLimitStore != RateLimitStoreRedis {
		return fmt.Errorf(
			"invalid RATE_LIMIT_STORE value: %q (must be %q or %q)",
			c.RateLimitStore, RateLimitStoreMemory, RateLimitStoreRedis,
		)
	}
	if c.StateTTL <= 0 {
		return errors.New("STATE_TTL must be positive")
	}
	if c.StateGracePeriod < 0 {
		return errors.New("STATE_GRACE_PERIOD must not be negative")
	}
	if c.OAuthExchangeTimeout <= 0 {
		return errors.New("OAUTH_EXCHANGE_TIMEOUT must be positive")
	}
	if c.TokenEncryptionKey == "" {
		return errors.New("TOKEN_ENCRYPTION_KEY is required to store provider tokens")
	}
	if len(c.TokenEncryptionKey) < 32 {
		return errors.New("TOKEN_ENCRYPTION_KEY must be at least 32 characters")
	}
	if c.IsProduction && c.SessionSecret == "session-secret-change-in-production" {
		return errors.New("SESSION_SECRET must be changed in production")
	}
	if c.CallbackRedirectURL != "" && !strings.HasPrefix(c.CallbackRedirectURL, "http") {
		return fmt.Errorf(
			"invalid OAUTH_CALLBACK_REDIRECT_URL value: %q (must be an absolute URL)",
			c.CallbackRedirectURL,
		)
	}
	return nil
}

// RedirectURI renders the redirect URI template for a provider
func (c *Config) RedirectURI(provider string) string {
	return strings.ReplaceAll(c.RedirectURITemplate, "{provider}", provider)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		if parts := splitAndTrim(value, ","); len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
