package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Session    SessionConfig
	Transcribe TranscribeConfig
	Analyze    AnalyzeConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode is kept explicit so production deployments cannot silently
	// fall back to an unencrypted connection.
	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int
}

type AuthConfig struct {
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// SessionConfig bounds work-session duration accounting.
//
// DurationCap limits how much "active time" a still-open session can
// contribute to aggregate metrics. OrphanThreshold/OrphanCap drive the
// periodic sweep that closes sessions abandoned by crashed clients.
// The two caps are deliberately independent settings.
type SessionConfig struct {
	DurationCap     time.Duration
	OrphanThreshold time.Duration
	OrphanCap       time.Duration
	SweepInterval   time.Duration
}

// TranscribeConfig configures the speech-to-text proxy.
type TranscribeConfig struct {
	APIKey          string
	BaseURL         string
	Language        string
	PollInterval    time.Duration
	MaxPollAttempts int
}

// AnalyzeConfig configures the LLM gateway used for call-pattern analysis.
type AnalyzeConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := mustInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	c.Auth.JWTIssuer = strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	c.Auth.JWTAudience = strings.TrimSpace(os.Getenv("JWT_AUDIENCE"))
	// Duration env vars are optional; defaults applied in Validate().
	c.Auth.AccessTokenTTL = optDuration("JWT_ACCESS_TTL")
	c.Auth.RefreshTokenTTL = optDuration("JWT_REFRESH_TTL")

	c.Session.DurationCap = optDuration("SESSION_DURATION_CAP")
	c.Session.OrphanThreshold = optDuration("SESSION_ORPHAN_THRESHOLD")
	c.Session.OrphanCap = optDuration("SESSION_ORPHAN_CAP")
	c.Session.SweepInterval = optDuration("SESSION_SWEEP_INTERVAL")

	c.Transcribe.APIKey = os.Getenv("TRANSCRIBE_API_KEY")
	c.Transcribe.BaseURL = strings.TrimSpace(os.Getenv("TRANSCRIBE_BASE_URL"))
	c.Transcribe.Language = strings.TrimSpace(os.Getenv("TRANSCRIBE_LANGUAGE"))
	c.Transcribe.PollInterval = optDuration("TRANSCRIBE_POLL_INTERVAL")
	{
		v := strings.TrimSpace(os.Getenv("TRANSCRIBE_MAX_POLL_ATTEMPTS"))
		if v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				parseErrs = append(parseErrs, fmt.Errorf("TRANSCRIBE_MAX_POLL_ATTEMPTS must be an integer, got %q", v))
			}
			c.Transcribe.MaxPollAttempts = n
		}
	}

	c.Analyze.APIKey = os.Getenv("ANALYZE_API_KEY")
	c.Analyze.BaseURL = strings.TrimSpace(os.Getenv("ANALYZE_BASE_URL"))
	c.Analyze.Model = strings.TrimSpace(os.Getenv("ANALYZE_MODEL"))
	{
		v := strings.TrimSpace(os.Getenv("ANALYZE_MAX_TOKENS"))
		if v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				parseErrs = append(parseErrs, fmt.Errorf("ANALYZE_MAX_TOKENS must be an integer, got %q", v))
			}
			c.Analyze.MaxTokens = n
		}
	}

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if strings.TrimSpace(c.DB.SSLMode) == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.IsProduction() {
		if c.Auth.JWTIssuer == "" {
			errs = append(errs, errors.New("JWT_ISSUER is required in production"))
		}
		if c.Auth.JWTAudience == "" {
			errs = append(errs, errors.New("JWT_AUDIENCE is required in production"))
		}
	}

	if c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		c.Auth.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must be greater than JWT_ACCESS_TTL"))
	}

	// Dashboard duration accounting caps open sessions at 12h; the orphan
	// sweep uses the tighter 8h threshold/cap pair. See internal/session.
	if c.Session.DurationCap <= 0 {
		c.Session.DurationCap = 12 * time.Hour
	}
	if c.Session.OrphanThreshold <= 0 {
		c.Session.OrphanThreshold = 8 * time.Hour
	}
	if c.Session.OrphanCap <= 0 {
		c.Session.OrphanCap = 8 * time.Hour
	}
	if c.Session.SweepInterval <= 0 {
		c.Session.SweepInterval = 30 * time.Minute
	}
	if c.Session.OrphanCap > c.Session.OrphanThreshold {
		errs = append(errs, errors.New("SESSION_ORPHAN_CAP must not exceed SESSION_ORPHAN_THRESHOLD"))
	}

	if c.Transcribe.BaseURL == "" {
		c.Transcribe.BaseURL = "https://api.gladia.io"
	}
	if c.Transcribe.Language == "" {
		c.Transcribe.Language = "fr"
	}
	if c.Transcribe.PollInterval <= 0 {
		c.Transcribe.PollInterval = 5 * time.Second
	}
	if c.Transcribe.MaxPollAttempts <= 0 {
		c.Transcribe.MaxPollAttempts = 60
	}
	if c.IsProduction() && c.Transcribe.APIKey == "" {
		errs = append(errs, errors.New("TRANSCRIBE_API_KEY is required in production"))
	}

	if c.Analyze.BaseURL == "" {
		c.Analyze.BaseURL = "https://ai.gateway.lovable.dev"
	}
	if c.Analyze.Model == "" {
		c.Analyze.Model = "google/gemini-3-flash-preview"
	}
	if c.Analyze.MaxTokens <= 0 {
		c.Analyze.MaxTokens = 2000
	}
	if c.IsProduction() && c.Analyze.APIKey == "" {
		errs = append(errs, errors.New("ANALYZE_API_KEY is required in production"))
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
