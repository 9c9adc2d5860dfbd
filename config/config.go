package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/joy095/settlement/logger"
	"github.com/shopspring/decimal"
)

// CostPolicy decides which quote costs are taken out of a settlement amount.
type CostPolicy string

const (
	CostPolicyNone        CostPolicy = "none"
	CostPolicyDeductQuote CostPolicy = "deduct_quote"
)

var defaultCountries = []string{"US", "GB", "DE", "FR", "IT", "ES", "CA", "AU", "JP", "NL"}

// Settings holds everything the service reads from the environment.
type Settings struct {
	Port               string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	FirstLevelRate     decimal.Decimal
	SupportedCountries []string
	CostPolicy         CostPolicy
	LockTTL            time.Duration
	SettlementRate     string // ulule limiter format, e.g. "10-1m"

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
}

var loadOnce sync.Once

// LoadEnv loads a .env file once if present. Real environment variables win.
func LoadEnv() {
	loadOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			logger.InfoLogger.Info("No .env file found, using process environment")
		}
	})
}

// Load builds Settings from the environment, applying defaults.
func Load() (*Settings, error) {
	s := &Settings{
		Port:           getEnv("PORT", "8081"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		CostPolicy:     CostPolicy(strings.ToLower(getEnv("SETTLEMENT_COST_POLICY", string(CostPolicyNone)))),
		SettlementRate: getEnv("RATE_LIMIT_SETTLEMENT", "10-1m"),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:       getEnv("SMTP_FROM", "no-reply@settlement.local"),
	}

	rate, err := decimal.NewFromString(getEnv("FIRST_LEVEL_COMMISSION_RATE", "0.02"))
	if err != nil {
		return nil, fmt.Errorf("invalid FIRST_LEVEL_COMMISSION_RATE: %w", err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("FIRST_LEVEL_COMMISSION_RATE must be within [0, 1], got %s", rate)
	}
	s.FirstLevelRate = rate

	switch s.CostPolicy {
	case CostPolicyNone, CostPolicyDeductQuote:
	default:
		return nil, fmt.Errorf("unknown SETTLEMENT_COST_POLICY %q", s.CostPolicy)
	}

	s.SupportedCountries = ParseCountries(os.Getenv("SUPPORTED_COUNTRIES"))

	ttl, err := time.ParseDuration(getEnv("SETTLEMENT_LOCK_TTL", "5m"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("invalid SETTLEMENT_LOCK_TTL %q", os.Getenv("SETTLEMENT_LOCK_TTL"))
	}
	s.LockTTL = ttl

	s.SMTPPort = 587
	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &s.SMTPPort); err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", raw, err)
		}
	}

	if s.JWTSecret == "" {
		logger.WarnLogger.Warn("JWT_SECRET not set; using an insecure development secret")
		s.JWTSecret = "default-insecure-secret-only-for-development"
	}

	return s, nil
}

// ParseCountries turns "us, gb,DE" into upper-case codes, falling back to the defaults.
func ParseCountries(raw string) []string {
	var out []string
	for _, c := range strings.Split(raw, ",") {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultCountries...)
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
