package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "sjsage522/taglikeworker/pkg/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the application configuration
type Config struct {
	// Tags to process, in order
	Tags []string `validate:"required,min=1,dive,required"`

	// Site layout
	SiteURL string `validate:"required,url"`

	// Listing collection
	ScrollCount  int           `validate:"min=0"`
	ScrollSettle time.Duration `validate:"min=0"`

	// Decision policy
	MinLikes       int `validate:"min=0"`
	MaxLikes       int `validate:"gtfield=MinLikes"`
	PromoThreshold int `validate:"min=0"`

	// Run shaping
	MaxItemsPerTag int  `validate:"min=0"`
	DryRun         bool
	RunInterval    time.Duration `validate:"min=0"`

	// Browser configuration
	ChromeAddr     string
	ChromeHeadless bool
	ChromeProxy    string
	NavTimeout     time.Duration `validate:"min=0"`

	// Redis configuration
	RedisAddr            string
	RedisDB              int `validate:"min=0"`
	RedisStream          string
	RedisStreamMaxLength int `validate:"min=0"`

	// Memcache configuration
	MemcacheAddr string
	VisitTTL     time.Duration `validate:"min=0"`

	// Environment
	Environment string
}

// Default policy values
const (
	DefaultScrollCount    = 20
	DefaultMinLikes       = 3
	DefaultMaxLikes       = 50
	DefaultPromoThreshold = 10
)

// LoadConfig loads the configuration from environment variables with
// defaults. A variable that is set but does not parse is reported instead of
// being replaced by a zero value.
func LoadConfig() (*Config, error) {
	p := &envParser{}

	scrollCount := p.intVar("SCROLL_COUNT", DefaultScrollCount)
	scrollSettleMs := p.intVar("SCROLL_SETTLE_MS", 1500)
	minLikes := p.intVar("MIN_LIKES", DefaultMinLikes)
	maxLikes := p.intVar("MAX_LIKES", DefaultMaxLikes)
	promoThreshold := p.intVar("PROMO_THRESHOLD", DefaultPromoThreshold)
	maxItems := p.intVar("MAX_ITEMS_PER_TAG", 0)
	runInterval := p.intVar("RUN_INTERVAL_SECONDS", 0)
	navTimeout := p.intVar("NAV_TIMEOUT_SECONDS", 30)
	redisDB := p.intVar("REDIS_DB", 0)
	streamMaxLength := p.intVar("REDIS_STREAM_MAX_LENGTH", 10000)
	visitTTL := p.intVar("VISIT_TTL_SECONDS", 3600)
	dryRun := p.boolVar("DRY_RUN", false)
	headless := p.boolVar("CHROME_HEADLESS", false)

	if err := p.err(); err != nil {
		return nil, err
	}

	siteURL := getEnv("SITE_URL", "https://www.instagram.com/")
	if !strings.HasSuffix(siteURL, "/") {
		siteURL += "/"
	}

	cfg := &Config{
		Tags:                 ParseTags(getEnv("TAGS", "tourism,everydaylife")),
		SiteURL:              siteURL,
		ScrollCount:          scrollCount,
		ScrollSettle:         time.Duration(scrollSettleMs) * time.Millisecond,
		MinLikes:             minLikes,
		MaxLikes:             maxLikes,
		PromoThreshold:       promoThreshold,
		MaxItemsPerTag:       maxItems,
		DryRun:               dryRun,
		RunInterval:          time.Duration(runInterval) * time.Second,
		ChromeAddr:           os.Getenv("CHROME_ADDR"),
		ChromeHeadless:       headless,
		ChromeProxy:          os.Getenv("CHROME_PROXY"),
		NavTimeout:           time.Duration(navTimeout) * time.Second,
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "likeworker:decisions"),
		RedisStreamMaxLength: streamMaxLength,
		MemcacheAddr:         os.Getenv("MEMCACHE_ADDR"),
		VisitTTL:             time.Duration(visitTTL) * time.Second,
		Environment:          getEnv("APP_ENVIRONMENT", "development"),
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.NewConfiguration("invalid configuration", err)
	}
	return nil
}

// ParseTags splits a comma separated tag list, dropping blanks and any
// leading '#'.
func ParseTags(raw string) []string {
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// envParser reads typed variables and remembers every malformed one
type envParser struct {
	errs []error
}

func (p *envParser) intVar(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s=%q: %w", key, raw, err))
		return defaultValue
	}
	return v
}

func (p *envParser) boolVar(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s=%q: %w", key, raw, err))
		return defaultValue
	}
	return v
}

func (p *envParser) err() error {
	if len(p.errs) == 0 {
		return nil
	}
	return apperrors.NewConfiguration("malformed environment", errors.Join(p.errs...))
}
