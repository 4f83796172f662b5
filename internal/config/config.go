package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Provider
	ProviderType       string        `envconfig:"PROVIDER_TYPE" default:"deepface"`
	DeepFaceURL        string        `envconfig:"DEEPFACE_URL" default:"http://localhost:5001"`
	DeepFaceTimeout    time.Duration `envconfig:"DEEPFACE_TIMEOUT" default:"30s"`
	DeepFaceRetries    int           `envconfig:"DEEPFACE_RETRIES" default:"2"`
	EnrollmentPrecheck string        `envconfig:"ENROLLMENT_PRECHECK" default:"none"`
	AWSRegion          string        `envconfig:"AWS_REGION" default:"us-east-1"`

	// Cache
	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD"`
	RedisDB        int           `envconfig:"REDIS_DB" default:"0"`
	RosterCacheTTL time.Duration `envconfig:"ROSTER_CACHE_TTL" default:"10m"`

	// Attendance
	AttendanceTimezone string  `envconfig:"ATTENDANCE_TIMEZONE" default:"UTC"`
	MatchThreshold     float64 `envconfig:"MATCH_THRESHOLD" default:"0.60"`
	MatchGap           float64 `envconfig:"MATCH_GAP" default:"0.05"`
	MaxTrainingSamples int     `envconfig:"MAX_TRAINING_SAMPLES" default:"10"`

	// Security
	JWTSecret          string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer          string        `envconfig:"JWT_ISSUER" default:"chamada-api"`
	JWTTTL             time.Duration `envconfig:"JWT_TTL" default:"24h"`
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express as tags.
func (c *Config) Validate() error {
	switch c.ProviderType {
	case "deepface", "mock":
	default:
		return fmt.Errorf("PROVIDER_TYPE must be deepface or mock, got %q", c.ProviderType)
	}

	switch c.EnrollmentPrecheck {
	case "none", "rekognition":
	default:
		return fmt.Errorf("ENROLLMENT_PRECHECK must be none or rekognition, got %q", c.EnrollmentPrecheck)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.MatchThreshold <= 0 || c.MatchThreshold >= 2 {
		return fmt.Errorf("MATCH_THRESHOLD must be in (0, 2), got %v", c.MatchThreshold)
	}
	if c.MatchGap < 0 {
		return fmt.Errorf("MATCH_GAP must not be negative, got %v", c.MatchGap)
	}
	if c.MaxTrainingSamples < 1 {
		return fmt.Errorf("MAX_TRAINING_SAMPLES must be at least 1, got %d", c.MaxTrainingSamples)
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}

	return nil
}

// Location resolves ATTENDANCE_TIMEZONE.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.AttendanceTimezone)
	if err != nil {
		return nil, fmt.Errorf("ATTENDANCE_TIMEZONE: %w", err)
	}
	return loc, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
