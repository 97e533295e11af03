package authkit

import (
	"errors"
	"time"

	"github.com/restodash/authkit/session"
)

// Config is the nested configuration tree consumed by [Builder.Build].
// Zero values are filled from defaults; Validate rejects combinations
// that cannot work.
type Config struct {
	Session SessionConfig
	Guard   GuardConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

// SessionConfig controls session persistence and lifetime fallback.
type SessionConfig struct {
	// StorageKey is the key sessions are stored under in both scopes.
	StorageKey string

	// DefaultTTL is the session lifetime used when the identity service
	// grant carries neither an expires_in nor a decodable exp claim.
	DefaultTTL time.Duration
}

// GuardConfig controls expiration enforcement.
type GuardConfig struct {
	// ExpiryLeeway treats a session as expired this long before its
	// actual ExpiresAt, so tokens are not presented seconds before the
	// backend would reject them.
	ExpiryLeeway time.Duration

	// CheckInterval is the period of [Guard.Watch].
	CheckInterval time.Duration
}

// AuditConfig controls the async audit pipeline.
type AuditConfig struct {
	Enabled    bool
	BufferSize int

	// DropIfFull makes Emit non-blocking; dropped events are counted
	// and reported via [Manager.AuditDropped].
	DropIfFull bool
}

// MetricsConfig controls metric collection.
type MetricsConfig struct {
	Enabled bool

	// EnableLatency additionally records login latency histograms.
	EnableLatency bool
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			StorageKey: session.DefaultKey,
			DefaultTTL: time.Hour,
		},
		Guard: GuardConfig{
			ExpiryLeeway:  5 * time.Minute,
			CheckInterval: 5 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are values; a shallow copy is a deep copy.
	return cfg
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.Session.StorageKey == "" {
		return errors.New("authkit: session storage key must not be empty")
	}
	if c.Session.DefaultTTL <= 0 {
		return errors.New("authkit: session default TTL must be positive")
	}
	if c.Guard.ExpiryLeeway < 0 {
		return errors.New("authkit: guard expiry leeway must not be negative")
	}
	if c.Guard.ExpiryLeeway >= c.Session.DefaultTTL {
		return errors.New("authkit: guard expiry leeway must be shorter than the default TTL")
	}
	if c.Guard.CheckInterval <= 0 {
		return errors.New("authkit: guard check interval must be positive")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("authkit: audit buffer size must be positive")
	}
	return nil
}
