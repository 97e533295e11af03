package authkit

import (
	"time"

	"github.com/restodash/authkit/internal/audit"
	"github.com/restodash/authkit/internal/metrics"
	"github.com/restodash/authkit/kv"
	"github.com/restodash/authkit/session"
)

// Builder assembles a [Manager]. A Builder is single-use: Build
// consumes it and further calls return [ErrBuilderConsumed].
type Builder struct {
	cfg        Config
	identity   IdentityClient
	ephemeral  kv.Store
	remembered kv.Store
	sink       AuditSink
	hook       ForcedLogoutHook
	clock      func() time.Time
	built      bool
}

// New returns a Builder seeded with defaults.
func New() *Builder {
	return &Builder{
		cfg:   defaultConfig(),
		clock: time.Now,
	}
}

// WithConfig replaces the whole configuration tree. Zero-valued
// Session and Guard fields are filled back in from defaults.
func (b *Builder) WithConfig(cfg Config) *Builder {
	def := defaultConfig()
	if cfg.Session.StorageKey == "" {
		cfg.Session.StorageKey = def.Session.StorageKey
	}
	if cfg.Session.DefaultTTL == 0 {
		cfg.Session.DefaultTTL = def.Session.DefaultTTL
	}
	if cfg.Guard.ExpiryLeeway == 0 {
		cfg.Guard.ExpiryLeeway = def.Guard.ExpiryLeeway
	}
	if cfg.Guard.CheckInterval == 0 {
		cfg.Guard.CheckInterval = def.Guard.CheckInterval
	}
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = def.Audit.BufferSize
	}
	b.cfg = cloneConfig(cfg)
	return b
}

// WithIdentityClient sets the credential-exchange client. Required.
func (b *Builder) WithIdentityClient(c IdentityClient) *Builder {
	b.identity = c
	return b
}

// WithEphemeralStore sets the store for sessions that must not outlive
// the process. Defaults to an in-memory store.
func (b *Builder) WithEphemeralStore(s kv.Store) *Builder {
	b.ephemeral = s
	return b
}

// WithRememberedStore sets the durable store for "keep me logged in"
// sessions. Required.
func (b *Builder) WithRememberedStore(s kv.Store) *Builder {
	b.remembered = s
	return b
}

// WithAuditSink enables audit dispatch into the given sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	b.cfg.Audit.Enabled = sink != nil
	return b
}

// WithForcedLogoutHook registers the callback invoked after a forced
// logout completes.
func (b *Builder) WithForcedLogoutHook(hook ForcedLogoutHook) *Builder {
	b.hook = hook
	return b
}

// WithMetrics enables metric collection.
func (b *Builder) WithMetrics(enabled bool) *Builder {
	b.cfg.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms additionally records login latency. Implies
// metrics enabled.
func (b *Builder) WithLatencyHistograms() *Builder {
	b.cfg.Metrics.Enabled = true
	b.cfg.Metrics.EnableLatency = true
	return b
}

// Build validates the configuration and assembles the Manager.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, ErrBuilderConsumed
	}
	b.built = true

	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	if b.identity == nil {
		return nil, ErrIdentityClientRequired
	}
	if b.remembered == nil {
		return nil, ErrRememberedStoreRequired
	}
	if b.ephemeral == nil {
		b.ephemeral = kv.NewMemory()
	}

	m := &Manager{
		cfg:      cloneConfig(b.cfg),
		identity: b.identity,
		hook:     b.hook,
		now:      b.clock,
		state:    StateUninitialized,
	}
	m.metrics = metrics.New(metrics.Config{
		Enabled:       b.cfg.Metrics.Enabled,
		EnableLatency: b.cfg.Metrics.EnableLatency,
	})
	m.audit = audit.NewDispatcher(audit.Config{
		Enabled:    b.cfg.Audit.Enabled,
		BufferSize: b.cfg.Audit.BufferSize,
		DropIfFull: b.cfg.Audit.DropIfFull,
	}, b.sink)
	m.store = session.NewStore(b.ephemeral, b.remembered, b.cfg.Session.StorageKey, m.reportCorrupt)
	m.guard = &Guard{manager: m}

	return m, nil
}
