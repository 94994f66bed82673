package database

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
	"go.uber.org/zap"

	"github.com/noah-isme/gratitude-api/pkg/config"
	appErrors "github.com/noah-isme/gratitude-api/pkg/errors"
)

const disconnectTimeout = 5 * time.Second

// Handle is a live document store connection scoped to one database.
type Handle struct {
	client *mongo.Client
	db     *mongo.Database
	dead   atomic.Bool
}

// Client exposes the underlying driver client.
func (h *Handle) Client() *mongo.Client { return h.client }

// Database returns the configured database.
func (h *Handle) Database() *mongo.Database { return h.db }

// Collection returns a collection of the configured database.
func (h *Handle) Collection(name string) *mongo.Collection { return h.db.Collection(name) }

// Connector hands out handles for the duration of one logical operation.
type Connector interface {
	Acquire(ctx context.Context) (*Handle, error)
	Release(ctx context.Context, h *Handle, opErr error)
}

// Dialer opens a new driver client.
type Dialer func(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error)

// Option customises a Manager.
type Option func(*Manager)

// WithDialer replaces the default dialer.
func WithDialer(d Dialer) Option {
	return func(m *Manager) {
		if d != nil {
			m.dial = d
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Manager owns the connection policy. Under PolicyCached it keeps a single
// process-wide handle that is swapped wholesale once an operation reports a
// dead connection; under PolicyPerCall every Acquire dials and every Release
// disconnects.
type Manager struct {
	cfg    config.MongoConfig
	dial   Dialer
	logger *zap.Logger

	mu     sync.Mutex
	cached *Handle
}

// NewManager builds a Manager. No I/O happens until the first Acquire.
func NewManager(cfg config.MongoConfig, opts ...Option) *Manager {
	if cfg.Policy == "" {
		cfg.Policy = config.PolicyCached
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	m := &Manager{cfg: cfg, dial: dialMongo, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewManagerFromClient adopts an already connected client as the cached
// handle.
func NewManagerFromClient(client *mongo.Client, database string, opts ...Option) *Manager {
	m := NewManager(config.MongoConfig{Database: database, Policy: config.PolicyCached}, opts...)
	m.cached = newHandle(client, database)
	return m
}

// Policy reports the active connection policy.
func (m *Manager) Policy() string { return m.cfg.Policy }

// Acquire returns a live handle according to the configured policy.
func (m *Manager) Acquire(ctx context.Context) (*Handle, error) {
	if m.cfg.Policy == config.PolicyPerCall {
		return m.open(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cached != nil && !m.cached.dead.Load() {
		return m.cached, nil
	}
	if stale := m.cached; stale != nil {
		m.cached = nil
		go m.disconnect(context.Background(), stale)
	}

	h, err := m.open(ctx)
	if err != nil {
		return nil, err
	}
	m.cached = h
	return h, nil
}

// Release ends the caller's use of h. opErr is the operation's outcome and
// is used to detect dead cached connections.
func (m *Manager) Release(ctx context.Context, h *Handle, opErr error) {
	if h == nil {
		return
	}
	if m.cfg.Policy == config.PolicyPerCall {
		m.disconnect(ctx, h)
		return
	}
	if IsConnectionFailure(opErr) && h.dead.CompareAndSwap(false, true) {
		m.logger.Warn("cached document store connection marked dead", zap.Error(opErr))
	}
}

// Ping checks store reachability through the normal acquire/release path.
func (m *Manager) Ping(ctx context.Context) error {
	return WithHandle(ctx, m, func(h *Handle) error {
		return h.client.Ping(ctx, readpref.Primary())
	})
}

// Close tears down the cached handle. Safe to call more than once.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	h := m.cached
	m.cached = nil
	m.mu.Unlock()
	if h == nil {
		return nil
	}
	return h.client.Disconnect(ctx)
}

func (m *Manager) open(ctx context.Context) (*Handle, error) {
	if strings.TrimSpace(m.cfg.URI) == "" {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "document store connection string is not configured")
	}
	client, err := m.dial(ctx, m.cfg)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to connect to document store")
	}
	return newHandle(client, m.cfg.Database), nil
}

func (m *Manager) disconnect(ctx context.Context, h *Handle) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), disconnectTimeout)
	defer cancel()
	if err := h.client.Disconnect(ctx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		m.logger.Warn("failed to disconnect document store client", zap.Error(err))
	}
}

// WithHandle runs fn with an acquired handle and always releases it, also
// when fn fails or panics.
func WithHandle(ctx context.Context, c Connector, fn func(*Handle) error) (err error) {
	h, err := c.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			c.Release(ctx, h, nil)
			panic(r)
		}
		c.Release(ctx, h, err)
	}()
	return fn(h)
}

// IsConnectionFailure reports errors that mean the connection itself is
// unusable rather than the operation being rejected. A caller's own deadline
// or cancellation never condemns the shared handle.
func IsConnectionFailure(err error) bool {
	if err == nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	var selectionErr topology.ServerSelectionError
	return mongo.IsNetworkError(err) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		errors.Is(err, topology.ErrServerSelectionTimeout) ||
		errors.As(err, &selectionErr)
}

func newHandle(client *mongo.Client, database string) *Handle {
	return &Handle{client: client, db: client.Database(database)}
}

func dialMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
