// Package cache implements the stampede-safe, TTL-jittered key/value cache
// that sits in front of the currency, FX and rate card stores.
//
// Per-key lifecycle: Absent -> Loading -> Present(ttl) -> Expired -> Absent,
// with Bust moving Present (or Loading) straight back to Absent.
package cache

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SscSPs/pricing_engine/internal/apperrors"
	"github.com/SscSPs/pricing_engine/internal/platform/metrics"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

const (
	shardCount = 32

	// DefaultJitterFraction spreads expiry over ttl ± 15%.
	DefaultJitterFraction = 0.15
	maxJitterFraction     = 0.5
)

// errSuperseded reports a flight whose token no longer owns the key.
var errSuperseded = errors.New("cache load superseded")

// Loader fetches the value for a key on a miss. The context it receives is
// detached from the caller's cancellation.
type Loader func(ctx context.Context) (any, error)

// Options configures a Coordinator. Zero values pick sensible defaults.
type Options struct {
	JitterFraction float64
	LoadTimeout    time.Duration
	Clock          clockwork.Clock
	// Rand returns a float in [0, 1). Tests pin it to make expiry exact.
	Rand      func() float64
	Metrics   metrics.Sink
	Logger    *slog.Logger
	Publisher BustPublisher
}

// Coordinator is safe for concurrent use. Keys are independent: each lives in
// one of shardCount shards with its own lock, and there is no global lock.
// Cached values are shared between callers and must be treated as immutable.
type Coordinator struct {
	shards      [shardCount]*shard
	group       singleflight.Group
	seq         atomic.Uint64
	clock       clockwork.Clock
	jitter      float64
	loadTimeout time.Duration
	randFloat   func() float64
	metrics     metrics.Sink
	logger      *slog.Logger

	pubMu     sync.RWMutex
	publisher BustPublisher
}

type entry struct {
	value     any
	token     uint64
	createdAt time.Time
	expiresAt time.Time
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]*entry
	// loading maps a key to the token of its current in-flight load.
	loading map[string]uint64
}

// New creates a Coordinator.
func New(opts Options) *Coordinator {
	c := &Coordinator{
		clock:       opts.Clock,
		jitter:      opts.JitterFraction,
		loadTimeout: opts.LoadTimeout,
		randFloat:   opts.Rand,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		publisher:   opts.Publisher,
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.jitter < 0 {
		c.jitter = 0
	}
	if c.jitter > maxJitterFraction {
		c.jitter = maxJitterFraction
	}
	if c.randFloat == nil {
		c.randFloat = rand.Float64
	}
	if c.metrics == nil {
		c.metrics = metrics.Nop{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	for i := range c.shards {
		c.shards[i] = &shard{
			entries: make(map[string]*entry),
			loading: make(map[string]uint64),
		}
	}
	return c
}

// SetPublisher attaches the cross-instance bust publisher after construction.
func (c *Coordinator) SetPublisher(p BustPublisher) {
	c.pubMu.Lock()
	c.publisher = p
	c.pubMu.Unlock()
}

// Key joins key segments with ':'. The first segment names the operation in metrics.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

func operationOf(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}

func (c *Coordinator) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return c.shards[h.Sum32()%shardCount]
}

// GetOrLoad returns the cached value for key, or runs loader exactly once
// across all concurrent callers for the same key and caches its result for
// ttl plus jitter. Failures are returned to every waiter and never cached.
//
// If ctx ends while waiting, GetOrLoad returns the context error; the shared
// load keeps running for the other waiters.
func (c *Coordinator) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader Loader) (any, error) {
	value, err := c.getOrLoad(ctx, key, ttl, loader)
	if errors.Is(err, errSuperseded) {
		// The flight this caller joined finished before it started waiting.
		value, err = c.getOrLoad(ctx, key, ttl, loader)
	}
	if errors.Is(err, errSuperseded) {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrCacheLoadFailure, key, err)
	}
	return value, err
}

func (c *Coordinator) getOrLoad(ctx context.Context, key string, ttl time.Duration, loader Loader) (any, error) {
	op := operationOf(key)
	s := c.shardFor(key)

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if ok && c.clock.Now().Before(e.expiresAt) {
		c.metrics.Inc(metrics.CacheHit, op)
		return e.value, nil
	}

	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		if c.clock.Now().Before(e.expiresAt) {
			s.mu.Unlock()
			c.metrics.Inc(metrics.CacheHit, op)
			return e.value, nil
		}
		delete(s.entries, key)
	}
	token, joined := s.loading[key]
	if !joined {
		token = c.seq.Add(1)
		s.loading[key] = token
	}
	s.mu.Unlock()

	if joined {
		c.metrics.Inc(metrics.CacheCoalesced, op)
	}

	ch := c.group.DoChan(key+"#"+strconv.FormatUint(token, 10), func() (any, error) {
		return c.load(ctx, s, key, token, ttl, loader)
	})

	select {
	case res := <-ch:
		if errors.Is(res.Err, errSuperseded) {
			return nil, res.Err
		}
		if res.Err != nil {
			c.metrics.Inc(metrics.CacheError, op)
			return nil, res.Err
		}
		c.metrics.Inc(metrics.CacheMiss, op)
		return res.Val, nil
	case <-ctx.Done():
		c.metrics.Inc(metrics.CacheError, op)
		return nil, fmt.Errorf("cache: waiting for %q: %w", key, ctx.Err())
	}
}

func (c *Coordinator) load(ctx context.Context, s *shard, key string, token uint64, ttl time.Duration, loader Loader) (value any, err error) {
	op := operationOf(key)

	// A caller that took its token just before the previous flight finished
	// lands here after the value is already stored.
	s.mu.RLock()
	if e, ok := s.entries[key]; ok && e.token == token && c.clock.Now().Before(e.expiresAt) {
		s.mu.RUnlock()
		return e.value, nil
	}
	// Otherwise the token must still own the key, or a second loader would
	// run next to the current one.
	if s.loading[key] != token {
		s.mu.RUnlock()
		return nil, errSuperseded
	}
	s.mu.RUnlock()

	loadCtx := context.WithoutCancel(ctx)
	if c.loadTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(loadCtx, c.loadTimeout)
		defer cancel()
	}

	start := c.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("loader panic: %v", r)
		}
		c.metrics.Observe(metrics.CacheLoadDuration, op, c.clock.Since(start))
		err = c.finish(s, key, token, ttl, value, err)
		if err != nil {
			value = nil
		}
	}()

	return loader(loadCtx)
}

// finish clears the in-flight marker and stores a successful value, unless a
// bust superseded this load while it ran.
func (c *Coordinator) finish(s *shard, key string, token uint64, ttl time.Duration, value any, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.loading[key] == token
	if current {
		delete(s.loading, key)
	}

	if err != nil {
		c.logger.Warn("Cache load failed", slog.String("key", key), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %s: %w", apperrors.ErrCacheLoadFailure, key, err)
	}

	if current && ttl > 0 {
		now := c.clock.Now()
		s.entries[key] = &entry{
			value:     value,
			token:     token,
			createdAt: now,
			expiresAt: now.Add(c.jittered(ttl)),
		}
	}
	return nil
}

func (c *Coordinator) jittered(ttl time.Duration) time.Duration {
	if c.jitter == 0 {
		return ttl
	}
	offset := float64(ttl) * c.jitter * (2*c.randFloat() - 1)
	return ttl + time.Duration(offset)
}

// Bust removes key and abandons any in-flight load for it, so the next
// GetOrLoad invokes its loader. The bust is also published to other instances.
func (c *Coordinator) Bust(ctx context.Context, key string) int {
	n := c.apply(BustMessage{Key: key})
	c.publish(ctx, BustMessage{Key: key})
	return n
}

// BustPrefix removes every key starting with prefix.
func (c *Coordinator) BustPrefix(ctx context.Context, prefix string) int {
	n := c.apply(BustMessage{Key: prefix, Prefix: true})
	c.publish(ctx, BustMessage{Key: prefix, Prefix: true})
	return n
}

// ApplyRemote applies a bust received from another instance without
// re-publishing it.
func (c *Coordinator) ApplyRemote(msg BustMessage) int {
	return c.apply(msg)
}

func (c *Coordinator) apply(msg BustMessage) int {
	match := func(k string) bool { return k == msg.Key }
	if msg.Prefix {
		match = func(k string) bool { return strings.HasPrefix(k, msg.Key) }
	}

	shards := c.shards[:]
	if !msg.Prefix {
		shards = []*shard{c.shardFor(msg.Key)}
	}

	removed := 0
	for _, s := range shards {
		s.mu.Lock()
		for k := range s.entries {
			if match(k) {
				delete(s.entries, k)
				removed++
			}
		}
		for k := range s.loading {
			if match(k) {
				delete(s.loading, k)
			}
		}
		s.mu.Unlock()
	}

	c.metrics.Inc(metrics.CacheBust, operationOf(msg.Key))
	c.logger.Debug("Cache bust applied",
		slog.String("key", msg.Key),
		slog.Bool("prefix", msg.Prefix),
		slog.Int("removed", removed))
	return removed
}

func (c *Coordinator) publish(ctx context.Context, msg BustMessage) {
	c.pubMu.RLock()
	p := c.publisher
	c.pubMu.RUnlock()
	if p == nil {
		return
	}
	if err := p.PublishBust(ctx, msg); err != nil {
		// local state is already consistent; peers fall back to TTL expiry
		c.logger.Error("Failed to publish cache bust",
			slog.String("key", msg.Key),
			slog.String("error", err.Error()))
	}
}

// Sweep drops expired entries and returns how many were removed.
func (c *Coordinator) Sweep() int {
	now := c.clock.Now()
	removed := 0
	for _, s := range c.shards {
		s.mu.Lock()
		for k, e := range s.entries {
			if !now.Before(e.expiresAt) {
				delete(s.entries, k)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// RunJanitor sweeps every interval until ctx is done.
func (c *Coordinator) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if n := c.Sweep(); n > 0 {
				c.logger.Debug("Cache janitor swept expired entries", slog.Int("removed", n))
			}
		}
	}
}

// Len returns the number of stored entries, expired ones included.
func (c *Coordinator) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

// ExpiresAt reports when key expires, for diagnostics and tests.
func (c *Coordinator) ExpiresAt(key string) (time.Time, bool) {
	s := c.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return time.Time{}, false
	}
	return e.expiresAt, true
}

// GetOrLoad is the typed form of Coordinator.GetOrLoad.
func GetOrLoad[T any](ctx context.Context, c *Coordinator, key string, ttl time.Duration, loader func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return loader(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: value for %q has type %T", key, v)
	}
	return typed, nil
}
