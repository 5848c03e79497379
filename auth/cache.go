// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/gogama/reqx/failure"
	"github.com/gogama/reqx/request"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	// DefaultRefreshTimeout bounds a single credential refresh.
	DefaultRefreshTimeout = 30 * time.Second
	// DefaultLeeway is how long before its expiry a credential is
	// treated as expired.
	DefaultLeeway = 10 * time.Second
	// DefaultRefreshLimit is the number of refreshes per descriptor
	// allowed within DefaultRefreshWindow.
	DefaultRefreshLimit = 5
	// DefaultRefreshWindow is the window over which refreshes are
	// counted by the excessive-refresh guard.
	DefaultRefreshWindow = time.Minute
)

// A Refresher obtains a fresh credential for a descriptor, for example
// by running an OAuth token exchange.
//
// Implementations must be safe for concurrent use, although a Cache
// never runs two refreshes for the same descriptor at once.
type Refresher interface {
	Refresh(ctx context.Context, d request.AuthDescriptor) (Credential, error)
}

// The RefresherFunc type is an adapter to allow the use of ordinary
// functions as refreshers.
type RefresherFunc func(ctx context.Context, d request.AuthDescriptor) (Credential, error)

// Refresh returns f(ctx, d).
func (f RefresherFunc) Refresh(ctx context.Context, d request.AuthDescriptor) (Credential, error) {
	return f(ctx, d)
}

// CacheConfig configures a Cache. Zero fields take their defaults.
type CacheConfig struct {
	// RefreshTimeout bounds each refresh. The refresh runs detached from
	// the cancellation of the request which triggered it, since other
	// requests may be waiting on it.
	RefreshTimeout time.Duration
	// Leeway is how long before its expiry a credential is refreshed.
	Leeway time.Duration
	// RefreshLimit and RefreshWindow configure the excessive-refresh
	// guard: at most RefreshLimit refreshes per descriptor are started
	// within any RefreshWindow, with the budget replenished gradually.
	RefreshLimit  int
	RefreshWindow time.Duration
}

// A Cache holds at most one credential per descriptor and refreshes it
// on demand.
//
// Each descriptor moves through the states no credential, refreshing,
// valid, and expired. Refreshing is single-flight: a request needing a
// credential while a refresh for the same descriptor is outstanding
// waits for that refresh and shares its result, whether a credential
// or an error.
//
// A Cache must be created with NewCache and is safe for concurrent use.
type Cache struct {
	refresher Refresher
	timeout   time.Duration
	leeway    time.Duration
	limit     rate.Limit
	burst     int
	now       func() time.Time

	sfg   singleflight.Group
	mu    sync.Mutex
	slots map[request.AuthDescriptor]*slot
}

type slot struct {
	cred    Credential
	retired string // token of the credential most recently discarded
	limiter *rate.Limiter
}

// NewCache creates a credential cache which refreshes credentials
// using r.
func NewCache(r Refresher, cfg CacheConfig) *Cache {
	if r == nil {
		panic("reqx/auth: nil refresher")
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = DefaultRefreshTimeout
	}
	if cfg.Leeway < 0 {
		cfg.Leeway = 0
	} else if cfg.Leeway == 0 {
		cfg.Leeway = DefaultLeeway
	}
	if cfg.RefreshLimit <= 0 {
		cfg.RefreshLimit = DefaultRefreshLimit
	}
	if cfg.RefreshWindow <= 0 {
		cfg.RefreshWindow = DefaultRefreshWindow
	}
	return &Cache{
		refresher: r,
		timeout:   cfg.RefreshTimeout,
		leeway:    cfg.Leeway,
		limit:     rate.Every(cfg.RefreshWindow / time.Duration(cfg.RefreshLimit)),
		burst:     cfg.RefreshLimit,
		now:       time.Now,
		slots:     make(map[request.AuthDescriptor]*slot),
	}
}

// Get returns a valid credential for d, refreshing it first if there
// is none or it has expired.
//
// If a refresh is needed, Get waits for it until ctx is done. A waiter
// giving up does not cancel the refresh, which other waiters may share.
// Refresh failures are reported as failure.Authentication errors.
func (c *Cache) Get(ctx context.Context, d request.AuthDescriptor) (Credential, error) {
	if cred, ok := c.current(d); ok {
		return cred, nil
	}

	ch := c.sfg.DoChan(string(d), func() (any, error) {
		// Double-check: a refresh may have completed since the fast path.
		if cred, ok := c.current(d); ok {
			return cred, nil
		}
		return c.refresh(context.WithoutCancel(ctx), d)
	})

	select {
	case <-ctx.Done():
		return Credential{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Credential{}, res.Err
		}
		return res.Val.(Credential), nil
	}
}

// Store puts cred into the cache for d, replacing any credential there.
// Use Store to seed a cache with a credential obtained out of band.
func (c *Cache) Store(d request.AuthDescriptor, cred Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slotLocked(d).cred = cred
}

// Invalidate discards the credential held for d, so the next Get
// refreshes it.
func (c *Cache) Invalidate(d request.AuthDescriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s := c.slots[d]; s != nil {
		s.discardLocked()
	}
}

// InvalidateIf discards the credential held for d only if its token is
// token. It reports whether a credential was discarded.
//
// Use InvalidateIf when a server rejects a credential, so that a newer
// credential obtained by a concurrent request is not discarded.
func (c *Cache) InvalidateIf(d request.AuthDescriptor, token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slots[d]
	if s == nil || s.cred.Token == "" || s.cred.Token != token {
		return false
	}
	s.discardLocked()
	return true
}

// retired reports whether token belongs to the credential most recently
// discarded for d.
func (c *Cache) retired(d request.AuthDescriptor, token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slots[d]
	return s != nil && s.retired != "" && s.retired == token
}

func (s *slot) discardLocked() {
	if s.cred.Token != "" {
		s.retired = s.cred.Token
	}
	s.cred = Credential{}
}

func (c *Cache) current(d request.AuthDescriptor) (Credential, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slots[d]
	if s == nil || !s.cred.Valid(c.now(), c.leeway) {
		return Credential{}, false
	}
	return s.cred, true
}

func (c *Cache) slotLocked(d request.AuthDescriptor) *slot {
	s := c.slots[d]
	if s == nil {
		s = &slot{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.slots[d] = s
	}
	return s
}

func (c *Cache) refresh(ctx context.Context, d request.AuthDescriptor) (Credential, error) {
	c.mu.Lock()
	s := c.slotLocked(d)
	allowed := s.limiter.AllowN(c.now(), 1)
	c.mu.Unlock()
	if !allowed {
		return Credential{}, failure.New(failure.Authentication, failure.ExcessiveRefresh, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	cred, err := c.refresher.Refresh(ctx, d)
	if err != nil {
		if fe, ok := err.(*failure.Error); ok && fe.Kind == failure.Authentication {
			return Credential{}, fe
		}
		return Credential{}, failure.New(failure.Authentication, failure.RefreshFailed, err)
	}
	if cred.Token == "" {
		return Credential{}, failure.New(failure.Authentication, failure.MissingCredential, nil)
	}

	c.mu.Lock()
	s.cred = cred
	c.mu.Unlock()
	return cred, nil
}
