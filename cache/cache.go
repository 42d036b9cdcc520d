package cache

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"querygpt/models"
)

const (
	sessionPrefix  = "session:"
	inflightPrefix = "inflight:"
)

// Session is the UI state owned by one browser session.
type Session struct {
	Upload models.UploadState
	Chat   models.ChatState
	Toast  *models.Toast
}

type sessionEntry struct {
	mu      sync.Mutex
	session Session
}

type Cache struct {
	cache    *cache.Cache
	guardTTL time.Duration
}

// New creates a cache whose sessions expire after ttl of inactivity. In-flight
// guards expire after guardTTL so a lost release cannot lock a form forever.
func New(ttl, guardTTL time.Duration) *Cache {
	return &Cache{
		cache:    cache.New(ttl, 2*ttl),
		guardTTL: guardTTL,
	}
}

func (c *Cache) entry(id string) *sessionEntry {
	key := sessionPrefix + id
	if v, ok := c.cache.Get(key); ok {
		e := v.(*sessionEntry)
		c.cache.SetDefault(key, e) // slide expiry
		return e
	}
	e := &sessionEntry{}
	if err := c.cache.Add(key, e, cache.DefaultExpiration); err != nil {
		if v, ok := c.cache.Get(key); ok {
			return v.(*sessionEntry)
		}
		c.cache.SetDefault(key, e)
	}
	return e
}

// Load returns a snapshot of the session's state.
func (c *Cache) Load(id string) Session {
	e := c.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Update mutates the session's state under its lock.
func (c *Cache) Update(id string, fn func(s *Session)) {
	e := c.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.session)
}

// TakeToast returns the pending notification, if any, and clears it so it is
// rendered exactly once.
func (c *Cache) TakeToast(id string) *models.Toast {
	e := c.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.session.Toast
	e.session.Toast = nil
	return t
}

// Acquire marks key as in flight. It returns false when a request for key is
// already outstanding.
func (c *Cache) Acquire(key string) bool {
	return c.cache.Add(inflightPrefix+key, struct{}{}, c.guardTTL) == nil
}

func (c *Cache) Release(key string) {
	c.cache.Delete(inflightPrefix + key)
}

func (c *Cache) InFlight(key string) bool {
	_, ok := c.cache.Get(inflightPrefix + key)
	return ok
}
