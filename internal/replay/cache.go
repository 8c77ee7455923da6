// ABOUTME: Thread-safe TTL cache of responses keyed by idempotency key
// ABOUTME: Lets the API replay a create instead of inserting a duplicate row

package replay

import (
	"container/list"
	"net/http"
	"sync"
	"time"
)

// Response is a captured HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Outcome is the result of Claim.
type Outcome int

const (
	// Claimed means the caller owns the key and must Put or Release it.
	Claimed Outcome = iota
	// Replayed means a stored response was returned.
	Replayed
	// InFlight means another request holds the key.
	InFlight
)

type entry struct {
	stored  time.Time
	resp    Response
	element *list.Element
}

// Cache holds at most maxSize responses, each for ttl. The oldest entry is
// evicted first when the cache is full.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	pending map[string]struct{}
	order   *list.List // keys, oldest at front
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	done    chan struct{}
	closed  bool
}

// New creates a cache and starts a goroutine that sweeps expired entries.
// Call Close to stop it.
func New(ttl time.Duration, maxSize int) *Cache {
	if maxSize < 1 {
		maxSize = 1
	}
	c := &Cache{
		entries: make(map[string]*entry),
		pending: make(map[string]struct{}),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

// Get returns the response stored under key if it has not expired.
func (c *Cache) Get(key string) (Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.expired(e) {
		return Response{}, false
	}
	return e.resp, true
}

// Claim atomically checks key and reserves it when it is neither stored nor
// held by another request. The stored response is returned with Replayed.
func (c *Cache) Claim(key string) (Response, Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && !c.expired(e) {
		return e.resp, Replayed
	}
	if _, ok := c.pending[key]; ok {
		return Response{}, InFlight
	}
	c.pending[key] = struct{}{}
	return Response{}, Claimed
}

// Release drops a reservation made by Claim without storing a response.
func (c *Cache) Release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, key)
}

// Put stores resp under key, replacing any previous response, and clears
// any reservation on key.
func (c *Cache) Put(key string, resp Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.pending, key)

	if e, ok := c.entries[key]; ok {
		e.stored = c.now()
		e.resp = resp
		c.order.MoveToBack(e.element)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &entry{
		stored:  c.now(),
		resp:    resp,
		element: c.order.PushBack(key),
	}
}

// Len reports the number of stored responses, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops the sweeper. Safe to call more than once.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}

func (c *Cache) expired(e *entry) bool {
	return c.now().Sub(e.stored) >= c.ttl
}

// evictOldest must be called with mu held.
func (c *Cache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	key, _ := front.Value.(string)
	c.order.Remove(front)
	delete(c.entries, key)
}

func (c *Cache) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.done:
			return
		}
	}
}

func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if c.expired(e) {
			c.order.Remove(e.element)
			delete(c.entries, key)
		}
	}
}
