package httpclient

import (
	"net/http"
	"sync"
	"time"
)

// Pool recycles HTTP clients across dispatcher calls so each tick does
// not pay connection setup for every reminder it sends.
type Pool struct {
	clients chan *http.Client
	factory func() *http.Client
	mu      sync.RWMutex
	closed  bool
}

// NewPool creates a pool pre-populated with maxClients clients sharing
// the given request timeout.
func NewPool(maxClients int, timeout time.Duration) *Pool {
	pool := &Pool{
		clients: make(chan *http.Client, maxClients),
		factory: func() *http.Client { return newClient(timeout) },
	}

	for i := 0; i < maxClients; i++ {
		pool.clients <- pool.factory()
	}

	return pool
}

func newClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        50,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Get retrieves an HTTP client from the pool, creating one when the
// pool is drained.
func (p *Pool) Get() *http.Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return p.factory()
	}

	select {
	case client := <-p.clients:
		return client
	default:
		return p.factory()
	}
}

// Put returns an HTTP client to the pool; surplus clients are dropped.
func (p *Pool) Put(client *http.Client) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return
	}

	select {
	case p.clients <- client:
	default:
	}
}

// Close closes the pool.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	close(p.clients)
}

var (
	globalPool *Pool
	once       sync.Once
)

// GetGlobalPool returns the shared pool used by the mail gateway.
func GetGlobalPool() *Pool {
	once.Do(func() {
		globalPool = NewPool(16, 30*time.Second)
	})
	return globalPool
}
