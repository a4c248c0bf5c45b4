package security

import (
	"sync"

	"github.com/thinkgos/go-dlms-cosem/dlms"
)

// Counter tracks a per-direction invocation counter and rejects replay: a
// received counter must be strictly greater than the last accepted value.
type Counter struct {
	mu   sync.Mutex
	last uint32
	seen bool
}

// Next returns the counter for an outgoing APDU: 0 on the first call on a
// zero Counter, and one more than the previous value on each later call.
func (c *Counter) Next() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen {
		c.last++
	} else {
		c.seen = true
	}
	return c.last
}

// Accept validates an incoming counter, advancing the high-water mark on
// success. Returns an error of KindSecurity if v is not strictly greater
// than the last accepted value.
func (c *Counter) Accept(v uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen && v <= c.last {
		return dlms.Newf(dlms.KindSecurity, "security: invocation counter regression, got %d, last accepted %d", v, c.last)
	}
	c.last = v
	c.seen = true
	return nil
}

// Last reports the last accepted/issued counter value and whether one has
// been recorded yet.
func (c *Counter) Last() (uint32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.seen
}
