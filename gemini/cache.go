package gemini

import (
	"fmt"
	"sync"
	"time"

	"github.com/Tranvietnhattu/SMARTMONEY/ledger"
	"github.com/shopspring/decimal"
)

// cache is a TTL map of raw model responses keyed by content fingerprint.
// No eviction beyond expiry on read.
type cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	text string
	at   time.Time
}

func newCache(ttl time.Duration) *cache {
	return &cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *cache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().Sub(e.at) >= c.ttl {
		delete(c.entries, key)
		return "", false
	}
	return e.text, true
}

func (c *cache) put(key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{text: text, at: c.now()}
}

// fingerprint identifies the current state of a transaction set:
// count, newest id and amount sum. Cheap and collision-tolerant - a stale
// hit only serves slightly old coaching text within the TTL.
func fingerprint(txs []ledger.Transaction) string {
	if len(txs) == 0 {
		return "empty"
	}
	sum := decimal.Zero
	for _, t := range txs {
		sum = sum.Add(t.Amount)
	}
	return fmt.Sprintf("%d-%s-%s", len(txs), txs[0].ID, sum)
}
