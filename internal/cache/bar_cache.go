package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dyike/CortexSim/pkg/dataflows"
)

const (
	defaultMemoryTTL = 5 * time.Minute
	defaultDiskTTL   = 12 * time.Hour
)

// BarCache keeps fetched daily bars in memory and, when dir is set, in
// CSV files under dir. A disk hit is promoted to memory.
type BarCache struct {
	mu        sync.Mutex
	memory    map[string]*cachedBars
	csv       *csvStore
	memoryTTL time.Duration
	diskTTL   time.Duration
	now       func() time.Time
}

type cachedBars struct {
	bars   []*dataflows.Bar
	stored time.Time
}

func NewBarCache(dir string) *BarCache {
	c := &BarCache{
		memory:    make(map[string]*cachedBars),
		memoryTTL: defaultMemoryTTL,
		diskTTL:   defaultDiskTTL,
		now:       time.Now,
	}
	if strings.TrimSpace(dir) != "" {
		c.csv = &csvStore{dir: dir}
	}
	return c
}

func key(symbol string, days int) string {
	return fmt.Sprintf("%s-%d", dataflows.NormalizeSymbol(symbol), days)
}

func (c *BarCache) Get(symbol string, days int) ([]*dataflows.Bar, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(symbol, days)
	if cached, ok := c.memory[k]; ok {
		if c.now().Sub(cached.stored) <= c.memoryTTL {
			log.Debug().Str("key", k).Msg("bar cache memory hit")
			return cached.bars, true
		}
		delete(c.memory, k)
	}

	if c.csv == nil {
		return nil, false
	}
	bars, stored, err := c.csv.read(k)
	if err != nil {
		return nil, false
	}
	if c.now().Sub(stored) > c.diskTTL {
		log.Debug().Str("key", k).Dur("age", c.now().Sub(stored)).Msg("bar cache file expired")
		return nil, false
	}
	log.Debug().Str("key", k).Int("bars", len(bars)).Msg("bar cache file hit")
	c.memory[k] = &cachedBars{bars: bars, stored: c.now()}
	return bars, true
}

func (c *BarCache) Set(symbol string, days int, bars []*dataflows.Bar) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(symbol, days)
	c.memory[k] = &cachedBars{bars: bars, stored: c.now()}
	if c.csv == nil {
		return
	}
	if err := c.csv.write(k, bars); err != nil {
		log.Warn().Err(err).Str("key", k).Msg("failed to write bar cache file")
	}
}

func (c *BarCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memory = make(map[string]*cachedBars)
}
