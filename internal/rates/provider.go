package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/iwvelando/auto-loan-calc/internal/store"
	"github.com/iwvelando/auto-loan-calc/pkg/constants"
	"go.uber.org/zap"
)

// Provider holds the active rate table. It is safe for concurrent use; a
// cache, when given, keeps the table across restarts.
type Provider struct {
	mu     sync.RWMutex
	table  *Table
	cache  store.Cache
	logger *zap.Logger
}

// NewProvider returns a provider serving DefaultTable until Load or Replace
// is called. cache may be nil.
func NewProvider(logger *zap.Logger, cache store.Cache) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		table:  DefaultTable(),
		cache:  cache,
		logger: logger,
	}
}

// Load restores the table saved in the cache. A miss or an unreadable entry
// leaves the defaults in place; only cache failures are returned.
func (p *Provider) Load(ctx context.Context) error {
	if p.cache == nil {
		return nil
	}
	raw, ok, err := p.cache.Get(ctx, constants.CountyRatesCacheKey)
	if err != nil {
		return fmt.Errorf("failed to load county rates: %w", err)
	}
	if !ok {
		p.logger.Debug("no cached county rates, using defaults",
			zap.String("op", "rates.Load"),
		)
		return nil
	}

	var table Table
	if err := json.Unmarshal([]byte(raw), &table); err != nil || table.Validate() != nil {
		p.logger.Warn("discarding unreadable cached county rates",
			zap.String("op", "rates.Load"),
			zap.Error(err),
		)
		return nil
	}
	table.Merge(DefaultTable())

	p.mu.Lock()
	p.table = &table
	p.mu.Unlock()
	p.logger.Info(fmt.Sprintf("loaded %d cached county rates", len(table.Counties)),
		zap.String("op", "rates.Load"),
	)
	return nil
}

// LoadFile replaces the active table with the one stored at path.
func (p *Provider) LoadFile(ctx context.Context, path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate table %s: %w", path, err)
	}
	return p.Import(ctx, path, data)
}

// Table returns a copy of the active table.
func (p *Provider) Table() *Table {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.table.Clone()
}

// Import parses an uploaded rate file and makes it the active table.
func (p *Provider) Import(ctx context.Context, name string, data []byte) (*Table, error) {
	table, err := Parse(name, data)
	if err != nil {
		return nil, err
	}
	if err := p.Replace(ctx, table); err != nil {
		return nil, err
	}
	return p.Table(), nil
}

// Replace makes table active, keeping the previous DEFAULT rate when table
// has none, and saves it to the cache.
func (p *Provider) Replace(ctx context.Context, table *Table) error {
	if table == nil {
		return ErrNoRows
	}
	next := table.Clone()

	p.mu.Lock()
	next.Merge(p.table)
	if err := next.Validate(); err != nil {
		p.mu.Unlock()
		return err
	}
	p.table = next
	p.mu.Unlock()

	p.logger.Info(fmt.Sprintf("activated rate table with %d counties", len(next.Counties)),
		zap.String("op", "rates.Replace"),
	)
	if p.cache == nil {
		return nil
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode county rates: %w", err)
	}
	if err := p.cache.Set(ctx, constants.CountyRatesCacheKey, string(raw), 0); err != nil {
		return fmt.Errorf("failed to save county rates: %w", err)
	}
	return nil
}
