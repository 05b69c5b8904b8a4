package schema

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/Azahorscak/dbmanager-tui/internal/api"
)

// maxParallelFetches bounds concurrent foreign-key collection requests.
const maxParallelFetches = 8

// DateFormat is the local wall-clock layout used by schedule fields and the
// current view.
const DateFormat = "2006-01-02 15:04:05"

// Backend is the subset of the API client the provider needs.
type Backend interface {
	GetEntities(ctx context.Context, target, collection string, q *api.Query) (api.Page, error)
}

// Provider combines the static registry with backend lookups of reference
// data and the current schedule item.
type Provider struct {
	*Registry
	backend Backend
	clock   clockwork.Clock
	logger  *slog.Logger
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithClock replaces the wall clock, for tests.
func WithClock(c clockwork.Clock) ProviderOption {
	return func(p *Provider) { p.clock = c }
}

// WithLogger sets the provider's logger.
func WithLogger(l *slog.Logger) ProviderOption {
	return func(p *Provider) { p.logger = l }
}

// NewProvider creates a provider over reg using backend for lookups.
func NewProvider(reg *Registry, backend Backend, opts ...ProviderOption) *Provider {
	p := &Provider{
		Registry: reg,
		backend:  backend,
		clock:    clockwork.NewRealClock(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Now returns the provider's local time.
func (p *Provider) Now() time.Time {
	return p.clock.Now()
}

// LoadForeignKeys fetches every collection referenced by cfg in parallel and
// waits for all of them to settle. Collections that fail to load are left out
// of the result; the first failure is returned alongside the partial cache.
func (p *Provider) LoadForeignKeys(ctx context.Context, target string, cfg EntityConfig) (ForeignKeys, error) {
	refs := p.ForeignKeyConfigs(cfg)
	fks := make(ForeignKeys, len(refs))

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(maxParallelFetches)
	for _, ref := range refs {
		g.Go(func() error {
			page, err := p.backend.GetEntities(ctx, target, ref.Plural, nil)
			if err != nil {
				p.logger.Warn("foreign key collection failed to load", "target", target, "collection", ref.Plural, "error", err)
				return fmt.Errorf("loading foreign keys %s: %w", ref.Plural, err)
			}
			mu.Lock()
			fks[ref.Plural] = newForeignKeySet(ref, page.Entities)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	return fks, err
}

// LoadScheduleForeignKeys loads the reference data of the schedule entity.
func (p *Provider) LoadScheduleForeignKeys(ctx context.Context, target string) (ForeignKeys, error) {
	_, cfg, ok := p.Schedule()
	if !ok {
		return ForeignKeys{}, nil
	}
	return p.LoadForeignKeys(ctx, target, cfg)
}

// LoadCurrentScheduledItem returns the schedule item active at now: started
// at or before now and, when an end field is configured, ending after now.
// Among several active items the latest start wins. found is false when
// nothing is active or no schedule is configured.
func (p *Provider) LoadCurrentScheduledItem(ctx context.Context, target string, now time.Time) (api.Entity, bool, error) {
	sched, cfg, ok := p.Schedule()
	if !ok {
		return nil, false, nil
	}

	page, err := p.backend.GetEntities(ctx, target, cfg.Plural, nil)
	if err != nil {
		return nil, false, fmt.Errorf("loading current %s: %w", cfg.Plural, err)
	}

	item, found := CurrentItem(page.Entities, sched, now)
	return item, found, nil
}

// CurrentItem selects the active item from items at now.
func CurrentItem(items []api.Entity, sched ScheduleConfig, now time.Time) (api.Entity, bool) {
	var (
		best      api.Entity
		bestStart time.Time
		found     bool
	)
	for _, item := range items {
		start, ok := ParseTime(item[sched.StartField], now.Location())
		if !ok || start.After(now) {
			continue
		}
		if sched.EndField != "" {
			if end, ok := ParseTime(item[sched.EndField], now.Location()); ok && !end.After(now) {
				continue
			}
		}
		if !found || start.After(bestStart) {
			best, bestStart, found = item, start, true
		}
	}
	return best, found
}

var timeLayouts = []string{
	time.RFC3339Nano,
	DateFormat,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseTime reads a schedule timestamp. Strings without a zone are taken in
// loc; numbers are Unix seconds.
func ParseTime(v any, loc *time.Location) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case string:
		for _, layout := range timeLayouts {
			if ts, err := time.ParseInLocation(layout, t, loc); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	default:
		secs, err := strconv.ParseFloat(api.IDString(t), 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(int64(secs), 0).In(loc), true
	}
}
