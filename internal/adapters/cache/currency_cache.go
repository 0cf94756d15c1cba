package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"fxconvert/internal/adapters"
	"fxconvert/internal/domain"

	"github.com/dgraph-io/ristretto"
)

// CurrencyCache is a read-through cache in front of a CurrencyRepository.
// Currencies are reference data that only change through seeding, so
// entries live until their TTL expires.
type CurrencyCache struct {
	next  adapters.CurrencyRepository
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewCurrencyCache(next adapters.CurrencyRepository, maxItems int64, ttl time.Duration) (*CurrencyCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create currency cache failed: %w", err)
	}
	return &CurrencyCache{next: next, cache: c, ttl: ttl}, nil
}

func (c *CurrencyCache) FindCurrency(ctx context.Context, country string, indicator string) (domain.Currency, error) {
	key := keyOf(domain.CurrencyKey{Country: country, Indicator: indicator})
	if v, ok := c.cache.Get(key); ok {
		if cur, ok := v.(domain.Currency); ok {
			return cur, nil
		}
	}

	cur, err := c.next.FindCurrency(ctx, country, indicator)
	if err != nil {
		return domain.Currency{}, err
	}
	c.store(cur)
	return cur, nil
}

func (c *CurrencyCache) GetCurrency(ctx context.Context, id int64) (domain.Currency, error) {
	key := idKey(id)
	if v, ok := c.cache.Get(key); ok {
		if cur, ok := v.(domain.Currency); ok {
			return cur, nil
		}
	}

	cur, err := c.next.GetCurrency(ctx, id)
	if err != nil {
		return domain.Currency{}, err
	}
	c.store(cur)
	return cur, nil
}

func (c *CurrencyCache) ListCountries(ctx context.Context) ([]string, error) {
	return c.next.ListCountries(ctx)
}

func (c *CurrencyCache) ListCurrencies(ctx context.Context, country string) ([]domain.Currency, error) {
	return c.next.ListCurrencies(ctx, country)
}

func (c *CurrencyCache) store(cur domain.Currency) {
	c.cache.SetWithTTL(keyOf(cur.Key()), cur, 1, c.ttl)
	c.cache.SetWithTTL(idKey(cur.ID), cur, 1, c.ttl)
}

// Wait blocks until buffered writes are visible to Get.
func (c *CurrencyCache) Wait() { c.cache.Wait() }

func (c *CurrencyCache) Close() { c.cache.Close() }

func keyOf(k domain.CurrencyKey) string {
	n := k.Normalized()
	return "key:" + n.Country + "\x00" + n.Indicator
}

func idKey(id int64) string { return "id:" + strconv.FormatInt(id, 10) }
