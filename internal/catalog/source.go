package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/airslate-oss/setup-specmatic/pkg/release"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

type Source interface {
	Name() string
	FetchCatalog(ctx context.Context, token string) (release.Catalog, error)
}

type cacheKey string

const cacheKeyPrefixCatalog = "catalog"

// Memo fetches the catalog of the wrapped source at most once until Invalidate
// is called. A failed fetch is remembered as well, so a rate limited source is
// not asked again within the same run.
type Memo struct {
	source Source
	cache  *cache.Cache
	group  singleflight.Group
}

func NewMemo(source Source) *Memo {
	return &Memo{
		source: source,
		cache:  cache.New(cache.NoExpiration, 0),
	}
}

func (m *Memo) Name() string {
	return m.source.Name()
}

func (m *Memo) getCacheKey(token string) cacheKey {
	tokenHash := sha256.Sum256([]byte(token))
	return cacheKey(fmt.Sprintf("%s/%s:%s", cacheKeyPrefixCatalog, m.source.Name(), hex.EncodeToString(tokenHash[:8])))
}

type fetchResult struct {
	catalog release.Catalog
	err     error
}

func (m *Memo) FetchCatalog(ctx context.Context, token string) (release.Catalog, error) {
	key := string(m.getCacheKey(token))
	if cached, ok := m.cache.Get(key); ok {
		res := cached.(*fetchResult)
		return res.catalog, res.err
	}
	v, _, _ := m.group.Do(key, func() (any, error) {
		c, err := m.source.FetchCatalog(ctx, token)
		res := &fetchResult{catalog: c, err: err}
		m.cache.Set(key, res, cache.NoExpiration)
		return res, nil
	})
	res := v.(*fetchResult)
	return res.catalog, res.err
}

// Cached reports whether a fetch result is held for token.
func (m *Memo) Cached(token string) bool {
	_, ok := m.cache.Get(string(m.getCacheKey(token)))
	return ok
}

func (m *Memo) Invalidate() {
	m.cache.Flush()
}
