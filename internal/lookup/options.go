package lookup

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lepinkainen/bookdash/internal/cache"
	"github.com/lepinkainen/bookdash/internal/config"
	"github.com/lepinkainen/bookdash/internal/ratelimit"
)

// ProviderOptions configures a provider. Zero values fall back to defaults;
// a nil Cache disables caching.
type ProviderOptions struct {
	BaseURL     string
	APIKey      string
	HTTPClient  *http.Client
	Limiter     *ratelimit.Limiter
	Cache       *cache.CacheDB
	TTL         time.Duration
	NegativeTTL time.Duration
}

func (o *ProviderOptions) setDefaults(baseURL, name string) {
	if o.BaseURL == "" {
		o.BaseURL = baseURL
	}
	o.BaseURL = strings.TrimSuffix(o.BaseURL, "/")
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if o.Limiter == nil {
		o.Limiter = ratelimit.New(name, 0)
	}
	if o.TTL <= 0 {
		o.TTL = cache.DefaultCacheTTL
	}
	if o.NegativeTTL <= 0 {
		o.NegativeTTL = cache.NegativeCacheTTL
	}
}

func (o *ProviderOptions) ttlPolicy() cache.TTLPolicy[cachedResult] {
	return cache.SelectNegativeCacheTTL(o.TTL, o.NegativeTTL, func(r cachedResult) bool {
		return r.NotFound
	})
}

// NewFromConfig builds a client with the configured providers in order.
// cacheDB may be nil.
func NewFromConfig(cfg config.LookupConfig, cacheCfg config.CacheConfig, cacheDB *cache.CacheDB) (*Client, error) {
	providers := make([]Provider, 0, len(cfg.Providers))
	for _, name := range cfg.Providers {
		opts := ProviderOptions{
			Limiter:     ratelimit.New(name, cfg.RatePerSecond),
			Cache:       cacheDB,
			TTL:         cacheCfg.TTL,
			NegativeTTL: cacheCfg.NegativeTTL,
		}

		switch name {
		case "googlebooks":
			opts.BaseURL = cfg.GoogleBooksURL
			opts.APIKey = cfg.GoogleBooksAPIKey
			providers = append(providers, NewGoogleBooks(opts))
		case "openlibrary":
			opts.BaseURL = cfg.OpenLibraryURL
			providers = append(providers, NewOpenLibrary(opts))
		default:
			return nil, fmt.Errorf("unknown lookup provider %q", name)
		}
	}

	return NewClient(cfg.Timeout, providers...), nil
}
