package cache

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/scrapingbee-cli/pkg/client"
	"github.com/Sternrassler/scrapingbee-cli/pkg/request"
)

// Doer serves cacheable requests from the cache and stores successful
// responses from next. Cache failures never fail the request.
type Doer struct {
	next    client.Doer
	manager *Manager
	ttl     time.Duration
	logger  zerolog.Logger
}

// NewDoer wraps next with the response cache.
func NewDoer(next client.Doer, manager *Manager, ttl time.Duration, logger zerolog.Logger) *Doer {
	return &Doer{
		next:    next,
		manager: manager,
		ttl:     ttl,
		logger:  logger,
	}
}

// Do implements client.Doer.
func (d *Doer) Do(ctx context.Context, desc request.Descriptor) (*client.Response, error) {
	if !Cacheable(desc) || d.ttl <= 0 {
		return d.next.Do(ctx, desc)
	}

	key := KeyFor(desc)
	entry, err := d.manager.Get(ctx, key)
	switch {
	case err == nil:
		d.logger.Debug().Str("key", key.String()).Msg("Serving response from cache")
		return entry.Response(), nil
	case !errors.Is(err, ErrCacheMiss):
		d.logger.Warn().Err(err).Msg("Cache lookup failed")
	}

	resp, err := d.next.Do(ctx, desc)
	if err != nil {
		return nil, err
	}

	if client.IsSuccess(resp.StatusCode) {
		if err := d.manager.Set(ctx, key, NewEntry(resp, d.ttl)); err != nil {
			d.logger.Warn().Err(err).Msg("Cache store failed")
		}
	}
	return resp, nil
}

// Cacheable reports whether a request may be answered from the cache.
// Usage lookups are never cached.
func Cacheable(desc request.Descriptor) bool {
	method := desc.Method
	if method == "" {
		method = http.MethodGet
	}
	return method == http.MethodGet && desc.Kind != request.KindUsage
}
