// Package cache stores successful API responses in Redis so that repeated
// single-item commands can be answered without spending credits.
//
// Only GET requests with a 2xx response are cached. Entries are keyed by the
// request kind, path and sorted query parameters; the API key is never part
// of a key.
//
// # Basic Usage
//
//	manager, err := cache.Open(ctx, cfg.Cache)
//	if err != nil {
//		return err
//	}
//	defer manager.Close()
//
//	doer := cache.NewDoer(apiClient, manager, cfg.Cache.TTL, logger)
//	resp, err := doer.Do(ctx, descriptor)
//
// # Metrics
//
//   - scrapingbee_cache_hits_total - Cache hits
//   - scrapingbee_cache_misses_total - Cache misses
//   - scrapingbee_cache_stored_bytes_total - Bytes written to the cache
//   - scrapingbee_cache_errors_total{operation} - Cache operation errors
//
// Batch runs never go through this package.
package cache
