package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/Sternrassler/scrapingbee-cli/pkg/request"
)

// Key identifies a cached response.
type Key struct {
	// Kind is the request kind (e.g. "google").
	Kind request.Kind

	// Path is the API path; empty for the scrape endpoint.
	Path string

	// Params are the request's query parameters.
	Params url.Values
}

// KeyFor derives the cache key of a request descriptor.
func KeyFor(d request.Descriptor) Key {
	return Key{Kind: d.Kind, Path: d.Path, Params: d.Params}
}

// String generates a deterministic cache key string.
// Format: scrapingbee:kind:path:param1=val1:param2=val2
//
// Example:
//
//	scrapingbee:google:google:country_code=us:search=golang
func (k Key) String() string {
	parts := []string{"scrapingbee", string(k.Kind)}

	if path := strings.Trim(k.Path, "/"); path != "" {
		parts = append(parts, path)
	}

	keys := make([]string, 0, len(k.Params))
	for key := range k.Params {
		if key == "api_key" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// Values keep their order; repeated Spb-* headers are order-sensitive.
	for _, key := range keys {
		values := make([]string, len(k.Params[key]))
		for i, v := range k.Params[key] {
			values[i] = url.QueryEscape(v)
		}
		parts = append(parts, fmt.Sprintf("%s=%s", key, strings.Join(values, ",")))
	}

	return strings.Join(parts, ":")
}
