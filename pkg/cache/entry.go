package cache

import (
	"net/http"
	"time"

	"github.com/Sternrassler/scrapingbee-cli/pkg/client"
)

// Entry is a cached API response.
type Entry struct {
	Data       []byte      `json:"data"`
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`

	// CachedAt is when the response was stored.
	CachedAt time.Time `json:"cached_at"`

	// Expires is when the entry becomes stale.
	Expires time.Time `json:"expires"`
}

// NewEntry captures a response for caching with the given time to live.
func NewEntry(resp *client.Response, ttl time.Duration) *Entry {
	now := time.Now()
	return &Entry{
		Data:       resp.Body,
		StatusCode: resp.StatusCode,
		Headers:    resp.Header.Clone(),
		CachedAt:   now,
		Expires:    now.Add(ttl),
	}
}

// IsExpired returns true if the cache entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// Response rebuilds the cached response.
func (e *Entry) Response() *client.Response {
	header := e.Headers.Clone()
	if header == nil {
		header = http.Header{}
	}
	return &client.Response{
		StatusCode: e.StatusCode,
		Body:       e.Data,
		Header:     header,
	}
}
