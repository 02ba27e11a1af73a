package cache

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/scrapingbee-cli/internal/testutil"
	"github.com/Sternrassler/scrapingbee-cli/pkg/client"
	"github.com/Sternrassler/scrapingbee-cli/pkg/config"
	"github.com/Sternrassler/scrapingbee-cli/pkg/request"
)

func newCachingDoer(t *testing.T, mock *testutil.MockAPI) *Doer {
	t.Helper()

	cfg := config.Default()
	cfg.APIKey = "test-key"
	cfg.BaseURL = mock.URL()
	cfg.Timeout = 5 * time.Second

	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New() error: %v", err)
	}

	_, redisClient := setupTestRedis(t)
	return NewDoer(c, NewManager(redisClient), time.Minute, zerolog.Nop())
}

func TestDoer_CachesSuccessfulGet(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/google", testutil.NewOKResponse(`{"organic_results": [1]}`))

	doer := newCachingDoer(t, mock)
	desc, err := request.Build(request.GoogleOptions{}, "golang")
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	for i := 0; i < 3; i++ {
		resp, err := doer.Do(context.Background(), desc)
		if err != nil {
			t.Fatalf("Do() #%d error: %v", i, err)
		}
		if string(resp.Body) != `{"organic_results": [1]}` {
			t.Errorf("Do() #%d body = %q", i, resp.Body)
		}
		if resp.Header.Get("Spb-Cost") != "1" {
			t.Errorf("Do() #%d Spb-Cost = %q", i, resp.Header.Get("Spb-Cost"))
		}
	}

	if got := mock.GetPathCount("/google"); got != 1 {
		t.Errorf("API requests = %d, want 1", got)
	}
}

func TestDoer_DoesNotCacheErrors(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/chatgpt", testutil.NewErrorResponse(http.StatusInternalServerError, "boom"))

	doer := newCachingDoer(t, mock)
	desc, _ := request.Build(request.ChatGPTOptions{}, "hello")

	for i := 0; i < 2; i++ {
		resp, err := doer.Do(context.Background(), desc)
		if err != nil {
			t.Fatalf("Do() error: %v", err)
		}
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("StatusCode = %d, want 500", resp.StatusCode)
		}
	}

	if got := mock.GetPathCount("/chatgpt"); got != 2 {
		t.Errorf("API requests = %d, want 2", got)
	}
}

func TestDoer_BypassesNonGet(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	doer := newCachingDoer(t, mock)
	desc, err := request.Build(request.ScrapeOptions{Method: "POST", Body: "a=1"}, "https://example.com")
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := doer.Do(context.Background(), desc); err != nil {
			t.Fatalf("Do() error: %v", err)
		}
	}

	if got := mock.GetPathCount("/"); got != 2 {
		t.Errorf("API requests = %d, want 2", got)
	}
}

func TestCacheable(t *testing.T) {
	tests := []struct {
		name string
		desc request.Descriptor
		want bool
	}{
		{name: "get", desc: request.Descriptor{Kind: request.KindGoogle, Method: "GET"}, want: true},
		{name: "empty method", desc: request.Descriptor{Kind: request.KindGoogle}, want: true},
		{name: "post", desc: request.Descriptor{Kind: request.KindScrape, Method: "POST"}, want: false},
		{name: "usage", desc: request.Usage(), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cacheable(tt.desc); got != tt.want {
				t.Errorf("Cacheable() = %v, want %v", got, tt.want)
			}
		})
	}
}
