package usage

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/scrapingbee-cli/internal/testutil"
	"github.com/Sternrassler/scrapingbee-cli/pkg/client"
	"github.com/Sternrassler/scrapingbee-cli/pkg/config"
)

func newTestProber(t *testing.T, baseURL string) *Prober {
	t.Helper()

	cfg := config.Default()
	cfg.APIKey = "test-key"
	cfg.BaseURL = baseURL
	cfg.Timeout = 5 * time.Second

	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New() error: %v", err)
	}
	return NewProber(c, zerolog.Nop())
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestProber_Fetch(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	credits := 40
	mock.SetResponse("/usage", testutil.NewUsageResponse(3, &credits))

	snap, err := newTestProber(t, mock.URL()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if snap.MaxConcurrency != 3 {
		t.Errorf("MaxConcurrency = %d, want 3", snap.MaxConcurrency)
	}
	if snap.CreditBalance == nil || *snap.CreditBalance != 40 {
		t.Errorf("CreditBalance = %v, want 40", snap.CreditBalance)
	}
	if got := mock.GetPathCount("/usage"); got != 1 {
		t.Errorf("usage requests = %d, want 1", got)
	}
	if got := gaugeValue(t, planMaxConcurrency); got != 3 {
		t.Errorf("plan max concurrency gauge = %v, want 3", got)
	}
	if got := gaugeValue(t, creditBalanceGauge); got != 40 {
		t.Errorf("credit balance gauge = %v, want 40", got)
	}
}

func TestProber_Fetch_HTTPError(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/usage", testutil.NewErrorResponse(http.StatusUnauthorized, `{"message": "Invalid api key"}`))

	_, err := newTestProber(t, mock.URL()).Fetch(context.Background())

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Fetch() error = %v, want *client.APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", apiErr.StatusCode)
	}
	if string(apiErr.Body) != `{"message": "Invalid api key"}` {
		t.Errorf("Body = %q", apiErr.Body)
	}
	if got := mock.GetPathCount("/usage"); got != 1 {
		t.Errorf("usage requests = %d, want exactly 1 (no retry)", got)
	}
}

func TestProber_Fetch_TransportError(t *testing.T) {
	mock := testutil.NewMockAPI()
	url := mock.URL()
	mock.Close()

	_, err := newTestProber(t, url).Fetch(context.Background())

	var transportErr *client.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Fetch() error = %v, want *client.TransportError", err)
	}
}

func TestProber_Fetch_Malformed(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/usage", testutil.NewOKResponse(`{"used_api_credit": 1}`))

	_, err := newTestProber(t, mock.URL()).Fetch(context.Background())
	if !errors.Is(err, ErrMalformedUsage) {
		t.Fatalf("Fetch() error = %v, want ErrMalformedUsage", err)
	}
}
