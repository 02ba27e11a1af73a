package usage

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/scrapingbee-cli/pkg/client"
	"github.com/Sternrassler/scrapingbee-cli/pkg/request"
)

// Prometheus metrics for plan limits.
var (
	planMaxConcurrency = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scrapingbee_plan_max_concurrency",
		Help: "Concurrent request limit reported by the last usage probe",
	})

	creditBalanceGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scrapingbee_credit_balance",
		Help: "Remaining credit balance reported by the last usage probe",
	})
)

// Prober fetches a usage snapshot through the shared request routine.
type Prober struct {
	doer   client.Doer
	logger zerolog.Logger
}

// NewProber creates a new usage prober.
func NewProber(doer client.Doer, logger zerolog.Logger) *Prober {
	return &Prober{
		doer:   doer,
		logger: logger,
	}
}

// Fetch performs one GET /usage and parses the response.
// A request that never completes returns *client.TransportError; a non-2xx
// status returns *client.APIError carrying the body. There is no retry.
func (p *Prober) Fetch(ctx context.Context) (Snapshot, error) {
	raw, err := p.FetchRaw(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap, err := Parse(raw)
	if err != nil {
		return Snapshot{}, err
	}

	planMaxConcurrency.Set(float64(snap.MaxConcurrency))
	event := p.logger.Debug().Int("max_concurrency", snap.MaxConcurrency)
	if snap.CreditBalance != nil {
		creditBalanceGauge.Set(float64(*snap.CreditBalance))
		event = event.Int("credit_balance", *snap.CreditBalance)
	}
	event.Msg("Usage snapshot fetched")

	return snap, nil
}

// FetchRaw performs one GET /usage and returns the unparsed 2xx body.
func (p *Prober) FetchRaw(ctx context.Context) ([]byte, error) {
	resp, err := p.doer.Do(ctx, request.Usage())
	if err != nil {
		return nil, err
	}
	if err := client.CheckResponse(resp); err != nil {
		p.logger.Warn().Int("status_code", resp.StatusCode).Msg("Usage probe rejected")
		return nil, fmt.Errorf("fetch usage: %w", err)
	}
	return resp.Body, nil
}
