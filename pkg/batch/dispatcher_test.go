package batch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/scrapingbee-cli/pkg/client"
	"github.com/Sternrassler/scrapingbee-cli/pkg/request"
)

// fakeDoer answers every request with respond and tracks concurrency.
type fakeDoer struct {
	delay   time.Duration
	respond func(d request.Descriptor) (*client.Response, error)

	mu       sync.Mutex
	calls    map[string]int
	inFlight atomic.Int64
	peak     atomic.Int64
}

func newFakeDoer(delay time.Duration, respond func(d request.Descriptor) (*client.Response, error)) *fakeDoer {
	return &fakeDoer{delay: delay, respond: respond, calls: make(map[string]int)}
}

func (f *fakeDoer) Do(_ context.Context, d request.Descriptor) (*client.Response, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls[d.Params.Get("prompt")]++
	f.mu.Unlock()

	time.Sleep(f.delay)
	return f.respond(d)
}

func (f *fakeDoer) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func promptItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{Index: i + 1, Input: fmt.Sprintf("prompt-%d", i+1)}
	}
	return items
}

func buildChatGPT(item Item) (request.Descriptor, error) {
	return request.Build(request.ChatGPTOptions{}, item.Input)
}

func okResponse(d request.Descriptor) (*client.Response, error) {
	return &client.Response{StatusCode: http.StatusOK, Body: []byte("ok " + d.Params.Get("prompt"))}, nil
}

func TestDispatcher_OneResultPerItem(t *testing.T) {
	for _, n := range []int{1, 2, 7, 50} {
		for _, concurrency := range []int{1, 3, 10} {
			t.Run(fmt.Sprintf("items=%d/concurrency=%d", n, concurrency), func(t *testing.T) {
				doer := newFakeDoer(time.Millisecond, okResponse)
				plan := Plan{Concurrency: concurrency, Items: promptItems(n)}

				results := NewDispatcher(doer, zerolog.Nop()).Run(context.Background(), plan, buildChatGPT)

				require.Len(t, results, n)
				for i, r := range results {
					assert.Equal(t, i+1, r.Index)
					assert.Equal(t, plan.Items[i].Input, r.Input)
					assert.True(t, r.Succeeded())
				}
				assert.Equal(t, n, doer.totalCalls())
				for input, calls := range doer.calls {
					assert.Equal(t, 1, calls, "item %s attempted more than once", input)
				}
			})
		}
	}
}

func TestDispatcher_RespectsConcurrency(t *testing.T) {
	doer := newFakeDoer(20*time.Millisecond, okResponse)
	dispatcher := NewDispatcher(doer, zerolog.Nop())

	dispatcher.Run(context.Background(), Plan{Concurrency: 3, Items: promptItems(12)}, buildChatGPT)

	assert.LessOrEqual(t, doer.peak.Load(), int64(3))
	assert.LessOrEqual(t, dispatcher.PeakInFlight(), 3)
	assert.Greater(t, dispatcher.PeakInFlight(), 1, "expected requests to overlap")
}

func TestDispatcher_FailuresDoNotStopSiblings(t *testing.T) {
	doer := newFakeDoer(0, func(d request.Descriptor) (*client.Response, error) {
		switch d.Params.Get("prompt") {
		case "prompt-2":
			return &client.Response{StatusCode: http.StatusInternalServerError, Body: []byte("rate limited")}, nil
		case "prompt-3":
			return nil, &client.TransportError{Endpoint: "chatgpt", Err: errors.New("connection reset")}
		default:
			return okResponse(d)
		}
	})

	results := NewDispatcher(doer, zerolog.Nop()).Run(context.Background(), Plan{Concurrency: 2, Items: promptItems(4)}, buildChatGPT)
	require.Len(t, results, 4)

	assert.True(t, results[0].Succeeded())
	assert.True(t, results[3].Succeeded())

	var apiErr *client.APIError
	require.True(t, errors.As(results[1].Err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, results[1].StatusCode)
	assert.Equal(t, "rate limited", string(results[1].Body))

	var transportErr *client.TransportError
	require.True(t, errors.As(results[2].Err, &transportErr))
	assert.Empty(t, results[2].Body)

	assert.Equal(t, 4, doer.totalCalls())
}

func TestDispatcher_BuildErrorSkipsRequest(t *testing.T) {
	doer := newFakeDoer(0, okResponse)
	buildErr := errors.New("bad input")

	results := NewDispatcher(doer, zerolog.Nop()).Run(context.Background(), Plan{Concurrency: 2, Items: promptItems(3)},
		func(item Item) (request.Descriptor, error) {
			if item.Index == 2 {
				return request.Descriptor{}, buildErr
			}
			return buildChatGPT(item)
		})

	require.Len(t, results, 3)
	assert.ErrorIs(t, results[1].Err, buildErr)
	assert.False(t, results[1].Succeeded())
	assert.Equal(t, 2, doer.totalCalls())
}

func TestDispatcher_EmptyPlan(t *testing.T) {
	doer := newFakeDoer(0, okResponse)
	results := NewDispatcher(doer, zerolog.Nop()).Run(context.Background(), Plan{Concurrency: 2}, buildChatGPT)
	assert.Empty(t, results)
	assert.Zero(t, doer.totalCalls())
}
