package batch

import (
	"errors"

	"github.com/Sternrassler/scrapingbee-cli/pkg/client"
)

var errNoResponse = errors.New("no response")

// Result is the outcome of one item. Exactly one Result exists per Item.
type Result struct {
	Index      int
	Input      string
	StatusCode int
	Body       []byte

	// Err is nil for a 2xx response. A non-2xx response carries a
	// *client.APIError; a request that never completed carries the transport
	// or build error and no body.
	Err error
}

// Succeeded reports whether the item got a 2xx response.
func (r Result) Succeeded() bool {
	return r.Err == nil && client.IsSuccess(r.StatusCode)
}

func newResult(item Item, resp *client.Response, err error) Result {
	result := Result{Index: item.Index, Input: item.Input}
	if err == nil && resp == nil {
		err = errNoResponse
	}
	if err != nil {
		result.Err = err
		return result
	}

	result.StatusCode = resp.StatusCode
	result.Body = resp.Body
	result.Err = client.CheckResponse(resp)
	return result
}
