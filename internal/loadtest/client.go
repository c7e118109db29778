package loadtest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const retryCount = 2

// HTTPClient talks JSON to a running lnkd server.
type HTTPClient struct {
	client *resty.Client
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(retryCount).
		SetHeader("Accept", "application/json")
	return &HTTPClient{client: client}
}

// getJSON performs a GET and decodes a 200 response into v.
// It returns the status code for non-200 responses.
func (c *HTTPClient) getJSON(ctx context.Context, path string, v any) (int, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(v).
		Get(path)
	return check(resp, err, http.StatusOK)
}

// submit posts a form to /api/v1/calculations. Every form carries its own
// idempotency key, so a retried request never queues a second calculation.
func (c *HTTPClient) submit(ctx context.Context, form any, v any) (int, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetBody(form).
		SetResult(v).
		Post("/api/v1/calculations")
	return check(resp, err, http.StatusAccepted)
}

func check(resp *resty.Response, err error, want int) (int, error) {
	if err != nil {
		return 0, err
	}
	if resp.StatusCode() != want {
		return resp.StatusCode(), fmt.Errorf("%s %s: unexpected status %d",
			resp.Request.Method, resp.Request.URL, resp.StatusCode())
	}
	return resp.StatusCode(), nil
}
