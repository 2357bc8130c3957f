package apiclient

import (
	"context"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// CheckHealth reports whether the backend answers. The status endpoint and the
// users collection are requested concurrently; the first success wins. Timer
// expiry, ctx cancellation or two failures mean unreachable.
func (c *Client) CheckHealth(ctx context.Context) bool {
	targets := []string{pathHealth, pathUsers}
	results := make(chan bool, len(targets))
	for _, path := range targets {
		go func(path string) {
			results <- c.ping(path)
		}(path)
	}

	timer := time.NewTimer(c.healthTimeout)
	defer timer.Stop()

	failures := 0
	for {
		select {
		case ok := <-results:
			if ok {
				return true
			}
			failures++
			if failures == len(targets) {
				return false
			}
		case <-timer.C:
			c.logger.Debug("health check timed out", zap.Duration("timeout", c.healthTimeout))
			return false
		case <-ctx.Done():
			return false
		}
	}
}

func (c *Client) ping(path string) bool {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	// The request may outlive the timer; its result is dropped into the buffered channel.
	if err := c.http.DoTimeout(req, resp, c.timeout); err != nil {
		c.logger.Debug("health check failed", zap.String("path", path), zap.Error(err))
		return false
	}
	status := resp.StatusCode()
	return status >= 200 && status < 300
}
