package jsonrpc

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

type HTTPClient interface {
	Do(req *retryablehttp.Request) (*http.Response, error)
}

// NewHTTPClient retries requests that never got a response. Every HTTP response, including 429 and 5xx,
// is handed back to the caller so the fetcher can classify it and rotate providers.
func NewHTTPClient(log *slog.Logger, timeout time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = MaxRetries
	client.Logger = log
	checkRetry := func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if resp != nil {
			return false, nil
		}
		yes, err2 := retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		if yes {
			log.Warn("Retrying request to RPC client", "error", err2)
		}
		return yes, err2
	}
	client.CheckRetry = checkRetry
	client.Backoff = retryablehttp.LinearJitterBackoff
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.HTTPClient.Timeout = timeout
	return client
}
