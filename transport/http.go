package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultHttpRequester is the built-in HttpRequester implementation,
// wrapping *http.Client with retry-with-backoff for transient
// failures. Construct it with NewHTTPRequester.
type DefaultHttpRequester struct {
	client *http.Client
	opts   *options
}

// NewHTTPRequester constructs a DefaultHttpRequester.
func NewHTTPRequester(opts ...Option) *DefaultHttpRequester {
	o := defaultOptions()
	applyOptions(o, opts)

	client := o.client
	if client == nil {
		client = &http.Client{Timeout: o.timeout}
	}
	if o.metrics {
		base := client.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		wrapped := *client
		wrapped.Transport = otelhttp.NewTransport(base)
		client = &wrapped
	}

	return &DefaultHttpRequester{client: client, opts: o}
}

// Do implements HttpRequester. Transient failures (network errors and
// 5xx responses) are retried with exponential backoff up to
// opts.maxRetries times after the first attempt; 4xx responses are
// returned immediately so
// HubController can map them to the proper domain error.
func (r *DefaultHttpRequester) Do(ctx context.Context, method, url string, body []byte, bearerToken string) (int, []byte, error) {
	var status int
	var respBody []byte

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(r.opts.retryDelay),
	), uint64(r.opts.maxRetries))

	op := func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if bearerToken != "" {
			req.Header.Set("Authorization", "Bearer "+bearerToken)
		}

		resp, err := r.client.Do(req)
		if err != nil {
			return err // network errors are retryable
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		status = resp.StatusCode
		respBody = data

		if status >= 500 {
			return fmt.Errorf("server error: status %d", status)
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		var permanent *backoff.PermanentError
		if asPermanent(err, &permanent) {
			return 0, nil, permanent.Err
		}
		if status != 0 {
			// Retries exhausted against a server that kept answering
			// with 5xx; surface the last observed response as-is so
			// the caller can still inspect status/body if useful.
			return status, respBody, nil
		}
		return 0, nil, err
	}

	return status, respBody, nil
}

func asPermanent(err error, target **backoff.PermanentError) bool {
	pe, ok := err.(*backoff.PermanentError)
	if ok {
		*target = pe
	}
	return ok
}
