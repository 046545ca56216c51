// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides shared HTTP helpers for the pipeline stages.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay is the starting delay for exponential backoff after an
// HTTP 429. Tests override this to keep retry paths fast.
var RetryBaseDelay = 1 * time.Second

// defaultMaxAttempts is the total request budget when the caller passes
// zero.
const defaultMaxAttempts = 3

// DoWithBackoff executes req and retries while the server answers HTTP
// 429 (Too Many Requests), waiting RetryBaseDelay*2^attempt between
// tries. At most maxAttempts requests are made in total.
//
// Any other status, success or failure, is returned as-is on the first
// occurrence. When every attempt is rate-limited the final 429 response
// is returned with a nil error so the caller can decide what a spent
// retry budget means. The response body is drained and closed before
// each retry; a context cancelled during a backoff wait surfaces as
// ctx.Err().
func DoWithBackoff(ctx context.Context, client *http.Client, req *http.Request, maxAttempts int) (*http.Response, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	var resp *http.Response
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err = client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		if attempt == maxAttempts-1 {
			break
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return resp, nil
}
