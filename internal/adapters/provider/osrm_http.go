package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

func (o *OSRMProvider) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do executes the request and maps transport failures to the typed error
// taxonomy. Retry and failover policy live in the fallback controller, not
// here: the adapter only reports what happened.
func (o *OSRMProvider) do(req *http.Request) (*http.Response, error) {
	resp, err := o.session.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
			return nil, &domain.ProviderUnavailableError{Provider: o.Name(), Err: err}
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		statusErr := &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, &domain.ProviderRateLimitedError{
				Provider:   o.Name(),
				RetryAfter: retryAfterHint(resp, 30*time.Second),
			}
		case resp.StatusCode >= 500:
			return nil, &domain.ProviderUnavailableError{Provider: o.Name(), Err: statusErr}
		}
		return nil, statusErr
	}

	return resp, nil
}

// retryAfterHint reads the Retry-After header, falling back to a default
// suggestion when absent or unparsable.
func retryAfterHint(resp *http.Response, fallback time.Duration) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
