package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/energy-estimator/internal/metrics"
)

// maxBodyBytes caps how much of an upstream payload we are willing to read.
const maxBodyBytes = 4 << 20

// BackoffConfig controls exponential backoff behaviour. MaxRetries of zero
// means a failed call is reported as-is.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
	Limiter *rate.Limiter
}

// Options are shared by every provider constructor.
type Options struct {
	Client     *http.Client
	MaxRetries int
	RPS        float64
	Burst      int
}

func (o Options) httpConfig() HTTPClientConfig {
	var limiter *rate.Limiter
	if o.RPS > 0 {
		burst := o.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(o.RPS), burst)
	}
	return HTTPClientConfig{
		Client: o.Client,
		Backoff: BackoffConfig{
			MaxRetries:      o.MaxRetries,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		Limiter: limiter,
	}
}

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errNotFound      = errors.New("resource not found")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
	errMissingField  = errors.New("missing expected field")
	errInvalidJSON   = errors.New("invalid json payload")
)

// doRequestWithResilience executes the HTTP request behind a rate limiter and
// a circuit breaker, retrying transient failures up to MaxRetries times.
// Client errors are never retried; a 404 surfaces as errNotFound.
func doRequestWithResilience(
	ctx context.Context,
	upstream string,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 {
		return nil, errInvalidConfig
	}

	policy := backoff.NewExponentialBackOff()
	if cfg.Backoff.InitialInterval > 0 {
		policy.InitialInterval = cfg.Backoff.InitialInterval
	}
	if cfg.Backoff.MaxInterval > 0 {
		policy.MaxInterval = cfg.Backoff.MaxInterval
	}
	policy.MaxElapsedTime = 0
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(cfg.Backoff.MaxRetries)), ctx)

	attempt := func() (*http.Response, error) {
		if cfg.Limiter != nil {
			if err := cfg.Limiter.Wait(ctx); err != nil {
				return nil, backoff.Permanent(fmt.Errorf("rate limit wait canceled: %w", err))
			}
		}

		req, err := buildRequest()
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req = req.WithContext(ctx)

		start := time.Now()
		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			// Only throttling and server faults count against the breaker.
			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
			}
			return resp, nil
		})
		metrics.UpstreamLatency.WithLabelValues(upstream).Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.UpstreamCallsTotal.WithLabelValues(upstream, "error").Inc()
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return nil, backoff.Permanent(fmt.Errorf("%w: %v", errCircuitOpen, err))
			}
			return nil, err
		}

		resp, ok := result.(*http.Response)
		if !ok {
			return nil, backoff.Permanent(fmt.Errorf("unexpected result type from circuit breaker"))
		}
		metrics.UpstreamCallsTotal.WithLabelValues(upstream, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			return nil, backoff.Permanent(errNotFound)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, backoff.Permanent(fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode))
		}
		return resp, nil
	}

	return backoff.RetryWithData[*http.Response](attempt, retry)
}

// readJSON reads a JSON body, rejecting anything that does not parse.
func readJSON(resp *http.Response) (json.RawMessage, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if !json.Valid(body) {
		return nil, errInvalidJSON
	}
	return body, nil
}
