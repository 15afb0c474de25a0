package notification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"syscall"
	"time"
)

// RetryConfig shapes the exponential backoff around a channel send.
type RetryConfig struct {
	BaseDelay     time.Duration
	Multiplier    float64
	MaxDelay      time.Duration
	JitterPercent float64
	MaxRetries    int // retries after the first attempt
}

// DefaultRetryConfig allows at most four attempts: 1s, 2s, 4s apart (±20%).
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		BaseDelay:     time.Second,
		Multiplier:    2,
		MaxDelay:      30 * time.Second,
		JitterPercent: 20,
		MaxRetries:    3,
	}
}

// RetryResult is always reported back to the caller.
type RetryResult struct {
	Success    bool          `json:"success"`
	Attempts   int           `json:"attempts"`
	TotalDelay time.Duration `json:"totalDelay"`
	Err        error         `json:"-"`
}

// StatusError carries the HTTP status returned by a provider API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}

// ComputeDelay returns the wait before retry number attempt (0-indexed):
// min(base*multiplier^attempt, max) jittered by ±JitterPercent, never
// negative. u is a uniform sample in [0, 1).
func ComputeDelay(cfg RetryConfig, attempt int, u float64) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(cfg.Multiplier, float64(attempt))
	if cfg.MaxDelay > 0 && delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if cfg.JitterPercent > 0 {
		delay += delay * cfg.JitterPercent / 100 * (2*u - 1)
	}
	if delay < 0 {
		return 0
	}
	return time.Duration(delay)
}

var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

var transientSignatures = []string{
	"timeout", "timed out", "connection reset", "connection refused",
	"econnreset", "etimedout", "econnrefused", "socket hang up",
	"network is unreachable", "temporary failure", "broken pipe",
}

// IsRetryable reports whether err looks transient: network, timeout or
// connection-reset failures, HTTP 429/500/502/503/504 and SMTP 4xx replies.
// Anything else (bad recipient, rejected credentials) fails fast.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return retryableStatus[statusErr.StatusCode]
	}
	var smtpErr *textproto.Error
	if errors.As(err, &smtpErr) {
		return smtpErr.Code >= 400 && smtpErr.Code < 500
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, sig := range transientSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// Retrier runs an operation under a RetryConfig. Sleeping honours ctx so a
// shutdown interrupts the wait.
type Retrier struct {
	cfg   RetryConfig
	sleep func(ctx context.Context, d time.Duration) error
	rand  func() float64
}

// NewRetrier returns a Retrier with real sleeping and jitter.
func NewRetrier(cfg RetryConfig) *Retrier {
	return &Retrier{cfg: cfg, sleep: sleepContext, rand: rand.Float64}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do calls op until it succeeds, fails with a non-retryable error, or the
// retry budget is spent.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) error) RetryResult {
	var result RetryResult
	for attempt := 0; ; attempt++ {
		err := op(ctx)
		result.Attempts++
		if err == nil {
			result.Success = true
			result.Err = nil
			return result
		}
		result.Err = err

		if !IsRetryable(err) || attempt >= r.cfg.MaxRetries {
			return result
		}

		delay := ComputeDelay(r.cfg, attempt, r.rand())
		if sleepErr := r.sleep(ctx, delay); sleepErr != nil {
			result.Err = fmt.Errorf("retry interrupted after %d attempts: %w", result.Attempts, err)
			return result
		}
		result.TotalDelay += delay
	}
}
