package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimiter interface for SMS rate limiting
type RateLimiter interface {
	Allow(phoneNumber string) error
}

// SMSRateLimiter gives every phone number its own token bucket holding
// maxRequests tokens, refilled evenly over window
type SMSRateLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	maxRequests int
	window      time.Duration
}

func NewSMSRateLimiter(maxRequests int, window time.Duration) *SMSRateLimiter {
	if maxRequests < 1 {
		maxRequests = 1
	}
	if window <= 0 {
		window = time.Hour
	}
	return &SMSRateLimiter{
		limiters:    make(map[string]*rate.Limiter),
		maxRequests: maxRequests,
		window:      window,
	}
}

// Allow checks if the request is allowed for the given phone number
func (rl *SMSRateLimiter) Allow(phoneNumber string) error {
	rl.mu.Lock()
	lim, ok := rl.limiters[phoneNumber]
	if !ok {
		lim = rate.NewLimiter(rate.Every(rl.window/time.Duration(rl.maxRequests)), rl.maxRequests)
		rl.limiters[phoneNumber] = lim
	}
	rl.mu.Unlock()

	if !lim.Allow() {
		return fmt.Errorf("%w: maximum %d SMS per %v", ErrRateLimited, rl.maxRequests, rl.window)
	}
	return nil
}

// GetStats returns rate limiter statistics
func (rl *SMSRateLimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]interface{}{
		"tracked_numbers": len(rl.limiters),
		"max_requests":    rl.maxRequests,
		"window":          rl.window.String(),
	}
}

// Reset clears all rate limiting data
func (rl *SMSRateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.limiters = make(map[string]*rate.Limiter)
}
