package apptoken

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// ErrCoolingDown is returned while exchanges are suspended after the
// upstream rejected the app credentials.
var ErrCoolingDown = errors.New("installation token exchange cooling down")

// breaker suspends exchanges for a cooldown after an upstream 401 so a
// misconfigured app is not retried in a tight loop.
type breaker struct {
	mu       sync.Mutex
	cooldown time.Duration
	now      func() time.Time
	open     bool
	openedAt time.Time
	lastErr  error
}

func (b *breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return nil
	}
	if b.now().Sub(b.openedAt) < b.cooldown {
		return fmt.Errorf("%w: %v", ErrCoolingDown, b.lastErr)
	}
	b.open = false
	b.lastErr = nil
	return nil
}

// record opens the breaker when err carries an upstream 401 and closes it
// on success.
func (b *breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.open = false
		b.lastErr = nil
		return
	}
	if statusOf(err) == http.StatusUnauthorized && b.cooldown > 0 {
		b.open = true
		b.openedAt = b.now()
		b.lastErr = err
	}
}

type statusCoder interface {
	StatusCode() int
}

func statusOf(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}
