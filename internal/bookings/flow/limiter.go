package flow

import "context"

// Limiter bounds how many flows run at once.
type Limiter struct {
	slots chan struct{}
}

func NewLimiter(size int) *Limiter {
	if size <= 0 {
		size = 1
	}
	return &Limiter{slots: make(chan struct{}, size)}
}

// Do runs fn once a slot is free. The slot is released even if fn panics.
func (l *Limiter) Do(ctx context.Context, fn func() error) error {
	select {
	case l.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.slots }()

	return fn()
}
