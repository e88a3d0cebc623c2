package di

import (
	"errors"
	"io"
	"sync"
)

// Closers collects resources to release when a command exits
type Closers struct {
	mu   sync.Mutex
	list []io.Closer
}

// Add registers c. Nil closers are ignored.
func (c *Closers) Add(closer io.Closer) {
	if closer == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = append(c.list, closer)
}

// Close releases everything in reverse registration order
func (c *Closers) Close() error {
	c.mu.Lock()
	list := c.list
	c.list = nil
	c.mu.Unlock()

	var errs []error
	for i := len(list) - 1; i >= 0; i-- {
		if err := list[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
