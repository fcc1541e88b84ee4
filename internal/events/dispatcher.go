package events

import (
	"context"
	"sync"

	"vehicle-rental-backend/internal/logger"
)

// Dispatcher is the in-process Publisher: a buffered queue drained by a
// fixed pool of workers running the handler.
type Dispatcher struct {
	jobs    chan Envelope
	handler Handler
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(h Handler, workers, buffer int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if buffer <= 0 {
		buffer = 1
	}
	d := &Dispatcher{
		jobs:    make(chan Envelope, buffer),
		handler: h,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for env := range d.jobs {
		d.handle(env)
	}
}

func (d *Dispatcher) handle(env Envelope) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Event handler panicked", "event_type", env.EventType, "event_id", env.EventID, "panic", r)
		}
	}()
	if err := d.handler(context.Background(), env); err != nil {
		logger.Error("Event handler failed", "event_type", env.EventType, "event_id", env.EventID, "error", err)
	}
}

func (d *Dispatcher) Publish(_ context.Context, env Envelope) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	select {
	case d.jobs <- env:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close stops accepting events and waits for the queued ones to be handled.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
	return nil
}
