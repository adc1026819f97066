package audit

import (
	"context"
	"log"
	"sync"
)

// Publisher emits events to a store, synchronously by default. With an
// async buffer, Emit enqueues and a background goroutine drains; a full
// buffer falls back to a synchronous write rather than dropping the event.
type Publisher struct {
	store  Store
	logger *log.Logger

	inbox chan Event
	done  chan struct{}
	wg    sync.WaitGroup
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to buffered async emission.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan Event, size)
	}
}

// WithLogger sets the logger used for background write failures.
func WithLogger(logger *log.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher builds a publisher over a store.
func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.done = make(chan struct{})
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event. In sync mode the caller blocks on the store write.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		return p.store.Append(ctx, event)
	}
}

// Close stops the background drain and flushes remaining events.
func (p *Publisher) Close() error {
	if p.inbox == nil {
		return nil
	}
	close(p.done)
	p.wg.Wait()
	return nil
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for {
		select {
		case event := <-p.inbox:
			p.write(event)
		case <-p.done:
			for {
				select {
				case event := <-p.inbox:
					p.write(event)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) write(event Event) {
	if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
		p.logger.Printf("audit: append %s for %s failed: %v", event.Action, event.Subject, err)
	}
}
