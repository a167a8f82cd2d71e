package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// AsyncOptions configures batching.
type AsyncOptions struct {
	BufferSize     int           // queued events before Store falls back to a synchronous write
	BatchSize      int           // events per batch
	BatchTimeout   time.Duration // max wait for a partial batch
	StorageTimeout time.Duration // per-batch write timeout
}

// AsyncWriter batches events for a BatchStorage in a background goroutine.
// Store blocks until the batch containing the event is written, so callers
// still observe storage errors.
type AsyncWriter struct {
	storage BatchStorage
	queue   chan pending
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	options AsyncOptions
}

type pending struct {
	event  Event
	result chan error
}

// NewAsyncWriter starts the batching goroutine. Call Close on shutdown to flush.
func NewAsyncWriter(storage BatchStorage, opts AsyncOptions) *AsyncWriter {
	if storage == nil {
		panic("audit: batch storage cannot be nil")
	}

	if opts.BufferSize <= 0 {
		opts.BufferSize = 1000
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.BatchTimeout <= 0 {
		opts.BatchTimeout = 100 * time.Millisecond
	}
	if opts.StorageTimeout <= 0 {
		opts.StorageTimeout = 5 * time.Second
	}

	aw := &AsyncWriter{
		storage: storage,
		queue:   make(chan pending, opts.BufferSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		options: opts,
	}

	aw.wg.Add(1)
	go aw.worker()

	return aw
}

// Store queues event and waits for its batch to be written. When the queue is
// full the event is written synchronously instead of being dropped.
func (aw *AsyncWriter) Store(ctx context.Context, event Event) error {
	select {
	case <-aw.done:
		return ErrStorageNotAvailable
	default:
	}

	result := make(chan error, 1)

	select {
	case aw.queue <- pending{event: event, result: result}:
		select {
		case err := <-result:
			return err
		case <-ctx.Done():
			return ctx.Err()
		case <-aw.stopped:
			// the worker may have exited before seeing this event
			select {
			case err := <-result:
				return err
			default:
				return ErrStorageNotAvailable
			}
		}
	case <-ctx.Done():
		return ctx.Err()
	case <-aw.done:
		return ErrStorageNotAvailable
	default:
		return aw.storage.StoreBatch(ctx, []Event{event})
	}
}

func (aw *AsyncWriter) worker() {
	defer aw.wg.Done()
	defer close(aw.stopped)

	events := make([]Event, 0, aw.options.BatchSize)
	results := make([]chan error, 0, aw.options.BatchSize)

	ticker := time.NewTicker(aw.options.BatchTimeout)
	defer ticker.Stop()

	// Batches are written with their own timeout; a caller giving up does not
	// cancel a write that other callers are waiting on.
	flush := func() {
		if len(events) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), aw.options.StorageTimeout)
		err := aw.storage.StoreBatch(ctx, events)
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", ErrStorageTimeout, err)
		}
		cancel()

		for _, ch := range results {
			ch <- err
		}

		clear(events)
		clear(results)
		events = events[:0]
		results = results[:0]
	}

	for {
		select {
		case p := <-aw.queue:
			events = append(events, p.event)
			results = append(results, p.result)
			if len(events) >= aw.options.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-aw.done:
			for {
				select {
				case p := <-aw.queue:
					events = append(events, p.event)
					results = append(results, p.result)
				default:
					flush()
					return
				}
			}
		}
	}
}

// Close stops accepting events and flushes what is queued. ctx bounds the wait.
func (aw *AsyncWriter) Close(ctx context.Context) error {
	aw.once.Do(func() { close(aw.done) })

	flushed := make(chan struct{})
	go func() {
		aw.wg.Wait()
		close(flushed)
	}()

	select {
	case <-flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewAsyncLogger wires a Logger to an AsyncWriter over storage. The returned
// function closes the writer.
func NewAsyncLogger(storage BatchStorage, opts AsyncOptions, loggerOpts ...Option) (*Logger, func(context.Context) error) {
	aw := NewAsyncWriter(storage, opts)
	return NewLogger(aw, loggerOpts...), aw.Close
}
