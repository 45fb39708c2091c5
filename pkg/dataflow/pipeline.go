package dataflow

import (
	"context"
	"sync"
)

// Stream is a read-only channel of messages.
type Stream <-chan interface{}

// From creates a stream from a slice of data.
func From(ctx context.Context, items ...interface{}) Stream {
	out := make(chan interface{}, len(items))
	go func() {
		defer close(out)
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case out <- item:
			}
		}
	}()
	return out
}

// Map transforms the stream using fn. With WithWorkers(n) up to n items are
// transformed concurrently, so output order is not guaranteed.
//
// A failed item is not dropped: its error travels downstream in place of the
// value, and ForEach/Collect report it.
func Map(ctx context.Context, input Stream, fn func(interface{}) (interface{}, error), opts ...Option) Stream {
	cfg := applyOptions(opts)

	out := make(chan interface{}, cfg.bufferSize)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-input:
				if !ok {
					return
				}
				// upstream failures pass through untouched
				if err, isErr := msg.(error); isErr {
					if !send(ctx, out, err) {
						return
					}
					continue
				}

				res, err := fn(msg)
				if err != nil {
					res = err
				}
				if !send(ctx, out, res) {
					return
				}
			}
		}
	}

	wg.Add(cfg.workers)
	for i := 0; i < cfg.workers; i++ {
		go worker()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// ForEach executes fn for every value in the stream and blocks until the
// stream is exhausted or ctx is cancelled. It returns the first error seen,
// either carried by the stream or returned by fn; remaining items are still drained.
func ForEach(ctx context.Context, input Stream, fn func(interface{}) error, opts ...Option) error {
	cfg := applyOptions(opts)

	var wg sync.WaitGroup
	var errOnce sync.Once
	var firstErr error
	record := func(err error) {
		errOnce.Do(func() { firstErr = err })
	}

	worker := func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-input:
				if !ok {
					return
				}
				if err, isErr := msg.(error); isErr {
					record(err)
					continue
				}
				if err := fn(msg); err != nil {
					record(err)
				}
			}
		}
	}

	wg.Add(cfg.workers)
	for i := 0; i < cfg.workers; i++ {
		go worker()
	}
	wg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return firstErr
}

// Collect drains the stream into a slice.
func Collect(ctx context.Context, input Stream) ([]interface{}, error) {
	var out []interface{}
	err := ForEach(ctx, input, func(msg interface{}) error {
		out = append(out, msg)
		return nil
	})
	return out, err
}

func send(ctx context.Context, out chan<- interface{}, msg interface{}) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- msg:
		return true
	}
}
