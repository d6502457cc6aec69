package dataset

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/datakit-go/datakit/validation"
)

type prefetchConfig struct {
	BufferSize int `json:"buffer_size" validate:"gt=0"`
}

// Prefetch decouples production from consumption: a background goroutine
// pulls up to bufferSize records ahead of the consumer so upstream latency
// overlaps downstream work. Records arrive unchanged and in order.
func (d *Dataset) Prefetch(bufferSize int) *Dataset {
	cfgErr := validation.Validate(&prefetchConfig{BufferSize: bufferSize})
	up := d
	return d.derive("prefetch", cfgErr, func(s *session) (Iterator, error) {
		src, err := up.open(s)
		if err != nil {
			return nil, err
		}
		runCtx, cancel := context.WithCancel(s.ctx)
		g, gctx := errgroup.WithContext(runCtx)
		ch := make(chan result, bufferSize)
		g.Go(func() error {
			defer close(ch)
			for {
				rec, ok, err := src.Next(gctx)
				if err != nil {
					select {
					case ch <- result{err: err}:
					case <-gctx.Done():
					}
					return nil
				}
				if !ok {
					return nil
				}
				select {
				case ch <- result{rec: rec, ok: true}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		})
		return &prefetchIter{src: src, ch: ch, cancel: cancel, wait: g.Wait}, nil
	})
}

type prefetchIter struct {
	src    Iterator
	ch     <-chan result
	cancel context.CancelFunc
	wait   func() error
	failed error
	done   bool

	closeOnce sync.Once
	closeErr  error
}

func (it *prefetchIter) Next(ctx context.Context) (Record, bool, error) {
	if it.failed != nil {
		return nil, false, it.failed
	}
	if it.done {
		return nil, false, nil
	}
	select {
	case r, open := <-it.ch:
		if !open {
			it.done = true
			return nil, false, nil
		}
		if r.err != nil {
			it.failed = r.err
			return nil, false, r.err
		}
		return r.rec, true, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func (it *prefetchIter) Close() error {
	it.closeOnce.Do(func() {
		it.cancel()
		_ = it.wait()
		it.closeErr = it.src.Close()
	})
	return it.closeErr
}
