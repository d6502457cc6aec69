package dataset

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/datakit-go/datakit/errors"
)

// MapFunc transforms one record into its replacement. The context is the
// session context and is canceled when the session closes or fails.
type MapFunc func(ctx context.Context, rec Record) (Record, error)

// Map applies fn to every record. With WithParallelism(n) up to n workers
// run fn concurrently; n < 0 uses one worker per CPU. Ordered delivery is
// the default and caps the stream at n records beyond the last one emitted;
// WithOrdered(false) trades input order for throughput. A failed fn fails
// the stream with TRANSFORM_FAILED unless WithIgnoreErrors is set, which
// drops the offending record and keeps going.
func (d *Dataset) Map(fn MapFunc, opts ...Option) *Dataset {
	o := newOptions().apply(opts)
	var cfgErr error
	if bad := o.unsupported(optParallelism, optOrdered, optIgnoreErrors); bad != "" {
		cfgErr = errors.InvalidConfig(bad, "option not supported by map")
	} else if fn == nil {
		cfgErr = errors.InvalidConfig("fn", "map requires a transform function")
	}
	parallelism := o.parallelism
	if parallelism < 0 {
		parallelism = runtime.NumCPU()
	}
	up := d
	return d.derive("map", cfgErr, func(s *session) (Iterator, error) {
		src, err := up.open(s)
		if err != nil {
			return nil, err
		}
		if parallelism == 0 {
			return &mapIter{s: s, src: src, fn: fn, ignore: o.ignoreErrors}, nil
		}
		return newParallelMapIter(s, src, fn, parallelism, o.ordered, o.ignoreErrors), nil
	})
}

// classifyTransformError decides what a failed transform means for the
// stream. Structured non-recoverable errors keep their identity so a shape
// violation inside fn is not demoted to TRANSFORM_FAILED; anything else is
// wrapped as a recoverable transform failure.
func classifyTransformError(err error) *errors.Error {
	if e, ok := errors.AsError(err); ok && !e.Recoverable {
		return e
	}
	return errors.Transform(err)
}

type mapIter struct {
	s      *session
	src    Iterator
	fn     MapFunc
	ignore bool
}

func (it *mapIter) Next(ctx context.Context) (Record, bool, error) {
	for {
		rec, ok, err := it.src.Next(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		out, err := it.fn(ctx, rec)
		if err != nil {
			terr := classifyTransformError(err)
			if it.ignore && terr.Recoverable {
				it.s.noteTransformError("map")
				continue
			}
			return nil, false, terr
		}
		return out, true, nil
	}
}

func (it *mapIter) Close() error { return it.src.Close() }

type task struct {
	seq int
	rec Record
}

// completion carries one finished transform back to the consumer. skip marks
// a record dropped under ignore_errors; ordered delivery still advances past
// its sequence number.
type completion struct {
	seq  int
	rec  Record
	skip bool
}

// parallelMapIter fans records out to a fixed worker pool. A single feeder
// goroutine owns the upstream and tags each record with a sequence number;
// workers send completions on a shared channel. In ordered mode a credit
// semaphore of depth n keeps the feeder at most n records ahead of the
// consumer, bounding the reorder buffer.
type parallelMapIter struct {
	s       *session
	src     Iterator
	results <-chan completion
	credits chan struct{}
	cancel  context.CancelFunc
	ordered bool

	pending map[int]completion
	nextSeq int
	drained bool
	failed  bool
	done    bool

	werr   error
	joined chan struct{}

	closeOnce sync.Once
	closeErr  error
}

func newParallelMapIter(s *session, src Iterator, fn MapFunc, n int, ordered, ignore bool) *parallelMapIter {
	runCtx, cancel := context.WithCancel(s.ctx)
	g, gctx := errgroup.WithContext(runCtx)
	tasks := make(chan task)
	results := make(chan completion, n)

	it := &parallelMapIter{
		s:       s,
		src:     src,
		results: results,
		cancel:  cancel,
		ordered: ordered,
		joined:  make(chan struct{}),
	}
	if ordered {
		it.credits = make(chan struct{}, n)
		for range n {
			it.credits <- struct{}{}
		}
		it.pending = make(map[int]completion, n)
	}

	g.Go(func() error {
		defer close(tasks)
		for seq := 0; ; seq++ {
			if it.credits != nil {
				select {
				case <-it.credits:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			rec, ok, err := src.Next(gctx)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			select {
			case tasks <- task{seq: seq, rec: rec}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})
	for range n {
		g.Go(func() error {
			for t := range tasks {
				out, err := fn(gctx, t.rec)
				if err != nil {
					terr := classifyTransformError(err)
					if ignore && terr.Recoverable {
						s.noteTransformError("map")
						select {
						case results <- completion{seq: t.seq, skip: true}:
						case <-gctx.Done():
							return gctx.Err()
						}
						continue
					}
					return terr
				}
				select {
				case results <- completion{seq: t.seq, rec: out}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		it.werr = g.Wait()
		close(results)
		close(it.joined)
	}()
	return it
}

func (it *parallelMapIter) Next(ctx context.Context) (Record, bool, error) {
	if it.failed {
		return nil, false, it.werr
	}
	if it.done {
		return nil, false, nil
	}
	for {
		if it.ordered {
			if c, ok := it.pending[it.nextSeq]; ok {
				delete(it.pending, it.nextSeq)
				it.nextSeq++
				it.release()
				if c.skip {
					continue
				}
				return c.rec, true, nil
			}
		}
		if it.drained {
			it.done = true
			return nil, false, nil
		}
		select {
		case c, open := <-it.results:
			if !open {
				it.drained = true
				if it.werr != nil {
					it.failed = true
					return nil, false, it.werr
				}
				continue
			}
			if it.ordered {
				if c.seq != it.nextSeq {
					it.pending[c.seq] = c
					continue
				}
				it.nextSeq++
				it.release()
			}
			if c.skip {
				continue
			}
			return c.rec, true, nil
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

// release returns one credit to the feeder. Sends never block: capacity
// matches the number of credits issued.
func (it *parallelMapIter) release() {
	if it.credits == nil {
		return
	}
	select {
	case it.credits <- struct{}{}:
	default:
	}
}

func (it *parallelMapIter) Close() error {
	it.closeOnce.Do(func() {
		it.cancel()
		<-it.joined
		it.closeErr = it.src.Close()
	})
	return it.closeErr
}
