package dataset

import (
	"context"
	"iter"

	"github.com/datakit-go/datakit/errors"
	"github.com/datakit-go/datakit/util"
)

// Dataset is an immutable, reusable pipeline definition: configuration plus
// upstream references, never iteration state. One Dataset value can be
// iterated concurrently by independent sessions without cross-talk. Builder
// methods return new Dataset values and never mutate the receiver.
//
// Construction-argument violations are recorded on the returned node rather
// than raised: Err reports the first one eagerly, and every iteration entry
// point surfaces it before any work starts.
type Dataset struct {
	name  string
	stage string
	err   error
	open  func(s *session) (Iterator, error)
}

// derive returns a child node inheriting the receiver's name and any
// earlier configuration error. The first recorded violation wins.
func (d *Dataset) derive(stage string, cfgErr error, open func(s *session) (Iterator, error)) *Dataset {
	next := &Dataset{name: d.name, stage: stage, err: d.err, open: open}
	if next.err == nil && cfgErr != nil {
		if e, ok := errors.AsError(cfgErr); ok {
			e.WithDetail("stage", stage)
		}
		next.err = cfgErr
	}
	return next
}

// WithName names the pipeline for session logs, spans, and metrics.
func (d *Dataset) WithName(name string) *Dataset {
	next := *d
	next.name = name
	return &next
}

// Err reports the first configuration error recorded while building the
// graph, without iterating.
func (d *Dataset) Err() error { return d.err }

// Iter opens a new session and returns its root iterator. The caller owns
// the iterator and must Close it to end the session; pulls after Close
// report a closed session.
func (d *Dataset) Iter(ctx context.Context) (Iterator, error) {
	if d.err != nil {
		return nil, d.err
	}
	s := newSession(ctx, util.Coalesce(d.name, "dataset"))
	root, err := d.open(s)
	if err != nil {
		s.finish(statusFailed, err, 0)
		return nil, err
	}
	return &sessionIter{s: s, src: root}, nil
}

// Collect pulls every record into a slice. Records pulled before a failure
// are returned alongside the error.
func (d *Dataset) Collect(ctx context.Context) ([]Record, error) {
	it, err := d.Iter(ctx)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	var out []Record
	for {
		rec, ok, err := it.Next(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, rec)
	}
}

// ForEach pulls every record and calls fn for each. A non-nil error from fn
// stops iteration and is returned.
func (d *Dataset) ForEach(ctx context.Context, fn func(context.Context, Record) error) error {
	it, err := d.Iter(ctx)
	if err != nil {
		return err
	}
	defer it.Close()
	for {
		rec, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(ctx, rec); err != nil {
			return err
		}
	}
}

// Drain pulls every record, discarding them, and returns how many were
// produced.
func (d *Dataset) Drain(ctx context.Context) (int, error) {
	n := 0
	err := d.ForEach(ctx, func(context.Context, Record) error {
		n++
		return nil
	})
	return n, err
}

// Records returns a range-over-func view of the dataset. Each range opens a
// fresh session; breaking out of the loop closes it. A failure is yielded
// as the final pair's error.
func (d *Dataset) Records(ctx context.Context) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		it, err := d.Iter(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		defer it.Close()
		for {
			rec, ok, err := it.Next(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok {
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}
