package dataset

import (
	"context"
	"fmt"
	"iter"
	"reflect"

	"github.com/datakit-go/datakit/errors"
	"github.com/datakit-go/datakit/tensor"
)

// FromFunc builds a dataset from a generator: fn is invoked once per
// session and must return a fresh iterator. This is the contract leaf
// record producers implement; the engine needs nothing from them beyond
// fresh per-session iteration ending with an exhaustion signal.
func FromFunc(fn func(ctx context.Context) (Iterator, error)) *Dataset {
	d := &Dataset{stage: "source"}
	if fn == nil {
		d.err = errors.InvalidConfig("fn", "generator function must not be nil")
		return d
	}
	d.open = func(s *session) (Iterator, error) {
		it, err := fn(s.ctx)
		if err != nil {
			return nil, errors.Source(err)
		}
		if it == nil {
			return nil, errors.Source(fmt.Errorf("generator returned a nil iterator"))
		}
		return it, nil
	}
	return d
}

// FromRecords builds a dataset over a fixed list of records. Each session
// replays the same records from the start.
func FromRecords(recs ...Record) *Dataset {
	d := &Dataset{stage: "source"}
	d.open = func(_ *session) (Iterator, error) {
		return &recordsIter{recs: recs}, nil
	}
	return d
}

// FromSeq adapts a range-over-func sequence. The sequence is re-invoked per
// session, so it must be restartable.
func FromSeq(seq iter.Seq[Record]) *Dataset {
	d := &Dataset{stage: "source"}
	if seq == nil {
		d.err = errors.InvalidConfig("seq", "sequence must not be nil")
		return d
	}
	d.open = func(_ *session) (Iterator, error) {
		next, stop := iter.Pull(seq)
		return &seqIter{next: next, stop: stop}, nil
	}
	return d
}

type seqIter struct {
	next func() (Record, bool)
	stop func()
	done bool
}

func (it *seqIter) Next(_ context.Context) (Record, bool, error) {
	if it.done {
		return nil, false, nil
	}
	rec, ok := it.next()
	if !ok {
		it.done = true
		return nil, false, nil
	}
	return rec, true, nil
}

func (it *seqIter) Close() error {
	it.stop()
	return nil
}

// FromSlices builds a dataset by slicing columns along their first
// dimension: record i holds row i of every column. A column is either a
// *tensor.Dense or a Go slice; all columns must share the same length.
// Rows of a rank-1 container are emitted as scalars, rows of a higher-rank
// container as sub-views, and slice elements as themselves.
func FromSlices(cols ...any) *Dataset {
	d := &Dataset{stage: "source"}
	if len(cols) == 0 {
		d.err = errors.InvalidConfig("cols", "at least one column is required")
		return d
	}
	n := -1
	for pos, col := range cols {
		var length int
		switch c := col.(type) {
		case *tensor.Dense:
			if c.Rank() == 0 {
				d.err = errors.InvalidConfig("cols",
					fmt.Sprintf("column %d is dimensionless and cannot be sliced", pos))
				return d
			}
			length = c.Len()
		default:
			rv := reflect.ValueOf(col)
			if rv.Kind() != reflect.Slice {
				d.err = errors.UnsupportedType(pos, col)
				return d
			}
			length = rv.Len()
		}
		if n == -1 {
			n = length
		} else if length != n {
			d.err = errors.InvalidConfig("cols",
				fmt.Sprintf("column %d has length %d, want %d", pos, length, n))
			return d
		}
	}
	d.open = func(_ *session) (Iterator, error) {
		return &slicesIter{cols: cols, n: n}, nil
	}
	return d
}

type slicesIter struct {
	cols  []any
	n     int
	index int
}

func (it *slicesIter) Next(_ context.Context) (Record, bool, error) {
	if it.index >= it.n {
		return nil, false, nil
	}
	rec := make(Record, len(it.cols))
	for pos, col := range it.cols {
		switch c := col.(type) {
		case *tensor.Dense:
			if c.Rank() == 1 {
				v, err := c.At(it.index)
				if err != nil {
					return nil, false, errors.Source(err)
				}
				rec[pos] = v
			} else {
				row, err := c.Row(it.index)
				if err != nil {
					return nil, false, errors.Source(err)
				}
				rec[pos] = row
			}
		default:
			rec[pos] = reflect.ValueOf(col).Index(it.index).Interface()
		}
	}
	it.index++
	return rec, true, nil
}

func (it *slicesIter) Close() error { return nil }

// FromValues builds a dataset holding exactly one record of the given
// values.
func FromValues(vals ...any) *Dataset {
	d := &Dataset{stage: "source"}
	if len(vals) == 0 {
		d.err = errors.InvalidConfig("vals", "at least one value is required")
		return d
	}
	d.open = func(_ *session) (Iterator, error) {
		return &recordsIter{recs: []Record{Record(vals)}}, nil
	}
	return d
}

// Range builds a dataset of arity-1 integer records 0, 1, ..., stop-1.
func Range(stop int) *Dataset { return RangeStep(0, stop, 1) }

// RangeStep builds a dataset of arity-1 integer records from start towards
// stop (exclusive), advancing by step. A negative step counts down.
func RangeStep(start, stop, step int) *Dataset {
	d := &Dataset{stage: "source"}
	if step == 0 {
		d.err = errors.InvalidConfig("step", "step must not be zero")
		return d
	}
	d.open = func(_ *session) (Iterator, error) {
		return &rangeIter{next: start, stop: stop, step: step}, nil
	}
	return d
}

type rangeIter struct {
	next, stop, step int
}

func (it *rangeIter) Next(_ context.Context) (Record, bool, error) {
	if (it.step > 0 && it.next >= it.stop) || (it.step < 0 && it.next <= it.stop) {
		return nil, false, nil
	}
	v := it.next
	it.next += it.step
	return Record{v}, true, nil
}

func (it *rangeIter) Close() error { return nil }
