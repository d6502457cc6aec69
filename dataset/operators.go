package dataset

import (
	"context"

	"github.com/datakit-go/datakit/errors"
	"github.com/datakit-go/datakit/tensor"
	"github.com/datakit-go/datakit/validation"
)

type countConfig struct {
	Count int `json:"count" validate:"gte=0"`
}

// Filter keeps the records for which pred returns true.
func (d *Dataset) Filter(pred func(Record) bool) *Dataset {
	var cfgErr error
	if pred == nil {
		cfgErr = errors.InvalidConfig("pred", "filter requires a predicate")
	}
	up := d
	return d.derive("filter", cfgErr, func(s *session) (Iterator, error) {
		src, err := up.open(s)
		if err != nil {
			return nil, err
		}
		return &filterIter{src: src, pred: pred}, nil
	})
}

type filterIter struct {
	src  Iterator
	pred func(Record) bool
}

func (it *filterIter) Next(ctx context.Context) (Record, bool, error) {
	for {
		rec, ok, err := it.src.Next(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		if it.pred(rec) {
			return rec, true, nil
		}
	}
}

func (it *filterIter) Close() error { return it.src.Close() }

// Take ends the stream after n records. Records past the limit are never
// pulled from upstream.
func (d *Dataset) Take(n int) *Dataset {
	cfgErr := validation.Validate(&countConfig{Count: n})
	up := d
	return d.derive("take", cfgErr, func(s *session) (Iterator, error) {
		src, err := up.open(s)
		if err != nil {
			return nil, err
		}
		return &takeIter{src: src, limit: n}, nil
	})
}

type takeIter struct {
	src   Iterator
	limit int
	seen  int
}

func (it *takeIter) Next(ctx context.Context) (Record, bool, error) {
	if it.seen >= it.limit {
		return nil, false, nil
	}
	rec, ok, err := it.src.Next(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	it.seen++
	return rec, true, nil
}

func (it *takeIter) Close() error { return it.src.Close() }

// Skip discards the first n records and passes the rest through.
func (d *Dataset) Skip(n int) *Dataset {
	cfgErr := validation.Validate(&countConfig{Count: n})
	up := d
	return d.derive("skip", cfgErr, func(s *session) (Iterator, error) {
		src, err := up.open(s)
		if err != nil {
			return nil, err
		}
		return &skipIter{src: src, n: n}, nil
	})
}

type skipIter struct {
	src     Iterator
	n       int
	skipped bool
}

func (it *skipIter) Next(ctx context.Context) (Record, bool, error) {
	if !it.skipped {
		it.skipped = true
		for range it.n {
			_, ok, err := it.src.Next(ctx)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				return nil, false, nil
			}
		}
	}
	return it.src.Next(ctx)
}

func (it *skipIter) Close() error { return it.src.Close() }

// Repeat re-runs the upstream count times, or forever when count <= 0.
// Each pass reopens the upstream within the same session, so stateful
// stages such as an unseeded Shuffle draw a fresh ordering per pass. A
// pass that yields nothing ends iteration.
func (d *Dataset) Repeat(count int) *Dataset {
	up := d
	return d.derive("repeat", nil, func(s *session) (Iterator, error) {
		src, err := up.open(s)
		if err != nil {
			return nil, err
		}
		return &repeatIter{s: s, up: up, cur: src, count: count, pass: 1}, nil
	})
}

type repeatIter struct {
	s       *session
	up      *Dataset
	cur     Iterator
	count   int
	pass    int
	yielded bool
	done    bool
}

func (it *repeatIter) Next(ctx context.Context) (Record, bool, error) {
	for {
		if it.done {
			return nil, false, nil
		}
		rec, ok, err := it.cur.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if ok {
			it.yielded = true
			return rec, true, nil
		}
		if it.count > 0 && it.pass >= it.count {
			it.done = true
			return nil, false, nil
		}
		if !it.yielded {
			it.done = true
			return nil, false, nil
		}
		if err := it.cur.Close(); err != nil {
			return nil, false, err
		}
		next, err := it.up.open(it.s)
		if err != nil {
			return nil, false, err
		}
		it.cur = next
		it.pass++
		it.yielded = false
	}
}

func (it *repeatIter) Close() error { return it.cur.Close() }

// Concat chains datasets end to end: every record of the first, then the
// second, and so on. All inputs join the session of the combined dataset.
func Concat(datasets ...*Dataset) *Dataset {
	return combine("concat", datasets, func(iters []Iterator) Iterator {
		return &concatIter{iters: iters}
	})
}

// Interleave draws one record from each input in rotation, dropping
// exhausted inputs from the rotation until none remain.
func Interleave(datasets ...*Dataset) *Dataset {
	return combine("interleave", datasets, func(iters []Iterator) Iterator {
		live := make([]Iterator, len(iters))
		copy(live, iters)
		return &interleaveIter{all: iters, live: live}
	})
}

func combine(stage string, datasets []*Dataset, build func([]Iterator) Iterator) *Dataset {
	var cfgErr error
	if len(datasets) == 0 {
		cfgErr = errors.InvalidConfig("datasets", stage+" requires at least one dataset").
			WithDetail("stage", stage)
	} else {
		for _, child := range datasets {
			if err := child.Err(); err != nil {
				cfgErr = err
				break
			}
		}
	}
	return &Dataset{
		stage: stage,
		err:   cfgErr,
		open: func(s *session) (Iterator, error) {
			iters := make([]Iterator, 0, len(datasets))
			for _, child := range datasets {
				it, err := child.open(s)
				if err != nil {
					for _, prev := range iters {
						_ = prev.Close()
					}
					return nil, err
				}
				iters = append(iters, it)
			}
			return build(iters), nil
		},
	}
}

type concatIter struct {
	iters []Iterator
	index int
}

func (it *concatIter) Next(ctx context.Context) (Record, bool, error) {
	for it.index < len(it.iters) {
		rec, ok, err := it.iters[it.index].Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return rec, true, nil
		}
		it.index++
	}
	return nil, false, nil
}

func (it *concatIter) Close() error { return closeAll(it.iters) }

// interleaveIter keeps the full iterator set for Close while the rotation
// shrinks as inputs exhaust.
type interleaveIter struct {
	all   []Iterator
	live  []Iterator
	index int
}

func (it *interleaveIter) Next(ctx context.Context) (Record, bool, error) {
	for len(it.live) > 0 {
		if it.index >= len(it.live) {
			it.index = 0
		}
		rec, ok, err := it.live[it.index].Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if ok {
			it.index++
			return rec, true, nil
		}
		it.live = append(it.live[:it.index], it.live[it.index+1:]...)
	}
	return nil, false, nil
}

func (it *interleaveIter) Close() error { return closeAll(it.all) }

func closeAll(iters []Iterator) error {
	var first error
	for _, it := range iters {
		if err := it.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Unbatch splits grouped records back into their elements: a record of
// containers with leading dimension n becomes n records. Dense positions
// of rank one yield scalars, higher ranks yield row views, boxed columns
// yield their elements. Leading dimensions must agree across positions.
func (d *Dataset) Unbatch() *Dataset {
	up := d
	return d.derive("unbatch", nil, func(s *session) (Iterator, error) {
		src, err := up.open(s)
		if err != nil {
			return nil, err
		}
		return &unbatchIter{src: src}, nil
	})
}

type unbatchIter struct {
	src   Iterator
	queue []Record
}

func (it *unbatchIter) Next(ctx context.Context) (Record, bool, error) {
	for len(it.queue) == 0 {
		group, ok, err := it.src.Next(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		it.queue, err = splitGroup(group)
		if err != nil {
			return nil, false, err
		}
	}
	rec := it.queue[0]
	it.queue = it.queue[1:]
	return rec, true, nil
}

func (it *unbatchIter) Close() error { return it.src.Close() }

func splitGroup(group Record) ([]Record, error) {
	if len(group) == 0 {
		return nil, errors.New(errors.ErrCodeShapeMismatch, "cannot unbatch an empty record")
	}
	n := -1
	for pos, col := range group {
		var length int
		switch v := col.(type) {
		case *tensor.Dense:
			if v.Rank() == 0 {
				return nil, errors.New(errors.ErrCodeShapeMismatch,
					"cannot unbatch a dimensionless container").WithDetail("position", pos)
			}
			length = v.Len()
		case []any:
			length = len(v)
		default:
			return nil, errors.UnsupportedType(pos, col)
		}
		if n == -1 {
			n = length
		} else if length != n {
			return nil, errors.ShapeMismatch(pos, []int{n}, []int{length})
		}
	}
	out := make([]Record, n)
	for i := range n {
		rec := make(Record, len(group))
		for pos, col := range group {
			switch v := col.(type) {
			case *tensor.Dense:
				if v.Rank() == 1 {
					item, err := v.At(i)
					if err != nil {
						return nil, errors.New(errors.ErrCodeShapeMismatch,
							"cannot unbatch container element").WithCause(err)
					}
					rec[pos] = item
				} else {
					row, err := v.Row(i)
					if err != nil {
						return nil, errors.New(errors.ErrCodeShapeMismatch,
							"cannot unbatch container row").WithCause(err)
					}
					rec[pos] = row
				}
			case []any:
				rec[pos] = v[i]
			}
		}
		out[i] = rec
	}
	return out, nil
}
