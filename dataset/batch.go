package dataset

import (
	"context"

	"github.com/datakit-go/datakit/errors"
	"github.com/datakit-go/datakit/validation"
)

type batchConfig struct {
	Size int `json:"batch_size" validate:"gt=0"`
}

// Batch groups consecutive records into fixed-size containers, one per
// tuple position: numeric positions become dense containers of shape
// [size, item...], everything else a boxed []any column. The container
// strategy is fixed by the first record of the session. By default a final
// partial batch is dropped; WithDropLast(false) emits it trimmed to its
// actual length.
func (d *Dataset) Batch(size int, opts ...Option) *Dataset {
	o := newOptions().apply(opts)
	var cfgErr error
	if bad := o.unsupported(optDropLast); bad != "" {
		cfgErr = errors.InvalidConfig(bad, "option not supported by batch")
	} else if err := validation.Validate(&batchConfig{Size: size}); err != nil {
		cfgErr = err
	}
	up := d
	return d.derive("batch", cfgErr, func(s *session) (Iterator, error) {
		src, err := up.open(s)
		if err != nil {
			return nil, err
		}
		return &batchIter{src: src, size: size, dropLast: o.dropLast}, nil
	})
}

type batchIter struct {
	src      Iterator
	size     int
	dropLast bool
	plan     *columnPlan
	done     bool
}

func (it *batchIter) Next(ctx context.Context) (Record, bool, error) {
	if it.done {
		return nil, false, nil
	}
	var fill *groupFill
	count := 0
	for count < it.size {
		rec, ok, err := it.src.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			it.done = true
			break
		}
		if it.plan == nil {
			it.plan = planFor(rec)
		}
		if fill == nil {
			fill = it.plan.group(it.size)
		}
		if err := fill.insert(count, rec); err != nil {
			return nil, false, err
		}
		count++
	}
	if count == 0 {
		it.done = true
		return nil, false, nil
	}
	if count < it.size && it.dropLast {
		return nil, false, nil
	}
	out, err := fill.finish(count)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (it *batchIter) Close() error { return it.src.Close() }

// BatchPadded groups consecutive records like Batch, padding ragged numeric
// positions to a uniform shape per batch. The target shape per position is
// the elementwise maximum over the batch, or the configured padded shape;
// padded slots hold the configured padding value, defaulting to the element
// type's zero. Unlike Batch, shapes are re-derived for every batch.
func (d *Dataset) BatchPadded(size int, opts ...Option) *Dataset {
	o := newOptions().apply(opts)
	var cfgErr error
	if bad := o.unsupported(optDropLast, optPaddedShapes, optPaddingValues); bad != "" {
		cfgErr = errors.InvalidConfig(bad, "option not supported by batch_padded")
	} else if err := validation.Validate(&batchConfig{Size: size}); err != nil {
		cfgErr = err
	}
	up := d
	return d.derive("batch_padded", cfgErr, func(s *session) (Iterator, error) {
		src, err := up.open(s)
		if err != nil {
			return nil, err
		}
		return &batchPaddedIter{
			src:      src,
			size:     size,
			dropLast: o.dropLast,
			shapes:   o.paddedShapes,
			fills:    o.paddingValues,
		}, nil
	})
}

type batchPaddedIter struct {
	src      Iterator
	size     int
	dropLast bool
	shapes   [][]int
	fills    []any
	buf      []Record
	done     bool
}

func (it *batchPaddedIter) Next(ctx context.Context) (Record, bool, error) {
	if it.done {
		return nil, false, nil
	}
	it.buf = it.buf[:0]
	for len(it.buf) < it.size {
		rec, ok, err := it.src.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			it.done = true
			break
		}
		it.buf = append(it.buf, rec)
	}
	if len(it.buf) == 0 {
		return nil, false, nil
	}
	if len(it.buf) < it.size && it.dropLast {
		return nil, false, nil
	}
	out, err := buildPaddedGroup(it.buf, it.shapes, it.fills)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (it *batchPaddedIter) Close() error { return it.src.Close() }
