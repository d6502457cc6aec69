package dataset

import (
	"context"

	"github.com/datakit-go/datakit/errors"
	"github.com/datakit-go/datakit/validation"
)

type windowConfig struct {
	Size   int `json:"size" validate:"gt=0"`
	Stride int `json:"stride" validate:"gt=0"`
}

// Window emits overlapping groups of consecutive records. Each window holds
// size records; successive windows start stride records apart (default 1).
// A stride smaller than the size overlaps, equal to the size tiles like
// Batch, larger than the size skips records between windows. By default a
// final partial window is dropped.
func (d *Dataset) Window(size int, opts ...Option) *Dataset {
	return d.window("window", size, false, opts)
}

// WindowPadded emits overlapping groups like Window, padding ragged numeric
// positions per window the way BatchPadded does per batch.
func (d *Dataset) WindowPadded(size int, opts ...Option) *Dataset {
	return d.window("window_padded", size, true, opts)
}

func (d *Dataset) window(stage string, size int, padded bool, opts []Option) *Dataset {
	o := newOptions().apply(opts)
	allowed := []string{optDropLast, optStride}
	if padded {
		allowed = append(allowed, optPaddedShapes, optPaddingValues)
	}
	var cfgErr error
	if bad := o.unsupported(allowed...); bad != "" {
		cfgErr = errors.InvalidConfig(bad, "option not supported by "+stage)
	} else if err := validation.Validate(&windowConfig{Size: size, Stride: o.stride}); err != nil {
		cfgErr = err
	}
	up := d
	return d.derive(stage, cfgErr, func(s *session) (Iterator, error) {
		src, err := up.open(s)
		if err != nil {
			return nil, err
		}
		return &windowIter{
			src:      src,
			size:     size,
			stride:   o.stride,
			dropLast: o.dropLast,
			padded:   padded,
			shapes:   o.paddedShapes,
			fills:    o.paddingValues,
		}, nil
	})
}

type windowIter struct {
	src      Iterator
	size     int
	stride   int
	dropLast bool
	padded   bool
	shapes   [][]int
	fills    []any
	plan     *columnPlan
	buf      []Record
	skip     int
	done     bool
}

func (it *windowIter) Next(ctx context.Context) (Record, bool, error) {
	if it.done {
		return nil, false, nil
	}
	for it.skip > 0 {
		_, ok, err := it.src.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			it.done = true
			return nil, false, nil
		}
		it.skip--
	}
	exhausted := false
	for len(it.buf) < it.size {
		rec, ok, err := it.src.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			exhausted = true
			break
		}
		it.buf = append(it.buf, rec)
	}
	if exhausted {
		it.done = true
		if len(it.buf) == 0 || it.dropLast {
			return nil, false, nil
		}
	}
	out, err := it.emit()
	if err != nil {
		return nil, false, err
	}
	if !exhausted {
		if it.stride < len(it.buf) {
			it.buf = append(it.buf[:0], it.buf[it.stride:]...)
		} else {
			it.skip = it.stride - len(it.buf)
			it.buf = it.buf[:0]
		}
	}
	return out, true, nil
}

func (it *windowIter) emit() (Record, error) {
	if it.padded {
		return buildPaddedGroup(it.buf, it.shapes, it.fills)
	}
	if it.plan == nil {
		it.plan = planFor(it.buf[0])
	}
	return it.plan.build(it.buf)
}

func (it *windowIter) Close() error { return it.src.Close() }
