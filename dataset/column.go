package dataset

import (
	"fmt"
	"slices"

	"github.com/datakit-go/datakit/errors"
	"github.com/datakit-go/datakit/tensor"
)

// columnPlan fixes the per-position container strategy for grouped
// emission. It is resolved once from the first record an iterator observes
// and reused for every later group in the same session.
type columnPlan struct {
	arity int
	cols  []columnSpec
}

// columnSpec is the container-building strategy for one tuple position.
// Specs are immutable; alloc produces the mutable per-group fill state.
type columnSpec interface {
	alloc(n int) columnFill
}

// columnFill assembles one group's container for one tuple position.
type columnFill interface {
	insert(i int, item any) error
	finish(k int) (any, error)
}

// planFor resolves a strategy for every tuple position of the first record.
// Dense containers and numeric scalars take the numeric strategy; anything
// else falls back to the generic boxed strategy.
func planFor(first Record) *columnPlan {
	cols := make([]columnSpec, len(first))
	for pos, v := range first {
		cols[pos] = resolveColumn(pos, v)
	}
	return &columnPlan{arity: len(first), cols: cols}
}

func resolveColumn(pos int, sample any) columnSpec {
	switch v := sample.(type) {
	case *tensor.Dense:
		return &numericSpec{pos: pos, dtype: v.DType(), shape: v.Shape()}
	default:
		if dt, ok := tensor.DTypeOf(sample); ok {
			return &numericSpec{pos: pos, dtype: dt}
		}
		return &genericSpec{pos: pos}
	}
}

// group allocates fill state for a group of up to n records.
func (p *columnPlan) group(n int) *groupFill {
	fills := make([]columnFill, len(p.cols))
	for i, spec := range p.cols {
		fills[i] = spec.alloc(n)
	}
	return &groupFill{arity: p.arity, fills: fills}
}

// build assembles a complete group in one shot.
func (p *columnPlan) build(group []Record) (Record, error) {
	g := p.group(len(group))
	for i, rec := range group {
		if err := g.insert(i, rec); err != nil {
			return nil, err
		}
	}
	return g.finish(len(group))
}

// groupFill assembles one group across all tuple positions.
type groupFill struct {
	arity int
	fills []columnFill
}

func (g *groupFill) insert(i int, rec Record) error {
	if len(rec) != g.arity {
		return errors.ArityMismatch(g.arity, len(rec))
	}
	for pos, v := range rec {
		if err := g.fills[pos].insert(i, v); err != nil {
			return err
		}
	}
	return nil
}

// finish trims every container to k items and returns the grouped record.
func (g *groupFill) finish(k int) (Record, error) {
	out := make(Record, len(g.fills))
	for pos, f := range g.fills {
		c, err := f.finish(k)
		if err != nil {
			return nil, err
		}
		out[pos] = c
	}
	return out, nil
}

// --- numeric strategy ---

// numericSpec assembles Dense items and numeric scalars into a single
// container of shape [n, item...]. Element type and item shape are fixed by
// the resolving sample; later insertions must match exactly.
type numericSpec struct {
	pos   int
	dtype tensor.DType
	shape []int // item shape; empty for scalars
}

func (s *numericSpec) alloc(n int) columnFill {
	dims := append([]int{n}, s.shape...)
	return &numericFill{spec: s, out: tensor.New(s.dtype, dims...)}
}

type numericFill struct {
	spec *numericSpec
	out  *tensor.Dense
}

func (f *numericFill) insert(i int, item any) error {
	s := f.spec
	switch v := item.(type) {
	case *tensor.Dense:
		if v.DType() != s.dtype {
			return errors.TypeMismatch(s.pos, s.dtype.String(), v.DType().String())
		}
		if !slices.Equal(v.Shape(), s.shape) {
			return errors.ShapeMismatch(s.pos, s.shape, v.Shape())
		}
	default:
		dt, ok := tensor.DTypeOf(item)
		if !ok {
			return errors.TypeMismatch(s.pos, s.dtype.String(), fmt.Sprintf("%T", item))
		}
		if dt != s.dtype {
			return errors.TypeMismatch(s.pos, s.dtype.String(), dt.String())
		}
		if len(s.shape) != 0 {
			return errors.ShapeMismatch(s.pos, s.shape, nil)
		}
	}
	if err := f.out.SetRow(i, item); err != nil {
		return errors.ShapeMismatch(s.pos, s.shape, nil).WithCause(err)
	}
	return nil
}

func (f *numericFill) finish(k int) (any, error) {
	if k == f.out.Len() {
		return f.out, nil
	}
	trimmed, err := f.out.Slice(0, k)
	if err != nil {
		return nil, errors.ShapeMismatch(f.spec.pos, []int{k}, f.out.Shape()).WithCause(err)
	}
	return trimmed, nil
}

// --- generic strategy ---

// genericSpec boxes items of any type into a plain []any column.
type genericSpec struct {
	pos int
}

func (s *genericSpec) alloc(n int) columnFill {
	return &genericFill{out: make([]any, n)}
}

type genericFill struct {
	out []any
}

func (f *genericFill) insert(i int, item any) error {
	f.out[i] = item
	return nil
}

func (f *genericFill) finish(k int) (any, error) {
	return f.out[:k:k], nil
}

// --- padded assembly ---

// buildPaddedGroup assembles a group with per-position padding. Numeric
// positions are padded to the elementwise maximum shape over the group, or
// to the configured shape when one is set; padded slots hold the configured
// fill value, defaulting to the element type's zero. Generic positions are
// carried unpadded. Shapes are re-derived for every group, so ragged
// streams assemble cleanly.
func buildPaddedGroup(group []Record, shapes [][]int, fills []any) (Record, error) {
	arity := len(group[0])
	if len(shapes) != 0 && len(shapes) != arity {
		return nil, errors.InvalidConfig("padded_shapes",
			fmt.Sprintf("got shapes for %d positions, record arity is %d", len(shapes), arity))
	}
	if len(fills) != 0 && len(fills) != arity {
		return nil, errors.InvalidConfig("padding_values",
			fmt.Sprintf("got values for %d positions, record arity is %d", len(fills), arity))
	}
	out := make(Record, arity)
	for pos := 0; pos < arity; pos++ {
		var configured []int
		if len(shapes) != 0 {
			configured = shapes[pos]
		}
		var fill any
		if len(fills) != 0 {
			fill = fills[pos]
		}
		col, err := buildPaddedColumn(pos, group, configured, fill)
		if err != nil {
			return nil, err
		}
		out[pos] = col
	}
	return out, nil
}

func buildPaddedColumn(pos int, group []Record, configured []int, fill any) (any, error) {
	switch first := group[0][pos].(type) {
	case *tensor.Dense:
		return padDenseColumn(pos, group, first.DType(), configured, fill)
	default:
		if dt, ok := tensor.DTypeOf(first); ok {
			return padScalarColumn(pos, group, dt, configured)
		}
		if len(configured) != 0 {
			return nil, errors.UnsupportedType(pos, first).
				WithDetail("reason", "padded shape configured for a non-numeric position")
		}
		col := make([]any, len(group))
		for i, rec := range group {
			if len(rec) != len(group[0]) {
				return nil, errors.ArityMismatch(len(group[0]), len(rec))
			}
			col[i] = rec[pos]
		}
		return col, nil
	}
}

// padDenseColumn pads a column of Dense items to a uniform target shape.
func padDenseColumn(pos int, group []Record, dtype tensor.DType, configured []int, fill any) (*tensor.Dense, error) {
	items := make([]*tensor.Dense, len(group))
	var target []int
	for i, rec := range group {
		if len(rec) != len(group[0]) {
			return nil, errors.ArityMismatch(len(group[0]), len(rec))
		}
		item, ok := rec[pos].(*tensor.Dense)
		if !ok {
			return nil, errors.TypeMismatch(pos, "*tensor.Dense", fmt.Sprintf("%T", rec[pos]))
		}
		if item.DType() != dtype {
			return nil, errors.TypeMismatch(pos, dtype.String(), item.DType().String())
		}
		shape := item.Shape()
		if i == 0 {
			target = shape
		} else {
			if len(shape) != len(target) {
				return nil, errors.ShapeMismatch(pos, target, shape)
			}
			for d, extent := range shape {
				if extent > target[d] {
					target[d] = extent
				}
			}
		}
		items[i] = item
	}
	if len(configured) != 0 {
		if len(configured) != len(target) {
			return nil, errors.ShapeMismatch(pos, configured, target)
		}
		for d, extent := range target {
			if configured[d] < extent {
				return nil, errors.ShapeMismatch(pos, configured, target)
			}
		}
		target = slices.Clone(configured)
	}
	dims := append([]int{len(group)}, target...)
	out, err := tensor.NewFull(dtype, fill, dims...)
	if err != nil {
		return nil, errors.InvalidConfig("padding_values",
			fmt.Sprintf("cannot fill a %s column with %T", dtype, fill)).WithCause(err)
	}
	for i, item := range items {
		if err := out.SetRowPadded(i, item); err != nil {
			return nil, errors.ShapeMismatch(pos, target, item.Shape()).WithCause(err)
		}
	}
	return out, nil
}

// padScalarColumn assembles a column of numeric scalars. Scalars carry no
// dimensions to pad, so a configured shape is rejected.
func padScalarColumn(pos int, group []Record, dtype tensor.DType, configured []int) (*tensor.Dense, error) {
	if len(configured) != 0 {
		return nil, errors.ShapeMismatch(pos, configured, nil)
	}
	out := tensor.New(dtype, len(group))
	for i, rec := range group {
		if len(rec) != len(group[0]) {
			return nil, errors.ArityMismatch(len(group[0]), len(rec))
		}
		dt, ok := tensor.DTypeOf(rec[pos])
		if !ok {
			return nil, errors.TypeMismatch(pos, dtype.String(), fmt.Sprintf("%T", rec[pos]))
		}
		if dt != dtype {
			return nil, errors.TypeMismatch(pos, dtype.String(), dt.String())
		}
		if err := out.SetRow(i, rec[pos]); err != nil {
			return nil, errors.ShapeMismatch(pos, nil, nil).WithCause(err)
		}
	}
	return out, nil
}
