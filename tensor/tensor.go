package tensor

import (
	"errors"
	"fmt"
	"slices"
)

// Sentinel errors for container operations. Callers that need structured
// codes wrap these at the boundary.
var (
	// ErrDType indicates an element-type disagreement between containers.
	ErrDType = errors.New("tensor: dtype mismatch")
	// ErrShape indicates a shape disagreement or an out-of-range index.
	ErrShape = errors.New("tensor: shape mismatch")
	// ErrValue indicates a scalar value with no mapping to the element type.
	ErrValue = errors.New("tensor: unsupported value")
)

// Dense is a dense n-dimensional container with a fixed element type and a
// row-major flat storage. A Dense produced by Row or Slice is a view sharing
// storage with its parent; Clone detaches.
type Dense struct {
	dtype DType
	shape []int
	data  any // []bool | []int32 | []int64 | []float32 | []float64
}

// New allocates a zeroed container of the given element type and shape.
// With no dimensions the container holds a single element.
func New(dtype DType, shape ...int) *Dense {
	for _, dim := range shape {
		if dim < 0 {
			return &Dense{dtype: dtype, shape: slices.Clone(shape), data: alloc(dtype, 0)}
		}
	}
	return &Dense{
		dtype: dtype,
		shape: slices.Clone(shape),
		data:  alloc(dtype, product(shape)),
	}
}

// NewFull allocates a container with every element set to fill. A nil fill
// leaves the container zeroed.
func NewFull(dtype DType, fill any, shape ...int) (*Dense, error) {
	d := New(dtype, shape...)
	if fill == nil {
		return d, nil
	}
	v, ok := convert(dtype, fill)
	if !ok {
		return nil, fmt.Errorf("%w: cannot fill %s with %T", ErrValue, dtype, fill)
	}
	fillFlat(d.data, v)
	return d, nil
}

// Of builds a container from a flat slice of values. With no explicit shape
// the result is one-dimensional. Plain ints are stored as int64.
func Of[T bool | int | int32 | int64 | float32 | float64](vals []T, shape ...int) (*Dense, error) {
	if len(shape) == 0 {
		shape = []int{len(vals)}
	}
	if product(shape) != len(vals) {
		return nil, fmt.Errorf("%w: shape %v does not hold %d values", ErrShape, shape, len(vals))
	}
	d := &Dense{shape: slices.Clone(shape)}
	switch vs := any(vals).(type) {
	case []bool:
		d.dtype, d.data = Bool, slices.Clone(vs)
	case []int:
		out := make([]int64, len(vs))
		for i, v := range vs {
			out[i] = int64(v)
		}
		d.dtype, d.data = Int64, out
	case []int32:
		d.dtype, d.data = Int32, slices.Clone(vs)
	case []int64:
		d.dtype, d.data = Int64, slices.Clone(vs)
	case []float32:
		d.dtype, d.data = Float32, slices.Clone(vs)
	case []float64:
		d.dtype, d.data = Float64, slices.Clone(vs)
	}
	return d, nil
}

// MustOf is Of for literals known to be well-formed; it panics on error.
func MustOf[T bool | int | int32 | int64 | float32 | float64](vals []T, shape ...int) *Dense {
	d, err := Of(vals, shape...)
	if err != nil {
		panic(err)
	}
	return d
}

// DType returns the element type.
func (d *Dense) DType() DType { return d.dtype }

// Shape returns a copy of the dimensions.
func (d *Dense) Shape() []int { return slices.Clone(d.shape) }

// Rank returns the number of dimensions.
func (d *Dense) Rank() int { return len(d.shape) }

// Len returns the extent of the first dimension, or 1 for a dimensionless
// container.
func (d *Dense) Len() int {
	if len(d.shape) == 0 {
		return 1
	}
	return d.shape[0]
}

// Size returns the total number of elements.
func (d *Dense) Size() int { return product(d.shape) }

// Data exposes the flat storage as one of the supported slice types.
// Mutating it mutates the container.
func (d *Dense) Data() any { return d.data }

// Row returns a view of row i along the first dimension. The view shares
// storage with the receiver; its shape drops the first dimension.
func (d *Dense) Row(i int) (*Dense, error) {
	if len(d.shape) == 0 {
		return nil, fmt.Errorf("%w: cannot take a row of a dimensionless container", ErrShape)
	}
	if i < 0 || i >= d.shape[0] {
		return nil, fmt.Errorf("%w: row %d out of range [0,%d)", ErrShape, i, d.shape[0])
	}
	stride := product(d.shape[1:])
	return &Dense{
		dtype: d.dtype,
		shape: slices.Clone(d.shape[1:]),
		data:  sliceFlat(d.data, i*stride, (i+1)*stride),
	}, nil
}

// Slice returns a view of rows [from,to) along the first dimension. The view
// shares storage with the receiver.
func (d *Dense) Slice(from, to int) (*Dense, error) {
	if len(d.shape) == 0 {
		return nil, fmt.Errorf("%w: cannot slice a dimensionless container", ErrShape)
	}
	if from < 0 || to < from || to > d.shape[0] {
		return nil, fmt.Errorf("%w: slice [%d,%d) out of range [0,%d]", ErrShape, from, to, d.shape[0])
	}
	stride := product(d.shape[1:])
	shape := slices.Clone(d.shape)
	shape[0] = to - from
	return &Dense{
		dtype: d.dtype,
		shape: shape,
		data:  sliceFlat(d.data, from*stride, to*stride),
	}, nil
}

// Clone returns a deep copy detached from any shared storage.
func (d *Dense) Clone() *Dense {
	out := New(d.dtype, d.shape...)
	copyFlat(out.data, 0, d.data, 0, d.Size())
	return out
}

// At returns the element at the given indices. A dimensionless container
// takes no indices.
func (d *Dense) At(idx ...int) (any, error) {
	off, err := d.offset(idx)
	if err != nil {
		return nil, err
	}
	return atFlat(d.data, off), nil
}

// SetAt stores a scalar at the given indices.
func (d *Dense) SetAt(v any, idx ...int) error {
	off, err := d.offset(idx)
	if err != nil {
		return err
	}
	cv, ok := convert(d.dtype, v)
	if !ok {
		return fmt.Errorf("%w: cannot store %T in %s", ErrValue, v, d.dtype)
	}
	setFlat(d.data, off, cv)
	return nil
}

// SetRow writes item into row i along the first dimension. The item is
// either a container whose dtype and shape match the row exactly, or a
// scalar when rows are single elements.
func (d *Dense) SetRow(i int, item any) error {
	if len(d.shape) == 0 {
		return fmt.Errorf("%w: cannot set a row of a dimensionless container", ErrShape)
	}
	if i < 0 || i >= d.shape[0] {
		return fmt.Errorf("%w: row %d out of range [0,%d)", ErrShape, i, d.shape[0])
	}
	stride := product(d.shape[1:])
	switch it := item.(type) {
	case *Dense:
		if it.dtype != d.dtype {
			return fmt.Errorf("%w: row holds %s, item holds %s", ErrDType, d.dtype, it.dtype)
		}
		if !slices.Equal(it.shape, d.shape[1:]) {
			return fmt.Errorf("%w: row shape %v, item shape %v", ErrShape, d.shape[1:], it.shape)
		}
		copyFlat(d.data, i*stride, it.data, 0, stride)
		return nil
	default:
		if stride != 1 {
			return fmt.Errorf("%w: row shape %v cannot hold a scalar", ErrShape, d.shape[1:])
		}
		cv, ok := convert(d.dtype, item)
		if !ok {
			return fmt.Errorf("%w: cannot store %T in %s", ErrValue, item, d.dtype)
		}
		setFlat(d.data, i, cv)
		return nil
	}
}

// SetRowPadded writes item into the origin corner of row i, leaving the
// remainder of the row untouched. The item's rank must match the row's and
// every item dimension must fit within the corresponding row dimension.
func (d *Dense) SetRowPadded(i int, item *Dense) error {
	if len(d.shape) == 0 {
		return fmt.Errorf("%w: cannot set a row of a dimensionless container", ErrShape)
	}
	if i < 0 || i >= d.shape[0] {
		return fmt.Errorf("%w: row %d out of range [0,%d)", ErrShape, i, d.shape[0])
	}
	if item.dtype != d.dtype {
		return fmt.Errorf("%w: row holds %s, item holds %s", ErrDType, d.dtype, item.dtype)
	}
	rowShape := d.shape[1:]
	if len(item.shape) != len(rowShape) {
		return fmt.Errorf("%w: row rank %d, item rank %d", ErrShape, len(rowShape), len(item.shape))
	}
	for dim, extent := range item.shape {
		if extent > rowShape[dim] {
			return fmt.Errorf("%w: item shape %v exceeds row shape %v", ErrShape, item.shape, rowShape)
		}
	}
	stride := product(rowShape)
	copyRegion(d.data, i*stride, rowShape, item.data, 0, item.shape)
	return nil
}

// Equal reports whether two containers agree in dtype, shape, and every
// element.
func Equal(a, b *Dense) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.dtype != b.dtype || !slices.Equal(a.shape, b.shape) {
		return false
	}
	return equalFlat(a.data, b.data)
}

func (d *Dense) String() string {
	return fmt.Sprintf("Dense[%s]%v", d.dtype, d.shape)
}

func (d *Dense) offset(idx []int) (int, error) {
	if len(idx) != len(d.shape) {
		return 0, fmt.Errorf("%w: %d indices for rank %d", ErrShape, len(idx), len(d.shape))
	}
	off := 0
	for dim, i := range idx {
		if i < 0 || i >= d.shape[dim] {
			return 0, fmt.Errorf("%w: index %d out of range [0,%d) in dim %d", ErrShape, i, d.shape[dim], dim)
		}
		off = off*d.shape[dim] + i
	}
	return off, nil
}

func product(shape []int) int {
	n := 1
	for _, dim := range shape {
		n *= dim
	}
	return n
}

// copyRegion copies src (shape srcShape) into the origin corner of the
// region of dst that starts at dstOff and spans dstShape, recursing over
// leading dimensions. Ranks are equal and src fits within dst.
func copyRegion(dst any, dstOff int, dstShape []int, src any, srcOff int, srcShape []int) {
	if len(srcShape) == 0 {
		copyFlat(dst, dstOff, src, srcOff, 1)
		return
	}
	if len(srcShape) == 1 {
		copyFlat(dst, dstOff, src, srcOff, srcShape[0])
		return
	}
	dstStride := product(dstShape[1:])
	srcStride := product(srcShape[1:])
	for i := range srcShape[0] {
		copyRegion(dst, dstOff+i*dstStride, dstShape[1:], src, srcOff+i*srcStride, srcShape[1:])
	}
}

// --- flat storage helpers ---

func copyFlat(dst any, dstOff int, src any, srcOff, n int) {
	switch ds := dst.(type) {
	case []bool:
		copy(ds[dstOff:dstOff+n], src.([]bool)[srcOff:srcOff+n])
	case []int32:
		copy(ds[dstOff:dstOff+n], src.([]int32)[srcOff:srcOff+n])
	case []int64:
		copy(ds[dstOff:dstOff+n], src.([]int64)[srcOff:srcOff+n])
	case []float32:
		copy(ds[dstOff:dstOff+n], src.([]float32)[srcOff:srcOff+n])
	case []float64:
		copy(ds[dstOff:dstOff+n], src.([]float64)[srcOff:srcOff+n])
	}
}

func sliceFlat(data any, from, to int) any {
	switch ds := data.(type) {
	case []bool:
		return ds[from:to]
	case []int32:
		return ds[from:to]
	case []int64:
		return ds[from:to]
	case []float32:
		return ds[from:to]
	case []float64:
		return ds[from:to]
	default:
		return nil
	}
}

func atFlat(data any, off int) any {
	switch ds := data.(type) {
	case []bool:
		return ds[off]
	case []int32:
		return ds[off]
	case []int64:
		return ds[off]
	case []float32:
		return ds[off]
	case []float64:
		return ds[off]
	default:
		return nil
	}
}

func setFlat(data any, off int, v any) {
	switch ds := data.(type) {
	case []bool:
		ds[off] = v.(bool)
	case []int32:
		ds[off] = v.(int32)
	case []int64:
		ds[off] = v.(int64)
	case []float32:
		ds[off] = v.(float32)
	case []float64:
		ds[off] = v.(float64)
	}
}

func fillFlat(data any, v any) {
	switch ds := data.(type) {
	case []bool:
		for i := range ds {
			ds[i] = v.(bool)
		}
	case []int32:
		for i := range ds {
			ds[i] = v.(int32)
		}
	case []int64:
		for i := range ds {
			ds[i] = v.(int64)
		}
	case []float32:
		for i := range ds {
			ds[i] = v.(float32)
		}
	case []float64:
		for i := range ds {
			ds[i] = v.(float64)
		}
	}
}

func equalFlat(a, b any) bool {
	switch as := a.(type) {
	case []bool:
		return slices.Equal(as, b.([]bool))
	case []int32:
		return slices.Equal(as, b.([]int32))
	case []int64:
		return slices.Equal(as, b.([]int64))
	case []float32:
		return slices.Equal(as, b.([]float32))
	case []float64:
		return slices.Equal(as, b.([]float64))
	default:
		return false
	}
}
