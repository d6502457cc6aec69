// Package tensor provides a dense n-dimensional numeric container.
//
// A Dense pairs a fixed element type (bool, int32, int64, float32, float64)
// with a shape and row-major flat storage. It is the container the dataset
// package allocates when it stacks numeric samples into batches and windows:
// one allocation up front, then in-place row writes.
//
// Row and Slice return views that share storage with their parent; Clone
// detaches. SetRowPadded writes a smaller item into the origin corner of a
// row, which is how ragged samples land in padded batches.
package tensor
