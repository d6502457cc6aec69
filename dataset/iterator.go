package dataset

import "context"

// Iterator is the mutable, single-consumer, per-session cursor over one
// stage's output. It owns any buffers, background goroutines, and the
// upstream iterator it was built from.
type Iterator interface {
	// Next returns the next record. Returns (nil, false, nil) when
	// exhausted; exhaustion is permanent. A non-nil error is terminal.
	Next(ctx context.Context) (Record, bool, error)
	// Close releases resources held by the iterator, cancelling background
	// work and closing the upstream iterator.
	Close() error
}

// result carries a record or error through a channel.
type result struct {
	rec Record
	ok  bool
	err error
}

// recordsIter walks a fixed slice of records.
type recordsIter struct {
	recs  []Record
	index int
}

func (it *recordsIter) Next(_ context.Context) (Record, bool, error) {
	if it.index >= len(it.recs) {
		return nil, false, nil
	}
	rec := it.recs[it.index]
	it.index++
	return rec, true, nil
}

func (it *recordsIter) Close() error { return nil }
