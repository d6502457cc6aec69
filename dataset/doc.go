// Package dataset provides composable, pull-based data pipelines over
// heterogeneous records.
//
// Datasets are lazy descriptions: building one performs no work and
// allocates no resources. Each call to Iter, Collect, ForEach, Records, or
// Scan opens an independent session that walks the graph from scratch, so
// one dataset value can drive many concurrent consumers. Stages pull from
// their upstream on demand, giving natural backpressure without explicit
// flow control.
//
// Records are small tuples of values. Grouping stages pack consecutive
// records into columnar containers, one per tuple position: numeric
// positions become dense n-dimensional containers, everything else a boxed
// column.
//
// # Operators
//
// Synchronous (single-goroutine):
//
//   - Map: transform each record
//   - Filter: keep records matching a predicate
//   - Batch, BatchPadded: pack consecutive records into fixed-size groups
//   - Window, WindowPadded: emit sliding groups with a configurable stride
//   - Unbatch: split grouped records back into elements
//   - Shuffle: reorder records through a sliding reservoir
//   - Take, Skip, Repeat: bound, offset, or cycle the stream
//   - Concat, Interleave: combine several datasets
//
// Concurrent (multi-goroutine):
//
//   - Map with WithParallelism: worker-pool transform, ordered by default
//   - Prefetch: decouple producer and consumer with a bounded buffer
//
// # Usage
//
//	ds := dataset.Range(1000).
//		Map(func(_ context.Context, r dataset.Record) (dataset.Record, error) {
//			n := r[0].(int)
//			return dataset.R(n * n), nil
//		}, dataset.WithParallelism(8)).
//		Shuffle(256, dataset.WithSeed(42)).
//		Batch(32)
//
//	recs, err := ds.Collect(ctx)
//
// Or record by record:
//
//	sc := ds.Scan(ctx)
//	defer sc.Close()
//	for sc.Scan() {
//		use(sc.Record())
//	}
//	if err := sc.Err(); err != nil {
//		return err
//	}
//
// # Cancellation
//
// Every session honors its context. Canceling ctx stops background
// workers and surfaces context.Canceled from the terminal, so an
// interrupt handler is one wrap away:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//
//	err := ds.ForEach(ctx, consume) // returns context.Canceled on Ctrl-C
//
// Sessions opened through Iter or Scan must still be closed; Close
// releases pipeline resources regardless of how the walk ended.
package dataset
