package dataset

import "context"

// Scanner walks a session record by record in the bufio.Scanner style:
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
// Scan returns false on exhaustion, failure, or context cancellation;
// Err distinguishes the cases. Close releases the session and is safe to
// call more than once.
type Scanner struct {
	ctx context.Context
	it  Iterator
	rec Record
	err error
}

// Scan opens a session over the dataset and returns a Scanner bound to ctx.
// A configuration error surfaces from the scanner's Err method.
func (d *Dataset) Scan(ctx context.Context) *Scanner {
	it, err := d.Iter(ctx)
	if err != nil {
		return &Scanner{ctx: ctx, err: err}
	}
	return &Scanner{ctx: ctx, it: it}
}

// Scan advances to the next record. It returns false when the stream ends
// for any reason.
func (sc *Scanner) Scan() bool {
	if sc.err != nil || sc.it == nil {
		return false
	}
	rec, ok, err := sc.it.Next(sc.ctx)
	if err != nil {
		sc.err = err
		sc.rec = nil
		return false
	}
	if !ok {
		sc.rec = nil
		return false
	}
	sc.rec = rec
	return true
}

// Record returns the record produced by the last successful Scan.
func (sc *Scanner) Record() Record { return sc.rec }

// Err returns the error that stopped the scan, or nil after a clean
// exhaustion.
func (sc *Scanner) Err() error { return sc.err }

// Close releases the underlying session.
func (sc *Scanner) Close() error {
	if sc.it == nil {
		return nil
	}
	return sc.it.Close()
}
