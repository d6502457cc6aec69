package dataset

// Record is one unit flowing through a pipeline: an ordered, fixed-arity
// tuple of values. Arity and per-position value type are established by the
// first record an iterator observes in a session and must stay consistent
// for the rest of that session; drift is reported as a shape mismatch at
// the point of container assembly.
type Record []any

// R builds a Record from its values.
func R(vals ...any) Record { return Record(vals) }

// Len returns the tuple arity.
func (r Record) Len() int { return len(r) }

// Value returns the sole element of an arity-1 record, or nil for any other
// arity. Sources wrap bare values as arity-1 records; Value unwraps them on
// the way out.
func (r Record) Value() any {
	if len(r) == 1 {
		return r[0]
	}
	return nil
}
