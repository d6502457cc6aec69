package dataset

import "slices"

// Option configures a dataset operator. Each operator honors its own subset
// of options and rejects the rest at construction time; the violation
// surfaces through Err and on the first attempt to iterate.
type Option func(*options)

type options struct {
	dropLast      bool
	stride        int
	seed          int64
	seeded        bool
	parallelism   int
	ordered       bool
	ignoreErrors  bool
	paddedShapes  [][]int
	paddingValues []any

	applied []string
}

func newOptions() *options {
	return &options{dropLast: true, stride: 1, ordered: true}
}

func (o *options) apply(opts []Option) *options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// unsupported returns the name of the first applied option not in allowed,
// or the empty string when every applied option is allowed.
func (o *options) unsupported(allowed ...string) string {
	for _, name := range o.applied {
		if !slices.Contains(allowed, name) {
			return name
		}
	}
	return ""
}

const (
	optDropLast      = "drop_last"
	optStride        = "stride"
	optSeed          = "seed"
	optParallelism   = "num_parallel_calls"
	optOrdered       = "ordered"
	optIgnoreErrors  = "ignore_errors"
	optPaddedShapes  = "padded_shapes"
	optPaddingValues = "padding_values"
)

// WithDropLast controls whether a final partial batch or window is dropped
// (the default) or emitted trimmed to its actual length.
func WithDropLast(drop bool) Option {
	return func(o *options) {
		o.dropLast = drop
		o.applied = append(o.applied, optDropLast)
	}
}

// WithStride sets the window advance per emission. Defaults to 1.
func WithStride(n int) Option {
	return func(o *options) {
		o.stride = n
		o.applied = append(o.applied, optStride)
	}
}

// WithSeed fixes the shuffle RNG seed, making the emitted order
// reproducible across runs.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
		o.applied = append(o.applied, optSeed)
	}
}

// WithParallelism sets the number of concurrent transform invocations.
// Zero (the default) runs the transform inline with no background work; a
// negative value uses one invocation per CPU.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
		o.applied = append(o.applied, optParallelism)
	}
}

// WithOrdered controls whether a parallel transform preserves upstream
// order (the default) or delivers results in completion order.
func WithOrdered(ordered bool) Option {
	return func(o *options) {
		o.ordered = ordered
		o.applied = append(o.applied, optOrdered)
	}
}

// WithIgnoreErrors makes a transform skip records whose invocation failed
// instead of failing the stream. Only transform failures are skippable;
// shape and configuration errors stay fatal.
func WithIgnoreErrors() Option {
	return func(o *options) {
		o.ignoreErrors = true
		o.applied = append(o.applied, optIgnoreErrors)
	}
}

// WithPaddedShapes fixes the padded shape per tuple position instead of
// deriving the elementwise maximum per group. Every configured dimension
// must be at least as large as every observed dimension.
func WithPaddedShapes(shapes ...[]int) Option {
	return func(o *options) {
		o.paddedShapes = shapes
		o.applied = append(o.applied, optPaddedShapes)
	}
}

// WithPaddingValues sets the per-position fill value for padded slots.
// Defaults to the element type's zero value.
func WithPaddingValues(vals ...any) Option {
	return func(o *options) {
		o.paddingValues = vals
		o.applied = append(o.applied, optPaddingValues)
	}
}
