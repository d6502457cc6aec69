package dataset

import (
	"context"
	"math/rand/v2"

	"github.com/datakit-go/datakit/errors"
	"github.com/datakit-go/datakit/validation"
)

type shuffleConfig struct {
	BufferSize int `json:"buffer_size" validate:"gt=1"`
}

// Shuffle reorders records using a sliding reservoir of bufferSize records.
// Each pull swaps a uniformly chosen buffered record out and its upstream
// replacement in, so the shuffle is exact when the buffer covers the whole
// dataset and approximate otherwise. Without WithSeed every session draws a
// fresh ordering; a seeded shuffle replays the same permutation each session.
func (d *Dataset) Shuffle(bufferSize int, opts ...Option) *Dataset {
	o := newOptions().apply(opts)
	var cfgErr error
	if bad := o.unsupported(optSeed); bad != "" {
		cfgErr = errors.InvalidConfig(bad, "option not supported by shuffle")
	} else if err := validation.Validate(&shuffleConfig{BufferSize: bufferSize}); err != nil {
		cfgErr = err
	}
	up := d
	return d.derive("shuffle", cfgErr, func(s *session) (Iterator, error) {
		src, err := up.open(s)
		if err != nil {
			return nil, err
		}
		var rng *rand.Rand
		if o.seeded {
			rng = rand.New(rand.NewPCG(uint64(o.seed), 0))
		} else {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
		return &shuffleIter{src: src, capacity: bufferSize, rng: rng}, nil
	})
}

type shuffleIter struct {
	src      Iterator
	capacity int
	rng      *rand.Rand
	buf      []Record
	primed   bool
	srcDone  bool
}

func (it *shuffleIter) Next(ctx context.Context) (Record, bool, error) {
	if !it.primed {
		it.primed = true
		for len(it.buf) < it.capacity {
			rec, ok, err := it.src.Next(ctx)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				it.srcDone = true
				break
			}
			it.buf = append(it.buf, rec)
		}
	}
	if len(it.buf) == 0 {
		return nil, false, nil
	}
	j := it.rng.IntN(len(it.buf))
	out := it.buf[j]
	if !it.srcDone {
		rec, ok, err := it.src.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if ok {
			it.buf[j] = rec
			return out, true, nil
		}
		it.srcDone = true
	}
	last := len(it.buf) - 1
	it.buf[j] = it.buf[last]
	it.buf[last] = nil
	it.buf = it.buf[:last]
	return out, true, nil
}

func (it *shuffleIter) Close() error { return it.src.Close() }
