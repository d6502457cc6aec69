package dataset

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/datakit-go/datakit/errors"
)

func squareRecord(_ context.Context, r Record) (Record, error) {
	n := r[0].(int)
	return R(n * n), nil
}

func squares(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i * i
	}
	return out
}

func TestMap_Serial(t *testing.T) {
	got := collectInts(t, Range(5).Map(squareRecord))
	if !slices.Equal(got, []int{0, 1, 4, 9, 16}) {
		t.Errorf("got %v, want [0 1 4 9 16]", got)
	}
}

func TestMap_NilFn(t *testing.T) {
	if code := errors.CodeOf(Range(5).Map(nil).Err()); code != errors.ErrCodeInvalidConfig {
		t.Errorf("expected INVALID_CONFIG, got %v", code)
	}
}

func TestMap_RejectsForeignOption(t *testing.T) {
	err := Range(5).Map(squareRecord, WithDropLast(false)).Err()
	if code := errors.CodeOf(err); code != errors.ErrCodeInvalidConfig {
		t.Errorf("expected INVALID_CONFIG, got %v (%v)", code, err)
	}
}

func TestMap_ParallelOrderedMatchesSerial(t *testing.T) {
	want := collectInts(t, Range(1000).Map(squareRecord))
	got := collectInts(t, Range(1000).Map(squareRecord, WithParallelism(8)))
	if !slices.Equal(got, want) {
		t.Errorf("parallel ordered output diverged from serial at %d records", len(got))
	}
}

func TestMap_ParallelUnorderedSameMultiset(t *testing.T) {
	got := collectInts(t, Range(1000).Map(squareRecord, WithParallelism(8), WithOrdered(false)))
	if len(got) != 1000 {
		t.Fatalf("expected 1000 records, got %d", len(got))
	}
	slices.Sort(got)
	if !slices.Equal(got, squares(1000)) {
		t.Error("unordered output is not the expected multiset of squares")
	}
}

func TestMap_NegativeParallelismUsesCPUs(t *testing.T) {
	got := collectInts(t, Range(64).Map(squareRecord, WithParallelism(-1)))
	if !slices.Equal(got, squares(64)) {
		t.Errorf("got %v, want squares of 0..63", got)
	}
}

func TestMap_TransformError(t *testing.T) {
	fail := func(_ context.Context, r Record) (Record, error) {
		if r[0].(int) == 3 {
			return nil, fmt.Errorf("bad record")
		}
		return r, nil
	}
	recs, err := Range(10).Map(fail).Collect(context.Background())
	if code := errors.CodeOf(err); code != errors.ErrCodeTransformFailed {
		t.Fatalf("expected TRANSFORM_FAILED, got %v (%v)", code, err)
	}
	if !errors.IsRecoverable(err) {
		t.Error("transform failures must be recoverable")
	}
	if got := intValues(t, recs); !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("expected [0 1 2] before failure, got %v", got)
	}
}

func TestMap_StructuredErrorKeepsIdentity(t *testing.T) {
	fail := func(_ context.Context, r Record) (Record, error) {
		return nil, errors.ShapeMismatch(0, []int{2}, []int{3})
	}
	_, err := Range(3).Map(fail).Collect(context.Background())
	if code := errors.CodeOf(err); code != errors.ErrCodeShapeMismatch {
		t.Errorf("expected SHAPE_MISMATCH to pass through, got %v (%v)", code, err)
	}
}

func TestMap_IgnoreErrorsSerial(t *testing.T) {
	failOdd := func(_ context.Context, r Record) (Record, error) {
		if r[0].(int)%2 == 1 {
			return nil, fmt.Errorf("odd")
		}
		return r, nil
	}
	got := collectInts(t, Range(10).Map(failOdd, WithIgnoreErrors()))
	if !slices.Equal(got, []int{0, 2, 4, 6, 8}) {
		t.Errorf("got %v, want evens", got)
	}
}

func TestMap_IgnoreErrorsParallelOrdered(t *testing.T) {
	failThirds := func(_ context.Context, r Record) (Record, error) {
		if r[0].(int)%3 == 0 {
			return nil, fmt.Errorf("third")
		}
		return r, nil
	}
	got := collectInts(t, Range(100).Map(failThirds, WithParallelism(4), WithIgnoreErrors()))
	var want []int
	for i := range 100 {
		if i%3 != 0 {
			want = append(want, i)
		}
	}
	if !slices.Equal(got, want) {
		t.Errorf("got %d records, want %d surviving records in order", len(got), len(want))
	}
}

func TestMap_IgnoreErrorsDropsAll(t *testing.T) {
	failAll := func(_ context.Context, r Record) (Record, error) {
		return nil, fmt.Errorf("always")
	}
	got := collectInts(t, Range(20).Map(failAll, WithParallelism(4), WithIgnoreErrors()))
	if len(got) != 0 {
		t.Errorf("expected empty output, got %v", got)
	}
}

func TestMap_IgnoreErrorsSkipsOnlyRecoverable(t *testing.T) {
	fail := func(_ context.Context, r Record) (Record, error) {
		if r[0].(int) == 2 {
			return nil, errors.ShapeMismatch(0, []int{1}, []int{9})
		}
		return r, nil
	}
	_, err := Range(10).Map(fail, WithIgnoreErrors()).Collect(context.Background())
	if code := errors.CodeOf(err); code != errors.ErrCodeShapeMismatch {
		t.Errorf("expected SHAPE_MISMATCH despite ignore_errors, got %v (%v)", code, err)
	}
}

func TestMap_ParallelFailsFast(t *testing.T) {
	fail := func(_ context.Context, r Record) (Record, error) {
		if r[0].(int) == 10 {
			return nil, fmt.Errorf("poison")
		}
		return r, nil
	}
	_, err := Range(1000).Map(fail, WithParallelism(4)).Collect(context.Background())
	if code := errors.CodeOf(err); code != errors.ErrCodeTransformFailed {
		t.Errorf("expected TRANSFORM_FAILED, got %v (%v)", code, err)
	}
}

func TestMap_ParallelCloseUnconsumed(t *testing.T) {
	for _, ordered := range []bool{true, false} {
		ds := Range(10000).Map(squareRecord, WithParallelism(4), WithOrdered(ordered))
		it, err := ds.Iter(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		for range 2 {
			if _, ok, err := it.Next(context.Background()); !ok || err != nil {
				t.Fatalf("ordered=%v: pull failed: ok=%v err=%v", ordered, ok, err)
			}
		}
		if err := it.Close(); err != nil {
			t.Fatalf("ordered=%v: close: %v", ordered, err)
		}
		if _, _, err := it.Next(context.Background()); errors.CodeOf(err) != errors.ErrCodeSessionClosed {
			t.Errorf("ordered=%v: expected SESSION_CLOSED after close, got %v", ordered, err)
		}
	}
}

func TestMap_ChainsAcrossStages(t *testing.T) {
	addTen := func(_ context.Context, r Record) (Record, error) {
		return R(r[0].(int) + 10), nil
	}
	got := collectInts(t, Range(6).Map(addTen).Filter(func(r Record) bool {
		return r[0].(int)%2 == 0
	}).Map(squareRecord, WithParallelism(2)))
	if !slices.Equal(got, []int{100, 144, 196}) {
		t.Errorf("got %v, want [100 144 196]", got)
	}
}
