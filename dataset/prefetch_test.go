package dataset

import (
	"context"
	"slices"
	"testing"

	"github.com/datakit-go/datakit/errors"
)

func TestPrefetch_Transparent(t *testing.T) {
	got := collectInts(t, Range(100).Prefetch(8))
	if !slices.Equal(got, rangeInts(100)) {
		t.Errorf("prefetch altered the stream: got %d records", len(got))
	}
}

func TestPrefetch_InvalidBuffer(t *testing.T) {
	if code := errors.CodeOf(Range(5).Prefetch(0).Err()); code != errors.ErrCodeInvalidConfig {
		t.Errorf("expected INVALID_CONFIG, got %v", code)
	}
}

func TestPrefetch_PropagatesFailure(t *testing.T) {
	recs, err := failAfter(3).Prefetch(2).Collect(context.Background())
	if err == nil {
		t.Fatal("expected upstream failure to surface")
	}
	if got := intValues(t, recs); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("expected [1 2 3] before failure, got %v", got)
	}
}

func TestPrefetch_FailureSticky(t *testing.T) {
	it, err := failAfter(1).Prefetch(4).Iter(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()
	if _, ok, err := it.Next(context.Background()); !ok || err != nil {
		t.Fatalf("first pull: ok=%v err=%v", ok, err)
	}
	_, _, first := it.Next(context.Background())
	if first == nil {
		t.Fatal("expected failure")
	}
	_, ok, second := it.Next(context.Background())
	if ok || second == nil {
		t.Errorf("expected sticky failure, got ok=%v err=%v", ok, second)
	}
}

func TestPrefetch_CloseUnconsumed(t *testing.T) {
	it, err := Range(10000).Prefetch(4).Iter(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, err := it.Next(context.Background()); !ok || err != nil {
		t.Fatalf("pull failed: ok=%v err=%v", ok, err)
	}
	if err := it.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestPrefetch_AfterParallelMap(t *testing.T) {
	got := collectInts(t, Range(200).Map(squareRecord, WithParallelism(4)).Prefetch(8))
	if !slices.Equal(got, squares(200)) {
		t.Errorf("chained pipeline diverged: got %d records", len(got))
	}
}
