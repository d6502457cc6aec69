package tensor

import (
	"errors"
	"testing"
)

func TestNew_Zeroed(t *testing.T) {
	d := New(Int64, 2, 3)
	if d.DType() != Int64 {
		t.Errorf("expected dtype int64, got %s", d.DType())
	}
	if got := d.Shape(); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("expected shape [2 3], got %v", got)
	}
	if d.Size() != 6 {
		t.Errorf("expected size 6, got %d", d.Size())
	}
	for _, v := range d.Data().([]int64) {
		if v != 0 {
			t.Fatalf("expected zeroed storage, got %v", d.Data())
		}
	}
}

func TestNewFull_Fill(t *testing.T) {
	d, err := NewFull(Float64, 1.5, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range d.Data().([]float64) {
		if v != 1.5 {
			t.Fatalf("expected fill 1.5 everywhere, got %v", d.Data())
		}
	}
}

func TestNewFull_BadFill(t *testing.T) {
	_, err := NewFull(Int64, "zero", 2)
	if !errors.Is(err, ErrValue) {
		t.Errorf("expected ErrValue, got %v", err)
	}
}

func TestOf_IntPromotion(t *testing.T) {
	d, err := Of([]int{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if d.DType() != Int64 {
		t.Errorf("expected plain ints stored as int64, got %s", d.DType())
	}
	want := []int64{1, 2, 3}
	got := d.Data().([]int64)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}

func TestOf_ShapeMismatch(t *testing.T) {
	_, err := Of([]float32{1, 2, 3}, 2, 2)
	if !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape, got %v", err)
	}
}

func TestRow_View(t *testing.T) {
	d := MustOf([]int{1, 2, 3, 4, 5, 6}, 2, 3)
	row, err := d.Row(1)
	if err != nil {
		t.Fatal(err)
	}
	if got := row.Shape(); len(got) != 1 || got[0] != 3 {
		t.Errorf("expected row shape [3], got %v", got)
	}
	want := []int64{4, 5, 6}
	got := row.Data().([]int64)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}

	// Views share storage with the parent.
	if err := row.SetAt(int64(40), 0); err != nil {
		t.Fatal(err)
	}
	if v, _ := d.At(1, 0); v != int64(40) {
		t.Errorf("expected write through view, got %v", v)
	}
}

func TestRow_OutOfRange(t *testing.T) {
	d := MustOf([]int{1, 2}, 2)
	if _, err := d.Row(2); !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape, got %v", err)
	}
}

func TestSlice_Prefix(t *testing.T) {
	d := MustOf([]int{1, 2, 3, 4, 5, 6}, 3, 2)
	head, err := d.Slice(0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := head.Shape(); got[0] != 2 || got[1] != 2 {
		t.Errorf("expected shape [2 2], got %v", got)
	}
	if head.Size() != 4 {
		t.Errorf("expected 4 elements, got %d", head.Size())
	}
	if v, _ := head.At(1, 1); v != int64(4) {
		t.Errorf("expected element 4, got %v", v)
	}
}

func TestClone_Detached(t *testing.T) {
	d := MustOf([]float64{1, 2, 3})
	c := d.Clone()
	if err := c.SetAt(9.0, 0); err != nil {
		t.Fatal(err)
	}
	if v, _ := d.At(0); v != 1.0 {
		t.Errorf("expected clone writes to not reach the parent, got %v", v)
	}
}

func TestSetRow_Container(t *testing.T) {
	batch := New(Float32, 2, 3)
	item := MustOf([]float32{1, 2, 3})
	if err := batch.SetRow(1, item); err != nil {
		t.Fatal(err)
	}
	if v, _ := batch.At(1, 2); v != float32(3) {
		t.Errorf("expected 3 at [1 2], got %v", v)
	}
	if v, _ := batch.At(0, 0); v != float32(0) {
		t.Errorf("expected untouched row to stay zero, got %v", v)
	}
}

func TestSetRow_Scalar(t *testing.T) {
	batch := New(Int64, 3)
	if err := batch.SetRow(0, 7); err != nil {
		t.Fatal(err)
	}
	if err := batch.SetRow(1, int64(8)); err != nil {
		t.Fatal(err)
	}
	got := batch.Data().([]int64)
	if got[0] != 7 || got[1] != 8 {
		t.Errorf("expected [7 8 0], got %v", got)
	}
}

func TestSetRow_DTypeMismatch(t *testing.T) {
	batch := New(Int64, 2, 2)
	item := MustOf([]float64{1, 2}, 2)
	if err := batch.SetRow(0, item); !errors.Is(err, ErrDType) {
		t.Errorf("expected ErrDType, got %v", err)
	}
}

func TestSetRow_ShapeMismatch(t *testing.T) {
	batch := New(Int64, 2, 2)
	item := MustOf([]int{1, 2, 3}, 3)
	if err := batch.SetRow(0, item); !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape, got %v", err)
	}
	if err := batch.SetRow(0, int64(1)); !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape storing a scalar into a [2]-shaped row, got %v", err)
	}
}

func TestSetRowPadded_Corner(t *testing.T) {
	batch, err := NewFull(Int64, -1, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	item := MustOf([]int{7, 8}, 2)
	if err := batch.SetRowPadded(0, item); err != nil {
		t.Fatal(err)
	}
	got := batch.Data().([]int64)
	want := []int64{7, 8, -1, -1, -1, -1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}

func TestSetRowPadded_TwoDim(t *testing.T) {
	batch := New(Float64, 1, 2, 3)
	item := MustOf([]float64{1, 2, 3, 4}, 2, 2)
	if err := batch.SetRowPadded(0, item); err != nil {
		t.Fatal(err)
	}
	// Item lands in the origin corner, [*][*][2] stays zero.
	checks := map[[3]int]float64{
		{0, 0, 0}: 1, {0, 0, 1}: 2, {0, 0, 2}: 0,
		{0, 1, 0}: 3, {0, 1, 1}: 4, {0, 1, 2}: 0,
	}
	for idx, want := range checks {
		v, err := batch.At(idx[0], idx[1], idx[2])
		if err != nil {
			t.Fatal(err)
		}
		if v != want {
			t.Errorf("at %v: expected %v, got %v", idx, want, v)
		}
	}
}

func TestSetRowPadded_TooLarge(t *testing.T) {
	batch := New(Int64, 1, 2)
	item := MustOf([]int{1, 2, 3}, 3)
	if err := batch.SetRowPadded(0, item); !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape, got %v", err)
	}
}

func TestEqual_Success(t *testing.T) {
	a := MustOf([]int{1, 2, 3, 4}, 2, 2)
	b := MustOf([]int{1, 2, 3, 4}, 2, 2)
	if !Equal(a, b) {
		t.Error("expected equal containers")
	}
	c := MustOf([]int{1, 2, 3, 4}, 4)
	if Equal(a, c) {
		t.Error("expected shape difference to break equality")
	}
	d := MustOf([]int{1, 2, 3, 5}, 2, 2)
	if Equal(a, d) {
		t.Error("expected element difference to break equality")
	}
}

func TestDTypeOf_Mapping(t *testing.T) {
	tests := []struct {
		value any
		want  DType
		ok    bool
	}{
		{true, Bool, true},
		{int(1), Int64, true},
		{int64(1), Int64, true},
		{int32(1), Int32, true},
		{float32(1), Float32, true},
		{float64(1), Float64, true},
		{"nope", 0, false},
		{[]int{1}, 0, false},
	}
	for _, tt := range tests {
		got, ok := DTypeOf(tt.value)
		if ok != tt.ok {
			t.Errorf("DTypeOf(%T): expected ok=%v, got %v", tt.value, tt.ok, ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("DTypeOf(%T): expected %s, got %s", tt.value, tt.want, got)
		}
	}
}

func TestAt_RankMismatch(t *testing.T) {
	d := MustOf([]int{1, 2, 3, 4}, 2, 2)
	if _, err := d.At(1); !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape for wrong index count, got %v", err)
	}
}

func TestDimensionless_SingleElement(t *testing.T) {
	d := New(Float64)
	if d.Size() != 1 {
		t.Fatalf("expected a single element, got %d", d.Size())
	}
	if err := d.SetAt(2.5); err != nil {
		t.Fatal(err)
	}
	v, err := d.At()
	if err != nil {
		t.Fatal(err)
	}
	if v != 2.5 {
		t.Errorf("expected 2.5, got %v", v)
	}
}
