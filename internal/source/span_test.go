package source

import "testing"

func TestSpanCover(t *testing.T) {
	a := Span{Start: 10, End: 20}
	b := Span{Start: 5, End: 15}
	got := a.Cover(b)
	if got.Start != 5 || got.End != 20 {
		t.Errorf("Cover = %v, want 5-20", got)
	}

	if got := None.Cover(a); got != a {
		t.Errorf("None.Cover(a) = %v, want %v", got, a)
	}
	if got := a.Cover(None); got != a {
		t.Errorf("a.Cover(None) = %v, want %v", got, a)
	}
}

func TestSpanCompare(t *testing.T) {
	cases := []struct {
		name string
		a, b Span
		want int
	}{
		{"equal", Span{1, 2}, Span{1, 2}, 0},
		{"start", Span{1, 5}, Span{2, 3}, -1},
		{"end", Span{1, 3}, Span{1, 5}, -1},
		{"missing last", Span{90, 99}, None, -1},
		{"missing first", None, Span{0, 1}, 1},
		{"both missing", None, None, 0},
	}
	for _, tc := range cases {
		if got := Compare(tc.a, tc.b); got != tc.want {
			t.Errorf("%s: Compare(%v, %v) = %d, want %d", tc.name, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSpanValid(t *testing.T) {
	if None.Valid() {
		t.Error("zero span must be invalid")
	}
	if !(Span{Start: 3, End: 3}).Valid() {
		t.Error("empty non-zero span must still be valid")
	}
}
