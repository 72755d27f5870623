package utils

import "testing"

func TestPaginate(t *testing.T) {
	cases := []struct {
		name                 string
		total, limit, offset int
		wantStart, wantEnd   int
	}{
		{"window inside", 10, 3, 2, 2, 5},
		{"window clipped at end", 10, 5, 8, 8, 10},
		{"offset past end", 10, 5, 20, 10, 10},
		{"zero limit uses default", 10, 0, 0, 0, 10},
		{"negative offset clamped", 10, 3, -4, 0, 3},
		{"empty collection", 0, 5, 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := Paginate(tc.total, tc.limit, tc.offset, 50)
			if start != tc.wantStart || end != tc.wantEnd {
				t.Fatalf("got [%d, %d), want [%d, %d)", start, end, tc.wantStart, tc.wantEnd)
			}
		})
	}
}
