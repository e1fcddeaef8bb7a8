package houses

import (
	"testing"

	"astroaspects/internal/chart"
	"astroaspects/internal/zodiac"
)

// equalCusps puts house n at 15° of sign n-1.
func equalCusps() []chart.Cusp {
	cusps := []chart.Cusp{{House: 0, Coordinate: zodiac.MustNew(4, 2, 0, 0)}}
	for h := 1; h <= 12; h++ {
		cusps = append(cusps, chart.Cusp{House: h, Coordinate: zodiac.MustNew(h-1, 15, 0, 0)})
	}
	return cusps
}

func TestHouseAssignment(t *testing.T) {
	table := NewTable(equalCusps())
	if table.Len() != 12 {
		t.Fatalf("house 0 should be dropped, got %d cusps", table.Len())
	}

	cases := []struct {
		name string
		c    zodiac.Coordinate
		want int
	}{
		{"on the first cusp", zodiac.MustNew(0, 15, 0, 0), 1},
		{"mid first house", zodiac.MustNew(1, 0, 0, 0), 1},
		{"late Pisces", zodiac.MustNew(11, 29, 0, 0), 12},
		{"before every cusp", zodiac.MustNew(0, 0, 0, 0), 12},
		{"one second short of a cusp", zodiac.MustNew(4, 14, 59, 59), 4},
	}
	for _, tc := range cases {
		if got := table.House(tc.c); got != tc.want {
			t.Fatalf("%s: house = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestHouseUnorderedInput(t *testing.T) {
	cusps := equalCusps()
	for i, j := 0, len(cusps)-1; i < j; i, j = i+1, j-1 {
		cusps[i], cusps[j] = cusps[j], cusps[i]
	}
	if got := NewTable(cusps).House(zodiac.MustNew(6, 20, 0, 0)); got != 7 {
		t.Fatalf("house = %d, want 7", got)
	}
}

func TestHouseWithoutCusps(t *testing.T) {
	if got := NewTable(nil).House(zodiac.MustNew(3, 3, 3, 3)); got != 0 {
		t.Fatalf("house = %d, want 0", got)
	}
}
