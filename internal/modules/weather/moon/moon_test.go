package moon

import (
	"testing"
	"time"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name               string
		year, month, day   int
		wantIndex, wantPct int
	}{
		{name: "new moon january 2024", year: 2024, month: 1, day: 11, wantIndex: 0, wantPct: 0},
		{name: "full moon january 2024", year: 2024, month: 1, day: 25, wantIndex: 4, wantPct: 100},
		{name: "waning march 2024", year: 2024, month: 3, day: 3, wantIndex: 6, wantPct: 50},
		{name: "epoch-shifted january date", year: 2000, month: 1, day: 6, wantIndex: 0, wantPct: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Estimate(tt.year, tt.month, tt.day)
			if got.Index != tt.wantIndex || got.Illumination != tt.wantPct {
				t.Errorf("Estimate(%d-%02d-%02d) = %+v; want index=%d illumination=%d",
					tt.year, tt.month, tt.day, got, tt.wantIndex, tt.wantPct)
			}
		})
	}
}

func TestEstimate_wrapsBucketEight(t *testing.T) {
	// Fractional cycle is ~0.97 on these dates, which rounds to bucket 8.
	for _, d := range [][3]int{{2024, 1, 9}, {2024, 4, 8}} {
		got := Estimate(d[0], d[1], d[2])
		if got.Index != 0 {
			t.Errorf("Estimate(%v).Index = %d; want 0", d, got.Index)
		}
		if got.Illumination != 0 {
			t.Errorf("Estimate(%v).Illumination = %d; want 0", d, got.Illumination)
		}
	}
}

func TestBucket(t *testing.T) {
	tests := map[float64]int{
		0:      0,
		0.0624: 0,
		0.0625: 1,
		0.5:    4,
		0.9374: 7,
		0.9375: 0,
		0.9999: 0,
	}
	for in, want := range tests {
		if got := bucket(in); got != want {
			t.Errorf("bucket(%v) = %d; want %d", in, got, want)
		}
	}
}

func TestIlluminationTable(t *testing.T) {
	want := []int{0, 25, 50, 75, 100, 75, 50, 25}
	for i, pct := range want {
		if illumination[i] != pct {
			t.Errorf("illumination[%d] = %d; want %d", i, illumination[i], pct)
		}
	}
}

func TestForDate_matchesEstimate(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	ts := time.Date(2024, 1, 25, 23, 30, 0, 0, loc)
	if got, want := ForDate(ts), Estimate(2024, 1, 25); got != want {
		t.Errorf("ForDate(%v) = %+v; want %+v", ts, got, want)
	}
	if ForDate(ts) != ForDate(ts) {
		t.Error("ForDate is not deterministic")
	}
}

func TestPhase_Waxing(t *testing.T) {
	if !(Phase{Index: 2}).Waxing() {
		t.Error("index 2 should be waxing")
	}
	if (Phase{Index: 6}).Waxing() {
		t.Error("index 6 should not be waxing")
	}
}
