package strategy

import (
	"math"
	"testing"
)

func TestRSI_Bounds(t *testing.T) {
	closes := []float64{44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42, 45.84, 46.08,
		45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03, 46.41, 46.22, 45.64, 46.21}
	r := RSI(closes, 14)
	for i, v := range r {
		if i < 14 {
			if !math.IsNaN(v) {
				t.Errorf("index %d must be warmup NaN, got %v", i, v)
			}
			continue
		}
		if v < 0 || v > 100 {
			t.Errorf("RSI[%d]=%v out of [0,100]", i, v)
		}
	}
	// классический пример Уайлдера: первое значение ~70.46
	if math.Abs(r[14]-70.46) > 0.05 {
		t.Errorf("RSI[14]=%.4f, want ~70.46", r[14])
	}
}

func TestRSI_Monotonic(t *testing.T) {
	up := make([]float64, 20)
	down := make([]float64, 20)
	for i := range up {
		up[i] = 100 + float64(i)
		down[i] = 100 - float64(i)
	}

	if v, ok := LastRSI(up, 14); !ok || v != 100 {
		t.Errorf("increasing series: RSI=%v ok=%v, want 100", v, ok)
	}
	if v, ok := LastRSI(down, 14); !ok || v != 0 {
		t.Errorf("decreasing series: RSI=%v ok=%v, want 0", v, ok)
	}
}

func TestRSI_Flat(t *testing.T) {
	flat := make([]float64, 30)
	for i := range flat {
		flat[i] = 42
	}
	if v, ok := LastRSI(flat, 14); !ok || v != 50 {
		t.Errorf("flat series: RSI=%v, want 50", v)
	}
}

func TestRSI_ShortSeries(t *testing.T) {
	if _, ok := LastRSI([]float64{1, 2, 3}, 14); ok {
		t.Error("expected ok=false for short series")
	}
	if _, ok := LastRSI(make([]float64, 15), 14); !ok {
		t.Error("period+1 bars must be enough")
	}
}

func TestRSI_NoLookahead(t *testing.T) {
	closes := []float64{10, 11, 10.5, 12, 11.7, 12.3, 13, 12.1, 12.4, 12.9, 13.5, 13.1, 12.8, 13.9, 14.2, 13.6, 14.8}
	full := RSI(closes, 5)
	for n := 6; n <= len(closes); n++ {
		part := RSI(closes[:n], 5)
		if part[n-1] != full[n-1] {
			t.Fatalf("RSI at %d depends on future bars: %v vs %v", n-1, part[n-1], full[n-1])
		}
	}
}

func TestEMA(t *testing.T) {
	flat := []float64{5, 5, 5, 5, 5, 5}
	for i, v := range EMA(flat, 3) {
		if v != 5 {
			t.Errorf("EMA[%d]=%v, want 5", i, v)
		}
	}

	got := EMA([]float64{1, 2, 3}, 3) // alpha = 0.5
	want := []float64{1, 1.5, 2.25}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("EMA[%d]=%v, want %v", i, got[i], want[i])
		}
	}

	if len(EMA(nil, 9)) != 0 {
		t.Error("empty input must give empty output")
	}
}
