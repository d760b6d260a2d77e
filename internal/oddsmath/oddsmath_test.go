package oddsmath

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		american float64
		want     float64
	}{
		{150, 2.5},
		{100, 2.0},
		{-110, 1.909090909},
		{-200, 1.5},
	}
	for _, tt := range tests {
		if got := AmericanToDecimal(tt.american); !almostEqual(got, tt.want, 1e-6) {
			t.Errorf("AmericanToDecimal(%v) = %v, want %v", tt.american, got, tt.want)
		}
	}
}

func TestAmericanToImplied(t *testing.T) {
	tests := []struct {
		american float64
		want     float64
	}{
		{100, 0.5},
		{-110, 0.5238095},
		{250, 0.2857143},
	}
	for _, tt := range tests {
		if got := AmericanToImplied(tt.american); !almostEqual(got, tt.want, 1e-6) {
			t.Errorf("AmericanToImplied(%v) = %v, want %v", tt.american, got, tt.want)
		}
	}
}

func TestImpliedToAmerican(t *testing.T) {
	tests := []struct {
		prob float64
		want int
	}{
		{0.5, -100},
		{0.75, -300},
		{0.25, 300},
		{0, 0},
		{1, 0},
	}
	for _, tt := range tests {
		if got := ImpliedToAmerican(tt.prob); got != tt.want {
			t.Errorf("ImpliedToAmerican(%v) = %d, want %d", tt.prob, got, tt.want)
		}
	}
}

func TestComputeBinaryArb(t *testing.T) {
	t.Run("profitable pair", func(t *testing.T) {
		res := ComputeBinaryArb(0.45, 0.48, 0, 0)
		if res == nil {
			t.Fatal("expected an arb, got nil")
		}
		if !almostEqual(res.GrossPct, 7.0, 1e-9) {
			t.Errorf("GrossPct = %v, want 7.0", res.GrossPct)
		}
		if !almostEqual(res.NetPct, 7.0, 1e-9) {
			t.Errorf("NetPct = %v, want 7.0 with zero fees", res.NetPct)
		}
		if !almostEqual(res.Cost, 0.93, 1e-9) {
			t.Errorf("Cost = %v, want 0.93", res.Cost)
		}
	})

	t.Run("no arb at cost one", func(t *testing.T) {
		if res := ComputeBinaryArb(0.5, 0.5, 0, 0); res != nil {
			t.Errorf("expected nil for cost 1.0, got %+v", res)
		}
	})

	t.Run("no arb above cost one", func(t *testing.T) {
		if res := ComputeBinaryArb(0.6, 0.55, 0, 0); res != nil {
			t.Errorf("expected nil for cost > 1, got %+v", res)
		}
	})

	t.Run("rejects non-positive probabilities", func(t *testing.T) {
		if res := ComputeBinaryArb(0, 0.4, 0, 0); res != nil {
			t.Errorf("expected nil for zero prob, got %+v", res)
		}
		if res := ComputeBinaryArb(0.4, -0.1, 0, 0); res != nil {
			t.Errorf("expected nil for negative prob, got %+v", res)
		}
	})

	t.Run("fees reduce net but not gross", func(t *testing.T) {
		noFee := ComputeBinaryArb(0.45, 0.48, 0, 0)
		withFee := ComputeBinaryArb(0.45, 0.48, 0.02, 0.035)
		if noFee == nil || withFee == nil {
			t.Fatal("expected arbs on both")
		}
		if withFee.GrossPct != noFee.GrossPct {
			t.Errorf("gross changed with fees: %v vs %v", withFee.GrossPct, noFee.GrossPct)
		}
		if withFee.NetPct >= noFee.NetPct {
			t.Errorf("net with fees %v should be below net without %v", withFee.NetPct, noFee.NetPct)
		}
	})

	t.Run("net monotonically decreases in fee", func(t *testing.T) {
		prev := math.Inf(1)
		for _, fee := range []float64{0, 0.01, 0.02, 0.05, 0.10} {
			res := ComputeBinaryArb(0.45, 0.48, fee, fee)
			if res == nil {
				t.Fatalf("expected arb at fee %v", fee)
			}
			if res.NetPct >= prev {
				t.Errorf("NetPct %v at fee %v not below previous %v", res.NetPct, fee, prev)
			}
			prev = res.NetPct
		}
	})

	t.Run("fee can flip net negative", func(t *testing.T) {
		res := ComputeBinaryArb(0.49, 0.50, 0.07, 0.07)
		if res == nil {
			t.Fatal("expected gross arb")
		}
		if res.GrossPct <= 0 {
			t.Errorf("GrossPct = %v, want positive", res.GrossPct)
		}
		if res.NetPct >= 0 {
			t.Errorf("NetPct = %v, want negative after fees", res.NetPct)
		}
	})
}

func TestComputeStakes(t *testing.T) {
	t.Run("splits bankroll by probability", func(t *testing.T) {
		s := ComputeStakes(0.45, 0.48, 100)
		if s == nil {
			t.Fatal("expected stakes, got nil")
		}
		if s.StakeA != 45.0 || s.StakeB != 48.0 {
			t.Errorf("stakes = (%v, %v), want (45, 48)", s.StakeA, s.StakeB)
		}
		if s.TotalStaked != 93.0 {
			t.Errorf("TotalStaked = %v, want 93", s.TotalStaked)
		}
		if s.Payout != 100.0 {
			t.Errorf("Payout = %v, want 100", s.Payout)
		}
		if !almostEqual(s.GuaranteedProfit, 7.0, 1e-9) {
			t.Errorf("GuaranteedProfit = %v, want 7", s.GuaranteedProfit)
		}
	})

	t.Run("nil when no arb", func(t *testing.T) {
		if s := ComputeStakes(0.55, 0.50, 100); s != nil {
			t.Errorf("expected nil, got %+v", s)
		}
	})
}

func TestComputeEV(t *testing.T) {
	t.Run("positive edge", func(t *testing.T) {
		ev, ok := ComputeEV(0.40, 0.50, 0)
		if !ok {
			t.Fatal("expected ok")
		}
		if !almostEqual(ev, 25.0, 1e-9) {
			t.Errorf("EV = %v, want 25", ev)
		}
	})

	t.Run("fee lowers the edge", func(t *testing.T) {
		noFee, _ := ComputeEV(0.40, 0.50, 0)
		withFee, ok := ComputeEV(0.40, 0.50, 0.02)
		if !ok {
			t.Fatal("expected ok")
		}
		if withFee >= noFee {
			t.Errorf("EV with fee %v should be below %v", withFee, noFee)
		}
	})

	t.Run("rejects out-of-range inputs", func(t *testing.T) {
		for _, in := range [][2]float64{{0, 0.5}, {1, 0.5}, {0.4, 0}, {-0.1, 0.5}} {
			if _, ok := ComputeEV(in[0], in[1], 0); ok {
				t.Errorf("ComputeEV(%v, %v) should not be ok", in[0], in[1])
			}
		}
	})
}

func TestRounding(t *testing.T) {
	if got := Round3(7.000000000000006); got != 7.0 {
		t.Errorf("Round3 = %v, want 7.0", got)
	}
	if got := Round4(0.52380952); got != 0.5238 {
		t.Errorf("Round4 = %v, want 0.5238", got)
	}
	if got := Round2(45.018); !almostEqual(got, 45.02, 1e-9) {
		t.Errorf("Round2 = %v, want 45.02", got)
	}
}
