package signal

import (
	"math"
	"testing"
	"time"

	"gapscan/pkg/marketdata"
)

func TestGapPercent_ScaleInvariant(t *testing.T) {
	base, err := GapPercent(10.3, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scaled, err := GapPercent(10.3*7, 10*7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(base-scaled) > 1e-9 {
		t.Errorf("gap not scale invariant: %.9f vs %.9f", base, scaled)
	}
	if math.Abs(base-3.0) > 1e-9 {
		t.Errorf("expected 3%% gap, got %.9f", base)
	}
}

func TestGapPercent_ZeroHigh(t *testing.T) {
	if _, err := GapPercent(10, 0); err == nil {
		t.Fatal("expected error for zero yesterday high")
	}
}

func TestIsGreenDay_StrictInequality(t *testing.T) {
	if IsGreenDay(10, 10) {
		t.Error("equal open and close must not count as green")
	}
	if !IsGreenDay(10, 10.01) {
		t.Error("close above open must count as green")
	}
	if IsGreenDay(10, 9.99) {
		t.Error("close below open must not count as green")
	}
}

func TestAverageVolume_ExcludesLast(t *testing.T) {
	bars := marketdata.Series{
		{Volume: 100},
		{Volume: 200},
		{Volume: 9000},
	}
	if got := AverageVolume(bars, true); got != 150 {
		t.Errorf("expected 150 excluding last bar, got %.2f", got)
	}
	if got := AverageVolume(bars, false); got != 3100 {
		t.Errorf("expected 3100 over all bars, got %.2f", got)
	}
}

func TestEquityVolumeEstimate(t *testing.T) {
	bars := marketdata.Series{
		{Close: 10, Volume: 100},
		{Close: 20, Volume: 300},
		{Close: 30, Volume: 200},
	}
	// mean close 20, median volume 200
	if got := EquityVolumeEstimate(bars); got != 4000 {
		t.Errorf("expected 4000, got %.2f", got)
	}
}

func TestEquityVolumeEstimate_EvenMedian(t *testing.T) {
	bars := marketdata.Series{
		{Close: 10, Volume: 100},
		{Close: 10, Volume: 400},
		{Close: 10, Volume: 200},
		{Close: 10, Volume: 300},
	}
	// median volume is the mean of the two middle values: 250
	if got := EquityVolumeEstimate(bars); got != 2500 {
		t.Errorf("expected 2500, got %.2f", got)
	}
}

func TestVolumeRatio_ZeroAverage(t *testing.T) {
	if _, err := VolumeRatio(1000, 0); err == nil {
		t.Fatal("expected error for zero average volume")
	}
}

func TestVolumeRatio(t *testing.T) {
	ratio, err := VolumeRatio(400, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ratio != 4 {
		t.Errorf("expected ratio 4, got %.2f", ratio)
	}
}

func TestMomentumFlag(t *testing.T) {
	if !MomentumFlag(100, 105, 80) {
		t.Error("price closer to high must flag momentum")
	}
	if MomentumFlag(100, 120, 99) {
		t.Error("price closer to low must not flag momentum")
	}
	// Equidistant ties resolve toward inclusion.
	if !MomentumFlag(100, 110, 90) {
		t.Error("equidistant price must flag momentum")
	}
	if !MomentumFlag(math.NaN(), 110, 90) {
		t.Error("non-finite input must fail open to true")
	}
}

func TestHistoricalVolatilityPercent_FlatSeries(t *testing.T) {
	vol, err := HistoricalVolatilityPercent([]float64{50, 50, 50, 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vol != 0 {
		t.Errorf("flat series must have zero volatility, got %.2f", vol)
	}
}

func TestHistoricalVolatilityPercent_TooFewPrices(t *testing.T) {
	if _, err := HistoricalVolatilityPercent([]float64{100}); err == nil {
		t.Fatal("expected error for fewer than two prices")
	}
	if _, err := HistoricalVolatilityPercent(nil); err == nil {
		t.Fatal("expected error for empty series")
	}
}

func TestHistoricalVolatilityPercent_KnownValue(t *testing.T) {
	// Log returns of +ln(1.1) and -ln(1.1) around a zero mean give a
	// population stddev of ln(1.1); annualized that is 151.30%.
	vol, err := HistoricalVolatilityPercent([]float64{100, 110, 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(vol-151.30) > 0.005 {
		t.Errorf("expected 151.30, got %.2f", vol)
	}
}

func minuteBars(volumes []float64, peakOpen, peakClose float64, peakIdx int) marketdata.MinuteSeries {
	start := time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)
	bars := make(marketdata.MinuteSeries, len(volumes))
	for i, v := range volumes {
		bars[i] = marketdata.MinuteBar{
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Open:      10,
			Close:     11,
			Volume:    v,
		}
	}
	bars[peakIdx].Open = peakOpen
	bars[peakIdx].Close = peakClose
	return bars
}

func TestSellingPressure_DownCandleOnPeakVolume(t *testing.T) {
	bars := minuteBars([]float64{9999, 100, 500, 100, 9999}, 12, 11.5, 2)
	flag, err := SellingPressure(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flag != SellingYes {
		t.Errorf("expected %q, got %q", SellingYes, flag)
	}
}

func TestSellingPressure_UpCandleOnPeakVolume(t *testing.T) {
	bars := minuteBars([]float64{9999, 100, 500, 100, 9999}, 11, 11.5, 2)
	flag, err := SellingPressure(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flag != SellingNo {
		t.Errorf("expected %q, got %q", SellingNo, flag)
	}
}

func TestSellingPressure_FirstAndLastBarsExcluded(t *testing.T) {
	// The ends carry the day's biggest volume on down candles, but both
	// are trimmed before the heuristic runs.
	bars := minuteBars([]float64{9999, 100, 500, 100, 9999}, 11, 11.5, 2)
	bars[0].Open, bars[0].Close = 20, 1
	bars[4].Open, bars[4].Close = 20, 1
	flag, err := SellingPressure(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flag != SellingNo {
		t.Errorf("expected %q, got %q", SellingNo, flag)
	}
}

func TestSellingPressure_TieGoesToFirstOccurrence(t *testing.T) {
	bars := minuteBars([]float64{100, 500, 200, 500, 100}, 12, 11, 1)
	// Second peak with equal volume is an up candle and must lose the tie.
	flag, err := SellingPressure(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flag != SellingYes {
		t.Errorf("expected %q, got %q", SellingYes, flag)
	}
}

func TestSellingPressure_EmptyAfterTrim(t *testing.T) {
	if _, err := SellingPressure(nil); err == nil {
		t.Fatal("expected error for empty series")
	}
	if _, err := SellingPressure(minuteBars([]float64{100, 200}, 10, 11, 0)); err == nil {
		t.Fatal("expected error when nothing remains after trimming")
	}
}
