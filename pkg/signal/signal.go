// Package signal holds the pure screening computations. Every function
// takes already-fetched numbers and never performs I/O.
package signal

import (
	"errors"
	"math"
	"sort"

	"gapscan/pkg/marketdata"
)

// Selling-pressure flag values reported to the run.
const (
	SellingYes = "Yes"
	SellingNo  = "No"
	NoData     = "No data"
)

const tradingDaysPerYear = 252

var (
	ErrZeroDenominator = errors.New("zero denominator")
	ErrNotEnoughData   = errors.New("not enough data")
)

// GapPercent is the percentage difference between today's open and
// yesterday's high. A zero yesterdayHigh is a screen failure, not an
// arithmetic fault.
func GapPercent(todayOpen, yesterdayHigh float64) (float64, error) {
	if yesterdayHigh == 0 {
		return 0, ErrZeroDenominator
	}
	return (todayOpen - yesterdayHigh) / yesterdayHigh * 100, nil
}

// IsGreenDay reports whether the session closed strictly above its open.
func IsGreenDay(open, close float64) bool {
	return close > open
}

// AverageVolume is the arithmetic mean of traded volume over the series.
// With excludeLast the most recent bar is left out of the baseline.
func AverageVolume(bars marketdata.Series, excludeLast bool) float64 {
	if excludeLast && len(bars) > 0 {
		bars = bars.History()
	}
	if len(bars) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range bars {
		sum += b.Volume
	}
	return sum / float64(len(bars))
}

// EquityVolumeEstimate is a liquidity-in-dollars proxy: the mean close
// over the history window times the median volume over the same window.
// It is not literal traded dollar volume.
func EquityVolumeEstimate(bars marketdata.Series) float64 {
	if len(bars) == 0 {
		return 0
	}
	sum := 0.0
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		sum += b.Close
		volumes[i] = b.Volume
	}
	return sum / float64(len(bars)) * median(volumes)
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// VolumeRatio divides today's volume by the trailing average volume. A
// zero average is a screen failure, not an arithmetic fault.
func VolumeRatio(todayVolume, averageVolume float64) (float64, error) {
	if averageVolume == 0 {
		return 0, ErrZeroDenominator
	}
	return todayVolume / averageVolume, nil
}

// MomentumFlag reports whether the price sits closer to the session high
// than the session low. Ties and non-finite inputs resolve to true: the
// flag deliberately fails open toward inclusion.
func MomentumFlag(currentPrice, todayHigh, todayLow float64) bool {
	distHigh := math.Abs(currentPrice - todayHigh)
	distLow := math.Abs(currentPrice - todayLow)
	if math.IsNaN(distHigh) || math.IsNaN(distLow) {
		return true
	}
	return !(distHigh > distLow)
}

// HistoricalVolatilityPercent annualizes the population standard deviation
// of consecutive log returns over the closing-price window, as a
// percentage rounded to two decimals. Fewer than two prices is reported
// as missing data, never as zero.
func HistoricalVolatilityPercent(closes []float64) (float64, error) {
	if len(closes) < 2 {
		return 0, ErrNotEnoughData
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	vol := math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear) * 100
	return math.Round(vol*100) / 100, nil
}

// SellingPressure flags the session when its highest-volume minute bar
// printed a down or flat candle. The first bar is dropped because it
// aggregates pre-market volume, the last because it is market-on-close
// noise. Ties on maximum volume go to the first occurrence.
func SellingPressure(bars marketdata.MinuteSeries) (string, error) {
	if len(bars) < 3 {
		return NoData, ErrNotEnoughData
	}
	trimmed := bars[1 : len(bars)-1]

	peak := trimmed[0]
	for _, b := range trimmed[1:] {
		if b.Volume > peak.Volume {
			peak = b
		}
	}

	if peak.Open >= peak.Close {
		return SellingYes, nil
	}
	return SellingNo, nil
}
