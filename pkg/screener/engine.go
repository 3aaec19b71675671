// Package screener evaluates symbols against the gap-and-go continuation
// screen and drives the evaluation across the symbol universe.
package screener

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"gapscan/pkg/marketdata"
	"gapscan/pkg/signal"
)

const (
	// lookbackDays is the size of one evaluation window: 49 baseline bars
	// plus the subject day.
	lookbackDays = 50

	minGapPercent   = 2
	minEquityVolume = 250000
	minVolumeRatio  = 3
)

// MarketData supplies historical bars per symbol. Each call fails
// independently of other symbols.
type MarketData interface {
	DailyBars(symbol string, windowDays int) (marketdata.Series, error)
	MinuteBars(symbol string, day time.Time) (marketdata.MinuteSeries, error)
}

// Fundamentals supplies quasi-static per-symbol attributes. Each accessor
// degrades to its own sentinel instead of failing.
type Fundamentals interface {
	MarketCap(symbol string) string
	ShortFloat(symbol string) string
	Sector(symbol string) string
	LastPrice(symbol string) float64
}

// Result is one passing evaluation of a (symbol, window) pair.
type Result struct {
	Symbol            string
	Date              time.Time
	Sector            string
	MarketCap         string
	EquityVolume      float64
	GapPercent        float64
	VolumeRatio       float64
	ShortFloat        string
	VolatilityPercent float64
	VolatilityOK      bool
	SellingEvidence   string
	Passed            bool
}

// Engine screens one symbol at a time against the gap-and-go criteria.
type Engine struct {
	market       MarketData
	fundamentals Fundamentals
	log          *zap.Logger
}

func NewEngine(market MarketData, fundamentals Fundamentals, log *zap.Logger) *Engine {
	return &Engine{market: market, fundamentals: fundamentals, log: log}
}

// Evaluate screens symbol over a windowDays lookback and returns the
// result when it passes both screens, or nil when the symbol is screened
// out or its evaluation had to be abandoned. Faults never propagate to
// sibling evaluations.
func (e *Engine) Evaluate(symbol string, windowDays int) *Result {
	series, err := e.market.DailyBars(symbol, windowDays)
	if err != nil {
		e.log.Error("daily bar fetch failed",
			zap.String("op", "daily_bars"),
			zap.String("symbol", symbol),
			zap.Int("window", windowDays),
			zap.Error(err))
		return nil
	}

	if series.Len() < lookbackDays {
		e.log.Warn("not enough candlestick data",
			zap.String("op", "daily_bars"),
			zap.String("symbol", symbol),
			zap.Int("bars", series.Len()))
	}

	window, err := series.Window(lookbackDays)
	if err != nil {
		e.log.Warn("evaluation window unavailable",
			zap.String("op", "evaluate"),
			zap.String("symbol", symbol),
			zap.Int("window", windowDays),
			zap.Error(err))
		return nil
	}

	today := window.Last()
	yesterday := window.SecondLast()
	history := window.History()

	gap, err := signal.GapPercent(today.Open, yesterday.High)
	if err != nil {
		e.log.Warn("gap unavailable",
			zap.String("op", "evaluate"),
			zap.String("symbol", symbol),
			zap.Error(err))
		return nil
	}
	ratio, err := signal.VolumeRatio(today.Volume, signal.AverageVolume(window, true))
	if err != nil {
		e.log.Warn("volume ratio unavailable",
			zap.String("op", "evaluate"),
			zap.String("symbol", symbol),
			zap.Error(err))
		return nil
	}
	equityVolume := signal.EquityVolumeEstimate(history)

	if !signal.IsGreenDay(today.Open, today.Close) ||
		roundWhole(gap) < minGapPercent ||
		equityVolume < minEquityVolume ||
		roundWhole(ratio) <= minVolumeRatio {
		return nil
	}

	marketCap := e.fundamentals.MarketCap(symbol)
	shortFloat := e.fundamentals.ShortFloat(symbol)
	sector := e.fundamentals.Sector(symbol)
	lastPrice := e.fundamentals.LastPrice(symbol)

	selling := signal.NoData
	if minutes, err := e.market.MinuteBars(symbol, today.Date); err != nil {
		e.log.Error("minute bar fetch failed",
			zap.String("op", "minute_bars"),
			zap.String("symbol", symbol),
			zap.Error(err))
	} else if flag, err := signal.SellingPressure(minutes); err != nil {
		e.log.Warn("selling pressure unavailable",
			zap.String("op", "selling_pressure"),
			zap.String("symbol", symbol),
			zap.Error(err))
	} else {
		selling = flag
	}

	volatility, volErr := signal.HistoricalVolatilityPercent(history.Closes())
	if volErr != nil {
		e.log.Warn("volatility unavailable",
			zap.String("op", "volatility"),
			zap.String("symbol", symbol),
			zap.Error(volErr))
	}

	if !signal.MomentumFlag(lastPrice, today.High, today.Low) || selling != signal.SellingNo {
		return nil
	}

	return &Result{
		Symbol:            symbol,
		Date:              today.Date,
		Sector:            sector,
		MarketCap:         marketCap,
		EquityVolume:      equityVolume,
		GapPercent:        gap,
		VolumeRatio:       ratio,
		ShortFloat:        shortFloat,
		VolatilityPercent: volatility,
		VolatilityOK:      volErr == nil,
		SellingEvidence:   selling,
		Passed:            true,
	}
}

func roundWhole(v float64) int64 {
	return decimal.NewFromFloat(v).Round(0).IntPart()
}
