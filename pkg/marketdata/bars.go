package marketdata

import (
	"fmt"
	"time"
)

// Bar is one daily OHLCV observation.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// MinuteBar is one intraday OHLCV observation.
type MinuteBar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Series is an ordered run of daily bars, oldest first.
type Series []Bar

// MinuteSeries is an ordered run of minute bars for a single session.
type MinuteSeries []MinuteBar

func (s Series) Len() int { return len(s) }

// Window returns the first n bars of the series. The last bar of the
// window is the subject day of a screening evaluation, everything before
// it is baseline history.
func (s Series) Window(n int) (Series, error) {
	if len(s) < n {
		return nil, fmt.Errorf("series has %d bars, need %d", len(s), n)
	}
	return s[:n], nil
}

// Last returns the most recent bar. The series must be non-empty.
func (s Series) Last() Bar { return s[len(s)-1] }

// SecondLast returns the bar before the most recent one. The series must
// hold at least two bars.
func (s Series) SecondLast() Bar { return s[len(s)-2] }

// History returns every bar except the most recent one.
func (s Series) History() Series { return s[:len(s)-1] }

// Closes returns the closing prices in series order.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, b := range s {
		closes[i] = b.Close
	}
	return closes
}
