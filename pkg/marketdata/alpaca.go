package marketdata

import (
	"fmt"
	"sort"
	"time"

	md "github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"go.uber.org/zap"
)

// Client fetches daily and intraday bars from the Alpaca market data API.
type Client struct {
	md  *md.Client
	log *zap.Logger
}

func NewClient(apiKey, apiSecret string, log *zap.Logger) *Client {
	return &Client{
		md: md.NewClient(md.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
		log: log,
	}
}

// DailyBars returns up to windowDays of the most recent daily bars for
// symbol, oldest first. The provider may return fewer around holidays or
// for recently listed symbols.
func (c *Client) DailyBars(symbol string, windowDays int) (Series, error) {
	// Calendar span is padded so that weekends and holidays still leave
	// windowDays trading bars to trim down to.
	start := time.Now().AddDate(0, 0, -(windowDays*2 + 10))

	bars, err := c.md.GetBars(symbol, md.GetBarsRequest{
		TimeFrame: md.OneDay,
		Start:     start,
	})
	if err != nil {
		return nil, fmt.Errorf("daily bars for %s: %w", symbol, err)
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})
	if len(bars) > windowDays {
		bars = bars[len(bars)-windowDays:]
	}

	series := make(Series, 0, len(bars))
	for _, b := range bars {
		series = append(series, Bar{
			Date:   b.Timestamp,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		})
	}

	c.log.Debug("fetched daily bars",
		zap.String("op", "daily_bars"),
		zap.String("symbol", symbol),
		zap.Int("bars", len(series)))

	return series, nil
}

// MinuteBars returns one trading session's minute bars for symbol on the
// given day, oldest first.
func (c *Client) MinuteBars(symbol string, day time.Time) (MinuteSeries, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	bars, err := c.md.GetBars(symbol, md.GetBarsRequest{
		TimeFrame: md.OneMin,
		Start:     start,
		End:       end,
	})
	if err != nil {
		return nil, fmt.Errorf("minute bars for %s on %s: %w", symbol, start.Format("2006-01-02"), err)
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})

	series := make(MinuteSeries, 0, len(bars))
	for _, b := range bars {
		series = append(series, MinuteBar{
			Timestamp: b.Timestamp,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    float64(b.Volume),
		})
	}

	return series, nil
}
