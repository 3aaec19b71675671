package screener

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"gapscan/pkg/signal"
)

// sizzlerVolatility is the volatility percent above which a passing
// symbol is tracked as a sizzler.
const sizzlerVolatility = 100

const reportHeader = " Stock      Date               Sector            MarketCap     EquityVol        Gap      VolRatio   " +
	"ShortFloat   Volatility  EvidenceofSelling"

// Runner fans the engine out across the symbol universe, one batch per
// window size. The counters are only touched by the orchestrating
// goroutine after each batch joins, so they need no locking.
type Runner struct {
	engine *Engine
	out    io.Writer
	log    *zap.Logger

	stocksInPlay int
	sizzlers     map[string]struct{}
}

func NewRunner(engine *Engine, out io.Writer, log *zap.Logger) *Runner {
	return &Runner{
		engine:   engine,
		out:      out,
		log:      log,
		sizzlers: make(map[string]struct{}),
	}
}

// Run evaluates every symbol for each window size from fromWindow through
// toWindow inclusive. A batch fully resolves and prints before the next
// window size starts, so the report stays grouped by window.
func (r *Runner) Run(symbols []string, fromWindow, toWindow int) {
	fmt.Fprintf(r.out, "\n%s\n", reportHeader)

	for window := fromWindow; window <= toWindow; window++ {
		fmt.Fprintf(r.out, "%d%s\n", window, strings.Repeat("-", 140))

		results := make(chan *Result, len(symbols))
		var wg sync.WaitGroup
		for _, symbol := range symbols {
			wg.Add(1)
			go func(symbol string) {
				defer wg.Done()
				if res := r.engine.Evaluate(symbol, window); res != nil {
					results <- res
				}
			}(symbol)
		}
		wg.Wait()
		close(results)

		for res := range results {
			fmt.Fprintln(r.out, formatRow(res))
			r.stocksInPlay++
			if res.VolatilityOK && res.VolatilityPercent > sizzlerVolatility {
				r.sizzlers[res.Symbol] = struct{}{}
			}
		}

		r.log.Info("window batch complete",
			zap.String("op", "run"),
			zap.Int("window", window),
			zap.Int("stocks_in_play", r.stocksInPlay))
	}

	fmt.Fprintf(r.out, "\nStocks in play: %d\n", r.stocksInPlay)
	fmt.Fprintf(r.out, "Sizzlers: %d\n\n", len(r.sizzlers))
}

// StocksInPlay is the count of passing results across all batches so far.
func (r *Runner) StocksInPlay() int { return r.stocksInPlay }

// Sizzlers is the number of distinct high-volatility passing symbols.
func (r *Runner) Sizzlers() int { return len(r.sizzlers) }

func formatRow(res *Result) string {
	volatility := signal.NoData
	if res.VolatilityOK {
		volatility = fmt.Sprintf("%.2f", res.VolatilityPercent)
	}
	return fmt.Sprintf("%5s%14s%s%8s%15s%11.2f%%%11.2f%12s%13s%%%14s",
		res.Symbol,
		res.Date.Format("01/02/2006"),
		center(res.Sector, 30),
		res.MarketCap,
		humanize.Comma(int64(math.Round(res.EquityVolume))),
		res.GapPercent,
		res.VolumeRatio,
		res.ShortFloat,
		volatility,
		res.SellingEvidence)
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}
