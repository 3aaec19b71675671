// Package fundamentals scrapes per-symbol attributes from the MarketWatch
// quote pages. Every accessor degrades to its own sentinel value on
// failure so that one missing attribute never blocks the others.
package fundamentals

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	quoteURL   = "https://www.marketwatch.com/investing/stock/%s?mod=search_symbol"
	profileURL = "https://www.marketwatch.com/investing/stock/%s/company-profile?mod=mw_quote_tab"

	// NoData marks a market cap or short float that could not be fetched.
	NoData = "No data"
	// SectorUnavailable marks a sector that could not be fetched.
	SectorUnavailable = "N/A"
	// PriceUnavailable marks a last price that could not be fetched.
	PriceUnavailable = 999
)

// Client is a FundamentalsSource backed by MarketWatch quote pages.
type Client struct {
	http *http.Client
	log  *zap.Logger
}

func NewClient(log *zap.Logger) *Client {
	return &Client{
		http: &http.Client{Timeout: 30 * time.Second},
		log:  log,
	}
}

func (c *Client) document(url string) (*goquery.Document, error) {
	resp, err := c.http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// keyValueItem returns the trimmed text of the index-th key/value tile on
// the quote page with its leading label of labelLen runes removed.
func (c *Client) keyValueItem(symbol string, index, labelLen int) (string, error) {
	doc, err := c.document(fmt.Sprintf(quoteURL, symbol))
	if err != nil {
		return "", err
	}

	item := doc.Find("li.kv__item").Eq(index)
	text := item.Text()
	if len(text) <= labelLen {
		return "", fmt.Errorf("kv__item %d missing or too short", index)
	}
	return strings.TrimSpace(text[labelLen:]), nil
}

// MarketCap returns the market capitalization string, or NoData.
func (c *Client) MarketCap(symbol string) string {
	value, err := c.keyValueItem(symbol, 3, 11)
	if err != nil {
		c.log.Error("market cap fetch failed",
			zap.String("op", "market_cap"),
			zap.String("symbol", symbol),
			zap.Error(err))
		return NoData
	}
	return value
}

// ShortFloat returns the short interest as a percent of float, or NoData.
func (c *Client) ShortFloat(symbol string) string {
	value, err := c.keyValueItem(symbol, 14, 19)
	if err != nil {
		c.log.Error("short float fetch failed",
			zap.String("op", "short_float"),
			zap.String("symbol", symbol),
			zap.Error(err))
		return NoData
	}
	return value
}

// Sector returns the shorter of the profile page's industry and sector
// labels, or SectorUnavailable. The shorter label keeps the report column
// readable.
func (c *Client) Sector(symbol string) string {
	doc, err := c.document(fmt.Sprintf(profileURL, symbol))
	if err != nil {
		c.log.Error("sector fetch failed",
			zap.String("op", "sector"),
			zap.String("symbol", symbol),
			zap.Error(err))
		return SectorUnavailable
	}

	labels := doc.Find("span.primary")
	industry := labels.Eq(6).Text()
	sector := labels.Eq(7).Text()
	if industry == "" && sector == "" {
		c.log.Error("sector fetch failed",
			zap.String("op", "sector"),
			zap.String("symbol", symbol),
			zap.String("reason", "profile labels missing"))
		return SectorUnavailable
	}

	if len(industry) <= len(sector) {
		return industry
	}
	return sector
}

// LastPrice returns the latest traded price, or PriceUnavailable.
func (c *Client) LastPrice(symbol string) float64 {
	doc, err := c.document(fmt.Sprintf(quoteURL, symbol))
	if err != nil {
		c.log.Error("last price fetch failed",
			zap.String("op", "last_price"),
			zap.String("symbol", symbol),
			zap.Error(err))
		return PriceUnavailable
	}

	text := doc.Find("td.table__cell.u-semi").First().Text()
	if len(text) < 2 {
		c.log.Error("last price fetch failed",
			zap.String("op", "last_price"),
			zap.String("symbol", symbol),
			zap.String("reason", "price cell missing"))
		return PriceUnavailable
	}

	// The cell reads like "$12.34"; drop the currency sign.
	price, err := decimal.NewFromString(text[1:])
	if err != nil {
		c.log.Error("last price parse failed",
			zap.String("op", "last_price"),
			zap.String("symbol", symbol),
			zap.Error(err))
		return PriceUnavailable
	}

	value := price.InexactFloat64()
	c.log.Info("resolved last price",
		zap.String("op", "last_price"),
		zap.String("symbol", symbol),
		zap.Float64("price", value))
	return value
}
