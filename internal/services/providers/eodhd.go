package providers

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"NeoFin/internal/domain/models"
	domsvc "NeoFin/internal/domain/service"
	"NeoFin/pkg/config"
	"NeoFin/pkg/util"
)

// EODHDMarket serves history and quotes from eodhd.com.
type EODHDMarket struct {
	base   *HTTPServiceBase
	apiKey string
}

func NewEODHDMarket(cfg config.MarketConfig, opts ...BaseOption) (*EODHDMarket, error) {
	if cfg.EODHDAPIKey == "" {
		return nil, fmt.Errorf("eodhd: %w", domsvc.ErrNotConfigured)
	}
	opts = append([]BaseOption{WithTimeout(cfg.Timeout)}, opts...)
	return &EODHDMarket{
		base:   NewHTTPServiceBase("eodhd", cfg.EODHDBaseURL, nil, opts...),
		apiKey: cfg.EODHDAPIKey,
	}, nil
}

// eodhdTicker maps Yahoo-style symbols onto EODHD's exchange-qualified codes.
func eodhdTicker(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	switch {
	case strings.Contains(symbol, "."):
		return symbol
	case strings.HasSuffix(symbol, "-USD"):
		return symbol + ".CC"
	default:
		return symbol + ".US"
	}
}

func (e *EODHDMarket) query(extra url.Values) url.Values {
	q := url.Values{"api_token": {e.apiKey}, "fmt": {"json"}}
	for k, v := range extra {
		q[k] = v
	}
	return q
}

type eodhdBar struct {
	Date          string          `json:"date"`
	Close         decimal.Decimal `json:"close"`
	AdjustedClose decimal.Decimal `json:"adjusted_close"`
}

func (e *EODHDMarket) History(ctx context.Context, symbol string, from, to time.Time) (models.PriceSeries, error) {
	series := models.PriceSeries{Symbol: symbol}
	var bars []eodhdBar
	q := e.query(url.Values{"from": {util.FormatDate(from)}, "to": {util.FormatDate(to)}, "period": {"d"}})
	if err := e.base.GetJSON(ctx, "/eod/"+url.PathEscape(eodhdTicker(symbol)), q, &bars); err != nil {
		return series, err
	}
	for _, b := range bars {
		d, ok := util.ParseTime(b.Date)
		if !ok {
			return series, fmt.Errorf("eodhd %s: bad date %q", symbol, b.Date)
		}
		px := b.AdjustedClose
		if px.IsZero() {
			px = b.Close
		}
		series.Dates = append(series.Dates, d)
		series.Closes = append(series.Closes, px.InexactFloat64())
	}
	return series, nil
}

// flexFloat accepts numbers, numeric strings and "NA".
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	s := string(b)
	if s == "" || s == "null" || strings.EqualFold(s, "NA") {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}

type eodhdRealtime struct {
	Code          string    `json:"code"`
	Close         flexFloat `json:"close"`
	PreviousClose flexFloat `json:"previousClose"`
	High          flexFloat `json:"high"`
	Low           flexFloat `json:"low"`
}

type eodhdFundamentals struct {
	General struct {
		Name        string `json:"Name"`
		Description string `json:"Description"`
	} `json:"General"`
	Highlights struct {
		MarketCapitalization flexFloat `json:"MarketCapitalization"`
	} `json:"Highlights"`
	Technicals struct {
		High52 flexFloat `json:"52WeekHigh"`
		Low52  flexFloat `json:"52WeekLow"`
	} `json:"Technicals"`
}

// Quote combines the real-time snapshot with fundamentals when the plan allows it.
func (e *EODHDMarket) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	ticker := url.PathEscape(eodhdTicker(symbol))
	var rt eodhdRealtime
	if err := e.base.GetJSON(ctx, "/real-time/"+ticker, e.query(nil), &rt); err != nil {
		return models.Quote{}, err
	}
	price := float64(rt.Close)
	if price == 0 {
		price = float64(rt.PreviousClose)
	}
	q := models.Quote{
		Symbol:       symbol,
		CompanyName:  symbol,
		CurrentPrice: price,
		DayHigh:      float64(rt.High),
		DayLow:       float64(rt.Low),
	}
	// fundamentals are not part of every subscription
	var f eodhdFundamentals
	if err := e.base.GetJSON(ctx, "/fundamentals/"+ticker, e.query(nil), &f); err == nil {
		if f.General.Name != "" {
			q.CompanyName = f.General.Name
		}
		q.Summary = f.General.Description
		q.MarketCap = float64(f.Highlights.MarketCapitalization)
		q.FiftyTwoWkHigh = float64(f.Technicals.High52)
		q.FiftyTwoWkLow = float64(f.Technicals.Low52)
	}
	return q, nil
}

var (
	_ domsvc.PriceHistoryService = (*EODHDMarket)(nil)
	_ domsvc.QuoteService        = (*EODHDMarket)(nil)
)
