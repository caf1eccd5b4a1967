package providers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"NeoFin/internal/domain/models"
	domsvc "NeoFin/internal/domain/service"
	"NeoFin/pkg/config"
)

// Yahoo rejects requests without a browser-like agent.
const yahooUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// YahooMarket serves price history and quotes from Yahoo Finance's chart API.
type YahooMarket struct {
	base *HTTPServiceBase
}

func NewYahooMarket(cfg config.MarketConfig, opts ...BaseOption) *YahooMarket {
	opts = append([]BaseOption{WithTimeout(cfg.Timeout), WithUserAgent(yahooUserAgent)}, opts...)
	return &YahooMarket{base: NewHTTPServiceBase("yahoo", cfg.YahooBaseURL, nil, opts...)}
}

type yahooMeta struct {
	Symbol             string  `json:"symbol"`
	LongName           string  `json:"longName"`
	ShortName          string  `json:"shortName"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	ChartPreviousClose float64 `json:"chartPreviousClose"`
	DayHigh            float64 `json:"regularMarketDayHigh"`
	DayLow             float64 `json:"regularMarketDayLow"`
	FiftyTwoWeekHigh   float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow    float64 `json:"fiftyTwoWeekLow"`
}

type yahooQuote struct {
	Close []*float64 `json:"close"`
}

type yahooAdj struct {
	AdjClose []*float64 `json:"adjclose"`
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta       yahooMeta `json:"meta"`
			Timestamp  []int64   `json:"timestamp"`
			Indicators struct {
				Quote    []yahooQuote `json:"quote"`
				AdjClose []yahooAdj   `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (y *YahooMarket) chart(ctx context.Context, symbol string, q url.Values) (*yahooChart, error) {
	var c yahooChart
	if err := y.base.GetJSON(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), q, &c); err != nil {
		return nil, err
	}
	if c.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo %s: %s", symbol, c.Chart.Error.Description)
	}
	return &c, nil
}

// History returns adjusted daily closes. Null closes come back as NaN.
func (y *YahooMarket) History(ctx context.Context, symbol string, from, to time.Time) (models.PriceSeries, error) {
	series := models.PriceSeries{Symbol: symbol}
	q := url.Values{
		"period1":              {strconv.FormatInt(from.Unix(), 10)},
		"period2":              {strconv.FormatInt(to.Unix(), 10)},
		"interval":             {"1d"},
		"includeAdjustedClose": {"true"},
		"events":               {"div,splits"},
	}
	c, err := y.chart(ctx, symbol, q)
	if err != nil {
		return series, err
	}
	if len(c.Chart.Result) == 0 {
		return series, nil
	}
	r := c.Chart.Result[0]
	closes := pickCloses(r.Indicators.AdjClose, r.Indicators.Quote)
	n := len(r.Timestamp)
	if len(closes) < n {
		n = len(closes)
	}
	series.Dates = make([]time.Time, n)
	series.Closes = make([]float64, n)
	for i := 0; i < n; i++ {
		series.Dates[i] = time.Unix(r.Timestamp[i], 0).UTC()
		if closes[i] == nil {
			series.Closes[i] = math.NaN()
		} else {
			series.Closes[i] = *closes[i]
		}
	}
	return series, nil
}

// pickCloses prefers the adjusted series and falls back to raw closes.
func pickCloses(adj []yahooAdj, raw []yahooQuote) []*float64 {
	if len(adj) > 0 && len(adj[0].AdjClose) > 0 {
		return adj[0].AdjClose
	}
	if len(raw) > 0 {
		return raw[0].Close
	}
	return nil
}

func (y *YahooMarket) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	c, err := y.chart(ctx, symbol, url.Values{"range": {"5d"}, "interval": {"1d"}})
	if err != nil {
		return models.Quote{}, err
	}
	if len(c.Chart.Result) == 0 {
		return models.Quote{}, errors.New("yahoo: no quote for " + symbol)
	}
	m := c.Chart.Result[0].Meta
	price := m.RegularMarketPrice
	if price == 0 {
		price = m.ChartPreviousClose
	}
	name := m.LongName
	if name == "" {
		name = m.ShortName
	}
	q := models.Quote{
		Symbol:         symbol,
		CompanyName:    name,
		CurrentPrice:   price,
		DayHigh:        m.DayHigh,
		DayLow:         m.DayLow,
		FiftyTwoWkHigh: m.FiftyTwoWeekHigh,
		FiftyTwoWkLow:  m.FiftyTwoWeekLow,
	}
	// the profile is decoration; a failed lookup still yields a quote
	if p, err := y.profile(ctx, symbol); err == nil {
		q.Summary = p.summary(name)
	}
	return q, nil
}

type yahooProfile struct {
	Symbol   string `json:"symbol"`
	LongName string `json:"longname"`
	Exchange string `json:"exchDisp"`
	Type     string `json:"typeDisp"`
	Sector   string `json:"sectorDisp"`
	Industry string `json:"industryDisp"`
}

type yahooSearch struct {
	Quotes []yahooProfile `json:"quotes"`
}

// profile looks the symbol up in Yahoo's keyless search index, which carries
// listing and classification data but no fundamentals such as market cap.
func (y *YahooMarket) profile(ctx context.Context, symbol string) (yahooProfile, error) {
	var s yahooSearch
	q := url.Values{"q": {symbol}, "quotesCount": {"5"}, "newsCount": {"0"}}
	if err := y.base.GetJSON(ctx, "/v1/finance/search", q, &s); err != nil {
		return yahooProfile{}, err
	}
	for _, p := range s.Quotes {
		if strings.EqualFold(p.Symbol, symbol) {
			return p, nil
		}
	}
	return yahooProfile{}, fmt.Errorf("yahoo: no profile for %s", symbol)
}

func (p yahooProfile) summary(name string) string {
	if p.LongName != "" {
		name = p.LongName
	}
	kind := p.Type
	if kind == "" {
		kind = "Security"
	}
	s := fmt.Sprintf("%s (%s), %s", name, p.Symbol, kind)
	if p.Exchange != "" {
		s += " listed on " + p.Exchange
	}
	switch {
	case p.Sector != "" && p.Industry != "":
		s += fmt.Sprintf(", %s sector (%s)", p.Sector, p.Industry)
	case p.Sector != "":
		s += fmt.Sprintf(", %s sector", p.Sector)
	}
	return s + "."
}

var (
	_ domsvc.PriceHistoryService = (*YahooMarket)(nil)
	_ domsvc.QuoteService        = (*YahooMarket)(nil)
)
