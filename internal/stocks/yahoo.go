package stocks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider fetches quotes from the Yahoo Finance chart and quote APIs.
// The chart endpoint supplies the intraday price history (required); the
// quote endpoint supplies descriptive metadata (best-effort).
type YahooProvider struct {
	baseURL string
	client  *http.Client
}

// NewYahooProvider creates a provider. An empty baseURL selects the public
// endpoint; timeout bounds each HTTP call.
func NewYahooProvider(baseURL string, timeout time.Duration) *YahooProvider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &YahooProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			LongName  string   `json:"longName"`
			ShortName string   `json:"shortName"`
			MarketCap *float64 `json:"marketCap"`
			ForwardPE *float64 `json:"forwardPE"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// Quote implements Provider.
func (p *YahooProvider) Quote(ctx context.Context, ticker string) (*Quote, error) {
	chart, err := p.fetchChart(ctx, ticker)
	if err != nil {
		return nil, err
	}

	result := chart.Chart.Result[0]
	closes, volumes := latestBar(result.Indicators.Quote)
	if closes == nil {
		return nil, ErrNotFound
	}

	price := *closes
	prevClose := result.Meta.PreviousClose
	if prevClose == 0 {
		prevClose = price
	}
	change, changePercent := ComputeChange(price, prevClose)

	q := &Quote{
		Symbol:        ticker,
		Name:          ticker,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		AsOf:          time.Now().UTC(),
	}
	if volumes != nil {
		q.Volume = *volumes
	}

	// Metadata is enrichment only: a failing quote call degrades the reply,
	// it does not fail the lookup.
	if meta, err := p.fetchQuoteMeta(ctx, ticker); err != nil {
		slog.Warn("stocks: metadata fetch failed", "ticker", ticker, "error", err)
	} else if meta != nil {
		if meta.LongName != "" {
			q.Name = meta.LongName
		} else if meta.ShortName != "" {
			q.Name = meta.ShortName
		}
		q.MarketCap = meta.MarketCap
		q.PERatio = meta.ForwardPE
	}

	return q, nil
}

func (p *YahooProvider) fetchChart(ctx context.Context, ticker string) (*chartResponse, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1m", p.baseURL, url.PathEscape(ticker))
	var chart chartResponse
	if err := p.getJSON(ctx, u, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%s: %w", chart.Chart.Error.Description, ErrNotFound)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, ErrNotFound
	}
	return &chart, nil
}

func (p *YahooProvider) fetchQuoteMeta(ctx context.Context, ticker string) (*struct {
	LongName  string   `json:"longName"`
	ShortName string   `json:"shortName"`
	MarketCap *float64 `json:"marketCap"`
	ForwardPE *float64 `json:"forwardPE"`
}, error) {
	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", p.baseURL, url.QueryEscape(ticker))
	var qr quoteResponse
	if err := p.getJSON(ctx, u, &qr); err != nil {
		return nil, err
	}
	if len(qr.QuoteResponse.Result) == 0 {
		return nil, nil
	}
	return &qr.QuoteResponse.Result[0], nil
}

func (p *YahooProvider) getJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "signalstock/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// latestBar returns the most recent non-nil close (and the volume at the
// same index) from the first quote series.
func latestBar(series []struct {
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}) (*float64, *int64) {
	if len(series) == 0 {
		return nil, nil
	}
	closes, volumes := series[0].Close, series[0].Volume
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] != nil {
			var vol *int64
			if i < len(volumes) {
				vol = volumes[i]
			}
			return closes[i], vol
		}
	}
	return nil, nil
}
