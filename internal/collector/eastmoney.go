package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"StockAdvisor/internal/model"
)

const (
	eastmoneyQuoteURL = "https://push2.eastmoney.com/api/qt/stock/get"
	eastmoneyKlineURL = "https://push2his.eastmoney.com/api/qt/stock/kline/get"
)

// EastmoneyFetcher implements Fetcher using the Eastmoney A-share quote and
// kline endpoints.
type EastmoneyFetcher struct {
	QuoteURL string
	KlineURL string
	Client   *http.Client
}

// NewEastmoneyFetcher creates a new fetcher with optional proxy support.
// Empty URLs select the public endpoints.
func NewEastmoneyFetcher(quoteURL, klineURL, proxyURL string) *EastmoneyFetcher {
	if quoteURL == "" {
		quoteURL = eastmoneyQuoteURL
	}
	if klineURL == "" {
		klineURL = eastmoneyKlineURL
	}
	return &EastmoneyFetcher{
		QuoteURL: quoteURL,
		KlineURL: klineURL,
		Client:   newHTTPClient(proxyURL),
	}
}

func (f *EastmoneyFetcher) Name() string { return "eastmoney" }

// secID converts "600000" or "600000.SH" to the market-prefixed id Eastmoney
// expects: 1 for Shanghai, 0 for Shenzhen and Beijing.
func secID(symbol string) string {
	code := strings.SplitN(symbol, ".", 2)[0]
	market := "0"
	if strings.HasPrefix(code, "6") || strings.HasPrefix(code, "9") || strings.HasPrefix(code, "5") {
		market = "1"
	}
	return market + "." + code
}

// emQuote is the quote payload with fltt=2 (already decimal-scaled). A field
// the exchange has not published yet comes back as "-".
type emQuote struct {
	RC   int `json:"rc"`
	Data *struct {
		Price     json.RawMessage `json:"f43"`
		Volume    json.RawMessage `json:"f47"`
		Amount    json.RawMessage `json:"f48"`
		Code      string          `json:"f57"`
		Name      string          `json:"f58"`
		Turnover  json.RawMessage `json:"f168"`
		ChangePct json.RawMessage `json:"f170"`
	} `json:"data"`
}

func (f *EastmoneyFetcher) FetchSnapshot(ctx context.Context, symbol string) (*model.Snapshot, error) {
	q := url.Values{}
	q.Set("secid", secID(symbol))
	q.Set("fltt", "2")
	q.Set("invt", "2")
	q.Set("fields", "f43,f47,f48,f57,f58,f168,f170")

	var quote emQuote
	if err := f.getJSON(ctx, f.QuoteURL+"?"+q.Encode(), &quote); err != nil {
		return nil, fmt.Errorf("eastmoney quote %s: %w", symbol, err)
	}
	if quote.Data == nil {
		return nil, fmt.Errorf("eastmoney quote %s: %w", symbol, ErrNoData)
	}
	d := quote.Data
	return &model.Snapshot{
		Symbol:       symbol,
		Name:         d.Name,
		CurrentPrice: rawFloat(d.Price),
		ChangePct:    rawFloat(d.ChangePct),
		Volume:       rawFloat(d.Volume),
		Turnover:     rawFloat(d.Turnover),
	}, nil
}

// emKlines is the kline payload; each line is
// "date,open,close,high,low,volume,amount".
type emKlines struct {
	Data *struct {
		Code   string   `json:"code"`
		Name   string   `json:"name"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// FetchDailyBars returns forward-adjusted daily bars between start and end.
func (f *EastmoneyFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	q := url.Values{}
	q.Set("secid", secID(symbol))
	q.Set("fields1", "f1,f2,f3")
	q.Set("fields2", "f51,f52,f53,f54,f55,f56,f57")
	q.Set("klt", "101")
	q.Set("fqt", "1")
	q.Set("beg", start.Format("20060102"))
	q.Set("end", end.Format("20060102"))

	var resp emKlines
	if err := f.getJSON(ctx, f.KlineURL+"?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("eastmoney klines %s: %w", symbol, err)
	}
	if resp.Data == nil || len(resp.Data.Klines) == 0 {
		return nil, fmt.Errorf("eastmoney klines %s: %w", symbol, ErrNoData)
	}

	bars := make([]model.OHLCV, 0, len(resp.Data.Klines))
	for _, line := range resp.Data.Klines {
		bar, err := parseKline(line)
		if err != nil {
			return nil, fmt.Errorf("eastmoney klines %s: %w", symbol, err)
		}
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func parseKline(line string) (model.OHLCV, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 6 {
		return model.OHLCV{}, fmt.Errorf("malformed kline %q", line)
	}
	day, err := time.ParseInLocation("2006-01-02", parts[0], shanghai)
	if err != nil {
		return model.OHLCV{}, fmt.Errorf("kline date %q: %w", parts[0], err)
	}
	nums := make([]float64, len(parts)-1)
	for i, p := range parts[1:] {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return model.OHLCV{}, fmt.Errorf("kline field %d %q: %w", i+1, p, err)
		}
		nums[i] = v
	}
	bar := model.OHLCV{
		Time:   day,
		Open:   nums[0],
		Close:  nums[1],
		High:   nums[2],
		Low:    nums[3],
		Volume: nums[4],
	}
	if len(nums) > 5 {
		bar.Amount = nums[5]
	}
	return bar, nil
}

func (f *EastmoneyFetcher) getJSON(ctx context.Context, endpoint string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "https://quote.eastmoney.com/")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// rawFloat decodes a numeric field, returning nil for "-" or null.
func rawFloat(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return &v
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseFloat(s, 64); err == nil {
			return &parsed
		}
	}
	return nil
}
