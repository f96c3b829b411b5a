package collector

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSecID(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"600000", "1.600000"},
		{"600000.SH", "1.600000"},
		{"510300", "1.510300"},
		{"000001.SZ", "0.000001"},
		{"300750", "0.300750"},
		{"830799", "0.830799"},
	}
	for _, tt := range tests {
		if got := secID(tt.symbol); got != tt.want {
			t.Errorf("secID(%q) = %q, want %q", tt.symbol, got, tt.want)
		}
	}
}

func TestYahooSymbol(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"600000", "600000.SS"},
		{"600000.SH", "600000.SS"},
		{"000001", "000001.SZ"},
		{"000001.SZ", "000001.SZ"},
		{"AAPL", "AAPL"},
		{"0700.HK", "0700.HK"},
	}
	for _, tt := range tests {
		if got := yahooSymbol(tt.symbol); got != tt.want {
			t.Errorf("yahooSymbol(%q) = %q, want %q", tt.symbol, got, tt.want)
		}
	}
}

func newEastmoneyServer(t *testing.T, quote, kline string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("secid"); got != "1.600000" {
			t.Errorf("secid = %q", got)
		}
		switch r.URL.Path {
		case "/quote":
			_, _ = w.Write([]byte(quote))
		case "/kline":
			if r.URL.Query().Get("klt") != "101" {
				t.Errorf("expected daily klines, got klt=%s", r.URL.Query().Get("klt"))
			}
			_, _ = w.Write([]byte(kline))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEastmoneyFetcher_Snapshot(t *testing.T) {
	srv := newEastmoneyServer(t,
		`{"rc":0,"data":{"f43":10.5,"f47":123456,"f48":129628800,"f57":"600000","f58":"浦发银行","f168":"-","f170":-1.25}}`, "")
	f := NewEastmoneyFetcher(srv.URL+"/quote", srv.URL+"/kline", "")

	snap, err := f.FetchSnapshot(context.Background(), "600000")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Name != "浦发银行" || *snap.CurrentPrice != 10.5 || *snap.Volume != 123456 || *snap.ChangePct != -1.25 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if snap.Turnover != nil {
		t.Errorf("unpublished turnover should be nil, got %v", *snap.Turnover)
	}
}

func TestEastmoneyFetcher_SnapshotNoData(t *testing.T) {
	srv := newEastmoneyServer(t, `{"rc":0,"data":null}`, "")
	f := NewEastmoneyFetcher(srv.URL+"/quote", srv.URL+"/kline", "")
	if _, err := f.FetchSnapshot(context.Background(), "600000"); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestEastmoneyFetcher_DailyBars(t *testing.T) {
	srv := newEastmoneyServer(t, "", `{"data":{"code":"600000","name":"浦发银行","klines":[
		"2024-01-03,10.1,10.3,10.4,10.0,1000,10100.0",
		"2024-01-02,10.0,10.1,10.2,9.9,900,9000.0"]}}`)
	f := NewEastmoneyFetcher(srv.URL+"/quote", srv.URL+"/kline", "")

	bars, err := f.FetchDailyBars(context.Background(), "600000",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars", len(bars))
	}
	first := bars[0]
	if first.Time.Format("2006-01-02") != "2024-01-02" {
		t.Errorf("bars not ascending: first is %s", first.Time.Format("2006-01-02"))
	}
	if first.Open != 10.0 || first.Close != 10.1 || first.High != 10.2 || first.Low != 9.9 || first.Volume != 900 || first.Amount != 9000 {
		t.Errorf("column order wrong: %+v", first)
	}
}

func TestEastmoneyFetcher_MalformedKline(t *testing.T) {
	srv := newEastmoneyServer(t, "", `{"data":{"klines":["2024-01-02,10.0,abc,10.2,9.9,900"]}}`)
	f := NewEastmoneyFetcher(srv.URL+"/quote", srv.URL+"/kline", "")
	if _, err := f.FetchDailyBars(context.Background(), "600000", testNow, testNow); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEastmoneyFetcher_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	f := NewEastmoneyFetcher(srv.URL, srv.URL, "")
	if _, err := f.FetchSnapshot(context.Background(), "600000"); err == nil {
		t.Fatal("expected error on 503")
	}
}

const yahooBody = `{"chart":{"result":[{
	"meta":{"symbol":"600000.SS","shortName":"SPDB","regularMarketPrice":10.5,"chartPreviousClose":10.0,"regularMarketVolume":2500000},
	"timestamp":[1704153600,1704240000,1704326400],
	"indicators":{"quote":[{
		"open":[10.0,null,10.2],"high":[10.3,null,10.6],"low":[9.9,null,10.1],
		"close":[10.1,null,10.5],"volume":[1000,null,1200]}]}}],"error":null}}`

func TestYahooFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/600000.SS" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(yahooBody))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL + "/"
	ctx := context.Background()

	bars, err := f.FetchDailyBars(ctx, "600000", testNow.AddDate(0, 0, -10), testNow)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 {
		t.Fatalf("null bar should be skipped, got %d bars", len(bars))
	}
	if bars[1].Close != 10.5 || bars[1].Volume != 1200 {
		t.Errorf("unexpected bar %+v", bars[1])
	}

	snap, err := f.FetchSnapshot(ctx, "600000")
	if err != nil {
		t.Fatal(err)
	}
	if *snap.CurrentPrice != 10.5 || *snap.Volume != 2500000 || math.Abs(*snap.ChangePct-5) > 1e-9 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if snap.Turnover != nil {
		t.Error("yahoo snapshots carry no turnover")
	}
}

func TestYahooFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL + "/"
	if _, err := f.FetchSnapshot(context.Background(), "XXXX"); err == nil {
		t.Fatal("expected api error")
	}
}
