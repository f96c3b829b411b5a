package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"StockAdvisor/internal/collector"
	"StockAdvisor/internal/model"
	"StockAdvisor/internal/recorder"
)

type fakeScorer struct {
	results map[string]model.ScoreResult
	errs    map[string]error
	calls   []string
}

func (f *fakeScorer) Score(_ context.Context, symbol string) (*collector.Observation, model.ScoreResult, error) {
	f.calls = append(f.calls, symbol)
	if err := f.errs[symbol]; err != nil {
		return nil, model.ScoreResult{Status: model.StatusInsufficient, Recommendation: model.RecommendInsufficient, Score: 50}, err
	}
	obs := &collector.Observation{
		Symbol:   symbol,
		Bars:     []model.OHLCV{{Close: 9.8}},
		Snapshot: &model.Snapshot{Symbol: symbol, Name: "name-" + symbol},
	}
	return obs, f.results[symbol], nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

type memRecorder struct {
	records []recorder.ScoreRecord
}

func (m *memRecorder) RecordScore(rec *recorder.ScoreRecord) error {
	m.records = append(m.records, *rec)
	return nil
}

func (m *memRecorder) History(symbol string, limit int) ([]recorder.ScoreRecord, error) {
	var out []recorder.ScoreRecord
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		if m.records[i].Symbol == symbol {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

func (m *memRecorder) Close() error { return nil }

func buyResult(score int) model.ScoreResult {
	return model.ScoreResult{
		Status:         model.StatusOK,
		Source:         model.SourceDetailed,
		Score:          score,
		Recommendation: model.RecommendBuy,
	}
}

func newTestScheduler(scorer Scorer, watchlist ...string) (*Scheduler, *fakeNotifier, *memRecorder) {
	n := &fakeNotifier{}
	rec := &memRecorder{}
	s := NewScheduler(context.Background(), scorer, n, rec, watchlist)
	s.Now = func() time.Time { return time.Date(2024, 6, 28, 15, 0, 0, 0, time.UTC) }
	return s, n, rec
}

func TestNewScheduler_NormalizesWatchlist(t *testing.T) {
	s, _, _ := newTestScheduler(&fakeScorer{}, " 600000 ", "000001", "600000", "", "aapl")
	got := s.Watchlist()
	want := []string{"600000", "000001", "AAPL"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("watchlist = %v, want %v", got, want)
	}
}

func TestRunWatchlistNow(t *testing.T) {
	scorer := &fakeScorer{
		results: map[string]model.ScoreResult{"600000": buyResult(65)},
		errs:    map[string]error{"000001": errors.New("provider down")},
	}
	s, n, rec := newTestScheduler(scorer, "600000", "000001")

	s.RunWatchlistNow()

	if len(scorer.calls) != 2 {
		t.Fatalf("scored %v", scorer.calls)
	}
	if len(rec.records) != 1 {
		t.Fatalf("expected one recorded score, got %d", len(rec.records))
	}
	r := rec.records[0]
	if r.Symbol != "600000" || r.RunID == "" || r.Price != 9.8 || r.Bars != 1 || r.Result.Score != 65 {
		t.Errorf("unexpected record %+v", r)
	}
	if len(n.sent) != 1 {
		t.Fatalf("expected one summary, got %d messages", len(n.sent))
	}
	if !strings.Contains(n.sent[0], "600000 name-600000: 65") || !strings.Contains(n.sent[0], "000001 : 获取失败") {
		t.Errorf("unexpected summary:\n%s", n.sent[0])
	}
}

func TestRunWatchlistNow_Cancelled(t *testing.T) {
	scorer := &fakeScorer{}
	s, n, _ := newTestScheduler(scorer, "600000")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Ctx = ctx

	s.RunWatchlistNow()
	if len(scorer.calls) != 0 || len(n.sent) != 0 {
		t.Errorf("cancelled run should do nothing: calls=%v sent=%d", scorer.calls, len(n.sent))
	}
}

func TestHandleCommand(t *testing.T) {
	scorer := &fakeScorer{results: map[string]model.ScoreResult{"600000": buyResult(70)}}
	s, _, rec := newTestScheduler(scorer)
	ctx := context.Background()

	reply := s.HandleCommand(ctx, "/score 600000")
	if !strings.Contains(reply, "<b>70</b>") || !strings.Contains(reply, "name-600000") {
		t.Errorf("unexpected /score reply:\n%s", reply)
	}
	if len(rec.records) != 1 || rec.records[0].RunID != "" {
		t.Errorf("on-demand score should be recorded without run id: %+v", rec.records)
	}

	reply = s.HandleCommand(ctx, "历史 600000")
	if !strings.Contains(reply, "评分历史") || !strings.Contains(reply, " 70 ") {
		t.Errorf("unexpected /history reply:\n%s", reply)
	}

	tests := []struct {
		command string
		want    string
	}{
		{"/score", "用法"},
		{"/history", "用法"},
		{"", "可用命令"},
		{"/unknown", "可用命令"},
	}
	for _, tt := range tests {
		if got := s.HandleCommand(ctx, tt.command); !strings.Contains(got, tt.want) {
			t.Errorf("HandleCommand(%q) = %q, want it to contain %q", tt.command, got, tt.want)
		}
	}
}

func TestHandleCommand_ListSendsSummary(t *testing.T) {
	scorer := &fakeScorer{results: map[string]model.ScoreResult{"600000": buyResult(62)}}
	s, n, _ := newTestScheduler(scorer, "600000")
	if reply := s.HandleCommand(context.Background(), "/list"); reply != "" {
		t.Errorf("expected summary to be pushed, got reply %q", reply)
	}
	if len(n.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(n.sent))
	}
}

func TestRegisterAll(t *testing.T) {
	s, _, _ := newTestScheduler(&fakeScorer{})
	if err := s.RegisterAll("0 30 15 * * 1-5"); err != nil {
		t.Fatal(err)
	}
	if len(s.Cron.Entries()) != 1 {
		t.Errorf("expected one cron entry")
	}
	if err := s.RegisterAll("not a cron"); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}
