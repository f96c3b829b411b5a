package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"StockAdvisor/internal/collector"
	"StockAdvisor/internal/model"
	"StockAdvisor/internal/notifier"
	"StockAdvisor/internal/recorder"
)

// Scorer collects and scores one symbol. *collector.Collector implements it.
type Scorer interface {
	Score(ctx context.Context, symbol string) (*collector.Observation, model.ScoreResult, error)
}

// Notifier delivers reports. *notifier.TelegramNotifier implements it.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

const historyLimit = 10

// Scheduler manages the cron tasks and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Scorer   Scorer
	Notifier Notifier
	Recorder recorder.Recorder
	Ctx      context.Context
	Now      func() time.Time

	mu        sync.RWMutex
	watchlist []string
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, scorer Scorer, n Notifier, rec recorder.Recorder, watchlist []string) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Scorer:    scorer,
		Notifier:  n,
		Recorder:  rec,
		Ctx:       ctx,
		Now:       time.Now,
		watchlist: normalizeSymbols(watchlist),
	}
}

func normalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Watchlist returns a copy of the symbols scored by the periodic task.
func (s *Scheduler) Watchlist() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.watchlist...)
}

// RegisterAll registers the periodic watchlist scoring task.
func (s *Scheduler) RegisterAll(scoreCron string) error {
	if _, err := s.Cron.AddFunc(scoreCron, s.RunWatchlistNow); err != nil {
		return fmt.Errorf("register score task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunWatchlistNow scores every watchlist symbol, records the results and
// sends a summary (for cron, manual trigger and RUN_ON_START).
func (s *Scheduler) RunWatchlistNow() {
	symbols := s.Watchlist()
	log.Printf("[INFO] running watchlist scoring for %d symbols", len(symbols))
	runID := uuid.New().String()

	lines := make([]notifier.ScoreLine, 0, len(symbols))
	for _, sym := range symbols {
		if s.Ctx.Err() != nil {
			log.Println("[WARN] watchlist scoring cancelled")
			return
		}
		lines = append(lines, s.scoreOne(s.Ctx, sym, runID))
	}
	s.trySend(notifier.FormatWatchlistSummary(lines, s.Now()))
}

// scoreOne scores and records a symbol. Errors are carried in the line.
func (s *Scheduler) scoreOne(ctx context.Context, symbol, runID string) notifier.ScoreLine {
	obs, res, err := s.Scorer.Score(ctx, symbol)
	line := notifier.ScoreLine{Symbol: symbol, Result: res, Err: err}
	if err != nil {
		log.Printf("[ERROR] score %s: %v", symbol, err)
		return line
	}

	line.Name, line.Price = describe(obs)
	rec := &recorder.ScoreRecord{
		RunID:     runID,
		Symbol:    symbol,
		Timestamp: s.Now(),
		Price:     line.Price,
		Bars:      len(obs.Bars),
		Result:    res,
	}
	if err := s.Recorder.RecordScore(rec); err != nil {
		log.Printf("[ERROR] record score %s: %v", symbol, err)
	}
	return line
}

// describe returns the display name and latest price of an observation.
func describe(obs *collector.Observation) (string, float64) {
	var name string
	var price float64
	if obs.Snapshot != nil {
		name = obs.Snapshot.Name
		if obs.Snapshot.CurrentPrice != nil {
			price = *obs.Snapshot.CurrentPrice
		}
	}
	if price == 0 && len(obs.Bars) > 0 {
		price = obs.Bars[len(obs.Bars)-1].Close
	}
	return name, price
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	arg := ""
	if len(fields) > 1 {
		arg = strings.ToUpper(fields[1])
	}

	switch strings.ToLower(fields[0]) {
	case "/score", "评分":
		if arg == "" {
			return "用法: /score 600000"
		}
		line := s.scoreOne(ctx, arg, "")
		return notifier.FormatScoreReport(line, s.Now())
	case "/list", "自选股":
		s.RunWatchlistNow()
		return ""
	case "/history", "历史":
		if arg == "" {
			return "用法: /history 600000"
		}
		records, err := s.Recorder.History(arg, historyLimit)
		if err != nil {
			log.Printf("[ERROR] history %s: %v", arg, err)
			return fmt.Sprintf("❌ 查询历史失败: %v", err)
		}
		return notifier.FormatHistory(arg, records)
	default:
		return helpText
	}
}

const helpText = "可用命令:\n• /score 代码 (评分 代码)\n• /list (自选股)\n• /history 代码 (历史 代码)"

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
