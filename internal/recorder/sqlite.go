package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists produced scores to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS score_records (
			id              TEXT PRIMARY KEY,
			run_id          TEXT,
			timestamp       INTEGER NOT NULL,
			symbol          TEXT NOT NULL,
			price           REAL,
			bars            INTEGER,
			status          TEXT,
			source          TEXT,
			score           INTEGER,
			recommendation  TEXT,
			trend           TEXT,
			momentum_signal TEXT,
			trend_signal    TEXT,
			volume_signal   TEXT,
			channel_signal  TEXT,
			volatility      REAL,
			volatility_low  INTEGER,
			rsi             REAL,
			bband_position  REAL,
			recent_vol      REAL,
			long_vol_avg    REAL,
			factors         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_score_symbol_ts ON score_records(symbol, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_score_run ON score_records(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordScore inserts rec, assigning an ID and timestamp when they are unset.
func (r *SQLiteRecorder) RecordScore(rec *ScoreRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	res := rec.Result
	factors, err := json.Marshal(res.Factors)
	if err != nil {
		return fmt.Errorf("marshal factors: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.Exec(`INSERT INTO score_records
		(id, run_id, timestamp, symbol, price, bars,
		 status, source, score, recommendation,
		 trend, momentum_signal, trend_signal, volume_signal, channel_signal,
		 volatility, volatility_low, rsi, bband_position, recent_vol, long_vol_avg,
		 factors)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.RunID, rec.Timestamp.UnixMilli(), rec.Symbol, rec.Price, rec.Bars,
		string(res.Status), string(res.Source), res.Score, string(res.Recommendation),
		string(res.Trend), string(res.MomentumSignal), string(res.TrendSignal),
		string(res.VolumeSignal), string(res.ChannelSignal),
		res.Volatility, res.VolatilityLow, res.RSI, res.ChannelPosition,
		res.RecentVolume, res.LongVolume,
		string(factors),
	)
	if err != nil {
		return fmt.Errorf("insert score %s: %w", rec.Symbol, err)
	}
	return nil
}

// History returns up to limit records for symbol, newest first.
func (r *SQLiteRecorder) History(symbol string, limit int) ([]ScoreRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT
		id, run_id, timestamp, symbol, price, bars,
		status, source, score, recommendation,
		trend, momentum_signal, trend_signal, volume_signal, channel_signal,
		volatility, volatility_low, rsi, bband_position, recent_vol, long_vol_avg,
		factors
		FROM score_records WHERE symbol = ? ORDER BY timestamp DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query history %s: %w", symbol, err)
	}
	defer rows.Close()

	var out []ScoreRecord
	for rows.Next() {
		var (
			rec     ScoreRecord
			ts      int64
			factors string
			res     = &rec.Result
		)
		if err := rows.Scan(
			&rec.ID, &rec.RunID, &ts, &rec.Symbol, &rec.Price, &rec.Bars,
			&res.Status, &res.Source, &res.Score, &res.Recommendation,
			&res.Trend, &res.MomentumSignal, &res.TrendSignal, &res.VolumeSignal, &res.ChannelSignal,
			&res.Volatility, &res.VolatilityLow, &res.RSI, &res.ChannelPosition, &res.RecentVolume, &res.LongVolume,
			&factors,
		); err != nil {
			return nil, fmt.Errorf("scan history %s: %w", symbol, err)
		}
		rec.Timestamp = time.UnixMilli(ts)
		if factors != "" && factors != "null" {
			if err := json.Unmarshal([]byte(factors), &res.Factors); err != nil {
				log.Printf("[WARN] record %s: bad factors column: %v", rec.ID, err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
