// Package sqlite persists emitted trading signals and candle history for
// audit and offline replay.
package sqlite

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"market-analyzer/internal/model"
)

// Journal is a single-writer SQLite store for signals and candles. It
// implements model.SignalJournal.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (j *Journal) DB() *sql.DB { return j.db }

// Open opens (or creates) the journal database with WAL mode and schema.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened journal at %s", dbPath)
	return &Journal{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS signals (
			id          TEXT    NOT NULL PRIMARY KEY,
			symbol      TEXT    NOT NULL,
			action      TEXT    NOT NULL,
			confidence  REAL    NOT NULL,
			probability REAL    NOT NULL,
			strength    TEXT    NOT NULL,
			reason      TEXT    NOT NULL,
			ts          INTEGER NOT NULL,
			entry_price REAL    NOT NULL,
			stop_loss   REAL    NOT NULL,
			take_profit REAL    NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_signals_symbol_ts ON signals (symbol, ts);

		CREATE TABLE IF NOT EXISTS candles (
			symbol TEXT    NOT NULL,
			ts     INTEGER NOT NULL,
			open   REAL    NOT NULL,
			high   REAL    NOT NULL,
			low    REAL    NOT NULL,
			close  REAL    NOT NULL,
			volume REAL,
			PRIMARY KEY (symbol, ts)
		);
	`)
	return err
}

// RecordSignal appends one signal to the journal.
func (j *Journal) RecordSignal(sig model.TradingSignal) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO signals
			(id, symbol, action, confidence, probability, strength, reason, ts, entry_price, stop_loss, take_profit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sig.ID, sig.Symbol, string(sig.Action), sig.Confidence, sig.Probability,
		string(sig.Strength), sig.Reason, sig.Timestamp.UnixMilli(), sig.EntryPrice, sig.StopLoss, sig.TakeProfit,
	)
	if err != nil {
		return fmt.Errorf("sqlite: record signal %s: %w", sig.ID, err)
	}
	return nil
}

// Signals returns up to limit of the most recent signals for symbol,
// newest-first. A zero limit means no cap.
func (j *Journal) Signals(symbol string, limit int) ([]model.TradingSignal, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	query := `
		SELECT id, symbol, action, confidence, probability, strength, reason, ts, entry_price, stop_loss, take_profit
		FROM signals WHERE symbol = ? ORDER BY ts DESC`
	args := []any{symbol}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: read signals: %w", err)
	}
	defer rows.Close()

	var out []model.TradingSignal
	for rows.Next() {
		var s model.TradingSignal
		var action, strength string
		var ts int64
		if err := rows.Scan(&s.ID, &s.Symbol, &action, &s.Confidence, &s.Probability,
			&strength, &s.Reason, &ts, &s.EntryPrice, &s.StopLoss, &s.TakeProfit); err != nil {
			return nil, fmt.Errorf("sqlite: scan signal: %w", err)
		}
		s.Action = model.Action(action)
		s.Strength = model.Strength(strength)
		s.Timestamp = time.UnixMilli(ts).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// SaveCandles upserts a candle batch in one transaction for later replay.
func (j *Journal) SaveCandles(candles []model.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO candles (symbol, ts, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite: prepare: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.Exec(c.Symbol, c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite: insert candle %s@%d: %w", c.Symbol, c.Timestamp, err)
		}
	}
	return tx.Commit()
}

// Candles returns the stored history for symbol after afterTS, oldest-first.
func (j *Journal) Candles(symbol string, afterTS int64) ([]model.Candle, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(`
		SELECT symbol, ts, open, high, low, close, volume
		FROM candles WHERE symbol = ? AND ts > ? ORDER BY ts ASC`,
		symbol, afterTS)
	if err != nil {
		return nil, fmt.Errorf("sqlite: read candles: %w", err)
	}
	defer rows.Close()

	var out []model.Candle
	for rows.Next() {
		var c model.Candle
		if err := rows.Scan(&c.Symbol, &c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("sqlite: scan candle: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}
